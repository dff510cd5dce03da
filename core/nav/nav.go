// Package nav holds client navigation state. Only the role-gated access
// predicate carries real rules; the rest is remembered chrome (current
// page, sidebar flag) persisted best-effort.
package nav

import (
	"strconv"
	"sync"

	"dnevnik/core"
	"dnevnik/core/session"
	localstore "dnevnik/storage/local"
)

// Pages
const (
	PageHome       PageID = "home"
	PageStudents   PageID = "students"
	PageAttendance PageID = "attendance"
	PageGrades     PageID = "grades"
	PageAdmin      PageID = "admin"
)

type PageID string

type PageConfig struct {
	ID           PageID
	Title        string
	ParentID     PageID
	RequiredRole session.Role
	ShowInNav    bool
}

var (
	pageOrder = []PageID{PageHome, PageStudents, PageAttendance, PageGrades, PageAdmin}

	pages = map[PageID]PageConfig{
		PageHome:       {ID: PageHome, Title: "Главная", RequiredRole: session.RoleGuest, ShowInNav: true},
		PageStudents:   {ID: PageStudents, Title: "Студенты", ParentID: PageHome, RequiredRole: session.RoleGuest, ShowInNav: true},
		PageAttendance: {ID: PageAttendance, Title: "Посещаемость", ParentID: PageHome, RequiredRole: session.RoleGuest, ShowInNav: true},
		PageGrades:     {ID: PageGrades, Title: "Оценки", ParentID: PageHome, RequiredRole: session.RoleGuest, ShowInNav: true},
		PageAdmin:      {ID: PageAdmin, Title: "Администрирование", ParentID: PageHome, RequiredRole: session.RoleAdmin, ShowInNav: true},
	}
)

// persisted keys
const (
	currentPageKey = "nav_current_page"
	sidebarKey     = "nav_sidebar_open"
)

type Service struct {
	mu          sync.Mutex
	current     PageID
	previous    PageID
	sidebarOpen bool

	session *session.Service
	store   localstore.Store
	log     core.Logger

	listenerMu sync.Mutex
	listeners  map[int]func()
	nextID     int
}

func NewService(sess *session.Service, store localstore.Store, log core.Logger) *Service {
	svc := &Service{
		current:     PageHome,
		sidebarOpen: true,
		session:     sess,
		store:       store,
		log:         log,
		listeners:   make(map[int]func()),
	}
	// restore remembered state; anything unreadable keeps the defaults
	if raw, ok := store.Get(currentPageKey); ok {
		if id := PageID(raw); svc.CanAccess(id) {
			svc.current = id
		}
	}
	if raw, ok := store.Get(sidebarKey); ok {
		if open, err := strconv.ParseBool(raw); err == nil {
			svc.sidebarOpen = open
		}
	}
	return svc
}

// Subscribe registers a listener invoked after every completed mutation.
// The returned func removes the listener.
func (svc *Service) Subscribe(fn func()) func() {
	svc.listenerMu.Lock()
	defer svc.listenerMu.Unlock()
	id := svc.nextID
	svc.nextID++
	svc.listeners[id] = fn
	return func() {
		svc.listenerMu.Lock()
		defer svc.listenerMu.Unlock()
		delete(svc.listeners, id)
	}
}

func (svc *Service) notify() {
	svc.listenerMu.Lock()
	fns := make([]func(), 0, len(svc.listeners))
	for _, fn := range svc.listeners {
		fns = append(fns, fn)
	}
	svc.listenerMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// CanAccess is the navigation access-control predicate. It delegates to
// the session's role ordinal; the capability table is never duplicated
// here.
func (svc *Service) CanAccess(id PageID) bool {
	page, ok := pages[id]
	if !ok {
		return false
	}
	return svc.session.HasRole(page.RequiredRole)
}

// SetPage switches to `id` when it exists and the current role may access
// it; otherwise it is a silent no-op.
func (svc *Service) SetPage(id PageID) bool {
	if !svc.CanAccess(id) {
		return false
	}
	svc.mu.Lock()
	svc.previous = svc.current
	svc.current = id
	if err := svc.store.Set(currentPageKey, string(id)); err != nil {
		svc.log.Error("saving navigation state", err)
	}
	svc.mu.Unlock()
	svc.notify()
	return true
}

func (svc *Service) CurrentPage() PageID {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.current
}

func (svc *Service) PreviousPage() PageID {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.previous
}

func (svc *Service) PageTitle() string {
	return pages[svc.CurrentPage()].Title
}

// Breadcrumbs walks the parent chain from the root to the current page.
func (svc *Service) Breadcrumbs() []PageConfig {
	crumbs := make([]PageConfig, 0, 2)
	current, ok := pages[svc.CurrentPage()]
	for ok {
		crumbs = append([]PageConfig{current}, crumbs...)
		if current.ParentID == "" {
			break
		}
		current, ok = pages[current.ParentID]
	}
	return crumbs
}

// NavigationItems lists the pages visible to the current role, in
// declaration order.
func (svc *Service) NavigationItems() []PageConfig {
	items := make([]PageConfig, 0, len(pageOrder))
	for _, id := range pageOrder {
		page := pages[id]
		if page.ShowInNav && svc.CanAccess(id) {
			items = append(items, page)
		}
	}
	return items
}

func (svc *Service) SidebarOpen() bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.sidebarOpen
}

func (svc *Service) ToggleSidebar() {
	svc.mu.Lock()
	svc.sidebarOpen = !svc.sidebarOpen
	if err := svc.store.Set(sidebarKey, strconv.FormatBool(svc.sidebarOpen)); err != nil {
		svc.log.Error("saving navigation state", err)
	}
	svc.mu.Unlock()
	svc.notify()
}

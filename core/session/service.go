// Package session owns the client's single authenticated-session slot:
// login/logout against the static credential table, durable session
// restore, and the role capability predicates every other component
// consults.
package session

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"dnevnik/core"
	localstore "dnevnik/storage/local"
)

const errInvalidPassword = "Неверный пароль"

type Service struct {
	mu        sync.Mutex
	role      Role
	loginOpen bool
	loginErr  string
	loading   bool

	store    localstore.Store
	log      core.Logger
	creds    map[Role]string
	duration time.Duration

	nowFunc func() time.Time // mockable

	listenerMu sync.Mutex
	listeners  map[int]func()
	nextID     int
}

// NewService builds the session manager and restores any valid persisted
// session. Restore is a pure local validation step; no network is involved.
func NewService(store localstore.Store, conf *core.Config, log core.Logger) *Service {
	svc := &Service{
		role:  RoleGuest,
		store: store,
		log:   log,
		creds: map[Role]string{
			RoleTeacher: conf.TeacherPassword,
			RoleAdmin:   conf.AdminPassword,
		},
		duration:  conf.SessionDuration,
		nowFunc:   time.Now,
		listeners: make(map[int]func()),
	}
	svc.restore()
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

// Login validates `password` against the static credential table for
// `role`. Success sets the role, persists the session and closes the login
// prompt; failure records a recoverable error and leaves the current
// session untouched. Last call wins: there is a single session slot.
func (svc *Service) Login(role Role, password string) bool {
	svc.mu.Lock()
	svc.loading = true
	svc.loginErr = ""

	// an unset credential never matches, even against an empty password
	pwd, ok := svc.creds[role]
	if !ok || pwd == "" || password != pwd {
		svc.loginErr = errInvalidPassword
		svc.loading = false
		svc.mu.Unlock()
		svc.notify()
		return false
	}

	svc.role = role
	svc.loginOpen = false
	svc.loading = false
	svc.persist()
	svc.mu.Unlock()
	svc.notify()
	return true
}

// Logout resets the session to guest and clears persisted state. Calling
// it on a guest session is a no-op with the same end state.
func (svc *Service) Logout() {
	svc.mu.Lock()
	svc.role = RoleGuest
	svc.loginErr = ""
	svc.purge()
	svc.mu.Unlock()
	svc.notify()
}

func (svc *Service) Role() Role {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.role
}

func (svc *Service) Authenticated() bool {
	return svc.Role() != RoleGuest
}

// HasRole reports whether the current role's ordinal is at least that of
// `required`.
func (svc *Service) HasRole(required Role) bool {
	return svc.Role().Priority() >= required.Priority()
}

// Login prompt state

func (svc *Service) OpenLogin() {
	svc.mu.Lock()
	svc.loginOpen = true
	svc.loginErr = ""
	svc.mu.Unlock()
	svc.notify()
}

func (svc *Service) CloseLogin() {
	svc.mu.Lock()
	svc.loginOpen = false
	svc.loginErr = ""
	svc.loading = false
	svc.mu.Unlock()
	svc.notify()
}

func (svc *Service) LoginOpen() bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.loginOpen
}

func (svc *Service) LoginError() string {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.loginErr
}

func (svc *Service) ClearError() {
	svc.mu.Lock()
	svc.loginErr = ""
	svc.mu.Unlock()
	svc.notify()
}

func (svc *Service) Loading() bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.loading
}

// Permission predicates. Pure table lookups, safe to call from anywhere.

func (svc *Service) permissions() Permissions { return svc.Role().Permissions() }

func (svc *Service) CanViewStudents() bool   { return svc.permissions().CanViewStudents }
func (svc *Service) CanViewAttendance() bool { return svc.permissions().CanViewAttendance }
func (svc *Service) CanViewGrades() bool     { return svc.permissions().CanViewGrades }
func (svc *Service) CanEditAttendance() bool { return svc.permissions().CanEditAttendance }
func (svc *Service) CanEditGrades() bool     { return svc.permissions().CanEditGrades }
func (svc *Service) CanManageStudents() bool { return svc.permissions().CanManageStudents }
func (svc *Service) CanManageGroups() bool   { return svc.permissions().CanManageGroups }
func (svc *Service) CanManageSubjects() bool { return svc.permissions().CanManageSubjects }
func (svc *Service) CanAccessAdmin() bool    { return svc.permissions().CanAccessAdmin }

// persistence; all failures are best-effort and only logged

func (svc *Service) persist() {
	state := storedSession{
		Role:   svc.role,
		Expiry: svc.nowFunc().Add(svc.duration).UnixMilli(),
	}
	raw, err := json.Marshal(state)
	if err != nil {
		svc.log.Error("encoding session state", err)
		return
	}
	if err := svc.store.Set(authStateKey, string(raw)); err != nil {
		svc.log.Error("saving session state", err)
		return
	}
	if err := svc.store.Set(expiryKey, strconv.FormatInt(state.Expiry, 10)); err != nil {
		svc.log.Error("saving session expiry", err)
	}
}

func (svc *Service) purge() {
	if err := svc.store.Delete(authStateKey); err != nil {
		svc.log.Error("clearing session state", err)
	}
	if err := svc.store.Delete(expiryKey); err != nil {
		svc.log.Error("clearing session expiry", err)
	}
}

// restore loads the persisted session, if any. It is valid only when the
// stored role is a known non-guest role and the expiry is still in the
// future; anything else (including unparseable state) purges the record.
func (svc *Service) restore() {
	raw, ok := svc.store.Get(authStateKey)
	expRaw, expOK := svc.store.Get(expiryKey)
	if !ok || !expOK {
		if ok || expOK {
			svc.purge()
		}
		return
	}

	var state storedSession
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		svc.log.Warn("discarding unreadable session state", err)
		svc.purge()
		return
	}
	expiry, err := strconv.ParseInt(expRaw, 10, 64)
	if err != nil {
		svc.log.Warn("discarding unreadable session expiry", err)
		svc.purge()
		return
	}

	if state.Role.Valid() && state.Role != RoleGuest && svc.nowFunc().UnixMilli() < expiry {
		svc.role = state.Role
		return
	}
	svc.purge()
}

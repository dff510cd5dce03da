// Package ui coordinates transient user feedback: the toast queue, the
// single-slot confirm request, and the persisted theme preference.
package ui

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"dnevnik/core"
	localstore "dnevnik/storage/local"
)

// Toast types
const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastWarning ToastType = "warning"
	ToastInfo    ToastType = "info"
)

type ToastType string

type Toast struct {
	ID       string
	Type     ToastType
	Message  string
	Duration time.Duration
}

// Confirm is the single pending confirm request, if any.
type Confirm struct {
	Open    bool
	Title   string
	Message string
}

const themeKey = "theme_dark_mode"

type Service struct {
	mu     sync.Mutex
	toasts []Toast
	timers map[string]*time.Timer

	confirm   Confirm
	onConfirm func()
	onCancel  func()

	darkMode bool

	defaultDuration time.Duration
	store           localstore.Store
	log             core.Logger
	idFunc          func() string

	listenerMu sync.Mutex
	listeners  map[int]func()
	nextID     int
}

func NewService(store localstore.Store, conf *core.Config, log core.Logger) *Service {
	svc := &Service{
		timers:          make(map[string]*time.Timer),
		defaultDuration: conf.DefaultToastDuration,
		store:           store,
		log:             log,
		idFunc:          uuid.NewString,
		listeners:       make(map[int]func()),
	}
	// theme preference; absence or corruption falls back to light
	if raw, ok := store.Get(themeKey); ok {
		if dark, err := strconv.ParseBool(raw); err == nil {
			svc.darkMode = dark
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

// ============================================================
// Toasts
// ============================================================

// ShowToast queues a toast and schedules its removal after `duration`
// (the configured default when omitted). An explicit duration <= 0
// disables auto-removal and keeps the toast until removed manually;
// the previous client generation coerced 0 to the default instead.
// The returned id allows manual early removal.
func (svc *Service) ShowToast(typ ToastType, message string, duration ...time.Duration) string {
	d := svc.defaultDuration
	if len(duration) > 0 {
		d = duration[0]
	}
	toast := Toast{ID: svc.idFunc(), Type: typ, Message: message, Duration: d}

	svc.mu.Lock()
	svc.toasts = append(svc.toasts, toast)
	if d > 0 {
		svc.timers[toast.ID] = time.AfterFunc(d, func() { svc.RemoveToast(toast.ID) })
	}
	svc.mu.Unlock()
	svc.notify()
	return toast.ID
}

func (svc *Service) Success(message string) string { return svc.ShowToast(ToastSuccess, message) }
func (svc *Service) Error(message string) string   { return svc.ShowToast(ToastError, message) }
func (svc *Service) Warning(message string) string { return svc.ShowToast(ToastWarning, message) }
func (svc *Service) Info(message string) string    { return svc.ShowToast(ToastInfo, message) }

func (svc *Service) RemoveToast(id string) {
	svc.mu.Lock()
	if timer, ok := svc.timers[id]; ok {
		timer.Stop()
		delete(svc.timers, id)
	}
	kept := svc.toasts[:0]
	for _, toast := range svc.toasts {
		if toast.ID != id {
			kept = append(kept, toast)
		}
	}
	svc.toasts = kept
	svc.mu.Unlock()
	svc.notify()
}

func (svc *Service) ClearToasts() {
	svc.mu.Lock()
	for id, timer := range svc.timers {
		timer.Stop()
		delete(svc.timers, id)
	}
	svc.toasts = nil
	svc.mu.Unlock()
	svc.notify()
}

// Toasts returns the queued toasts in insertion order.
func (svc *Service) Toasts() []Toast {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return append([]Toast(nil), svc.toasts...)
}

// ============================================================
// Confirm (single slot)
// ============================================================

// ShowConfirm replaces any pending confirm request; a new request
// implicitly discards the previous one.
func (svc *Service) ShowConfirm(title, message string, onConfirm func(), onCancel ...func()) {
	svc.mu.Lock()
	svc.confirm = Confirm{Open: true, Title: title, Message: message}
	svc.onConfirm = onConfirm
	svc.onCancel = nil
	if len(onCancel) > 0 {
		svc.onCancel = onCancel[0]
	}
	svc.mu.Unlock()
	svc.notify()
}

// ConfirmAction invokes the stored confirm callback (if any) and always
// resets to the closed state.
func (svc *Service) ConfirmAction() {
	svc.mu.Lock()
	cb := svc.onConfirm
	svc.reset()
	svc.mu.Unlock()
	if cb != nil {
		cb()
	}
	svc.notify()
}

// CancelAction invokes the stored cancel callback (if any) and always
// resets to the closed state.
func (svc *Service) CancelAction() {
	svc.mu.Lock()
	cb := svc.onCancel
	svc.reset()
	svc.mu.Unlock()
	if cb != nil {
		cb()
	}
	svc.notify()
}

func (svc *Service) CloseConfirm() {
	svc.mu.Lock()
	svc.reset()
	svc.mu.Unlock()
	svc.notify()
}

func (svc *Service) reset() {
	svc.confirm = Confirm{}
	svc.onConfirm = nil
	svc.onCancel = nil
}

func (svc *Service) PendingConfirm() Confirm {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.confirm
}

// ============================================================
// Theme
// ============================================================

func (svc *Service) DarkMode() bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.darkMode
}

func (svc *Service) ToggleTheme() {
	svc.mu.Lock()
	svc.darkMode = !svc.darkMode
	svc.saveTheme()
	svc.mu.Unlock()
	svc.notify()
}

func (svc *Service) SetDarkMode(dark bool) {
	svc.mu.Lock()
	svc.darkMode = dark
	svc.saveTheme()
	svc.mu.Unlock()
	svc.notify()
}

func (svc *Service) saveTheme() {
	if err := svc.store.Set(themeKey, strconv.FormatBool(svc.darkMode)); err != nil {
		svc.log.Error("saving theme preference", err)
	}
}

package ui

import (
	"testing"
	"time"

	"dnevnik/core"
	logsvc "dnevnik/services/logger"
	localstore "dnevnik/storage/local"
)

func newTestService(store localstore.Store) *Service {
	conf := &core.Config{DefaultToastDuration: 0} // no auto-removal unless a test asks for it
	return NewService(store, conf, logsvc.NewConsoleLoggerMock())
}

func TestService_toasts(t *testing.T) {
	svc := newTestService(localstore.NewMemStore())

	svc.Success("Сохранено")
	id := svc.Error("Ошибка")
	svc.Info("Загрузка завершена")

	toasts := svc.Toasts()
	if len(toasts) != 3 {
		t.Fatalf("Toasts() len = %d, want 3", len(toasts))
	}
	// insertion order
	if toasts[0].Type != ToastSuccess || toasts[1].Type != ToastError || toasts[2].Type != ToastInfo {
		t.Errorf("toast order = [%s %s %s]", toasts[0].Type, toasts[1].Type, toasts[2].Type)
	}
	if toasts[1].Message != "Ошибка" {
		t.Errorf("Message = %q, want %q", toasts[1].Message, "Ошибка")
	}

	svc.RemoveToast(id)
	toasts = svc.Toasts()
	if len(toasts) != 2 {
		t.Fatalf("Toasts() len after remove = %d, want 2", len(toasts))
	}
	for _, toast := range toasts {
		if toast.ID == id {
			t.Error("removed toast still queued")
		}
	}

	svc.ClearToasts()
	if len(svc.Toasts()) != 0 {
		t.Error("ClearToasts() left toasts behind")
	}
}

func TestService_toastAutoRemoval(t *testing.T) {
	svc := newTestService(localstore.NewMemStore())

	svc.ShowToast(ToastInfo, "скоро исчезнет", 10*time.Millisecond)
	svc.ShowToast(ToastInfo, "остаётся", 0) // zero disables auto-removal

	deadline := time.After(time.Second)
	for len(svc.Toasts()) > 1 {
		select {
		case <-deadline:
			t.Fatal("toast not auto-removed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	toasts := svc.Toasts()
	if len(toasts) != 1 || toasts[0].Message != "остаётся" {
		t.Errorf("Toasts() = %v, want only the persistent one", toasts)
	}
}

func TestService_confirm(t *testing.T) {
	svc := newTestService(localstore.NewMemStore())

	var confirmed, cancelled int
	svc.ShowConfirm("Подтверждение", "Удалить запись?", func() { confirmed++ }, func() { cancelled++ })

	pending := svc.PendingConfirm()
	if !pending.Open || pending.Title != "Подтверждение" || pending.Message != "Удалить запись?" {
		t.Fatalf("PendingConfirm() = %+v", pending)
	}

	svc.ConfirmAction()
	if confirmed != 1 || cancelled != 0 {
		t.Errorf("(confirmed, cancelled) = (%d, %d), want (1, 0)", confirmed, cancelled)
	}
	if svc.PendingConfirm().Open {
		t.Error("confirm still open after ConfirmAction()")
	}

	// callbacks are single-shot
	svc.ConfirmAction()
	if confirmed != 1 {
		t.Errorf("confirmed = %d after a second ConfirmAction(), want 1", confirmed)
	}
}

func TestService_confirmCancel(t *testing.T) {
	svc := newTestService(localstore.NewMemStore())

	var confirmed, cancelled int
	svc.ShowConfirm("Подтверждение", "Удалить запись?", func() { confirmed++ }, func() { cancelled++ })

	svc.CancelAction()
	if confirmed != 0 || cancelled != 1 {
		t.Errorf("(confirmed, cancelled) = (%d, %d), want (0, 1)", confirmed, cancelled)
	}
	if svc.PendingConfirm().Open {
		t.Error("confirm still open after CancelAction()")
	}

	// cancel callback is optional
	svc.ShowConfirm("Подтверждение", "Ещё раз?", func() { confirmed++ })
	svc.CancelAction()
	if confirmed != 0 || cancelled != 1 {
		t.Errorf("(confirmed, cancelled) = (%d, %d) after optional-cancel flow", confirmed, cancelled)
	}
}

func TestService_confirmReplaced(t *testing.T) {
	svc := newTestService(localstore.NewMemStore())

	var first, second int
	svc.ShowConfirm("Подтверждение", "первый", func() { first++ })
	svc.ShowConfirm("Подтверждение", "второй", func() { second++ })

	if msg := svc.PendingConfirm().Message; msg != "второй" {
		t.Fatalf("PendingConfirm().Message = %q, want the replacement", msg)
	}
	svc.ConfirmAction()
	if first != 0 || second != 1 {
		t.Errorf("(first, second) = (%d, %d), want the replaced request discarded", first, second)
	}
}

func TestService_theme(t *testing.T) {
	store := localstore.NewMemStore()
	svc := newTestService(store)

	if svc.DarkMode() {
		t.Fatal("default theme must be light")
	}
	svc.ToggleTheme()
	if !svc.DarkMode() {
		t.Fatal("ToggleTheme() did not flip")
	}
	if raw, ok := store.Get("theme_dark_mode"); !ok || raw != "true" {
		t.Errorf("persisted theme = %q (ok=%v), want %q", raw, ok, "true")
	}

	// a fresh service picks the preference up
	if !newTestService(store).DarkMode() {
		t.Error("persisted theme not restored")
	}

	// corruption falls back to light
	_ = store.Set("theme_dark_mode", "dusk")
	if newTestService(store).DarkMode() {
		t.Error("corrupt theme value must fall back to light")
	}
}

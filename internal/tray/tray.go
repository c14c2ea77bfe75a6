// Package tray предоставляет системный трей с меню.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"taiwa/internal/i18n"
	"taiwa/internal/icon"
	"taiwa/internal/session"
)

// State представляет состояние приложения для отображения в трее.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateProcessing
)

// StateFor выводит состояние трея из снимка контроллера.
func StateFor(s session.State) State {
	switch {
	case s.Recording:
		return StateRecording
	case s.Loading:
		return StateProcessing
	default:
		return StateIdle
	}
}

// Icon возвращает иконку для состояния.
func (s State) Icon() []byte {
	switch s {
	case StateRecording:
		return icon.Recording()
	case StateProcessing:
		return icon.Processing()
	default:
		return icon.Idle()
	}
}

// Key возвращает ключ перевода для строки статуса.
func (s State) Key() string {
	switch s {
	case StateRecording:
		return "tray_recording"
	case StateProcessing:
		return "tray_processing"
	default:
		return "tray_ready"
	}
}

// Callbacks содержит обработчики событий меню.
type Callbacks struct {
	OnOpenWindow          func()
	OnNotificationsToggle func() bool
	OnServerClick         func()
	OnHotkeyClick         func()
	OnLanguageToggle      func()
	OnQuit                func()
}

// Tray управляет иконкой в системном трее.
type Tray struct {
	callbacks   Callbacks
	notifyInit  bool
	mu          sync.Mutex
	state       State
	shown       bool
	status      *systray.MenuItem
	openBtn     *systray.MenuItem
	notifyOn    *systray.MenuItem
	serverBtn   *systray.MenuItem
	hotkeyBtn   *systray.MenuItem
	languageBtn *systray.MenuItem
	quitBtn     *systray.MenuItem
}

// New создаёт новый Tray.
func New(callbacks Callbacks, notifications bool) *Tray {
	return &Tray{
		callbacks:  callbacks,
		notifyInit: notifications,
	}
}

// Run запускает системный трей. Блокирующая функция.
func (t *Tray) Run(onReady func()) {
	systray.Run(func() {
		t.onReady()
		if onReady != nil {
			onReady()
		}
	}, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(icon.Idle())
	systray.SetTitle(i18n.T("app_name"))
	systray.SetTooltip(i18n.T("app_tooltip"))

	// Статус
	t.mu.Lock()
	t.status = systray.AddMenuItem(i18n.T(t.state.Key()), "")
	t.status.Disable()
	t.mu.Unlock()

	systray.AddSeparator()

	t.openBtn = systray.AddMenuItem(i18n.T("tray_open"), i18n.T("tray_open_hint"))
	t.notifyOn = systray.AddMenuItemCheckbox(i18n.T("tray_notifications"), i18n.T("tray_notifications_hint"), t.notifyInit)

	// Настройки
	t.serverBtn = systray.AddMenuItem(i18n.T("tray_server"), i18n.T("tray_server_hint"))
	t.hotkeyBtn = systray.AddMenuItem(i18n.T("tray_hotkey"), i18n.T("tray_hotkey_hint"))
	t.languageBtn = systray.AddMenuItem(i18n.T("tray_language"), i18n.T("tray_language_hint"))

	systray.AddSeparator()

	// Выход
	t.quitBtn = systray.AddMenuItem(i18n.T("tray_quit"), i18n.T("tray_quit_hint"))

	go t.handleMenuEvents()
}

func (t *Tray) handleMenuEvents() {
	for {
		select {
		case <-t.openBtn.ClickedCh:
			call(t.callbacks.OnOpenWindow)

		case <-t.notifyOn.ClickedCh:
			if t.callbacks.OnNotificationsToggle != nil {
				if t.callbacks.OnNotificationsToggle() {
					t.notifyOn.Check()
				} else {
					t.notifyOn.Uncheck()
				}
			}

		case <-t.serverBtn.ClickedCh:
			call(t.callbacks.OnServerClick)

		case <-t.hotkeyBtn.ClickedCh:
			call(t.callbacks.OnHotkeyClick)

		case <-t.languageBtn.ClickedCh:
			call(t.callbacks.OnLanguageToggle)

		case <-t.quitBtn.ClickedCh:
			call(t.callbacks.OnQuit)
			systray.Quit()
			return
		}
	}
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

// SetState устанавливает состояние приложения и обновляет иконку.
// Вызывается из любой горутины.
func (t *Tray) SetState(state State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.advance(state) {
		return
	}
	systray.SetIcon(state.Icon())
	systray.SetTooltip(i18n.T("app_name") + " - " + i18n.T(state.Key()))
	if t.status != nil {
		t.status.SetTitle(i18n.T(state.Key()))
	}
}

// advance запоминает новое состояние; false, если оно уже показано. Вызывается под t.mu.
func (t *Tray) advance(state State) bool {
	if t.shown && state == t.state {
		return false
	}
	t.state = state
	t.shown = true
	return true
}

func (t *Tray) onExit() {}

// Quit закрывает системный трей.
func (t *Tray) Quit() {
	systray.Quit()
}

// RefreshUI обновляет все тексты меню на текущем языке.
func (t *Tray) RefreshUI() {
	systray.SetTitle(i18n.T("app_name"))
	systray.SetTooltip(i18n.T("app_tooltip"))

	t.mu.Lock()
	if t.status != nil {
		t.status.SetTitle(i18n.T(t.state.Key()))
	}
	t.mu.Unlock()

	items := []struct {
		item *systray.MenuItem
		key  string
	}{
		{t.openBtn, "tray_open"},
		{t.notifyOn, "tray_notifications"},
		{t.serverBtn, "tray_server"},
		{t.hotkeyBtn, "tray_hotkey"},
		{t.languageBtn, "tray_language"},
		{t.quitBtn, "tray_quit"},
	}
	for _, it := range items {
		if it.item == nil {
			continue
		}
		it.item.SetTitle(i18n.T(it.key))
		it.item.SetTooltip(i18n.T(it.key + "_hint"))
	}
}

// Package window предоставляет окно диалога: запись и отправку,
// редактируемую расшифровку, последний ответ и историю.
package window

import (
	"errors"
	"image/color"
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"taiwa/internal/i18n"
	"taiwa/internal/session"
)

// Controller это часть сессии, которой управляет окно.
type Controller interface {
	Snapshot() session.State
	ToggleRecording() error
	Send() error
	SetTranscript(text string) error
	Clear()
}

// LevelSource сообщает текущий уровень входа в [0, 1].
type LevelSource interface {
	Level() float32
}

// Config содержит настройки окна.
type Config struct {
	Width        int           // Ширина окна в пикселях
	Height       int           // Высота окна в пикселях
	RefreshRate  time.Duration // Интервал перерисовки во время записи или загрузки
	BGColor      color.NRGBA
	PanelColor   color.NRGBA
	TextColor    color.NRGBA
	TextDimColor color.NRGBA
	AccentColor  color.NRGBA
	RecordColor  color.NRGBA
	LevelColor   color.NRGBA
	UserColor    color.NRGBA
	AIColor      color.NRGBA
}

// DefaultConfig возвращает настройки по умолчанию.
func DefaultConfig() Config {
	return Config{
		Width:        480,
		Height:       680,
		RefreshRate:  33 * time.Millisecond, // ~30 кадров/с
		BGColor:      color.NRGBA{R: 30, G: 30, B: 34, A: 255},
		PanelColor:   color.NRGBA{R: 45, G: 45, B: 50, A: 255},
		TextColor:    color.NRGBA{R: 240, G: 240, B: 245, A: 255},
		TextDimColor: color.NRGBA{R: 140, G: 140, B: 150, A: 255},
		AccentColor:  color.NRGBA{R: 88, G: 166, B: 255, A: 255},
		RecordColor:  color.NRGBA{R: 255, G: 100, B: 100, A: 255},
		LevelColor:   color.NRGBA{R: 80, G: 200, B: 120, A: 255},
		UserColor:    color.NRGBA{R: 60, G: 80, B: 120, A: 255},
		AIColor:      color.NRGBA{R: 55, G: 55, B: 62, A: 255},
	}
}

// Window управляет окном диалога.
type Window struct {
	mu      sync.Mutex
	ctrl    Controller
	level   LevelSource
	config  Config
	logger  *zap.Logger
	onError func(error)

	// Виджеты используются только из цикла событий.
	recordBtn  widget.Clickable
	sendBtn    widget.Clickable
	clearBtn   widget.Clickable
	copyBtn    widget.Clickable
	editor     widget.Editor
	history    widget.List
	transcript string
	th         *material.Theme

	window  *app.Window
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New создаёт окно диалога, привязанное к контроллеру.
func New(ctrl Controller, level LevelSource, cfg Config, logger *zap.Logger) *Window {
	w := &Window{
		ctrl:   ctrl,
		level:  level,
		config: cfg,
		logger: logger,
	}
	w.editor.SingleLine = false
	w.editor.Submit = false
	w.history.Axis = layout.Vertical
	w.history.ScrollToEnd = true
	return w
}

// OnError задаёт обработчик ошибок самого окна.
func (w *Window) OnError(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = fn
}

// Show открывает окно или поднимает уже открытое.
func (w *Window) Show() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		if w.window != nil {
			w.window.Perform(system.ActionRaise)
			w.window.Invalidate()
		}
		return
	}

	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.window = new(app.Window)
	go w.runEventLoop(w.window, w.stopCh, w.doneCh)
}

// Hide закрывает окно. Сессия сохраняет состояние.
func (w *Window) Hide() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	stopCh := w.stopCh
	doneCh := w.doneCh
	w.stopCh = nil
	w.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
	}

	if doneCh != nil {
		select {
		case <-doneCh:
		case <-time.After(time.Second):
		}
	}
}

// Invalidate запрашивает перерисовку.
func (w *Window) Invalidate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running && w.window != nil {
		w.window.Invalidate()
	}
}

// IsVisible возвращает true, если окно сейчас показано.
func (w *Window) IsVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Window) runEventLoop(win *app.Window, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	defer func() {
		w.mu.Lock()
		if w.window == win {
			w.running = false
			w.window = nil
		}
		w.mu.Unlock()
	}()

	title := i18n.T("window_title")
	win.Option(
		app.Title(title),
		app.Size(unit.Dp(w.config.Width), unit.Dp(w.config.Height)),
		app.MinSize(unit.Dp(360), unit.Dp(420)),
	)

	go positionWindow(title, w.config.Width, w.config.Height)

	ticker := time.NewTicker(w.config.RefreshRate)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-stopCh:
				win.Perform(system.ActionClose)
				return
			case <-doneCh:
				return
			case <-ticker.C:
				if s := w.ctrl.Snapshot(); s.Recording || s.Loading {
					win.Invalidate()
				}
			}
		}
	}()

	var ops op.Ops
	for {
		switch e := win.Event().(type) {
		case app.DestroyEvent:
			if e.Err != nil {
				w.logger.Error("window closed with error", zap.Error(e.Err))
			}
			return
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			w.frame(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

// frame обрабатывает ввод текущего кадра и рисует его.
func (w *Window) frame(gtx layout.Context) {
	state := w.ctrl.Snapshot()
	ctl := controlsFor(state)

	if ctl.Record && w.recordBtn.Clicked(gtx) {
		go w.call("toggle recording", w.ctrl.ToggleRecording)
	}
	if ctl.Send && w.sendBtn.Clicked(gtx) {
		go w.call("send", w.ctrl.Send)
	}
	if ctl.Clear && w.clearBtn.Clicked(gtx) {
		go w.ctrl.Clear()
	}
	if ctl.Copy && w.copyBtn.Clicked(gtx) {
		w.copyReply(state.Reply)
	}

	w.syncTranscript(gtx, state)
	w.editor.ReadOnly = !ctl.Edit

	drawConversation(gtx, w, state, ctl)
}

// syncTranscript передаёт правки пользователя в сессию и подтягивает
// в редактор расшифровки из конвейера.
func (w *Window) syncTranscript(gtx layout.Context, state session.State) {
	for {
		ev, ok := w.editor.Update(gtx)
		if !ok {
			break
		}
		if _, ok := ev.(widget.ChangeEvent); !ok {
			continue
		}
		text := w.editor.Text()
		if text == state.Transcript {
			continue
		}
		if err := w.ctrl.SetTranscript(text); err != nil {
			w.logger.Debug("transcript edit rejected", zap.Error(err))
			continue
		}
		w.transcript = text
		state.Transcript = text
	}

	if state.Transcript != w.transcript {
		if w.editor.Text() != state.Transcript {
			w.editor.SetText(state.Transcript)
		}
		w.transcript = state.Transcript
	}
}

// theme создаётся один раз на окно.
func (w *Window) theme() *material.Theme {
	if w.th == nil {
		th := material.NewTheme()
		th.Palette.Fg = w.config.TextColor
		th.Palette.Bg = w.config.BGColor
		th.Palette.ContrastBg = w.config.AccentColor
		w.th = th
	}
	return w.th
}

func (w *Window) copyReply(reply string) {
	if reply == "" {
		return
	}
	if err := clipboard.WriteAll(reply); err != nil {
		w.logger.Warn("clipboard write failed", zap.Error(err))
		w.report(err)
	}
}

// call выполняет действие контроллера вне цикла событий. ErrBusy и
// ErrNothingToSend не сообщаются: это ожидаемые гонки с сессией.
func (w *Window) call(name string, fn func() error) {
	err := fn()
	if err == nil {
		return
	}
	if errors.Is(err, session.ErrBusy) || errors.Is(err, session.ErrNothingToSend) {
		w.logger.Debug("action ignored", zap.String("action", name), zap.Error(err))
		return
	}
	w.logger.Debug("action failed", zap.String("action", name), zap.Error(err))
}

func (w *Window) report(err error) {
	w.mu.Lock()
	fn := w.onError
	w.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

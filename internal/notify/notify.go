// Package notify предоставляет системные уведомления.
package notify

import (
	"errors"
	"sync"

	"github.com/gen2brain/beeep"

	"taiwa/internal/audio"
	"taiwa/internal/i18n"
	"taiwa/internal/metrics"
	"taiwa/internal/session"
)

const maxBody = 100

// send подменяется в тестах.
var send = func(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Notifier отправляет системные уведомления.
type Notifier struct {
	mu      sync.Mutex
	enabled bool
}

// New создаёт новый Notifier.
func New(enabled bool) *Notifier {
	return &Notifier{enabled: enabled}
}

// SetEnabled включает/выключает уведомления.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// Enabled возвращает true если уведомления включены.
func (n *Notifier) Enabled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.enabled
}

// Ready показывает уведомление о запуске.
func (n *Notifier) Ready() {
	n.notify("", i18n.T("notify_ready"))
}

// Recording показывает уведомление о начале записи.
func (n *Notifier) Recording() {
	n.notify(i18n.T("notify_recording"), i18n.T("notify_recording_hint"))
}

// Reply показывает ответ ассистента.
func (n *Notifier) Reply(text string) {
	n.notify(i18n.T("notify_reply"), truncate(text))
}

// Empty показывает уведомление о пустом результате.
func (n *Notifier) Empty() {
	n.notify(i18n.T("notify_empty"), i18n.T("notify_empty_hint"))
}

// Error показывает уведомление об ошибке.
func (n *Notifier) Error(msg string) {
	n.notify(i18n.T("notify_error"), truncate(msg))
}

// Failure сообщает об ошибке диалога с текстом для шага, на котором она произошла.
func (n *Notifier) Failure(err error) {
	if errors.Is(err, session.ErrEmptyTranscript) {
		n.Empty()
		return
	}
	n.Error(Describe(err))
}

// Describe возвращает понятное пользователю описание ошибки.
func Describe(err error) string {
	var se *session.StepError
	if !errors.As(err, &se) {
		if errors.Is(err, session.ErrBusy) {
			return i18n.T("error_busy")
		}
		return i18n.T("error_recording") + ": " + err.Error()
	}

	key := "error_" + se.Step
	switch se.Step {
	case metrics.StepEncode:
		if errors.Is(se.Err, audio.ErrEmptyAudio) {
			return i18n.T("notify_empty")
		}
	case metrics.StepTranscribe, metrics.StepChat, metrics.StepSynthesize, metrics.StepPlay:
	default:
		return se.Error()
	}
	return i18n.T(key) + ": " + se.Err.Error()
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) > maxBody {
		return string(r[:maxBody]) + "..."
	}
	return s
}

func (n *Notifier) notify(title, message string) {
	if !n.Enabled() {
		return
	}
	// Игнорируем ошибки уведомлений - они не критичны
	if title != "" {
		_ = send(i18n.T("app_name")+": "+title, message)
	} else {
		_ = send(i18n.T("app_name"), message)
	}
}

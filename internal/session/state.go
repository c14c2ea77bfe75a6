package session

import (
	"strings"
	"time"

	"taiwa/internal/conversation"
)

// State это снимок всего, что рисует окно.
type State struct {
	Recording  bool
	Loading    bool
	Transcript string
	Reply      string
	History    []conversation.Message
	// RecordingSince нулевой, если Recording не установлен.
	RecordingSince time.Time
}

// CanToggleRecording сообщает, доступна ли кнопка записи.
func (s State) CanToggleRecording() bool {
	return !s.Loading
}

// CanSend сообщает, доступна ли отправка.
func (s State) CanSend() bool {
	return !s.Loading && (s.Recording || strings.TrimSpace(s.Transcript) != "")
}

// CanEditTranscript сообщает, можно ли править расшифровку.
func (s State) CanEditTranscript() bool {
	return !s.Loading
}

// CanClear сообщает, есть ли история для очистки.
func (s State) CanClear() bool {
	return len(s.History) > 0
}

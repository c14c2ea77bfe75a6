// Package conversation хранит журнал диалога в памяти.
package conversation

import (
	"errors"
	"sync"
)

// Role определяет автора сообщения.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ErrInvalidRole возвращается при добавлении сообщения с неизвестной ролью.
var ErrInvalidRole = errors.New("invalid message role")

// Message это одна неизменяемая запись диалога.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// User создаёт сообщение пользователя.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Assistant создаёт сообщение ассистента.
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// History это упорядоченный список сообщений: только добавление и полная очистка.
type History struct {
	mu       sync.RWMutex
	messages []Message
}

// NewHistory возвращает пустую историю.
func NewHistory() *History {
	return &History{messages: make([]Message, 0, 16)}
}

// Append добавляет сообщение в конец журнала.
func (h *History) Append(m Message) error {
	if m.Role != RoleUser && m.Role != RoleAssistant {
		return ErrInvalidRole
	}

	h.mu.Lock()
	h.messages = append(h.messages, m)
	h.mu.Unlock()
	return nil
}

// Messages возвращает копию журнала по порядку.
func (h *History) Messages() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	copied := make([]Message, len(h.messages))
	copy(copied, h.messages)
	return copied
}

// Len возвращает число сообщений.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// Clear удаляет все сообщения.
func (h *History) Clear() {
	h.mu.Lock()
	h.messages = make([]Message, 0, 16)
	h.mu.Unlock()
}

package conversation_test

import (
	"errors"
	"testing"

	"taiwa/internal/conversation"
)

func TestHistoryAppendKeepsOrder(t *testing.T) {
	h := conversation.NewHistory()

	if err := h.Append(conversation.User("hello")); err != nil {
		t.Fatalf("Append user err: %v", err)
	}
	if err := h.Append(conversation.Assistant("hi there")); err != nil {
		t.Fatalf("Append assistant err: %v", err)
	}

	got := h.Messages()
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0] != conversation.User("hello") || got[1] != conversation.Assistant("hi there") {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestHistoryMessagesReturnsCopy(t *testing.T) {
	h := conversation.NewHistory()
	_ = h.Append(conversation.User("hello"))

	got := h.Messages()
	got[0].Content = "mutated"

	if h.Messages()[0].Content != "hello" {
		t.Fatal("history was mutated through returned slice")
	}
}

func TestHistoryRejectsUnknownRole(t *testing.T) {
	h := conversation.NewHistory()
	err := h.Append(conversation.Message{Role: "system", Content: "x"})
	if !errors.Is(err, conversation.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if h.Len() != 0 {
		t.Fatalf("rejected message was stored")
	}
}

func TestHistoryClear(t *testing.T) {
	h := conversation.NewHistory()
	_ = h.Append(conversation.User("a"))
	_ = h.Append(conversation.Assistant("b"))

	h.Clear()
	if h.Len() != 0 || len(h.Messages()) != 0 {
		t.Fatal("expected empty history after Clear")
	}

	h.Clear()
	if h.Len() != 0 {
		t.Fatal("Clear on empty history should keep it empty")
	}
}

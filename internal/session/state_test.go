package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taiwa/internal/conversation"
	"taiwa/internal/metrics"
)

func TestStateEnablement(t *testing.T) {
	history := []conversation.Message{conversation.User("a")}

	tests := []struct {
		name      string
		state     State
		canSend   bool
		canToggle bool
		canClear  bool
		canEdit   bool
	}{
		{"idle empty", State{}, false, true, false, true},
		{"recording", State{Recording: true}, true, true, false, true},
		{"typed", State{Transcript: "hi"}, true, true, false, true},
		{"blank transcript", State{Transcript: "   "}, false, true, false, true},
		{"loading", State{Loading: true, Transcript: "hi", History: history}, false, false, true, false},
		{"with history", State{History: history}, false, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.CanSend(); got != tt.canSend {
				t.Errorf("CanSend() = %v, want %v", got, tt.canSend)
			}
			if got := tt.state.CanToggleRecording(); got != tt.canToggle {
				t.Errorf("CanToggleRecording() = %v, want %v", got, tt.canToggle)
			}
			if got := tt.state.CanClear(); got != tt.canClear {
				t.Errorf("CanClear() = %v, want %v", got, tt.canClear)
			}
			if got := tt.state.CanEditTranscript(); got != tt.canEdit {
				t.Errorf("CanEditTranscript() = %v, want %v", got, tt.canEdit)
			}
		})
	}
}

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rr.Body.String()
}

func contains(body, line string) bool {
	return strings.Contains(body, line)
}

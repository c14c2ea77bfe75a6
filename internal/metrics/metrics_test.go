package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRunFinished(t *testing.T) {
	m := New()

	m.RunFinished("")
	m.RunFinished("")
	m.RunFinished(StepChat)

	if got := testutil.ToFloat64(m.Runs.WithLabelValues("ok")); got != 2 {
		t.Fatalf("expected 2 ok runs, got %v", got)
	}
	if got := testutil.ToFloat64(m.Runs.WithLabelValues(StepChat)); got != 1 {
		t.Fatalf("expected 1 chat failure, got %v", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveStep(StepTranscribe, 120*time.Millisecond)
	m.Recorded(2 * time.Second)
	m.SetHistory(4)

	if got := testutil.ToFloat64(m.HistorySize); got != 4 {
		t.Fatalf("expected history gauge 4, got %v", got)
	}

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()

	for _, name := range []string{
		"taiwa_step_duration_seconds_count{step=\"transcribe\"} 1",
		"taiwa_recording_seconds_count 1",
		"taiwa_history_messages 4",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output missing %q", name)
		}
	}
}

package window

import (
	"testing"
	"time"

	"taiwa/internal/conversation"
	"taiwa/internal/session"
)

func TestControlsFor(t *testing.T) {
	history := []conversation.Message{conversation.User("hi"), conversation.Assistant("hello")}

	tests := []struct {
		name  string
		state session.State
		want  controls
	}{
		{
			name:  "idle empty",
			state: session.State{},
			want:  controls{Record: true, RecordKey: "btn_record", Edit: true},
		},
		{
			name:  "recording",
			state: session.State{Recording: true},
			want:  controls{Record: true, RecordKey: "btn_stop", Send: true, Edit: true},
		},
		{
			name:  "typed transcript",
			state: session.State{Transcript: "  question "},
			want:  controls{Record: true, RecordKey: "btn_record", Send: true, Edit: true},
		},
		{
			name:  "loading with history",
			state: session.State{Loading: true, Transcript: "q", History: history},
			want:  controls{RecordKey: "btn_record", Clear: true, Spinner: true},
		},
		{
			name:  "reply ready",
			state: session.State{Reply: "hello", History: history},
			want:  controls{Record: true, RecordKey: "btn_record", Edit: true, Clear: true, Copy: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := controlsFor(tt.state); got != tt.want {
				t.Fatalf("controlsFor = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{-time.Second, "0:00"},
		{9900 * time.Millisecond, "0:09"},
		{75 * time.Second, "1:15"},
		{10 * time.Minute, "10:00"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestLevelColor(t *testing.T) {
	cfg := DefaultConfig()
	if got := levelColor(0.1, cfg); got != cfg.LevelColor {
		t.Fatalf("low level should use configured color, got %v", got)
	}
	if got := levelColor(0.9, cfg); got == cfg.LevelColor {
		t.Fatal("high level should switch color")
	}
}

func TestParseGeometry(t *testing.T) {
	w, h, ok := parseGeometry("1920 1080\n")
	if !ok || w != 1920 || h != 1080 {
		t.Fatalf("unexpected geometry %d %d %v", w, h, ok)
	}
	for _, bad := range []string{"", "1920", "a b", "0 1080", "1 2 3"} {
		if _, _, ok := parseGeometry(bad); ok {
			t.Errorf("parseGeometry(%q) should fail", bad)
		}
	}
}

func TestPlacement(t *testing.T) {
	x, y := placement(1920, 1080, 480, 680)
	if x != 1420 || y != 200 {
		t.Fatalf("placement = %d,%d", x, y)
	}
	x, y = placement(400, 300, 480, 680)
	if x != 0 || y != 0 {
		t.Fatalf("oversized window should clamp to origin, got %d,%d", x, y)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	t.Setenv(EnvServerURL, "")
	t.Setenv(EnvMetricsAddr, "")
	t.Setenv(EnvDebug, "")

	c := NewAt("")
	if c.ServerURL() != DefaultServerURL {
		t.Errorf("expected default server url, got %q", c.ServerURL())
	}
	if c.UILanguage() != "ja" || !c.NotificationsEnabled() {
		t.Errorf("unexpected defaults: lang=%q notifications=%v", c.UILanguage(), c.NotificationsEnabled())
	}
	if got := c.Hotkey().String(); got != "ctrl+shift+space" {
		t.Errorf("unexpected default hotkey %q", got)
	}
	if c.RequestTimeout() != 0 {
		t.Errorf("expected no timeout by default, got %v", c.RequestTimeout())
	}
}

func TestSaveAndReload(t *testing.T) {
	t.Setenv(EnvServerURL, "")
	t.Setenv(EnvMetricsAddr, "")
	t.Setenv(EnvDebug, "")
	path := filepath.Join(t.TempDir(), "config.json")

	c := NewAt(path)
	if err := c.SetServerURL(" http://10.0.0.5:8000 "); err != nil {
		t.Fatalf("SetServerURL err: %v", err)
	}
	if err := c.SetUILanguage("en"); err != nil {
		t.Fatalf("SetUILanguage err: %v", err)
	}
	if err := c.SetHotkey(HotkeyConfig{Modifiers: []Modifier{ModAlt}, Key: KeyR}); err != nil {
		t.Fatalf("SetHotkey err: %v", err)
	}
	if c.ToggleNotifications() {
		t.Fatal("toggle should disable notifications")
	}

	reloaded := NewAt(path)
	if reloaded.ServerURL() != "http://10.0.0.5:8000" {
		t.Errorf("server url not persisted: %q", reloaded.ServerURL())
	}
	if reloaded.UILanguage() != "en" {
		t.Errorf("ui language not persisted: %q", reloaded.UILanguage())
	}
	if reloaded.Hotkey().String() != "alt+r" {
		t.Errorf("hotkey not persisted: %q", reloaded.Hotkey().String())
	}
	if reloaded.NotificationsEnabled() {
		t.Error("notifications flag not persisted")
	}
}

func TestLoadFileFields(t *testing.T) {
	t.Setenv(EnvServerURL, "")
	t.Setenv(EnvMetricsAddr, "")
	t.Setenv(EnvDebug, "")
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"server_url":"https://dialog.example","notifications":true,"hotkey":{"modifiers":["ctrl"],"key":"f9"},"request_timeout_seconds":45,"http2":true,"metrics_addr":"127.0.0.1:9464"}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c := NewAt(path)
	if c.RequestTimeout() != 45*time.Second {
		t.Errorf("unexpected timeout %v", c.RequestTimeout())
	}
	if !c.HTTP2() || c.MetricsAddr() != "127.0.0.1:9464" {
		t.Errorf("unexpected http2/metrics: %v %q", c.HTTP2(), c.MetricsAddr())
	}
	if c.UILanguage() != "ja" {
		t.Errorf("missing ui_language should keep default, got %q", c.UILanguage())
	}
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"server_url":"http://file:8000"}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvServerURL, "http://env:9000")
	t.Setenv(EnvMetricsAddr, ":9464")
	t.Setenv(EnvDebug, "true")

	c := NewAt(path)
	if c.ServerURL() != "http://env:9000" {
		t.Errorf("env should override file, got %q", c.ServerURL())
	}
	if c.MetricsAddr() != ":9464" || !c.Debug() {
		t.Errorf("unexpected metrics/debug %q %v", c.MetricsAddr(), c.Debug())
	}
}

func TestCorruptFileKeepsDefaults(t *testing.T) {
	t.Setenv(EnvServerURL, "")
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if c := NewAt(path); c.ServerURL() != DefaultServerURL {
		t.Errorf("expected default server url, got %q", c.ServerURL())
	}
}

func TestCallbacks(t *testing.T) {
	t.Setenv(EnvServerURL, "")
	c := NewAt("")

	var gotURL string
	var gotKey HotkeyConfig
	c.OnServerChange(func(u string) { gotURL = u })
	c.OnHotkeyChange(func(h HotkeyConfig) { gotKey = h })

	_ = c.SetServerURL("http://a:1")
	_ = c.SetHotkey(HotkeyConfig{Key: KeyF5})

	if gotURL != "http://a:1" || gotKey.Key != KeyF5 {
		t.Fatalf("callbacks not invoked: %q %+v", gotURL, gotKey)
	}
}

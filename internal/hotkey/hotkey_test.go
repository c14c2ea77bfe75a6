package hotkey

import (
	"errors"
	"testing"

	"taiwa/internal/config"
)

func TestResolve(t *testing.T) {
	mods, key, err := Resolve(config.HotkeyConfig{
		Modifiers: []config.Modifier{config.ModCtrl, config.ModShift},
		Key:       config.KeySpace,
	})
	if err != nil {
		t.Fatalf("Resolve err: %v", err)
	}
	if len(mods) != 2 || key != keyMap[config.KeySpace] {
		t.Fatalf("unexpected result %v %v", mods, key)
	}
}

func TestResolveRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.HotkeyConfig
	}{
		{"no modifiers", config.HotkeyConfig{Key: config.KeyA}},
		{"unknown modifier", config.HotkeyConfig{Modifiers: []config.Modifier{"hyper"}, Key: config.KeyA}},
		{"unknown key", config.HotkeyConfig{Modifiers: []config.Modifier{config.ModCtrl}, Key: "pause"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Resolve(tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if _, _, err := Resolve(config.HotkeyConfig{Key: config.KeyA}); !errors.Is(err, ErrNoModifiers) {
		t.Fatalf("expected ErrNoModifiers, got %v", err)
	}
}

func TestEveryConfigKeyIsMapped(t *testing.T) {
	for _, k := range config.AvailableKeys() {
		if _, ok := keyMap[k]; !ok {
			t.Errorf("key %q has no mapping", k)
		}
	}
	for _, m := range config.AvailableModifiers() {
		if _, ok := modifierMap[m]; !ok {
			t.Errorf("modifier %q has no mapping", m)
		}
	}
}

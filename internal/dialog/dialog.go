// Package dialog предоставляет GUI диалоги для настройки приложения.
package dialog

import (
	"errors"
	"strings"

	"github.com/ncruces/zenity"

	"taiwa/internal/config"
	"taiwa/internal/i18n"
)

// ErrNoModifiers возвращается, если не выбран ни один модификатор.
var ErrNoModifiers = errors.New("no modifiers selected")

// Canceled сообщает, что пользователь закрыл диалог.
func Canceled(err error) bool {
	return errors.Is(err, zenity.ErrCanceled)
}

var modifierLabels = map[config.Modifier]string{
	config.ModCtrl:  "Ctrl",
	config.ModShift: "Shift",
	config.ModAlt:   "Alt",
	config.ModSuper: "Super (Win/Cmd)",
}

func modifierLabel(m config.Modifier) string {
	if l, ok := modifierLabels[m]; ok {
		return l
	}
	return string(m)
}

// keyLabel: "space" -> "Space", "f1" -> "F1", "a" -> "A".
func keyLabel(k config.Key) string {
	s := string(k)
	if len(s) == 1 || (s[0] == 'f' && len(s) <= 3) {
		return strings.ToUpper(s)
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func parseModifiers(labels []string) []config.Modifier {
	mods := make([]config.Modifier, 0, len(labels))
	for _, m := range config.AvailableModifiers() {
		for _, l := range labels {
			if l == modifierLabel(m) {
				mods = append(mods, m)
				break
			}
		}
	}
	return mods
}

func parseKey(label string) (config.Key, bool) {
	for _, k := range config.AvailableKeys() {
		if keyLabel(k) == label {
			return k, true
		}
	}
	return "", false
}

// SelectHotkey открывает диалог выбора горячей клавиши.
// Возвращает выбранную конфигурацию или ошибку если пользователь отменил.
func SelectHotkey(current config.HotkeyConfig) (config.HotkeyConfig, error) {
	// Шаг 1: Выбор модификаторов
	modOptions := make([]string, 0, len(config.AvailableModifiers()))
	for _, m := range config.AvailableModifiers() {
		modOptions = append(modOptions, modifierLabel(m))
	}
	currentMods := make([]string, 0, len(current.Modifiers))
	for _, m := range current.Modifiers {
		currentMods = append(currentMods, modifierLabel(m))
	}

	selectedMods, err := zenity.ListMultiple(
		i18n.T("dialog_hotkey_mods"),
		modOptions,
		zenity.Title(i18n.T("dialog_hotkey_title_mods")),
		zenity.DefaultItems(currentMods...),
	)
	if err != nil {
		return current, err
	}

	newMods := parseModifiers(selectedMods)
	if len(newMods) == 0 {
		ShowError(i18n.T("dialog_hotkey_title_mods"), i18n.T("dialog_hotkey_no_mods"))
		return current, ErrNoModifiers
	}

	// Шаг 2: Выбор клавиши
	keyOptions := make([]string, 0, len(config.AvailableKeys()))
	for _, k := range config.AvailableKeys() {
		keyOptions = append(keyOptions, keyLabel(k))
	}

	selectedKey, err := zenity.List(
		i18n.T("dialog_hotkey_key"),
		keyOptions,
		zenity.Title(i18n.T("dialog_hotkey_title_key")),
		zenity.DefaultItems(keyLabel(current.Key)),
	)
	if err != nil {
		return current, err
	}

	newKey, ok := parseKey(selectedKey)
	if !ok {
		return current, zenity.ErrCanceled
	}

	return config.HotkeyConfig{
		Modifiers: newMods,
		Key:       newKey,
	}, nil
}

// ServerURL запрашивает адрес бэкенда.
func ServerURL(current string) (string, error) {
	v, err := zenity.Entry(
		i18n.T("dialog_server_prompt"),
		zenity.Title(i18n.T("dialog_server_title")),
		zenity.EntryText(current),
	)
	if err != nil {
		return current, err
	}
	return strings.TrimSpace(v), nil
}

// ShowError показывает сообщение об ошибке.
func ShowError(title, message string) {
	_ = zenity.Error(message, zenity.Title(title), zenity.ErrorIcon)
}

// Package config предоставляет конфигурацию приложения с сохранением в файл.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Переменные окружения, переопределяющие файл.
const (
	EnvServerURL   = "TAIWA_SERVER_URL"
	EnvMetricsAddr = "TAIWA_METRICS_ADDR"
	EnvDebug       = "TAIWA_DEBUG"
)

// DefaultServerURL - адрес бэкенда по умолчанию.
const DefaultServerURL = "http://localhost:8000"

// Modifier представляет модификатор клавиши.
type Modifier string

const (
	ModCtrl  Modifier = "ctrl"
	ModShift Modifier = "shift"
	ModAlt   Modifier = "alt"
	ModSuper Modifier = "super" // Win/Cmd
)

// Key представляет клавишу.
type Key string

const (
	KeySpace  Key = "space"
	KeyReturn Key = "return"
	KeyTab    Key = "tab"
	KeyA      Key = "a"
	KeyB      Key = "b"
	KeyC      Key = "c"
	KeyD      Key = "d"
	KeyE      Key = "e"
	KeyF      Key = "f"
	KeyG      Key = "g"
	KeyH      Key = "h"
	KeyI      Key = "i"
	KeyJ      Key = "j"
	KeyK      Key = "k"
	KeyL      Key = "l"
	KeyM      Key = "m"
	KeyN      Key = "n"
	KeyO      Key = "o"
	KeyP      Key = "p"
	KeyQ      Key = "q"
	KeyR      Key = "r"
	KeyS      Key = "s"
	KeyT      Key = "t"
	KeyU      Key = "u"
	KeyV      Key = "v"
	KeyW      Key = "w"
	KeyX      Key = "x"
	KeyY      Key = "y"
	KeyZ      Key = "z"
	KeyF1     Key = "f1"
	KeyF2     Key = "f2"
	KeyF3     Key = "f3"
	KeyF4     Key = "f4"
	KeyF5     Key = "f5"
	KeyF6     Key = "f6"
	KeyF7     Key = "f7"
	KeyF8     Key = "f8"
	KeyF9     Key = "f9"
	KeyF10    Key = "f10"
	KeyF11    Key = "f11"
	KeyF12    Key = "f12"
)

// HotkeyConfig хранит настройки горячей клавиши.
type HotkeyConfig struct {
	Modifiers []Modifier `json:"modifiers"`
	Key       Key        `json:"key"`
}

// String возвращает строковое представление горячей клавиши.
func (h HotkeyConfig) String() string {
	parts := make([]string, 0, len(h.Modifiers)+1)
	for _, m := range h.Modifiers {
		parts = append(parts, string(m))
	}
	parts = append(parts, string(h.Key))
	return strings.Join(parts, "+")
}

// configData структура для сериализации.
type configData struct {
	ServerURL      string       `json:"server_url"`
	UILanguage     string       `json:"ui_language,omitempty"`
	Notifications  bool         `json:"notifications"`
	Hotkey         HotkeyConfig `json:"hotkey"`
	RequestTimeout int          `json:"request_timeout_seconds,omitempty"`
	HTTP2          bool         `json:"http2,omitempty"`
	MetricsAddr    string       `json:"metrics_addr,omitempty"`
	Debug          bool         `json:"debug,omitempty"`
}

// Config хранит настройки приложения. История диалога сюда не попадает.
type Config struct {
	mu             sync.RWMutex
	serverURL      string
	uiLanguage     string
	notifications  bool
	hotkey         HotkeyConfig
	requestTimeout time.Duration
	http2          bool
	metricsAddr    string
	debug          bool
	configPath     string
	onHotkeyChange func(HotkeyConfig)
	onServerChange func(string)
}

// New создаёт конфигурацию из config.json рядом с бинарником.
func New() *Config {
	path := ""
	// Резолвим симлинки, чтобы найти настоящий каталог бинарника
	if execPath, err := os.Executable(); err == nil {
		if execPath, err = filepath.EvalSymlinks(execPath); err == nil {
			path = filepath.Join(filepath.Dir(execPath), "config.json")
		}
	}
	return NewAt(path)
}

// NewAt создаёт конфигурацию из указанного файла. Пустой путь - без сохранения.
func NewAt(path string) *Config {
	c := &Config{
		serverURL:     DefaultServerURL,
		uiLanguage:    "ja", // По умолчанию японский интерфейс
		notifications: true,
		hotkey: HotkeyConfig{
			Modifiers: []Modifier{ModCtrl, ModShift},
			Key:       KeySpace,
		},
		configPath: path,
	}

	c.load()
	c.applyEnv()

	return c
}

// load загружает конфигурацию из файла.
func (c *Config) load() {
	if c.configPath == "" {
		return
	}

	data, err := os.ReadFile(c.configPath)
	if err != nil {
		return // Файл не существует, используем defaults
	}

	var cfg configData
	if err := json.Unmarshal(data, &cfg); err != nil {
		return
	}

	if cfg.ServerURL != "" {
		c.serverURL = cfg.ServerURL
	}
	if cfg.UILanguage != "" {
		c.uiLanguage = cfg.UILanguage
	}
	c.notifications = cfg.Notifications
	if cfg.Hotkey.Key != "" {
		c.hotkey = cfg.Hotkey
	}
	if cfg.RequestTimeout > 0 {
		c.requestTimeout = time.Duration(cfg.RequestTimeout) * time.Second
	}
	c.http2 = cfg.HTTP2
	c.metricsAddr = cfg.MetricsAddr
	c.debug = cfg.Debug
}

// applyEnv применяет переменные окружения поверх файла.
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvServerURL)); v != "" {
		c.serverURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMetricsAddr)); v != "" {
		c.metricsAddr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDebug)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.debug = b
		}
	}
}

// save сохраняет конфигурацию в файл.
func (c *Config) save() error {
	if c.configPath == "" {
		return nil
	}

	cfg := configData{
		ServerURL:      c.serverURL,
		UILanguage:     c.uiLanguage,
		Notifications:  c.notifications,
		Hotkey:         c.hotkey,
		RequestTimeout: int(c.requestTimeout / time.Second),
		HTTP2:          c.http2,
		MetricsAddr:    c.metricsAddr,
		Debug:          c.debug,
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.configPath, data, 0644)
}

// Path возвращает путь к файлу конфигурации.
func (c *Config) Path() string {
	return c.configPath
}

// ServerURL возвращает адрес бэкенда.
func (c *Config) ServerURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverURL
}

// SetServerURL устанавливает адрес бэкенда.
func (c *Config) SetServerURL(url string) error {
	c.mu.Lock()
	c.serverURL = strings.TrimSpace(url)
	callback := c.onServerChange
	err := c.save()
	value := c.serverURL
	c.mu.Unlock()

	if callback != nil {
		callback(value)
	}
	return err
}

// OnServerChange устанавливает callback для изменения адреса бэкенда.
func (c *Config) OnServerChange(fn func(string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onServerChange = fn
}

// SetNotifications включает/выключает уведомления.
func (c *Config) SetNotifications(enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = enabled
	return c.save()
}

// ToggleNotifications переключает состояние уведомлений.
func (c *Config) ToggleNotifications() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = !c.notifications
	_ = c.save()
	return c.notifications
}

// NotificationsEnabled возвращает true если уведомления включены.
func (c *Config) NotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.notifications
}

// Hotkey возвращает текущую горячую клавишу.
func (c *Config) Hotkey() HotkeyConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hotkey
}

// SetHotkey устанавливает горячую клавишу.
func (c *Config) SetHotkey(hk HotkeyConfig) error {
	c.mu.Lock()
	c.hotkey = hk
	callback := c.onHotkeyChange
	err := c.save()
	c.mu.Unlock()

	if callback != nil {
		callback(hk)
	}
	return err
}

// OnHotkeyChange устанавливает callback для изменения горячей клавиши.
func (c *Config) OnHotkeyChange(fn func(HotkeyConfig)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onHotkeyChange = fn
}

// RequestTimeout возвращает таймаут одного HTTP-запроса. Ноль - без таймаута.
func (c *Config) RequestTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.requestTimeout
}

// HTTP2 возвращает true если для бэкенда включён HTTP/2.
func (c *Config) HTTP2() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.http2
}

// MetricsAddr возвращает адрес для /metrics. Пустой - метрики не публикуются.
func (c *Config) MetricsAddr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.metricsAddr
}

// Debug возвращает true если включено подробное логирование.
func (c *Config) Debug() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.debug
}

// UILanguage возвращает язык интерфейса.
func (c *Config) UILanguage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.uiLanguage
}

// SetUILanguage устанавливает язык интерфейса.
func (c *Config) SetUILanguage(lang string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.uiLanguage = lang
	return c.save()
}

// AvailableModifiers возвращает список доступных модификаторов.
func AvailableModifiers() []Modifier {
	return []Modifier{ModCtrl, ModShift, ModAlt, ModSuper}
}

// AvailableKeys возвращает список доступных клавиш.
func AvailableKeys() []Key {
	return []Key{
		KeySpace, KeyReturn, KeyTab,
		KeyA, KeyB, KeyC, KeyD, KeyE, KeyF, KeyG, KeyH, KeyI, KeyJ, KeyK, KeyL, KeyM,
		KeyN, KeyO, KeyP, KeyQ, KeyR, KeyS, KeyT, KeyU, KeyV, KeyW, KeyX, KeyY, KeyZ,
		KeyF1, KeyF2, KeyF3, KeyF4, KeyF5, KeyF6, KeyF7, KeyF8, KeyF9, KeyF10, KeyF11, KeyF12,
	}
}

// Package app содержит основную логику приложения.
package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"taiwa/internal/audio"
	"taiwa/internal/config"
	"taiwa/internal/dialog"
	"taiwa/internal/hotkey"
	"taiwa/internal/i18n"
	"taiwa/internal/metrics"
	"taiwa/internal/notify"
	"taiwa/internal/session"
	"taiwa/internal/tray"
	"taiwa/internal/window"
)

// App представляет главное приложение.
type App struct {
	mu       sync.Mutex
	logger   *zap.Logger
	config   *config.Config
	recorder *audio.Recorder
	player   *audio.Player
	backend  *backend
	session  *session.Controller
	metrics  *metrics.Metrics
	notifier *notify.Notifier
	tray     *tray.Tray
	hotkey   *hotkey.Handler
	window   *window.Window
	server   *http.Server
	last     session.State
	closed   bool
}

// New создаёт новое приложение.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	i18n.SetLanguage(i18n.Parse(cfg.UILanguage()))

	client, err := newClient(cfg, cfg.ServerURL(), logger)
	if err != nil {
		logger.Warn("invalid server url, using default", zap.String("url", cfg.ServerURL()), zap.Error(err))
		if client, err = newClient(cfg, config.DefaultServerURL, logger); err != nil {
			return nil, err
		}
	}

	recorder, err := audio.New(logger.Named("recorder"))
	if err != nil {
		return nil, err
	}

	player, err := audio.NewPlayer(logger.Named("player"))
	if err != nil {
		recorder.Close()
		return nil, err
	}

	a := &App{
		logger:   logger,
		config:   cfg,
		recorder: recorder,
		player:   player,
		backend:  &backend{client: client},
		metrics:  metrics.New(),
		notifier: notify.New(cfg.NotificationsEnabled()),
	}

	a.session = session.New(logger.Named("session"), recorder, a.backend, player)
	a.session.SetObserver(a.metrics)
	a.session.OnError(a.notifier.Failure)
	a.session.OnChange(a.onSessionChange)

	a.window = window.New(a.session, recorder, window.DefaultConfig(), logger.Named("window"))
	a.window.OnError(func(error) {
		a.notifier.Error(i18n.T("error_clipboard"))
	})

	// Горячая клавиша переключает запись
	a.hotkey = hotkey.New(a.onHotkeyPress, logger.Named("hotkey"))

	cfg.OnServerChange(a.reconnect)
	cfg.OnHotkeyChange(func(hk config.HotkeyConfig) {
		if err := a.hotkey.Register(hk); err != nil {
			a.notifier.Error(i18n.T("error_hotkey_register") + ": " + hk.String())
		}
	})

	a.tray = tray.New(tray.Callbacks{
		OnOpenWindow: a.window.Show,
		OnNotificationsToggle: func() bool {
			enabled := a.config.ToggleNotifications()
			a.notifier.SetEnabled(enabled)
			return enabled
		},
		OnServerClick:    a.selectServer,
		OnHotkeyClick:    a.selectHotkey,
		OnLanguageToggle: a.toggleLanguage,
		OnQuit:           a.Close,
	}, cfg.NotificationsEnabled())

	return a, nil
}

// Run запускает приложение. Блокирует до выхода из трея.
func (a *App) Run() {
	a.tray.Run(func() {
		// Регистрируем горячую клавишу после инициализации трея
		if err := a.hotkey.Register(a.config.Hotkey()); err != nil {
			a.notifier.Error(i18n.T("error_hotkey_register"))
		}

		a.serveMetrics()
		a.window.Show()
		a.notifier.Ready()
		a.logger.Info("ready",
			zap.String("server", a.backend.current().BaseURL()),
			zap.String("hotkey", a.config.Hotkey().String()))
	})
}

func (a *App) onHotkeyPress() {
	if err := a.session.ToggleRecording(); err != nil {
		if errors.Is(err, session.ErrBusy) {
			a.notifier.Error(i18n.T("error_busy"))
		}
		return
	}
	a.window.Show()
}

// onSessionChange синхронизирует трей, окно и уведомления с состоянием сессии.
func (a *App) onSessionChange() {
	prev, s := a.track(func(s session.State) {
		a.tray.SetState(tray.StateFor(s))
	})
	a.window.Invalidate()

	switch announce(prev, s) {
	case announceRecording:
		a.notifier.Recording()
	case announceReply:
		if !a.window.IsVisible() {
			a.notifier.Reply(s.Reply)
		}
	}
}

// track снимает состояние сессии и применяет его под a.mu, чтобы
// изменения из разных горутин не применялись в обратном порядке.
func (a *App) track(apply func(session.State)) (prev, cur session.State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	prev = a.last
	cur = a.session.Snapshot()
	a.last = cur
	apply(cur)
	return prev, cur
}

type announcement int

const (
	announceNone announcement = iota
	announceRecording
	announceReply
)

// announce решает, о каком переходе состояния стоит уведомить.
func announce(prev, cur session.State) announcement {
	switch {
	case cur.Recording && !prev.Recording:
		return announceRecording
	case cur.Reply != "" && cur.Reply != prev.Reply:
		return announceReply
	default:
		return announceNone
	}
}

func (a *App) reconnect(url string) {
	client, err := newClient(a.config, url, a.logger)
	if err != nil {
		a.logger.Error("server change rejected", zap.String("url", url), zap.Error(err))
		a.notifier.Error(i18n.T("error_server_url"))
		return
	}
	a.backend.swap(client)
	a.logger.Info("server changed", zap.String("url", client.BaseURL()))
}

func (a *App) selectServer() {
	url, err := dialog.ServerURL(a.config.ServerURL())
	if err != nil {
		if !dialog.Canceled(err) {
			a.logger.Warn("server dialog failed", zap.Error(err))
		}
		return
	}
	// Проверяем адрес до сохранения
	if _, err := newClient(a.config, url, a.logger); err != nil {
		dialog.ShowError(i18n.T("dialog_server_title"), i18n.T("error_server_url")+": "+err.Error())
		return
	}
	if err := a.config.SetServerURL(url); err != nil {
		a.logger.Warn("save config failed", zap.Error(err))
	}
}

func (a *App) selectHotkey() {
	hk, err := dialog.SelectHotkey(a.config.Hotkey())
	if err != nil {
		if !dialog.Canceled(err) && !errors.Is(err, dialog.ErrNoModifiers) {
			a.logger.Warn("hotkey dialog failed", zap.Error(err))
		}
		return
	}
	if err := a.config.SetHotkey(hk); err != nil {
		a.logger.Warn("save config failed", zap.Error(err))
	}
}

func (a *App) toggleLanguage() {
	lang := nextLanguage(i18n.GetLanguage())
	i18n.SetLanguage(lang)
	if err := a.config.SetUILanguage(string(lang)); err != nil {
		a.logger.Warn("save config failed", zap.Error(err))
	}
	a.tray.RefreshUI()
	a.window.Invalidate()
}

func nextLanguage(cur i18n.Language) i18n.Language {
	langs := i18n.AvailableLanguages()
	for i, l := range langs {
		if l == cur {
			return langs[(i+1)%len(langs)]
		}
	}
	return langs[0]
}

// serveMetrics поднимает /metrics, если задан адрес.
func (a *App) serveMetrics() {
	addr := a.config.MetricsAddr()
	if addr == "" {
		return
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	a.mu.Lock()
	a.server = srv
	a.mu.Unlock()

	go func() {
		a.logger.Info("metrics listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", zap.Error(err))
		}
	}()
}

// Close освобождает ресурсы приложения.
func (a *App) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	srv := a.server
	a.mu.Unlock()

	if err := a.hotkey.Unregister(); err != nil {
		a.logger.Warn("hotkey unregister failed", zap.Error(err))
	}

	a.window.Hide()

	// Прерывает текущий запрос и закрывает плеер
	a.session.Close()
	a.recorder.Close()

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	_ = a.logger.Sync()
}

// Taiwa - голосовой диалог с ИИ из системного трея.
//
// Записывает речь, отправляет её на сервер распознавания, получает
// ответ чата и проигрывает синтезированную речь.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"taiwa/internal/app"
	"taiwa/internal/config"
	"taiwa/internal/hotkey"
)

// Version устанавливается при сборке через -ldflags.
var Version = "dev"

func main() {
	// .env необязателен: переменные окружения могут быть заданы иначе
	envErr := godotenv.Load()

	cfg := config.New()
	logger := newLogger(cfg.Debug())
	if envErr != nil && !os.IsNotExist(envErr) {
		logger.Warn("failed to load .env", zap.Error(envErr))
	}
	logger.Info("starting", zap.String("version", Version), zap.String("config", cfg.Path()))

	// Запускаем в главном потоке (требование для macOS и некоторых GUI)
	hotkey.RunOnMainThread(func() {
		application, err := app.New(cfg, logger)
		if err != nil {
			logger.Error("init failed", zap.Error(err))
			_ = logger.Sync()
			os.Exit(1)
		}
		application.Run()
	})
}

func newLogger(debug bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

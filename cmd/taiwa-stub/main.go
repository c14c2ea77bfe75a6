// Command taiwa-stub обслуживает эндпоинты распознавания, чата и синтеза
// с заданным поведением для локальной разработки и тестов.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"taiwa/internal/stub"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("TAIWA_STUB_ADDR", "127.0.0.1:8000"), "listen address")
	transcript := flag.String("transcript", "hello", "text returned by /transcribe for non-silent audio")
	reply := flag.String("reply", "", "fixed chat reply; empty echoes the last user message")
	debug := flag.Bool("debug", false, "development logging")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewProduction()
	if *debug {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync() //nolint:errcheck

	opts := stub.Options{Transcriber: stub.FixedTranscript(*transcript)}
	if *reply != "" {
		opts.Responder = stub.FixedReply(*reply)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           stub.New(opts, logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("stub backend listening", zap.String("addr", *addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

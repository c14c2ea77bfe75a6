package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"taiwa/internal/audio"
	"taiwa/internal/config"
	"taiwa/internal/conversation"
	"taiwa/internal/remote"
)

// backend делегирует вызовы текущему клиенту; клиент заменяется при смене адреса сервера.
type backend struct {
	mu     sync.RWMutex
	client *remote.Client
}

func newClient(cfg *config.Config, url string, logger *zap.Logger) (*remote.Client, error) {
	return remote.New(remote.Config{
		BaseURL: url,
		Timeout: cfg.RequestTimeout(),
		HTTP2:   cfg.HTTP2(),
	}, logger.Named("remote"))
}

func (b *backend) swap(c *remote.Client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.client = c
}

func (b *backend) current() *remote.Client {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.client
}

func (b *backend) Transcribe(ctx context.Context, wav []byte) (string, error) {
	return b.current().Transcribe(ctx, wav)
}

func (b *backend) Chat(ctx context.Context, messages []conversation.Message) (string, error) {
	return b.current().Chat(ctx, messages)
}

func (b *backend) Synthesize(ctx context.Context, text string) (audio.Clip, error) {
	return b.current().Synthesize(ctx, text)
}

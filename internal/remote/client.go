// Package remote это HTTP-клиент для эндпоинтов распознавания, чата и синтеза.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"

	"taiwa/internal/audio"
	"taiwa/internal/conversation"
)

const (
	DefaultBaseURL = "http://localhost:8000"

	PathTranscribe = "/transcribe"
	PathChat       = "/chat"
	PathSynthesize = "/synthesize"

	// FileField это поле multipart с записанным звуком.
	FileField = "file"
	// UploadName это имя файла, отправляемое с записью.
	UploadName = "audio.wav"

	HeaderRequestID = "X-Request-Id"

	maxErrorBody = 4 << 10
)

// Config содержит настройки клиента.
type Config struct {
	BaseURL string
	// Timeout ограничивает один HTTP-вызов. Ноль означает без ограничения.
	Timeout time.Duration
	// HTTP2 включает HTTP/2 поверх TLS.
	HTTP2 bool
}

// DefaultConfig возвращает настройки для сервера на localhost.
func DefaultConfig() Config {
	return Config{BaseURL: DefaultBaseURL}
}

// StatusError возвращается для любого ответа не 2xx.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: server returned %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: server returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client общается с сервером диалога.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New проверяет cfg и создаёт клиент.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", base)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", base)
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.HTTP2 {
		if err := http2.ConfigureTransport(tr); err != nil {
			return nil, fmt.Errorf("configure http2: %w", err)
		}
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: tr,
		},
		logger: logger,
	}, nil
}

// BaseURL возвращает нормализованный адрес сервера.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type transcribeResponse struct {
	Transcription string `json:"transcription"`
}

type chatRequest struct {
	Messages []conversation.Message `json:"messages"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type synthesizeRequest struct {
	Text string `json:"text"`
}

// Transcribe загружает WAV-запись и возвращает расшифровку.
func (c *Client) Transcribe(ctx context.Context, wav []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FileField, UploadName))
	h.Set("Content-Type", "audio/wav")
	part, err := writer.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	var out transcribeResponse
	if err := c.doJSON(ctx, PathTranscribe, writer.FormDataContentType(), &buf, &out); err != nil {
		return "", err
	}
	return out.Transcription, nil
}

// Chat отправляет всю историю и возвращает ответ ассистента.
func (c *Client) Chat(ctx context.Context, messages []conversation.Message) (string, error) {
	if messages == nil {
		messages = []conversation.Message{}
	}
	body, err := json.Marshal(chatRequest{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var out chatResponse
	if err := c.doJSON(ctx, PathChat, "application/json", bytes.NewReader(body), &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// Synthesize возвращает озвучку текста.
func (c *Client) Synthesize(ctx context.Context, text string) (audio.Clip, error) {
	body, err := json.Marshal(synthesizeRequest{Text: text})
	if err != nil {
		return audio.Clip{}, fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.post(ctx, PathSynthesize, "application/json", bytes.NewReader(body))
	if err != nil {
		return audio.Clip{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("%s: read body: %w", PathSynthesize, err)
	}
	if len(data) == 0 {
		return audio.Clip{}, fmt.Errorf("%s: empty audio", PathSynthesize)
	}
	return audio.Clip{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func (c *Client) doJSON(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	resp, err := c.post(ctx, path, contentType, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", path, err)
	}
	return nil
}

// post отправляет один запрос; тело ответа 2xx закрывает вызывающий.
func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", path, err)
	}
	req.Header.Set("Content-Type", contentType)
	if id := RequestID(ctx); id != "" {
		req.Header.Set(HeaderRequestID, id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: send request: %w", path, err)
	}

	c.logger.Debug("backend call",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("request_id", RequestID(ctx)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Endpoint:   path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(msg)),
		}
	}
	return resp, nil
}

// IsStatus сообщает, является ли err StatusError с данным кодом.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

type requestIDKey struct{}

// WithRequestID прикрепляет ID запроса, передаваемый как X-Request-Id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID возвращает ID запроса из ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

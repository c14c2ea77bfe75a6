// Package stub это локальная замена сервера диалога.
// Те же три эндпоинта с заранее заданным поведением.
package stub

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"taiwa/internal/audio"
	"taiwa/internal/conversation"
)

// HistoryWindow это число последних сообщений, которые учитывает чат.
const HistoryWindow = 20

// Transcriber превращает декодированный звук в текст.
type Transcriber func(pcm audio.PCM) string

// Responder формирует ответ ассистента по окну истории.
type Responder func(messages []conversation.Message) string

// Options содержит настройки заглушки.
type Options struct {
	Transcriber Transcriber
	Responder   Responder
	// MaxUpload ограничивает размер тела multipart в байтах.
	MaxUpload int64
}

// FixedTranscript возвращает Transcriber, отвечающий text на любой звук,
// который не заканчивается тишиной. Тихий хвост даёт пустую расшифровку.
func FixedTranscript(text string) Transcriber {
	return func(pcm audio.PCM) string {
		if audio.Level(pcm.Samples) == 0 {
			return ""
		}
		return text
	}
}

// FixedReply возвращает Responder, всегда отвечающий text.
func FixedReply(text string) Responder {
	return func([]conversation.Message) string { return text }
}

// Echo отвечает текстом последнего сообщения пользователя.
func Echo(messages []conversation.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == conversation.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// Server обслуживает эндпоинты заглушки.
type Server struct {
	opts   Options
	logger *zap.Logger
}

// New создаёт сервер заглушки со значениями по умолчанию.
func New(opts Options, logger *zap.Logger) *Server {
	if opts.Transcriber == nil {
		opts.Transcriber = FixedTranscript("hello")
	}
	if opts.Responder == nil {
		opts.Responder = Echo
	}
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = 32 << 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{opts: opts, logger: logger}
}

// Router подключает эндпоинты.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Post("/transcribe", s.handleTranscribe)
	r.Post("/chat", s.handleChat)
	r.Post("/synthesize", s.handleSynthesize)
	r.Get("/health", s.handleHealth)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("client_request_id", r.Header.Get("X-Request-Id")))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUpload)
	if err := r.ParseMultipartForm(s.opts.MaxUpload); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := readAll(file, s.opts.MaxUpload)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read file: "+err.Error())
		return
	}
	pcm, err := audio.DecodeWAV(data)
	if err != nil {
		respondError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"transcription": s.opts.Transcriber(pcm),
	})
}

type chatPayload struct {
	Messages []conversation.Message `json:"messages"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if len(payload.Messages) == 0 {
		respondError(w, http.StatusBadRequest, "messages are required")
		return
	}
	for _, m := range payload.Messages {
		if m.Role != conversation.RoleUser && m.Role != conversation.RoleAssistant {
			respondError(w, http.StatusBadRequest, "invalid role: "+string(m.Role))
			return
		}
	}
	if last := payload.Messages[len(payload.Messages)-1]; last.Role != conversation.RoleUser {
		respondError(w, http.StatusBadRequest, "last message must be from user")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"response": s.opts.Responder(Window(payload.Messages)),
	})
}

type synthesizePayload struct {
	Text string `json:"text"`
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	var payload synthesizePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	data, err := Tone(payload.Text)
	if err != nil {
		s.logger.Error("synthesize failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "synthesis failed")
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Window оставляет последние HistoryWindow сообщений.
func Window(messages []conversation.Message) []conversation.Message {
	if len(messages) <= HistoryWindow {
		return messages
	}
	return messages[len(messages)-HistoryWindow:]
}

package remote_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"taiwa/internal/audio"
	"taiwa/internal/conversation"
	"taiwa/internal/remote"
	"taiwa/internal/stub"
)

func newClient(t *testing.T, url string) *remote.Client {
	t.Helper()
	c, err := remote.New(remote.Config{BaseURL: url}, nil)
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	return c
}

func TestNewValidatesBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{"default", "", remote.DefaultBaseURL, false},
		{"trailing slash", "http://example.com:8000/", "http://example.com:8000", false},
		{"bad scheme", "ftp://example.com", "", true},
		{"no host", "http://", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := remote.New(remote.Config{BaseURL: tt.url}, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if c.BaseURL() != tt.want {
				t.Fatalf("BaseURL() = %q, want %q", c.BaseURL(), tt.want)
			}
		})
	}
}

func TestTranscribeSendsFileField(t *testing.T) {
	payload := []byte("RIFF....WAVE")
	var gotID string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != remote.PathTranscribe || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotID = r.Header.Get(remote.HeaderRequestID)

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile err: %v", err)
			http.Error(w, "bad", http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != string(payload) {
			t.Errorf("unexpected upload %q", data)
		}
		if header.Filename != remote.UploadName {
			t.Errorf("unexpected filename %q", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "audio/wav" {
			t.Errorf("unexpected part content type %q", ct)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"transcription": "hello"})
	}))
	defer srv.Close()

	ctx := remote.WithRequestID(context.Background(), "req-1")
	text, err := newClient(t, srv.URL).Transcribe(ctx, payload)
	if err != nil {
		t.Fatalf("Transcribe err: %v", err)
	}
	if text != "hello" {
		t.Fatalf("unexpected transcription %q", text)
	}
	if gotID != "req-1" {
		t.Fatalf("request id not propagated, got %q", gotID)
	}
}

func TestChatSendsMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []conversation.Message `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode err: %v", err)
		}
		if len(body.Messages) != 1 || body.Messages[0] != conversation.User("hello") {
			t.Errorf("unexpected messages %+v", body.Messages)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"response": "hi there"})
	}))
	defer srv.Close()

	reply, err := newClient(t, srv.URL).Chat(context.Background(), []conversation.Message{conversation.User("hello")})
	if err != nil {
		t.Fatalf("Chat err: %v", err)
	}
	if reply != "hi there" {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestSynthesizeReturnsClip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["text"] != "hi there" {
			t.Errorf("unexpected text %q", body["text"])
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte{0xFF, 0xFB, 0x90, 0x00})
	}))
	defer srv.Close()

	clip, err := newClient(t, srv.URL).Synthesize(context.Background(), "hi there")
	if err != nil {
		t.Fatalf("Synthesize err: %v", err)
	}
	if clip.ContentType != "audio/mpeg" || len(clip.Data) != 4 {
		t.Fatalf("unexpected clip %+v", clip)
	}
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "engine down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	_, err := c.Chat(context.Background(), []conversation.Message{conversation.User("x")})

	var se *remote.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Endpoint != remote.PathChat || se.StatusCode != http.StatusBadGateway || se.Body != "engine down" {
		t.Fatalf("unexpected error fields %+v", se)
	}
	if !remote.IsStatus(err, http.StatusBadGateway) {
		t.Fatal("IsStatus should match 502")
	}
}

func TestSynthesizeEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/wav")
	}))
	defer srv.Close()

	if _, err := newClient(t, srv.URL).Synthesize(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty audio")
	}
}

func TestAgainstStub(t *testing.T) {
	backend := stub.New(stub.Options{
		Transcriber: stub.FixedTranscript("hello"),
		Responder:   stub.FixedReply("hi there"),
	}, nil)
	srv := httptest.NewServer(backend.Router())
	defer srv.Close()

	c := newClient(t, srv.URL)
	ctx := context.Background()

	loud := make([]int16, 4096)
	for i := range loud {
		loud[i] = int16(3000 * (i%2*2 - 1))
	}
	wav, err := audio.EncodeWAV(loud, audio.SampleRate)
	if err != nil {
		t.Fatalf("EncodeWAV err: %v", err)
	}

	text, err := c.Transcribe(ctx, wav)
	if err != nil || text != "hello" {
		t.Fatalf("Transcribe = %q, %v", text, err)
	}
	reply, err := c.Chat(ctx, []conversation.Message{conversation.User(text)})
	if err != nil || reply != "hi there" {
		t.Fatalf("Chat = %q, %v", reply, err)
	}
	clip, err := c.Synthesize(ctx, reply)
	if err != nil {
		t.Fatalf("Synthesize err: %v", err)
	}
	if audio.DetectFormat(clip) != audio.FormatWAV {
		t.Fatalf("unexpected clip format, content type %q", clip.ContentType)
	}
	if _, err := audio.DecodeClip(clip); err != nil {
		t.Fatalf("clip does not decode: %v", err)
	}

	// Заглушка отклоняет загрузки не в WAV.
	if _, err := c.Transcribe(ctx, []byte("garbage garbage garbage garbage garbage garbage")); !remote.IsStatus(err, http.StatusUnsupportedMediaType) {
		t.Fatalf("expected 415, got %v", err)
	}
}

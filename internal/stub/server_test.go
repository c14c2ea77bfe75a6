package stub

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taiwa/internal/audio"
	"taiwa/internal/conversation"
)

func uploadRequest(t *testing.T, field string, data []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, "audio.wav")
	if err != nil {
		t.Fatalf("CreateFormFile err: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write audio err: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("writer.Close err: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/transcribe", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestTranscribe(t *testing.T) {
	router := New(Options{Transcriber: FixedTranscript("hello")}, nil).Router()

	loud := make([]int16, 2048)
	for i := range loud {
		loud[i] = int16(4000 * (i%2*2 - 1))
	}
	wav, err := audio.EncodeWAV(loud, audio.SampleRate)
	if err != nil {
		t.Fatalf("EncodeWAV err: %v", err)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, uploadRequest(t, "file", wav))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rr.Code, rr.Body.String())
	}
	var out map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if out["transcription"] != "hello" {
		t.Fatalf("unexpected transcription: %q", out["transcription"])
	}
}

func TestTranscribeSilenceIsEmpty(t *testing.T) {
	router := New(Options{}, nil).Router()

	wav, err := audio.EncodeWAV(make([]int16, 2048), audio.SampleRate)
	if err != nil {
		t.Fatalf("EncodeWAV err: %v", err)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, uploadRequest(t, "file", wav))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"transcription":""`) {
		t.Fatalf("expected empty transcription, got %s", rr.Body.String())
	}
}

func TestTranscribeRejectsBadUploads(t *testing.T) {
	router := New(Options{}, nil).Router()

	tests := []struct {
		name   string
		field  string
		data   []byte
		status int
	}{
		{"wrong field", "audio", []byte("RIFF"), http.StatusBadRequest},
		{"not wav", "file", []byte("this is not audio data, only some text bytes"), http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, uploadRequest(t, tt.field, tt.data))
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d body=%s", tt.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func postJSON(router http.Handler, path string, payload any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestChatEcho(t *testing.T) {
	router := New(Options{}, nil).Router()

	rr := postJSON(router, "/chat", map[string]any{
		"messages": []conversation.Message{conversation.User("hello")},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	var out map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if out["response"] != "hello" {
		t.Fatalf("unexpected response: %q", out["response"])
	}
}

func TestChatWindowsHistory(t *testing.T) {
	var seen []conversation.Message
	router := New(Options{Responder: func(m []conversation.Message) string {
		seen = m
		return "ok"
	}}, nil).Router()

	msgs := make([]conversation.Message, 0, 25)
	for i := 0; i < 12; i++ {
		msgs = append(msgs, conversation.User(fmt.Sprintf("q%d", i)))
		if i < 11 {
			msgs = append(msgs, conversation.Assistant(fmt.Sprintf("a%d", i)))
		}
	}

	rr := postJSON(router, "/chat", map[string]any{"messages": msgs})
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if len(seen) != HistoryWindow {
		t.Fatalf("expected %d messages, got %d", HistoryWindow, len(seen))
	}
	if seen[len(seen)-1].Content != "q11" {
		t.Fatalf("window lost the latest message: %+v", seen[len(seen)-1])
	}
}

func TestChatValidation(t *testing.T) {
	router := New(Options{}, nil).Router()

	tests := []struct {
		name    string
		payload any
	}{
		{"empty", map[string]any{"messages": []conversation.Message{}}},
		{"bad role", map[string]any{"messages": []map[string]string{{"role": "system", "content": "x"}}}},
		{"last assistant", map[string]any{"messages": []conversation.Message{conversation.User("a"), conversation.Assistant("b")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := postJSON(router, "/chat", tt.payload); rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestSynthesize(t *testing.T) {
	router := New(Options{}, nil).Router()

	rr := postJSON(router, "/synthesize", map[string]string{"text": "hi there"})
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Fatalf("unexpected content type: %s", ct)
	}
	pcm, err := audio.DecodeWAV(rr.Body.Bytes())
	if err != nil {
		t.Fatalf("response is not a wav: %v", err)
	}
	if want := len("hi there") * audio.SampleRate * 60 / 1000; len(pcm.Samples) != want {
		t.Fatalf("expected %d samples, got %d", want, len(pcm.Samples))
	}

	if rr := postJSON(router, "/synthesize", map[string]string{"text": "  "}); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank text, got %d", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	router := New(Options{}, nil).Router()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

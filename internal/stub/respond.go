package stub

import (
	"encoding/json"
	"io"
	"math"
	"net/http"
	"time"
	"unicode/utf8"

	"taiwa/internal/audio"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func readAll(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

const (
	tonePerRune = 60 * time.Millisecond
	toneMax     = 3 * time.Second
	toneFreq    = 440.0
)

// Tone создаёт синусоидальный сигнал, длина которого растёт с текстом.
func Tone(text string) ([]byte, error) {
	d := time.Duration(utf8.RuneCountInString(text)) * tonePerRune
	if d > toneMax {
		d = toneMax
	}
	n := int(d * audio.SampleRate / time.Second)
	if n == 0 {
		n = audio.FramesPerBuffer
	}

	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / audio.SampleRate
		samples[i] = int16(8000 * math.Sin(2*math.Pi*toneFreq*t))
	}
	return audio.EncodeWAV(samples, audio.SampleRate)
}

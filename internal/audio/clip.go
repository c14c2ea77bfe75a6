package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/hajimehoshi/go-mp3"
)

// Clip - синтезированный звук в том виде, в каком его вернул сервер.
type Clip struct {
	Data        []byte
	ContentType string
}

// PCM - декодированный звук: чередующиеся 16-битные сэмплы.
type PCM struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Duration возвращает длительность звука.
func (p PCM) Duration() float64 {
	if p.SampleRate <= 0 || p.Channels <= 0 {
		return 0
	}
	return float64(len(p.Samples)/p.Channels) / float64(p.SampleRate)
}

// Format - контейнер клипа.
type Format string

const (
	FormatUnknown Format = ""
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
)

// ErrUnsupportedClip возвращается для клипов неизвестного формата.
var ErrUnsupportedClip = errors.New("unsupported audio clip format")

// DetectFormat определяет формат по MIME-типу, а если он не помог - по сигнатуре.
func DetectFormat(c Clip) Format {
	ct := strings.ToLower(c.ContentType)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	switch strings.TrimSpace(ct) {
	case "audio/wav", "audio/wave", "audio/x-wav", "audio/vnd.wave":
		return FormatWAV
	case "audio/mpeg", "audio/mp3":
		return FormatMP3
	}

	d := c.Data
	switch {
	case len(d) >= 12 && string(d[0:4]) == "RIFF" && string(d[8:12]) == "WAVE":
		return FormatWAV
	case len(d) >= 3 && string(d[0:3]) == "ID3":
		return FormatMP3
	case len(d) >= 2 && d[0] == 0xFF && d[1]&0xE0 == 0xE0:
		return FormatMP3
	}
	return FormatUnknown
}

// DecodeClip декодирует клип в PCM16.
func DecodeClip(c Clip) (PCM, error) {
	if len(c.Data) == 0 {
		return PCM{}, errors.New("empty audio clip")
	}
	switch DetectFormat(c) {
	case FormatWAV:
		return DecodeWAV(c.Data)
	case FormatMP3:
		return decodeMP3(c.Data)
	default:
		return PCM{}, fmt.Errorf("%w: %q", ErrUnsupportedClip, c.ContentType)
	}
}

// decodeMP3 - go-mp3 всегда отдаёт стерео 16-bit LE.
func decodeMP3(data []byte) (PCM, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return PCM{}, fmt.Errorf("open mp3: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return PCM{}, fmt.Errorf("decode mp3: %w", err)
	}
	if len(raw)%4 != 0 {
		return PCM{}, errors.New("unexpected MP3 decoded length")
	}

	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
	}
	return PCM{
		Samples:    samples,
		SampleRate: dec.SampleRate(),
		Channels:   2,
	}, nil
}

// Level вычисляет RMS уровня громкости в диапазоне 0..1.
// Используются только последние 1024 сэмпла.
func Level(samples []int16) float32 {
	if len(samples) == 0 {
		return 0
	}

	start := 0
	if len(samples) > FramesPerBuffer {
		start = len(samples) - FramesPerBuffer
	}
	subset := samples[start:]

	var sum float64
	for _, s := range subset {
		v := float64(s) / math.MaxInt16
		sum += v * v
	}
	rms := float32(math.Sqrt(sum / float64(len(subset))))

	// Речь обычно в районе 0.1-0.3 RMS
	level := rms * 3
	if level > 1 {
		level = 1
	}
	return level
}

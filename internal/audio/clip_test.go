package audio

import (
	"errors"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	wavData, err := EncodeWAV([]int16{1, 2, 3}, SampleRate)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	tests := []struct {
		name string
		clip Clip
		want Format
	}{
		{"mpeg mime", Clip{ContentType: "audio/mpeg"}, FormatMP3},
		{"wav mime with params", Clip{ContentType: "audio/wav; charset=binary"}, FormatWAV},
		{"sniff riff", Clip{Data: wavData, ContentType: "application/octet-stream"}, FormatWAV},
		{"sniff id3", Clip{Data: []byte("ID3\x04\x00")}, FormatMP3},
		{"sniff frame sync", Clip{Data: []byte{0xFF, 0xFB, 0x90, 0x00}}, FormatMP3},
		{"unknown", Clip{Data: []byte("hello"), ContentType: "text/plain"}, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.clip); got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeClipWAV(t *testing.T) {
	samples := sine(800, SampleRate, 220)
	data, err := EncodeWAV(samples, SampleRate)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	pcm, err := DecodeClip(Clip{Data: data, ContentType: "audio/wav"})
	if err != nil {
		t.Fatalf("DecodeClip failed: %v", err)
	}
	if len(pcm.Samples) != len(samples) {
		t.Fatalf("expected %d samples, got %d", len(samples), len(pcm.Samples))
	}
	if d := pcm.Duration(); d != 0.05 {
		t.Errorf("expected 0.05s, got %v", d)
	}
}

func TestDecodeClipErrors(t *testing.T) {
	if _, err := DecodeClip(Clip{}); err == nil {
		t.Error("expected error for empty clip")
	}
	_, err := DecodeClip(Clip{Data: []byte("hello"), ContentType: "text/plain"})
	if !errors.Is(err, ErrUnsupportedClip) {
		t.Errorf("expected ErrUnsupportedClip, got %v", err)
	}
}

func TestLevel(t *testing.T) {
	if Level(nil) != 0 {
		t.Error("expected zero level for no samples")
	}
	if Level(make([]int16, 512)) != 0 {
		t.Error("expected zero level for silence")
	}
	loud := make([]int16, 512)
	for i := range loud {
		loud[i] = 32767
	}
	if Level(loud) != 1 {
		t.Errorf("expected clipped level 1, got %v", Level(loud))
	}
	quiet := sine(1024, SampleRate, 440)
	for i := range quiet {
		quiet[i] /= 16
	}
	if l := Level(quiet); l <= 0 || l >= 1 {
		t.Errorf("expected level within (0,1), got %v", l)
	}
}

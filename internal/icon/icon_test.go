package icon

import (
	"bytes"
	"image/png"
	"testing"
)

func TestIconsArePNG(t *testing.T) {
	for name, data := range map[string][]byte{
		"idle":       Idle(),
		"recording":  Recording(),
		"processing": Processing(),
	} {
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("%s: decode err: %v", name, err)
		}
		if b := img.Bounds(); b.Dx() != Size || b.Dy() != Size {
			t.Fatalf("%s: unexpected size %v", name, b)
		}
	}
}

func TestDrawColorsCenterOnly(t *testing.T) {
	img := Draw(colorRecording)
	if got := img.RGBAAt(Size/2, Size/2); got != colorRecording {
		t.Fatalf("center pixel %v, want %v", got, colorRecording)
	}
	if got := img.RGBAAt(0, 0); got.A != 0 {
		t.Fatalf("corner should be transparent, got %v", got)
	}
}

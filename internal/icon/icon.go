// Package icon рисует иконки трея при запуске.
package icon

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
)

// Size - сторона иконки в пикселях.
const Size = 64

var (
	colorIdle       = color.RGBA{128, 128, 128, 255} // Серый
	colorRecording  = color.RGBA{220, 50, 50, 255}   // Красный
	colorProcessing = color.RGBA{230, 160, 50, 255}  // Оранжевый
)

var once sync.Once

var idle, recording, processing []byte

func render() {
	idle = mustEncode(Draw(colorIdle))
	recording = mustEncode(Draw(colorRecording))
	processing = mustEncode(Draw(colorProcessing))
}

// Idle - иконка в состоянии ожидания.
func Idle() []byte {
	once.Do(render)
	return idle
}

// Recording - иконка во время записи.
func Recording() []byte {
	once.Do(render)
	return recording
}

// Processing - иконка во время запроса к серверу.
func Processing() []byte {
	once.Do(render)
	return processing
}

// Draw рисует упрощённый микрофон: круг и ножку.
func Draw(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Size, Size))

	centerX, centerY := Size/2, Size/2
	radius := 20.0

	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			dx := float64(x - centerX)
			dy := float64(y - centerY)
			if dx*dx+dy*dy <= radius*radius {
				img.Set(x, y, c)
			}
		}
	}

	for y := centerY + int(radius); y < centerY+int(radius)+10 && y < Size; y++ {
		for x := centerX - 3; x <= centerX+3; x++ {
			img.Set(x, y, c)
		}
	}

	return img
}

func mustEncode(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

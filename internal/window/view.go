package window

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"taiwa/internal/session"
)

// controls описывает доступность элементов управления в одном кадре.
type controls struct {
	Record    bool
	RecordKey string // ключ перевода для кнопки записи
	Send      bool
	Edit      bool
	Clear     bool
	Copy      bool
	Spinner   bool
}

func controlsFor(s session.State) controls {
	key := "btn_record"
	if s.Recording {
		key = "btn_stop"
	}
	return controls{
		Record:    s.CanToggleRecording(),
		RecordKey: key,
		Send:      s.CanSend(),
		Edit:      s.CanEditTranscript(),
		Clear:     s.CanClear(),
		Copy:      s.Reply != "",
		Spinner:   s.Loading,
	}
}

// formatElapsed форматирует таймер записи как m:ss.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// levelColor выбирает цвет индикатора по уровню входа.
func levelColor(level float32, cfg Config) color.NRGBA {
	switch {
	case level > 0.7:
		return color.NRGBA{R: 255, G: 80, B: 80, A: 255} // Красный для громкого
	case level > 0.4:
		return color.NRGBA{R: 255, G: 180, B: 0, A: 255} // Жёлтый для среднего
	default:
		return cfg.LevelColor
	}
}

// parseGeometry разбирает "width height" из вывода xdotool getdisplaygeometry.
func parseGeometry(s string) (width, height int, ok bool) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return 0, 0, false
	}
	width, err1 := strconv.Atoi(parts[0])
	height, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return 0, 0, false
	}
	return width, height, true
}

// placement возвращает левый верхний угол окна у правого края экрана,
// по центру по вертикали, не выходя за экран.
func placement(screenW, screenH, width, height int) (x, y int) {
	const margin = 20
	x = screenW - width - margin
	y = (screenH - height) / 2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}

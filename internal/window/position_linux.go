//go:build linux

package window

import (
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// positionWindow перемещает окно к правому краю экрана через xdotool.
// Без xdotool положение выбирает оконный менеджер.
func positionWindow(title string, width, height int) {
	time.Sleep(100 * time.Millisecond)

	out, err := exec.Command("xdotool", "getdisplaygeometry").Output()
	if err != nil {
		return
	}
	screenW, screenH, ok := parseGeometry(string(out))
	if !ok {
		return
	}

	out, err = exec.Command("xdotool", "search", "--name", title).Output()
	if err != nil {
		return
	}
	ids := strings.Fields(string(out))
	if len(ids) == 0 {
		return
	}

	x, y := placement(screenW, screenH, width, height)
	_ = exec.Command("xdotool", "windowmove", ids[0], strconv.Itoa(x), strconv.Itoa(y)).Run()
}

package platform

import (
	"github.com/go-vgo/robotgo"

	"bufferly/internal/overlay"
)

// Screen answers pointer and display geometry queries through robotgo.
type Screen struct{}

func (Screen) Location() (x, y int) {
	return robotgo.Location()
}

// ScreenBounds returns the display containing (x, y), or the main display
// when the point is on none of them.
func (Screen) ScreenBounds(x, y int) overlay.Rect {
	var main overlay.Rect
	for i := 0; i < robotgo.DisplaysNum(); i++ {
		dx, dy, dw, dh := robotgo.GetDisplayBounds(i)
		r := overlay.Rect{X: dx, Y: dy, W: dw, H: dh}
		if i == 0 {
			main = r
		}
		if r.Contains(x, y) {
			return r
		}
	}
	if main.W == 0 {
		w, h := robotgo.GetScreenSize()
		main = overlay.Rect{W: w, H: h}
	}
	return main
}

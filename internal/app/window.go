package app

import (
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver"
	"fyne.io/fyne/v2/driver/desktop"

	"bufferly/internal/overlay"
	"bufferly/internal/platform"
)

const (
	overlayWidth  = 360
	overlayHeight = 260
)

// overlayWindow adapts a borderless fyne window to overlay.Window. All
// geometry is in fyne units, which are screen points on macOS.
type overlayWindow struct {
	w        fyne.Window
	screenAt func(x, y int) overlay.Rect
	onFocus  func(fyne.Canvas)

	warnOnce sync.Once
}

func newOverlayWindow(a fyne.App, screenAt func(x, y int) overlay.Rect) *overlayWindow {
	var w fyne.Window
	if drv, ok := a.Driver().(desktop.Driver); ok {
		w = drv.CreateSplashWindow()
	} else {
		w = a.NewWindow(AppName)
	}
	w.SetTitle(AppName)
	w.Resize(fyne.NewSize(overlayWidth, overlayHeight))
	w.SetFixedSize(true)
	w.SetCloseIntercept(w.Hide)
	return &overlayWindow{w: w, screenAt: screenAt}
}

func (o *overlayWindow) Show() {
	o.w.Show()
	o.w.RequestFocus()
	if o.onFocus != nil {
		o.onFocus(o.w.Canvas())
	}
}

func (o *overlayWindow) Hide() {
	o.w.Hide()
}

// Move places the native window where the platform supports it. Otherwise
// the window is centred and the centred origin on the requested screen is
// reported.
func (o *overlayWindow) Move(x, y int) (int, int) {
	if nw, ok := o.w.(driver.NativeWindow); ok {
		var (
			ax, ay int
			placed bool
		)
		nw.RunNative(func(ctx any) {
			ax, ay, placed = platform.PlaceWindow(ctx, x, y)
		})
		if placed {
			return ax, ay
		}
	}

	o.warnOnce.Do(func() {
		slog.Debug("window driver cannot position windows, centring overlay")
	})
	o.w.CenterOnScreen()

	w, h := o.Size()
	s := o.screenAt(x, y)
	return s.X + (s.W-w)/2, s.Y + (s.H-h)/2
}

func (o *overlayWindow) Size() (int, int) {
	size := o.w.Canvas().Size()
	if size.Width <= 0 || size.Height <= 0 {
		return overlayWidth, overlayHeight
	}
	return int(size.Width), int(size.Height)
}

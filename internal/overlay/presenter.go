// Package overlay manages the visibility and placement of the floating
// history popup.
package overlay

import (
	"fmt"
	"log/slog"
	"sync"
)

// DismissPolicy selects how a visible overlay gets hidden without the hotkey.
// The policies are alternatives; only one is active at a time.
type DismissPolicy string

const (
	// DismissOnClick hides the overlay on any global mouse-down outside it.
	DismissOnClick DismissPolicy = "click"
	// DismissOnFocusLoss hides the overlay when the application resigns focus.
	DismissOnFocusLoss DismissPolicy = "focus"
)

func ParsePolicy(s string) (DismissPolicy, error) {
	switch DismissPolicy(s) {
	case DismissOnClick, DismissOnFocusLoss:
		return DismissPolicy(s), nil
	}
	return "", fmt.Errorf("unknown overlay dismiss policy %q", s)
}

// Window is the floating popup. Coordinates and sizes are screen points with
// a top-left origin. Move asks for a top-left corner and returns the one the
// window actually got, which may differ when the platform cannot place it.
type Window interface {
	Show()
	Hide()
	Move(x, y int) (ax, ay int)
	Size() (w, h int)
}

// Pointer reports the mouse location and the bounds of the screen under it.
type Pointer interface {
	Location() (x, y int)
	ScreenBounds(x, y int) Rect
}

// ClickSource delivers global mouse-down events.
type ClickSource interface {
	OnMouseDown(fn func(x, y int)) (cancel func())
}

// Presenter is the hidden/visible state machine. Show, Hide and Toggle are
// expected on the UI thread; events from other goroutines are marshalled with
// the ui func.
type Presenter struct {
	window  Window
	pointer Pointer
	clicks  ClickSource
	ui      func(func())

	// OnShow runs after the window becomes visible, e.g. to reload the list.
	OnShow func()

	mu         sync.Mutex
	policy     DismissPolicy
	visible    bool
	frame      Rect
	stopClicks func()
}

func NewPresenter(window Window, pointer Pointer, clicks ClickSource, policy DismissPolicy, ui func(func())) *Presenter {
	if ui == nil {
		ui = func(f func()) { f() }
	}
	return &Presenter{
		window:  window,
		pointer: pointer,
		clicks:  clicks,
		policy:  policy,
		ui:      ui,
	}
}

func (p *Presenter) Toggle() {
	if p.IsVisible() {
		p.Hide()
	} else {
		p.Show()
	}
}

// Show centres the window on the pointer, clamped into the active screen.
// The window is shown before it is moved since a native window may not exist
// until first shown; the recorded frame is where it actually landed.
func (p *Presenter) Show() {
	px, py := p.pointer.Location()
	screen := p.pointer.ScreenBounds(px, py)
	w, h := p.window.Size()
	x, y := Position(px, py, w, h, screen)

	p.window.Show()
	ax, ay := p.window.Move(x, y)
	if ax != x || ay != y {
		slog.Debug("overlay placed away from pointer", "want_x", x, "want_y", y, "x", ax, "y", ay)
	}

	p.mu.Lock()
	p.visible = true
	p.frame = Rect{X: ax, Y: ay, W: w, H: h}
	policy := p.policy
	p.mu.Unlock()

	if policy == DismissOnClick {
		p.startClickMonitor()
	}
	slog.Debug("overlay shown", "x", ax, "y", ay, "policy", policy)

	if p.OnShow != nil {
		p.OnShow()
	}
}

func (p *Presenter) Hide() {
	p.window.Hide()

	p.mu.Lock()
	p.visible = false
	p.mu.Unlock()

	p.stopClickMonitor()
	slog.Debug("overlay hidden")
}

func (p *Presenter) IsVisible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

func (p *Presenter) Policy() DismissPolicy {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.policy
}

// SetPolicy switches the dismissal policy; it applies from the next Show.
func (p *Presenter) SetPolicy(policy DismissPolicy) {
	p.mu.Lock()
	p.policy = policy
	p.mu.Unlock()

	if policy != DismissOnClick {
		p.stopClickMonitor()
	}
}

// HandleFocusLost is wired to the application's resign-active notification.
func (p *Presenter) HandleFocusLost() {
	if p.Policy() != DismissOnFocusLoss || !p.IsVisible() {
		return
	}
	p.Hide()
}

func (p *Presenter) startClickMonitor() {
	p.stopClickMonitor()
	if p.clicks == nil {
		return
	}
	cancel := p.clicks.OnMouseDown(p.handleClick)

	p.mu.Lock()
	p.stopClicks = cancel
	p.mu.Unlock()
}

func (p *Presenter) stopClickMonitor() {
	p.mu.Lock()
	stop := p.stopClicks
	p.stopClicks = nil
	p.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// handleClick runs on the event-tap goroutine.
func (p *Presenter) handleClick(x, y int) {
	p.ui(func() {
		p.mu.Lock()
		outside := p.visible && !p.frame.Contains(x, y)
		p.mu.Unlock()
		if outside {
			p.Hide()
		}
	})
}

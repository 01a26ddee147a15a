package overlay

import "testing"

type fakeWindow struct {
	visible bool
	x, y    int
	w, h    int
	shows   int
	hides   int
}

func (w *fakeWindow) Show()            { w.visible = true; w.shows++ }
func (w *fakeWindow) Hide()            { w.visible = false; w.hides++ }
func (w *fakeWindow) Size() (int, int) { return w.w, w.h }

func (w *fakeWindow) Move(x, y int) (int, int) {
	w.x, w.y = x, y
	return x, y
}

// centringWindow ignores placement requests and centres itself on its
// screen, like a driver without a positioning API.
type centringWindow struct {
	fakeWindow
	screen Rect
}

func (w *centringWindow) Move(int, int) (int, int) {
	w.x = w.screen.X + (w.screen.W-w.w)/2
	w.y = w.screen.Y + (w.screen.H-w.h)/2
	return w.x, w.y
}

type fakePointer struct {
	x, y   int
	screen Rect
}

func (p *fakePointer) Location() (int, int)       { return p.x, p.y }
func (p *fakePointer) ScreenBounds(int, int) Rect { return p.screen }

type fakeClicks struct {
	listener func(x, y int)
	cancels  int
}

func (c *fakeClicks) OnMouseDown(fn func(x, y int)) func() {
	c.listener = fn
	return func() {
		c.listener = nil
		c.cancels++
	}
}

func (c *fakeClicks) click(x, y int) {
	if c.listener != nil {
		c.listener(x, y)
	}
}

var desktop = Rect{X: 0, Y: 0, W: 1440, H: 900}

func newTestPresenter(policy DismissPolicy) (*Presenter, *fakeWindow, *fakePointer, *fakeClicks) {
	w := &fakeWindow{w: 338, h: 158}
	ptr := &fakePointer{x: 700, y: 400, screen: desktop}
	clicks := &fakeClicks{}
	return NewPresenter(w, ptr, clicks, policy, nil), w, ptr, clicks
}

func TestToggleTwiceRestoresVisibility(t *testing.T) {
	p, w, _, _ := newTestPresenter(DismissOnClick)

	p.Toggle()
	if !p.IsVisible() || !w.visible {
		t.Fatal("first toggle should show the overlay")
	}
	p.Toggle()
	if p.IsVisible() || w.visible {
		t.Fatal("second toggle should hide the overlay")
	}

	// Starting from visible works the same way.
	p.Show()
	p.Toggle()
	p.Toggle()
	if !p.IsVisible() {
		t.Error("toggling twice from visible should end visible")
	}
}

func TestShowCentresOnPointer(t *testing.T) {
	p, w, _, _ := newTestPresenter(DismissOnClick)
	called := false
	p.OnShow = func() { called = true }

	p.Show()
	if w.x != 700-169 || w.y != 400-79 {
		t.Errorf("unexpected position (%d, %d)", w.x, w.y)
	}
	if got := p.frame; got != (Rect{X: 531, Y: 321, W: 338, H: 158}) {
		t.Errorf("unexpected frame %+v", got)
	}
	if !called {
		t.Error("OnShow should run after showing")
	}
}

func TestPositionClampsToScreen(t *testing.T) {
	second := Rect{X: 1440, Y: -200, W: 1920, H: 1080}
	tests := []struct {
		name   string
		px, py int
		screen Rect
		wantX  int
		wantY  int
	}{
		{"centre", 720, 450, desktop, 551, 371},
		{"top-left corner", 5, 5, desktop, 10, 10},
		{"bottom-right corner", 1439, 899, desktop, 1440 - 338 - 10, 900 - 158 - 10},
		{"left edge only", 20, 450, desktop, 10, 371},
		{"offset screen", 1450, -190, second, 1450, -190},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := Position(tt.px, tt.py, 338, 158, tt.screen)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("Position = (%d, %d), want (%d, %d)", x, y, tt.wantX, tt.wantY)
			}
			r := Rect{X: x, Y: y, W: 338, H: 158}
			if r.X < tt.screen.X || r.Y < tt.screen.Y || r.X+r.W > tt.screen.X+tt.screen.W || r.Y+r.H > tt.screen.Y+tt.screen.H {
				t.Errorf("overlay %+v escapes screen %+v", r, tt.screen)
			}
		})
	}
}

func TestClickPolicy(t *testing.T) {
	p, _, _, clicks := newTestPresenter(DismissOnClick)

	p.Show()
	if clicks.listener == nil {
		t.Fatal("click monitor should be armed while visible")
	}

	f := p.frame
	clicks.click(f.X+5, f.Y+5)
	if !p.IsVisible() {
		t.Error("click inside the overlay should not dismiss it")
	}

	clicks.click(5, 5)
	if p.IsVisible() {
		t.Error("click outside should dismiss the overlay")
	}
	if clicks.listener != nil {
		t.Error("click monitor should be removed on hide")
	}

	if clicks.cancels != 1 {
		t.Errorf("expected one cancel, got %d", clicks.cancels)
	}
}

func TestFocusPolicy(t *testing.T) {
	p, w, _, clicks := newTestPresenter(DismissOnFocusLoss)

	p.Show()
	if clicks.listener != nil {
		t.Error("focus policy should not install a click monitor")
	}

	p.HandleFocusLost()
	if p.IsVisible() || w.visible {
		t.Error("focus loss should hide the overlay")
	}

	hides := w.hides
	p.HandleFocusLost()
	if w.hides != hides {
		t.Error("focus loss while hidden should be a no-op")
	}
}

func TestFocusLossIgnoredUnderClickPolicy(t *testing.T) {
	p, _, _, _ := newTestPresenter(DismissOnClick)
	p.Show()
	p.HandleFocusLost()
	if !p.IsVisible() {
		t.Error("click policy should ignore focus loss")
	}
}

func TestSetPolicyDisarmsClickMonitor(t *testing.T) {
	p, _, _, clicks := newTestPresenter(DismissOnClick)
	p.Show()
	p.SetPolicy(DismissOnFocusLoss)
	if clicks.listener != nil {
		t.Error("switching to focus policy should remove the click monitor")
	}
	p.HandleFocusLost()
	if p.IsVisible() {
		t.Error("new policy should take effect")
	}
}

func TestParsePolicy(t *testing.T) {
	for _, s := range []string{"click", "focus"} {
		if _, err := ParsePolicy(s); err != nil {
			t.Errorf("ParsePolicy(%q): %v", s, err)
		}
	}
	if _, err := ParsePolicy("hover"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestFrameFollowsWhereWindowLanded(t *testing.T) {
	w := &centringWindow{fakeWindow: fakeWindow{w: 360, h: 260}, screen: desktop}
	ptr := &fakePointer{x: 100, y: 100, screen: desktop}
	clicks := &fakeClicks{}
	p := NewPresenter(w, ptr, clicks, DismissOnClick, nil)

	p.Show()
	if got, want := p.frame, (Rect{X: 540, Y: 320, W: 360, H: 260}); got != want {
		t.Fatalf("frame %+v, want the window's real position %+v", got, want)
	}

	clicks.click(w.x+w.w/2, w.y+w.h/2)
	if !p.IsVisible() {
		t.Error("a click in the middle of the visible overlay should not dismiss it")
	}

	clicks.click(50, 50)
	if p.IsVisible() {
		t.Error("a click outside the visible overlay should dismiss it")
	}
}

func TestShowBeforeMove(t *testing.T) {
	w := &orderWindow{}
	p := NewPresenter(w, &fakePointer{x: 700, y: 400, screen: desktop}, &fakeClicks{}, DismissOnClick, nil)
	p.Show()
	if len(w.calls) != 2 || w.calls[0] != "show" || w.calls[1] != "move" {
		t.Errorf("expected show then move, got %v", w.calls)
	}
}

type orderWindow struct {
	calls []string
}

func (w *orderWindow) Show()            { w.calls = append(w.calls, "show") }
func (w *orderWindow) Hide()            { w.calls = append(w.calls, "hide") }
func (w *orderWindow) Size() (int, int) { return 100, 100 }

func (w *orderWindow) Move(x, y int) (int, int) {
	w.calls = append(w.calls, "move")
	return x, y
}

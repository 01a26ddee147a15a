package overlay

// Gap kept between the overlay and a screen edge it was pushed away from.
const screenMargin = 10

// Rect is a screen rectangle in top-left origin coordinates.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Position centres a w×h window on the pointer and pulls it back inside
// screen when it would cross an edge.
func Position(px, py, w, h int, screen Rect) (x, y int) {
	x = px - w/2
	y = py - h/2

	if x < screen.X {
		x = screen.X + screenMargin
	}
	if x+w > screen.X+screen.W {
		x = screen.X + screen.W - w - screenMargin
	}
	if y < screen.Y {
		y = screen.Y + screenMargin
	}
	if y+h > screen.Y+screen.H {
		y = screen.Y + screen.H - h - screenMargin
	}
	return x, y
}

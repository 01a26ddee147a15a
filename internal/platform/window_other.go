//go:build !darwin

package platform

// PlaceWindow is only implemented for Cocoa windows; elsewhere the caller
// falls back to centring.
func PlaceWindow(native any, x, y int) (ax, ay int, ok bool) {
	return 0, 0, false
}

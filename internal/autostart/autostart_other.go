//go:build !darwin && !linux

package autostart

func New() (Autostart, error) {
	return nil, ErrUnsupported
}

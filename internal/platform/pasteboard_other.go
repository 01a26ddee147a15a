//go:build !darwin

package platform

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"

	"bufferly/internal/util"
)

// Pasteboard wraps golang.design/x/clipboard. X11, Wayland and Windows do
// not expose a change counter the way NSPasteboard does, so ChangeCount
// derives one from the clipboard contents.
type Pasteboard struct {
	mu       sync.Mutex
	lastHash string
	count    int64
}

func NewPasteboard() (*Pasteboard, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("init clipboard: %w", err)
	}
	return &Pasteboard{}, nil
}

func (p *Pasteboard) ChangeCount() int64 {
	text := string(clipboard.Read(clipboard.FmtText))
	hash := util.GenerateHash("", &text, clipboard.Read(clipboard.FmtImage))

	p.mu.Lock()
	defer p.mu.Unlock()
	if hash != p.lastHash {
		p.lastHash = hash
		p.count++
	}
	return p.count
}

func (*Pasteboard) ReadImage() []byte {
	return clipboard.Read(clipboard.FmtImage)
}

func (*Pasteboard) ReadText() string {
	return string(clipboard.Read(clipboard.FmtText))
}

// Clear is a no-op: the following write replaces the contents anyway.
func (*Pasteboard) Clear() error { return nil }

func (*Pasteboard) WriteText(s string) error {
	clipboard.Write(clipboard.FmtText, []byte(s))
	return nil
}

func (*Pasteboard) WriteImage(data []byte) error {
	if imageFormat(data) != formatPNG {
		return ErrUnsupportedImage
	}
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

package clipboard

import (
	"time"

	"bufferly/internal/database"
)

// Pasteboard is the OS clipboard as seen by the watcher and the paste
// dispatcher. Reads return nil or "" when the format is absent or unreadable.
type Pasteboard interface {
	// ChangeCount increases every time the clipboard contents change.
	ChangeCount() int64
	ReadImage() []byte
	ReadText() string
	Clear() error
	WriteText(text string) error
	WriteImage(png []byte) error
}

// Snapshot is one captured pasteboard value.
type Snapshot struct {
	Type      database.ContentType
	Text      *string
	ImageData []byte
	Timestamp time.Time
}

// Size returns the payload length in bytes.
func (s *Snapshot) Size() int {
	if s.Text != nil {
		return len(*s.Text)
	}
	return len(s.ImageData)
}

const (
	EventNewItem = "new_item"
	EventError   = "error"
)

type MonitorEvent struct {
	Type  string
	Item  *database.ClipboardItem
	Error error
}

// Package paste writes a history item back to the pasteboard and types the
// paste shortcut into whichever application had focus before the overlay.
package paste

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bufferly/internal/database"
)

var ErrEmptyItem = errors.New("item has no payload")

type Pasteboard interface {
	Clear() error
	WriteText(s string) error
	WriteImage(data []byte) error
}

type BinaryLoader interface {
	LoadBinary(ctx context.Context, item *database.ClipboardItem) ([]byte, error)
}

type Keyboard interface {
	PasteShortcut() error
}

type Dispatcher struct {
	pasteboard Pasteboard
	store      BinaryLoader
	keyboard   Keyboard
	hide       func()
	delay      time.Duration

	after func(time.Duration, func())
}

// NewDispatcher returns a Dispatcher that calls hide to close the overlay and
// waits delay before posting the keystroke, giving the previous application
// time to regain focus.
func NewDispatcher(pb Pasteboard, store BinaryLoader, kb Keyboard, hide func(), delay time.Duration) *Dispatcher {
	return &Dispatcher{
		pasteboard: pb,
		store:      store,
		keyboard:   kb,
		hide:       hide,
		delay:      delay,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

func (d *Dispatcher) SetDelay(delay time.Duration) {
	d.delay = delay
}

// Paste must run on the UI thread since it hides the overlay. The keystroke
// fires later on a timer goroutine; nothing confirms it landed.
func (d *Dispatcher) Paste(ctx context.Context, item *database.ClipboardItem) error {
	if err := d.pasteboard.Clear(); err != nil {
		return fmt.Errorf("clear pasteboard: %w", err)
	}
	if err := d.write(ctx, item); err != nil {
		return err
	}

	if d.hide != nil {
		d.hide()
	}

	d.after(d.delay, func() {
		if err := d.keyboard.PasteShortcut(); err != nil {
			slog.Error("failed to post paste shortcut", "error", err)
		}
	})
	slog.Debug("item pasted", "id", item.ID, "type", item.Type)
	return nil
}

func (d *Dispatcher) write(ctx context.Context, item *database.ClipboardItem) error {
	if item.Type.IsImage() {
		data, err := d.store.LoadBinary(ctx, item)
		if err != nil {
			return fmt.Errorf("load image %s: %w", item.ID, err)
		}
		if len(data) == 0 {
			return ErrEmptyItem
		}
		if err := d.pasteboard.WriteImage(data); err != nil {
			return fmt.Errorf("write image: %w", err)
		}
		return nil
	}

	if item.TextContent == nil {
		return ErrEmptyItem
	}
	if err := d.pasteboard.WriteText(*item.TextContent); err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	return nil
}

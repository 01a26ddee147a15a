package platform

import (
	"log/slog"

	hook "github.com/robotn/gohook"
)

// EventTap is the process-wide gohook listener. gohook keeps its
// registrations in package state, so there must be only one EventTap.
type EventTap struct{}

func NewEventTap() *EventTap {
	return &EventTap{}
}

func (*EventTap) RegisterKeys(keys []string, cb func()) {
	hook.Register(hook.KeyDown, keys, func(hook.Event) {
		cb()
	})
}

func (*EventTap) RegisterMouseDown(cb func(x, y int)) {
	hook.Register(hook.MouseDown, []string{}, func(e hook.Event) {
		cb(int(e.X), int(e.Y))
	})
}

func (*EventTap) Start() {
	s := hook.Start()
	go func() {
		<-hook.Process(s)
	}()
	slog.Debug("event tap started")
}

// End stops the tap and drops every registration. It does not wait for the
// process goroutine, which may be inside a callback.
func (*EventTap) End() {
	hook.End()
	slog.Debug("event tap stopped")
}

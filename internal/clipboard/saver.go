package clipboard

import (
	"context"
	"log/slog"

	"bufferly/internal/database"
)

// ItemStore is the write side of the item repository.
type ItemStore interface {
	SaveItem(ctx context.Context, contentType database.ContentType, text *string, binary []byte, limit int) (*database.ClipboardItem, bool, error)
}

// Saver performs every store write on one goroutine, so saves are applied in
// submission order and never race each other. Failures are logged and dropped.
type Saver struct {
	store  ItemStore
	limit  func() int
	queue  chan Snapshot
	notify func(MonitorEvent)
}

func NewSaver(store ItemStore, limit func() int) *Saver {
	return &Saver{
		store: store,
		limit: limit,
		queue: make(chan Snapshot, 32),
	}
}

// Submit queues a snapshot for persistence without blocking the caller.
func (s *Saver) Submit(snap Snapshot) {
	select {
	case s.queue <- snap:
	default:
		slog.Warn("save queue full, dropping clipboard value", "type", snap.Type)
	}
}

// Run drains the queue until ctx is done.
func (s *Saver) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-s.queue:
			s.save(ctx, snap)
		}
	}
}

func (s *Saver) save(ctx context.Context, snap Snapshot) {
	item, created, err := s.store.SaveItem(ctx, snap.Type, snap.Text, snap.ImageData, s.limit())
	if err != nil {
		slog.Error("failed to save clipboard item", "type", snap.Type, "err", err)
		s.emit(MonitorEvent{Type: EventError, Error: err})
		return
	}
	if !created {
		slog.Debug("clipboard value matches latest item, skipped", "type", snap.Type)
		return
	}

	slog.Info("clipboard item saved", "type", snap.Type, "size", snap.Size())
	s.emit(MonitorEvent{Type: EventNewItem, Item: item})
}

func (s *Saver) emit(ev MonitorEvent) {
	if s.notify != nil {
		s.notify(ev)
	}
}

package clipboard

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"bufferly/internal/database"
	"bufferly/internal/logging"
)

var ErrMonitorRunning = errors.New("monitor is already running")

// Monitor polls the pasteboard change counter and hands new values to the
// saver.
type Monitor struct {
	pasteboard Pasteboard
	saver      *Saver
	interval   time.Duration
	now        func() time.Time

	mu              sync.Mutex
	lastChangeCount int64
	isRunning       bool
	cancel          context.CancelFunc

	eventChan chan MonitorEvent
}

func NewMonitor(pasteboard Pasteboard, saver *Saver, interval time.Duration) *Monitor {
	m := &Monitor{
		pasteboard: pasteboard,
		saver:      saver,
		interval:   interval,
		now:        time.Now,
		eventChan:  make(chan MonitorEvent, 100),
	}
	saver.notify = m.publish
	return m
}

// Start records the current change counter, so whatever is already on the
// pasteboard is not captured, then polls until ctx is done or Stop is called.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRunning {
		return ErrMonitorRunning
	}

	ctx, m.cancel = context.WithCancel(ctx)
	m.lastChangeCount = m.pasteboard.ChangeCount()
	m.isRunning = true

	go m.saver.Run(ctx)
	go m.monitorLoop(ctx)

	slog.Info("clipboard monitor started", "interval", m.interval)
	return nil
}

func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isRunning {
		return
	}

	m.cancel()
	m.isRunning = false
	slog.Info("clipboard monitor stopped")
}

func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isRunning
}

func (m *Monitor) monitorLoop(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if snap, ok := m.checkClipboard(); ok {
				m.saver.Submit(snap)
			}
		}
	}
}

// checkClipboard returns a snapshot when the change counter moved and the
// pasteboard holds an image or non-blank text.
func (m *Monitor) checkClipboard() (Snapshot, bool) {
	current := m.pasteboard.ChangeCount()

	m.mu.Lock()
	if current == m.lastChangeCount {
		m.mu.Unlock()
		return Snapshot{}, false
	}
	m.lastChangeCount = current
	m.mu.Unlock()

	slog.Debug("clipboard changed", "change_count", current)
	return m.readSnapshot()
}

func (m *Monitor) readSnapshot() (Snapshot, bool) {
	if image := m.pasteboard.ReadImage(); len(image) > 0 {
		return Snapshot{
			Type:      database.TypeImage,
			ImageData: image,
			Timestamp: m.now(),
		}, true
	}

	text := m.pasteboard.ReadText()
	if strings.TrimSpace(text) == "" {
		return Snapshot{}, false
	}
	slog.Debug("clipboard text", "preview", logging.Preview(text))
	return Snapshot{
		Type:      database.TypeText,
		Text:      &text,
		Timestamp: m.now(),
	}, true
}

func (m *Monitor) publish(ev MonitorEvent) {
	select {
	case m.eventChan <- ev:
	default:
	}
}

func (m *Monitor) EventChannel() <-chan MonitorEvent {
	return m.eventChan
}

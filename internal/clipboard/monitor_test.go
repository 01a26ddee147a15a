package clipboard

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"bufferly/internal/database"
)

type fakePasteboard struct {
	mu     sync.Mutex
	count  int64
	text   string
	image  []byte
	writes []string
}

func (p *fakePasteboard) ChangeCount() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

func (p *fakePasteboard) ReadImage() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.image
}

func (p *fakePasteboard) ReadText() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text
}

func (p *fakePasteboard) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.text, p.image = "", nil
	p.count++
	p.writes = append(p.writes, "clear")
	return nil
}

func (p *fakePasteboard) WriteText(text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.text = text
	p.count++
	p.writes = append(p.writes, "text")
	return nil
}

func (p *fakePasteboard) WriteImage(png []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.image = png
	p.count++
	p.writes = append(p.writes, "image")
	return nil
}

// copyText simulates another application copying text.
func (p *fakePasteboard) copyText(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.text, p.image = s, nil
	p.count++
}

func (p *fakePasteboard) copyImage(b []byte, alsoText string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.text, p.image = alsoText, b
	p.count++
}

type recordingStore struct {
	mu    sync.Mutex
	saves []Snapshot
	err   error
}

func (s *recordingStore) SaveItem(_ context.Context, t database.ContentType, text *string, binary []byte, _ int) (*database.ClipboardItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, false, s.err
	}
	s.saves = append(s.saves, Snapshot{Type: t, Text: text, ImageData: binary})
	return &database.ClipboardItem{ID: "id", Type: t, TextContent: text}, true, nil
}

func newRepo(t *testing.T) *database.Repository {
	t.Helper()
	dir := t.TempDir()
	blobs, err := database.OpenBlobStore(filepath.Join(dir, "blobs.db"))
	if err != nil {
		t.Fatalf("OpenBlobStore: %v", err)
	}
	repo, err := database.NewRepository(filepath.Join(dir, "history.db"), blobs)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
		blobs.Close()
	})
	return repo
}

func TestCheckClipboardIgnoresUnchangedCounter(t *testing.T) {
	pb := &fakePasteboard{text: "already there"}
	m := NewMonitor(pb, NewSaver(&recordingStore{}, func() int { return 20 }), time.Second)
	m.lastChangeCount = pb.ChangeCount()

	if _, ok := m.checkClipboard(); ok {
		t.Error("no change should yield no snapshot")
	}
}

func TestCheckClipboardSkipsBlankText(t *testing.T) {
	pb := &fakePasteboard{}
	m := NewMonitor(pb, NewSaver(&recordingStore{}, func() int { return 20 }), time.Second)

	for _, s := range []string{"", "   ", "\n\t \n"} {
		pb.copyText(s)
		if _, ok := m.checkClipboard(); ok {
			t.Errorf("blank text %q should be ignored", s)
		}
	}
}

func TestCheckClipboardPrefersImage(t *testing.T) {
	pb := &fakePasteboard{}
	m := NewMonitor(pb, NewSaver(&recordingStore{}, func() int { return 20 }), time.Second)

	pb.copyImage([]byte("tiff-bytes"), "file name.png")
	snap, ok := m.checkClipboard()
	if !ok {
		t.Fatal("expected snapshot")
	}
	if snap.Type != database.TypeImage || string(snap.ImageData) != "tiff-bytes" || snap.Text != nil {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	pb.copyText("plain")
	snap, ok = m.checkClipboard()
	if !ok || snap.Type != database.TypeText || *snap.Text != "plain" {
		t.Errorf("unexpected text snapshot: %+v ok=%v", snap, ok)
	}
}

func TestIdenticalCopiesProduceOneRecord(t *testing.T) {
	repo := newRepo(t)
	pb := &fakePasteboard{}
	saver := NewSaver(repo, func() int { return 20 })
	m := NewMonitor(pb, saver, time.Second)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		pb.copyText("same value")
		snap, ok := m.checkClipboard()
		if !ok {
			t.Fatalf("copy %d: expected snapshot", i)
		}
		saver.save(ctx, snap)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 record, got %d", n)
	}
}

func TestSaverUsesCurrentLimit(t *testing.T) {
	repo := newRepo(t)
	limit := 3
	saver := NewSaver(repo, func() int { return limit })
	ctx := context.Background()

	for _, s := range []string{"a", "b", "c", "d", "e"} {
		s := s
		saver.save(ctx, Snapshot{Type: database.TypeText, Text: &s})
	}
	if n, _ := repo.Count(ctx); n != 3 {
		t.Errorf("expected 3 records, got %d", n)
	}

	limit = 2
	f := "f"
	saver.save(ctx, Snapshot{Type: database.TypeText, Text: &f})
	if n, _ := repo.Count(ctx); n != 2 {
		t.Errorf("expected 2 records after lowering limit, got %d", n)
	}
}

func TestSaverSwallowsStoreErrors(t *testing.T) {
	store := &recordingStore{err: errors.New("disk full")}
	pb := &fakePasteboard{}
	saver := NewSaver(store, func() int { return 20 })
	m := NewMonitor(pb, saver, time.Second)

	s := "value"
	saver.save(context.Background(), Snapshot{Type: database.TypeText, Text: &s})

	select {
	case ev := <-m.EventChannel():
		if ev.Type != EventError || ev.Error == nil {
			t.Errorf("expected error event, got %+v", ev)
		}
	default:
		t.Error("expected an error event")
	}
}

func TestMonitorStartStop(t *testing.T) {
	pb := &fakePasteboard{text: "pre-existing"}
	store := &recordingStore{}
	m := NewMonitor(pb, NewSaver(store, func() int { return 20 }), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := m.Start(ctx); !errors.Is(err, ErrMonitorRunning) {
		t.Errorf("second Start: expected ErrMonitorRunning, got %v", err)
	}

	pb.copyText("fresh copy")

	select {
	case ev := <-m.EventChannel():
		if ev.Type != EventNewItem || ev.Item.Text() != "fresh copy" {
			t.Errorf("unexpected event: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for new item event")
	}

	m.Stop()
	m.Stop()
	if m.IsRunning() {
		t.Error("monitor should be stopped")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	for _, s := range store.saves {
		if s.Text != nil && *s.Text == "pre-existing" {
			t.Error("content present at start should not be recorded")
		}
	}
}

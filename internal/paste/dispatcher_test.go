package paste

import (
	"context"
	"errors"
	"testing"
	"time"

	"bufferly/internal/database"
	"bufferly/internal/util"
)

type step string

type recorder struct {
	steps []step
}

func (r *recorder) add(s step) { r.steps = append(r.steps, s) }

type fakePasteboard struct {
	rec      *recorder
	writeErr error
	text     string
	image    []byte
}

func (p *fakePasteboard) Clear() error { p.rec.add("clear"); return nil }

func (p *fakePasteboard) WriteText(s string) error {
	p.rec.add("write-text")
	p.text = s
	return p.writeErr
}

func (p *fakePasteboard) WriteImage(data []byte) error {
	p.rec.add("write-image")
	p.image = data
	return p.writeErr
}

type fakeKeyboard struct{ rec *recorder }

func (k *fakeKeyboard) PasteShortcut() error { k.rec.add("keystroke"); return nil }

type fakeLoader struct{ data []byte }

func (l *fakeLoader) LoadBinary(_ context.Context, item *database.ClipboardItem) ([]byte, error) {
	if l.data == nil {
		return nil, errors.New("blob missing")
	}
	return l.data, nil
}

func newTestDispatcher(loader *fakeLoader) (*Dispatcher, *fakePasteboard, *recorder, *[]time.Duration) {
	rec := &recorder{}
	pb := &fakePasteboard{rec: rec}
	d := NewDispatcher(pb, loader, &fakeKeyboard{rec: rec}, func() { rec.add("hide") }, 50*time.Millisecond)

	var delays []time.Duration
	d.after = func(delay time.Duration, f func()) {
		delays = append(delays, delay)
		f()
	}
	return d, pb, rec, &delays
}

func assertSteps(t *testing.T, got []step, want ...step) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("steps = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("steps = %v, want %v", got, want)
		}
	}
}

func TestPasteText(t *testing.T) {
	d, pb, rec, delays := newTestDispatcher(&fakeLoader{})
	item := &database.ClipboardItem{ID: "a", Type: database.TypeText, TextContent: util.StringPtr("hello")}

	if err := d.Paste(context.Background(), item); err != nil {
		t.Fatalf("Paste: %v", err)
	}
	assertSteps(t, rec.steps, "clear", "write-text", "hide", "keystroke")
	if pb.text != "hello" {
		t.Errorf("pasteboard text = %q", pb.text)
	}
	if len(*delays) != 1 || (*delays)[0] != 50*time.Millisecond {
		t.Errorf("keystroke delay = %v", *delays)
	}
}

func TestPasteImageLoadsBlob(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}
	d, pb, rec, _ := newTestDispatcher(&fakeLoader{data: png})
	item := &database.ClipboardItem{ID: "b", Type: database.TypeImage, HasBinary: true}

	if err := d.Paste(context.Background(), item); err != nil {
		t.Fatalf("Paste: %v", err)
	}
	assertSteps(t, rec.steps, "clear", "write-image", "hide", "keystroke")
	if string(pb.image) != string(png) {
		t.Errorf("pasteboard image = %v", pb.image)
	}
}

func TestPasteFailureSkipsKeystroke(t *testing.T) {
	d, _, rec, _ := newTestDispatcher(&fakeLoader{})
	item := &database.ClipboardItem{ID: "c", Type: database.TypeImage, HasBinary: true}

	if err := d.Paste(context.Background(), item); err == nil {
		t.Fatal("expected error for missing blob")
	}
	assertSteps(t, rec.steps, "clear")
}

func TestPasteWriteError(t *testing.T) {
	d, pb, rec, _ := newTestDispatcher(&fakeLoader{})
	pb.writeErr = errors.New("denied")
	item := &database.ClipboardItem{ID: "d", Type: database.TypeText, TextContent: util.StringPtr("x")}

	if err := d.Paste(context.Background(), item); err == nil {
		t.Fatal("expected write error")
	}
	assertSteps(t, rec.steps, "clear", "write-text")
}

func TestPasteEmptyText(t *testing.T) {
	d, _, _, _ := newTestDispatcher(&fakeLoader{})
	item := &database.ClipboardItem{ID: "e", Type: database.TypeText}
	if err := d.Paste(context.Background(), item); !errors.Is(err, ErrEmptyItem) {
		t.Errorf("expected ErrEmptyItem, got %v", err)
	}
}

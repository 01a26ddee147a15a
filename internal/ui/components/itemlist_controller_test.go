package components

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bufferly/internal/database"
	"bufferly/internal/util"
)

func newTestRepository(t *testing.T) *database.Repository {
	t.Helper()
	dir := t.TempDir()
	blobs, err := database.OpenBlobStore(filepath.Join(dir, "blobs.db"))
	if err != nil {
		t.Fatalf("open blob store: %v", err)
	}
	repo, err := database.NewRepository(filepath.Join(dir, "history.db"), blobs)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
		blobs.Close()
	})
	return repo
}

func seed(t *testing.T, repo *database.Repository, texts ...string) {
	t.Helper()
	for _, text := range texts {
		if _, _, err := repo.SaveItem(context.Background(), database.TypeText, util.StringPtr(text), nil, 20); err != nil {
			t.Fatalf("seed %q: %v", text, err)
		}
	}
}

type fakePaster struct {
	pasted []*database.ClipboardItem
	err    error
}

func (p *fakePaster) Paste(_ context.Context, item *database.ClipboardItem) error {
	p.pasted = append(p.pasted, item)
	return p.err
}

// newSyncController runs background work inline so tests observe results
// immediately.
func newSyncController(store ItemStore, paster Paster) (*ItemListController, *int, *[]error) {
	c := NewItemListController(store, paster, nil)
	c.background = func(f func()) { f() }

	changes := 0
	var errs []error
	c.OnChange = func() { changes++ }
	c.OnError = func(err error) { errs = append(errs, err) }
	return c, &changes, &errs
}

func TestLoadRecentItems(t *testing.T) {
	repo := newTestRepository(t)
	c, changes, _ := newSyncController(repo, &fakePaster{})

	c.LoadRecentItems()
	if len(c.Items()) != 0 || c.Status() != "No items yet" {
		t.Fatalf("empty history: items=%d status=%q", len(c.Items()), c.Status())
	}

	seed(t, repo, "first", "second", "third")
	c.LoadRecentItems()

	items := c.Items()
	if len(items) != 3 || items[0].Text() != "third" {
		t.Fatalf("expected newest first, got %d items", len(items))
	}
	if c.Status() != "3 items" {
		t.Errorf("status = %q", c.Status())
	}
	if *changes != 2 {
		t.Errorf("expected 2 change notifications, got %d", *changes)
	}
}

func TestSearchAndRefresh(t *testing.T) {
	repo := newTestRepository(t)
	seed(t, repo, "alpha", "beta", "alphabet")
	c, _, _ := newSyncController(repo, &fakePaster{})

	c.Search("alpha")
	if !c.IsSearching() || len(c.Items()) != 2 {
		t.Fatalf("search: searching=%v items=%d", c.IsSearching(), len(c.Items()))
	}
	if c.Status() != "2 results" {
		t.Errorf("status = %q", c.Status())
	}

	seed(t, repo, "alpha centauri")
	c.Refresh()
	if len(c.Items()) != 3 {
		t.Errorf("refresh should keep the query, got %d items", len(c.Items()))
	}

	c.Search("zzz")
	if c.Status() != "No results for 'zzz'" {
		t.Errorf("status = %q", c.Status())
	}
	if got := emptyText(c.IsSearching()); got != "No matches" {
		t.Errorf("placeholder while searching = %q", got)
	}

	c.Search("")
	if c.IsSearching() || len(c.Items()) != 4 {
		t.Errorf("empty query should show all items")
	}
	if got := emptyText(c.IsSearching()); got != "Empty" {
		t.Errorf("placeholder without a query = %q", got)
	}
}

func TestPasteSelectedItem(t *testing.T) {
	repo := newTestRepository(t)
	seed(t, repo, "one", "two")
	paster := &fakePaster{}
	c, _, errs := newSyncController(repo, paster)
	c.LoadRecentItems()

	c.Paste(1)
	if len(paster.pasted) != 1 || paster.pasted[0].Text() != "one" {
		t.Fatalf("unexpected pasted items: %v", paster.pasted)
	}

	c.Paste(5)
	if len(paster.pasted) != 1 {
		t.Error("out of range index should be ignored")
	}

	paster.err = errors.New("pasteboard busy")
	c.Paste(0)
	if len(*errs) != 1 || !strings.Contains((*errs)[0].Error(), "pasteboard busy") {
		t.Errorf("expected paste error to be reported, got %v", *errs)
	}
}

func TestTogglePinAndNote(t *testing.T) {
	repo := newTestRepository(t)
	seed(t, repo, "keep me")
	c, _, _ := newSyncController(repo, &fakePaster{})
	c.LoadRecentItems()
	id := c.Items()[0].ID

	c.TogglePin(id)
	if !c.Items()[0].Pinned {
		t.Error("item should be pinned after toggle")
	}

	c.UpdateNote(id, "todo")
	if got := c.Items()[0].NoteText(); got != "todo" {
		t.Errorf("local note = %q", got)
	}
	stored, err := repo.GetItem(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if stored.NoteText() != "todo" {
		t.Errorf("stored note = %q", stored.NoteText())
	}

	c.UpdateNote(id, "")
	if c.Items()[0].Note != nil {
		t.Error("empty note should clear it")
	}
}

func TestDeleteItem(t *testing.T) {
	repo := newTestRepository(t)
	seed(t, repo, "a", "b")
	c, _, errs := newSyncController(repo, &fakePaster{})
	c.LoadRecentItems()

	c.DeleteItem(c.Items()[0].ID)
	if len(c.Items()) != 1 || c.Items()[0].Text() != "a" {
		t.Errorf("unexpected items after delete: %d", len(c.Items()))
	}

	c.DeleteItem("missing")
	if len(*errs) != 1 {
		t.Errorf("deleting a missing item should report an error, got %v", *errs)
	}
}

func TestItemTitle(t *testing.T) {
	long := strings.Repeat("é", 70)
	tests := []struct {
		item *database.ClipboardItem
		want string
	}{
		{&database.ClipboardItem{Type: database.TypeText, TextContent: util.StringPtr("  hello\n\tworld ")}, "hello world"},
		{&database.ClipboardItem{Type: database.TypeText, TextContent: util.StringPtr(long)}, strings.Repeat("é", 60) + "…"},
		{&database.ClipboardItem{Type: database.TypeImage, HasBinary: true}, "Image"},
		{&database.ClipboardItem{Type: database.TypeText}, "Empty text"},
	}
	for _, tt := range tests {
		if got := ItemTitle(tt.item); got != tt.want {
			t.Errorf("ItemTitle() = %q, want %q", got, tt.want)
		}
	}
}

func TestFormatTimeAgo(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "Just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{3 * time.Hour, "3 hours ago"},
		{30 * time.Hour, "Yesterday"},
		{4 * 24 * time.Hour, "4 days ago"},
		{40 * 24 * time.Hour, "Mar 31, 2026"},
	}
	for _, tt := range tests {
		if got := FormatTimeAgo(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("FormatTimeAgo(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	for n, want := range map[int]string{
		512:             "512 B",
		2048:            "2.0 KB",
		3 * 1024 * 1024: "3.0 MB",
	} {
		if got := FormatBytes(n); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}

package components

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"bufferly/internal/database"
)

// ItemStore is the part of the repository the overlay needs.
type ItemStore interface {
	RecentItems(ctx context.Context, limit int) ([]*database.ClipboardItem, error)
	SearchItems(ctx context.Context, query string, limit int) ([]*database.ClipboardItem, error)
	LoadBinary(ctx context.Context, item *database.ClipboardItem) ([]byte, error)
	TogglePin(ctx context.Context, id string) error
	UpdateNote(ctx context.Context, id string, note string) error
	DeleteItem(ctx context.Context, id string) error
}

type Paster interface {
	Paste(ctx context.Context, item *database.ClipboardItem) error
}

// ItemListController holds the overlay's item list. Store calls run on the
// background func; results are applied on the ui func, after which OnChange
// is called there.
type ItemListController struct {
	store  ItemStore
	paster Paster

	// OnChange refreshes the view after the items or status changed.
	OnChange func()
	// OnError reports failures the user should see.
	OnError func(error)

	ui         func(func())
	background func(func())

	mu         sync.Mutex
	items      []*database.ClipboardItem
	searchTerm string
	status     string
}

func NewItemListController(store ItemStore, paster Paster, ui func(func())) *ItemListController {
	if ui == nil {
		ui = func(f func()) { f() }
	}
	return &ItemListController{
		store:      store,
		paster:     paster,
		ui:         ui,
		background: func(f func()) { go f() },
	}
}

func (c *ItemListController) Items() []*database.ClipboardItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items
}

func (c *ItemListController) Item(index int) (*database.ClipboardItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.items) {
		return nil, false
	}
	return c.items[index], true
}

func (c *ItemListController) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *ItemListController) IsSearching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchTerm != ""
}

// LoadRecentItems loads the whole retained history, newest first.
func (c *ItemListController) LoadRecentItems() {
	c.mu.Lock()
	c.searchTerm = ""
	c.mu.Unlock()

	c.load(func(ctx context.Context) ([]*database.ClipboardItem, error) {
		return c.store.RecentItems(ctx, 0)
	}, func(n int) string {
		return countLabel(n, "item", "items", "No items yet")
	})
}

// Search filters the history by text and note. An empty query shows
// everything.
func (c *ItemListController) Search(query string) {
	if query == "" {
		c.LoadRecentItems()
		return
	}
	c.mu.Lock()
	c.searchTerm = query
	c.mu.Unlock()

	c.load(func(ctx context.Context) ([]*database.ClipboardItem, error) {
		return c.store.SearchItems(ctx, query, 0)
	}, func(n int) string {
		return countLabel(n, "result", "results", fmt.Sprintf("No results for '%s'", query))
	})
}

func (c *ItemListController) Refresh() {
	c.mu.Lock()
	term := c.searchTerm
	c.mu.Unlock()

	if term == "" {
		c.LoadRecentItems()
	} else {
		c.Search(term)
	}
}

func (c *ItemListController) load(fetch func(context.Context) ([]*database.ClipboardItem, error), label func(int) string) {
	c.background(func() {
		items, err := fetch(context.Background())
		c.ui(func() {
			if err != nil {
				slog.Error("failed to load clipboard history", "error", err)
				c.setStatus("Error loading items")
				c.reportError(fmt.Errorf("failed to load clipboard history: %w", err))
				return
			}
			c.mu.Lock()
			c.items = items
			c.status = label(len(items))
			c.mu.Unlock()
			c.changed()
		})
	})
}

// Paste hands the item at index to the paste dispatcher. It runs on the UI
// thread because the dispatcher hides the overlay.
func (c *ItemListController) Paste(index int) {
	item, ok := c.Item(index)
	if !ok {
		return
	}
	if err := c.paster.Paste(context.Background(), item); err != nil {
		slog.Error("failed to paste item", "id", item.ID, "error", err)
		c.reportError(fmt.Errorf("failed to paste item: %w", err))
	}
}

func (c *ItemListController) TogglePin(id string) {
	c.background(func() {
		if err := c.store.TogglePin(context.Background(), id); err != nil {
			c.ui(func() { c.reportError(fmt.Errorf("failed to pin/unpin item: %w", err)) })
			return
		}
		c.Refresh()
	})
}

// UpdateNote saves a note; the row already shows the edited text so the list
// is not reloaded.
func (c *ItemListController) UpdateNote(id, note string) {
	c.background(func() {
		if err := c.store.UpdateNote(context.Background(), id, note); err != nil {
			c.ui(func() { c.reportError(fmt.Errorf("failed to update note: %w", err)) })
			return
		}
		c.ui(func() {
			c.mu.Lock()
			for _, item := range c.items {
				if item.ID == id {
					if note == "" {
						item.Note = nil
					} else {
						item.Note = &note
					}
				}
			}
			c.mu.Unlock()
		})
	})
}

func (c *ItemListController) DeleteItem(id string) {
	c.background(func() {
		if err := c.store.DeleteItem(context.Background(), id); err != nil {
			c.ui(func() { c.reportError(fmt.Errorf("failed to delete item: %w", err)) })
			return
		}
		c.Refresh()
	})
}

// Thumbnail returns the image bytes of an image item, or nil.
func (c *ItemListController) Thumbnail(item *database.ClipboardItem) []byte {
	if !item.Type.IsImage() {
		return nil
	}
	data, err := c.store.LoadBinary(context.Background(), item)
	if err != nil {
		slog.Warn("failed to load thumbnail", "id", item.ID, "error", err)
		return nil
	}
	return data
}

func (c *ItemListController) setStatus(s string) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
	c.changed()
}

func (c *ItemListController) changed() {
	if c.OnChange != nil {
		c.OnChange()
	}
}

func (c *ItemListController) reportError(err error) {
	if c.OnError != nil {
		c.OnError(err)
	}
}

func countLabel(n int, one, many, none string) string {
	switch n {
	case 0:
		return none
	case 1:
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}

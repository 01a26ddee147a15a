package components

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const searchDebounce = 300 * time.Millisecond

// SearchBar filters the overlay list as the user types. Return pastes the
// first match.
type SearchBar struct {
	controller  *ItemListController
	onSubmit    func()
	entry       *widget.Entry
	clearButton *widget.Button
	container   *fyne.Container

	mu          sync.Mutex
	searchTimer *time.Timer
}

func NewSearchBar(controller *ItemListController, onSubmit func()) *SearchBar {
	sb := &SearchBar{
		controller: controller,
		onSubmit:   onSubmit,
	}

	sb.createSearchBar()
	return sb
}

func (sb *SearchBar) Create() fyne.CanvasObject {
	if sb.container == nil {
		sb.container = container.NewBorder(
			nil, nil,
			widget.NewIcon(theme.SearchIcon()),
			sb.clearButton,
			sb.entry,
		)
	}
	return sb.container
}

func (sb *SearchBar) createSearchBar() {
	sb.entry = widget.NewEntry()
	sb.entry.SetPlaceHolder("Search history...")

	sb.clearButton = widget.NewButtonWithIcon("", theme.ContentClearIcon(), func() {
		sb.Clear()
		sb.controller.LoadRecentItems()
	})
	sb.clearButton.Importance = widget.LowImportance
	sb.clearButton.Hide()

	sb.entry.OnChanged = func(text string) {
		if text == "" {
			sb.clearButton.Hide()
		} else {
			sb.clearButton.Show()
		}

		sb.mu.Lock()
		if sb.searchTimer != nil {
			sb.searchTimer.Stop()
		}
		sb.searchTimer = time.AfterFunc(searchDebounce, func() {
			sb.controller.Search(text)
		})
		sb.mu.Unlock()
	}

	sb.entry.OnSubmitted = func(string) {
		if sb.onSubmit != nil {
			sb.onSubmit()
		}
	}
}

func (sb *SearchBar) Focus(c fyne.Canvas) {
	if c != nil {
		c.Focus(sb.entry)
	}
}

// Clear empties the field without triggering a search.
func (sb *SearchBar) Clear() {
	sb.mu.Lock()
	if sb.searchTimer != nil {
		sb.searchTimer.Stop()
		sb.searchTimer = nil
	}
	sb.mu.Unlock()

	onChanged := sb.entry.OnChanged
	sb.entry.OnChanged = nil
	sb.entry.SetText("")
	sb.entry.OnChanged = onChanged
	sb.clearButton.Hide()
}

func (sb *SearchBar) Text() string {
	return sb.entry.Text
}

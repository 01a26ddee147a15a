package components

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"bufferly/internal/database"
)

const thumbnailSize = 32

// ItemList is the overlay's scrolling list of history rows.
type ItemList struct {
	controller *ItemListController
	list       *widget.List
	empty      *widget.Label
	status     *widget.Label
	search     *SearchBar
	container  *fyne.Container

	thumbs map[string]fyne.Resource
	now    func() time.Time
}

func NewItemList(controller *ItemListController) *ItemList {
	il := &ItemList{
		controller: controller,
		empty:      widget.NewLabelWithStyle("Empty", fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
		status:     widget.NewLabel(""),
		thumbs:     make(map[string]fyne.Resource),
		now:        time.Now,
	}
	il.status.TextStyle = fyne.TextStyle{Italic: true}
	il.search = NewSearchBar(controller, func() { controller.Paste(0) })

	il.createList()
	controller.OnChange = il.refresh
	return il
}

func (il *ItemList) Create() fyne.CanvasObject {
	if il.container == nil {
		il.container = container.NewBorder(
			il.search.Create(),
			container.NewHBox(layout.NewSpacer(), il.status),
			nil, nil,
			container.NewStack(il.list, container.NewCenter(il.empty)),
		)
	}
	return il.container
}

// Reset clears the search field and reloads the history; called each time the
// overlay opens.
func (il *ItemList) Reset() {
	il.search.Clear()
	il.controller.LoadRecentItems()
}

func (il *ItemList) FocusSearch(c fyne.Canvas) {
	il.search.Focus(c)
}

func (il *ItemList) createList() {
	il.list = widget.NewList(
		func() int {
			return len(il.controller.Items())
		},
		func() fyne.CanvasObject {
			return newItemRow(il)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if item, ok := il.controller.Item(id); ok {
				obj.(*itemRow).bind(item)
			}
		},
	)

	il.list.OnSelected = func(id widget.ListItemID) {
		il.list.UnselectAll()
		il.controller.Paste(id)
	}
}

func (il *ItemList) refresh() {
	items := il.controller.Items()
	if len(items) == 0 {
		il.empty.SetText(emptyText(il.controller.IsSearching()))
		il.empty.Show()
	} else {
		il.empty.Hide()
	}
	il.status.SetText(il.controller.Status())

	live := make(map[string]bool, len(items))
	for _, item := range items {
		live[item.ID] = true
	}
	for id := range il.thumbs {
		if !live[id] {
			delete(il.thumbs, id)
		}
	}
	il.list.Refresh()
}

// emptyText is the placeholder shown over an empty list.
func emptyText(searching bool) string {
	if searching {
		return "No matches"
	}
	return "Empty"
}

func (il *ItemList) thumbnail(item *database.ClipboardItem) fyne.Resource {
	if res, ok := il.thumbs[item.ID]; ok {
		return res
	}
	data := il.controller.Thumbnail(item)
	if data == nil {
		return nil
	}
	res := fyne.NewStaticResource(item.ID, data)
	il.thumbs[item.ID] = res
	return res
}

type itemRow struct {
	widget.BaseWidget

	list    *ItemList
	icon    *widget.Icon
	thumb   *canvas.Image
	title   *widget.Label
	note    *widget.Entry
	when    *widget.Label
	pin     *widget.Button
	remove  *widget.Button
	content fyne.CanvasObject
}

func newItemRow(list *ItemList) *itemRow {
	r := &itemRow{
		list:   list,
		icon:   widget.NewIcon(theme.DocumentIcon()),
		thumb:  &canvas.Image{FillMode: canvas.ImageFillContain},
		title:  widget.NewLabel(""),
		note:   widget.NewEntry(),
		when:   widget.NewLabel(""),
		pin:    widget.NewButtonWithIcon("", theme.RadioButtonIcon(), nil),
		remove: widget.NewButtonWithIcon("", theme.DeleteIcon(), nil),
	}
	r.thumb.SetMinSize(fyne.NewSquareSize(thumbnailSize))
	r.title.TextStyle = fyne.TextStyle{Bold: true}
	r.title.Truncation = fyne.TextTruncateEllipsis
	r.note.SetPlaceHolder("Note")
	r.when.TextStyle = fyne.TextStyle{Italic: true}
	r.pin.Importance = widget.LowImportance
	r.remove.Importance = widget.LowImportance

	leading := container.NewStack(r.icon, r.thumb)
	meta := container.NewBorder(nil, nil, nil, r.when, r.note)
	r.content = container.NewBorder(
		nil, nil,
		container.NewCenter(leading),
		container.NewHBox(r.pin, r.remove, widget.NewIcon(theme.MailReplyIcon())),
		container.NewVBox(r.title, meta),
	)

	r.ExtendBaseWidget(r)
	return r
}

func (r *itemRow) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(r.content)
}

func (r *itemRow) bind(item *database.ClipboardItem) {
	id := item.ID

	r.title.SetText(ItemTitle(item))
	r.when.SetText(FormatTimeAgo(item.CreatedAt, r.list.now()))

	if res := r.list.thumbnail(item); res != nil {
		r.thumb.Resource = res
		r.thumb.Refresh()
		r.thumb.Show()
		r.icon.Hide()
	} else {
		r.thumb.Hide()
		if item.Type.IsImage() {
			r.icon.SetResource(theme.FileImageIcon())
		} else {
			r.icon.SetResource(theme.DocumentIcon())
		}
		r.icon.Show()
	}

	r.note.OnSubmitted = nil
	r.note.SetText(item.NoteText())
	r.note.OnSubmitted = func(text string) {
		r.list.controller.UpdateNote(id, text)
	}

	if item.Pinned {
		r.pin.SetIcon(theme.RadioButtonCheckedIcon())
	} else {
		r.pin.SetIcon(theme.RadioButtonIcon())
	}
	r.pin.OnTapped = func() { r.list.controller.TogglePin(id) }
	r.remove.OnTapped = func() { r.list.controller.DeleteItem(id) }
}

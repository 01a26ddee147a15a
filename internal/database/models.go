package database

import (
	"time"

	"github.com/uptrace/bun"
)

// ContentType tags what kind of payload a ClipboardItem carries.
type ContentType string

const (
	TypeImage ContentType = "public.image"
	TypeText  ContentType = "public.utf8-plain-text"
)

// IsImage reports whether the type carries a binary image payload.
func (t ContentType) IsImage() bool {
	return t == TypeImage
}

type ClipboardItem struct {
	bun.BaseModel `bun:"table:clipboard_items"`

	ID          string      `bun:"id,pk" json:"id"`
	CreatedAt   time.Time   `bun:"created_at,notnull" json:"created_at"`
	Type        ContentType `bun:"type,notnull" json:"type"`
	TextContent *string     `bun:"text_content" json:"text_content,omitempty"`
	Note        *string     `bun:"note" json:"note,omitempty"`
	Pinned      bool        `bun:"pinned,notnull,default:false" json:"pinned"`
	Hash        string      `bun:"hash,notnull" json:"hash"`

	// Binary payloads live in the blob store, keyed by ID.
	HasBinary  bool   `bun:"has_binary,notnull,default:false" json:"has_binary"`
	BinarySize int    `bun:"binary_size,notnull,default:0" json:"binary_size"`
	BinaryData []byte `bun:"-" json:"-"`
}

// Text returns the text payload or an empty string.
func (i *ClipboardItem) Text() string {
	if i.TextContent == nil {
		return ""
	}
	return *i.TextContent
}

// NoteText returns the user note or an empty string.
func (i *ClipboardItem) NoteText() string {
	if i.Note == nil {
		return ""
	}
	return *i.Note
}

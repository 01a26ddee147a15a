package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"bufferly/internal/util"
)

// ErrNotFound is returned when no item matches the requested id.
var ErrNotFound = errors.New("clipboard item not found")

// Newest first. rowid breaks ties between items created in the same instant.
var recencyOrder = []string{"created_at DESC", "rowid DESC"}

type Repository struct {
	db    *bun.DB
	blobs *BlobStore
	now   func() time.Time
}

func NewRepository(dbPath string, blobs *BlobStore) (*Repository, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection keeps writes ordered.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	repo := &Repository{db: db, blobs: blobs, now: time.Now}

	if err := repo.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	ctx := context.Background()

	if _, err := r.db.NewCreateTable().Model((*ClipboardItem)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create table for %T: %w", (*ClipboardItem)(nil), err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_clipboard_created_at ON clipboard_items(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_clipboard_pinned ON clipboard_items(pinned)",
	}

	for _, idx := range indexes {
		if _, err := r.db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// SaveItem records a new clipboard value unless it is identical (type, text
// and binary) to the most recently created item. After an insert the history
// is pruned to the newest limit items. created reports whether a row was added.
func (r *Repository) SaveItem(ctx context.Context, contentType ContentType, text *string, binary []byte, limit int) (item *ClipboardItem, created bool, err error) {
	hash := util.GenerateHash(string(contentType), text, binary)

	var (
		pruned     []string
		storedBlob string
	)
	err = r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		last, err := latest(ctx, tx)
		if err != nil {
			return err
		}
		if last != nil && last.Type == contentType && last.Hash == hash {
			item = last
			return nil
		}

		item = &ClipboardItem{
			ID:          uuid.NewString(),
			CreatedAt:   r.now().UTC(),
			Type:        contentType,
			TextContent: text,
			Hash:        hash,
		}
		if binary != nil {
			item.HasBinary = true
			item.BinarySize = len(binary)
			item.BinaryData = binary
			if err := r.blobs.Put(item.ID, binary); err != nil {
				return fmt.Errorf("failed to store binary payload: %w", err)
			}
			storedBlob = item.ID
		}

		if _, err := tx.NewInsert().Model(item).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert clipboard item: %w", err)
		}
		created = true

		pruned, err = pruneTx(ctx, tx, limit)
		return err
	})
	if err != nil {
		// The row was rolled back, so its blob must go too.
		if storedBlob != "" {
			if derr := r.blobs.Delete(storedBlob); derr != nil {
				slog.Warn("failed to remove orphaned blob", "id", storedBlob, "error", derr)
			}
		}
		return nil, false, err
	}

	if err := r.blobs.Delete(pruned...); err != nil {
		return item, created, fmt.Errorf("failed to delete pruned blobs: %w", err)
	}
	return item, created, nil
}

func latest(ctx context.Context, db bun.IDB) (*ClipboardItem, error) {
	var items []*ClipboardItem
	err := db.NewSelect().
		Model(&items).
		Order(recencyOrder...).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load latest item: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// pruneTx deletes every row beyond the newest limit rows in one statement and
// returns the ids of deleted rows that owned a blob.
func pruneTx(ctx context.Context, db bun.IDB, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	var rows []*ClipboardItem
	err := db.NewSelect().
		Model(&rows).
		Column("id", "has_binary").
		Order(recencyOrder...).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items for pruning: %w", err)
	}
	if len(rows) <= limit {
		return nil, nil
	}

	excess := rows[limit:]
	ids := make([]string, 0, len(excess))
	var blobIDs []string
	for _, row := range excess {
		ids = append(ids, row.ID)
		if row.HasBinary {
			blobIDs = append(blobIDs, row.ID)
		}
	}

	_, err = db.NewDelete().
		Model((*ClipboardItem)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prune excess items: %w", err)
	}
	return blobIDs, nil
}

// Prune keeps only the newest limit items.
func (r *Repository) Prune(ctx context.Context, limit int) error {
	var pruned []string
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		pruned, err = pruneTx(ctx, tx, limit)
		return err
	})
	if err != nil {
		return err
	}
	return r.blobs.Delete(pruned...)
}

func (r *Repository) RecentItems(ctx context.Context, limit int) ([]*ClipboardItem, error) {
	var items []*ClipboardItem

	q := r.db.NewSelect().
		Model(&items).
		Order(recencyOrder...)
	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to get recent items: %w", err)
	}

	return items, nil
}

func (r *Repository) SearchItems(ctx context.Context, query string, limit int) ([]*ClipboardItem, error) {
	var items []*ClipboardItem

	pattern := "%" + query + "%"
	q := r.db.NewSelect().
		Model(&items).
		Where("text_content LIKE ? OR note LIKE ?", pattern, pattern).
		Order(recencyOrder...)
	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}

	return items, nil
}

func (r *Repository) GetItem(ctx context.Context, id string) (*ClipboardItem, error) {
	var item ClipboardItem
	err := r.db.NewSelect().
		Model(&item).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item by ID: %w", err)
	}

	return &item, nil
}

// LoadBinary fills item.BinaryData from the blob store when needed.
func (r *Repository) LoadBinary(ctx context.Context, item *ClipboardItem) ([]byte, error) {
	if !item.HasBinary || item.BinaryData != nil {
		return item.BinaryData, nil
	}
	data, err := r.blobs.Get(item.ID)
	if err != nil {
		return nil, err
	}
	item.BinaryData = data
	return data, nil
}

func (r *Repository) Count(ctx context.Context) (int, error) {
	n, err := r.db.NewSelect().Model((*ClipboardItem)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return n, nil
}

// UpdateNote sets the user note; an empty note clears it.
func (r *Repository) UpdateNote(ctx context.Context, id string, note string) error {
	return r.update(ctx, id, "note = ?", util.StringPtr(note))
}

func (r *Repository) setPinned(ctx context.Context, id string, pinned bool) error {
	return r.update(ctx, id, "pinned = ?", pinned)
}

func (r *Repository) TogglePin(ctx context.Context, id string) error {
	return r.update(ctx, id, "pinned = NOT pinned")
}

func (r *Repository) update(ctx context.Context, id string, set string, args ...interface{}) error {
	res, err := r.db.NewUpdate().
		Model((*ClipboardItem)(nil)).
		Set(set, args...).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteItem(ctx context.Context, id string) error {
	item, err := r.GetItem(ctx, id)
	if err != nil {
		return err
	}

	_, err = r.db.NewDelete().
		Model((*ClipboardItem)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	if item.HasBinary {
		return r.blobs.Delete(id)
	}
	return nil
}

// ClearAll removes every item, pinned or not. The blobs are dropped before
// the row deletion commits, so a concurrent SaveItem either lands entirely
// before the clear or entirely after it.
func (r *Repository) ClearAll(ctx context.Context) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*ClipboardItem)(nil)).Where("1=1").Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear all items: %w", err)
		}
		if err := r.blobs.Clear(); err != nil {
			return fmt.Errorf("failed to clear blobs: %w", err)
		}
		return nil
	})
}

func (r *Repository) Close() error {
	return r.db.Close()
}

package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	blobBucket = "blobs"

	// How long an operation waits for another process holding blobs.db.
	blobLockTimeout = 2 * time.Second
)

// BlobStore keeps binary clipboard payloads outside the SQL table. The bolt
// file is opened for each operation and closed right after, so the tray app
// and the CLI can share it.
type BlobStore struct {
	path string
	mu   sync.Mutex
}

func OpenBlobStore(path string) (*BlobStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	s := &BlobStore{path: path}
	err := s.update(func(b *bolt.Bucket) error { return nil })
	if err != nil {
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}
	return s, nil
}

func (s *BlobStore) open() (*bolt.DB, error) {
	return bolt.Open(s.path, 0o600, &bolt.Options{Timeout: blobLockTimeout})
}

func (s *BlobStore) update(fn func(b *bolt.Bucket) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.open()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(blobBucket))
		if err != nil {
			return err
		}
		return fn(b)
	})
}

func (s *BlobStore) view(fn func(b *bolt.Bucket) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.open()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(blobBucket))
		if b == nil {
			return nil
		}
		return fn(b)
	})
}

func (s *BlobStore) Put(id string, data []byte) error {
	return s.update(func(b *bolt.Bucket) error {
		return b.Put([]byte(id), data)
	})
}

// Get returns a copy of the blob, or nil if none is stored under id.
func (s *BlobStore) Get(id string) ([]byte, error) {
	var out []byte
	err := s.view(func(b *bolt.Bucket) error {
		if v := b.Get([]byte(id)); v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", id, err)
	}
	return out, nil
}

func (s *BlobStore) Delete(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.update(func(b *bolt.Bucket) error {
		for _, id := range ids {
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear drops every stored blob.
func (s *BlobStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.open()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(blobBucket)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket([]byte(blobBucket))
		return err
	})
}

// count returns the number of stored blobs.
func (s *BlobStore) count() (int, error) {
	n := 0
	err := s.view(func(b *bolt.Bucket) error {
		n = b.Stats().KeyN
		return nil
	})
	return n, err
}

// Close is a no-op; the bolt file is only held during an operation.
func (s *BlobStore) Close() error {
	return nil
}

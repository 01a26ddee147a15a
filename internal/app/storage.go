package app

import (
	"fmt"
	"path/filepath"

	"bufferly/internal/database"
)

const (
	historyFile = "history.db"
	blobsFile   = "blobs.db"
	configFile  = "config.json"
)

// ConfigPath is the preference file inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, configFile)
}

// Storage is the item store and its blob store, opened together.
type Storage struct {
	Repository *database.Repository
	Blobs      *database.BlobStore
}

func OpenStorage(dataDir string) (*Storage, error) {
	blobs, err := database.OpenBlobStore(filepath.Join(dataDir, blobsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}
	repo, err := database.NewRepository(filepath.Join(dataDir, historyFile), blobs)
	if err != nil {
		_ = blobs.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return &Storage{Repository: repo, Blobs: blobs}, nil
}

func (s *Storage) Close() error {
	err := s.Repository.Close()
	if berr := s.Blobs.Close(); err == nil {
		err = berr
	}
	return err
}

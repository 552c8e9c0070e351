package transfer

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store is the terminal storage action for a completed transfer.
type Store interface {
	// Write creates or overwrites the file for the given sanitized name
	// and returns the path it was written to.
	Write(name string, data []byte) (string, error)
}

// DirStore writes completed transfers into a download directory. The
// directory is provisioned once at process start, not here.
type DirStore struct {
	root string
}

// NewDirStore returns a Store rooted at dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{root: dir}
}

func (s *DirStore) Write(name string, data []byte) (string, error) {
	path := filepath.Join(s.root, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("transfer: write %s: %w", path, err)
	}
	return path, nil
}

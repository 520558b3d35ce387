package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"classtrack-go/internal/track"
)

// FileSystemArchive stores reports as plain files under a root directory.
type FileSystemArchive struct {
	root string
}

// NewFileSystemArchive creates an archive rooted at the given path.
func NewFileSystemArchive(root string) (*FileSystemArchive, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &FileSystemArchive{root: root}, nil
}

// StoreReport writes the report atomically (temp file + rename) and
// verifies the byte count against the declared size.
func (a *FileSystemArchive) StoreReport(name string, r io.Reader, size int64) error {
	destPath := filepath.Join(a.root, filepath.Base(name))

	tmpFile, err := os.CreateTemp(a.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

var _ track.Archive = (*FileSystemArchive)(nil)

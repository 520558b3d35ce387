package testutil

import (
	"fmt"
	"sync"

	"classtrack-go/internal/track"
)

// MemoryStorage is an in-memory implementation of track.Storage for tests.
// Folders and files are registered up front; listing failures can be
// injected per folder.
type MemoryStorage struct {
	mu      sync.Mutex
	folders []track.Folder
	files   map[string][]track.File
	failing map[string]bool
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		files:   make(map[string][]track.File),
		failing: make(map[string]bool),
	}
}

// AddFolder registers a child folder under the root.
func (s *MemoryStorage) AddFolder(id, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.folders = append(s.folders, track.Folder{ID: id, Name: name})
}

// AddFile registers a file inside the given folder.
func (s *MemoryStorage) AddFile(folderID string, f track.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[folderID] = append(s.files[folderID], f)
}

// FailFolder makes ListFiles on the given folder return an error.
func (s *MemoryStorage) FailFolder(folderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[folderID] = true
}

func (s *MemoryStorage) ListFolders(rootID string) ([]track.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing[rootID] {
		return nil, fmt.Errorf("folder %s unavailable", rootID)
	}
	return append([]track.Folder{}, s.folders...), nil
}

func (s *MemoryStorage) ListFiles(folderID string, mimeTypes []string) ([]track.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing[folderID] {
		return nil, fmt.Errorf("folder %s unavailable", folderID)
	}

	files := s.files[folderID]
	if len(mimeTypes) == 0 {
		return append([]track.File{}, files...), nil
	}

	var out []track.File
	for _, f := range files {
		for _, mt := range mimeTypes {
			if f.MimeType == mt {
				out = append(out, f)
				break
			}
		}
	}
	return out, nil
}

var _ track.Storage = (*MemoryStorage)(nil)

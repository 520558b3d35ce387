package archive

import (
	"fmt"
	"io"
	"sync"

	"classtrack-go/internal/track"
)

// MemoryArchive stores reports in memory. Used in tests. Safe for
// concurrent use.
type MemoryArchive struct {
	reports map[string][]byte
	mu      sync.RWMutex
}

// NewMemoryArchive creates a new in-memory archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{reports: make(map[string][]byte)}
}

func (a *MemoryArchive) StoreReport(name string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.reports[name] = data
	return nil
}

// Report returns a stored report's bytes, or nil if absent.
func (a *MemoryArchive) Report(name string) []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.reports[name]
}

// Names returns the stored report names.
func (a *MemoryArchive) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.reports))
	for name := range a.reports {
		names = append(names, name)
	}
	return names
}

var _ track.Archive = (*MemoryArchive)(nil)

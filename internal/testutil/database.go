package testutil

import (
	"testing"

	"classtrack-go/internal/database"
)

// NewTestDatabase creates a new in-memory SQLite database with the base
// schema applied. The database is automatically closed when the test
// completes.
func NewTestDatabase(t *testing.T) *database.Store {
	t.Helper()

	sqlDB, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	store, err := database.NewStore(sqlDB, database.SQLite())
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to create store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

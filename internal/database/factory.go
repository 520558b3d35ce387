package database

import (
	"database/sql"
	"fmt"

	"classtrack-go/internal/config"
	"classtrack-go/internal/database/migrations"
	"classtrack-go/internal/track"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
)

// NewDatabaseFromConfig creates a Database implementation based on the
// database config type. The postgres type refuses to start against an
// unmigrated or dirty schema; the memory type applies the base schema
// itself and exists for tests and local dry runs.
func NewDatabaseFromConfig(cfg config.DatabaseConfig) (track.Database, error) {
	switch cfg.Type {
	case "postgres":
		if cfg.URL == "" {
			return nil, fmt.Errorf("url required for postgres database")
		}
		db, err := OpenPostgres(cfg.URL)
		if err != nil {
			return nil, err
		}
		if err := migrations.CheckDBMigrationStatus(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("schema out of date (run classtrack db migrate): %w", err)
		}
		store, err := NewStore(db, Postgres())
		if err != nil {
			db.Close()
			return nil, err
		}
		return store, nil
	case "memory":
		db, err := OpenMemory()
		if err != nil {
			return nil, err
		}
		store, err := NewStore(db, SQLite())
		if err != nil {
			db.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

// OpenPostgres opens a PostgreSQL connection and verifies it is reachable.
func OpenPostgres(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return db, nil
}

// OpenMemory opens an in-memory SQLite database with the base schema
// applied. Exported for tests that need a real engine without a server.
func OpenMemory() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return db, nil
}

// MigratePostgres brings a PostgreSQL schema to the latest version.
func MigratePostgres(url string) error {
	db, err := OpenPostgres(url)
	if err != nil {
		return err
	}
	defer db.Close()
	return migrations.MigrateUp(db)
}

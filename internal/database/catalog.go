package database

import (
	"database/sql"
	"fmt"
)

// Column describes one column as reported by the engine's catalog.
type Column struct {
	Name       string
	Nullable   bool
	HasDefault bool
}

// Catalog is a snapshot of the live schema: which tables exist and which
// columns each one has. Writes are filtered through it so the application
// only ever mentions columns the deployed schema actually carries, which
// lets the schema gain columns without a coordinated release.
type Catalog struct {
	tables map[string][]Column
}

// DiscoverCatalog reads the engine's schema catalog. Failure here is fatal
// to the caller: without the catalog no write can be validated.
func DiscoverCatalog(db *sql.DB, dialect Dialect) (*Catalog, error) {
	rows, err := db.Query(dialect.TablesQuery())
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	cat := &Catalog{tables: make(map[string][]Column, len(names))}
	for _, name := range names {
		cols, err := discoverColumns(db, dialect, name)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		cat.tables[name] = cols
	}
	return cat, nil
}

func discoverColumns(db *sql.DB, dialect Dialect, table string) ([]Column, error) {
	rows, err := db.Query(dialect.ColumnsQuery(), table)
	if err != nil {
		return nil, fmt.Errorf("listing columns: %w", err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.Name, &c.Nullable, &c.HasDefault); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// HasTable reports whether the table exists.
func (c *Catalog) HasTable(table string) bool {
	_, ok := c.tables[table]
	return ok
}

// HasColumn reports whether the table exists and carries the column.
func (c *Catalog) HasColumn(table, column string) bool {
	for _, col := range c.tables[table] {
		if col.Name == column {
			return true
		}
	}
	return false
}

// Columns returns the table's columns in catalog order, or nil for an
// unknown table.
func (c *Catalog) Columns(table string) []Column {
	return c.tables[table]
}

package database

import "fmt"

// Dialect abstracts the SQL differences between the supported engines so the
// repository and the statement builder stay engine-agnostic. Production runs
// on PostgreSQL; the in-memory engine is SQLite.
type Dialect interface {
	// Name identifies the dialect ("postgres" or "sqlite").
	Name() string
	// Placeholder returns the parameter marker for 1-based position i.
	Placeholder(i int) string
	// Now is the SQL expression for the current timestamp.
	Now() string
	// DayExpr formats a timestamp column as a YYYY-MM-DD string.
	DayExpr(col string) string
	// TablesQuery lists user table names, one string column per row.
	TablesQuery() string
	// ColumnsQuery lists the columns of one table. It takes the table name
	// as its single parameter and yields (name, is_nullable, has_default).
	ColumnsQuery() string
}

type postgresDialect struct{}

// Postgres returns the PostgreSQL dialect.
func Postgres() Dialect { return postgresDialect{} }

func (postgresDialect) Name() string { return "postgres" }
func (postgresDialect) Placeholder(i int) string { return fmt.Sprintf("$%d", i) }
func (postgresDialect) Now() string { return "NOW()" }

func (postgresDialect) DayExpr(col string) string {
	return fmt.Sprintf("TO_CHAR(%s, 'YYYY-MM-DD')", col)
}

func (postgresDialect) TablesQuery() string {
	return `SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		AND table_name != 'schema_migrations'`
}

func (postgresDialect) ColumnsQuery() string {
	return `SELECT column_name, is_nullable = 'YES', column_default IS NOT NULL
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position`
}

type sqliteDialect struct{}

// SQLite returns the SQLite dialect.
func SQLite() Dialect { return sqliteDialect{} }

func (sqliteDialect) Name() string { return "sqlite" }
func (sqliteDialect) Placeholder(int) string { return "?" }
func (sqliteDialect) Now() string { return "CURRENT_TIMESTAMP" }

func (sqliteDialect) DayExpr(col string) string {
	return fmt.Sprintf("STRFTIME('%%Y-%%m-%%d', %s)", col)
}

func (sqliteDialect) TablesQuery() string {
	return `SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name != 'schema_migrations'`
}

func (sqliteDialect) ColumnsQuery() string {
	return `SELECT name, "notnull" = 0, dflt_value IS NOT NULL
		FROM pragma_table_info(?)`
}

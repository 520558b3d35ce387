package database

import (
	"fmt"
	"reflect"
	"strings"
)

// Field is one (column, value) pair a write would like to persist. Order is
// preserved so generated SQL is deterministic.
type Field struct {
	Column string
	Value  any
}

// BuildInsert generates an INSERT for the subset of fields whose columns the
// catalog reports for the table. Fields with nil values are dropped so the
// engine applies column defaults. It errors if the table is unknown or if no
// field survives filtering, which signals a schema so divergent the write
// would be meaningless.
//
// The returned statement has no ON CONFLICT or RETURNING clause; callers
// append those, since they name key columns guaranteed by the base schema.
func BuildInsert(cat *Catalog, dialect Dialect, table string, fields []Field) (string, []any, error) {
	if !cat.HasTable(table) {
		return "", nil, fmt.Errorf("table %s not present in schema", table)
	}

	cols := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		if isNilValue(f.Value) {
			continue
		}
		if !cat.HasColumn(table, f.Column) {
			continue
		}
		cols = append(cols, f.Column)
		args = append(args, f.Value)
	}
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("no usable columns for table %s", table)
	}

	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = dialect.Placeholder(i + 1)
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(marks, ", "))
	return stmt, args, nil
}

// isNilValue catches both untyped nil and typed nils such as (*time.Time)(nil),
// which compare unequal to nil through an interface.
func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

package table

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/tabkit-labs/tabkit/pkg/value"
)

// StoreSQLite writes the table into a database table of the given name.
// Bool cells are stored as 0/1 integers, blob cells as raw bytes.
// Columns holding nested tables or opaque objects cannot be stored.
// An existing database table of the same name is only replaced with
// WithReplaceTable.
func (t *Table) StoreSQLite(ctx context.Context, path, tableName string, opts ...Option) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	defer db.Close()
	return t.storeSQLiteDB(ctx, db, tableName, applyOptions(opts))
}

func (t *Table) storeSQLiteDB(ctx context.Context, db *sql.DB, tableName string, o options) error {
	if tableName == "" {
		return &ArgumentError{Message: "table name must not be empty"}
	}
	columns := make([]string, t.NumCols())
	for i, name := range t.colNames {
		sqlType, err := sqliteType(t.colTypes[i])
		if err != nil {
			return &TypeError{Message: fmt.Sprintf(
				"column %q cannot be stored: %v", name, err)}
		}
		columns[i] = fmt.Sprintf("%s %s", quoteIdent(name), sqlType)
	}

	var count int
	err := db.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
		tableName,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check for existing table: %w", err)
	}
	if count > 0 {
		if !o.replaceTable {
			return &ArgumentError{Message: fmt.Sprintf(
				"table %q already exists, use the replace table option", tableName)}
		}
		if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", quoteIdent(tableName))); err != nil {
			return fmt.Errorf("failed to drop existing table: %w", err)
		}
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(tableName), strings.Join(columns, ", "))
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", t.NumCols()), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s VALUES (%s)", quoteIdent(tableName), placeholders))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, t.NumCols())
	for _, row := range t.rows {
		for i, v := range row {
			args[i] = sqliteValue(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadSQLite reads a database table back into a table. Column types
// follow the declared database types where available and the scanned
// values otherwise; bool columns round-trip as 0/1 integers unless
// pinned back with WithColumnType.
func LoadSQLite(ctx context.Context, path, tableName string, opts ...Option) (*Table, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	defer db.Close()

	t, err := loadSQLiteDB(ctx, db, tableName, applyOptions(opts))
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	t.meta[metaLoadedFrom] = abs
	return t, nil
}

func loadSQLiteDB(ctx context.Context, db *sql.DB, tableName string, o options) (*Table, error) {
	if tableName == "" {
		return nil, &ArgumentError{Message: "table name must not be empty"}
	}
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", quoteIdent(tableName)))
	if err != nil {
		return nil, fmt.Errorf("failed to query table %q: %w", tableName, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read column names: %w", err)
	}
	declared := make([]value.ColType, len(names))
	if colTypes, err := rows.ColumnTypes(); err == nil {
		for i, ct := range colTypes {
			declared[i] = declaredColType(ct.DatabaseTypeName())
		}
	}

	var data [][]any
	ptrs := make([]any, len(names))
	for rows.Next() {
		for i := range ptrs {
			ptrs[i] = new(any)
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make([]any, len(names))
		for i, p := range ptrs {
			row[i] = scannedValue(*p.(*any), declared[i])
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	types := make([]value.ColType, len(names))
	formats := make([]string, len(names))
	for j, name := range names {
		typ, pinned := o.colTypes[name]
		if !pinned {
			typ = declared[j]
			if typ == value.TypeNone {
				values := make([]any, len(data))
				for i, row := range data {
					values[i] = row[j]
				}
				typ = value.CommonType(values)
			}
		}
		for i := range data {
			converted, err := sqliteCell(data[i][j], typ)
			if err != nil {
				return nil, &TypeError{Message: fmt.Sprintf(
					"cannot convert value in column %q to %s: %v", name, typ, err)}
			}
			data[i][j] = converted
		}
		types[j] = typ
		if format, ok := o.colFormats[name]; ok {
			formats[j] = format
		} else {
			formats[j] = guessFormat(name, typ)
		}
	}
	newOpts := []Option{WithTitle(tableName)}
	if o.logger != nil {
		newOpts = append(newOpts, WithLogger(o.logger))
	}
	return New(names, types, formats, data, newOpts...)
}

// quoteIdent quotes a table or column name for use in generated SQL.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sqliteType(typ value.ColType) (string, error) {
	switch typ {
	case value.TypeInt, value.TypeBool:
		return "INTEGER", nil
	case value.TypeFloat:
		return "REAL", nil
	case value.TypeString, value.TypeNone:
		return "TEXT", nil
	case value.TypeBlob:
		return "BLOB", nil
	default:
		return "", fmt.Errorf("no database representation for type %s", typ)
	}
}

func sqliteValue(v any) any {
	switch n := v.(type) {
	case bool:
		if n {
			return int64(1)
		}
		return int64(0)
	case *value.Blob:
		return n.Data
	default:
		return v
	}
}

func declaredColType(dbType string) value.ColType {
	switch strings.ToUpper(dbType) {
	case "INTEGER", "INT", "BIGINT", "SMALLINT", "TINYINT":
		return value.TypeInt
	case "REAL", "FLOAT", "DOUBLE", "NUMERIC", "DECIMAL":
		return value.TypeFloat
	case "TEXT", "VARCHAR", "CHAR", "CLOB":
		return value.TypeString
	case "BLOB":
		return value.TypeBlob
	default:
		return value.TypeNone
	}
}

// scannedValue maps driver values to cell values, using the declared
// column type to decide between text and blob for raw bytes.
func scannedValue(v any, declared value.ColType) any {
	switch n := v.(type) {
	case []byte:
		if declared == value.TypeBlob {
			return value.NewBlob(bytes.Clone(n))
		}
		return string(n)
	default:
		return value.Normalize(v)
	}
}

// sqliteCell converts a scanned value to the final column type.
func sqliteCell(v any, typ value.ColType) (any, error) {
	if v == nil {
		return nil, nil
	}
	if typ == value.TypeBool {
		switch n := v.(type) {
		case bool:
			return n, nil
		case int64:
			return n != 0, nil
		default:
			return nil, fmt.Errorf("cannot convert %T value to bool", v)
		}
	}
	return value.Coerce(v, typ)
}

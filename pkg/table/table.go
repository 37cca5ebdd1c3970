// Package table implements an in-memory, column-typed, row-oriented
// table engine. Tables carry an ordered column registry of parallel
// name, type and display-format definitions over a row store of
// heterogeneously typed cells. Queries are built from the expression
// trees of pkg/expr: filtering, joins and column computation evaluate
// expressions against a context assembled from the table's own columns.
// Every query operation returns a new table whose rows are copied, never
// aliased.
//
// Missing values are represented as nil cells and are legal in every
// column regardless of its declared type. Tables are not safe for
// concurrent mutation; callers that share a table across goroutines have
// to serialize access themselves.
package table

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/tabkit-labs/tabkit/pkg/expr"
	"github.com/tabkit-labs/tabkit/pkg/value"
)

const (
	metaUniqueID   = "unique_id"
	metaLoadedFrom = "loaded_from"
)

// Table owns a column registry of parallel name/type/format slices and
// a row store aligned to it. The zero value is not usable, construct
// tables with New, FromSlice or one of the loaders. A Table is not safe
// for concurrent use; callers serialize access.
type Table struct {
	colNames   []string
	colTypes   []value.ColType
	colFormats []string
	rows       [][]any

	title string
	meta  map[string]any

	id           value.TableID
	primaryIndex map[string]bool
	colIndex     map[string]int
	logger       *slog.Logger
}

func newTableID() value.TableID {
	return value.TableID(uuid.New().String())
}

// New builds a table from parallel column definitions and an initial
// row set. Rows are normalized but not coerced: cells keep their values
// as given. Column names must be unique and contain the reserved "__"
// separator at most once.
func New(colNames []string, colTypes []value.ColType, colFormats []string, rows [][]any, opts ...Option) (*Table, error) {
	o := applyOptions(opts)

	if len(colNames) != len(colTypes) || len(colNames) != len(colFormats) {
		return nil, &SchemaError{Message: fmt.Sprintf(
			"got %d column names, %d types and %d formats, all counts must be equal",
			len(colNames), len(colTypes), len(colFormats))}
	}
	seen := make(map[string]bool, len(colNames))
	for _, n := range colNames {
		if seen[n] {
			return nil, &SchemaError{Message: fmt.Sprintf("multiple columns with name %q", n)}
		}
		seen[n] = true
		if _, _, _, err := splitColumnName(n); err != nil {
			return nil, err
		}
	}
	for i, ct := range colTypes {
		if !ct.Valid() {
			return nil, &TypeError{Message: fmt.Sprintf("invalid type for column %q", colNames[i])}
		}
	}
	for i, f := range colFormats {
		if _, err := compileFormat(f); err != nil {
			return nil, &SchemaError{Message: fmt.Sprintf("invalid format %q for column %q", f, colNames[i])}
		}
	}

	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	t := &Table{
		colNames:     slices.Clone(colNames),
		colTypes:     slices.Clone(colTypes),
		colFormats:   slices.Clone(colFormats),
		rows:         make([][]any, 0, len(rows)),
		title:        o.title,
		meta:         map[string]any{},
		id:           newTableID(),
		primaryIndex: map[string]bool{},
		logger:       logger,
	}
	if o.meta != nil {
		t.meta = maps.Clone(o.meta)
	}
	for _, row := range rows {
		if len(row) != len(colNames) {
			return nil, &ShapeError{
				Expected: len(colNames),
				Got:      len(row),
				Message: fmt.Sprintf("row of length %d does not fit table with %d columns",
					len(row), len(colNames)),
			}
		}
		r := make([]any, len(row))
		for i, cell := range row {
			r[i] = value.Normalize(cell)
		}
		t.rows = append(t.rows, r)
	}
	t.resetInternals()
	return t, nil
}

// FromSlice builds a one-column table from a slice of values. The
// values are coerced to their common primitive type unless a type is
// fixed with WithType; the format is guessed from the column name
// unless given.
func FromSlice(name string, values any, opts ...Option) (*Table, error) {
	o := applyOptions(opts)

	cells, ok := toAnySlice(values)
	if !ok {
		return nil, &TypeError{Message: fmt.Sprintf("cannot build a column from %T", values)}
	}
	for i, v := range cells {
		cells[i] = value.Normalize(v)
	}

	typ := value.CommonType(cells)
	if o.colTypeSet {
		typ = o.colType
	}
	switch typ {
	case value.TypeInt, value.TypeFloat, value.TypeBool, value.TypeString:
		for i, v := range cells {
			c, err := value.Coerce(v, typ)
			if err != nil {
				return nil, &TypeError{Message: fmt.Sprintf("cannot convert value at row %d: %v", i, err)}
			}
			cells[i] = c
		}
	}

	format := guessFormat(name, typ)
	if o.formatSet {
		format = o.format
	}

	rows := make([][]any, len(cells))
	for i, v := range cells {
		rows[i] = []any{v}
	}
	keep := []Option{}
	if o.titleSet {
		keep = append(keep, WithTitle(o.title))
	}
	if o.meta != nil {
		keep = append(keep, WithMeta(o.meta))
	}
	if o.logger != nil {
		keep = append(keep, WithLogger(o.logger))
	}
	return New([]string{name}, []value.ColType{typ}, []string{format}, rows, keep...)
}

// resetInternals recomputes derived state after any mutation of the
// column registry or the row store. The cached content hash is dropped
// because it no longer matches the table content.
func (t *Table) resetInternals() {
	t.colIndex = make(map[string]int, len(t.colNames))
	for i, n := range t.colNames {
		t.colIndex[n] = i
	}
	delete(t.meta, metaUniqueID)
}

// ID returns the identity of this table used as context key during
// expression evaluation.
func (t *Table) ID() value.TableID { return t.id }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.colNames) }

func (t *Table) String() string {
	return fmt.Sprintf("Table(%d rows, %d cols)", len(t.rows), len(t.colNames))
}

// Col returns an expression handle for the named column, usable with
// the builders of pkg/expr. Unknown names surface as evaluation errors
// when the expression is used.
func (t *Table) Col(name string) *expr.ColumnRef {
	ref := &expr.ColumnRef{Table: t.id, Name: name}
	if i, ok := t.colIndex[name]; ok {
		ref.Type = t.colTypes[i]
	}
	return ref
}

// Values returns a copy of the named column's values.
func (t *Table) Values(name string) ([]any, error) {
	i, err := t.GetIndex(name)
	if err != nil {
		return nil, err
	}
	return t.columnValues(i), nil
}

// Eval evaluates an expression against this table's columns and returns
// the raw result values. Length-1 results are broadcastable scalars.
func (t *Table) Eval(e expr.Expr) ([]any, error) {
	ctx, err := t.exprContext(e)
	if err != nil {
		return nil, err
	}
	res, err := e.Eval(ctx)
	if err != nil {
		return nil, err
	}
	return res.Values, nil
}

// EmptyClone returns a table with the same column registry, title and
// meta but no rows.
func (t *Table) EmptyClone() *Table {
	clone := &Table{
		colNames:     slices.Clone(t.colNames),
		colTypes:     slices.Clone(t.colTypes),
		colFormats:   slices.Clone(t.colFormats),
		rows:         [][]any{},
		title:        t.title,
		meta:         maps.Clone(t.meta),
		id:           newTableID(),
		primaryIndex: map[string]bool{},
		logger:       t.logger,
	}
	delete(clone.meta, metaUniqueID)
	clone.resetInternals()
	return clone
}

// Copy returns an independent copy: mutating the copy never mutates the
// original. The primary index does not survive copying.
func (t *Table) Copy() *Table {
	clone := t.EmptyClone()
	clone.rows = copyRows(t.rows)
	return clone
}

// Slice returns a new table holding copies of the rows in [from, to).
func (t *Table) Slice(from, to int) (*Table, error) {
	if from < 0 || to > len(t.rows) || from > to {
		return nil, &ArgumentError{Message: fmt.Sprintf(
			"slice [%d:%d] out of range for table with %d rows", from, to, len(t.rows))}
	}
	clone := t.EmptyClone()
	clone.rows = copyRows(t.rows[from:to])
	return clone, nil
}

// columnValues materializes column i as a fresh slice.
func (t *Table) columnValues(i int) []any {
	out := make([]any, len(t.rows))
	for j, row := range t.rows {
		out[j] = row[i]
	}
	return out
}

// columnContext builds per-column evaluation data for the given column
// names.
func (t *Table) columnContext(names []string) (expr.ColumnContext, error) {
	cc := make(expr.ColumnContext, len(names))
	for _, n := range names {
		if _, done := cc[n]; done {
			continue
		}
		i, err := t.GetIndex(n)
		if err != nil {
			return nil, err
		}
		cc[n] = expr.ColumnData{
			Values: t.columnValues(i),
			Sorted: t.primaryIndex[n],
			Type:   t.colTypes[i],
		}
	}
	return cc, nil
}

// exprContext builds the evaluation context for an expression that may
// only reference this table's columns.
func (t *Table) exprContext(e expr.Expr) (expr.Context, error) {
	needed := e.NeededColumns()
	names := make([]string, 0, len(needed))
	for _, key := range needed {
		if key.Table != t.id {
			return nil, &ArgumentError{Message: fmt.Sprintf(
				"column %q belongs to a different table", key.Name)}
		}
		names = append(names, key.Name)
	}
	cc, err := t.columnContext(names)
	if err != nil {
		return nil, err
	}
	return expr.Context{t.id: cc}, nil
}

func copyRows(rows [][]any) [][]any {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out
}

// toAnySlice widens supported slice types into []any. The bool result
// is false for non-slice arguments.
func toAnySlice(src any) ([]any, bool) {
	switch s := src.(type) {
	case []any:
		return slices.Clone(s), true
	case []int:
		return widenSlice(s), true
	case []int64:
		return widenSlice(s), true
	case []float64:
		return widenSlice(s), true
	case []string:
		return widenSlice(s), true
	case []bool:
		return widenSlice(s), true
	case []*value.Blob:
		return widenSlice(s), true
	case []*Table:
		return widenSlice(s), true
	}
	return nil, false
}

func widenSlice[T any](s []T) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

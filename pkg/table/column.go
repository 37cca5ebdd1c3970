package table

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tabkit-labs/tabkit/pkg/expr"
	"github.com/tabkit-labs/tabkit/pkg/value"
)

// RowFunc computes one cell per existing row for AddColumn. It receives
// the table, the raw row and the name of the column being built.
type RowFunc func(t *Table, row []any, name string) (any, error)

// AddColumn adds a column computed from src, which is polymorphic over
// expressions, per-row callbacks, value slices and constants:
//
//   - an expr.Expr is evaluated once against the table's own columns,
//     scalar results are broadcast to the row count
//   - a RowFunc is invoked once per row
//   - a slice is used positionally and must match the row count
//   - anything else is replicated verbatim as a constant
//
// The type is inferred from the materialized values unless fixed with
// WithType; the format is guessed from the name and type unless given.
// Insertion position defaults to the end, see Before and After.
func (t *Table) AddColumn(name string, src any, opts ...Option) error {
	if err := t.checkNewColumnName(name); err != nil {
		return err
	}
	o := applyOptions(opts)
	values, typ, err := t.columnSource(name, src)
	if err != nil {
		return err
	}
	if !o.colTypeSet {
		o.colType = typ
		o.colTypeSet = true
	}
	return t.insertColumnValues(name, values, &o)
}

// AddConstantColumn adds a column holding the given value in every row,
// bypassing the polymorphic dispatch of AddColumn. Slices are stored
// verbatim as object cells.
func (t *Table) AddConstantColumn(name string, v any, opts ...Option) error {
	if err := t.checkNewColumnName(name); err != nil {
		return err
	}
	o := applyOptions(opts)
	values, typ := t.constantColumn(v)
	if !o.colTypeSet {
		o.colType = typ
		o.colTypeSet = true
	}
	return t.insertColumnValues(name, values, &o)
}

// AddEnumeration inserts an integer enumeration column 0..n-1 at the
// first position. The conventional name is "id".
func (t *Table) AddEnumeration(name string) error {
	if err := t.checkNewColumnName(name); err != nil {
		return err
	}
	values := make([]any, len(t.rows))
	for i := range values {
		values[i] = int64(i)
	}
	o := options{
		colType:    value.TypeInt,
		colTypeSet: true,
		format:     "%d",
		formatSet:  true,
		before:     0,
		beforeSet:  true,
	}
	return t.insertColumnValues(name, values, &o)
}

// ReplaceColumn replaces the named column's values, type and format in
// place, keeping its position. The source is computed before the old
// column is touched, so expressions may reference the column itself.
func (t *Table) ReplaceColumn(name string, src any, opts ...Option) error {
	idx, err := t.GetIndex(name)
	if err != nil {
		return err
	}
	o := applyOptions(opts)
	values, typ, err := t.columnSource(name, src)
	if err != nil {
		return err
	}
	if len(values) != len(t.rows) {
		return columnLengthError(len(values), len(t.rows))
	}
	if o.colTypeSet {
		typ = o.colType
	}
	format := o.format
	if !o.formatSet {
		format = guessFormat(name, typ)
	} else if _, err := compileFormat(format); err != nil {
		return err
	}
	if !typ.Valid() {
		return &TypeError{Message: fmt.Sprintf("invalid type for column %q", name)}
	}

	t.colTypes[idx] = typ
	t.colFormats[idx] = format
	for j, row := range t.rows {
		row[idx] = values[j]
	}
	t.resetInternals()
	return nil
}

// UpdateColumn replaces the column when it exists, otherwise adds it.
func (t *Table) UpdateColumn(name string, src any, opts ...Option) error {
	if t.HasColumn(name) {
		return t.ReplaceColumn(name, src, opts...)
	}
	return t.AddColumn(name, src, opts...)
}

// DropColumns removes the given columns in place. All names are
// validated before anything is removed. Dropping the last column
// empties the row store.
func (t *Table) DropColumns(names ...string) error {
	if err := t.EnsureColNames(names...); err != nil {
		return err
	}
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
		delete(t.primaryIndex, n)
	}

	var keep []int
	for i, n := range t.colNames {
		if !drop[n] {
			keep = append(keep, i)
		}
	}
	t.colNames = pickIndices(t.colNames, keep)
	t.colTypes = pickIndices(t.colTypes, keep)
	t.colFormats = pickIndices(t.colFormats, keep)
	if len(keep) == 0 {
		t.rows = [][]any{}
	} else {
		for j, row := range t.rows {
			t.rows[j] = pickIndices(row, keep)
		}
	}
	t.resetInternals()
	return nil
}

// ExtractColumns returns a new table holding copies of the given
// columns in the given order.
func (t *Table) ExtractColumns(names ...string) (*Table, error) {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return nil, &ArgumentError{Message: fmt.Sprintf("duplicate column name %q", n)}
		}
		seen[n] = true
	}
	if err := t.EnsureColNames(names...); err != nil {
		return nil, err
	}

	indices := make([]int, len(names))
	for i, n := range names {
		indices[i] = t.colIndex[n]
	}
	rows := make([][]any, len(t.rows))
	for j, row := range t.rows {
		rows[j] = pickIndices(row, indices)
	}
	return New(
		pickIndices(t.colNames, indices),
		pickIndices(t.colTypes, indices),
		pickIndices(t.colFormats, indices),
		rows,
		WithTitle(t.title), WithMeta(t.meta), WithLogger(t.logger),
	)
}

// ---------- Column sources ----------

// columnSource materializes src into one value per row plus the
// inferred column type.
func (t *Table) columnSource(name string, src any) ([]any, value.ColType, error) {
	switch fn := src.(type) {
	case expr.Expr:
		return t.evalColumnExpr(fn)
	case RowFunc:
		return t.callbackColumn(name, fn)
	case func(*Table, []any, string) (any, error):
		return t.callbackColumn(name, fn)
	}
	if cells, ok := toAnySlice(src); ok {
		for i, v := range cells {
			cells[i] = value.Normalize(v)
		}
		return cells, value.CommonType(cells), nil
	}
	values, typ := t.constantColumn(src)
	return values, typ, nil
}

func (t *Table) evalColumnExpr(e expr.Expr) ([]any, value.ColType, error) {
	ctx, err := t.exprContext(e)
	if err != nil {
		return nil, value.TypeNone, err
	}
	res, err := e.Eval(ctx)
	if err != nil {
		return nil, value.TypeNone, err
	}
	values := res.Values
	if len(values) == 1 && len(t.rows) != 1 {
		scalar := values[0]
		values = make([]any, len(t.rows))
		for i := range values {
			values[i] = scalar
		}
	}
	return values, res.Type, nil
}

func (t *Table) callbackColumn(name string, fn RowFunc) ([]any, value.ColType, error) {
	values := make([]any, len(t.rows))
	for i, row := range t.rows {
		v, err := fn(t, row, name)
		if err != nil {
			return nil, value.TypeNone, fmt.Errorf("column callback failed at row %d: %w", i, err)
		}
		values[i] = value.Normalize(v)
	}
	return values, value.CommonType(values), nil
}

func (t *Table) constantColumn(v any) ([]any, value.ColType) {
	v = value.Normalize(v)
	values := make([]any, len(t.rows))
	for i := range values {
		values[i] = v
	}
	return values, value.TypeOf(v)
}

// ---------- Insertion ----------

func (t *Table) checkNewColumnName(name string) error {
	if t.HasColumn(name) {
		return &NameCollisionError{Name: name}
	}
	if strings.Contains(name, postfixSep) {
		return &SchemaError{Message: fmt.Sprintf("double underscore in %q not allowed", name)}
	}
	return nil
}

func columnLengthError(got, rows int) error {
	return &ShapeError{
		Expected: rows,
		Got:      got,
		Message: fmt.Sprintf("length of new column %d does not fit number of rows %d",
			got, rows),
	}
}

// insertColumnValues splices a fully materialized column into the
// registry and the row store. The options carry the resolved type and
// the requested position.
func (t *Table) insertColumnValues(name string, values []any, o *options) error {
	if len(values) != len(t.rows) {
		return columnLengthError(len(values), len(t.rows))
	}
	typ := o.colType
	if !typ.Valid() {
		return &TypeError{Message: fmt.Sprintf("invalid type for column %q", name)}
	}
	format := o.format
	if !o.formatSet {
		format = guessFormat(name, typ)
	} else if _, err := compileFormat(format); err != nil {
		return err
	}
	pos, err := t.resolveInsertPos(o)
	if err != nil {
		return err
	}

	t.colNames = slices.Insert(t.colNames, pos, name)
	t.colTypes = slices.Insert(t.colTypes, pos, typ)
	t.colFormats = slices.Insert(t.colFormats, pos, format)
	for j, row := range t.rows {
		t.rows[j] = slices.Insert(row, pos, values[j])
	}
	t.resetInternals()
	return nil
}

// resolveInsertPos maps the Before/After options to a splice position.
func (t *Table) resolveInsertPos(o *options) (int, error) {
	if o.beforeSet && o.afterSet {
		return 0, &ArgumentError{Message: "cannot insert before and after at the same time"}
	}
	if !o.beforeSet && !o.afterSet {
		return len(t.colNames), nil
	}
	ref := o.before
	if o.afterSet {
		ref = o.after
	}
	pos, err := t.resolveColPos(ref)
	if err != nil {
		return 0, err
	}
	if o.afterSet {
		pos++
	}
	return pos, nil
}

// resolveColPos resolves a column name or integer position. Negative
// positions count from the end.
func (t *Table) resolveColPos(ref any) (int, error) {
	if name, ok := ref.(string); ok {
		return t.GetIndex(name)
	}
	n, ok := value.Normalize(ref).(int64)
	if !ok {
		return 0, &ArgumentError{Message: fmt.Sprintf(
			"insert position must be a column name or an integer, got %T", ref)}
	}
	pos := int(n)
	if pos < 0 {
		pos += len(t.colNames)
	}
	if pos < 0 || pos > len(t.colNames) {
		return 0, &ArgumentError{Message: fmt.Sprintf("insert position %d out of range", n)}
	}
	return pos, nil
}

func pickIndices[T any](s []T, indices []int) []T {
	out := make([]T, len(indices))
	for i, idx := range indices {
		out[i] = s[idx]
	}
	return out
}

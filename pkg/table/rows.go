package table

import (
	"fmt"
	"slices"

	"github.com/tabkit-labs/tabkit/pkg/value"
)

// AddRow appends a row and validates it in place. On any validation
// failure the appended row is rolled back, so the operation is atomic.
// Appending invalidates the sort index.
func (t *Table) AddRow(row []any) error {
	t.rows = append(t.rows, make([]any, len(t.colNames)))
	if err := t.SetRow(len(t.rows)-1, row); err != nil {
		t.rows = t.rows[:len(t.rows)-1]
		t.resetInternals()
		return err
	}
	t.primaryIndex = map[string]bool{}
	return nil
}

// SetRow replaces the row at idx. Cells are coerced to the declared
// column type for the primitive int, float and string types; missing
// values and other types are stored untouched.
func (t *Table) SetRow(idx int, row []any) error {
	if idx < 0 || idx >= len(t.rows) {
		return &ArgumentError{Message: fmt.Sprintf("row index %d out of range", idx)}
	}
	if len(row) != len(t.colNames) {
		return &ShapeError{
			Expected: len(t.colNames),
			Got:      len(row),
			Message: fmt.Sprintf("row of length %d does not fit table with %d columns",
				len(row), len(t.colNames)),
		}
	}
	converted := make([]any, len(row))
	for i, cell := range row {
		c, err := t.coerceCell(i, cell)
		if err != nil {
			return err
		}
		converted[i] = c
	}
	t.rows[idx] = converted
	t.resetInternals()
	return nil
}

// coerceCell converts a cell for column i following the SetRow rules.
func (t *Table) coerceCell(i int, cell any) (any, error) {
	cell = value.Normalize(cell)
	if cell == nil {
		return nil, nil
	}
	switch t.colTypes[i] {
	case value.TypeInt, value.TypeFloat, value.TypeString:
		c, err := value.Coerce(cell, t.colTypes[i])
		if err != nil {
			return nil, &TypeError{Message: fmt.Sprintf(
				"cannot store value in column %q: %v", t.colNames[i], err)}
		}
		return c, nil
	default:
		return cell, nil
	}
}

// SetValue sets a single cell, coercing it like SetRow does.
func (t *Table) SetValue(rowIdx int, name string, v any) error {
	i, err := t.GetIndex(name)
	if err != nil {
		return err
	}
	if rowIdx < 0 || rowIdx >= len(t.rows) {
		return &ArgumentError{Message: fmt.Sprintf("row index %d out of range", rowIdx)}
	}
	c, err := t.coerceCell(i, v)
	if err != nil {
		return err
	}
	t.rows[rowIdx][i] = c
	t.resetInternals()
	return nil
}

// Value returns the cell at (rowIdx, name).
func (t *Table) Value(rowIdx int, name string) (any, error) {
	i, err := t.GetIndex(name)
	if err != nil {
		return nil, err
	}
	if rowIdx < 0 || rowIdx >= len(t.rows) {
		return nil, &ArgumentError{Message: fmt.Sprintf("row index %d out of range", rowIdx)}
	}
	return t.rows[rowIdx][i], nil
}

// GetValue looks a cell up in a raw row by column name and returns
// deflt when the column is unknown or the row too short. This is the
// documented silent-default lookup; every other accessor fails loudly.
func (t *Table) GetValue(row []any, name string, deflt any) any {
	i, ok := t.colIndex[name]
	if !ok || i >= len(row) {
		return deflt
	}
	return row[i]
}

// Row returns a copy of the row at idx.
func (t *Table) Row(idx int) ([]any, error) {
	if idx < 0 || idx >= len(t.rows) {
		return nil, &ArgumentError{Message: fmt.Sprintf("row index %d out of range", idx)}
	}
	return slices.Clone(t.rows[idx]), nil
}

// RowMap returns the row at idx as a name-to-value mapping.
func (t *Table) RowMap(idx int) (map[string]any, error) {
	if idx < 0 || idx >= len(t.rows) {
		return nil, &ArgumentError{Message: fmt.Sprintf("row index %d out of range", idx)}
	}
	out := make(map[string]any, len(t.colNames))
	for i, n := range t.colNames {
		out[n] = t.rows[idx][i]
	}
	return out, nil
}

// Append appends copies of the rows of the given tables. Every table
// must have the same column name and type sequences as the receiver;
// formats may differ, the receiver's formats win. Validation happens
// before any mutation, so a mismatch appends nothing.
func (t *Table) Append(others ...*Table) error {
	for _, other := range others {
		if !slices.Equal(t.colNames, other.colNames) {
			return &SchemaError{Message: fmt.Sprintf(
				"the column names do not match: %v and %v", t.colNames, other.colNames)}
		}
		if !slices.Equal(t.colTypes, other.colTypes) {
			return &SchemaError{Message: fmt.Sprintf(
				"the column types do not match for columns %v", t.colNames)}
		}
	}
	for _, other := range others {
		t.rows = append(t.rows, copyRows(other.rows)...)
	}
	t.primaryIndex = map[string]bool{}
	t.resetInternals()
	return nil
}

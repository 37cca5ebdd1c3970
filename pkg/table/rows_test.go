package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabkit-labs/tabkit/pkg/value"
)

func TestAddRow(t *testing.T) {
	tab := newSampleTable(t)

	require.NoError(t, tab.AddRow([]any{4, 4.5, "w"}))
	assert.Equal(t, 4, tab.Len())

	v, err := tab.Value(3, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)

	err = tab.AddRow([]any{5})
	require.Error(t, err)
	var shapeErr *ShapeError
	assert.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, 4, tab.Len(), "failed add must not grow the table")
}

func TestSetRow(t *testing.T) {
	tests := []struct {
		name    string
		idx     int
		row     []any
		want    []any
		wantErr string
	}{
		{
			name: "plain replace",
			idx:  1,
			row:  []any{9, 9.5, "q"},
			want: []any{int64(9), 9.5, "q"},
		},
		{
			name: "cells are converted to the column types",
			idx:  0,
			row:  []any{1.0, 2, "7"},
			want: []any{int64(1), float64(2), "7"},
		},
		{
			name: "missing values pass through",
			idx:  2,
			row:  []any{nil, nil, nil},
			want: []any{nil, nil, nil},
		},
		{
			name:    "index out of range",
			idx:     7,
			row:     []any{1, 1.0, "x"},
			wantErr: "row index 7 out of range",
		},
		{
			name:    "wrong length",
			idx:     0,
			row:     []any{1},
			wantErr: "does not fit",
		},
		{
			name:    "unconvertible cell",
			idx:     0,
			row:     []any{"abc", 1.0, "x"},
			wantErr: `cannot store value in column "a"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tab := newSampleTable(t)
			err := tab.SetRow(tt.idx, tt.row)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			row, err := tab.Row(tt.idx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, row)
		})
	}
}

func TestSetValue(t *testing.T) {
	tab := newSampleTable(t)

	require.NoError(t, tab.SetValue(2, "b", 7))
	v, err := tab.Value(2, "b")
	require.NoError(t, err)
	assert.Equal(t, float64(7), v, "int input converts to the float column type")

	require.NoError(t, tab.SetValue(0, "c", nil))
	v, err = tab.Value(0, "c")
	require.NoError(t, err)
	assert.Nil(t, v)

	err = tab.SetValue(0, "nope", 1)
	require.Error(t, err)
	var unknownErr *UnknownColumnError
	assert.ErrorAs(t, err, &unknownErr)
}

func TestGetValue(t *testing.T) {
	tab := newSampleTable(t)
	row, err := tab.Row(0)
	require.NoError(t, err)

	assert.Equal(t, int64(1), tab.GetValue(row, "a", int64(-1)))
	assert.Equal(t, int64(-1), tab.GetValue(row, "missing_column", int64(-1)))
}

func TestRowMap(t *testing.T) {
	tab := newSampleTable(t)

	m, err := tab.RowMap(1)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int64(2), "b": 2.5, "c": "y"}, m)

	_, err = tab.RowMap(9)
	assert.Error(t, err)
}

func TestRowReturnsCopy(t *testing.T) {
	tab := newSampleTable(t)

	row, err := tab.Row(0)
	require.NoError(t, err)
	row[0] = int64(42)

	v, err := tab.Value(0, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestAppend(t *testing.T) {
	tab := newSampleTable(t)
	other := newSampleTable(t)

	require.NoError(t, tab.Append(other))
	assert.Equal(t, 6, tab.Len())
	assert.Equal(t, 3, other.Len())

	v, err := tab.Value(3, "c")
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}

func TestAppendCopiesRows(t *testing.T) {
	tab := newSampleTable(t)
	other := newSampleTable(t)

	require.NoError(t, tab.Append(other))
	require.NoError(t, other.SetValue(0, "a", 77))

	v, err := tab.Value(3, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v, "appended rows must not alias the source table")
}

func TestAppendSchemaMismatch(t *testing.T) {
	tab := newSampleTable(t)

	renamed := newSampleTable(t)
	require.NoError(t, renamed.RenameColumn("a", "z"))

	err := tab.Append(renamed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column names do not match")
	assert.Equal(t, 3, tab.Len(), "failed append must not change the table")

	retyped := newSampleTable(t)
	require.NoError(t, retyped.SetColType("a", value.TypeFloat))
	err = tab.Append(retyped)
	require.Error(t, err)
	assert.Equal(t, 3, tab.Len())
}

func TestAppendMultiple(t *testing.T) {
	tab := newSampleTable(t)
	require.NoError(t, tab.Append(newSampleTable(t), newSampleTable(t)))
	assert.Equal(t, 9, tab.Len())
}

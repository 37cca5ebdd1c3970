package table

import (
	"bytes"
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/tabkit-labs/tabkit/pkg/value"
)

// ToArrow converts the table to a columnar record batch. Missing cells
// become nulls. Columns holding nested tables or opaque objects cannot
// be represented and fail with a TypeError. A nil allocator falls back
// to the Go allocator.
func (t *Table) ToArrow(mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	fields := make([]arrow.Field, t.NumCols())
	for i, name := range t.colNames {
		dt, err := arrowType(t.colTypes[i])
		if err != nil {
			return nil, &TypeError{Message: fmt.Sprintf(
				"column %q cannot be exported: %v", name, err)}
		}
		fields[i] = arrow.Field{Name: name, Type: dt, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	for i, name := range t.colNames {
		fb := b.Field(i)
		for _, row := range t.rows {
			if err := appendArrowCell(fb, t.colTypes[i], row[i]); err != nil {
				return nil, &TypeError{Message: fmt.Sprintf(
					"column %q cannot be exported: %v", name, err)}
			}
		}
	}
	return b.NewRecord(), nil
}

func arrowType(typ value.ColType) (arrow.DataType, error) {
	switch typ {
	case value.TypeNone:
		return arrow.Null, nil
	case value.TypeInt:
		return arrow.PrimitiveTypes.Int64, nil
	case value.TypeFloat:
		return arrow.PrimitiveTypes.Float64, nil
	case value.TypeBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case value.TypeString:
		return arrow.BinaryTypes.String, nil
	case value.TypeBlob:
		return arrow.BinaryTypes.Binary, nil
	default:
		return nil, fmt.Errorf("no columnar representation for type %s", typ)
	}
}

func appendArrowCell(b array.Builder, typ value.ColType, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}
	switch typ {
	case value.TypeInt:
		n, ok := v.(int64)
		if !ok {
			return fmt.Errorf("cannot export %T value as int", v)
		}
		b.(*array.Int64Builder).Append(n)
	case value.TypeFloat:
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("cannot export %T value as float", v)
		}
		b.(*array.Float64Builder).Append(f)
	case value.TypeBool:
		n, ok := v.(bool)
		if !ok {
			return fmt.Errorf("cannot export %T value as bool", v)
		}
		b.(*array.BooleanBuilder).Append(n)
	case value.TypeString:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("cannot export %T value as string", v)
		}
		b.(*array.StringBuilder).Append(s)
	case value.TypeBlob:
		blob, ok := v.(*value.Blob)
		if !ok {
			return fmt.Errorf("cannot export %T value as blob", v)
		}
		b.(*array.BinaryBuilder).Append(blob.Data)
	default:
		return fmt.Errorf("no columnar representation for type %s", typ)
	}
	return nil
}

// FromArrow converts a columnar record batch to a table. Nulls become
// missing cells, float NaN counts as missing as well. Integer columns
// of any width map to the int column type, binary columns become blob
// cells. Types and formats can be pinned per column with WithColumnType
// and WithColumnFormat.
func FromArrow(rec arrow.Record, opts ...Option) (*Table, error) {
	o := applyOptions(opts)
	n := int(rec.NumRows())
	schema := rec.Schema()

	names := make([]string, rec.NumCols())
	types := make([]value.ColType, rec.NumCols())
	formats := make([]string, rec.NumCols())
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = make([]any, rec.NumCols())
	}

	for j := 0; j < int(rec.NumCols()); j++ {
		name := schema.Field(j).Name
		col := rec.Column(j)
		typ, err := readArrowColumn(col, name, rows, j)
		if err != nil {
			return nil, err
		}
		if pinned, ok := o.colTypes[name]; ok {
			for i := range rows {
				converted, err := value.Coerce(rows[i][j], pinned)
				if err != nil {
					return nil, &TypeError{Message: fmt.Sprintf(
						"cannot convert value in column %q to %s: %v", name, pinned, err)}
				}
				rows[i][j] = converted
			}
			typ = pinned
		}
		names[j] = name
		types[j] = typ
		if format, ok := o.colFormats[name]; ok {
			formats[j] = format
		} else {
			formats[j] = guessFormat(name, typ)
		}
	}
	return New(names, types, formats, rows, opts...)
}

// readArrowColumn fills column j of rows from col and reports the
// resulting column type.
func readArrowColumn(col arrow.Array, name string, rows [][]any, j int) (value.ColType, error) {
	cell := func(i int, v any) {
		if col.IsNull(i) {
			rows[i][j] = nil
			return
		}
		rows[i][j] = v
	}
	switch col.DataType().ID() {
	case arrow.NULL:
		return value.TypeNone, nil
	case arrow.INT8:
		a := col.(*array.Int8)
		for i := range rows {
			cell(i, int64(a.Value(i)))
		}
		return value.TypeInt, nil
	case arrow.INT16:
		a := col.(*array.Int16)
		for i := range rows {
			cell(i, int64(a.Value(i)))
		}
		return value.TypeInt, nil
	case arrow.INT32:
		a := col.(*array.Int32)
		for i := range rows {
			cell(i, int64(a.Value(i)))
		}
		return value.TypeInt, nil
	case arrow.INT64:
		a := col.(*array.Int64)
		for i := range rows {
			cell(i, a.Value(i))
		}
		return value.TypeInt, nil
	case arrow.UINT8:
		a := col.(*array.Uint8)
		for i := range rows {
			cell(i, int64(a.Value(i)))
		}
		return value.TypeInt, nil
	case arrow.UINT16:
		a := col.(*array.Uint16)
		for i := range rows {
			cell(i, int64(a.Value(i)))
		}
		return value.TypeInt, nil
	case arrow.UINT32:
		a := col.(*array.Uint32)
		for i := range rows {
			cell(i, int64(a.Value(i)))
		}
		return value.TypeInt, nil
	case arrow.UINT64:
		a := col.(*array.Uint64)
		for i := range rows {
			if col.IsNull(i) {
				rows[i][j] = nil
				continue
			}
			v := a.Value(i)
			if v > math.MaxInt64 {
				return 0, &TypeError{Message: fmt.Sprintf(
					"value %d in column %q exceeds the int range", v, name)}
			}
			cell(i, int64(v))
		}
		return value.TypeInt, nil
	case arrow.FLOAT32:
		a := col.(*array.Float32)
		for i := range rows {
			f := float64(a.Value(i))
			if math.IsNaN(f) {
				rows[i][j] = nil
				continue
			}
			cell(i, f)
		}
		return value.TypeFloat, nil
	case arrow.FLOAT64:
		a := col.(*array.Float64)
		for i := range rows {
			f := a.Value(i)
			if math.IsNaN(f) {
				rows[i][j] = nil
				continue
			}
			cell(i, f)
		}
		return value.TypeFloat, nil
	case arrow.BOOL:
		a := col.(*array.Boolean)
		for i := range rows {
			cell(i, a.Value(i))
		}
		return value.TypeBool, nil
	case arrow.STRING:
		a := col.(*array.String)
		for i := range rows {
			cell(i, a.Value(i))
		}
		return value.TypeString, nil
	case arrow.LARGE_STRING:
		a := col.(*array.LargeString)
		for i := range rows {
			cell(i, a.Value(i))
		}
		return value.TypeString, nil
	case arrow.BINARY:
		a := col.(*array.Binary)
		for i := range rows {
			cell(i, value.NewBlob(bytes.Clone(a.Value(i))))
		}
		return value.TypeBlob, nil
	case arrow.LARGE_BINARY:
		a := col.(*array.LargeBinary)
		for i := range rows {
			cell(i, value.NewBlob(bytes.Clone(a.Value(i))))
		}
		return value.TypeBlob, nil
	default:
		return 0, &TypeError{Message: fmt.Sprintf(
			"column %q has unsupported columnar type %s", name, col.DataType())}
	}
}

package table

import (
	"fmt"

	"github.com/tabkit-labs/tabkit/pkg/value"
)

// MergeTables concatenates tables with differing schemas into one
// fresh table; the inputs are never mutated. The unified column layout
// comes from the WithReference table when given, otherwise it is
// inferred as the first-seen union of all input columns, widening int
// against float. Inference fails on conflicting column types unless
// WithForceMerge resolves the conflict in favor of the first table
// defining the column. Each input is extended with missing-value
// columns for schema columns it lacks, reordered to the unified layout
// and coerced to the unified types before its rows are appended.
func MergeTables(tables []*Table, opts ...Option) (*Table, error) {
	o := applyOptions(opts)
	if len(tables) == 0 {
		return nil, &ArgumentError{Message: "no tables to merge"}
	}

	names, types, formats, err := mergedSchema(tables, &o)
	if err != nil {
		return nil, err
	}

	extended := make([]*Table, len(tables))
	for i, t := range tables {
		e, err := extendToSchema(t, names, types, formats)
		if err != nil {
			return nil, err
		}
		extended[i] = e
	}

	out := extended[0]
	if err := out.Append(extended[1:]...); err != nil {
		return nil, err
	}
	return out, nil
}

// mergedSchema computes the unified column layout for a merge.
func mergedSchema(tables []*Table, o *options) ([]string, []value.ColType, []string, error) {
	if o.reference != nil {
		return o.reference.ColNames(), o.reference.ColTypes(), o.reference.ColFormats(), nil
	}

	var names []string
	types := map[string]value.ColType{}
	formats := map[string]string{}
	for _, t := range tables {
		for i, n := range t.colNames {
			existing, ok := types[n]
			if !ok {
				names = append(names, n)
				types[n] = t.colTypes[i]
				formats[n] = t.colFormats[i]
				continue
			}
			unified, ok := unifyTypes(existing, t.colTypes[i])
			if !ok {
				if !o.forceMerge {
					return nil, nil, nil, &SchemaError{Message: fmt.Sprintf(
						"column %q has conflicting types %s and %s, use the force merge option to keep the first",
						n, existing, t.colTypes[i])}
				}
				unified = existing
			}
			types[n] = unified
		}
	}

	orderedTypes := make([]value.ColType, len(names))
	orderedFormats := make([]string, len(names))
	for i, n := range names {
		orderedTypes[i] = types[n]
		orderedFormats[i] = formats[n]
	}
	return names, orderedTypes, orderedFormats, nil
}

// unifyTypes merges two column types: equal types stay, int widens
// against float and a none column carrying only missing values adopts
// the other side's type.
func unifyTypes(a, b value.ColType) (value.ColType, bool) {
	switch {
	case a == b:
		return a, true
	case a == value.TypeNone:
		return b, true
	case b == value.TypeNone:
		return a, true
	case a == value.TypeInt && b == value.TypeFloat,
		a == value.TypeFloat && b == value.TypeInt:
		return value.TypeFloat, true
	}
	return a, false
}

// extendToSchema returns a copy of t with every schema column present,
// ordered and typed as the schema demands. Cells that cannot be coerced
// to the unified type are kept as they are; that only happens under a
// forced merge.
func extendToSchema(t *Table, names []string, types []value.ColType, formats []string) (*Table, error) {
	e := t.Copy()
	for j, n := range names {
		if e.HasColumn(n) {
			continue
		}
		co := options{
			colType:    types[j],
			colTypeSet: true,
			format:     formats[j],
			formatSet:  true,
		}
		if err := e.insertColumnValues(n, make([]any, len(e.rows)), &co); err != nil {
			return nil, err
		}
	}
	ordered, err := e.ExtractColumns(names...)
	if err != nil {
		return nil, err
	}
	for j, n := range names {
		i := ordered.colIndex[n]
		if ordered.colTypes[i] == types[j] {
			continue
		}
		for _, row := range ordered.rows {
			if row[i] == nil {
				continue
			}
			if c, err := value.Coerce(row[i], types[j]); err == nil {
				row[i] = c
			}
		}
		ordered.colTypes[i] = types[j]
	}
	ordered.resetInternals()
	return ordered, nil
}

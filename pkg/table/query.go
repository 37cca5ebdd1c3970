package table

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/tabkit-labs/tabkit/pkg/expr"
	"github.com/tabkit-labs/tabkit/pkg/value"
)

// ---------- Filter ----------

// Filter evaluates flag against this table and returns a new table
// holding copies of the rows where the result is true. A non-expression
// flag is treated as a constant. A scalar result selects either all
// rows or none; a vector result must match the row count exactly.
func (t *Table) Filter(flag any) (*Table, error) {
	e := expr.AsExpr(flag)
	ctx, err := t.exprContext(e)
	if err != nil {
		return nil, err
	}
	res, err := e.Eval(ctx)
	if err != nil {
		return nil, err
	}

	out := t.EmptyClone()
	out.primaryIndex = maps.Clone(t.primaryIndex)

	flags := res.Values
	if len(flags) == 1 {
		if value.Truth(flags[0]) {
			out.rows = copyRows(t.rows)
		}
		return out, nil
	}
	if len(flags) != len(t.rows) {
		return nil, &ShapeError{
			Expected: len(t.rows),
			Got:      len(flags),
			Message:  "result of filter expression does not match table size",
		}
	}
	for i, f := range flags {
		if value.Truth(f) {
			out.rows = append(out.rows, slices.Clone(t.rows[i]))
		}
	}
	return out, nil
}

// ---------- Join ----------

// Join joins two tables by evaluating on against every row pairing:
// for each left row the left columns are bound to that single row's
// values while the right table contributes full columns, so a vector
// result is the match mask over the right table's rows for that left
// row and a scalar result accepts or rejects all of them. Without an
// expression the result is the full cross product.
//
// The joined table concatenates both column registries; the right
// table's postfix tags are renumbered past the left table's so names
// stay unambiguous. Its meta maps each source table's identity to that
// source's meta.
//
// other is duck-checked for the column-context capability, so decorated
// tables can take part; anything else is an ArgumentError.
func (t *Table) Join(other any, on ...any) (*Table, error) {
	return t.join(other, on, false)
}

// LeftJoin works like Join but emits every left row at least once: a
// left row without matches is padded with missing right-hand fields.
func (t *Table) LeftJoin(other any, on ...any) (*Table, error) {
	return t.join(other, on, true)
}

func (t *Table) join(other any, on []any, keepLeft bool) (*Table, error) {
	right, ok := other.(*Table)
	if !ok {
		return nil, &ArgumentError{Message: fmt.Sprintf(
			"join partner of type %T does not provide a column context", other)}
	}
	if len(on) > 1 {
		return nil, &ArgumentError{Message: "join takes at most one expression"}
	}
	e := expr.AsExpr(true)
	if len(on) == 1 {
		e = expr.AsExpr(on[0])
	}

	result, err := t.buildJoinTable(right)
	if err != nil {
		return nil, err
	}
	t.logger.Debug("joining tables",
		"left_rows", len(t.rows), "right_rows", len(right.rows), "keep_left", keepLeft)

	rightNames, err := splitNeededColumns(e, t.id, right.id)
	if err != nil {
		return nil, err
	}
	rightCtx, err := right.columnContext(rightNames)
	if err != nil {
		return nil, err
	}

	filler := make([]any, len(right.colNames))
	var rows [][]any
	for _, leftRow := range t.rows {
		ctx := expr.Context{}
		ctx[t.id] = t.singleRowContext(leftRow)
		ctx[right.id] = rightCtx
		res, err := e.Eval(ctx)
		if err != nil {
			return nil, err
		}

		flags := res.Values
		if len(flags) == 1 {
			if value.Truth(flags[0]) {
				for _, rightRow := range right.rows {
					rows = append(rows, joinRow(leftRow, rightRow))
				}
			} else if keepLeft {
				rows = append(rows, joinRow(leftRow, filler))
			}
			continue
		}
		if len(flags) != len(right.rows) {
			return nil, &ShapeError{
				Expected: len(right.rows),
				Got:      len(flags),
				Message:  "result of join expression does not match the right table size",
			}
		}
		matched := false
		for i, f := range flags {
			if value.Truth(f) {
				matched = true
				rows = append(rows, joinRow(leftRow, right.rows[i]))
			}
		}
		if !matched && keepLeft {
			rows = append(rows, joinRow(leftRow, filler))
		}
	}
	result.rows = rows
	t.logger.Debug("join finished", "rows", len(rows))
	return result, nil
}

// buildJoinTable builds the empty result table of a join: concatenated
// registries with the right table's postfixes renumbered, provenance
// meta and a combined title.
func (t *Table) buildJoinTable(right *Table) (*Table, error) {
	leftMax, err := t.MaxPostfix()
	if err != nil {
		return nil, err
	}
	rightMin, err := right.MinPostfix()
	if err != nil {
		return nil, err
	}
	renumbered, err := right.renumberedNames(leftMax - rightMin + 1)
	if err != nil {
		return nil, err
	}

	names := append(t.ColNames(), renumbered...)
	types := append(t.ColTypes(), right.ColTypes()...)
	formats := append(t.ColFormats(), right.ColFormats()...)
	meta := map[string]any{
		string(t.id):     t.Meta(),
		string(right.id): right.Meta(),
	}
	title := fmt.Sprintf("%s vs %s", t.title, right.title)
	return New(names, types, formats, nil, WithTitle(title), WithMeta(meta), WithLogger(t.logger))
}

// singleRowContext binds every column to the one value it has in row.
func (t *Table) singleRowContext(row []any) expr.ColumnContext {
	cc := make(expr.ColumnContext, len(t.colNames))
	for i, n := range t.colNames {
		cc[n] = expr.ColumnData{Values: row[i : i+1 : i+1], Type: t.colTypes[i]}
	}
	return cc
}

// splitNeededColumns partitions an expression's column references
// between the two join sides and returns the right-hand names. A
// reference to any other table fails.
func splitNeededColumns(e expr.Expr, left, right value.TableID) ([]string, error) {
	var rightNames []string
	for _, key := range e.NeededColumns() {
		switch key.Table {
		case left:
		case right:
			rightNames = append(rightNames, key.Name)
		default:
			return nil, &ArgumentError{Message: fmt.Sprintf(
				"column %q belongs to a table that is not part of the join", key.Name)}
		}
	}
	return rightNames, nil
}

func joinRow(left, right []any) []any {
	row := make([]any, 0, len(left)+len(right))
	row = append(row, left...)
	return append(row, right...)
}

// ---------- Sorting ----------

// SortBy sorts the rows in place by the given columns, missing values
// first. The sort is stable in both directions. Ascending sorts record
// the first column as the table's primary index; descending sorts clear
// it. The returned permutation maps new row positions to old ones so
// parallel structures can be reordered the same way.
func (t *Table) SortBy(names []string, ascending bool) ([]int, error) {
	if len(names) == 0 {
		return nil, &ArgumentError{Message: "sortBy needs at least one column name"}
	}
	if err := t.EnsureColNames(names...); err != nil {
		return nil, err
	}
	indices := make([]int, len(names))
	for i, n := range names {
		indices[i] = t.colIndex[n]
	}

	perm := make([]int, len(t.rows))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		ra, rb := t.rows[perm[a]], t.rows[perm[b]]
		for _, ci := range indices {
			c := value.Compare(ra[ci], rb[ci])
			if c == 0 {
				continue
			}
			if ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})

	sorted := make([][]any, len(t.rows))
	for i, from := range perm {
		sorted[i] = t.rows[from]
	}
	t.rows = sorted

	t.primaryIndex = map[string]bool{}
	if ascending {
		t.primaryIndex[names[0]] = true
	}
	t.resetInternals()
	return perm, nil
}

// ---------- Grouping ----------

// SplitBy partitions the rows into one table per distinct combination
// of the given column values, preserving first-seen group order and the
// row order within each group. Grouping compares by content, not by
// object identity.
func (t *Table) SplitBy(names ...string) ([]*Table, error) {
	if err := t.EnsureColNames(names...); err != nil {
		return nil, err
	}
	indices := make([]int, len(names))
	for i, n := range names {
		indices[i] = t.colIndex[n]
	}

	groups := map[string]*Table{}
	var order []*Table
	keyParts := make([]any, len(indices))
	for _, row := range t.rows {
		for i, ci := range indices {
			keyParts[i] = row[ci]
		}
		key := value.Key(keyParts...)
		sub, ok := groups[key]
		if !ok {
			sub = t.EmptyClone()
			groups[key] = sub
			order = append(order, sub)
		}
		sub.rows = append(sub.rows, slices.Clone(row))
	}
	return order, nil
}

// UniqueRows returns a new table without duplicate rows, comparing full
// rows by content including hidden columns. The first occurrence wins.
func (t *Table) UniqueRows() *Table {
	out := t.EmptyClone()
	seen := map[string]bool{}
	for _, row := range t.rows {
		key := value.Key(row...)
		if seen[key] {
			continue
		}
		seen[key] = true
		out.rows = append(out.rows, slices.Clone(row))
	}
	return out
}

// Collapse groups the rows by the given columns and returns a table
// with one row per group: the key values plus a nested table holding
// the group's rows. Each nested table is titled with its key values.
func (t *Table) Collapse(names ...string) (*Table, error) {
	subs, err := t.SplitBy(names...)
	if err != nil {
		return nil, err
	}

	masterNames := append(slices.Clone(names), "collapsed")
	masterTypes := make([]value.ColType, 0, len(names)+1)
	masterFormats := make([]string, 0, len(names)+1)
	for _, n := range names {
		i := t.colIndex[n]
		masterTypes = append(masterTypes, t.colTypes[i])
		masterFormats = append(masterFormats, t.colFormats[i])
	}
	masterTypes = append(masterTypes, value.TypeTable)
	masterFormats = append(masterFormats, "%s")

	rows := make([][]any, 0, len(subs))
	for _, sub := range subs {
		row := make([]any, 0, len(names)+1)
		titleParts := make([]string, len(names))
		for i, n := range names {
			v := sub.rows[0][sub.colIndex[n]]
			row = append(row, v)
			titleParts[i] = fmt.Sprintf("%s=%v", n, v)
		}
		sub.title = strings.Join(titleParts, ", ")
		row = append(row, sub)
		rows = append(rows, row)
	}
	return New(masterNames, masterTypes, masterFormats, rows, WithMeta(t.meta), WithLogger(t.logger))
}

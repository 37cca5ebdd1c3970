// Package expr implements lazy column expressions for tables.
//
// Expressions are built with constructor functions (Col via the table
// package, Lit, Add, Eq, And, ...) and evaluated against a Context mapping
// table ids to column data. Evaluation is elementwise with broadcasting:
// a length-1 result combines with a vector of any length, two vectors must
// have equal length. Missing values (nil) propagate through arithmetic,
// make comparisons false and count as false in logical operators.
package expr

import "github.com/tabkit-labs/tabkit/pkg/value"

// ColumnKey identifies a column by table id and name.
type ColumnKey struct {
	Table value.TableID
	Name  string
}

// ColumnData holds one column of a context: the cell values, whether the
// owning table is sorted ascending by this column, and the declared type.
type ColumnData struct {
	Values []any
	Sorted bool
	Type   value.ColType
}

// ColumnContext maps column names of one table to their data.
type ColumnContext map[string]ColumnData

// Context carries the column data of all tables an expression refers to.
type Context map[value.TableID]ColumnContext

// Result is the outcome of an evaluation. A length-1 value vector is a
// scalar and broadcasts against vectors of any length. The Sorted flag
// marks results backed by a table's sort order; it is carried through
// column references for future lookup optimizations but never changes
// results.
type Result struct {
	Values []any
	Sorted bool
	Type   value.ColType
}

// Expr is a lazily evaluated column expression.
type Expr interface {
	// Eval computes the expression against the given context.
	Eval(ctx Context) (Result, error)
	// NeededColumns lists all column references in the expression tree.
	NeededColumns() []ColumnKey
	String() string

	exprNode()
}

// align returns the common element count of two operand vectors.
// Length one broadcasts, otherwise the lengths must match.
func align(left, right []any) (int, error) {
	ll, lr := len(left), len(right)
	switch {
	case ll == lr:
		return ll, nil
	case ll == 1:
		return lr, nil
	case lr == 1:
		return ll, nil
	default:
		return 0, &AlignmentError{Left: ll, Right: lr}
	}
}

// pick indexes a possibly broadcast operand vector.
func pick(values []any, i int) any {
	if len(values) == 1 {
		return values[0]
	}
	return values[i]
}

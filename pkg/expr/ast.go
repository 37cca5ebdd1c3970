package expr

import (
	"fmt"
	"strings"

	"github.com/tabkit-labs/tabkit/pkg/value"
)

// Op identifies a unary or binary operator.
type Op int

// Operators.
const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpNot
	OpNeg
	OpIsMissing
	OpIsNotMissing
)

// opNames maps operators to their string representations.
var opNames = map[Op]string{
	OpAdd:          "+",
	OpSub:          "-",
	OpMul:          "*",
	OpDiv:          "/",
	OpEq:           "==",
	OpNe:           "!=",
	OpLt:           "<",
	OpLe:           "<=",
	OpGt:           ">",
	OpGe:           ">=",
	OpAnd:          "and",
	OpOr:           "or",
	OpNot:          "not",
	OpNeg:          "-",
	OpIsMissing:    "isMissing",
	OpIsNotMissing: "isNotMissing",
}

// String returns a human-readable representation of the operator.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", o)
}

// AggOp identifies an aggregation.
type AggOp int

// Aggregations. Count counts all values including missing ones,
// CountNotMissing skips them. Sum, Min, Max and Mean skip missing values
// and yield missing when no value remains.
const (
	AggCount AggOp = iota
	AggCountNotMissing
	AggSum
	AggMin
	AggMax
	AggMean
)

// aggNames maps aggregations to their string representations.
var aggNames = map[AggOp]string{
	AggCount:           "count",
	AggCountNotMissing: "countNotMissing",
	AggSum:             "sum",
	AggMin:             "min",
	AggMax:             "max",
	AggMean:            "mean",
}

// String returns a human-readable representation of the aggregation.
func (o AggOp) String() string {
	if name, ok := aggNames[o]; ok {
		return name
	}
	return fmt.Sprintf("agg(%d)", o)
}

// ---------- Expression Types ----------

// Literal represents a constant value, broadcast against any row count.
type Literal struct {
	Value any
}

func (*Literal) exprNode() {}

// NeededColumns implements Expr.
func (l *Literal) NeededColumns() []ColumnKey { return nil }

func (l *Literal) String() string {
	if l.Value == nil {
		return "None"
	}
	if s, ok := l.Value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", l.Value)
}

// ColumnRef represents a reference to a column of a specific table.
// The Type field mirrors the declared column type at construction time;
// evaluation uses the type recorded in the context.
type ColumnRef struct {
	Table value.TableID
	Name  string
	Type  value.ColType
}

func (*ColumnRef) exprNode() {}

// NeededColumns implements Expr.
func (c *ColumnRef) NeededColumns() []ColumnKey {
	return []ColumnKey{{Table: c.Table, Name: c.Name}}
}

func (c *ColumnRef) String() string { return c.Name }

// BinaryExpr represents an elementwise binary operation.
type BinaryExpr struct {
	Op    Op
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// NeededColumns implements Expr.
func (b *BinaryExpr) NeededColumns() []ColumnKey {
	return append(b.Left.NeededColumns(), b.Right.NeededColumns()...)
}

func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// UnaryExpr represents an elementwise unary operation.
type UnaryExpr struct {
	Op   Op
	Expr Expr
}

func (*UnaryExpr) exprNode() {}

// NeededColumns implements Expr.
func (u *UnaryExpr) NeededColumns() []ColumnKey {
	return u.Expr.NeededColumns()
}

func (u *UnaryExpr) String() string {
	switch u.Op {
	case OpIsMissing, OpIsNotMissing:
		return fmt.Sprintf("%s(%s)", u.Op, u.Expr)
	default:
		return fmt.Sprintf("(%s %s)", u.Op, u.Expr)
	}
}

// AggregateExpr represents an aggregation over a column expression.
// Without group keys the result is a broadcastable scalar. With group
// keys the result stays row-aligned: every row receives the aggregate of
// the group it belongs to.
type AggregateExpr struct {
	Op   AggOp
	Arg  Expr
	Keys []Expr
}

func (*AggregateExpr) exprNode() {}

// NeededColumns implements Expr.
func (a *AggregateExpr) NeededColumns() []ColumnKey {
	needed := a.Arg.NeededColumns()
	for _, k := range a.Keys {
		needed = append(needed, k.NeededColumns()...)
	}
	return needed
}

func (a *AggregateExpr) String() string {
	if len(a.Keys) == 0 {
		return fmt.Sprintf("%s(%s)", a.Op, a.Arg)
	}
	keys := make([]string, len(a.Keys))
	for i, k := range a.Keys {
		keys[i] = k.String()
	}
	return fmt.Sprintf("%s(%s) per (%s)", a.Op, a.Arg, strings.Join(keys, ", "))
}

// GroupBy returns a copy of the aggregate grouped by the given key
// expressions. Plain values are wrapped as literals.
func (a *AggregateExpr) GroupBy(keys ...any) *AggregateExpr {
	grouped := &AggregateExpr{Op: a.Op, Arg: a.Arg}
	for _, k := range keys {
		grouped.Keys = append(grouped.Keys, AsExpr(k))
	}
	return grouped
}

// ApplyExpr maps a callback over the values of a column expression.
// By default the callback never sees missing values, they map to missing
// directly; KeepMissing changes that.
type ApplyExpr struct {
	Fn          func(any) (any, error)
	Arg         Expr
	WithMissing bool
}

func (*ApplyExpr) exprNode() {}

// NeededColumns implements Expr.
func (a *ApplyExpr) NeededColumns() []ColumnKey {
	return a.Arg.NeededColumns()
}

func (a *ApplyExpr) String() string {
	return fmt.Sprintf("apply(%s)", a.Arg)
}

// KeepMissing returns a copy of the expression whose callback is invoked
// for missing values as well.
func (a *ApplyExpr) KeepMissing() *ApplyExpr {
	return &ApplyExpr{Fn: a.Fn, Arg: a.Arg, WithMissing: true}
}

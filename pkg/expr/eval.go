package expr

import (
	"fmt"

	"github.com/tabkit-labs/tabkit/pkg/value"
)

// ---------- Leaf nodes ----------

func (l *Literal) Eval(_ Context) (Result, error) {
	return Result{
		Values: []any{value.Normalize(l.Value)},
		Sorted: true,
		Type:   value.TypeOf(l.Value),
	}, nil
}

func (c *ColumnRef) Eval(ctx Context) (Result, error) {
	cols, ok := ctx[c.Table]
	if !ok {
		return Result{}, &UnknownColumnError{Table: c.Table, Name: c.Name}
	}
	data, ok := cols[c.Name]
	if !ok {
		return Result{}, &UnknownColumnError{Table: c.Table, Name: c.Name}
	}
	return Result{Values: data.Values, Sorted: data.Sorted, Type: data.Type}, nil
}

// ---------- Binary operators ----------

func (b *BinaryExpr) Eval(ctx Context) (Result, error) {
	left, err := b.Left.Eval(ctx)
	if err != nil {
		return Result{}, err
	}
	right, err := b.Right.Eval(ctx)
	if err != nil {
		return Result{}, err
	}
	n, err := align(left.Values, right.Values)
	if err != nil {
		return Result{}, err
	}

	out := make([]any, n)
	for i := 0; i < n; i++ {
		lv := pick(left.Values, i)
		rv := pick(right.Values, i)
		v, err := applyBinary(b.Op, lv, rv)
		if err != nil {
			return Result{}, &EvalError{Expr: b.String(), Message: err.Error()}
		}
		out[i] = v
	}

	typ := value.TypeBool
	if b.Op.isArithmetic() {
		typ = value.CommonType(out)
	}
	return Result{Values: out, Type: typ}, nil
}

func (op Op) isArithmetic() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv:
		return true
	}
	return false
}

func applyBinary(op Op, lv, rv any) (any, error) {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv:
		return applyArithmetic(op, lv, rv)
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return applyComparison(op, lv, rv), nil
	case OpAnd:
		return value.Truth(lv) && value.Truth(rv), nil
	case OpOr:
		return value.Truth(lv) || value.Truth(rv), nil
	}
	return nil, fmt.Errorf("operator %s is not binary", op)
}

// applyArithmetic propagates missing values: any nil operand yields nil.
// Integer pairs stay integers except for division, which is always float.
func applyArithmetic(op Op, lv, rv any) (any, error) {
	if lv == nil || rv == nil {
		return nil, nil
	}
	if ls, ok := lv.(string); ok {
		rs, ok := rv.(string)
		if ok && op == OpAdd {
			return ls + rs, nil
		}
		return nil, fmt.Errorf("unsupported operand types %T and %T for %s", lv, rv, op)
	}
	lf, lInt, ok := asNumber(lv)
	if !ok {
		return nil, fmt.Errorf("unsupported operand type %T for %s", lv, op)
	}
	rf, rInt, ok := asNumber(rv)
	if !ok {
		return nil, fmt.Errorf("unsupported operand type %T for %s", rv, op)
	}

	if op == OpDiv {
		return lf / rf, nil
	}
	if lInt && rInt {
		li, ri := int64(lf), int64(rf)
		switch op {
		case OpAdd:
			return li + ri, nil
		case OpSub:
			return li - ri, nil
		case OpMul:
			return li * ri, nil
		}
	}
	switch op {
	case OpAdd:
		return lf + rf, nil
	case OpSub:
		return lf - rf, nil
	case OpMul:
		return lf * rf, nil
	}
	return nil, fmt.Errorf("operator %s is not arithmetic", op)
}

// asNumber reports whether v is numeric, and if so its float value and
// whether it started out as an integer. Booleans are not numbers here.
func asNumber(v any) (f float64, isInt bool, ok bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true, true
	case float64:
		return n, false, true
	}
	return 0, false, false
}

// applyComparison treats missing values as incomparable: every comparison
// against nil is false, including equality against another nil.
func applyComparison(op Op, lv, rv any) bool {
	if lv == nil || rv == nil {
		return false
	}
	switch op {
	case OpEq:
		return value.Equal(lv, rv)
	case OpNe:
		return !value.Equal(lv, rv)
	}
	c := value.Compare(lv, rv)
	switch op {
	case OpLt:
		return c < 0
	case OpLe:
		return c <= 0
	case OpGt:
		return c > 0
	case OpGe:
		return c >= 0
	}
	return false
}

// ---------- Unary operators ----------

func (u *UnaryExpr) Eval(ctx Context) (Result, error) {
	in, err := u.Expr.Eval(ctx)
	if err != nil {
		return Result{}, err
	}
	out := make([]any, len(in.Values))
	for i, v := range in.Values {
		switch u.Op {
		case OpNot:
			out[i] = !value.Truth(v)
		case OpIsMissing:
			out[i] = v == nil
		case OpIsNotMissing:
			out[i] = v != nil
		case OpNeg:
			switch n := v.(type) {
			case nil:
				out[i] = nil
			case int64:
				out[i] = -n
			case float64:
				out[i] = -n
			default:
				return Result{}, &EvalError{
					Expr:    u.String(),
					Message: fmt.Sprintf("unsupported operand type %T for %s", v, u.Op),
				}
			}
		default:
			return Result{}, &EvalError{
				Expr:    u.String(),
				Message: fmt.Sprintf("operator %s is not unary", u.Op),
			}
		}
	}
	typ := value.TypeBool
	if u.Op == OpNeg {
		typ = value.CommonType(out)
	}
	return Result{Values: out, Type: typ}, nil
}

// ---------- Aggregates ----------

func (a *AggregateExpr) Eval(ctx Context) (Result, error) {
	arg, err := a.Arg.Eval(ctx)
	if err != nil {
		return Result{}, err
	}
	if len(a.Keys) == 0 {
		v, err := fold(a.Op, arg.Values)
		if err != nil {
			return Result{}, &EvalError{Expr: a.String(), Message: err.Error()}
		}
		return Result{Values: []any{v}, Sorted: true, Type: a.resultType([]any{v})}, nil
	}
	return a.evalGrouped(ctx, arg)
}

// evalGrouped computes the aggregate once per distinct key tuple and writes
// the group's value back to every row of the group, so the result has the
// same length as the input.
func (a *AggregateExpr) evalGrouped(ctx Context, arg Result) (Result, error) {
	vecs := make([][]any, 0, len(a.Keys)+1)
	vecs = append(vecs, arg.Values)
	for _, k := range a.Keys {
		kr, err := k.Eval(ctx)
		if err != nil {
			return Result{}, err
		}
		vecs = append(vecs, kr.Values)
	}

	n := 1
	for _, vec := range vecs {
		if len(vec) == 1 {
			continue
		}
		if n == 1 {
			n = len(vec)
		} else if len(vec) != n {
			return Result{}, &AlignmentError{Left: n, Right: len(vec)}
		}
	}

	keyOf := make([]string, n)
	members := make(map[string][]any)
	parts := make([]any, len(a.Keys))
	for i := 0; i < n; i++ {
		for j := range a.Keys {
			parts[j] = pick(vecs[j+1], i)
		}
		k := value.Key(parts...)
		keyOf[i] = k
		members[k] = append(members[k], pick(arg.Values, i))
	}

	aggOf := make(map[string]any, len(members))
	for k, vals := range members {
		v, err := fold(a.Op, vals)
		if err != nil {
			return Result{}, &EvalError{Expr: a.String(), Message: err.Error()}
		}
		aggOf[k] = v
	}

	out := make([]any, n)
	for i := range out {
		out[i] = aggOf[keyOf[i]]
	}
	return Result{Values: out, Type: a.resultType(out)}, nil
}

func (a *AggregateExpr) resultType(out []any) value.ColType {
	switch a.Op {
	case AggCount, AggCountNotMissing:
		return value.TypeInt
	case AggMean:
		return value.TypeFloat
	}
	return value.CommonType(out)
}

// fold reduces values into a single result. Missing values are skipped
// by every aggregate except Count, and an aggregate over no remaining
// values yields missing.
func fold(op AggOp, values []any) (any, error) {
	switch op {
	case AggCount:
		return int64(len(values)), nil
	case AggCountNotMissing:
		var c int64
		for _, v := range values {
			if v != nil {
				c++
			}
		}
		return c, nil
	case AggSum, AggMean:
		var sumI int64
		var sumF float64
		var count int64
		isFloat := false
		for _, v := range values {
			switch n := v.(type) {
			case nil:
			case int64:
				sumI += n
				count++
			case float64:
				sumF += n
				isFloat = true
				count++
			default:
				return nil, fmt.Errorf("cannot aggregate value of type %T", v)
			}
		}
		if count == 0 {
			return nil, nil
		}
		if op == AggMean {
			return (sumF + float64(sumI)) / float64(count), nil
		}
		if isFloat {
			return sumF + float64(sumI), nil
		}
		return sumI, nil
	case AggMin, AggMax:
		var best any
		for _, v := range values {
			if v == nil {
				continue
			}
			if best == nil {
				best = v
				continue
			}
			c := value.Compare(v, best)
			if (op == AggMin && c < 0) || (op == AggMax && c > 0) {
				best = v
			}
		}
		return best, nil
	}
	return nil, fmt.Errorf("unknown aggregate %s", op)
}

// ---------- Apply ----------

func (a *ApplyExpr) Eval(ctx Context) (Result, error) {
	in, err := a.Arg.Eval(ctx)
	if err != nil {
		return Result{}, err
	}
	out := make([]any, len(in.Values))
	for i, v := range in.Values {
		if v == nil && !a.WithMissing {
			out[i] = nil
			continue
		}
		r, err := a.Fn(v)
		if err != nil {
			return Result{}, &EvalError{
				Expr:    a.String(),
				Message: fmt.Sprintf("callback failed at row %d: %v", i, err),
			}
		}
		out[i] = value.Normalize(r)
	}
	return Result{Values: out, Type: value.CommonType(out)}, nil
}

package expr

// AsExpr wraps a plain value as a literal expression. Expressions pass
// through unchanged.
func AsExpr(v any) Expr {
	if e, ok := v.(Expr); ok {
		return e
	}
	return &Literal{Value: v}
}

// Lit returns a literal expression.
func Lit(v any) *Literal {
	return &Literal{Value: v}
}

func binary(op Op, left, right any) *BinaryExpr {
	return &BinaryExpr{Op: op, Left: AsExpr(left), Right: AsExpr(right)}
}

// Add returns the elementwise sum of two operands. Strings concatenate.
func Add(left, right any) *BinaryExpr { return binary(OpAdd, left, right) }

// Sub returns the elementwise difference of two operands.
func Sub(left, right any) *BinaryExpr { return binary(OpSub, left, right) }

// Mul returns the elementwise product of two operands.
func Mul(left, right any) *BinaryExpr { return binary(OpMul, left, right) }

// Div returns the elementwise quotient of two operands, always as float.
func Div(left, right any) *BinaryExpr { return binary(OpDiv, left, right) }

// Eq compares two operands for equality. Missing operands compare false.
func Eq(left, right any) *BinaryExpr { return binary(OpEq, left, right) }

// Ne compares two operands for inequality. Missing operands compare false.
func Ne(left, right any) *BinaryExpr { return binary(OpNe, left, right) }

// Lt compares two operands with <. Missing operands compare false.
func Lt(left, right any) *BinaryExpr { return binary(OpLt, left, right) }

// Le compares two operands with <=. Missing operands compare false.
func Le(left, right any) *BinaryExpr { return binary(OpLe, left, right) }

// Gt compares two operands with >. Missing operands compare false.
func Gt(left, right any) *BinaryExpr { return binary(OpGt, left, right) }

// Ge compares two operands with >=. Missing operands compare false.
func Ge(left, right any) *BinaryExpr { return binary(OpGe, left, right) }

// And combines two operands by truthiness. Missing counts as false.
func And(left, right any) *BinaryExpr { return binary(OpAnd, left, right) }

// Or combines two operands by truthiness. Missing counts as false.
func Or(left, right any) *BinaryExpr { return binary(OpOr, left, right) }

// Not negates the truthiness of the operand.
func Not(x any) *UnaryExpr {
	return &UnaryExpr{Op: OpNot, Expr: AsExpr(x)}
}

// Neg returns the elementwise arithmetic negation of the operand.
func Neg(x any) *UnaryExpr {
	return &UnaryExpr{Op: OpNeg, Expr: AsExpr(x)}
}

// IsMissing tests values for missing. The result is never missing itself.
func IsMissing(x any) *UnaryExpr {
	return &UnaryExpr{Op: OpIsMissing, Expr: AsExpr(x)}
}

// IsNotMissing tests values for presence.
func IsNotMissing(x any) *UnaryExpr {
	return &UnaryExpr{Op: OpIsNotMissing, Expr: AsExpr(x)}
}

func aggregate(op AggOp, arg any) *AggregateExpr {
	return &AggregateExpr{Op: op, Arg: AsExpr(arg)}
}

// Count counts all values including missing ones.
func Count(arg any) *AggregateExpr { return aggregate(AggCount, arg) }

// CountNotMissing counts the values that are present.
func CountNotMissing(arg any) *AggregateExpr { return aggregate(AggCountNotMissing, arg) }

// Sum sums the present values, missing when no value remains.
func Sum(arg any) *AggregateExpr { return aggregate(AggSum, arg) }

// Min returns the smallest present value, missing when no value remains.
func Min(arg any) *AggregateExpr { return aggregate(AggMin, arg) }

// Max returns the largest present value, missing when no value remains.
func Max(arg any) *AggregateExpr { return aggregate(AggMax, arg) }

// Mean returns the arithmetic mean of the present values as float,
// missing when no value remains.
func Mean(arg any) *AggregateExpr { return aggregate(AggMean, arg) }

// Apply maps fn over the values of arg. Missing values map to missing
// without invoking fn; use KeepMissing to change that.
func Apply(fn func(any) (any, error), arg any) *ApplyExpr {
	return &ApplyExpr{Fn: fn, Arg: AsExpr(arg)}
}

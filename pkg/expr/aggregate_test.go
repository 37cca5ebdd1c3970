package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabkit-labs/tabkit/pkg/value"
)

func TestEvalAggregates(t *testing.T) {
	ctx := testContext(map[string]ColumnData{
		"v": col(value.TypeInt, int64(1), nil, int64(3)),
		"f": col(value.TypeFloat, 0.5, 1.5, nil),
		"s": col(value.TypeString, "b", "a", nil),
	})

	tests := []struct {
		name     string
		expr     Expr
		expected any
		typ      value.ColType
	}{
		{name: "count includes missing", expr: Count(ref("v", value.TypeInt)), expected: int64(3), typ: value.TypeInt},
		{name: "countNotMissing", expr: CountNotMissing(ref("v", value.TypeInt)), expected: int64(2), typ: value.TypeInt},
		{name: "sum skips missing", expr: Sum(ref("v", value.TypeInt)), expected: int64(4), typ: value.TypeInt},
		{name: "sum of floats", expr: Sum(ref("f", value.TypeFloat)), expected: 2.0, typ: value.TypeFloat},
		{name: "min", expr: Min(ref("v", value.TypeInt)), expected: int64(1), typ: value.TypeInt},
		{name: "max", expr: Max(ref("v", value.TypeInt)), expected: int64(3), typ: value.TypeInt},
		{name: "min of strings", expr: Min(ref("s", value.TypeString)), expected: "a", typ: value.TypeString},
		{name: "mean", expr: Mean(ref("v", value.TypeInt)), expected: 2.0, typ: value.TypeFloat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.expr.Eval(ctx)
			require.NoError(t, err)
			require.Len(t, res.Values, 1)
			assert.Equal(t, tt.expected, res.Values[0])
			assert.Equal(t, tt.typ, res.Type)
			assert.True(t, res.Sorted)
		})
	}
}

func TestEvalAggregateEmpty(t *testing.T) {
	ctx := testContext(map[string]ColumnData{
		"empty": col(value.TypeInt),
		"nils":  col(value.TypeInt, nil, nil),
	})

	tests := []struct {
		name     string
		expr     Expr
		expected any
	}{
		{name: "count of empty column", expr: Count(ref("empty", value.TypeInt)), expected: int64(0)},
		{name: "sum of empty column", expr: Sum(ref("empty", value.TypeInt)), expected: nil},
		{name: "sum of all missing", expr: Sum(ref("nils", value.TypeInt)), expected: nil},
		{name: "min of all missing", expr: Min(ref("nils", value.TypeInt)), expected: nil},
		{name: "mean of all missing", expr: Mean(ref("nils", value.TypeInt)), expected: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.expr.Eval(ctx)
			require.NoError(t, err)
			require.Len(t, res.Values, 1)
			assert.Equal(t, tt.expected, res.Values[0])
		})
	}
}

func TestEvalAggregateBroadcast(t *testing.T) {
	ctx := testContext(map[string]ColumnData{
		"v": col(value.TypeInt, int64(1), int64(2), int64(3)),
	})

	// A scalar aggregate broadcasts back against the full column.
	res, err := Eq(ref("v", value.TypeInt), Max(ref("v", value.TypeInt))).Eval(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{false, false, true}, res.Values)
}

func TestEvalGroupedCount(t *testing.T) {
	ctx := testContext(map[string]ColumnData{
		"v": col(value.TypeInt, int64(1), int64(1), int64(2)),
	})

	v := ref("v", value.TypeInt)
	res, err := Count(v).GroupBy(v).Eval(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2), int64(2), int64(1)}, res.Values)
	assert.Equal(t, value.TypeInt, res.Type)

	// Rows whose value occurs exactly once.
	res, err = Eq(Count(v).GroupBy(v), 1).Eval(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{false, false, true}, res.Values)
}

func TestEvalGroupedAggregates(t *testing.T) {
	ctx := testContext(map[string]ColumnData{
		"g": col(value.TypeString, "a", "b", "a", "b", "a"),
		"h": col(value.TypeInt, int64(1), int64(1), int64(1), int64(2), int64(1)),
		"v": col(value.TypeInt, int64(1), int64(2), nil, int64(4), int64(5)),
	})
	g := ref("g", value.TypeString)
	h := ref("h", value.TypeInt)
	v := ref("v", value.TypeInt)

	tests := []struct {
		name     string
		expr     Expr
		expected []any
	}{
		{
			name:     "sum per group skips missing",
			expr:     Sum(v).GroupBy(g),
			expected: []any{int64(6), int64(6), int64(6), int64(6), int64(6)},
		},
		{
			name:     "max per group",
			expr:     Max(v).GroupBy(g),
			expected: []any{int64(5), int64(4), int64(5), int64(4), int64(5)},
		},
		{
			name:     "count per multi-key group",
			expr:     Count(v).GroupBy(g, h),
			expected: []any{int64(3), int64(1), int64(3), int64(1), int64(3)},
		},
		{
			name:     "mean per group",
			expr:     Mean(v).GroupBy(g),
			expected: []any{3.0, 3.0, 3.0, 3.0, 3.0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.expr.Eval(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.Values)
		})
	}
}

func TestEvalGroupedMissingKey(t *testing.T) {
	// Missing group keys form their own group.
	ctx := testContext(map[string]ColumnData{
		"g": col(value.TypeString, "a", nil, "a", nil),
		"v": col(value.TypeInt, int64(1), int64(2), int64(3), int64(4)),
	})

	res, err := Sum(ref("v", value.TypeInt)).GroupBy(ref("g", value.TypeString)).Eval(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(4), int64(6), int64(4), int64(6)}, res.Values)
}

func TestEvalSumOfStringsFails(t *testing.T) {
	ctx := testContext(map[string]ColumnData{
		"s": col(value.TypeString, "a", "b"),
	})

	_, err := Sum(ref("s", value.TypeString)).Eval(ctx)
	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
}

func TestEvalApply(t *testing.T) {
	ctx := testContext(map[string]ColumnData{
		"v": col(value.TypeInt, int64(1), nil, int64(3)),
	})

	double := func(v any) (any, error) {
		if v == nil {
			return int64(-1), nil
		}
		return v.(int64) * 2, nil
	}

	// Missing values are skipped by default, the callback never sees them.
	res, err := Apply(double, ref("v", value.TypeInt)).Eval(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2), nil, int64(6)}, res.Values)
	assert.Equal(t, value.TypeInt, res.Type)

	// KeepMissing passes missing values through to the callback.
	res, err = Apply(double, ref("v", value.TypeInt)).KeepMissing().Eval(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2), int64(-1), int64(6)}, res.Values)
}

func TestEvalApplyAllMissing(t *testing.T) {
	ctx := testContext(map[string]ColumnData{
		"v": col(value.TypeNone, nil, nil),
	})

	called := false
	res, err := Apply(func(v any) (any, error) {
		called = true
		return v, nil
	}, ref("v", value.TypeNone)).Eval(ctx)
	require.NoError(t, err)
	assert.Equal(t, []any{nil, nil}, res.Values)
	assert.False(t, called)
	assert.Equal(t, value.TypeNone, res.Type)
}

func TestEvalApplyError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Apply(func(any) (any, error) { return nil, boom }, Lit(1)).Eval(nil)
	var evalErr *EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Contains(t, evalErr.Message, "boom")
}

func TestEvalApplyNormalizesResult(t *testing.T) {
	res, err := Apply(func(v any) (any, error) { return int(7), nil }, Lit(1)).Eval(nil)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(7)}, res.Values)
}

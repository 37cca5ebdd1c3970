package value

import "strings"

// Truth interprets a cell value as a filter flag. Missing values are
// false, numbers are true when non-zero, strings when non-empty.
// All other values are true.
func Truth(v any) bool {
	switch n := Normalize(v).(type) {
	case nil:
		return false
	case bool:
		return n
	case int64:
		return n != 0
	case float64:
		return n != 0
	case string:
		return n != ""
	default:
		return true
	}
}

// rank assigns a total order across value classes, used when cells of
// different types end up in one column.
func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int64, float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}

// Compare defines the total order used for sorting cells: missing values
// first, then bools, numbers, strings. Values of any other type order by
// their content digest, which is arbitrary but deterministic.
// Int and float compare numerically against each other.
func Compare(a, b any) int {
	a, b = Normalize(a), Normalize(b)
	ra, rb := rank(a), rank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case 0:
		return 0
	case 1:
		av, bv := a.(bool), b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case 2:
		av, bv := asFloat(a), asFloat(b)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case 3:
		return strings.Compare(a.(string), b.(string))
	default:
		return strings.Compare(Key(a), Key(b))
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

// Equal reports deep content equality of two cell values. Numbers compare
// by value across int and float, Hashable objects by their unique id,
// anything else by content digest.
func Equal(a, b any) bool {
	a, b = Normalize(a), Normalize(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return false
	}
	if ra == 2 {
		return asFloat(a) == asFloat(b)
	}
	if ra == 4 {
		return Key(a) == Key(b)
	}
	return a == b
}

package value

import (
	"fmt"
	"strconv"
)

// Normalize maps all native integer widths to int64 and float32 to float64.
// Other values pass through unchanged.
func Normalize(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

// TypeOf returns the column type matching a single cell value.
// The value is normalized first, so any native numeric width maps to
// TypeInt or TypeFloat. nil maps to TypeNone.
func TypeOf(v any) ColType {
	switch Normalize(v).(type) {
	case nil:
		return TypeNone
	case int64:
		return TypeInt
	case float64:
		return TypeFloat
	case bool:
		return TypeBool
	case string:
		return TypeString
	case *Blob:
		return TypeBlob
	case Tabular:
		return TypeTable
	default:
		return TypeObject
	}
}

// CommonType infers a column type from a slice of cell values.
// Missing values are skipped, mixed int and float widens to float,
// any other mix yields TypeObject. All missing yields TypeNone.
func CommonType(values []any) ColType {
	t := TypeNone
	for _, v := range values {
		if v == nil {
			continue
		}
		vt := TypeOf(v)
		switch {
		case t == TypeNone:
			t = vt
		case t == vt:
		case t == TypeInt && vt == TypeFloat, t == TypeFloat && vt == TypeInt:
			t = TypeFloat
		default:
			return TypeObject
		}
	}
	return t
}

// Coerce converts v to the declared column type t where a lossless or
// conventional conversion exists. Missing values always pass. Bool and
// non-primitive column types never convert, the value passes through.
func Coerce(v any, t ColType) (any, error) {
	if v == nil {
		return nil, nil
	}
	v = Normalize(v)
	switch t {
	case TypeInt:
		switch n := v.(type) {
		case int64:
			return n, nil
		case float64:
			return int64(n), nil
		case bool:
			if n {
				return int64(1), nil
			}
			return int64(0), nil
		case string:
			i, err := strconv.ParseInt(n, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot convert %q to int", n)
			}
			return i, nil
		default:
			return nil, fmt.Errorf("cannot convert %T value to int", v)
		}
	case TypeFloat:
		switch n := v.(type) {
		case int64:
			return float64(n), nil
		case float64:
			return n, nil
		case bool:
			if n {
				return float64(1), nil
			}
			return float64(0), nil
		case string:
			f, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot convert %q to float", n)
			}
			return f, nil
		default:
			return nil, fmt.Errorf("cannot convert %T value to float", v)
		}
	case TypeString:
		switch n := v.(type) {
		case string:
			return n, nil
		case int64:
			return strconv.FormatInt(n, 10), nil
		case float64:
			return strconv.FormatFloat(n, 'g', -1, 64), nil
		case bool:
			return strconv.FormatBool(n), nil
		default:
			return fmt.Sprintf("%v", v), nil
		}
	default:
		return v, nil
	}
}

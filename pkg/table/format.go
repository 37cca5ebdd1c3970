package table

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tabkit-labs/tabkit/pkg/value"
)

// missingMarker is how a missing value renders in formatted output.
const missingMarker = "-"

// minutesFormat renders a value holding seconds as minutes.
const minutesFormat = "@minutes"

type formatFunc func(any) string

// compileFormat turns a column format into a rendering function. The
// empty format hides the column and compiles to nil. Supported formats
// are printf-style verbs and the named "@minutes" format; anything else
// is a SchemaError. The %s verb renders any value, not only strings.
func compileFormat(format string) (formatFunc, error) {
	if format == "" {
		return nil, nil
	}
	if format == minutesFormat {
		return func(v any) string {
			switch n := value.Normalize(v).(type) {
			case nil:
				return missingMarker
			case int64:
				return fmt.Sprintf("%.2fm", float64(n)/60.0)
			case float64:
				return fmt.Sprintf("%.2fm", n/60.0)
			default:
				return fmt.Sprintf("%v", v)
			}
		}, nil
	}
	if strings.Contains(format, "%") {
		verb := strings.ReplaceAll(format, "%s", "%v")
		kind := verbKind(verb)
		return func(v any) string {
			if v == nil {
				return missingMarker
			}
			switch kind {
			case 'f':
				if n, ok := value.Normalize(v).(int64); ok {
					v = float64(n)
				}
			case 'd':
				if f, ok := value.Normalize(v).(float64); ok {
					v = int64(f)
				}
			}
			return fmt.Sprintf(verb, v)
		}, nil
	}
	return nil, &SchemaError{Message: fmt.Sprintf("unknown column format %q", format)}
}

var verbPattern = regexp.MustCompile(`%[#+\- 0]*[0-9]*(\.[0-9]+)?([a-zA-Z])`)

// verbKind classifies the first printf verb of a format so integer cells
// can render under float verbs and vice versa.
func verbKind(format string) byte {
	m := verbPattern.FindStringSubmatch(format)
	if m == nil {
		return 0
	}
	switch m[2][0] {
	case 'f', 'F', 'e', 'E', 'g', 'G':
		return 'f'
	case 'd', 'b', 'o', 'x', 'X':
		return 'd'
	}
	return 0
}

// guessFormat picks a display format from the column name and type.
// Numeric columns follow the domain naming convention: names starting
// with "m" render with five decimals, names starting with "rt" hold
// seconds and render as minutes.
func guessFormat(name string, typ value.ColType) string {
	if typ == value.TypeInt || typ == value.TypeFloat {
		if strings.HasPrefix(name, "m") {
			return "%.5f"
		}
		if strings.HasPrefix(name, "rt") {
			return minutesFormat
		}
	}
	switch typ {
	case value.TypeInt:
		return "%d"
	case value.TypeFloat:
		return "%.2f"
	case value.TypeString:
		return "%s"
	case value.TypeNone:
		return ""
	default:
		return "%v"
	}
}

// formatters compiles the format of every column. Hidden columns get a
// nil entry. Formats are validated on every mutation path, so compiling
// cannot fail here.
func (t *Table) formatters() []formatFunc {
	fns := make([]formatFunc, len(t.colFormats))
	for i, f := range t.colFormats {
		fn, err := compileFormat(f)
		if err != nil {
			fn = nil
		}
		fns[i] = fn
	}
	return fns
}

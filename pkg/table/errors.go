package table

import (
	"errors"
	"fmt"
	"strings"
)

// SchemaError represents an invalid column layout: duplicate names,
// reserved separators or mismatched registry definitions.
type SchemaError struct {
	Message string
}

func (e *SchemaError) Error() string { return e.Message }

// ShapeError represents a length mismatch between a value sequence and
// the table dimension it has to fit.
type ShapeError struct {
	Expected int
	Got      int
	Message  string
}

func (e *ShapeError) Error() string { return e.Message }

// TypeError represents a value or type that is not allowed where it was
// used, e.g. a cell that cannot be coerced to its column type.
type TypeError struct {
	Message string
}

func (e *TypeError) Error() string { return e.Message }

// NameCollisionError represents an attempt to add or rename a column
// onto a name that is already taken.
type NameCollisionError struct {
	Name string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("column with name %q already exists", e.Name)
}

// UnknownColumnError represents a lookup of one or more column names the
// table does not have.
type UnknownColumnError struct {
	Names    []string
	Existing []string
}

func (e *UnknownColumnError) Error() string {
	if len(e.Names) == 1 && len(e.Existing) == 0 {
		return fmt.Sprintf("column with name %q not in table", e.Names[0])
	}
	return fmt.Sprintf("columns %s not in table, available columns are %s",
		quoteJoin(e.Names), quoteJoin(e.Existing))
}

func quoteJoin(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}

// ArgumentError represents invalid or mutually exclusive arguments.
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string { return e.Message }

// LoadError represents a persistence payload that could not be decoded
// by any supported format stage.
type LoadError struct {
	Path string
	Errs []error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load table from %s: %v", e.Path, errors.Join(e.Errs...))
}

// Unwrap exposes the per-stage decode errors.
func (e *LoadError) Unwrap() []error { return e.Errs }

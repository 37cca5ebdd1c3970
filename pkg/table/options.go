package table

import (
	"log/slog"

	"github.com/tabkit-labs/tabkit/pkg/value"
)

// Option configures constructors, column operations and the storage
// routines. Options that do not apply to an operation are ignored.
type Option func(*options)

type options struct {
	title    string
	titleSet bool
	meta     map[string]any

	colType    value.ColType
	colTypeSet bool
	format     string
	formatSet  bool

	before    any
	beforeSet bool
	after     any
	afterSet  bool

	overwrite bool
	compress  bool
	noDedup   bool

	allColumns bool
	delimiter  rune
	keepNone   bool

	colTypes   map[string]value.ColType
	colFormats map[string]string

	reference  *Table
	forceMerge bool

	replaceTable bool

	maxRows int

	logger *slog.Logger
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithTitle sets the table title.
func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
		o.titleSet = true
	}
}

// WithMeta sets the table meta mapping.
func WithMeta(meta map[string]any) Option {
	return func(o *options) { o.meta = meta }
}

// WithType fixes the column type instead of inferring it from the
// materialized values.
func WithType(t value.ColType) Option {
	return func(o *options) {
		o.colType = t
		o.colTypeSet = true
	}
}

// WithFormat sets the display format of a column. The empty format hides
// the column, see Hidden.
func WithFormat(format string) Option {
	return func(o *options) {
		o.format = format
		o.formatSet = true
	}
}

// Hidden suppresses the display format of the new column, excluding it
// from printing and CSV export of visible columns.
func Hidden() Option {
	return func(o *options) {
		o.format = ""
		o.formatSet = true
	}
}

// Before inserts the new column before the given column name or integer
// position. Negative positions count from the end.
func Before(pos any) Option {
	return func(o *options) {
		o.before = pos
		o.beforeSet = true
	}
}

// After inserts the new column after the given column name or integer
// position. Negative positions count from the end.
func After(pos any) Option {
	return func(o *options) {
		o.after = pos
		o.afterSet = true
	}
}

// WithOverwrite allows Store to replace an existing file.
func WithOverwrite() Option {
	return func(o *options) { o.overwrite = true }
}

// WithCompression compresses the binary payload when storing.
func WithCompression() Option {
	return func(o *options) { o.compress = true }
}

// WithoutBlobDedup disables the canonicalization of content-identical
// embedded objects before storing.
func WithoutBlobDedup() Option {
	return func(o *options) { o.noDedup = true }
}

// WithAllColumns exports hidden columns as well.
func WithAllColumns() Option {
	return func(o *options) { o.allColumns = true }
}

// WithDelimiter sets the CSV field delimiter.
func WithDelimiter(d rune) Option {
	return func(o *options) { o.delimiter = d }
}

// KeepNone keeps the literal text "None" as a string when loading CSV
// instead of mapping it to a missing value.
func KeepNone() Option {
	return func(o *options) { o.keepNone = true }
}

// WithColumnType overrides the inferred type of a named column.
func WithColumnType(name string, t value.ColType) Option {
	return func(o *options) {
		if o.colTypes == nil {
			o.colTypes = make(map[string]value.ColType)
		}
		o.colTypes[name] = t
	}
}

// WithColumnFormat overrides the guessed format of a named column.
func WithColumnFormat(name, format string) Option {
	return func(o *options) {
		if o.colFormats == nil {
			o.colFormats = make(map[string]string)
		}
		o.colFormats[name] = format
	}
}

// WithReference supplies the table whose schema defines the merged
// column layout.
func WithReference(t *Table) Option {
	return func(o *options) { o.reference = t }
}

// WithForceMerge resolves schema conflicts during a merge in favor of
// the first table that defines a column.
func WithForceMerge() Option {
	return func(o *options) { o.forceMerge = true }
}

// WithReplaceTable drops an existing database table before writing.
func WithReplaceTable() Option {
	return func(o *options) { o.replaceTable = true }
}

// WithMaxRows limits printed output to the first and last rows with an
// elision marker in between.
func WithMaxRows(n int) Option {
	return func(o *options) { o.maxRows = n }
}

// WithLogger sets the structured logger used for operation progress.
// Derived tables inherit it. Without one, logging is discarded.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Package value defines the cell value model for tables.
//
// Cells are untyped (any) by convention restricted to: nil for missing
// values, int64, float64, bool, string, *Blob, nested tables, or arbitrary
// objects implementing Hashable. Columns carry a ColType from a closed enum.
// The package also provides the deterministic content digest used for
// identity and grouping.
package value

// ColType represents the declared type of a table column.
type ColType int

// Column types. TypeNone marks a column whose type could not be inferred
// (for example a column holding only missing values).
const (
	TypeNone ColType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeString
	TypeBlob
	TypeTable
	TypeObject

	maxColType
)

// String returns a human-readable representation of the column type.
func (t ColType) String() string {
	if name, ok := colTypeNames[t]; ok {
		return name
	}
	return "invalid"
}

// Valid reports whether t is a member of the closed column type set.
func (t ColType) Valid() bool {
	return t >= TypeNone && t < maxColType
}

// colTypeNames maps column types to their string representations.
var colTypeNames = map[ColType]string{
	TypeNone:   "none",
	TypeInt:    "int",
	TypeFloat:  "float",
	TypeBool:   "bool",
	TypeString: "str",
	TypeBlob:   "blob",
	TypeTable:  "table",
	TypeObject: "object",
}

// colTypesByName maps lowercase type names to column types.
var colTypesByName = map[string]ColType{
	"none":   TypeNone,
	"int":    TypeInt,
	"float":  TypeFloat,
	"bool":   TypeBool,
	"str":    TypeString,
	"string": TypeString,
	"blob":   TypeBlob,
	"table":  TypeTable,
	"object": TypeObject,
}

// ParseColType returns the column type for the given name.
// The reverse of ColType.String, with "string" accepted as an
// alias for "str".
func ParseColType(name string) (ColType, bool) {
	t, ok := colTypesByName[name]
	return t, ok
}

// Hashable is the contract for opaque cell objects: a stable hex digest of
// the object's content. Content-identical objects must return equal ids.
// Nested tables and blobs satisfy it; domain objects stored in object
// columns may implement it to take part in identity and grouping.
type Hashable interface {
	UniqueID() string
}

// Copier is implemented by cell objects that support value copies.
type Copier interface {
	Copy() any
}

// Tabular marks cell values that are themselves tables. It lets the cell
// model classify nested tables without depending on the table package.
type Tabular interface {
	Hashable
	Len() int
	NumCols() int
}

// TableID identifies a table instance. Expressions reference columns by
// (TableID, name) pairs, which keeps references unambiguous across joins
// of tables sharing column names.
type TableID string

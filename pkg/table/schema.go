package table

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/tabkit-labs/tabkit/pkg/value"
)

// ---------- Accessors ----------

// ColNames returns a copy of the ordered column names.
func (t *Table) ColNames() []string { return slices.Clone(t.colNames) }

// ColTypes returns a copy of the ordered column types.
func (t *Table) ColTypes() []value.ColType { return slices.Clone(t.colTypes) }

// ColFormats returns a copy of the ordered column formats.
func (t *Table) ColFormats() []string { return slices.Clone(t.colFormats) }

// Title returns the table title.
func (t *Table) Title() string { return t.title }

// SetTitle sets the table title.
func (t *Table) SetTitle(title string) { t.title = title }

// Meta returns a shallow copy of the meta mapping.
func (t *Table) Meta() map[string]any { return maps.Clone(t.meta) }

// MetaValue returns the meta entry for key, nil if absent.
func (t *Table) MetaValue(key string) any { return t.meta[key] }

// SetMeta sets a meta entry. The cached content hash is dropped because
// meta takes part in the table identity.
func (t *Table) SetMeta(key string, v any) {
	t.meta[key] = v
	delete(t.meta, metaUniqueID)
}

// GetIndex returns the position of the named column.
func (t *Table) GetIndex(name string) (int, error) {
	i, ok := t.colIndex[name]
	if !ok {
		return 0, &UnknownColumnError{Names: []string{name}}
	}
	return i, nil
}

// HasColumn reports whether the table has a column of that name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.colIndex[name]
	return ok
}

// HasColumns reports whether the table has all the named columns.
func (t *Table) HasColumns(names ...string) bool {
	for _, n := range names {
		if !t.HasColumn(n) {
			return false
		}
	}
	return true
}

// EnsureColNames fails with the exact set of missing names when any of
// the given columns is absent.
func (t *Table) EnsureColNames(names ...string) error {
	var missing []string
	for _, n := range names {
		if !t.HasColumn(n) {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return &UnknownColumnError{Names: missing, Existing: t.ColNames()}
	}
	return nil
}

// ColType returns the declared type of the named column.
func (t *Table) ColType(name string) (value.ColType, error) {
	i, err := t.GetIndex(name)
	if err != nil {
		return value.TypeNone, err
	}
	return t.colTypes[i], nil
}

// ColFormat returns the display format of the named column.
func (t *Table) ColFormat(name string) (string, error) {
	i, err := t.GetIndex(name)
	if err != nil {
		return "", err
	}
	return t.colFormats[i], nil
}

// SetColType changes the declared type of the named column in place.
// Cell values are not converted.
func (t *Table) SetColType(name string, typ value.ColType) error {
	i, err := t.GetIndex(name)
	if err != nil {
		return err
	}
	if !typ.Valid() {
		return &TypeError{Message: fmt.Sprintf("invalid type for column %q", name)}
	}
	t.colTypes[i] = typ
	t.resetInternals()
	return nil
}

// SetColFormat changes the display format of the named column in place.
// The empty format hides the column.
func (t *Table) SetColFormat(name, format string) error {
	i, err := t.GetIndex(name)
	if err != nil {
		return err
	}
	if _, err := compileFormat(format); err != nil {
		return err
	}
	t.colFormats[i] = format
	t.resetInternals()
	return nil
}

// VisibleColNames returns the names of the columns whose display format
// is not suppressed.
func (t *Table) VisibleColNames() []string {
	var names []string
	for i, n := range t.colNames {
		if t.colFormats[i] != "" {
			names = append(names, n)
		}
	}
	return names
}

// ---------- Renaming ----------

// RenameColumns renames columns in place following the old-to-new
// mapping. The operation is atomic: all old names must exist, all new
// names must be unused, free of the reserved separator and mutually
// distinct, otherwise nothing is renamed.
func (t *Table) RenameColumns(mapping map[string]string) error {
	for _, old := range slices.Sorted(maps.Keys(mapping)) {
		if !t.HasColumn(old) {
			return &UnknownColumnError{Names: []string{old}, Existing: t.ColNames()}
		}
	}
	seen := make(map[string]bool, len(mapping))
	for _, newName := range mapping {
		if seen[newName] {
			return &SchemaError{Message: fmt.Sprintf("name overlap in new column names, %q used twice", newName)}
		}
		seen[newName] = true
		if t.HasColumn(newName) {
			return &NameCollisionError{Name: newName}
		}
		if strings.Contains(newName, postfixSep) {
			return &SchemaError{Message: fmt.Sprintf("double underscore in %q not allowed", newName)}
		}
	}

	for i, n := range t.colNames {
		if newName, ok := mapping[n]; ok {
			t.colNames[i] = newName
		}
	}
	for old, newName := range mapping {
		if t.primaryIndex[old] {
			delete(t.primaryIndex, old)
			t.primaryIndex[newName] = true
		}
	}
	t.resetInternals()
	return nil
}

// RenameColumn renames a single column.
func (t *Table) RenameColumn(oldName, newName string) error {
	return t.RenameColumns(map[string]string{oldName: newName})
}

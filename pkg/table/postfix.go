package table

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// postfixSep separates a column name from its postfix tag. Names
// starting with the separator are internal columns without a postfix.
const postfixSep = "__"

// splitColumnName splits a column name into its prefix and postfix
// parts. The postfix keeps the separator, so "mz__0" yields ("mz",
// "__0"). Internal names report internal true and carry no postfix.
// More than one separator is invalid.
func splitColumnName(name string) (prefix, postfix string, internal bool, err error) {
	if strings.HasPrefix(name, postfixSep) {
		return name, "", true, nil
	}
	switch strings.Count(name, postfixSep) {
	case 0:
		return name, "", false, nil
	case 1:
		i := strings.Index(name, postfixSep)
		return name[:i], name[i:], false, nil
	default:
		return "", "", false, &SchemaError{Message: fmt.Sprintf("invalid column name %q", name)}
	}
}

// postfixValue maps a postfix to its numeric tag. The empty postfix is
// the implicit tag -1.
func postfixValue(postfix string) (int, error) {
	if postfix == "" {
		return -1, nil
	}
	n, err := strconv.Atoi(postfix[len(postfixSep):])
	if err != nil {
		return 0, &SchemaError{Message: fmt.Sprintf("postfix %q is not numeric", postfix)}
	}
	return n, nil
}

// Postfixes returns the sorted distinct postfixes of the non-internal
// column names, including the empty postfix for untagged names.
func (t *Table) Postfixes() []string {
	seen := map[string]bool{}
	var out []string
	for _, n := range t.colNames {
		_, postfix, internal, err := splitColumnName(n)
		if internal || err != nil {
			continue
		}
		if !seen[postfix] {
			seen[postfix] = true
			out = append(out, postfix)
		}
	}
	slices.Sort(out)
	return out
}

// postfixValues collects the numeric tags of all non-internal columns.
func (t *Table) postfixValues() ([]int, error) {
	var out []int
	for _, postfix := range t.Postfixes() {
		n, err := postfixValue(postfix)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// MaxPostfix returns the largest numeric postfix tag, -1 when no column
// carries one.
func (t *Table) MaxPostfix() (int, error) {
	values, err := t.postfixValues()
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return -1, nil
	}
	return slices.Max(values), nil
}

// MinPostfix returns the smallest numeric postfix tag, -1 when no
// column carries one.
func (t *Table) MinPostfix() (int, error) {
	values, err := t.postfixValues()
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return -1, nil
	}
	return slices.Min(values), nil
}

// renumberedNames returns the column names with every numeric postfix
// tag shifted by the given offset. Untagged names count as tag -1 and
// become explicitly tagged; internal names stay unchanged.
func (t *Table) renumberedNames(offset int) ([]string, error) {
	out := make([]string, len(t.colNames))
	for i, n := range t.colNames {
		prefix, postfix, internal, err := splitColumnName(n)
		if err != nil {
			return nil, err
		}
		if internal {
			out[i] = n
			continue
		}
		tag, err := postfixValue(postfix)
		if err != nil {
			return nil, err
		}
		out[i] = fmt.Sprintf("%s%s%d", prefix, postfixSep, offset+tag)
	}
	return out, nil
}

// SupportedPostfixes returns the suffixes under which every one of the
// given prefixes appears as a column. Suffixes here are arbitrary string
// remainders, not only numeric tags: for columns rt, rtmin, rtmax, rt1
// and rtmin1, SupportedPostfixes("rt", "rtmin") returns ["", "1"].
func (t *Table) SupportedPostfixes(prefixes ...string) []string {
	counter := map[string]int{}
	for _, prefix := range prefixes {
		for _, n := range t.colNames {
			if strings.HasPrefix(n, prefix) {
				counter[n[len(prefix):]]++
			}
		}
	}
	var out []string
	for suffix, count := range counter {
		if count == len(prefixes) {
			out = append(out, suffix)
		}
	}
	slices.Sort(out)
	return out
}

// RemovePostfixes strips postfixes from the column names in place.
// Without arguments every name is truncated at its first separator;
// otherwise the first matching of the given postfixes is stripped from
// each name. The operation fails atomically when stripping would
// produce duplicate names.
func (t *Table) RemovePostfixes(postfixes ...string) error {
	newNames := make([]string, len(t.colNames))
	for i, n := range t.colNames {
		newNames[i] = n
		if len(postfixes) == 0 {
			if cut, _, found := strings.Cut(n, postfixSep); found {
				newNames[i] = cut
			}
			continue
		}
		for _, pf := range postfixes {
			if pf != "" && strings.HasSuffix(n, pf) {
				newNames[i] = n[:len(n)-len(pf)]
				break
			}
		}
	}
	seen := make(map[string]bool, len(newNames))
	for _, n := range newNames {
		if seen[n] {
			return &SchemaError{Message: fmt.Sprintf(
				"removing postfixes %v results in ambiguous column names %v", postfixes, newNames)}
		}
		seen[n] = true
	}

	for old, isPrimary := range t.primaryIndex {
		if !isPrimary {
			continue
		}
		for i, n := range t.colNames {
			if n == old && newNames[i] != old {
				delete(t.primaryIndex, old)
				t.primaryIndex[newNames[i]] = true
			}
		}
	}
	t.colNames = newNames
	t.resetInternals()
	return nil
}

// RenamePostfixes renames postfixes following the old-to-new mapping,
// e.g. {"__0": "_left"}. The new postfix must not introduce another
// separator. Renaming is delegated to RenameColumns and shares its
// atomic validation.
func (t *Table) RenamePostfixes(mapping map[string]string) error {
	collected := map[string]string{}
	for _, old := range slices.Sorted(maps.Keys(mapping)) {
		newPostfix := mapping[old]
		for _, n := range t.colNames {
			if strings.HasSuffix(n, old) {
				newName := n[:len(n)-len(old)] + newPostfix
				if strings.Contains(newName, postfixSep) {
					return &SchemaError{Message: fmt.Sprintf(
						"renaming %q results in double underscore in %q", n, newName)}
				}
				collected[n] = newName
			}
		}
	}
	return t.RenameColumns(collected)
}

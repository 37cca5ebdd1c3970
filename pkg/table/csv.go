package table

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tabkit-labs/tabkit/pkg/value"
)

// csvDelimiter is the default field separator for delimited text files.
const csvDelimiter = ';'

var headerSpaceRe = regexp.MustCompile(`\s+`)

// StoreCSV writes the table as delimited text and returns the path
// actually written. Only columns with a format are written unless
// WithAllColumns is given. The target must carry a .csv extension.
// Without WithOverwrite an existing file is never replaced, a numbered
// suffix is appended instead.
func (t *Table) StoreCSV(path string, opts ...Option) (string, error) {
	o := applyOptions(opts)
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return "", &ArgumentError{Message: fmt.Sprintf("%s has wrong file type extension", path)}
	}

	target := path
	if !o.overwrite {
		for i := 1; ; i++ {
			if _, err := os.Stat(target); os.IsNotExist(err) {
				break
			}
			target = fmt.Sprintf("%s.%d", path, i)
		}
	}

	names := t.colNames
	if !o.allColumns {
		names = t.VisibleColNames()
	}
	indices := make([]int, len(names))
	for i, name := range names {
		indices[i] = t.colIndex[name]
	}

	f, err := os.Create(target)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = csvDelimiter
	if o.delimiter != 0 {
		w.Comma = o.delimiter
	}
	if err := w.Write(names); err != nil {
		return "", err
	}
	record := make([]string, len(indices))
	for _, row := range t.rows {
		for i, j := range indices {
			record[i] = csvCell(row[j])
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return target, nil
}

func csvCell(v any) string {
	switch n := v.(type) {
	case nil:
		return "None"
	case string:
		return n
	default:
		return fmt.Sprintf("%v", v)
	}
}

// LoadCSV reads a delimited text file into a table. The first record
// is the header, whitespace in header names becomes an underscore.
// Cell values are parsed as int, then float (accepting a decimal
// comma), then kept as string; the literal "None" and empty fields are
// missing values unless KeepNone preserves "None" as text. Column
// types and formats are inferred per column and can be pinned with
// WithColumnType and WithColumnFormat.
func LoadCSV(path string, opts ...Option) (*Table, error) {
	o := applyOptions(opts)
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return nil, &ArgumentError{Message: fmt.Sprintf("%s has wrong file type extension", path)}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = csvDelimiter
	if o.delimiter != 0 {
		r.Comma = o.delimiter
	}
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, &ArgumentError{Message: fmt.Sprintf("%s contains no header record", path)}
	}

	names := make([]string, len(records[0]))
	for i, name := range records[0] {
		names[i] = headerSpaceRe.ReplaceAllString(strings.TrimSpace(name), "_")
	}

	rows := make([][]any, len(records)-1)
	for i, record := range records[1:] {
		row := make([]any, len(names))
		for j, cell := range record {
			row[j] = parseCSVCell(strings.TrimSpace(cell), o.keepNone)
		}
		rows[i] = row
	}

	types := make([]value.ColType, len(names))
	formats := make([]string, len(names))
	for j, name := range names {
		values := make([]any, len(rows))
		for i, row := range rows {
			values[i] = row[j]
		}
		typ, pinned := o.colTypes[name]
		if !pinned {
			typ = value.CommonType(values)
		}
		for i, v := range values {
			converted, err := value.Coerce(v, typ)
			if err != nil {
				return nil, &TypeError{Message: fmt.Sprintf(
					"cannot convert value %v in column %q to %s: %v", v, name, typ, err)}
			}
			rows[i][j] = converted
		}
		types[j] = typ
		if format, ok := o.colFormats[name]; ok {
			formats[j] = format
		} else {
			formats[j] = guessFormat(name, typ)
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	newOpts := []Option{
		WithTitle(filepath.Base(path)),
		WithMeta(map[string]any{metaLoadedFrom: abs}),
	}
	if o.logger != nil {
		newOpts = append(newOpts, WithLogger(o.logger))
	}
	return New(names, types, formats, rows, newOpts...)
}

// parseCSVCell converts raw text to the best matching cell value.
func parseCSVCell(s string, keepNone bool) any {
	if s == "" {
		return nil
	}
	if s == "None" && !keepNone {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if strings.Count(s, ",") == 1 {
		if f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64); err == nil {
			return f
		}
	}
	return s
}

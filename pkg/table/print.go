package table

import (
	"fmt"
	"io"

	pt "github.com/jedib0t/go-pretty/v6/table"

	"github.com/tabkit-labs/tabkit/pkg/value"
)

// Print renders the table to w with one header line for column names
// and one for column types. Cell values render through their column
// format, missing values as a dash. By default only columns with a
// format appear, WithAllColumns includes the hidden ones. WithMaxRows
// elides the middle of longer tables.
func (t *Table) Print(w io.Writer, opts ...Option) {
	o := applyOptions(opts)

	names := t.colNames
	if !o.allColumns {
		names = t.VisibleColNames()
	}
	indices := make([]int, len(names))
	for i, name := range names {
		indices[i] = t.colIndex[name]
	}
	fns := t.formatters()

	tw := pt.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(pt.StyleLight)
	if t.title != "" {
		tw.SetTitle(t.title)
	}

	header := make(pt.Row, len(names))
	typeRow := make(pt.Row, len(names))
	for i, j := range indices {
		header[i] = t.colNames[j]
		typeRow[i] = t.colTypes[j].String()
	}
	tw.AppendHeader(header)
	tw.AppendHeader(typeRow)

	appendRow := func(row []any) {
		cells := make(pt.Row, len(indices))
		for i, j := range indices {
			cells[i] = renderCell(row[j], fns[j])
		}
		tw.AppendRow(cells)
	}
	appendGap := func() {
		cells := make(pt.Row, len(indices))
		for i := range cells {
			cells[i] = "..."
		}
		tw.AppendRow(cells)
	}

	n := t.Len()
	if o.maxRows > 0 && n > o.maxRows {
		head := (o.maxRows + 1) / 2
		tail := o.maxRows - head
		for _, row := range t.rows[:head] {
			appendRow(row)
		}
		appendGap()
		for _, row := range t.rows[n-tail:] {
			appendRow(row)
		}
	} else {
		for _, row := range t.rows {
			appendRow(row)
		}
	}

	tw.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", n)
}

func renderCell(v any, fn formatFunc) string {
	if fn == nil {
		if v == nil {
			return missingMarker
		}
		return fmt.Sprintf("%v", v)
	}
	return fn(v)
}

// Info writes a per-column summary to w: position, name, type, format
// and the number of distinct and missing values. Distinct values are
// counted by content, and hidden columns are included.
func (t *Table) Info(w io.Writer) {
	_, _ = fmt.Fprintf(w, "table info: title=%q, %d rows\n", t.title, len(t.rows))

	tw := pt.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(pt.StyleLight)
	tw.AppendHeader(pt.Row{"#", "Column", "Type", "Format", "Distinct", "Missing"})
	for i, name := range t.colNames {
		distinct := map[string]bool{}
		missing := 0
		for _, row := range t.rows {
			if row[i] == nil {
				missing++
				continue
			}
			distinct[value.Key(row[i])] = true
		}
		tw.AppendRow(pt.Row{
			i, name, t.colTypes[i].String(), fmt.Sprintf("%q", t.colFormats[i]),
			len(distinct), missing,
		})
	}
	tw.Render()
}

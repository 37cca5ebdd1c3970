package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/tabkit-labs/tabkit/internal/cli/config"
	"github.com/tabkit-labs/tabkit/pkg/table"
	"github.com/tabkit-labs/tabkit/pkg/value"
)

// sqliteExtensions lists the file extensions treated as SQLite databases.
var sqliteExtensions = map[string]bool{
	".db":      true,
	".sqlite":  true,
	".sqlite3": true,
}

// loadTableFile loads a table from path, dispatching on the file extension.
// sqlTable names the database table to read when path is a SQLite file.
func loadTableFile(ctx context.Context, path, sqlTable string, cfg *config.Config) (*table.Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".table":
		return table.Load(path)
	case ext == ".csv":
		return table.LoadCSV(path, table.WithDelimiter(cfg.DelimiterRune()))
	case sqliteExtensions[ext]:
		if sqlTable == "" {
			return nil, fmt.Errorf("reading from a SQLite database requires --table")
		}
		return table.LoadSQLite(ctx, path, sqlTable)
	default:
		return nil, fmt.Errorf("unsupported file type %q (expected .table, .csv or a SQLite database)", ext)
	}
}

// renderResults writes tab to w in the configured output format.
func renderResults(w io.Writer, tab *table.Table, cfg *config.Config, allColumns bool) error {
	switch cfg.Output {
	case "json":
		return renderJSON(w, tab, allColumns)
	case "csv":
		return renderCSV(w, tab, cfg.DelimiterRune(), allColumns)
	case "md", "markdown":
		return renderMarkdown(w, tab, allColumns)
	default:
		return renderTable(w, tab, cfg.MaxRows, allColumns)
	}
}

func renderTable(w io.Writer, tab *table.Table, maxRows int, allColumns bool) error {
	opts := []table.Option{table.WithMaxRows(maxRows)}
	if allColumns {
		opts = append(opts, table.WithAllColumns())
	}
	tab.Print(w, opts...)
	return nil
}

// renderColumns resolves the column names and indices to render.
func renderColumns(tab *table.Table, allColumns bool) ([]string, []int) {
	names := tab.VisibleColNames()
	if allColumns {
		names = tab.ColNames()
	}
	indices := make([]int, len(names))
	for i, name := range names {
		idx, _ := tab.GetIndex(name)
		indices[i] = idx
	}
	return names, indices
}

func renderJSON(w io.Writer, tab *table.Table, allColumns bool) error {
	names, indices := renderColumns(tab, allColumns)

	results := make([]map[string]any, 0, tab.Len())
	for r := 0; r < tab.Len(); r++ {
		row, err := tab.Row(r)
		if err != nil {
			return err
		}
		result := make(map[string]any, len(names))
		for i, name := range names {
			result[name] = jsonValue(row[indices[i]])
		}
		results = append(results, result)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func renderCSV(w io.Writer, tab *table.Table, delim rune, allColumns bool) error {
	names, indices := renderColumns(tab, allColumns)
	sep := string(delim)

	// Header
	_, _ = fmt.Fprintln(w, strings.Join(names, sep))

	// Rows
	for r := 0; r < tab.Len(); r++ {
		row, err := tab.Row(r)
		if err != nil {
			return err
		}
		values := make([]string, len(names))
		for i := range names {
			values[i] = escapeCSV(formatValue(row[indices[i]]), sep)
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, sep))
	}
	return nil
}

func renderMarkdown(w io.Writer, tab *table.Table, allColumns bool) error {
	names, indices := renderColumns(tab, allColumns)

	if tab.Len() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	// Header
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(names, " | "))
	// Separator
	seps := make([]string, len(names))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	// Rows
	for r := 0; r < tab.Len(); r++ {
		row, err := tab.Row(r)
		if err != nil {
			return err
		}
		values := make([]string, len(names))
		for i := range names {
			values[i] = formatValue(row[indices[i]])
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(values, " | "))
	}
	return nil
}

// formatValue renders a cell for text output. Missing values render as
// None, matching the CSV file format.
func formatValue(v any) string {
	if v == nil {
		return "None"
	}
	return fmt.Sprintf("%v", v)
}

// jsonValue converts a cell to a JSON-friendly value. Blobs and nested
// tables render as their summary strings.
func jsonValue(v any) any {
	switch x := v.(type) {
	case *value.Blob:
		return x.String()
	case *table.Table:
		return x.String()
	default:
		return v
	}
}

func escapeCSV(s, sep string) string {
	if strings.ContainsAny(s, sep+"\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

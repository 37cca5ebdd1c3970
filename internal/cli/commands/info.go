package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	pt "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/tabkit-labs/tabkit/pkg/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Meta keys written by the table package that describe provenance
// rather than user data.
const (
	metaKeyUniqueID   = "unique_id"
	metaKeyLoadedFrom = "loaded_from"
)

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	var sqlTable string

	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Show schema and metadata of a table file",
		Long: `Display the schema, dimensions, unique id and metadata of a table
without rendering its rows.

The unique id is a content hash: two tables with the same columns,
rows and metadata share it regardless of where they are stored.`,
		Example: `  # Inspect a native table file
  tabkit info peaks.table

  # Inspect as JSON
  tabkit info peaks.csv --output json

  # Inspect a table stored in a SQLite database
  tabkit info results.db --table peaks`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()

			tab, err := loadTableFile(cmd.Context(), args[0], sqlTable, cfg)
			if err != nil {
				return err
			}

			info := collectTableInfo(tab)
			if cfg.Output == "json" {
				return renderInfoJSON(cmd.OutOrStdout(), info)
			}
			renderInfoText(cmd.OutOrStdout(), info)
			return nil
		},
	}

	cmd.Flags().StringVar(&sqlTable, "table", "", "Table name to read from a SQLite database")

	return cmd
}

// columnInfo describes a single column of a table.
type columnInfo struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Format string `json:"format"`
}

// tableInfo is the schema summary produced by the info command.
type tableInfo struct {
	Title    string         `json:"title,omitempty"`
	Rows     int            `json:"rows"`
	Columns  []columnInfo   `json:"columns"`
	UniqueID string         `json:"unique_id"`
	Source   string         `json:"source,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

func collectTableInfo(tab *table.Table) tableInfo {
	names := tab.ColNames()
	types := tab.ColTypes()
	formats := tab.ColFormats()

	columns := make([]columnInfo, len(names))
	for i, name := range names {
		columns[i] = columnInfo{
			Name:   name,
			Type:   types[i].String(),
			Format: formats[i],
		}
	}

	info := tableInfo{
		Title:    tab.Title(),
		Rows:     tab.Len(),
		Columns:  columns,
		UniqueID: tab.UniqueID(),
	}

	if src, ok := tab.MetaValue(metaKeyLoadedFrom).(string); ok {
		info.Source = src
	}

	meta := tab.Meta()
	delete(meta, metaKeyUniqueID)
	delete(meta, metaKeyLoadedFrom)
	if len(meta) > 0 {
		info.Meta = meta
	}

	return info
}

func renderInfoText(w io.Writer, info tableInfo) {
	title := info.Title
	if title == "" {
		title = "(untitled)"
	}
	_, _ = fmt.Fprintf(w, "Table: %s\n", title)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 60))
	_, _ = fmt.Fprintf(w, "Rows:      %d\n", info.Rows)
	_, _ = fmt.Fprintf(w, "Columns:   %d\n", len(info.Columns))
	_, _ = fmt.Fprintf(w, "Unique ID: %s\n", info.UniqueID)
	if info.Source != "" {
		_, _ = fmt.Fprintf(w, "Source:    %s\n", info.Source)
	}
	_, _ = fmt.Fprintln(w)

	tw := pt.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(pt.StyleLight)
	tw.AppendHeader(pt.Row{"Column", "Type", "Format"})
	for _, col := range info.Columns {
		tw.AppendRow(pt.Row{col.Name, col.Type, col.Format})
	}
	tw.Render()

	if len(info.Meta) > 0 {
		titleCaser := cases.Title(language.English)
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "Meta:")
		for _, key := range slices.Sorted(maps.Keys(info.Meta)) {
			label := titleCaser.String(strings.ReplaceAll(key, "_", " "))
			_, _ = fmt.Fprintf(w, "  %s: %v\n", label, info.Meta[key])
		}
	}
}

func renderInfoJSON(w io.Writer, info tableInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

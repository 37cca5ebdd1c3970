package commands

import (
	"github.com/spf13/cobra"
	"github.com/tabkit-labs/tabkit/internal/cli/config"
)

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	var (
		sqlTable   string
		allColumns bool
	)

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Render a table file",
		Long: `Load a table from a file and render it.

The file type is derived from the extension: .table for the native
binary format, .csv for delimited text and .db/.sqlite/.sqlite3 for
SQLite databases. Columns hidden by an empty format are omitted unless
--all-columns is given.`,
		Example: `  # Render a native table file
  tabkit show peaks.table

  # Render a CSV file as JSON
  tabkit show peaks.csv --output json

  # Render the first ten rows only
  tabkit show peaks.table --max-rows 10

  # Render a table stored in a SQLite database
  tabkit show results.db --table peaks`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()
			logger := config.GetLogger(cmd.Context())

			tab, err := loadTableFile(cmd.Context(), args[0], sqlTable, cfg)
			if err != nil {
				return err
			}
			logger.Debug("table loaded", "path", args[0], "rows", tab.Len(), "cols", tab.NumCols())

			return renderResults(cmd.OutOrStdout(), tab, cfg, allColumns)
		},
	}

	cmd.Flags().StringVar(&sqlTable, "table", "", "Table name to read from a SQLite database")
	cmd.Flags().BoolVar(&allColumns, "all-columns", false, "Include columns hidden by an empty format")

	return cmd
}

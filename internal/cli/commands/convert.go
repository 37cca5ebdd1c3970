package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tabkit-labs/tabkit/internal/cli/config"
	"github.com/tabkit-labs/tabkit/pkg/table"
)

// convertOptions holds the flag values of the convert command.
type convertOptions struct {
	tableName  string
	overwrite  bool
	compress   bool
	allColumns bool
}

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert <src> <dst>",
		Short: "Convert a table between file formats",
		Long: `Load a table from one file and store it in another format.

Both file types are derived from the extensions: .table for the native
binary format, .csv for delimited text and .db/.sqlite/.sqlite3 for
SQLite databases. Column types and formats survive the conversion where
the target format can carry them.`,
		Example: `  # Convert a CSV file to the native format
  tabkit convert peaks.csv peaks.table

  # Convert with xz compression
  tabkit convert peaks.csv peaks.table --compress

  # Export a table into a SQLite database
  tabkit convert peaks.table results.db --table peaks

  # Replace an existing file
  tabkit convert peaks.table peaks.csv --overwrite`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.tableName, "table", "", "Table name for the SQLite side of the conversion")
	cmd.Flags().BoolVar(&opts.overwrite, "overwrite", false, "Replace the destination if it exists")
	cmd.Flags().BoolVar(&opts.compress, "compress", false, "Compress the payload (.table destinations only)")
	cmd.Flags().BoolVar(&opts.allColumns, "all-columns", false, "Include columns hidden by an empty format")

	return cmd
}

func runConvert(cmd *cobra.Command, src, dst string, opts convertOptions) error {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	if opts.compress && strings.ToLower(filepath.Ext(dst)) != ".table" {
		return fmt.Errorf("--compress only applies to .table destinations")
	}

	tab, err := loadTableFile(cmd.Context(), src, opts.tableName, cfg)
	if err != nil {
		return err
	}
	logger.Debug("table loaded", "path", src, "rows", tab.Len(), "cols", tab.NumCols())

	written, err := storeTableFile(cmd.Context(), tab, dst, cfg, opts)
	if err != nil {
		return err
	}
	logger.Debug("table stored", "path", written)

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d rows)\n", written, tab.Len())
	return nil
}

// storeTableFile stores tab at path, dispatching on the file extension.
// It returns the path actually written, which for CSV targets may carry
// a numbered suffix.
func storeTableFile(ctx context.Context, tab *table.Table, path string, cfg *config.Config, opts convertOptions) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".table":
		storeOpts := []table.Option{}
		if opts.overwrite {
			storeOpts = append(storeOpts, table.WithOverwrite())
		}
		if opts.compress {
			storeOpts = append(storeOpts, table.WithCompression())
		}
		return path, tab.Store(path, storeOpts...)
	case ext == ".csv":
		storeOpts := []table.Option{table.WithDelimiter(cfg.DelimiterRune())}
		if opts.overwrite {
			storeOpts = append(storeOpts, table.WithOverwrite())
		}
		if opts.allColumns {
			storeOpts = append(storeOpts, table.WithAllColumns())
		}
		return tab.StoreCSV(path, storeOpts...)
	case sqliteExtensions[ext]:
		if opts.tableName == "" {
			return "", fmt.Errorf("writing to a SQLite database requires --table")
		}
		storeOpts := []table.Option{}
		if opts.overwrite {
			storeOpts = append(storeOpts, table.WithReplaceTable())
		}
		return path, tab.StoreSQLite(ctx, path, opts.tableName, storeOpts...)
	default:
		return "", fmt.Errorf("unsupported file type %q (expected .table, .csv or a SQLite database)", ext)
	}
}

// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/canonical/sqlexpr"
	"github.com/canonical/sqlexpr/operator"
)

// rootOptions holds the global flags and the state shared by all commands.
type rootOptions struct {
	dialect string
	verbose bool

	logger  *slog.Logger
	builder *sqlexpr.Builder
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cache := sqlexpr.NewCache(operator.NewStandardRegistry())

	cmd := &cobra.Command{
		Use:   "sqlexpr",
		Short: "Render condition documents as SQL",
		Long: `Render condition and SELECT documents, written in YAML or JSON, as SQL
for PostgreSQL, SQLite or MySQL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			b, err := cache.Builder(opts.dialect)
			if err != nil {
				return err
			}
			opts.builder = b
			opts.logger.Debug("using dialect", "dialect", opts.dialect)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.dialect, "dialect", "d", "postgres", "SQL dialect (postgres|sqlite|mysql)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log diagnostics to stderr")

	cmd.AddCommand(newWhereCommand(opts))
	cmd.AddCommand(newSelectCommand(opts))
	return cmd
}

// readInput returns the contents of the file named in args, or of stdin if
// there is none or it is "-".
func readInput(cmd *cobra.Command, args []string) (data []byte, source string, err error) {
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
		return data, "stdin", err
	}
	data, err = os.ReadFile(args[0])
	return data, args[0], err
}

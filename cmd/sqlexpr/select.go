// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canonical/sqlexpr/internal/document"
)

func newSelectCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "select [file]",
		Short: "Render a SELECT document as a SQL statement",
		Long: `Render a SELECT document as a SQL statement.

The document is read from the file, or from stdin if no file is given. It
holds the targets of the statement and its clauses:

  targets: [name, age]
  distinct: false
  from: person
  where: {scope: age, condition: {gte: 18}}
  groupBy: [name, age]
  orderBy: [name, {column: age, direction: desc}]
  limit: 10
  offset: 20

Only from is required.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, source, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			doc, err := document.DecodeSelect(data)
			if err != nil {
				return fmt.Errorf("%s: %w", source, err)
			}
			q := doc.Query()
			opts.logger.Debug("decoded select", "source", source, "targets", len(q.Targets), "clauses", len(q.Clauses))

			sql, err := opts.builder.Select(q)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sql)
			return nil
		},
	}
}

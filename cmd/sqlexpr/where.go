// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canonical/sqlexpr/internal/document"
)

func newWhereCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "where [file]",
		Short: "Render a condition document as a SQL boolean expression",
		Long: `Render a condition document as a SQL boolean expression.

The document is read from the file, or from stdin if no file is given. For
example the document

  and:
    - scope: age
      condition: {gte: 18}
    - scope: team
      condition: {in: [red, blue]}

renders as "age" >= 18 AND "team" IN ('red', 'blue').`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, source, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			cond, err := document.DecodeCondition(data)
			if err != nil {
				return fmt.Errorf("%s: %w", source, err)
			}
			opts.logger.Debug("decoded condition", "source", source, "condition", cond.String())

			sql, err := opts.builder.Where(cond)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sql)
			return nil
		},
	}
}

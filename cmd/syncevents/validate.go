package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/syncevents/internal/adapters/eventlog"
	"github.com/okian/syncevents/pkg/logger"
)

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Count good and bad lines of each log",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "FILE\tGOOD\tBAD")

			var failed bool
			for _, path := range args {
				entries, lineErrs, err := eventlog.ReadFile(ctx, path, c.codec)
				if err != nil {
					_ = w.Flush()
					return err
				}
				for _, le := range lineErrs {
					c.log.Warn(ctx, "bad line", logger.String("file", path), logger.Error(le))
				}
				fmt.Fprintf(w, "%s\t%d\t%d\n", path, len(entries), len(lineErrs))
				failed = failed || len(lineErrs) > 0
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if failed {
				return errBadLines
			}
			return nil
		},
	}
}

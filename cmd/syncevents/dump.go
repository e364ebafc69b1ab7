package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/syncevents/internal/adapters/eventlog"
	"github.com/okian/syncevents/pkg/logger"
)

func (c *cli) dumpCmd() *cobra.Command {
	var asJSON, strict bool
	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Decode and print every event of a log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r, err := eventlog.OpenReader(args[0], c.codec)
			if err != nil {
				return err
			}
			defer r.Close()

			out := cmd.OutOrStdout()
			var bad int
			for e, err := range r.All(ctx) {
				var le *eventlog.LineError
				if errors.As(err, &le) {
					if strict {
						return err
					}
					bad++
					c.log.Warn(ctx, "skipping line", logger.String("file", args[0]), logger.Int("line", le.Line), logger.Error(le.Err))
					continue
				}
				if err != nil {
					return err
				}
				if !asJSON {
					fmt.Fprintf(out, "%d\t%s\t%s\n", e.Line, e.Event.Timestamp().Format("15:04:05.000000"), e.Event)
					continue
				}
				line, err := c.codec.Marshal(e.Event)
				if err != nil {
					return fmt.Errorf("line %d: %w", e.Line, err)
				}
				fmt.Fprintln(out, string(line))
			}
			if bad > 0 {
				c.log.Info(ctx, "dump finished with skipped lines", logger.Int("skipped", bad))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print each event as a JSON line")
	cmd.Flags().BoolVar(&strict, "strict", false, "stop at the first undecodable line")
	return cmd
}

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	service "github.com/okian/syncevents/internal/app"
	"github.com/okian/syncevents/internal/testevents"
	"github.com/okian/syncevents/pkg/logger"
)

const stopTimeout = 30 * time.Second

func (c *cli) generateCmd() *cobra.Command {
	tc := testevents.DefaultConfig()
	var out string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Record a synthetic review session into a new log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			opts := []service.Option{
				service.WithConfig(c.cfg),
				service.WithLogger(c.log.Named("recorder")),
			}
			if out != "" {
				opts = append(opts, service.WithPath(out))
			}
			rec := service.New(c.codec, opts...)
			if err := rec.Start(ctx); err != nil {
				return fmt.Errorf("failed to start recorder: %w", err)
			}

			stats, events, runErr := testevents.Run(ctx, tc, rec, c.log.Named("generate"))

			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
			defer cancel()
			if err := errors.Join(runErr, rec.Stop(stopCtx), rec.Err()); err != nil {
				return err
			}

			if tc.Verify {
				if err := testevents.Verify(ctx, rec.Path(), c.codec, events, stats); err != nil {
					return fmt.Errorf("verification failed: %w", err)
				}
				c.log.Info(ctx, "log verified", logger.Int("events", stats.EventsVerified))
			}
			fmt.Fprintln(cmd.OutOrStdout(), rec.Path())
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&tc.Strokes, "strokes", tc.Strokes, "number of annotation strokes")
	f.IntVar(&tc.PointsPerStroke, "points", tc.PointsPerStroke, "paint points per stroke")
	f.IntVar(&tc.Frames, "frames", tc.Frames, "frame changes per clip")
	f.Float64Var(&tc.FrameRate, "rate", tc.FrameRate, "frame rate of generated times")
	f.StringSliceVar(&tc.Media, "media", tc.Media, "clip paths to switch between")
	f.DurationVar(&tc.Step, "step", tc.Step, "time between generated events")
	f.BoolVar(&tc.Verify, "verify", false, "read the log back and compare it with what was generated")
	f.StringVarP(&out, "out", "o", "", "log path (default: a new session file under log_dir)")
	return cmd
}

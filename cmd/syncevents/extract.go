package main

import (
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/syncevents/internal/adapters/eventlog"
	"github.com/okian/syncevents/internal/extract"
	"github.com/okian/syncevents/pkg/logger"
)

const maxConcurrentReads = 4

// extractedMedia is one MediaChange found in a log.
type extractedMedia struct {
	Log  string `json:"log"`
	Line int    `json:"line"`
	extract.Metadata
}

func (c *cli) extractCmd() *cobra.Command {
	var indent bool
	cmd := &cobra.Command{
		Use:   "extract FILE...",
		Short: "Print the shot metadata of every media change in the logs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x := extract.New(extract.WithTokenIndices(c.cfg.PathTokenIndices))
			results := make([][]extractedMedia, len(args))

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(maxConcurrentReads)
			for i, path := range args {
				g.Go(func() error {
					entries, lineErrs, err := eventlog.ReadFile(ctx, path, c.codec)
					if err != nil {
						return err
					}
					if len(lineErrs) > 0 {
						c.log.Warn(ctx, "skipped undecodable lines", logger.String("file", path), logger.Int("count", len(lineErrs)))
					}
					for _, e := range entries {
						md, err := x.FromEvent(e.Event)
						switch {
						case errors.Is(err, extract.ErrNotMediaChange):
							continue
						case err != nil:
							c.log.Warn(ctx, "no metadata for media change", logger.String("file", path), logger.Int("line", e.Line), logger.Error(err))
							continue
						}
						results[i] = append(results[i], extractedMedia{Log: path, Line: e.Line, Metadata: md})
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			all := []extractedMedia{}
			for _, r := range results {
				all = append(all, r...)
			}
			return printJSON(cmd.OutOrStdout(), all, indent)
		},
	}
	cmd.Flags().BoolVar(&indent, "indent", false, "indent the output even when it is not a terminal")
	return cmd
}

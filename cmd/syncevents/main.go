package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/syncevents/internal/config"
	"github.com/okian/syncevents/internal/domain/codec"
	"github.com/okian/syncevents/internal/domain/registry"
	"github.com/okian/syncevents/pkg/logger"
	"github.com/okian/syncevents/pkg/metrics"
)

// errBadLines marks a run that completed but found undecodable lines.
var errBadLines = errors.New("log has undecodable lines")

// cli carries the state shared by every subcommand.
type cli struct {
	logLevel    string
	showMetrics bool

	cfg   *config.Config
	codec *codec.Codec
	log   logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "syncevents <command>",
		Short:         "Inspect and produce review-session event logs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if !c.showMetrics {
				return nil
			}
			return metrics.WriteText(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override the configured log level")
	root.PersistentFlags().BoolVar(&c.showMetrics, "metrics", false, "print metrics to stderr on exit")

	cobra.EnableCommandSorting = false
	root.AddCommand(
		c.kindsCmd(),
		c.dumpCmd(),
		c.validateCmd(),
		c.extractCmd(),
		c.generateCmd(),
	)
	return root
}

// setup loads configuration and prepares the logger and codec.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.InitWithWriter(cmd.ErrOrStderr(), cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	c.log = logger.Get()

	level := cfg.LogLevel
	if c.logLevel != "" {
		level = c.logLevel
	}
	if err := logger.SetLevelString(level); err != nil {
		c.log.Warn(cmd.Context(), "invalid log_level; falling back to info", logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	registry.Init()
	c.cfg = cfg
	c.codec = codec.New(registry.Default(),
		codec.WithCanonical(cfg.CanonicalJSON),
		codec.WithLegacyAliases(cfg.LegacyAliases),
	)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errBadLines) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"runtime"

	"edge-tuner/internal/config"
	"edge-tuner/internal/logger"
	"edge-tuner/internal/shutdown"

	"github.com/spf13/cobra"
)

const appVersion = "0.3.0"

// app carries state shared by every subcommand of one invocation.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg       config.Config
	logger    logger.Logger
	lifecycle *shutdown.Manager
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "edge-tuner",
		Short: "Tune edge feature extraction to separate groups of images",
		Long: `edge-tuner turns images into standardized Laplacian edge maps and searches
for the Gaussian blur and Laplacian kernel sizes that make images of the same
group look alike and images of different groups look different.

Examples:
  edge-tuner search --group cats/a.png,cats/b.png --group dogs/a.png,dogs/b.png
  edge-tuner compare left.png right.png --out display/
  edge-tuner edges a.png b.png --blur 7 --laplacian 5 --out edges/`,
		Version:      appVersion,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "console or json")

	root.AddCommand(newSearchCmd(a), newCompareCmd(a), newEdgesCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	a.cfg = cfg

	level := cfg.LogLevel()
	a.logger = logger.New(cmd.ErrOrStderr(), cfg.Logging.Format, level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a.lifecycle = shutdown.NewManager(ctx, a.logger)
	a.lifecycle.Listen()

	a.logger.Debug("CLI", "starting", map[string]interface{}{
		"command":    cmd.Name(),
		"version":    appVersion,
		"go_version": runtime.Version(),
		"num_cpu":    runtime.NumCPU(),
		"log_level":  level.String(),
	})
	return nil
}

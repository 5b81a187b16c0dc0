package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/chazu/splinter/pkg/config"
	"github.com/chazu/splinter/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "splinter",
	Short: "Split BRep models into colorable components",
	Long: `splinter evaluates a Lisp model description into a boundary
representation and decomposes it into components at a chosen level
(shape, solid, shell or face), escalating through heuristic strategies
when plain topology separates nothing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	cfgFile  string
	logLevel string
	traceOut bool
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&traceOut, "trace", false, "print decomposition spans to stderr")
}

// setup loads the configuration and builds the logger. Logs go to the
// command's error stream so reports on stdout stay parseable.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	opts := cfg.LoggerOptions()
	opts.Writer = cmd.ErrOrStderr()
	return cfg, logging.New(opts), nil
}

// startTracing installs a stdout span exporter writing to the command's
// error stream when --trace is set. The returned func flushes it.
func startTracing(cmd *cobra.Command) (func(context.Context) error, error) {
	if !traceOut {
		return func(context.Context) error { return nil }, nil
	}
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(cmd.ErrOrStderr()),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, fmt.Errorf("create exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

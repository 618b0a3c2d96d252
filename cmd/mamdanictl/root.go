package main

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mamdani/internal/config"
	"mamdani/internal/logging"
	"mamdani/pkg/mamdani"
)

type globalOptions struct {
	configPath string
	store      string
	dbPath     string
	logLevel   string
	resolution int
	workers    int
	output     string
}

// app carries the resolved settings for one invocation.
type app struct {
	opts   globalOptions
	cfg    config.Config
	logger *zap.Logger
	out    *printer
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	a := &app{}
	defaults := config.Default()

	root := &cobra.Command{
		Use:           "mamdanictl",
		Short:         "Evaluate Mamdani fuzzy rule bases",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, stdout)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetOut(stdout)

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.configPath, "config", "", "TOML configuration file")
	flags.StringVar(&a.opts.store, "store", defaults.Store.Kind, "history store backend: memory|sqlite")
	flags.StringVar(&a.opts.dbPath, "db-path", defaults.Store.Path, "sqlite database path")
	flags.StringVar(&a.opts.logLevel, "log-level", defaults.Log.Level, "log level: debug|info|warn|error")
	flags.IntVar(&a.opts.resolution, "resolution", 0, "universe sample count (0 keeps each profile's default)")
	flags.IntVar(&a.opts.workers, "workers", defaults.Engine.Workers, "goroutines sampling rules per evaluation")
	flags.StringVar(&a.opts.output, "output", outputAuto, "output format: auto|json|text")

	root.AddCommand(
		newProfilesCmd(a),
		newEvaluateCmd(a),
		newSignalCmd(a),
		newBatchCmd(a),
		newHistoryCmd(a),
		newBenchCmd(a),
		newMembershipCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, stdout io.Writer) error {
	cfg, err := config.Load(a.opts.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store.Kind = a.opts.store
	}
	if flags.Changed("db-path") {
		cfg.Store.Path = a.opts.dbPath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.opts.logLevel
	}
	if flags.Changed("resolution") {
		cfg.Engine.Resolution = a.opts.resolution
	}
	if flags.Changed("workers") {
		cfg.Engine.Workers = a.opts.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, _, err := logging.New(logging.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		return err
	}
	a.logger = logger

	out, err := newPrinter(stdout, a.opts.output)
	if err != nil {
		return err
	}
	a.out = out
	return nil
}

func (a *app) newClient(reg prometheus.Registerer) (*mamdani.Client, error) {
	client, err := mamdani.New(mamdani.Options{
		StoreKind:  a.cfg.Store.Kind,
		DBPath:     a.cfg.Store.Path,
		Resolution: a.cfg.Engine.Resolution,
		Workers:    a.cfg.Engine.Workers,
		Logger:     a.logger,
		Registerer: reg,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

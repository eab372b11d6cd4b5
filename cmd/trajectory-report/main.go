// Command trajectory-report imports aircraft state vectors and renders
// trajectory plots from files, a SQLite store, or over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/banshee-data/trajectory.report/internal/config"
	"github.com/banshee-data/trajectory.report/internal/monitoring"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	dbPath     string
	configPath string
	logLevel   string
	devLog     bool

	logger *zap.SugaredLogger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "trajectory-report",
		Short: "Aircraft trajectory statistics and plots",
		Long: `trajectory-report resamples aircraft state vectors onto common time grids,
aggregates them into expectation paths with dispersion bands, and renders
density-coloured and shaded plots of quantities and routes.

Examples:
  trajectory-report import flights.csv
  trajectory-report plot --quantity velocity --kind shaded flights.csv
  trajectory-report plot --flight 1b4e28ba-... --flight 6fa459ea-...
  trajectory-report serve --listen :8080`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := monitoring.NewLogger(opts.logLevel, opts.devLog)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.logger = logger
			monitoring.UseZap(logger)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "trajectory.db", "SQLite state-vector store")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "plotting configuration JSON (default: built-in defaults)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&opts.devLog, "dev-log", false, "human-readable console logs")

	cmd.AddCommand(
		newImportCmd(opts),
		newFlightsCmd(opts),
		newPlotCmd(opts),
		newServeCmd(opts),
		newMigrateCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig reads --config, or returns the defaults when it is unset.
func (o *rootOptions) loadConfig() (*config.PlotConfig, error) {
	if o.configPath == "" {
		return config.DefaultPlotConfig(), nil
	}
	cfg, err := config.LoadPlotConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", o.configPath, err)
	}
	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

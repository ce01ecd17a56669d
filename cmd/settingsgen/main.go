// Command settingsgen builds a settings document from covariates.csv and
// data.csv, either as a web form or from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	logLevel string
	logger   = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "settingsgen",
	Short: "Settings Generator for NVflare SSR CSV",
	Long: `settingsgen infers column types from covariates.csv and data.csv and
renders the settings document:

  {"Covariates": {...}, "Dependents": {...}, "Lambda": 0}

Run "settingsgen serve" for the web form or "settingsgen infer" for the CLI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(logLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd, inferCmd, versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "settingsgen %s (built %s)\n", Version, BuildTime)
	},
}

// newLogger builds a production zap logger at the given level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	config.Level = lvl
	return config.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

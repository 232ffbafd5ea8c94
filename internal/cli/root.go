// Package cli defines the cobra command tree for propdesk.
package cli

import (
	"github.com/spf13/cobra"

	"greendrake/propdesk/internal/config"
	"greendrake/propdesk/internal/logging"
)

var (
	flagLogFormat string
	flagLogLevel  string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "propdesk",
		Short:         "Property management API",
		Long:          "A REST API for rental property records: listings, images, captions and inspection, maintenance and marketing notes.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format (text|json); overrides LOG_FORMAT")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug|info|warn|error); overrides LOG_LEVEL")

	root.AddCommand(
		newServeCmd(),
		newEnsureIndexesCmd(),
		newVersionCmd(),
	)

	return root
}

// loadConfig reads the environment, applies flag overrides and installs the logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	logging.Setup(cfg.LogFormat, cfg.LogLevel)
	return cfg, nil
}

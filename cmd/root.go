package cmd

import (
	"fmt"
	"os"

	"visit-tracker/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configDir is where the .env file is looked up.
var configDir string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "visit-tracker",
	Short: "Visit Tracker Service",
	Long: `Visit Tracker turns intersection snapshots into per-user visits.
Each snapshot lists the features a user is inside at one instant; visits are
the intervals during which the user stayed inside a feature.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory containing the .env file")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// debug selects the development preset for readable timestamps
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagLogLevel string
	flagLogFile  string
)

var rootCmd = &cobra.Command{
	Use:   "fingerprint-agent",
	Short: "System and software fingerprinting agent",
	Long: `fingerprint-agent inventories a host's operating system and installed
software, locally or over SSH, and emits a JSON report in which every
reported fact carries the command and raw output that produced it.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (optional)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Also write JSON logs to this file (rotated)")
}

// Execute runs the root command.
func Execute(version string) {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

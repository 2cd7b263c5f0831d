package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/apatole-r7/fingerprint-agent/internal/config"
	"github.com/apatole-r7/fingerprint-agent/internal/logging"
	"github.com/apatole-r7/fingerprint-agent/internal/report"
	"github.com/apatole-r7/fingerprint-agent/internal/scan"
	"github.com/apatole-r7/fingerprint-agent/internal/ssh"
)

var (
	flagMode        string
	flagTarget      string
	flagKeyFile     string
	flagTargets     string
	flagOutput      string
	flagTimeout     time.Duration
	flagScanTimeout time.Duration
	flagConcurrency int
	flagPretty      bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a fingerprinting scan and write the report",
	Long: `Run a single point-in-time scan. Local mode executes detection commands
on this machine; remote mode runs them over SSH against --target.

The report is written to --output (default fingerprint_<timestamp>.json)
and printed to stdout.`,
	Example: `  fingerprint-agent scan
  fingerprint-agent scan --targets software_targets.json --output scan.json
  fingerprint-agent scan --mode remote --target admin@10.0.0.5 --key-file ~/.ssh/id_ed25519`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&flagMode, "mode", "local", "Scan mode: local or remote")
	scanCmd.Flags().StringVar(&flagTarget, "target", "", "Remote target as [user@]host[:port]")
	scanCmd.Flags().StringVar(&flagKeyFile, "key-file", "", "SSH private key file (remote mode)")
	scanCmd.Flags().StringVar(&flagTargets, "targets", "", "Software target catalog (JSON or YAML)")
	scanCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Report output path")
	scanCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "Per-command timeout")
	scanCmd.Flags().DurationVar(&flagScanTimeout, "scan-timeout", 0, "Whole-scan deadline (0 = none)")
	scanCmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Concurrent software probes (default 1)")
	scanCmd.Flags().BoolVar(&flagPretty, "pretty", true, "Pretty-print the report JSON")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	applyFlags(cfg)

	log, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer log.Sync()

	opts := scan.Options{
		Mode:           scan.ModeLocal,
		Targets:        config.LoadTargets(cfg.TargetsPath, log),
		CommandTimeout: cfg.CommandTimeout,
		ScanTimeout:    cfg.ScanTimeout,
		Concurrency:    cfg.Concurrency,
		AgentVersion:   rootCmd.Version,
		Logger:         log,
	}

	if flagMode == string(scan.ModeRemote) {
		if flagTarget == "" {
			return fmt.Errorf("--target is required for remote mode")
		}
		target, err := ssh.ParseTarget(flagTarget)
		if err != nil {
			return err
		}
		opts.Mode = scan.ModeRemote
		opts.Target = target
		opts.KeyFile = flagKeyFile
	} else if flagMode != string(scan.ModeLocal) {
		return fmt.Errorf("invalid mode %q (expected local or remote)", flagMode)
	}

	rep, err := scan.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	output := cfg.OutputPath
	if output == "" {
		output = report.DefaultFilename(rep.AgentMetadata.Timestamp)
	}
	if err := rep.Write(output, flagPretty); err != nil {
		return err
	}
	log.Info("report written", zap.String("path", output))

	data, err := rep.Encode(flagPretty)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}

// applyFlags lets explicit CLI flags override file/env configuration.
func applyFlags(cfg *config.Config) {
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if flagLogFile != "" {
		cfg.LogFile = flagLogFile
	}
	if flagTargets != "" {
		cfg.TargetsPath = flagTargets
	}
	if flagOutput != "" {
		cfg.OutputPath = flagOutput
	}
	if flagTimeout > 0 {
		cfg.CommandTimeout = flagTimeout
	}
	if flagScanTimeout > 0 {
		cfg.ScanTimeout = flagScanTimeout
	}
	if flagConcurrency > 0 {
		cfg.Concurrency = flagConcurrency
	}
}

package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	logLevel   string
	method     string
	delta      float64
	bandwidth  string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cfg := NewDefaultConfig()

	cmd := &cobra.Command{
		Use:   "unshrink",
		Short: "Correct systematic bias in model predictions",
		Long: "unshrink fits a debiaser on a calibration set of (prediction, target) pairs and applies\n" +
			"it to new predictions so cohort means and treatment effects track the true targets.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			*cfg = *loaded

			level, err := parseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}
	cmd.Version = version

	f := cmd.PersistentFlags()
	f.StringVar(&flags.configPath, "config", "", "Path to a YAML config file")
	f.StringVar(&flags.logLevel, "log-level", DefaultLogLevel, "Log level (debug, info, warn, error)")
	f.StringVar(&flags.method, "method", DefaultMethod, "Debiasing method (lcc, tweedie)")
	f.Float64Var(&flags.delta, "delta", DefaultDelta, "Finite difference step for the tweedie score")
	f.StringVar(&flags.bandwidth, "bandwidth", DefaultBandwidth, "Kernel bandwidth rule for tweedie (scott, silverman)")

	cmd.AddCommand(newEvaluateCmd(cfg))
	cmd.AddCommand(newATECmd(cfg))
	cmd.AddCommand(newSimulateCmd())
	return cmd
}

// resolveConfig loads the config file if one was given and then applies any flags that were set
// explicitly on the command line
func resolveConfig(cmd *cobra.Command, flags *rootFlags) (*Config, error) {
	cfg := NewDefaultConfig()
	if flags.configPath != "" {
		var err error
		cfg, err = LoadConfig(flags.configPath)
		if err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	if f.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if f.Changed("method") {
		cfg.Method = flags.method
	}
	if f.Changed("delta") {
		cfg.Delta = flags.delta
	}
	if f.Changed("bandwidth") {
		cfg.Bandwidth = flags.bandwidth
	}
	return cfg.Validate()
}

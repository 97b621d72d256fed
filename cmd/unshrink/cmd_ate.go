package main

import (
	"fmt"
	"log/slog"

	"github.com/aouyang1/go-unshrink"
	"github.com/aouyang1/go-unshrink/stats"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type ateFlags struct {
	calibration      string
	sigmaCalibration string
	treated          string
	control          string
}

// ateResult reports the treatment effect before and after debiasing
type ateResult struct {
	ATE      float64 `json:"ate"`
	NaiveATE float64 `json:"naive_ate"`
	Treated  int     `json:"treated_size"`
	Control  int     `json:"control_size"`
	Weighted bool    `json:"weighted"`
}

func newATECmd(cfg *Config) *cobra.Command {
	flags := &ateFlags{}
	cmd := &cobra.Command{
		Use:   "ate",
		Short: "Estimate a debiased average treatment effect",
		Long: "ATE fits the configured debiaser on the calibration file and reports the difference\n" +
			"between the debiased treated and control means. Cohort files are csv with a prediction\n" +
			"column and an optional weight column holding IPTW weights.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runATE(cmd, cfg, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.calibration, "calibration", "", "Calibration csv with prediction and target columns")
	f.StringVar(&flags.sigmaCalibration, "sigma-calibration", "", "Optional csv used only to estimate the tweedie residual sigma")
	f.StringVar(&flags.treated, "treated", "", "Treated cohort csv with prediction and optional weight columns")
	f.StringVar(&flags.control, "control", "", "Control cohort csv with prediction and optional weight columns")
	cmd.MarkFlagRequired("calibration")
	cmd.MarkFlagRequired("treated")
	cmd.MarkFlagRequired("control")
	return cmd
}

func runATE(cmd *cobra.Command, cfg *Config, flags *ateFlags) error {
	cal, err := readPairs(flags.calibration)
	if err != nil {
		return err
	}
	treated, wTreated, err := readCohort(flags.treated)
	if err != nil {
		return err
	}
	control, wControl, err := readCohort(flags.control)
	if err != nil {
		return err
	}

	d, err := cfg.NewDebiaser()
	if err != nil {
		return err
	}
	if err := fit(d, unshrink.Float64s(cal.Predictions), unshrink.Float64s(cal.Targets), flags.sigmaCalibration); err != nil {
		return err
	}

	ate, err := d.DebiasedATE(unshrink.Float64s(treated), unshrink.Float64s(control), vectorOrNil(wTreated), vectorOrNil(wControl))
	if err != nil {
		return err
	}
	naive, err := stats.ATE(treated, control, wTreated, wControl)
	if err != nil {
		return fmt.Errorf("unable to compute naive treatment effect, %w", err)
	}
	slog.Info("estimated treatment effect", "method", cfg.Method, "ate", ate, "naive_ate", naive)

	res := ateResult{
		ATE:      ate,
		NaiveATE: naive,
		Treated:  len(treated),
		Control:  len(control),
		Weighted: wTreated != nil || wControl != nil,
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// vectorOrNil keeps absent weights as a nil interface so they are treated as uniform
func vectorOrNil(w []float64) unshrink.Vector {
	if w == nil {
		return nil
	}
	return unshrink.Float64s(w)
}

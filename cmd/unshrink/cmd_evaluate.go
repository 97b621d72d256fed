package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aouyang1/go-unshrink"
	"github.com/aouyang1/go-unshrink/stats"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

const (
	FormatJSON  = "json"
	FormatTable = "table"
)

// evaluateResult adds per unit accuracy of the raw and debiased predictions to the evaluation
type evaluateResult struct {
	*unshrink.Evaluation
	RawScores      *stats.Scores `json:"raw_scores"`
	DebiasedScores *stats.Scores `json:"debiased_scores"`
}

type evaluateFlags struct {
	calibration      string
	sigmaCalibration string
	evaluation       string
	plot             string
	format           string
}

func newEvaluateCmd(cfg *Config) *cobra.Command {
	flags := &evaluateFlags{}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Compare naive and debiased means of a labeled cohort",
		Long: "Evaluate fits the configured debiaser on the calibration file and reports the true,\n" +
			"naive and debiased means of the evaluation file along with the absolute bias of each.\n" +
			"Both files are csv with prediction and target columns.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd, cfg, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.calibration, "calibration", "", "Calibration csv with prediction and target columns")
	f.StringVar(&flags.sigmaCalibration, "sigma-calibration", "", "Optional csv used only to estimate the tweedie residual sigma")
	f.StringVar(&flags.evaluation, "evaluation", "", "Evaluation csv with prediction and target columns")
	f.StringVar(&flags.plot, "plot", "", "Write an html calibration plot to this path")
	f.StringVar(&flags.format, "format", FormatJSON, "Output format (json, table)")
	cmd.MarkFlagRequired("calibration")
	cmd.MarkFlagRequired("evaluation")
	return cmd
}

func runEvaluate(cmd *cobra.Command, cfg *Config, flags *evaluateFlags) error {
	if flags.format != FormatJSON && flags.format != FormatTable {
		return fmt.Errorf("unknown output format %q", flags.format)
	}

	cal, err := readPairs(flags.calibration)
	if err != nil {
		return err
	}
	eval, err := readPairs(flags.evaluation)
	if err != nil {
		return err
	}

	d, err := cfg.NewDebiaser()
	if err != nil {
		return err
	}
	calP, calT := unshrink.Float64s(cal.Predictions), unshrink.Float64s(cal.Targets)
	if err := fit(d, calP, calT, flags.sigmaCalibration); err != nil {
		return err
	}
	evalP := unshrink.Float64s(eval.Predictions)
	res, err := unshrink.EvaluateFitted(d, evalP, unshrink.Float64s(eval.Targets))
	if err != nil {
		return err
	}
	debiased, err := d.DebiasedPredictions(evalP)
	if err != nil {
		return err
	}
	rawScores, err := stats.NewScores(eval.Predictions, eval.Targets)
	if err != nil {
		return fmt.Errorf("unable to score raw predictions, %w", err)
	}
	debiasedScores, err := stats.NewScores(debiased, eval.Targets)
	if err != nil {
		return fmt.Errorf("unable to score debiased predictions, %w", err)
	}
	slog.Info("evaluated debiaser", "method", cfg.Method, "calibration_size", cal.Len(), "evaluation_size", eval.Len())

	if flags.plot != "" {
		file, err := os.Create(flags.plot)
		if err != nil {
			return err
		}
		defer file.Close()
		if err := unshrink.PlotCalibration(file, d, calP, calT); err != nil {
			return fmt.Errorf("unable to plot calibration, %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if flags.format == FormatTable {
		if err := res.TablePrint(out); err != nil {
			return err
		}
		_, err := fmt.Fprintf(out, "MSE raw: %.5f    MSE debiased: %.5f\n", rawScores.MSE, debiasedScores.MSE)
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(evaluateResult{
		Evaluation:     res,
		RawScores:      rawScores,
		DebiasedScores: debiasedScores,
	})
}

// fit fits the debiaser on the calibration set. A sigma calibration file is only understood by
// the tweedie method.
func fit(d unshrink.Debiaser, calP, calT unshrink.Vector, sigmaPath string) error {
	if sigmaPath == "" {
		return d.Fit(calP, calT)
	}
	tw, ok := d.(*unshrink.Tweedie)
	if !ok {
		return fmt.Errorf("--sigma-calibration requires the %s method", MethodTweedie)
	}
	sigmaSet, err := readPairs(sigmaPath)
	if err != nil {
		return err
	}
	return tw.FitWithSigma(calP, calT, unshrink.Float64s(sigmaSet.Predictions), unshrink.Float64s(sigmaSet.Targets))
}

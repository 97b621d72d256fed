package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/aouyang1/go-unshrink/simulate"
	"github.com/spf13/cobra"
)

type simulateFlags struct {
	n          int
	seed       uint64
	targetMean float64
	targetStd  float64
	noise      float64
	shrink     float64
	priorMean  float64
	output     string
}

func newSimulateCmd() *cobra.Command {
	flags := &simulateFlags{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate a synthetic prediction,target csv",
		Long: "Simulate draws normal targets, observes each with gaussian noise and shrinks the\n" +
			"observation toward a prior mean to mimic a regularized model's predictions.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulate(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.IntVar(&flags.n, "n", 1000, "Number of rows to generate")
	f.Uint64Var(&flags.seed, "seed", 1, "Random seed")
	f.Float64Var(&flags.targetMean, "target-mean", 0.0, "Mean of the generated targets")
	f.Float64Var(&flags.targetStd, "target-std", 1.0, "Standard deviation of the generated targets")
	f.Float64Var(&flags.noise, "noise", 1.0, "Standard deviation of the observation noise")
	f.Float64Var(&flags.shrink, "shrink", 0.5, "Fraction of each observation kept after shrinking toward the prior mean")
	f.Float64Var(&flags.priorMean, "prior-mean", 0.0, "Mean the predictions are shrunk toward")
	f.StringVarP(&flags.output, "output", "o", "", "Output csv path, stdout if empty")
	return cmd
}

func runSimulate(cmd *cobra.Command, flags *simulateFlags) error {
	rng := simulate.NewRand(flags.seed)
	targets := simulate.GenerateNormal(rng, flags.n, flags.targetMean, flags.targetStd)
	d := simulate.GenerateShrunk(rng, targets, flags.noise, flags.shrink, flags.priorMean)

	var w io.Writer = cmd.OutOrStdout()
	if flags.output != "" {
		file, err := os.Create(flags.output)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	slog.Debug("simulated dataset", "n", d.Len(), "seed", flags.seed, "shrink", flags.shrink, "noise", flags.noise)
	return writePairs(w, d)
}

package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mamdani/pkg/mamdani"
)

func newBenchCmd(a *app) *cobra.Command {
	var (
		iterations int
		seed       int64
	)
	cmd := &cobra.Command{
		Use:   "bench <profile>",
		Short: "Measure evaluation latency with random inputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient(nil)
			if err != nil {
				return err
			}
			defer client.Close()

			report, err := client.Bench(cmd.Context(), mamdani.BenchRequest{Profile: args[0], Iterations: iterations, Seed: seed})
			if err != nil {
				return err
			}
			if a.out.JSON() {
				return a.out.Encode(report)
			}
			a.out.Printf("profile=%s iterations=%s resolution=%d workers=%d seed=%d\n",
				report.Profile, humanize.Comma(int64(report.Iterations)), report.Resolution, report.Workers, report.Seed)
			a.out.Printf("latency p50=%s p90=%s p99=%s max=%s mean=%s\n",
				report.Latency.P50, report.Latency.P90, report.Latency.P99, report.Latency.Max, report.Latency.Mean)
			a.out.Printf("throughput=%s evals/s elapsed=%s\n",
				humanize.CommafWithDigits(report.Throughput(), 1), report.Elapsed)
			a.out.Printf("scores mean=%.4f std=%.4f min=%.4f max=%.4f fallbacks=%d\n",
				report.Scores.Mean, report.Scores.StdDev, report.Scores.Min, report.Scores.Max, report.Scores.Fallbacks)
			return nil
		},
	}
	cmd.Flags().IntVar(&iterations, "iterations", 1000, "number of evaluations")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random input seed")
	return cmd
}

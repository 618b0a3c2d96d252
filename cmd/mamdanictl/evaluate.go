package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"mamdani/internal/dataextract"
	"mamdani/pkg/mamdani"
)

func newProfilesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List built-in rule bases",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			client, err := a.newClient(nil)
			if err != nil {
				return err
			}
			defer client.Close()

			items, err := client.Profiles()
			if err != nil {
				return err
			}
			if a.out.JSON() {
				return a.out.Encode(items)
			}
			for _, item := range items {
				a.out.Printf("%s: %s\n  inputs=%s output=%s labels=%s\n",
					item.Name, item.Description,
					strings.Join(item.Inputs, ","), item.Output, strings.Join(item.Labels, ","))
			}
			return nil
		},
	}
}

func newEvaluateCmd(a *app) *cobra.Command {
	var (
		pairs     []string
		ephemeral bool
		explain   bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate <profile> --input name=value...",
		Short: "Evaluate a profile with crisp inputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := parseInputs(pairs)
			if err != nil {
				return err
			}
			client, err := a.newClient(nil)
			if err != nil {
				return err
			}
			defer client.Close()

			out, err := client.Evaluate(cmd.Context(), mamdani.EvaluateRequest{
				Profile:   args[0],
				Inputs:    inputs,
				Ephemeral: ephemeral,
			})
			if err != nil {
				return err
			}
			return a.printEvaluation(out, explain)
		},
	}
	cmd.Flags().StringArrayVarP(&pairs, "input", "i", nil, "crisp input as name=value (repeatable)")
	cmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "do not record the evaluation in history")
	cmd.Flags().BoolVar(&explain, "explain", false, "print rule strengths and term memberships")
	return cmd
}

func newSignalCmd(a *app) *cobra.Command {
	var (
		prices     []float64
		pricesFile string
		column     string
		ephemeral  bool
		explain    bool
	)
	cmd := &cobra.Command{
		Use:   "signal --prices p1,p2,... | --prices-file prices.csv",
		Short: "Derive trading indicators from a price series and evaluate the trading profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pricesFile != "" {
				if len(prices) > 0 {
					return errors.New("--prices and --prices-file are mutually exclusive")
				}
				series, err := readPriceFile(pricesFile, column)
				if err != nil {
					return err
				}
				prices = series
			}
			if len(prices) < 2 {
				return errors.New("at least two prices are required")
			}
			client, err := a.newClient(nil)
			if err != nil {
				return err
			}
			defer client.Close()

			out, err := client.Signal(cmd.Context(), mamdani.SignalRequest{Prices: prices, Ephemeral: ephemeral})
			if err != nil {
				return err
			}
			return a.printEvaluation(out, explain)
		},
	}
	cmd.Flags().Float64SliceVar(&prices, "prices", nil, "price series, oldest first")
	cmd.Flags().StringVar(&pricesFile, "prices-file", "", "CSV file with a header row, oldest row first")
	cmd.Flags().StringVar(&column, "column", "", "price column in --prices-file (default: last column)")
	cmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "do not record the evaluation in history")
	cmd.Flags().BoolVar(&explain, "explain", false, "print rule strengths and term memberships")
	return cmd
}

func (a *app) printEvaluation(out mamdani.Evaluation, explain bool) error {
	if a.out.JSON() {
		if !explain {
			out.Strengths = nil
			out.Terms = nil
		}
		return a.out.Encode(out)
	}
	id := out.ID
	if id == "" {
		id = "n/a"
	}
	a.out.Printf("profile=%s score=%.6f label=%s degree=%.4f fired=%t id=%s\n",
		out.Profile, out.Score, out.Label, out.Degree, out.Fired, id)
	a.out.Printf("inputs: %s\n", formatInputs(out.Inputs))
	a.out.Printf("advice: %s\n", out.Advice)
	if explain {
		for i, s := range out.Strengths {
			a.out.Printf("rule[%d] strength=%.4f\n", i, s)
		}
		labels := make([]string, 0, len(out.Terms))
		for label := range out.Terms {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			a.out.Printf("term %s=%.4f\n", label, out.Terms[label])
		}
	}
	return nil
}

func readPriceFile(path, column string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	prices, err := dataextract.ReadSeries(f, dataextract.SeriesOptions{HasHeader: true, ColumnName: column, ColumnIndex: -1})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prices, nil
}

func parseInputs(pairs []string) (map[string]float64, error) {
	raw := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid input %q: expected name=value", pair)
		}
		raw[name] = strings.TrimSpace(value)
	}
	return mamdani.CoerceInputs(raw)
}

func formatInputs(inputs map[string]float64) string {
	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + cast.ToString(inputs[name])
	}
	return strings.Join(parts, " ")
}

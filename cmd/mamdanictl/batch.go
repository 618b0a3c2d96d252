package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mamdani/internal/dataextract"
	"mamdani/pkg/mamdani"
)

// batchFile is the YAML layout accepted by `mamdanictl batch`:
//
//	evaluations:
//	  - name: oversold
//	    profile: trading
//	    inputs: {rsi: 20, macd_histogram: 1, volatility: 0.05}
//	  - name: from-prices
//	    prices: [101, 102, 99.5, 103]
type batchFile struct {
	Ephemeral   bool        `yaml:"ephemeral"`
	Evaluations []batchItem `yaml:"evaluations"`
}

type batchItem struct {
	Name    string         `yaml:"name"`
	Profile string         `yaml:"profile"`
	Inputs  map[string]any `yaml:"inputs"`
	Prices  []float64      `yaml:"prices"`
}

type batchResult struct {
	Name       string              `json:"name,omitempty"`
	Evaluation *mamdani.Evaluation `json:"evaluation,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// loadBatch accepts the batchFile YAML layout, or a CSV file whose header names
// the inputs of profile.
func loadBatch(path, profile string) (batchFile, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return loadCSVBatch(path, profile)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return batchFile{}, err
	}
	var file batchFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return batchFile{}, fmt.Errorf("decode batch %s: %w", path, err)
	}
	if len(file.Evaluations) == 0 {
		return batchFile{}, fmt.Errorf("batch %s: no evaluations", path)
	}
	return file, nil
}

func loadCSVBatch(path, profile string) (batchFile, error) {
	if profile == "" {
		return batchFile{}, fmt.Errorf("batch %s: --profile is required for CSV input", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return batchFile{}, err
	}
	defer f.Close()

	rows, err := dataextract.ReadInputRows(f)
	if err != nil {
		return batchFile{}, fmt.Errorf("batch %s: %w", path, err)
	}
	file := batchFile{Evaluations: make([]batchItem, len(rows))}
	for i, row := range rows {
		inputs := make(map[string]any, len(row))
		for k, v := range row {
			inputs[k] = v
		}
		file.Evaluations[i] = batchItem{Name: fmt.Sprintf("row %d", i+1), Profile: profile, Inputs: inputs}
	}
	return file, nil
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		profile   string
		ephemeral bool
	)
	cmd := &cobra.Command{
		Use:   "batch <file.yaml|file.csv>",
		Short: "Evaluate every entry of a YAML or CSV batch file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := loadBatch(args[0], profile)
			if err != nil {
				return err
			}
			client, err := a.newClient(nil)
			if err != nil {
				return err
			}
			defer client.Close()

			if ephemeral {
				file.Ephemeral = true
			}
			results := make([]batchResult, 0, len(file.Evaluations))
			failed := 0
			for i, item := range file.Evaluations {
				name := item.Name
				if name == "" {
					name = fmt.Sprintf("#%d", i+1)
				}
				out, err := evaluateBatchItem(cmd, client, item, file.Ephemeral)
				if err != nil {
					failed++
					results = append(results, batchResult{Name: name, Error: err.Error()})
					continue
				}
				results = append(results, batchResult{Name: name, Evaluation: &out})
			}

			if a.out.JSON() {
				if err := a.out.Encode(results); err != nil {
					return err
				}
			} else {
				for _, r := range results {
					if r.Error != "" {
						a.out.Printf("%s: error: %s\n", r.Name, r.Error)
						continue
					}
					a.out.Printf("%s: profile=%s score=%.6f label=%s fired=%t\n",
						r.Name, r.Evaluation.Profile, r.Evaluation.Score, r.Evaluation.Label, r.Evaluation.Fired)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d evaluations failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "profile for CSV batches")
	cmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "do not record the evaluations in history")
	return cmd
}

func evaluateBatchItem(cmd *cobra.Command, client *mamdani.Client, item batchItem, ephemeral bool) (mamdani.Evaluation, error) {
	if len(item.Prices) > 0 {
		if item.Profile != "" && item.Profile != "trading" {
			return mamdani.Evaluation{}, fmt.Errorf("prices are only supported by the trading profile, got %s", item.Profile)
		}
		return client.Signal(cmd.Context(), mamdani.SignalRequest{Prices: item.Prices, Ephemeral: ephemeral})
	}
	if item.Profile == "" {
		return mamdani.Evaluation{}, fmt.Errorf("profile is required")
	}
	inputs, err := mamdani.CoerceInputs(item.Inputs)
	if err != nil {
		return mamdani.Evaluation{}, err
	}
	return client.Evaluate(cmd.Context(), mamdani.EvaluateRequest{Profile: item.Profile, Inputs: inputs, Ephemeral: ephemeral})
}

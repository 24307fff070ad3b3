package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dropcast/internal/engine"
	"dropcast/internal/visuals"
)

var (
	runPreset     string
	runFile       string
	runSeed       uint32
	runTrials     int
	runThresholds []float64
	runJSON       bool
	runCharts     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation and print the result",
	Long: `Run executes a single Monte Carlo simulation from a preset or a JSON
parameter file and prints the summary to stdout. Pass --json for the full
machine-readable result, --charts for Mermaid charts alongside the summary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := loadParameters(runPreset, runFile)
		if err != nil {
			return err
		}
		seed := seedOverride(cmd.Flags().Changed("seed"), runSeed)
		params = applyOverrides(params, seed, runTrials, cfg.DefaultTrials)

		thresholds := runThresholds
		if thresholds == nil {
			thresholds = cfg.Thresholds
		}

		result, err := engine.Run(params, engine.RunOptions{Thresholds: thresholds})
		if err != nil {
			return err
		}

		if runJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		printResult(result)
		if runCharts || cfg.EnableMermaidCharts {
			fmt.Println()
			fmt.Println(visuals.GeneratePayoutHistogram(result.Histogram))
			fmt.Println()
			fmt.Println(visuals.GeneratePercentileLadder(result.Stats))
			fmt.Println()
			fmt.Println(visuals.GenerateThresholdChart(result.ThresholdProbabilities))
		}
		return nil
	},
}

func printResult(res engine.Result) {
	fmt.Printf("kind:        %s\n", res.Kind)
	fmt.Printf("seed:        %d\n", res.Seed)
	fmt.Printf("median:      $%.2f\n", res.Stats.Median)
	fmt.Printf("mean:        $%.2f\n", res.Stats.Mean)
	fmt.Printf("p5 / p95:    $%.2f / $%.2f\n", res.Stats.P5, res.Stats.P95)
	fmt.Printf("p25 / p75:   $%.2f / $%.2f\n", res.Stats.P25, res.Stats.P75)
	fmt.Printf("worst/best:  $%.2f / $%.2f\n", res.WorstCase, res.BestCase)
	if res.Stats.StdDev > 0 {
		fmt.Printf("std dev:     $%.2f\n", res.Stats.StdDev)
	}
	for _, tp := range res.ThresholdProbabilities {
		fmt.Printf("P(>= $%.2f): %.1f%%\n", tp.Threshold, tp.Probability*100)
	}
	fmt.Printf("took:        %.0f ms\n", res.ExecutionTimeMs)
}

func init() {
	runCmd.Flags().StringVar(&runPreset, "preset", "", "Name of a preset to run")
	runCmd.Flags().StringVar(&runFile, "file", "", "Path to a JSON parameter file ({kind, params})")
	runCmd.Flags().Uint32Var(&runSeed, "seed", 0, "Override the RNG seed")
	runCmd.Flags().IntVar(&runTrials, "trials", 0, "Override the number of trials")
	runCmd.Flags().Float64SliceVar(&runThresholds, "thresholds", nil, "Payout thresholds for exceedance probabilities")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "Print the full result as JSON")
	runCmd.Flags().BoolVar(&runCharts, "charts", false, "Print Mermaid charts with the summary")
}

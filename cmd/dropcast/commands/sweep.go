package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"dropcast/internal/engine"
	"dropcast/internal/stats"
)

var (
	sweepPreset string
	sweepFile   string
	sweepSeed   uint32
	sweepRuns   int
	sweepTrials int
	sweepJSON   bool
)

// sweepRow is one seed's summary line.
type sweepRow struct {
	Seed   uint32  `json:"seed"`
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	P5     float64 `json:"p5"`
	P95    float64 `json:"p95"`
}

// sweepOutput aggregates the per-seed rows with the spread of their
// medians, the quick gauge of how much sampling error the trial count
// leaves behind.
type sweepOutput struct {
	Runs         []sweepRow `json:"runs"`
	MedianLow    float64    `json:"medianLow"`
	MedianHigh   float64    `json:"medianHigh"`
	MedianStdDev float64    `json:"medianStdDev"`
	SpreadPct    float64    `json:"spreadPct"`
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Re-run the same parameters across many seeds",
	Long: `Sweep runs the same simulation under consecutive seeds, in parallel, and
reports how stable the headline numbers are. A wide median spread means
the trial count is too low for the distribution being sampled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := loadParameters(sweepPreset, sweepFile)
		if err != nil {
			return err
		}
		if sweepRuns < 2 {
			return fmt.Errorf("--runs must be at least 2, got %d", sweepRuns)
		}

		rows := make([]sweepRow, sweepRuns)
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i := 0; i < sweepRuns; i++ {
			g.Go(func() error {
				seed := sweepSeed + uint32(i)
				p := applyOverrides(params, &seed, sweepTrials, cfg.DefaultTrials)
				res, err := engine.Run(p, engine.RunOptions{})
				if err != nil {
					return fmt.Errorf("seed %d: %w", seed, err)
				}
				rows[i] = sweepRow{
					Seed:   res.Seed,
					Median: res.Stats.Median,
					Mean:   res.Stats.Mean,
					P5:     res.Stats.P5,
					P95:    res.Stats.P95,
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		out := summarizeSweep(rows)
		if sweepJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		fmt.Printf("%-10s  %12s  %12s  %12s  %12s\n", "seed", "median", "mean", "p5", "p95")
		for _, r := range out.Runs {
			fmt.Printf("%-10d  %12.2f  %12.2f  %12.2f  %12.2f\n", r.Seed, r.Median, r.Mean, r.P5, r.P95)
		}
		fmt.Printf("\nmedian range: $%.2f .. $%.2f (std dev $%.2f, spread %.2f%%)\n",
			out.MedianLow, out.MedianHigh, out.MedianStdDev, out.SpreadPct)
		return nil
	},
}

func summarizeSweep(rows []sweepRow) sweepOutput {
	medians := make([]float64, len(rows))
	for i, r := range rows {
		medians[i] = r.Median
	}
	sample := stats.NewSample(medians)
	sum := sample.Summarize(true)

	spread := 0.0
	if sum.Median > 0 {
		spread = (sum.Max - sum.Min) / sum.Median * 100
	}
	return sweepOutput{
		Runs:         rows,
		MedianLow:    sum.Min,
		MedianHigh:   sum.Max,
		MedianStdDev: sum.StdDev,
		SpreadPct:    spread,
	}
}

func init() {
	sweepCmd.Flags().StringVar(&sweepPreset, "preset", "", "Name of a preset to run")
	sweepCmd.Flags().StringVar(&sweepFile, "file", "", "Path to a JSON parameter file ({kind, params})")
	sweepCmd.Flags().Uint32Var(&sweepSeed, "seed", 1, "First seed; runs use seed, seed+1, ...")
	sweepCmd.Flags().IntVar(&sweepRuns, "runs", 16, "Number of seeds to run")
	sweepCmd.Flags().IntVar(&sweepTrials, "trials", 0, "Override the number of trials per run")
	sweepCmd.Flags().BoolVar(&sweepJSON, "json", false, "Print the sweep as JSON")
}

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"dropcast/internal/engine"
	"dropcast/internal/preview"
	"dropcast/internal/report"
)

var (
	reportPreset     string
	reportFile       string
	reportSeed       uint32
	reportTrials     int
	reportThresholds []float64
	reportTitle      string
	reportOut        string
	reportOpen       bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a single-run HTML report",
	Long: `Report runs one simulation, renders a self-contained HTML page with the
summary, payout histogram, threshold table, and sampling density charts,
and writes it under the configured report directory (or --out).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := loadParameters(reportPreset, reportFile)
		if err != nil {
			return err
		}
		seed := seedOverride(cmd.Flags().Changed("seed"), reportSeed)
		params = applyOverrides(params, seed, reportTrials, cfg.DefaultTrials)

		thresholds := reportThresholds
		if thresholds == nil {
			thresholds = cfg.Thresholds
		}

		result, err := engine.Run(params, engine.RunOptions{Thresholds: thresholds})
		if err != nil {
			return err
		}
		density, err := preview.ForParameters(params, 0)
		if err != nil {
			return err
		}

		title := reportTitle
		if title == "" && reportPreset != "" {
			title = fmt.Sprintf("Airdrop Payout Forecast: %s", reportPreset)
		}
		page, err := report.Build(report.Data{Title: title, Result: result, Density: density})
		if err != nil {
			return err
		}

		out := reportOut
		if out == "" {
			name := fmt.Sprintf("dropcast-%s.html", time.Now().Format("20060102-150405"))
			out = filepath.Join(cfg.ReportDir, name)
		}
		if err := os.WriteFile(out, page, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}

		log.Info().Str("path", out).Msg("Report written")
		fmt.Println(out)

		if reportOpen {
			if err := browser.OpenFile(out); err != nil {
				log.Warn().Err(err).Msg("Could not open browser")
			}
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportPreset, "preset", "", "Name of a preset to run")
	reportCmd.Flags().StringVar(&reportFile, "file", "", "Path to a JSON parameter file ({kind, params})")
	reportCmd.Flags().Uint32Var(&reportSeed, "seed", 0, "Override the RNG seed")
	reportCmd.Flags().IntVar(&reportTrials, "trials", 0, "Override the number of trials")
	reportCmd.Flags().Float64SliceVar(&reportThresholds, "thresholds", nil, "Payout thresholds for exceedance probabilities")
	reportCmd.Flags().StringVar(&reportTitle, "title", "", "Report title")
	reportCmd.Flags().StringVar(&reportOut, "out", "", "Output file (defaults into the report directory)")
	reportCmd.Flags().BoolVar(&reportOpen, "open", false, "Open the report in the default browser")
}

package commands

import (
	"dropcast/internal/config"
	"dropcast/internal/logging"
	"dropcast/internal/mcp"
	"dropcast/internal/presets"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version info, set via ldflags at build time
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var (
	verbose bool
	cfg     *config.AppConfig
	library *presets.Loader
)

var rootCmd = &cobra.Command{
	Use:   "dropcast",
	Short: "Monte Carlo payout forecaster for token airdrops",
	Long: `Dropcast estimates what an airdrop allocation could be worth. It samples
fully diluted valuations and drop shares from configurable distributions,
runs the payout arithmetic across many trials, and reports percentiles,
histograms, and threshold probabilities.

Without a subcommand it serves the Model Context Protocol over stdio so
that MCP clients can validate parameters and run simulations as tools.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Configuration did not load")
		}

		library = presets.NewLoader(cfg.PresetsDir)

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Msg("Dropcast starting")
	},
	Run: func(cmd *cobra.Command, args []string) {
		log.Info().Msg("Serving MCP over stdio")

		server := mcp.NewServer(cfg, library)
		if err := server.Serve(); err != nil {
			log.Fatal().Err(err).Msg("MCP server terminated")
		}

		log.Info().Msg("MCP server shut down")
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(presetsCmd)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig carries the resolved runtime settings shared by the CLI and
// the MCP server.
type AppConfig struct {
	DataPath            string
	LogDir              string
	PresetsDir          string
	ReportDir           string
	DefaultTrials       int
	Thresholds          []float64
	EnableMermaidCharts bool
}

// Load resolves settings from .env files and the environment. It also
// creates the directories the settings point at.
func Load() (*AppConfig, error) {
	// The binary's own directory wins. MCP hosts launch the server with
	// an arbitrary working directory.
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded .env next to the binary")
		}
	}

	// Then the working directory, which covers go run during development.
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env in the working directory")
	}

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	presetsDir := getEnv("PRESETS_PATH", filepath.Join(dataPath, "presets"))
	reportDir := getEnv("REPORTS_PATH", filepath.Join(dataPath, "reports"))

	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Cannot create log directory")
	}
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", reportDir).Msg("Cannot create report directory")
	}

	trials, err := strconv.Atoi(getEnv("DROPCAST_TRIALS", "100000"))
	if err != nil || trials <= 0 {
		log.Warn().Str("value", os.Getenv("DROPCAST_TRIALS")).Msg("Ignoring invalid DROPCAST_TRIALS")
		trials = 100_000
	}

	thresholds, err := parseThresholds(os.Getenv("DROPCAST_THRESHOLDS"))
	if err != nil {
		log.Warn().Err(err).Msg("Ignoring malformed DROPCAST_THRESHOLDS")
		thresholds = nil
	}

	cfg := &AppConfig{
		DataPath:            dataPath,
		LogDir:              logDir,
		PresetsDir:          presetsDir,
		ReportDir:           reportDir,
		DefaultTrials:       trials,
		Thresholds:          thresholds,
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
	}

	return cfg, nil
}

// parseThresholds parses a comma-separated list like "60,120,300".
// Empty input means the engine default applies.
func parseThresholds(raw string) ([]float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("threshold %q: %w", strings.TrimSpace(p), err)
		}
		if v <= 0 {
			return nil, fmt.Errorf("threshold %q must be positive", strings.TrimSpace(p))
		}
		out = append(out, v)
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"dropcast/internal/engine"
)

// loadParameters resolves the simulation input for a subcommand: either a
// named preset or a JSON file holding a {kind, params} envelope. Exactly
// one source must be given.
func loadParameters(preset, file string) (engine.Parameters, error) {
	switch {
	case preset != "" && file != "":
		return nil, errors.New("--preset and --file are mutually exclusive")
	case preset != "":
		p, err := library.Find(preset)
		if err != nil {
			return nil, err
		}
		return p.Params, nil
	case file != "":
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read parameters: %w", err)
		}
		var env engine.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("parse parameters: %w", err)
		}
		return env.Decode()
	default:
		return nil, errors.New("either --preset or --file is required")
	}
}

// applyOverrides returns a copy of p with the CLI seed and trial count
// applied. A trials value of 0 leaves the source untouched except that an
// unset trial count falls back to the configured default.
func applyOverrides(p engine.Parameters, seed *uint32, trials, defaultTrials int) engine.Parameters {
	pick := func(current int) int {
		if trials > 0 {
			return trials
		}
		if current == 0 {
			return defaultTrials
		}
		return current
	}

	switch v := p.(type) {
	case engine.FixedParams:
		if seed != nil {
			v.Seed = seed
		}
		v.NumSimulations = pick(v.NumSimulations)
		return v
	case *engine.FixedParams:
		return applyOverrides(*v, seed, trials, defaultTrials)
	case engine.RangesParams:
		if seed != nil {
			v.Seed = seed
		}
		v.NumSimulations = pick(v.NumSimulations)
		return v
	case *engine.RangesParams:
		return applyOverrides(*v, seed, trials, defaultTrials)
	case engine.AutoParams:
		if seed != nil {
			v.Seed = seed
		}
		v.NumSimulations = pick(v.NumSimulations)
		return v
	case *engine.AutoParams:
		return applyOverrides(*v, seed, trials, defaultTrials)
	}
	return p
}

// seedOverride returns the --seed value when the flag was set, nil when the
// source's own seed (or self-seeding) should win.
func seedOverride(changed bool, value uint32) *uint32 {
	if !changed {
		return nil
	}
	return &value
}

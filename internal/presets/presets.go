// Package presets ships ready-made parameter sets and loads user-defined
// ones from YAML files.
package presets

import (
	"dropcast/internal/dist"
	"dropcast/internal/engine"
)

func fp(v float64) *float64 { return &v }

// Preset is a named, ready-to-run parameter set.
type Preset struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Kind        engine.Kind       `json:"kind"`
	Params      engine.Parameters `json:"params"`
}

// Builtins returns the shipped presets. Every call builds fresh values;
// nothing mutable lives at package level.
func Builtins() []Preset {
	return []Preset{
		{
			Name:        "conservative",
			Description: "Small project, modest allocation: FDV $10M-$80M log-uniform, 2%-8% drop.",
			Kind:        engine.KindFixed,
			Params: engine.FixedParams{
				SupplyCount:    1_000_000,
				NumSimulations: 50_000,
				Fdv:            engine.FixedSide{Min: 10, Max: 80, Shape: dist.LogUniform},
				Drop:           engine.FixedSide{Min: 2, Max: 8, Shape: dist.Triangular},
			},
		},
		{
			Name:        "balanced",
			Description: "Mid-cap launch: FDV $50M-$500M log-uniform, 5%-15% drop skewed low.",
			Kind:        engine.KindFixed,
			Params: engine.FixedParams{
				SupplyCount:    1_000_000,
				NumSimulations: 100_000,
				Fdv:            engine.FixedSide{Min: 50, Max: 500, Shape: dist.LogUniform},
				Drop:           engine.FixedSide{Min: 5, Max: 15, Shape: dist.Triangular},
			},
		},
		{
			Name:        "moonshot",
			Description: "Auto-shaped wide envelope: FDV $100M-$5B, 1%-20% drop.",
			Kind:        engine.KindAuto,
			Params: engine.AutoParams{
				SupplyCount:    1_000_000,
				NumSimulations: 100_000,
				FdvMin:         100,
				FdvMax:         5_000,
				DropMinPct:     1,
				DropMaxPct:     20,
			},
		},
		{
			Name:        "two-scenario",
			Description: "Custom ranges: a likely base case plus a thin bull tail.",
			Kind:        engine.KindRanges,
			Params: engine.RangesParams{
				SupplyCount:    1_000_000,
				NumSimulations: 100_000,
				FdvRanges: []engine.Range{
					{ID: "base", Min: 40, Max: 400, Shape: dist.LinearDecreasing, Weight: fp(0.85)},
					{ID: "bull", Min: 400, Max: 3_000, Shape: dist.LinearDecreasing, Weight: fp(0.15)},
				},
				DropRanges: []engine.Range{
					{ID: "likely", Min: 3, Max: 15, Shape: dist.PredictionCentric, ExpectedMin: 5, ExpectedMax: 10},
				},
			},
		},
	}
}

package presets

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"dropcast/internal/engine"
)

// Export renders a preset in the same YAML shape the loader reads, so a
// shipped preset can be written to the presets directory and edited from
// there.
func Export(p Preset) ([]byte, error) {
	f, err := fromPreset(p)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(f)
}

func fromPreset(p Preset) (filePreset, error) {
	f := filePreset{
		Name:        p.Name,
		Description: p.Description,
		Kind:        string(p.Kind),
	}
	switch v := p.Params.(type) {
	case engine.FixedParams:
		f.Params = fileParams{
			SupplyCount:    v.SupplyCount,
			NumSimulations: v.NumSimulations,
			Seed:           v.Seed,
			Fdv:            fromSide(v.Fdv),
			Drop:           fromSide(v.Drop),
		}
	case engine.RangesParams:
		f.Params = fileParams{
			SupplyCount:    v.SupplyCount,
			NumSimulations: v.NumSimulations,
			Seed:           v.Seed,
			FdvRanges:      fromRanges(v.FdvRanges),
			DropRanges:     fromRanges(v.DropRanges),
		}
	case engine.AutoParams:
		f.Params = fileParams{
			SupplyCount:    v.SupplyCount,
			NumSimulations: v.NumSimulations,
			Seed:           v.Seed,
			FdvMin:         v.FdvMin,
			FdvMax:         v.FdvMax,
			DropMinPct:     v.DropMinPct,
			DropMaxPct:     v.DropMaxPct,
		}
	default:
		return filePreset{}, fmt.Errorf("presets: cannot export parameters of type %T", p.Params)
	}
	return f, nil
}

func fromSide(s engine.FixedSide) *fileSide {
	return &fileSide{
		Min:   s.Min,
		Max:   s.Max,
		Shape: string(s.Shape),
		Mode:  s.Mode,
	}
}

func fromRanges(in []engine.Range) []fileRange {
	out := make([]fileRange, len(in))
	for i, r := range in {
		out[i] = fileRange{
			ID:          r.ID,
			Min:         r.Min,
			Max:         r.Max,
			Shape:       string(r.Shape),
			Weight:      r.Weight,
			ExpectedMin: r.ExpectedMin,
			ExpectedMax: r.ExpectedMax,
		}
	}
	return out
}

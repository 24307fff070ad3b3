package dist

import (
	"errors"
	"math"

	"dropcast/internal/rng"
)

// weightTolerance is how far the weight sum may drift from 1 before the
// mixture renormalizes by the actual sum.
const weightTolerance = 0.001

var (
	ErrNoZones        = errors.New("dist: mixture needs at least one zone")
	ErrZoneBounds     = errors.New("dist: zone max must not be below min")
	ErrNegativeWeight = errors.New("dist: zone weight must be non-negative")
	ErrZeroWeight     = errors.New("dist: zone weights sum to zero")
	ErrUnknownShape   = errors.New("dist: unknown shape")
	ErrModeOutside    = errors.New("dist: triangular mode outside zone bounds")
	ErrExpectedBand   = errors.New("dist: expected band must sit inside zone bounds")
	ErrLogBound       = errors.New("dist: log-uniform zone needs a positive min")
)

// Zone is one weighted band of outcomes with its own sampling shape.
// Mode is consulted for Triangular zones only; ExpectedMin/ExpectedMax
// bound PredictionCentric zones and must sit inside [Min, Max].
type Zone struct {
	Min         float64
	Max         float64
	Weight      float64
	Shape       Shape
	Mode        float64
	ExpectedMin float64
	ExpectedMax float64
}

// Sample draws one value from the zone. Shapes with a closed-form inverse
// CDF consume one uniform draw; PlateauDecline consumes two; and
// PredictionCentric consumes pairs until a draw lands in bounds.
// Near-zero-width zones sample uniformly regardless of shape.
func (z Zone) Sample(src *rng.Source) float64 {
	if z.Max-z.Min < minSpan {
		return UniformInv(src.Float64(), z.Min, z.Max)
	}
	switch z.Shape {
	case LinearIncreasing:
		return LinearIncreasingInv(src.Float64(), z.Min, z.Max)
	case LinearDecreasing:
		return LinearDecreasingInv(src.Float64(), z.Min, z.Max)
	case LogUniform:
		return LogUniformInv(src.Float64(), z.Min, z.Max)
	case Triangular:
		return TriangularInv(src.Float64(), z.Min, z.Max, z.Mode)
	case TruncatedExponential:
		return TruncatedExpInv(src.Float64(), z.Min, z.Max)
	case PlateauDecline:
		uPiece := src.Float64()
		uPos := src.Float64()
		return PlateauDeclineInv(uPiece, uPos, z.Min, z.Max)
	case PredictionCentric:
		mean := (z.ExpectedMin + z.ExpectedMax) / 2
		sd := (z.ExpectedMax - z.ExpectedMin) / 2
		return SampleTruncatedNormal(src, z.Min, z.Max, mean, sd)
	default:
		return UniformInv(src.Float64(), z.Min, z.Max)
	}
}

func checkZone(z Zone) error {
	if z.Max < z.Min {
		return ErrZoneBounds
	}
	if z.Weight < 0 {
		return ErrNegativeWeight
	}
	switch z.Shape {
	case Uniform, LinearIncreasing, LinearDecreasing, TruncatedExponential, PlateauDecline:
		return nil
	case LogUniform:
		if z.Min <= 0 {
			return ErrLogBound
		}
		return nil
	case Triangular:
		if z.Mode < z.Min || z.Mode > z.Max {
			return ErrModeOutside
		}
		return nil
	case PredictionCentric:
		if z.ExpectedMin < z.Min || z.ExpectedMax > z.Max || z.ExpectedMin >= z.ExpectedMax {
			return ErrExpectedBand
		}
		return nil
	default:
		return ErrUnknownShape
	}
}

// Mixture samples from a set of weighted zones: one uniform draw selects
// the zone through the cumulative table, then the zone's shape consumes
// its own draws. That order is fixed; reproducibility depends on it.
type Mixture struct {
	zones      []Zone
	cumulative []float64
}

// NewMixture validates the zones and builds the cumulative table. Weights
// are renormalized by their actual sum when they miss 1 by more than
// weightTolerance. The final cumulative entry is forced to 1 so float
// drift can never strand a draw past the last zone.
func NewMixture(zones []Zone) (*Mixture, error) {
	if len(zones) == 0 {
		return nil, ErrNoZones
	}
	total := 0.0
	for _, z := range zones {
		if err := checkZone(z); err != nil {
			return nil, err
		}
		total += z.Weight
	}
	if total <= 0 {
		return nil, ErrZeroWeight
	}

	owned := make([]Zone, len(zones))
	copy(owned, zones)
	if math.Abs(total-1) > weightTolerance {
		for i := range owned {
			owned[i].Weight /= total
		}
	}

	cumulative := make([]float64, len(owned))
	acc := 0.0
	for i, z := range owned {
		acc += z.Weight
		cumulative[i] = acc
	}
	cumulative[len(cumulative)-1] = 1

	return &Mixture{zones: owned, cumulative: cumulative}, nil
}

// Sample draws one value from the mixture.
func (m *Mixture) Sample(src *rng.Source) float64 {
	return m.zones[m.zoneIndex(src.Float64())].Sample(src)
}

// zoneIndex returns the earliest zone whose cumulative weight reaches the
// draw. A linear scan wins here: mixtures carry a handful of zones at most.
func (m *Mixture) zoneIndex(u float64) int {
	for i, c := range m.cumulative {
		if u <= c {
			return i
		}
	}
	return len(m.cumulative) - 1
}

// Weights returns the normalized weight of each zone, mostly for callers
// that want to display the composition they are sampling from.
func (m *Mixture) Weights() []float64 {
	out := make([]float64, len(m.zones))
	for i, z := range m.zones {
		out[i] = z.Weight
	}
	return out
}

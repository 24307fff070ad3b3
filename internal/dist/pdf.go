package dist

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// PDF evaluates the zone's probability density at x, normalized so the
// density integrates to one over [Min, Max]. Outside the zone, and for
// degenerate spans, it returns 0. This powers density previews; sampling
// never calls it.
func (z Zone) PDF(x float64) float64 {
	span := z.Max - z.Min
	if span < minSpan || x < z.Min || x > z.Max {
		return 0
	}
	switch z.Shape {
	case Uniform:
		return 1 / span
	case LinearIncreasing:
		return 2 * (x - z.Min) / (span * span)
	case LinearDecreasing:
		return 2 * (z.Max - x) / (span * span)
	case LogUniform:
		return 1 / (x * (math.Log(z.Max) - math.Log(z.Min)))
	case Triangular:
		return triangularPDF(x, z.Min, z.Max, z.Mode)
	case TruncatedExponential:
		rate := expDecay / span
		return rate * math.Exp(-rate*(x-z.Min)) / (1 - math.Exp(-expDecay))
	case PlateauDecline:
		return plateauPDF(x, z.Min, z.Max)
	case PredictionCentric:
		mean := (z.ExpectedMin + z.ExpectedMax) / 2
		sd := (z.ExpectedMax - z.ExpectedMin) / 2
		n := distuv.Normal{Mu: mean, Sigma: sd}
		mass := n.CDF(z.Max) - n.CDF(z.Min)
		if mass <= 0 {
			return 0
		}
		return n.Prob(x) / mass
	default:
		return 0
	}
}

func triangularPDF(x, min, max, mode float64) float64 {
	span := max - min
	if x < mode {
		return 2 * (x - min) / (span * (mode - min))
	}
	if x > mode {
		return 2 * (max - x) / (span * (max - mode))
	}
	return 2 / span
}

func plateauPDF(x, min, max float64) float64 {
	span := max - min
	knee := min + plateauFraction*span
	// Unit-height areas, then normalize.
	area := (knee - min) + (max-knee)/2
	if x <= knee {
		return 1 / area
	}
	return (max - x) / ((max - knee) * area)
}

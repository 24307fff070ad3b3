// Package dist holds the sampling primitives: closed-form inverse-CDF
// shapes and the weighted zone mixtures composed from them. Everything is
// pure except for the draws it pulls from an rng.Source, so identical
// sources yield identical samples.
package dist

import (
	"math"

	"dropcast/internal/rng"
)

// Shape names a sampling distribution. The values double as wire names.
type Shape string

const (
	Uniform              Shape = "uniform"
	LinearIncreasing     Shape = "linearIncreasing"
	LinearDecreasing     Shape = "linearDecreasing"
	LogUniform           Shape = "logUniform"
	Triangular           Shape = "triangular"
	PredictionCentric    Shape = "predictionCentric"
	TruncatedExponential Shape = "truncatedExponential"
	PlateauDecline       Shape = "plateauDecline"
)

const (
	// TriangularModeFraction places the default triangular peak 20% above
	// the minimum, skewing mass toward the low end.
	TriangularModeFraction = 0.20

	// expDecay is the fixed decay constant for the truncated exponential,
	// expressed per zone width so narrow and wide tails share a silhouette.
	expDecay = 3.0

	// plateauFraction is the share of a plateau-decline zone covered by the
	// flat piece before the linear falloff begins.
	plateauFraction = 0.40

	// normalAttempts bounds Box-Muller rejection before falling back to the
	// clamped mean.
	normalAttempts = 100

	// minSpan is the width below which closed forms would divide by
	// (near-)zero; such zones sample uniformly instead.
	minSpan = 1e-9
)

// UniformInv maps a uniform draw onto [min, max).
func UniformInv(u, min, max float64) float64 {
	return min + (max-min)*u
}

// LinearIncreasingInv samples a density rising linearly from min to max.
func LinearIncreasingInv(u, min, max float64) float64 {
	return min + (max-min)*math.Sqrt(u)
}

// LinearDecreasingInv samples a density falling linearly from min to max.
func LinearDecreasingInv(u, min, max float64) float64 {
	span := max - min
	return max - math.Sqrt(span*span*(1-u))
}

// LogUniformInv samples uniformly in log space. Requires min > 0.
func LogUniformInv(u, min, max float64) float64 {
	logMin := math.Log(min)
	return math.Exp(logMin + u*(math.Log(max)-logMin))
}

// TriangularInv samples a triangular density peaking at mode, which must
// lie within [min, max]. Mode at either bound degrades gracefully into the
// matching linear shape.
func TriangularInv(u, min, max, mode float64) float64 {
	span := max - min
	c := (mode - min) / span
	if u < c {
		return min + math.Sqrt(u*span*(mode-min))
	}
	return max - math.Sqrt((1-u)*span*(max-mode))
}

// AutoTriangularMode returns the default peak for a triangular range.
func AutoTriangularMode(min, max float64) float64 {
	return min + TriangularModeFraction*(max-min)
}

// TruncatedExpInv samples an exponential decay restricted to [min, max].
// The result is clamped against float drift at the edges.
func TruncatedExpInv(u, min, max float64) float64 {
	span := max - min
	rate := expDecay / span
	mass := 1 - math.Exp(-expDecay)
	x := min - math.Log(1-u*mass)/rate
	return clamp(x, min, max)
}

// PlateauDeclineInv samples a density that stays flat across the first
// part of the zone and then falls linearly to zero. uPiece picks the flat
// or declining piece by area ratio; uPos places the value inside it.
func PlateauDeclineInv(uPiece, uPos, min, max float64) float64 {
	span := max - min
	knee := min + plateauFraction*span
	plateauArea := knee - min
	declineArea := (max - knee) / 2
	if uPiece < plateauArea/(plateauArea+declineArea) {
		return UniformInv(uPos, min, knee)
	}
	return LinearDecreasingInv(uPos, knee, max)
}

// SampleTruncatedNormal draws from a normal restricted to [min, max] via
// Box-Muller rejection. mean and sd come from the caller's expected band.
// After normalAttempts misses the clamped mean is returned, which keeps
// pathological bands (mean far outside [min, max]) total instead of
// looping forever.
func SampleTruncatedNormal(src *rng.Source, min, max, mean, sd float64) float64 {
	for i := 0; i < normalAttempts; i++ {
		u1 := src.Float64()
		if u1 == 0 {
			u1 = math.SmallestNonzeroFloat64
		}
		u2 := src.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
		x := mean + sd*z
		if x >= min && x <= max {
			return x
		}
	}
	return clamp(mean, min, max)
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

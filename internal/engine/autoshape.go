package engine

import "dropcast/internal/dist"

// The auto engine shapes each factor with the same three-band silhouette:
// a plateau-then-decline base where most outcomes live, a thinning middle,
// and a rare exponential tail. Band boundaries sit at fixed fractions of
// the span, so any [min, max] keeps the silhouette. The tail band only
// exists when the ceiling is high enough to mean anything.
const (
	autoBaseEnd = 0.35
	autoMidEnd  = 0.75

	autoBaseWeight = 0.60
	autoMidWeight  = 0.30
	autoTailWeight = 0.10

	// fdvTailFloor gates the FDV moonshot band (millions of dollars).
	fdvTailFloor = 500
	// dropTailFloor gates the generosity band (percent of supply).
	dropTailFloor = 10
)

// autoZones lays out the bands over [min, max]. When max stays at or
// below tailFloor the tail band is omitted before weight normalization
// and the middle band absorbs its span.
func autoZones(min, max, tailFloor float64) []dist.Zone {
	span := max - min
	baseEnd := min + autoBaseEnd*span
	midEnd := min + autoMidEnd*span

	zones := []dist.Zone{
		{Min: min, Max: baseEnd, Weight: autoBaseWeight, Shape: dist.PlateauDecline},
		{Min: baseEnd, Max: midEnd, Weight: autoMidWeight, Shape: dist.LinearDecreasing},
	}
	if max > tailFloor {
		zones = append(zones, dist.Zone{
			Min:    midEnd,
			Max:    max,
			Weight: autoTailWeight,
			Shape:  dist.TruncatedExponential,
		})
	} else {
		zones[1].Max = max
	}
	return zones
}

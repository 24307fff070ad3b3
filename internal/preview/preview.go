// Package preview traces the probability density a parameter set samples
// from, as polylines a client can plot before spending any trials.
package preview

import (
	"dropcast/internal/dist"
	"dropcast/internal/engine"
)

// DefaultPoints is the polyline resolution used when the caller does not
// ask for a specific one.
const DefaultPoints = 64

// minTraceSpan mirrors the sampler's near-zero cutoff: zones narrower
// than this sample as a point mass and cannot be drawn as a curve.
const minTraceSpan = 1e-9

// Point is one vertex of a density polyline.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Curve is the traced density of a single zone, scaled by the zone's
// normalized weight so the curves of one factor integrate to 1 together.
type Curve struct {
	Shape  dist.Shape `json:"shape"`
	Min    float64    `json:"min"`
	Max    float64    `json:"max"`
	Weight float64    `json:"weight"`
	Points []Point    `json:"points"`
}

// Density previews both simulation factors of a parameter set.
type Density struct {
	Fdv  []Curve `json:"fdv"`
	Drop []Curve `json:"drop"`
}

// ForParameters resolves the zones a parameter set samples from and
// traces each one. pointCount below 2 falls back to DefaultPoints.
// Parameters are not validated here; feed it through engine.Validate
// first when the input is untrusted.
func ForParameters(p engine.Parameters, pointCount int) (Density, error) {
	zones, err := engine.ResolveZones(p)
	if err != nil {
		return Density{}, err
	}
	return Density{
		Fdv:  Curves(zones.Fdv, pointCount),
		Drop: Curves(zones.Drop, pointCount),
	}, nil
}

// Curves traces one polyline per zone. Weights are normalized by their
// actual sum, matching what the mixture sampler does, so the traced
// curves reflect the mass each zone really receives. Zones too narrow
// to draw are skipped but still count toward the weight sum.
func Curves(zones []dist.Zone, pointCount int) []Curve {
	if pointCount < 2 {
		pointCount = DefaultPoints
	}
	total := 0.0
	for _, z := range zones {
		total += z.Weight
	}
	if total <= 0 {
		return nil
	}

	out := make([]Curve, 0, len(zones))
	for _, z := range zones {
		span := z.Max - z.Min
		if span < minTraceSpan {
			continue
		}
		w := z.Weight / total
		step := span / float64(pointCount-1)
		points := make([]Point, pointCount)
		for i := range points {
			x := z.Min + float64(i)*step
			points[i] = Point{X: x, Y: w * z.PDF(x)}
		}
		// Pin the final vertex to the exact bound; step accumulation
		// can land a hair past it and PDF clips to zero outside.
		points[pointCount-1] = Point{X: z.Max, Y: w * z.PDF(z.Max)}
		out = append(out, Curve{
			Shape:  z.Shape,
			Min:    z.Min,
			Max:    z.Max,
			Weight: w,
			Points: points,
		})
	}
	return out
}

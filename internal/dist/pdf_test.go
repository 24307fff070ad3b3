package dist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// trapezoid integrates z.PDF across the zone.
func trapezoid(z Zone, steps int) float64 {
	h := (z.Max - z.Min) / float64(steps)
	sum := (z.PDF(z.Min) + z.PDF(z.Max)) / 2
	for i := 1; i < steps; i++ {
		sum += z.PDF(z.Min + float64(i)*h)
	}
	return sum * h
}

func TestPDFIntegratesToOne(t *testing.T) {
	zones := []Zone{
		{Min: 10, Max: 90, Shape: Uniform},
		{Min: 10, Max: 90, Shape: LinearIncreasing},
		{Min: 10, Max: 90, Shape: LinearDecreasing},
		{Min: 1, Max: 10, Shape: LogUniform},
		{Min: 10, Max: 90, Shape: Triangular, Mode: 26},
		{Min: 10, Max: 90, Shape: TruncatedExponential},
		{Min: 10, Max: 90, Shape: PlateauDecline},
		{Min: 10, Max: 90, Shape: PredictionCentric, ExpectedMin: 30, ExpectedMax: 50},
	}
	for _, z := range zones {
		t.Run(string(z.Shape), func(t *testing.T) {
			assert.InDelta(t, 1.0, trapezoid(z, 20_000), 1e-3)
		})
	}
}

func TestPDFZeroOutsideZone(t *testing.T) {
	z := Zone{Min: 10, Max: 90, Shape: Uniform}
	assert.Zero(t, z.PDF(9.999))
	assert.Zero(t, z.PDF(90.001))
	assert.Zero(t, Zone{Min: 5, Max: 5, Shape: Uniform}.PDF(5))
}

func TestPDFMatchesSamplerSkew(t *testing.T) {
	// The decline piece of the plateau shape must thin out toward max.
	z := Zone{Min: 0, Max: 10, Shape: PlateauDecline}
	assert.Greater(t, z.PDF(1.0), z.PDF(9.0))
	assert.InDelta(t, z.PDF(0), z.PDF(3.9), 1e-12, "plateau must be flat before the knee")

	// Triangular density peaks at the mode.
	tri := Zone{Min: 0, Max: 30, Shape: Triangular, Mode: 6}
	assert.Greater(t, tri.PDF(6.0), tri.PDF(1.0))
	assert.Greater(t, tri.PDF(6.0), tri.PDF(20.0))
}

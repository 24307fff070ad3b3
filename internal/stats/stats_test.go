package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestPercentileInterpolation(t *testing.T) {
	// Deliberately unsorted; the constructor must not care.
	s := NewSample([]float64{7, 1, 9, 3, 10, 5, 2, 8, 4, 6})

	tests := []struct {
		name string
		p    float64
		want float64
	}{
		{"p0", 0, 1},
		{"p25", 25, 3.25},
		{"median", 50, 5.5},
		{"p90", 90, 9.1},
		{"p100", 100, 10},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Percentile(tc.p)
			if !almostEqual(got, tc.want, 1e-9) {
				t.Errorf("Percentile(%v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}
}

func TestPercentileMonotone(t *testing.T) {
	s := NewSample([]float64{12, 400, 3.5, 90, 90, 17, 2200, 0.4, 55, 61, 8, 130})
	prev := math.Inf(-1)
	for p := 0.0; p <= 100; p += 2.5 {
		v := s.Percentile(p)
		if v < prev {
			t.Fatalf("Percentile(%v) = %v dropped below %v", p, v, prev)
		}
		prev = v
	}
}

func TestSummarizeStdDevGate(t *testing.T) {
	s := NewSample([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	with := s.Summarize(true)
	if !almostEqual(with.StdDev, 2, 1e-12) {
		t.Errorf("population stddev = %v, want 2", with.StdDev)
	}
	if with.Mean != 5 {
		t.Errorf("mean = %v, want 5", with.Mean)
	}
	if with.Min != 2 || with.Max != 9 {
		t.Errorf("min/max = %v/%v, want 2/9", with.Min, with.Max)
	}

	without := s.Summarize(false)
	if without.StdDev != 0 {
		t.Errorf("stddev should stay zero when not requested, got %v", without.StdDev)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := NewSample(nil)
	if got := s.Summarize(true); got != (Summary{}) {
		t.Errorf("empty sample summary = %+v, want zero value", got)
	}
}

func TestSurvival(t *testing.T) {
	s := NewSample([]float64{1, 2, 2, 3})

	tests := []struct {
		threshold float64
		want      float64
	}{
		{0.5, 1.0},
		{1, 1.0},
		{2, 0.75},
		{2.5, 0.25},
		{3, 0.25},
		{5, 0},
	}
	for _, tc := range tests {
		if got := s.Survival(tc.threshold); got != tc.want {
			t.Errorf("Survival(%v) = %v, want %v", tc.threshold, got, tc.want)
		}
	}
}

func TestSurvivalMonotone(t *testing.T) {
	s := NewSample([]float64{0.02, 14, 59, 60, 61, 119, 120, 300, 301, 9000})
	prev := 1.1
	for _, th := range []float64{1, 60, 120, 300, 1000} {
		p := s.Survival(th)
		if p > prev {
			t.Fatalf("Survival(%v) = %v rose above %v", th, p, prev)
		}
		prev = p
	}
}

func TestLogHistogramConservation(t *testing.T) {
	// Two outcomes sit below the floor and must vanish from the buckets
	// while still counting toward the density denominator.
	values := []float64{0.001, 0.005, 0.02, 0.5, 3, 47, 113, 113, 250, 999}
	s := NewSample(values)

	bins := s.LogHistogram(5)
	if len(bins) != 5 {
		t.Fatalf("got %d bins, want 5", len(bins))
	}

	total := 0
	densitySum := 0.0
	for i, b := range bins {
		total += b.Count
		densitySum += b.Density
		if b.BinEnd <= b.BinStart {
			t.Errorf("bin %d has non-increasing edges: %+v", i, b)
		}
		if i > 0 && !almostEqual(b.BinStart, bins[i-1].BinEnd, 1e-9*b.BinStart) {
			t.Errorf("bin %d does not abut bin %d", i, i-1)
		}
	}
	if total != 8 {
		t.Errorf("kept count = %d, want 8 (two below floor)", total)
	}
	if !almostEqual(densitySum, 0.8, 1e-12) {
		t.Errorf("density sum = %v, want 0.8", densitySum)
	}
	if bins[0].BinStart != 0.01 {
		t.Errorf("first edge = %v, want the floor", bins[0].BinStart)
	}
	if bins[4].BinEnd != 999 {
		t.Errorf("last edge = %v, want the observed max", bins[4].BinEnd)
	}
}

func TestLogHistogramAllBelowFloor(t *testing.T) {
	s := NewSample([]float64{0.0001, 0.002, 0.009})
	if bins := s.LogHistogram(40); bins != nil {
		t.Errorf("expected no histogram, got %d bins", len(bins))
	}
}

func TestLogHistogramSinglePoint(t *testing.T) {
	s := NewSample([]float64{42, 42, 42})
	bins := s.LogHistogram(40)
	if len(bins) != 1 {
		t.Fatalf("got %d bins, want 1 collapsed bin", len(bins))
	}
	if bins[0].Count != 3 || bins[0].Density != 1 {
		t.Errorf("collapsed bin = %+v", bins[0])
	}
}

func TestSortSharedNotReSorted(t *testing.T) {
	// The constructor owns the only sort; queries must not disturb the
	// caller's slice order.
	values := []float64{5, 1, 4}
	s := NewSample(values)
	s.Percentile(50)
	s.Survival(2)
	s.LogHistogram(3)
	if values[0] != 5 || values[1] != 1 || values[2] != 4 {
		t.Errorf("caller slice mutated: %v", values)
	}
}

// Package stats summarizes simulation outcomes: interpolated percentiles,
// a log-scale histogram, and threshold survival probabilities, all served
// from one shared sorted copy of the sample.
package stats

import (
	"math"
	"sort"
)

// histogramFloor is the smallest payout the histogram resolves. Outcomes
// below a cent per unit are dropped from the buckets (their mass still
// shows up as densities summing below one).
const histogramFloor = 0.01

// Summary is the percentile report for one batch of outcomes.
// StdDev is populated only by engines that advertise a spread figure.
type Summary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P5     float64 `json:"p5"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
	P95    float64 `json:"p95"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stdDev,omitempty"`
}

// Bin is one histogram bucket. Density is relative to the full sample,
// including outcomes dropped by the floor.
type Bin struct {
	BinStart float64 `json:"binStart"`
	BinEnd   float64 `json:"binEnd"`
	Count    int     `json:"count"`
	Density  float64 `json:"density"`
}

// Sample wraps a batch of outcomes. The constructor sorts exactly once;
// percentiles, the histogram, and survival queries all share that order.
type Sample struct {
	values []float64
	sorted []float64
	mean   float64
}

func NewSample(values []float64) *Sample {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := 0.0
	if len(values) > 0 {
		mean = sum / float64(len(values))
	}
	return &Sample{values: values, sorted: sorted, mean: mean}
}

func (s *Sample) Len() int      { return len(s.values) }
func (s *Sample) Mean() float64 { return s.mean }

// Percentile returns the p-th percentile (p in 0..100) by linear
// interpolation between the two nearest order statistics.
func (s *Sample) Percentile(p float64) float64 {
	n := len(s.sorted)
	if n == 0 {
		return 0
	}
	pos := p / 100 * float64(n-1)
	i := int(math.Floor(pos))
	if i >= n-1 {
		return s.sorted[n-1]
	}
	if i < 0 {
		return s.sorted[0]
	}
	frac := pos - float64(i)
	return s.sorted[i]*(1-frac) + s.sorted[i+1]*frac
}

// StdDev returns the population standard deviation.
func (s *Sample) StdDev() float64 {
	n := len(s.values)
	if n == 0 {
		return 0
	}
	ss := 0.0
	for _, v := range s.values {
		d := v - s.mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n))
}

// Survival returns the fraction of outcomes at or above threshold, found
// by binary search on the shared sorted slice.
func (s *Sample) Survival(threshold float64) float64 {
	n := len(s.sorted)
	if n == 0 {
		return 0
	}
	idx := sort.SearchFloat64s(s.sorted, threshold)
	return float64(n-idx) / float64(n)
}

// Summarize builds the full percentile report. withStdDev controls whether
// the spread figure is filled in.
func (s *Sample) Summarize(withStdDev bool) Summary {
	n := len(s.sorted)
	if n == 0 {
		return Summary{}
	}
	out := Summary{
		Mean:   s.mean,
		Median: s.Percentile(50),
		P5:     s.Percentile(5),
		P10:    s.Percentile(10),
		P25:    s.Percentile(25),
		P75:    s.Percentile(75),
		P90:    s.Percentile(90),
		P95:    s.Percentile(95),
		Min:    s.sorted[0],
		Max:    s.sorted[n-1],
	}
	if withStdDev {
		out.StdDev = s.StdDev()
	}
	return out
}

// LogHistogram buckets the sample into binCount bins spaced evenly in
// log10 between max(observed min, floor) and the observed max. Outcomes
// below the floor are skipped silently.
func (s *Sample) LogHistogram(binCount int) []Bin {
	n := len(s.sorted)
	if n == 0 || binCount <= 0 {
		return nil
	}
	maxV := s.sorted[n-1]
	if maxV <= histogramFloor {
		return nil
	}
	minV := s.sorted[0]
	if minV < histogramFloor {
		minV = histogramFloor
	}

	logMin := math.Log10(minV)
	logMax := math.Log10(maxV)
	width := (logMax - logMin) / float64(binCount)
	if width <= 0 {
		// Every kept outcome is the same value.
		return []Bin{{BinStart: minV, BinEnd: maxV, Count: n, Density: 1}}
	}

	bins := make([]Bin, binCount)
	for i := range bins {
		bins[i].BinStart = math.Pow(10, logMin+float64(i)*width)
		bins[i].BinEnd = math.Pow(10, logMin+float64(i+1)*width)
	}
	// Pin the outer edges so pow/log round-trips cannot shave them.
	bins[0].BinStart = minV
	bins[binCount-1].BinEnd = maxV

	for _, v := range s.sorted {
		if v < histogramFloor {
			continue
		}
		idx := int((math.Log10(v) - logMin) / width)
		if idx < 0 {
			idx = 0
		}
		if idx >= binCount {
			idx = binCount - 1
		}
		bins[idx].Count++
	}

	total := float64(n)
	for i := range bins {
		bins[i].Density = float64(bins[i].Count) / total
	}
	return bins
}

package engine

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"dropcast/internal/dist"
)

func seedPtr(s uint32) *uint32 { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestFixedEngineEnvelope(t *testing.T) {
	// 8888 supply units, FDV uniform across $20M..$100M, drop share
	// linearly decreasing across 5%..25%.
	p := FixedParams{
		SupplyCount:    8888,
		NumSimulations: 200_000,
		Seed:           seedPtr(42),
		Fdv:            FixedSide{Min: 20, Max: 100, Shape: dist.Uniform},
		Drop:           FixedSide{Min: 5, Max: 25, Shape: dist.LinearDecreasing},
	}

	res, err := Run(p, RunOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	wantWorst := 20e6 * 0.05 / 8888
	wantBest := 100e6 * 0.25 / 8888
	if math.Abs(res.WorstCase-wantWorst) > 1e-9 {
		t.Errorf("WorstCase = %v, want %v", res.WorstCase, wantWorst)
	}
	if math.Abs(res.BestCase-wantBest) > 1e-9 {
		t.Errorf("BestCase = %v, want %v", res.BestCase, wantBest)
	}

	if res.Stats.Min < wantWorst-1e-9 {
		t.Errorf("observed min %v undercuts the analytic worst case %v", res.Stats.Min, wantWorst)
	}
	if res.Stats.Max > wantBest+1e-9 {
		t.Errorf("observed max %v exceeds the analytic best case %v", res.Stats.Max, wantBest)
	}
	if res.Stats.Min <= 0 {
		t.Errorf("all outcomes must be positive, min = %v", res.Stats.Min)
	}
	if res.Stats.Median <= wantWorst || res.Stats.Median >= wantBest {
		t.Errorf("median %v should sit strictly inside (%v, %v)", res.Stats.Median, wantWorst, wantBest)
	}
	if res.Stats.StdDev <= 0 {
		t.Errorf("fixed engine must report a spread, got stddev %v", res.Stats.StdDev)
	}
	if len(res.Histogram) != fixedHistogramBins {
		t.Errorf("fixed engine histogram has %d bins, want %d", len(res.Histogram), fixedHistogramBins)
	}
	if res.Seed != 42 {
		t.Errorf("result should echo the seed, got %d", res.Seed)
	}
	if res.ExecutionTimeMs < 0 {
		t.Errorf("negative execution time %v", res.ExecutionTimeMs)
	}
}

func TestPercentileOrderOnResult(t *testing.T) {
	p := FixedParams{
		SupplyCount:    10_000,
		NumSimulations: 50_000,
		Seed:           seedPtr(7),
		Fdv:            FixedSide{Min: 10, Max: 500, Shape: dist.LogUniform},
		Drop:           FixedSide{Min: 1, Max: 10, Shape: dist.Triangular},
	}
	res, err := Run(p, RunOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	s := res.Stats
	ladder := []float64{s.Min, s.P5, s.P10, s.P25, s.Median, s.P75, s.P90, s.P95, s.Max}
	for i := 1; i < len(ladder); i++ {
		if ladder[i] < ladder[i-1] {
			t.Fatalf("percentile ladder out of order at %d: %v", i, ladder)
		}
	}
}

func TestRunReproducible(t *testing.T) {
	tests := []struct {
		name   string
		params Parameters
	}{
		{"fixed", FixedParams{
			SupplyCount:    8888,
			NumSimulations: 20_000,
			Seed:           seedPtr(7),
			Fdv:            FixedSide{Min: 20, Max: 100, Shape: dist.Uniform},
			Drop:           FixedSide{Min: 5, Max: 25, Shape: dist.LinearDecreasing},
		}},
		{"auto", AutoParams{
			SupplyCount:    5000,
			NumSimulations: 20_000,
			Seed:           seedPtr(1234),
			FdvMin:         50,
			FdvMax:         2000,
			DropMinPct:     1,
			DropMaxPct:     15,
		}},
	}
	opts := RunOptions{IncludeValues: true}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a, err := Run(tc.params, opts)
			if err != nil {
				t.Fatalf("first run failed: %v", err)
			}
			b, err := Run(tc.params, opts)
			if err != nil {
				t.Fatalf("second run failed: %v", err)
			}

			if a.Stats != b.Stats {
				t.Errorf("same seed produced different stats:\n%+v\n%+v", a.Stats, b.Stats)
			}
			if !reflect.DeepEqual(a.Histogram, b.Histogram) {
				t.Errorf("same seed produced different histograms")
			}
			if !reflect.DeepEqual(a.ThresholdProbabilities, b.ThresholdProbabilities) {
				t.Errorf("same seed produced different threshold probabilities")
			}
			if !reflect.DeepEqual(a.Values, b.Values) {
				t.Errorf("same seed produced different raw values")
			}
		})
	}
}

func TestRunWithoutSeedSelfSeeds(t *testing.T) {
	p := FixedParams{
		SupplyCount:    1000,
		NumSimulations: 1000,
		Fdv:            FixedSide{Min: 1, Max: 2, Shape: dist.Uniform},
		Drop:           FixedSide{Min: 1, Max: 2, Shape: dist.Uniform},
	}
	a, err := Run(p, RunOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	b, err := Run(p, RunOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if a.Seed == b.Seed {
		t.Errorf("two unseeded runs picked the same seed %d", a.Seed)
	}

	// The echoed seed must replay the run exactly.
	replay, err := Run(FixedParams{
		SupplyCount:    1000,
		NumSimulations: 1000,
		Seed:           seedPtr(a.Seed),
		Fdv:            FixedSide{Min: 1, Max: 2, Shape: dist.Uniform},
		Drop:           FixedSide{Min: 1, Max: 2, Shape: dist.Uniform},
	}, RunOptions{})
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if replay.Stats != a.Stats {
		t.Errorf("seed echo did not replay the run")
	}
}

func TestThresholdProbabilitiesMonotone(t *testing.T) {
	p := FixedParams{
		SupplyCount:    8888,
		NumSimulations: 100_000,
		Seed:           seedPtr(42),
		Fdv:            FixedSide{Min: 20, Max: 100, Shape: dist.Uniform},
		Drop:           FixedSide{Min: 5, Max: 25, Shape: dist.LinearDecreasing},
	}
	res, err := Run(p, RunOptions{Thresholds: []float64{60, 120, 300, 1000, 5000}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.ThresholdProbabilities) != 5 {
		t.Fatalf("got %d threshold entries, want 5", len(res.ThresholdProbabilities))
	}
	for i, tp := range res.ThresholdProbabilities {
		if tp.Probability < 0 || tp.Probability > 1 {
			t.Errorf("probability out of range: %+v", tp)
		}
		if i > 0 && tp.Probability > res.ThresholdProbabilities[i-1].Probability {
			t.Errorf("survival rose with the threshold: %+v", res.ThresholdProbabilities)
		}
	}

	// Worst case is ~112.5, so every outcome clears $60.
	if got := res.ThresholdProbabilities[0].Probability; got != 1 {
		t.Errorf("P(≥60) = %v, want 1", got)
	}
	// Best case is ~2813, so nothing clears $5000.
	if got := res.ThresholdProbabilities[4].Probability; got != 0 {
		t.Errorf("P(≥5000) = %v, want 0", got)
	}
}

func TestDefaultThresholdsApplied(t *testing.T) {
	p := FixedParams{
		SupplyCount:    8888,
		NumSimulations: 10_000,
		Seed:           seedPtr(1),
		Fdv:            FixedSide{Min: 20, Max: 100, Shape: dist.Uniform},
		Drop:           FixedSide{Min: 5, Max: 25, Shape: dist.Uniform},
	}
	res, err := Run(p, RunOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := DefaultThresholds()
	if len(res.ThresholdProbabilities) != len(want) {
		t.Fatalf("got %d threshold entries, want %d", len(res.ThresholdProbabilities), len(want))
	}
	for i, tp := range res.ThresholdProbabilities {
		if tp.Threshold != want[i] {
			t.Errorf("threshold %d = %v, want %v", i, tp.Threshold, want[i])
		}
	}
}

func TestCustomRangesEngine(t *testing.T) {
	// Overlapping FDV ranges are fine; the envelope still bounds outcomes.
	p := RangesParams{
		SupplyCount:    10_000,
		NumSimulations: 50_000,
		Seed:           seedPtr(9),
		FdvRanges: []Range{
			{ID: "base", Min: 50, Max: 300, Shape: dist.LinearDecreasing, Weight: floatPtr(0.8)},
			{ID: "bull", Min: 200, Max: 1500, Shape: dist.Uniform, Weight: floatPtr(0.2)},
		},
		DropRanges: []Range{
			{Min: 2, Max: 12, Shape: dist.PredictionCentric, ExpectedMin: 4, ExpectedMax: 8},
		},
	}

	res, err := Run(p, RunOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	wantWorst := PayoutPerUnit(50, 2, 10_000)
	wantBest := PayoutPerUnit(1500, 12, 10_000)
	if math.Abs(res.WorstCase-wantWorst) > 1e-9 || math.Abs(res.BestCase-wantBest) > 1e-9 {
		t.Errorf("envelope = [%v, %v], want [%v, %v]", res.WorstCase, res.BestCase, wantWorst, wantBest)
	}
	if res.Stats.Min < wantWorst-1e-9 || res.Stats.Max > wantBest+1e-9 {
		t.Errorf("outcomes escaped the envelope: [%v, %v]", res.Stats.Min, res.Stats.Max)
	}
	if res.Stats.StdDev != 0 {
		t.Errorf("ranges engine should not report stddev, got %v", res.Stats.StdDev)
	}
	if len(res.Histogram) != zonedHistogramBins {
		t.Errorf("ranges engine histogram has %d bins, want %d", len(res.Histogram), zonedHistogramBins)
	}

	overlaps := DetectOverlaps(p)
	if len(overlaps) != 1 {
		t.Fatalf("got %d overlaps, want 1: %+v", len(overlaps), overlaps)
	}
	ov := overlaps[0]
	if ov.Side != "fdv" || ov.FirstID != "base" || ov.SecondID != "bull" {
		t.Errorf("unexpected overlap report: %+v", ov)
	}
	if ov.Lo != 200 || ov.Hi != 300 {
		t.Errorf("overlap window = [%v, %v], want [200, 300]", ov.Lo, ov.Hi)
	}
}

func TestRangeMixtureDefaultsToWidthProportional(t *testing.T) {
	m, err := rangeMixture([]Range{
		{Min: 0, Max: 10, Shape: dist.Uniform},
		{Min: 10, Max: 40, Shape: dist.Uniform},
	})
	if err != nil {
		t.Fatalf("rangeMixture failed: %v", err)
	}
	w := m.Weights()
	if math.Abs(w[0]-0.25) > 1e-12 || math.Abs(w[1]-0.75) > 1e-12 {
		t.Errorf("width-proportional weights = %v, want [0.25 0.75]", w)
	}
}

func TestAutoEngineEnvelope(t *testing.T) {
	p := AutoParams{
		SupplyCount:    25_000,
		NumSimulations: 50_000,
		Seed:           seedPtr(77),
		FdvMin:         100,
		FdvMax:         2000,
		DropMinPct:     2,
		DropMaxPct:     8,
	}
	res, err := Run(p, RunOptions{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	wantWorst := PayoutPerUnit(100, 2, 25_000)
	wantBest := PayoutPerUnit(2000, 8, 25_000)
	if res.Stats.Min < wantWorst-1e-9 || res.Stats.Max > wantBest+1e-9 {
		t.Errorf("outcomes escaped [%v, %v]: got [%v, %v]", wantWorst, wantBest, res.Stats.Min, res.Stats.Max)
	}

	// The design front-loads the base band, so the median should fall in
	// the lower half of the payout envelope.
	mid := (wantWorst + wantBest) / 2
	if res.Stats.Median >= mid {
		t.Errorf("auto-shaped median %v should sit below the midpoint %v", res.Stats.Median, mid)
	}
}

func TestRunRejectsInvalidParameters(t *testing.T) {
	p := FixedParams{
		SupplyCount:    0,
		NumSimulations: 10,
		Fdv:            FixedSide{Min: 20, Max: 100, Shape: dist.Uniform},
		Drop:           FixedSide{Min: 5, Max: 25, Shape: dist.Uniform},
	}
	_, err := Run(p, RunOptions{})
	if err == nil {
		t.Fatal("Run accepted invalid parameters")
	}
	var ive *InvalidParametersError
	if !errors.As(err, &ive) {
		t.Fatalf("error is %T, want *InvalidParametersError", err)
	}
	if len(ive.Errors) != 2 {
		t.Errorf("want supplyCount and numSimulations errors, got %+v", ive.Errors)
	}
}

func TestEnvelopeDecodeRoundTrip(t *testing.T) {
	env := Envelope{
		Kind:   KindAuto,
		Params: []byte(`{"supplyCount":5000,"numSimulations":2000,"fdvMin":50,"fdvMax":900,"dropMinPct":1,"dropMaxPct":9,"seed":3}`),
	}
	p, err := env.Decode()
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	auto, ok := p.(AutoParams)
	if !ok {
		t.Fatalf("decoded %T, want AutoParams", p)
	}
	if auto.FdvMax != 900 || auto.Seed == nil || *auto.Seed != 3 {
		t.Errorf("decoded params wrong: %+v", auto)
	}

	if _, err := (Envelope{Kind: "quantum", Params: []byte("{}")}).Decode(); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("unknown kind error = %v, want ErrUnknownKind", err)
	}
}

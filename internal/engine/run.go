package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dropcast/internal/dist"
	"dropcast/internal/rng"
	"dropcast/internal/stats"
)

// fdvUnitScale converts FDV inputs (millions of dollars) to dollars.
const fdvUnitScale = 1e6

const (
	fixedHistogramBins = 40
	zonedHistogramBins = 50
)

var ErrUnknownKind = errors.New("engine: unknown parameter kind")

// DefaultThresholds returns the payout levels reported when the caller
// does not pass their own. Fresh slice per call; callers may mutate it.
func DefaultThresholds() []float64 {
	return []float64{60, 120, 300}
}

// PayoutPerUnit is the quantity every engine estimates: the dollars one
// supply unit receives when a project worth fdvMillions drops dropPct
// percent of itself across supplyCount units.
func PayoutPerUnit(fdvMillions, dropPct, supplyCount float64) float64 {
	return fdvMillions * fdvUnitScale * (dropPct / 100) / supplyCount
}

// RunOptions tune a single run without touching the parameters.
type RunOptions struct {
	// Thresholds are the payout levels for survival probabilities;
	// nil means DefaultThresholds().
	Thresholds []float64
	// IncludeValues retains the raw per-trial outcomes on the Result.
	IncludeValues bool
}

// InvalidParametersError is returned by Run when validation rejects the
// parameters; the full report rides along.
type InvalidParametersError struct {
	Errors []ValidationError
}

func (e *InvalidParametersError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		parts[i] = ve.String()
	}
	return "engine: invalid parameters: " + strings.Join(parts, "; ")
}

type sampler interface {
	Sample(*rng.Source) float64
}

// runSpec is a validated, fully resolved run: a sampler per factor plus
// the envelope bounds the result reports as worst/best case.
type runSpec struct {
	supply     float64
	trials     int
	seed       *uint32
	fdv        sampler
	drop       sampler
	fdvMin     float64
	fdvMax     float64
	dropMin    float64
	dropMax    float64
	bins       int
	withStdDev bool
}

// Run validates p, then simulates and summarizes the batch. The per-trial
// draw order is fixed (FDV before drop share, zone select before value) so
// equal seeds reproduce results bit for bit.
func Run(p Parameters, opts RunOptions) (Result, error) {
	started := time.Now()

	if errs := Validate(p); len(errs) > 0 {
		return Result{}, &InvalidParametersError{Errors: errs}
	}

	spec, err := newRunSpec(p)
	if err != nil {
		return Result{}, err
	}

	var src *rng.Source
	var seed uint32
	if spec.seed != nil {
		seed = *spec.seed
		src = rng.New(seed)
	} else {
		src, seed = rng.NewRandom()
	}

	values := make([]float64, spec.trials)
	for i := range values {
		fdv := spec.fdv.Sample(src)
		pct := spec.drop.Sample(src)
		values[i] = PayoutPerUnit(fdv, pct, spec.supply)
	}

	sample := stats.NewSample(values)

	thresholds := opts.Thresholds
	if thresholds == nil {
		thresholds = DefaultThresholds()
	}
	probs := make([]ThresholdProbability, len(thresholds))
	for i, th := range thresholds {
		probs[i] = ThresholdProbability{Threshold: th, Probability: sample.Survival(th)}
	}

	res := Result{
		Kind:                   p.Kind(),
		Seed:                   seed,
		Stats:                  sample.Summarize(spec.withStdDev),
		Histogram:              sample.LogHistogram(spec.bins),
		ThresholdProbabilities: probs,
		WorstCase:              PayoutPerUnit(spec.fdvMin, spec.dropMin, spec.supply),
		BestCase:               PayoutPerUnit(spec.fdvMax, spec.dropMax, spec.supply),
		ExecutionTimeMs:        float64(time.Since(started)) / float64(time.Millisecond),
	}
	if opts.IncludeValues {
		res.Values = values
	}
	return res, nil
}

func newRunSpec(p Parameters) (runSpec, error) {
	switch v := p.(type) {
	case FixedParams:
		return fixedSpec(v), nil
	case *FixedParams:
		return fixedSpec(*v), nil
	case RangesParams:
		return rangesSpec(v)
	case *RangesParams:
		return rangesSpec(*v)
	case AutoParams:
		return autoSpec(v)
	case *AutoParams:
		return autoSpec(*v)
	default:
		return runSpec{}, fmt.Errorf("%w: %T", ErrUnknownKind, p)
	}
}

func fixedSpec(p FixedParams) runSpec {
	return runSpec{
		supply:     p.SupplyCount,
		trials:     p.NumSimulations,
		seed:       p.Seed,
		fdv:        sideZone(p.Fdv),
		drop:       sideZone(p.Drop),
		fdvMin:     p.Fdv.Min,
		fdvMax:     p.Fdv.Max,
		dropMin:    p.Drop.Min,
		dropMax:    p.Drop.Max,
		bins:       fixedHistogramBins,
		withStdDev: true,
	}
}

// sideZone resolves a fixed side into a single directly sampled zone. The
// fixed engine never pays the mixture's zone-select draw.
func sideZone(s FixedSide) dist.Zone {
	z := dist.Zone{Min: s.Min, Max: s.Max, Weight: 1, Shape: s.Shape}
	if s.Shape == dist.Triangular {
		if s.Mode != nil {
			z.Mode = *s.Mode
		} else {
			z.Mode = dist.AutoTriangularMode(s.Min, s.Max)
		}
	}
	return z
}

func rangesSpec(p RangesParams) (runSpec, error) {
	fdv, err := rangeMixture(p.FdvRanges)
	if err != nil {
		return runSpec{}, fmt.Errorf("engine: fdv ranges: %w", err)
	}
	drop, err := rangeMixture(p.DropRanges)
	if err != nil {
		return runSpec{}, fmt.Errorf("engine: drop ranges: %w", err)
	}
	fdvMin, fdvMax := envelope(p.FdvRanges)
	dropMin, dropMax := envelope(p.DropRanges)
	return runSpec{
		supply:  p.SupplyCount,
		trials:  p.NumSimulations,
		seed:    p.Seed,
		fdv:     fdv,
		drop:    drop,
		fdvMin:  fdvMin,
		fdvMax:  fdvMax,
		dropMin: dropMin,
		dropMax: dropMax,
		bins:    zonedHistogramBins,
	}, nil
}

// rangeMixture turns user ranges into weighted zones. Explicit weights
// win; a range without one weighs in at its width, which makes the
// all-implicit case exactly width-proportional.
func rangeMixture(ranges []Range) (*dist.Mixture, error) {
	return dist.NewMixture(rangeZones(ranges))
}

func rangeZones(ranges []Range) []dist.Zone {
	zones := make([]dist.Zone, len(ranges))
	for i, r := range ranges {
		w := r.Max - r.Min
		if r.Weight != nil {
			w = *r.Weight
		}
		zones[i] = dist.Zone{
			Min:         r.Min,
			Max:         r.Max,
			Weight:      w,
			Shape:       r.Shape,
			ExpectedMin: r.ExpectedMin,
			ExpectedMax: r.ExpectedMax,
		}
	}
	return zones
}

func envelope(ranges []Range) (lo, hi float64) {
	lo, hi = ranges[0].Min, ranges[0].Max
	for _, r := range ranges[1:] {
		if r.Min < lo {
			lo = r.Min
		}
		if r.Max > hi {
			hi = r.Max
		}
	}
	return lo, hi
}

// ZoneSet is the resolved sampling design of a parameter set, one zone
// list per factor. Weights are the raw pre-normalization values.
type ZoneSet struct {
	Fdv  []dist.Zone `json:"fdv"`
	Drop []dist.Zone `json:"drop"`
}

// ResolveZones exposes the bands a parameter set samples from, for
// density previews and reporting. It does not validate.
func ResolveZones(p Parameters) (ZoneSet, error) {
	switch v := p.(type) {
	case FixedParams:
		return ZoneSet{Fdv: []dist.Zone{sideZone(v.Fdv)}, Drop: []dist.Zone{sideZone(v.Drop)}}, nil
	case *FixedParams:
		return ResolveZones(*v)
	case RangesParams:
		return ZoneSet{Fdv: rangeZones(v.FdvRanges), Drop: rangeZones(v.DropRanges)}, nil
	case *RangesParams:
		return ResolveZones(*v)
	case AutoParams:
		return ZoneSet{
			Fdv:  autoZones(v.FdvMin, v.FdvMax, fdvTailFloor),
			Drop: autoZones(v.DropMinPct, v.DropMaxPct, dropTailFloor),
		}, nil
	case *AutoParams:
		return ResolveZones(*v)
	default:
		return ZoneSet{}, fmt.Errorf("%w: %T", ErrUnknownKind, p)
	}
}

func autoSpec(p AutoParams) (runSpec, error) {
	fdv, err := dist.NewMixture(autoZones(p.FdvMin, p.FdvMax, fdvTailFloor))
	if err != nil {
		return runSpec{}, fmt.Errorf("engine: fdv auto zones: %w", err)
	}
	drop, err := dist.NewMixture(autoZones(p.DropMinPct, p.DropMaxPct, dropTailFloor))
	if err != nil {
		return runSpec{}, fmt.Errorf("engine: drop auto zones: %w", err)
	}
	return runSpec{
		supply:  p.SupplyCount,
		trials:  p.NumSimulations,
		seed:    p.Seed,
		fdv:     fdv,
		drop:    drop,
		fdvMin:  p.FdvMin,
		fdvMax:  p.FdvMax,
		dropMin: p.DropMinPct,
		dropMax: p.DropMaxPct,
		bins:    zonedHistogramBins,
	}, nil
}

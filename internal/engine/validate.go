package engine

import (
	"fmt"
	"math"
	"strconv"

	"dropcast/internal/dist"
)

// MinSimulations is the smallest batch the engines accept; below this the
// percentile tails are too noisy to report.
const MinSimulations = 1000

// maxDropPct caps any drop share: a project cannot distribute more than
// all of itself.
const maxDropPct = 100

// ValidationError describes one rejected field. RangeID carries the range
// ID (or its index) when the problem sits inside a range list.
type ValidationError struct {
	Field   string `json:"field"`
	RangeID string `json:"rangeId,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) String() string {
	if e.RangeID != "" {
		return fmt.Sprintf("%s (range %s): %s", e.Field, e.RangeID, e.Message)
	}
	return e.Field + ": " + e.Message
}

// Validate checks parameters without running anything. It is total: any
// input, including NaN and infinities, yields a report, never a panic.
func Validate(p Parameters) []ValidationError {
	switch v := p.(type) {
	case FixedParams:
		return validateFixed(v)
	case *FixedParams:
		return validateFixed(*v)
	case RangesParams:
		return validateRanges(v)
	case *RangesParams:
		return validateRanges(*v)
	case AutoParams:
		return validateAuto(v)
	case *AutoParams:
		return validateAuto(*v)
	case nil:
		return []ValidationError{{Field: "params", Message: "missing parameters"}}
	default:
		return []ValidationError{{Field: "kind", Message: fmt.Sprintf("unsupported parameter type %T", p)}}
	}
}

func badNumber(x float64) bool {
	return math.IsNaN(x) || math.IsInf(x, 0)
}

func validateCommon(supply float64, sims int) []ValidationError {
	var errs []ValidationError
	if badNumber(supply) || supply <= 0 {
		errs = append(errs, ValidationError{Field: "supplyCount", Message: "must be a positive number"})
	}
	if sims < MinSimulations {
		errs = append(errs, ValidationError{Field: "numSimulations", Message: fmt.Sprintf("must be at least %d", MinSimulations)})
	}
	return errs
}

// checkBounds verifies a positive, ordered [min, max] pair and reports
// against the given field names.
func checkBounds(minField, maxField string, min, max float64) []ValidationError {
	var errs []ValidationError
	switch {
	case badNumber(min):
		errs = append(errs, ValidationError{Field: minField, Message: "must be a finite number"})
	case min <= 0:
		errs = append(errs, ValidationError{Field: minField, Message: "must be greater than zero"})
	}
	switch {
	case badNumber(max):
		errs = append(errs, ValidationError{Field: maxField, Message: "must be a finite number"})
	case max <= min:
		errs = append(errs, ValidationError{Field: maxField, Message: "max must exceed min"})
	}
	return errs
}

var fixedShapes = map[dist.Shape]bool{
	dist.Uniform:          true,
	dist.LogUniform:       true,
	dist.Triangular:       true,
	dist.LinearIncreasing: true,
	dist.LinearDecreasing: true,
}

var rangeShapes = map[dist.Shape]bool{
	dist.Uniform:           true,
	dist.LinearIncreasing:  true,
	dist.LinearDecreasing:  true,
	dist.PredictionCentric: true,
}

func validateFixed(p FixedParams) []ValidationError {
	errs := validateCommon(p.SupplyCount, p.NumSimulations)
	errs = append(errs, validateFixedSide("fdv", p.Fdv, false)...)
	errs = append(errs, validateFixedSide("drop", p.Drop, true)...)
	return errs
}

func validateFixedSide(side string, s FixedSide, isPercent bool) []ValidationError {
	errs := checkBounds(side+".min", side+".max", s.Min, s.Max)
	if isPercent && !badNumber(s.Max) && s.Max > maxDropPct {
		errs = append(errs, ValidationError{Field: side + ".max", Message: "cannot exceed 100 percent"})
	}
	if !fixedShapes[s.Shape] {
		errs = append(errs, ValidationError{Field: side + ".shape", Message: fmt.Sprintf("unsupported shape %q", s.Shape)})
	}
	if s.Shape == dist.Triangular && s.Mode != nil {
		if badNumber(*s.Mode) || *s.Mode < s.Min || *s.Mode > s.Max {
			errs = append(errs, ValidationError{Field: side + ".mode", Message: "mode must lie within [min, max]"})
		}
	}
	return errs
}

func validateRanges(p RangesParams) []ValidationError {
	errs := validateCommon(p.SupplyCount, p.NumSimulations)
	errs = append(errs, validateRangeList("fdvRanges", p.FdvRanges, false)...)
	errs = append(errs, validateRangeList("dropRanges", p.DropRanges, true)...)
	return errs
}

func validateRangeList(field string, ranges []Range, isPercent bool) []ValidationError {
	if len(ranges) == 0 {
		return []ValidationError{{Field: field, Message: "needs at least one range"}}
	}
	var errs []ValidationError
	weightSum := 0.0
	for i, r := range ranges {
		id := rangeID(r, i)
		for _, e := range checkBounds(field+".min", field+".max", r.Min, r.Max) {
			e.RangeID = id
			errs = append(errs, e)
		}
		if isPercent && !badNumber(r.Max) && r.Max > maxDropPct {
			errs = append(errs, ValidationError{Field: field + ".max", RangeID: id, Message: "cannot exceed 100 percent"})
		}
		if !rangeShapes[r.Shape] {
			errs = append(errs, ValidationError{Field: field + ".shape", RangeID: id, Message: fmt.Sprintf("unsupported shape %q", r.Shape)})
		}
		if r.Shape == dist.PredictionCentric {
			switch {
			case badNumber(r.ExpectedMin) || badNumber(r.ExpectedMax):
				errs = append(errs, ValidationError{Field: field + ".expected", RangeID: id, Message: "expected band must be finite"})
			case r.ExpectedMin >= r.ExpectedMax:
				errs = append(errs, ValidationError{Field: field + ".expectedMax", RangeID: id, Message: "expectedMax must exceed expectedMin"})
			case r.ExpectedMin < r.Min || r.ExpectedMax > r.Max:
				errs = append(errs, ValidationError{Field: field + ".expected", RangeID: id, Message: "expected band must sit inside [min, max]"})
			}
		}
		switch {
		case r.Weight == nil:
			weightSum += r.Max - r.Min
		case badNumber(*r.Weight) || *r.Weight < 0:
			errs = append(errs, ValidationError{Field: field + ".weight", RangeID: id, Message: "weight must be a non-negative number"})
		default:
			weightSum += *r.Weight
		}
	}
	if len(errs) == 0 && weightSum <= 0 {
		errs = append(errs, ValidationError{Field: field, Message: "weights sum to zero"})
	}
	return errs
}

func validateAuto(p AutoParams) []ValidationError {
	errs := validateCommon(p.SupplyCount, p.NumSimulations)
	errs = append(errs, checkBounds("fdvMin", "fdvMax", p.FdvMin, p.FdvMax)...)
	errs = append(errs, checkBounds("dropMinPct", "dropMaxPct", p.DropMinPct, p.DropMaxPct)...)
	if !badNumber(p.DropMaxPct) && p.DropMaxPct > maxDropPct {
		errs = append(errs, ValidationError{Field: "dropMaxPct", Message: "cannot exceed 100 percent"})
	}
	return errs
}

// Overlap flags two ranges on one side that intersect. Overlapping ranges
// are legal (the mixture stacks their mass), so this is advisory data for
// callers, never a validation failure.
type Overlap struct {
	Side     string  `json:"side"`
	FirstID  string  `json:"firstId"`
	SecondID string  `json:"secondId"`
	Lo       float64 `json:"lo"`
	Hi       float64 `json:"hi"`
}

// DetectOverlaps reports every intersecting pair on both sides.
func DetectOverlaps(p RangesParams) []Overlap {
	out := sideOverlaps("fdv", p.FdvRanges)
	return append(out, sideOverlaps("drop", p.DropRanges)...)
}

func sideOverlaps(side string, ranges []Range) []Overlap {
	var out []Overlap
	for i := 0; i < len(ranges); i++ {
		for j := i + 1; j < len(ranges); j++ {
			lo := math.Max(ranges[i].Min, ranges[j].Min)
			hi := math.Min(ranges[i].Max, ranges[j].Max)
			if lo < hi {
				out = append(out, Overlap{
					Side:     side,
					FirstID:  rangeID(ranges[i], i),
					SecondID: rangeID(ranges[j], j),
					Lo:       lo,
					Hi:       hi,
				})
			}
		}
	}
	return out
}

func rangeID(r Range, idx int) string {
	if r.ID != "" {
		return r.ID
	}
	return strconv.Itoa(idx)
}

// Package engine ties the sampling primitives into three payout
// estimators: the fixed-formula quick model, the custom-ranges model, and
// the auto-shaped three-band model. All of them feed the same statistics
// pipeline and produce the same Result shape.
package engine

import (
	"encoding/json"
	"fmt"

	"dropcast/internal/dist"
	"dropcast/internal/stats"
)

// Kind discriminates the engine variants on the wire.
type Kind string

const (
	KindFixed  Kind = "fixedFormula"
	KindRanges Kind = "customRanges"
	KindAuto   Kind = "autoShaped"
)

// Parameters is the tagged union over the three variants. Concrete types:
// FixedParams, RangesParams, AutoParams.
type Parameters interface {
	Kind() Kind
}

// FixedParams drive the quick estimator: one shaped band per factor.
type FixedParams struct {
	SupplyCount    float64   `json:"supplyCount"`
	NumSimulations int       `json:"numSimulations"`
	Seed           *uint32   `json:"seed,omitempty"`
	Fdv            FixedSide `json:"fdv"`
	Drop           FixedSide `json:"drop"`
}

// FixedSide is one factor of the fixed engine. FDV is entered in millions
// of dollars, the drop share in percent. Mode applies to triangular shapes
// only; nil puts the peak 20% above Min.
type FixedSide struct {
	Min   float64    `json:"min"`
	Max   float64    `json:"max"`
	Shape dist.Shape `json:"shape"`
	Mode  *float64   `json:"mode,omitempty"`
}

// Range is one user-defined band for the custom-ranges engine.
type Range struct {
	ID    string     `json:"id,omitempty"`
	Min   float64    `json:"min"`
	Max   float64    `json:"max"`
	Shape dist.Shape `json:"shape"`
	// Weight is optional; a range without one weighs in at its width.
	Weight *float64 `json:"weight,omitempty"`
	// ExpectedMin/ExpectedMax bound the likely band for predictionCentric
	// ranges and must sit inside [Min, Max].
	ExpectedMin float64 `json:"expectedMin,omitempty"`
	ExpectedMax float64 `json:"expectedMax,omitempty"`
}

// RangesParams drive the custom-ranges engine. Ranges may overlap; the
// mixture stacks their mass where they do.
type RangesParams struct {
	SupplyCount    float64 `json:"supplyCount"`
	NumSimulations int     `json:"numSimulations"`
	Seed           *uint32 `json:"seed,omitempty"`
	FdvRanges      []Range `json:"fdvRanges"`
	DropRanges     []Range `json:"dropRanges"`
}

// AutoParams drive the auto-shaped engine: bounds only, shape by the
// fixed three-band design.
type AutoParams struct {
	SupplyCount    float64 `json:"supplyCount"`
	NumSimulations int     `json:"numSimulations"`
	Seed           *uint32 `json:"seed,omitempty"`
	FdvMin         float64 `json:"fdvMin"`
	FdvMax         float64 `json:"fdvMax"`
	DropMinPct     float64 `json:"dropMinPct"`
	DropMaxPct     float64 `json:"dropMaxPct"`
}

func (FixedParams) Kind() Kind  { return KindFixed }
func (RangesParams) Kind() Kind { return KindRanges }
func (AutoParams) Kind() Kind   { return KindAuto }

// Envelope carries parameters over the wire with an explicit kind tag.
type Envelope struct {
	Kind   Kind            `json:"kind"`
	Params json.RawMessage `json:"params"`
}

// Decode resolves the envelope into its concrete parameter type.
func (e Envelope) Decode() (Parameters, error) {
	switch e.Kind {
	case KindFixed:
		var p FixedParams
		if err := json.Unmarshal(e.Params, &p); err != nil {
			return nil, fmt.Errorf("engine: decode %s params: %w", e.Kind, err)
		}
		return p, nil
	case KindRanges:
		var p RangesParams
		if err := json.Unmarshal(e.Params, &p); err != nil {
			return nil, fmt.Errorf("engine: decode %s params: %w", e.Kind, err)
		}
		return p, nil
	case KindAuto:
		var p AutoParams
		if err := json.Unmarshal(e.Params, &p); err != nil {
			return nil, fmt.Errorf("engine: decode %s params: %w", e.Kind, err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
}

// ThresholdProbability pairs a payout level with the chance of reaching it.
type ThresholdProbability struct {
	Threshold   float64 `json:"threshold"`
	Probability float64 `json:"probability"`
}

// Result is the shared output shape of all three engines. Seed echoes the
// seed actually used so any run can be replayed.
type Result struct {
	Kind                   Kind                   `json:"kind"`
	Seed                   uint32                 `json:"seed"`
	Stats                  stats.Summary          `json:"stats"`
	Histogram              []stats.Bin            `json:"histogram"`
	ThresholdProbabilities []ThresholdProbability `json:"thresholdProbabilities"`
	WorstCase              float64                `json:"worstCase"`
	BestCase               float64                `json:"bestCase"`
	ExecutionTimeMs        float64                `json:"executionTimeMs"`
	Values                 []float64              `json:"values,omitempty"`
}

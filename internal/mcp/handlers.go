package mcp

import (
	"encoding/json"
	"fmt"

	"dropcast/internal/engine"
	"dropcast/internal/preview"
	"dropcast/internal/visuals"
)

// paramsArgs is the argument envelope shared by every tool that takes a
// parameter set: a preset name, or an explicit kind+params pair.
type paramsArgs struct {
	Kind   engine.Kind     `json:"kind"`
	Params json.RawMessage `json:"params"`
	Preset string          `json:"preset"`
}

func (s *Server) resolveParameters(a paramsArgs) (engine.Parameters, error) {
	if a.Preset != "" {
		p, err := s.presets.Find(a.Preset)
		if err != nil {
			return nil, err
		}
		return p.Params, nil
	}
	if a.Kind == "" || len(a.Params) == 0 {
		return nil, fmt.Errorf("either preset or kind+params is required")
	}
	return engine.Envelope{Kind: a.Kind, Params: a.Params}.Decode()
}

func rangesOf(p engine.Parameters) (engine.RangesParams, bool) {
	switch v := p.(type) {
	case engine.RangesParams:
		return v, true
	case *engine.RangesParams:
		return *v, true
	}
	return engine.RangesParams{}, false
}

type validationReport struct {
	Valid    bool                     `json:"valid"`
	Errors   []engine.ValidationError `json:"errors"`
	Overlaps []engine.Overlap         `json:"overlaps,omitempty"`
}

func (s *Server) handleValidateParameters(raw json.RawMessage) (interface{}, error) {
	var args paramsArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	params, err := s.resolveParameters(args)
	if err != nil {
		// Undecodable params are a finding, not a transport failure.
		return validationReport{
			Valid:  false,
			Errors: []engine.ValidationError{{Field: "params", Message: err.Error()}},
		}, nil
	}

	issues := engine.Validate(params)
	if issues == nil {
		issues = []engine.ValidationError{}
	}
	report := validationReport{Valid: len(issues) == 0, Errors: issues}
	if rp, ok := rangesOf(params); ok {
		report.Overlaps = engine.DetectOverlaps(rp)
	}
	return report, nil
}

type runArgs struct {
	paramsArgs
	Thresholds    []float64 `json:"thresholds"`
	IncludeValues bool      `json:"includeValues"`
}

type runCharts struct {
	Histogram   string `json:"histogram,omitempty"`
	Percentiles string `json:"percentiles,omitempty"`
	Thresholds  string `json:"thresholds,omitempty"`
}

type runResponse struct {
	engine.Result
	Overlaps []engine.Overlap `json:"overlaps,omitempty"`
	Charts   *runCharts       `json:"charts,omitempty"`
}

func (s *Server) handleRunSimulation(raw json.RawMessage) (interface{}, error) {
	var args runArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	params, err := s.resolveParameters(args.paramsArgs)
	if err != nil {
		return nil, err
	}

	thresholds := args.Thresholds
	if thresholds == nil && s.cfg != nil {
		thresholds = s.cfg.Thresholds
	}
	result, err := engine.Run(params, engine.RunOptions{
		Thresholds:    thresholds,
		IncludeValues: args.IncludeValues,
	})
	if err != nil {
		return nil, err
	}

	resp := runResponse{Result: result}
	if rp, ok := rangesOf(params); ok {
		resp.Overlaps = engine.DetectOverlaps(rp)
	}
	if s.cfg != nil && s.cfg.EnableMermaidCharts {
		resp.Charts = &runCharts{
			Histogram:   visuals.GeneratePayoutHistogram(result.Histogram),
			Percentiles: visuals.GeneratePercentileLadder(result.Stats),
			Thresholds:  visuals.GenerateThresholdChart(result.ThresholdProbabilities),
		}
	}
	return resp, nil
}

type previewArgs struct {
	paramsArgs
	Points int `json:"points"`
}

type previewCharts struct {
	Fdv  string `json:"fdv,omitempty"`
	Drop string `json:"drop,omitempty"`
}

type previewResponse struct {
	preview.Density
	Charts *previewCharts `json:"charts,omitempty"`
}

func (s *Server) handleGetDensityPreview(raw json.RawMessage) (interface{}, error) {
	var args previewArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}

	params, err := s.resolveParameters(args.paramsArgs)
	if err != nil {
		return nil, err
	}
	if errs := engine.Validate(params); len(errs) > 0 {
		return nil, &engine.InvalidParametersError{Errors: errs}
	}

	density, err := preview.ForParameters(params, args.Points)
	if err != nil {
		return nil, err
	}

	resp := previewResponse{Density: density}
	if s.cfg != nil && s.cfg.EnableMermaidCharts {
		resp.Charts = &previewCharts{
			Fdv:  visuals.GenerateDensityChart("FDV Sampling Density ($M)", "density", density.Fdv),
			Drop: visuals.GenerateDensityChart("Drop Share Sampling Density (%)", "density", density.Drop),
		}
	}
	return resp, nil
}

func (s *Server) handleListPresets(json.RawMessage) (interface{}, error) {
	all, err := s.presets.All()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"presets": all}, nil
}

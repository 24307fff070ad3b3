package mcp

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/rs/zerolog/log"
)

// tool couples one MCP tool's wire description with its handler. The
// resolved schema rejects malformed arguments before the handler runs;
// field-level semantics stay with engine.Validate, which reports exact
// field paths instead of schema jargon.
type tool struct {
	name        string
	description string
	schema      *jsonschema.Schema
	resolved    *jsonschema.Resolved
	handler     func(json.RawMessage) (interface{}, error)
}

func (s *Server) registerTools() {
	s.add(tool{
		name: "validate_parameters",
		description: "Check simulation parameters without running anything. Returns {valid, errors[]} where " +
			"each error names the offending field (and range ID for customRanges). Overlapping custom ranges " +
			"are legal and reported separately as advisories, not errors.",
		schema:  withParams(nil, nil),
		handler: s.handleValidateParameters,
	})
	s.add(tool{
		name: "run_simulation",
		description: "Run the Monte-Carlo airdrop payout simulation. Accepts either a preset name or an explicit " +
			"kind+params pair. Results include percentiles, a log-spaced histogram, threshold probabilities, and " +
			"the analytic worst/best cases. Pass a seed inside params to make the run reproducible; the seed " +
			"actually used is always echoed back.\n\n" +
			"GUARDRAIL: probabilities come from the simulation only. If this tool errors, report the error; do " +
			"not substitute your own estimate.",
		schema: withParams(map[string]*jsonschema.Schema{
			"thresholds": {
				Type:        "array",
				Items:       &jsonschema.Schema{Type: "number"},
				Description: "Payout thresholds (USD per supply unit) to report P(payout >= t) for. Default: 60, 120, 300.",
			},
			"includeValues": {
				Type:        "boolean",
				Description: "Echo every per-trial payout in the result. Large; off by default.",
			},
		}, nil),
		handler: s.handleRunSimulation,
	})
	s.add(tool{
		name: "get_density_preview",
		description: "Trace the probability density the given parameters would sample from, as one polyline per " +
			"zone and factor (FDV and drop share). Use it to sanity-check a sampling design before committing to " +
			"a full run.",
		schema: withParams(map[string]*jsonschema.Schema{
			"points": {
				Type:        "integer",
				Description: "Vertices per zone polyline (default 64).",
			},
		}, nil),
		handler: s.handleGetDensityPreview,
	})
	s.add(tool{
		name: "list_presets",
		description: "List the available parameter presets: the built-in ones plus any YAML presets found in the " +
			"configured presets directory. Files shadow built-ins with the same name.",
		schema:  &jsonschema.Schema{Type: "object"},
		handler: s.handleListPresets,
	})
}

func (s *Server) add(t tool) {
	resolved, err := t.schema.Resolve(nil)
	if err != nil {
		log.Error().Err(err).Str("tool", t.name).Msg("Tool schema failed to resolve, arguments reach the handler unchecked")
	} else {
		t.resolved = resolved
	}
	s.tools = append(s.tools, &t)
	s.byName[t.name] = &t
}

// withParams builds the shared argument schema: a preset name or an
// explicit kind+params pair, plus any tool-specific extras.
func withParams(extra map[string]*jsonschema.Schema, required []string) *jsonschema.Schema {
	props := map[string]*jsonschema.Schema{
		"kind": {
			Type:        "string",
			Enum:        []interface{}{"fixedFormula", "customRanges", "autoShaped"},
			Description: "Which engine interprets params.",
		},
		"params": {
			Type:        "object",
			Description: "Engine parameters, shaped per kind. See validate_parameters for field-level checks.",
		},
		"preset": {
			Type:        "string",
			Description: "Name of a preset to use instead of kind+params.",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

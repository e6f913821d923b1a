// Package api - API types for funding allocation
// These types define the contract for the allocation endpoints.
// The API is stateless, idempotent, and deterministic.
package api

import (
	"fundalloc/core/engine"
	"fundalloc/core/types"
	"fundalloc/core/uncertainty"
)

// AllocateRequest is the input to POST /allocate
type AllocateRequest struct {
	// Regions is the raw region table
	Regions []types.Region `json:"regions"`

	// Weights is the criterion weight configuration
	Weights types.WeightConfig `json:"weights"`

	// Constraints bound the distribution
	Constraints types.Constraints `json:"constraints"`

	// Equity requests an equity analysis alongside the result
	Equity *EquityConfig `json:"equity,omitempty"`
}

// EquityConfig configures the optional equity analysis
type EquityConfig struct {
	// PerCapita analyzes per-capita amounts
	PerCapita bool `json:"per_capita,omitempty"`

	// AtkinsonEpsilon is the inequality-aversion parameter
	AtkinsonEpsilon float64 `json:"atkinson_epsilon,omitempty"`

	// GroupRatios lists [numerator, denominator] group label pairs
	GroupRatios [][2]string `json:"group_ratios,omitempty"`

	// RatioTargets maps "groupA/groupB" keys to target ratios
	RatioTargets map[string]float64 `json:"ratio_targets,omitempty"`
}

// AllocateResponse is the output of POST /allocate
type AllocateResponse struct {
	Result   *engine.Result      `json:"result"`
	Equity   *types.EquityReport `json:"equity,omitempty"`
	Metadata *ResponseMetadata   `json:"metadata,omitempty"`
}

// ScenariosRequest is the input to POST /scenarios
type ScenariosRequest struct {
	Regions     []types.Region     `json:"regions"`
	Weights     types.WeightConfig `json:"weights"`
	Constraints types.Constraints  `json:"constraints"`

	// Scenarios lists the deltas to run; empty means the built-in catalog
	Scenarios []types.Scenario `json:"scenarios,omitempty"`

	// IncludeCatalog adds the built-in catalog to the given scenarios
	IncludeCatalog bool `json:"include_catalog,omitempty"`
}

// ScenariosResponse is the output of POST /scenarios
type ScenariosResponse struct {
	Base      *engine.Result            `json:"base"`
	Scenarios map[string]*engine.Result `json:"scenarios"`
	Metadata  *ResponseMetadata         `json:"metadata,omitempty"`
}

// UncertaintyRequest is the input to POST /uncertainty
type UncertaintyRequest struct {
	Regions     []types.Region     `json:"regions"`
	Weights     types.WeightConfig `json:"weights"`
	Constraints types.Constraints  `json:"constraints"`

	// Noise overrides the default noise model when present
	Noise *uncertainty.NoiseModel `json:"noise,omitempty"`

	// Iterations overrides the default iteration count when positive
	Iterations int `json:"iterations,omitempty"`

	// Confidence overrides the default confidence level when in (0,1)
	Confidence float64 `json:"confidence,omitempty"`
}

// UncertaintyResponse is the output of POST /uncertainty
type UncertaintyResponse struct {
	Uncertainty *types.UncertaintyResult `json:"uncertainty"`
	Metadata    *ResponseMetadata        `json:"metadata,omitempty"`
}

// ResponseMetadata carries provenance for a response
type ResponseMetadata struct {
	// RequestID is a server-generated unique request identifier
	RequestID string `json:"request_id"`

	// InputHash is a deterministic hash of the request body
	InputHash string `json:"input_hash"`

	// EngineVersion is the running engine version
	EngineVersion string `json:"engine_version"`

	// DurationMs is the server-side processing time
	DurationMs int64 `json:"duration_ms"`
}

// Package api - engine orchestration
package api

import (
	"context"

	"go.uber.org/zap"

	"fundalloc/core/engine"
	"fundalloc/core/equity"
	"fundalloc/core/scenario"
	"fundalloc/core/uncertainty"
	"fundalloc/internal/logging"
)

// Handler executes engine runs on behalf of the HTTP layer. It holds
// no state; every request is self-contained.
type Handler struct {
	log *zap.Logger
}

// NewHandler creates a new handler
func NewHandler() *Handler {
	return &Handler{log: logging.Named("api")}
}

func (h *Handler) allocate(requestID string, req *AllocateRequest) (*AllocateResponse, error) {
	in := engine.Input{
		Regions:     req.Regions,
		Weights:     req.Weights,
		Constraints: req.Constraints,
	}

	result, err := engine.Run(in)
	if err != nil {
		return nil, err
	}

	resp := &AllocateResponse{Result: result}
	if req.Equity != nil {
		resp.Equity = equity.Analyze(result.Allocation, req.Regions, equity.Options{
			PerCapita:       req.Equity.PerCapita,
			AtkinsonEpsilon: req.Equity.AtkinsonEpsilon,
			GroupPairs:      req.Equity.GroupRatios,
			RatioTargets:    req.Equity.RatioTargets,
		})
	}

	h.log.Info("allocation served",
		zap.String("request_id", requestID),
		zap.Int("regions", len(req.Regions)))
	return resp, nil
}

func (h *Handler) scenarios(requestID string, req *ScenariosRequest) (*ScenariosResponse, error) {
	in := engine.Input{
		Regions:     req.Regions,
		Weights:     req.Weights,
		Constraints: req.Constraints,
	}

	base, err := engine.Run(in)
	if err != nil {
		return nil, err
	}

	list := req.Scenarios
	if req.IncludeCatalog || len(list) == 0 {
		list = append(list, scenario.Catalog()...)
	}

	results, err := scenario.RunAll(in, list)
	if err != nil {
		return nil, err
	}

	h.log.Info("scenario comparison served",
		zap.String("request_id", requestID),
		zap.Int("scenarios", len(results)))
	return &ScenariosResponse{Base: base, Scenarios: results}, nil
}

func (h *Handler) uncertainty(ctx context.Context, requestID string, req *UncertaintyRequest) (*UncertaintyResponse, error) {
	in := engine.Input{
		Regions:     req.Regions,
		Weights:     req.Weights,
		Constraints: req.Constraints,
	}

	noise := uncertainty.DefaultNoiseModel()
	if req.Noise != nil {
		noise = *req.Noise
	}

	estimator := uncertainty.Estimator{
		Iterations: req.Iterations,
		Confidence: req.Confidence,
	}
	result, err := estimator.Estimate(ctx, in, noise)
	if err != nil {
		return nil, err
	}

	h.log.Info("uncertainty estimate served",
		zap.String("request_id", requestID),
		zap.Int("iterations", result.Iterations))
	return &UncertaintyResponse{Uncertainty: result}, nil
}

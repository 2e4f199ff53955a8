package analytics

import (
	"context"
	"fmt"
	"time"

	"SigFuse/internal/domain/repository"
)

// scorerAttempts bounds retries against the scorer; the fusion engine
// degrades to indifference on final failure, so retries stay short.
const scorerAttempts = 2

// HTTPScorer is the external probability scorer client. It is consulted when
// the local online model has not yet fitted for a symbol.
type HTTPScorer struct {
	base *HTTPServiceBase
}

// NewHTTPScorer creates a scorer client for the given service URL.
func NewHTTPScorer(baseURL string, timeout time.Duration) *HTTPScorer {
	return &HTTPScorer{base: NewHTTPServiceBase(baseURL, timeout)}
}

type scoreReq struct {
	Symbol   string             `json:"symbol"`
	Features map[string]float64 `json:"features"`
}

type scoreResp struct {
	ProbaUp float64 `json:"proba_up"`
}

func (s *HTTPScorer) PredictProba(ctx context.Context, symbol repository.Symbol, features map[string]float64) (float64, error) {
	var resp scoreResp
	err := s.base.PostJSONWithRetry(ctx, "/edge/predict", scoreReq{Symbol: string(symbol), Features: features}, &resp, scorerAttempts)
	if err != nil {
		return 0, fmt.Errorf("post edge: %w", err)
	}
	if resp.ProbaUp < 0 || resp.ProbaUp > 1 {
		return 0, fmt.Errorf("scorer returned probability %v out of range", resp.ProbaUp)
	}
	return resp.ProbaUp, nil
}

var _ repository.ProbabilityScorer = (*HTTPScorer)(nil)

package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"SigFuse/internal/domain/repository"
)

func TestScorerRetriesTransientFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"proba_up": 0.42}`))
	}))
	defer srv.Close()

	s := NewHTTPScorer(srv.URL, time.Second)
	p, err := s.PredictProba(context.Background(), repository.Symbol("BTCUSDT"), map[string]float64{"rsi14": 50})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if p != 0.42 {
		t.Fatalf("proba = %v, want 0.42", p)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func TestScorerRejectsOutOfRangeProbability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"proba_up": 1.7}`))
	}))
	defer srv.Close()

	s := NewHTTPScorer(srv.URL, time.Second)
	if _, err := s.PredictProba(context.Background(), repository.Symbol("BTCUSDT"), nil); err == nil {
		t.Fatal("expected error for probability outside [0,1]")
	}
}

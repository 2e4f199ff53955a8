package usecase

import (
	"context"
	"testing"

	drepo "SigFuse/internal/domain/repository"
)

func testCandlesUseCase(t *testing.T, minutes int) *CandlesUseCase {
	t.Helper()
	registry, err := drepo.NewSymbolRegistry([]string{"BTCUSDT"})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	data, _ := seededMarketData(t, minutes)
	return NewCandlesUseCase(data, registry)
}

func TestGetCandlesServesBaseTimeframe(t *testing.T) {
	uc := testCandlesUseCase(t, 31)

	res, err := uc.GetCandles(context.Background(), GetCandlesParams{
		Symbol:    "btcusdt",
		Timeframe: drepo.TF1m,
		Limit:     10,
	})
	if err != nil {
		t.Fatalf("get candles: %v", err)
	}
	if res.Symbol != "BTCUSDT" || res.Timeframe != "1m" {
		t.Fatalf("result = %s/%s", res.Symbol, res.Timeframe)
	}
	if res.Count != 10 || len(res.Candles) != 10 {
		t.Fatalf("count = %d/%d, want 10", res.Count, len(res.Candles))
	}
}

func TestGetCandlesRejectsUnknownTimeframe(t *testing.T) {
	uc := testCandlesUseCase(t, 31)

	_, err := uc.GetCandles(context.Background(), GetCandlesParams{
		Symbol:    "BTCUSDT",
		Timeframe: drepo.Timeframe("4h"),
	})
	if err == nil {
		t.Fatal("expected error for unsupported timeframe")
	}
}

func TestGetCandlesRejectsUntrackedSymbol(t *testing.T) {
	uc := testCandlesUseCase(t, 31)

	_, err := uc.GetCandles(context.Background(), GetCandlesParams{
		Symbol:    "ETHUSDT",
		Timeframe: drepo.TF1m,
	})
	if err == nil {
		t.Fatal("expected error for untracked symbol")
	}
}

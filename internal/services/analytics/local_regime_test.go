package analytics

import (
	"math"
	"testing"

	"SigFuse/internal/domain/models"
)

func trendRow(close, ema, slope, adx, atrRatio float64) models.FeatureRow {
	r := models.FeatureRow{
		EMA200: ema, EMA200Slope: slope, ADX14: adx, ATRRatio: atrRatio,
	}
	r.Close = close
	return r
}

func TestClassifyRegimeBull(t *testing.T) {
	rows := []models.FeatureRow{trendRow(110, 100, 0.5, 25, 0.01)}
	if got := ClassifyRegime(rows); got != models.RegimeBull {
		t.Fatalf("regime = %s, want BULL", got)
	}
}

func TestClassifyRegimeBear(t *testing.T) {
	rows := []models.FeatureRow{trendRow(90, 100, -0.5, 25, 0.01)}
	if got := ClassifyRegime(rows); got != models.RegimeBear {
		t.Fatalf("regime = %s, want BEAR", got)
	}
}

func TestClassifyRegimeChopOnWeakTrend(t *testing.T) {
	// price above EMA but slope negative: no agreement, chop
	rows := []models.FeatureRow{trendRow(110, 100, -0.5, 25, 0.01)}
	if got := ClassifyRegime(rows); got != models.RegimeChop {
		t.Fatalf("regime = %s, want CHOP", got)
	}
}

func TestClassifyRegimeChopOnLowADX(t *testing.T) {
	rows := []models.FeatureRow{trendRow(110, 100, 0.5, 10, 0.01)}
	if got := ClassifyRegime(rows); got != models.RegimeChop {
		t.Fatalf("regime = %s, want CHOP", got)
	}
}

func TestClassifyRegimeChopOnDeadVolatility(t *testing.T) {
	rows := []models.FeatureRow{trendRow(110, 100, 0.5, 25, 0.001)}
	if got := ClassifyRegime(rows); got != models.RegimeChop {
		t.Fatalf("regime = %s, want CHOP", got)
	}
}

func TestClassifyRegimeChopOnMissingInputs(t *testing.T) {
	rows := []models.FeatureRow{trendRow(110, math.NaN(), 0.5, 25, 0.01)}
	if got := ClassifyRegime(rows); got != models.RegimeChop {
		t.Fatalf("regime = %s, want CHOP on missing ema", got)
	}
	if got := ClassifyRegime(nil); got != models.RegimeChop {
		t.Fatalf("regime = %s, want CHOP on empty series", got)
	}
}

func TestClassifyRegimeToleratesColdADX(t *testing.T) {
	// missing ADX/ATR must not block a clear trend readout
	rows := []models.FeatureRow{trendRow(110, 100, 0.5, math.NaN(), math.NaN())}
	if got := ClassifyRegime(rows); got != models.RegimeBull {
		t.Fatalf("regime = %s, want BULL", got)
	}
}

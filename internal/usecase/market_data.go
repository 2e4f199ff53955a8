package usecase

import (
	"SigFuse/internal/domain/models"
	drepo "SigFuse/internal/domain/repository"
	"SigFuse/internal/service/cache"
	"SigFuse/internal/services/resample"
)

// MarketData exposes the multi-timeframe view over the candle store. Every
// build re-validates each timeframe and refreshes the quality cache, so the
// fusion engine and the API always read the report matching the series they
// were given.
type MarketData struct {
	store   *CandleStore
	quality *cache.TTLCache
}

// MultiTF bundles the three derived candle series for one symbol.
type MultiTF struct {
	M1  []models.Candle
	M5  []models.Candle
	M15 []models.Candle
}

// NewMarketData creates the view over store.
func NewMarketData(store *CandleStore) *MarketData {
	return &MarketData{store: store, quality: cache.NewTTLCache()}
}

// MultiTimeframe returns the 1m tail plus 5m/15m roll-ups and refreshes the
// quality reports for all three series.
func (m *MarketData) MultiTimeframe(symbol drepo.Symbol, limit1m int) MultiTF {
	m1 := m.store.Recent(symbol, limit1m)
	out := MultiTF{M1: m1}
	if len(m1) == 0 {
		return out
	}
	out.M5 = resample.Aggregate(m1, drepo.TF5m)
	out.M15 = resample.Aggregate(m1, drepo.TF15m)

	m.setQuality(symbol, drepo.TF1m, resample.Validate(m1, drepo.TF1m))
	m.setQuality(symbol, drepo.TF5m, resample.Validate(out.M5, drepo.TF5m))
	m.setQuality(symbol, drepo.TF15m, resample.Validate(out.M15, drepo.TF15m))
	return out
}

// Candles serves one timeframe directly, for the candles API.
func (m *MarketData) Candles(symbol drepo.Symbol, tf drepo.Timeframe, limit int) []models.Candle {
	if tf == drepo.TF1m {
		return m.store.Recent(symbol, limit)
	}
	// roll up from the full 1m buffer, then trim
	rolled := resample.Aggregate(m.store.Recent(symbol, 0), tf)
	if limit > 0 && len(rolled) > limit {
		rolled = rolled[len(rolled)-limit:]
	}
	return rolled
}

// Quality returns the last computed report for (symbol, tf); a series never
// validated reads as clean.
func (m *MarketData) Quality(symbol drepo.Symbol, tf drepo.Timeframe) models.QualityReport {
	if v, ok := m.quality.Get(qualityKey(symbol, tf)); ok {
		if rep, ok2 := v.(models.QualityReport); ok2 {
			return rep
		}
	}
	return models.QualityReport{}
}

func (m *MarketData) setQuality(symbol drepo.Symbol, tf drepo.Timeframe, rep models.QualityReport) {
	m.quality.Set(qualityKey(symbol, tf), rep, 0)
}

func qualityKey(symbol drepo.Symbol, tf drepo.Timeframe) string {
	return string(symbol) + "/" + string(tf)
}

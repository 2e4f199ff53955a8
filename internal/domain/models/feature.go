package models

import "math"

// ModelFeatures is the fixed input order of the online probability model.
var ModelFeatures = []string{
	"rsi14", "ret_1", "ret_5", "ret_15", "vol_z",
	"upper_wick", "lower_wick", "atr_ratio",
	"ema200", "ema200_slope", "adx14",
}

// FeatureRow is a candle plus derived indicators. Indicator fields hold NaN
// until their warm-up window is satisfied.
type FeatureRow struct {
	Candle

	RSI14       float64
	Ret1        float64
	Ret5        float64
	Ret15       float64
	VolZ        float64
	UpperWick   float64
	LowerWick   float64
	ATR14       float64
	ATRRatio    float64
	EMA200      float64
	EMA200Slope float64
	ADX14       float64

	// FwdRet5 is the realized 5-bar forward return; NaN when the horizon is
	// not yet covered by buffered data.
	FwdRet5 float64
}

// Vector returns the model feature vector in ModelFeatures order and whether
// every component is finite.
func (r FeatureRow) Vector() ([]float64, bool) {
	x := []float64{
		r.RSI14, r.Ret1, r.Ret5, r.Ret15, r.VolZ,
		r.UpperWick, r.LowerWick, r.ATRRatio,
		r.EMA200, r.EMA200Slope, r.ADX14,
	}
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return x, false
		}
	}
	return x, true
}

// FeatureMap exposes the vector keyed by feature name, for external scorers.
func (r FeatureRow) FeatureMap() map[string]float64 {
	x, _ := r.Vector()
	m := make(map[string]float64, len(ModelFeatures))
	for i, name := range ModelFeatures {
		m[name] = x[i]
	}
	return m
}

// Finite reports whether v is a usable number.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package features

import (
	"math"

	"SigFuse/internal/domain/models"

	talib "github.com/markcheno/go-talib"
)

const (
	rsiPeriod = 14
	atrPeriod = 14
	adxPeriod = 14
	emaPeriod = 200
	volWindow = 20

	eps = 1e-9
)

// Compute derives the full indicator set for a candle series. Output is
// index-aligned with the input; any indicator whose warm-up window is not yet
// satisfied at a given row holds NaN there. FwdRet5 is filled only for rows
// whose horizon is already covered by the series, so the trailing horizonBars
// rows always carry NaN.
//
// Input must be sorted ascending by open time.
func Compute(candles []models.Candle, horizonBars int) []models.FeatureRow {
	n := len(candles)
	if n == 0 {
		return nil
	}

	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	volume := make([]float64, n)
	for i, c := range candles {
		high[i] = c.High
		low[i] = c.Low
		closes[i] = c.Close
		volume[i] = c.Volume
	}

	rows := make([]models.FeatureRow, n)
	for i := range rows {
		rows[i] = blankRow(candles[i])
	}

	if n > rsiPeriod {
		fillFrom(talib.Rsi(closes, rsiPeriod), rsiPeriod, rows, func(r *models.FeatureRow, v float64) { r.RSI14 = v })
	}
	if n > atrPeriod {
		atr := talib.Atr(high, low, closes, atrPeriod)
		fillFrom(atr, atrPeriod, rows, func(r *models.FeatureRow, v float64) { r.ATR14 = v })
		for i := atrPeriod; i < n; i++ {
			if closes[i] > 0 {
				rows[i].ATRRatio = atr[i] / closes[i]
			}
		}
	}
	if n >= emaPeriod {
		ema := talib.Ema(closes, emaPeriod)
		fillFrom(ema, emaPeriod-1, rows, func(r *models.FeatureRow, v float64) { r.EMA200 = v })
		for i := emaPeriod; i < n; i++ {
			rows[i].EMA200Slope = ema[i] - ema[i-1]
		}
	}
	if n >= 2*adxPeriod {
		fillFrom(talib.Adx(high, low, closes, adxPeriod), 2*adxPeriod-1, rows, func(r *models.FeatureRow, v float64) { r.ADX14 = v })
	}

	for i := 0; i < n; i++ {
		fillReturns(closes, i, &rows[i])
		fillWicks(candles[i], &rows[i])
	}
	fillVolumeZ(volume, rows)

	for i := 0; i+horizonBars < n && horizonBars > 0; i++ {
		if closes[i] > 0 {
			rows[i].FwdRet5 = closes[i+horizonBars]/closes[i] - 1
		}
	}

	return rows
}

func blankRow(c models.Candle) models.FeatureRow {
	nan := math.NaN()
	return models.FeatureRow{
		Candle: c,
		RSI14:  nan, Ret1: nan, Ret5: nan, Ret15: nan, VolZ: nan,
		UpperWick: nan, LowerWick: nan, ATR14: nan, ATRRatio: nan,
		EMA200: nan, EMA200Slope: nan, ADX14: nan, FwdRet5: nan,
	}
}

// fillFrom copies indicator values starting at the first stable index.
func fillFrom(src []float64, from int, rows []models.FeatureRow, set func(*models.FeatureRow, float64)) {
	for i := from; i < len(rows) && i < len(src); i++ {
		set(&rows[i], src[i])
	}
}

func fillReturns(closes []float64, i int, r *models.FeatureRow) {
	r.Ret1 = pctChange(closes, i, 1)
	r.Ret5 = pctChange(closes, i, 5)
	r.Ret15 = pctChange(closes, i, 15)
}

func pctChange(closes []float64, i, lag int) float64 {
	if i < lag || closes[i-lag] == 0 {
		return math.NaN()
	}
	return closes[i]/closes[i-lag] - 1
}

func fillWicks(c models.Candle, r *models.FeatureRow) {
	rng := c.High - c.Low + eps
	top := math.Max(c.Close, c.Open)
	r.UpperWick = (c.High - top) / rng
	r.LowerWick = (math.Min(c.Close, c.Open) - c.Low) / rng
}

// fillVolumeZ computes the rolling volume z-score over volWindow bars using
// the sample standard deviation.
func fillVolumeZ(volume []float64, rows []models.FeatureRow) {
	n := len(volume)
	if n < volWindow {
		return
	}
	var sum, sum2 float64
	for i := 0; i < n; i++ {
		sum += volume[i]
		sum2 += volume[i] * volume[i]
		if i >= volWindow {
			old := volume[i-volWindow]
			sum -= old
			sum2 -= old * old
		}
		if i < volWindow-1 {
			continue
		}
		w := float64(volWindow)
		mean := sum / w
		variance := (sum2 - w*mean*mean) / (w - 1)
		if variance < 0 {
			variance = 0
		}
		rows[i].VolZ = (volume[i] - mean) / (math.Sqrt(variance) + eps)
	}
}

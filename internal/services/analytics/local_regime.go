package analytics

import (
	"SigFuse/internal/domain/models"
)

const (
	adxChopFloor      = 18
	atrRatioChopFloor = 0.003
)

// ClassifyRegime derives the local trend regime from the latest 15m feature
// row. Missing trend inputs and dead-market readings both fall back to CHOP:
// a market the classifier cannot read is not a market to trend-trade.
func ClassifyRegime(rows []models.FeatureRow) models.RegimeLabel {
	if len(rows) == 0 {
		return models.RegimeChop
	}
	last := rows[len(rows)-1]

	if !models.Finite(last.Close) || !models.Finite(last.EMA200) || !models.Finite(last.EMA200Slope) {
		return models.RegimeChop
	}
	if models.Finite(last.ADX14) && last.ADX14 < adxChopFloor {
		return models.RegimeChop
	}
	if models.Finite(last.ATRRatio) && last.ATRRatio < atrRatioChopFloor {
		return models.RegimeChop
	}

	if last.Close > last.EMA200 && last.EMA200Slope > 0 {
		return models.RegimeBull
	}
	if last.Close < last.EMA200 && last.EMA200Slope < 0 {
		return models.RegimeBear
	}
	return models.RegimeChop
}

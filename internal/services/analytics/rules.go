package analytics

import (
	"SigFuse/internal/domain/models"
)

// Rule is one trade-entry pattern evaluated against the latest feature row.
// Rules are checked in a fixed order and the first hit wins.
type Rule interface {
	Name() string
	Evaluate(row models.FeatureRow, regime models.RegimeLabel) models.StrategyVerdict
}

// DefaultRules returns the production rule set in priority order.
func DefaultRules() []Rule {
	return []Rule{
		ShortSniper{},
		LongDip{},
		TrendPullback{},
	}
}

// Match runs the rules in order and returns the first non-neutral verdict, or
// a neutral verdict naming no strategy.
func Match(rules []Rule, row models.FeatureRow, regime models.RegimeLabel) models.StrategyVerdict {
	for _, r := range rules {
		if v := r.Evaluate(row, regime); !v.Neutral() {
			return v
		}
	}
	return models.StrategyVerdict{Strategy: "NONE"}
}

// ShortSniper fires on overbought exhaustion: stretched RSI, a volume spike,
// a dominant upper wick and an extended 15-bar run-up.
type ShortSniper struct{}

func (ShortSniper) Name() string { return "SHORT_SNIPER" }

func (s ShortSniper) Evaluate(row models.FeatureRow, _ models.RegimeLabel) models.StrategyVerdict {
	hit := orZero(row.RSI14) >= 72 &&
		orZero(row.VolZ) >= 1.5 &&
		orZero(row.UpperWick) >= 0.35 &&
		orZero(row.Ret15) >= 0.12
	return models.StrategyVerdict{RuleShort: hit, Strategy: s.Name()}
}

// LongDip fires on capitulation: oversold RSI, a sharp 15-bar drawdown, a
// volume spike and a dominant lower wick.
type LongDip struct{}

func (LongDip) Name() string { return "LONG_DIP" }

func (l LongDip) Evaluate(row models.FeatureRow, _ models.RegimeLabel) models.StrategyVerdict {
	hit := orFull(row.RSI14) <= 28 &&
		orZero(row.Ret15) <= -0.08 &&
		orZero(row.VolZ) >= 1.2 &&
		orZero(row.LowerWick) >= 0.30
	return models.StrategyVerdict{RuleLong: hit, Strategy: l.Name()}
}

// TrendPullback trades retracements with the prevailing regime: a red 5-bar
// stretch on volume in a bull trend goes long, the mirror in a bear trend
// goes short. Neutral in chop.
type TrendPullback struct{}

func (TrendPullback) Name() string { return "TREND_PULLBACK" }

func (t TrendPullback) Evaluate(row models.FeatureRow, regime models.RegimeLabel) models.StrategyVerdict {
	v := models.StrategyVerdict{Strategy: t.Name()}
	ret5 := orZero(row.Ret5)
	volZ := orZero(row.VolZ)
	switch regime {
	case models.RegimeBull:
		v.RuleLong = ret5 < 0 && volZ >= 1.0
	case models.RegimeBear:
		v.RuleShort = ret5 > 0 && volZ >= 1.0
	}
	return v
}

// orZero treats a not-yet-warm indicator as 0, which keeps threshold
// comparisons conservative.
func orZero(v float64) float64 {
	if !models.Finite(v) {
		return 0
	}
	return v
}

// orFull treats a not-yet-warm RSI as 100 so oversold rules cannot fire on
// missing data.
func orFull(v float64) float64 {
	if !models.Finite(v) {
		return 100
	}
	return v
}

package models

import "time"

// RegimeLabel is the technical trend classification of a symbol.
type RegimeLabel string

const (
	RegimeBull RegimeLabel = "BULL"
	RegimeBear RegimeLabel = "BEAR"
	RegimeChop RegimeLabel = "CHOP"
)

// SignalKind is the categorical decision emitted by the fusion engine.
type SignalKind string

const (
	SignalNeutral     SignalKind = "NEUTRAL"
	SignalLongWeak    SignalKind = "LONG_WEAK"
	SignalLongStrong  SignalKind = "LONG_STRONG"
	SignalShortWeak   SignalKind = "SHORT_WEAK"
	SignalShortStrong SignalKind = "SHORT_STRONG"
)

// Long reports whether the signal points up.
func (k SignalKind) Long() bool { return k == SignalLongWeak || k == SignalLongStrong }

// Short reports whether the signal points down.
func (k SignalKind) Short() bool { return k == SignalShortWeak || k == SignalShortStrong }

// Neutral reports whether no direction is signalled.
func (k SignalKind) Neutral() bool { return !k.Long() && !k.Short() }

// StrategyVerdict is the output of the rule matcher.
type StrategyVerdict struct {
	RuleLong  bool
	RuleShort bool
	Strategy  string
}

// Neutral reports whether no rule fired.
func (v StrategyVerdict) Neutral() bool { return !v.RuleLong && !v.RuleShort }

// RiskLevels carries entry/stop/target prices. Pointers are nil when no entry
// price is available.
type RiskLevels struct {
	Entry  *float64 `json:"entry"`
	Stop   *float64 `json:"stop"`
	Take   *float64 `json:"take"`
	Reward *float64 `json:"rr"`
}

// SignalMeta carries auxiliary detail for audit/UI consumers.
type SignalMeta struct {
	Strategy string     `json:"strategy"`
	ProbUp   float64    `json:"prob_up"`
	ProbDown float64    `json:"prob_down"`
	Risk     RiskLevels `json:"risk"`
}

// Signal is one risk-scored trade alert for a symbol.
type Signal struct {
	ID          int64       `json:"id"`
	Symbol      string      `json:"symbol"`
	Kind        SignalKind  `json:"signal"`
	Score       int         `json:"score"`
	Probability float64     `json:"probability"`
	Regime      RegimeLabel `json:"regime"`
	RSI         *float64    `json:"rsi"`
	VolZ        *float64    `json:"vol_z"`
	UpperWick   *float64    `json:"upper_wick"`
	Ret15       *float64    `json:"ret_15"`
	CooldownMin *int        `json:"cooldown_min"`
	EntryPrice  *float64    `json:"entry_price"`
	StopLoss    *float64    `json:"stop_loss"`
	TargetPrice *float64    `json:"target_price"`
	Reasons     []string    `json:"reasons"`
	Timestamp   time.Time   `json:"timestamp"`
	Strong      bool        `json:"strong"`
	Meta        SignalMeta  `json:"meta"`
}

// Alert is the condensed strong-signal notification shape.
type Alert struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// MacroSnapshot is the externally sourced market-structure regime, consumed
// read-only.
type MacroSnapshot struct {
	Regime    RegimeLabel        `json:"regime"`
	Drivers   map[string]float64 `json:"drivers,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// QualityReport summarizes data-quality findings for one candle series.
type QualityReport struct {
	Gaps int `json:"gaps"`
	Dups int `json:"dups"`
}

// PrecisionSnapshot is a realized-outcome precision readout.
type PrecisionSnapshot struct {
	Precision float64 `json:"precision"`
	Total     int     `json:"total"`
}

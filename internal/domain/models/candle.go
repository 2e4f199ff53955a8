package models

import (
	"math"
	"time"
)

// Candle represents one OHLCV bar for a fixed time bucket.
type Candle struct {
	OpenTime time.Time `json:"open_time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// Valid reports whether all numeric fields are finite and the bar is timestamped.
func (c Candle) Valid() bool {
	if c.OpenTime.IsZero() {
		return false
	}
	for _, v := range [...]float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

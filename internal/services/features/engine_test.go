package features

import (
	"math"
	"testing"
	"time"

	"SigFuse/internal/domain/models"
)

func syntheticCandles(n int) []models.Candle {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	price := 100.0
	for i := 0; i < n; i++ {
		// gentle sawtooth so indicators have variance to work with
		move := 0.5
		if i%3 == 0 {
			move = -0.3
		}
		open := price
		price += move
		out[i] = models.Candle{
			OpenTime: start.Add(time.Duration(i) * time.Minute),
			Open:     open,
			High:     math.Max(open, price) + 0.2,
			Low:      math.Min(open, price) - 0.2,
			Close:    price,
			Volume:   100 + float64(i%7),
		}
	}
	return out
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestComputeWarmupIsNaN(t *testing.T) {
	rows := Compute(syntheticCandles(60), 5)
	if len(rows) != 60 {
		t.Fatalf("expected 60 rows, got %d", len(rows))
	}

	if !math.IsNaN(rows[13].RSI14) {
		t.Fatalf("rsi at 13 = %v, want NaN", rows[13].RSI14)
	}
	if math.IsNaN(rows[14].RSI14) {
		t.Fatal("rsi at 14 should be warm")
	}
	if !math.IsNaN(rows[13].ATR14) {
		t.Fatalf("atr at 13 = %v, want NaN", rows[13].ATR14)
	}
	if math.IsNaN(rows[14].ATR14) {
		t.Fatal("atr at 14 should be warm")
	}
	if !math.IsNaN(rows[26].ADX14) {
		t.Fatalf("adx at 26 = %v, want NaN", rows[26].ADX14)
	}
	if math.IsNaN(rows[27].ADX14) {
		t.Fatal("adx at 27 should be warm")
	}
	// series too short for ema200
	if !math.IsNaN(rows[59].EMA200) {
		t.Fatalf("ema200 = %v, want NaN for short series", rows[59].EMA200)
	}
}

func TestComputeEMAWarmsAfter200Bars(t *testing.T) {
	rows := Compute(syntheticCandles(220), 5)
	if !math.IsNaN(rows[198].EMA200) {
		t.Fatalf("ema200 at 198 = %v, want NaN", rows[198].EMA200)
	}
	if math.IsNaN(rows[199].EMA200) {
		t.Fatal("ema200 at 199 should be warm")
	}
	if !math.IsNaN(rows[199].EMA200Slope) {
		t.Fatalf("slope at 199 = %v, want NaN", rows[199].EMA200Slope)
	}
	if math.IsNaN(rows[200].EMA200Slope) {
		t.Fatal("slope at 200 should be warm")
	}
}

func TestComputeReturns(t *testing.T) {
	candles := syntheticCandles(30)
	rows := Compute(candles, 5)

	if !math.IsNaN(rows[0].Ret1) {
		t.Fatalf("ret_1 at 0 = %v, want NaN", rows[0].Ret1)
	}
	want := candles[10].Close/candles[9].Close - 1
	if !almostEqual(rows[10].Ret1, want, 1e-12) {
		t.Fatalf("ret_1 = %v, want %v", rows[10].Ret1, want)
	}
	want = candles[20].Close/candles[5].Close - 1
	if !almostEqual(rows[20].Ret15, want, 1e-12) {
		t.Fatalf("ret_15 = %v, want %v", rows[20].Ret15, want)
	}
}

func TestComputeWicks(t *testing.T) {
	c := models.Candle{
		OpenTime: time.Now(), Open: 10, High: 12, Low: 9, Close: 11, Volume: 1,
	}
	rows := Compute([]models.Candle{c}, 0)

	if !almostEqual(rows[0].UpperWick, 1.0/3.0, 1e-6) {
		t.Fatalf("upper_wick = %v", rows[0].UpperWick)
	}
	if !almostEqual(rows[0].LowerWick, 1.0/3.0, 1e-6) {
		t.Fatalf("lower_wick = %v", rows[0].LowerWick)
	}
}

func TestComputeVolumeZScore(t *testing.T) {
	candles := syntheticCandles(40)
	for i := range candles {
		candles[i].Volume = 100
	}
	candles[39].Volume = 200
	rows := Compute(candles, 5)

	if !math.IsNaN(rows[18].VolZ) {
		t.Fatalf("vol_z at 18 = %v, want NaN", rows[18].VolZ)
	}
	// flat volume window: numerator zero
	if rows[30].VolZ != 0 {
		t.Fatalf("vol_z flat = %v, want 0", rows[30].VolZ)
	}
	if rows[39].VolZ <= 3 {
		t.Fatalf("vol_z spike = %v, want large positive", rows[39].VolZ)
	}
}

func TestComputeForwardReturns(t *testing.T) {
	candles := syntheticCandles(30)
	rows := Compute(candles, 5)

	want := candles[15].Close/candles[10].Close - 1
	if !almostEqual(rows[10].FwdRet5, want, 1e-12) {
		t.Fatalf("fwd_ret_5 = %v, want %v", rows[10].FwdRet5, want)
	}
	for i := 25; i < 30; i++ {
		if !math.IsNaN(rows[i].FwdRet5) {
			t.Fatalf("fwd_ret_5 at %d = %v, want NaN", i, rows[i].FwdRet5)
		}
	}
}

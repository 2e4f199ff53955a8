package binance

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"SigFuse/internal/domain/models"
	drepo "SigFuse/internal/domain/repository"

	"github.com/adshao/go-binance/v2"
)

// RestSource implements CandleSource over the Binance REST klines endpoint.
// Used to backfill buffers on startup when no archive rows are available.
type RestSource struct {
	client  *binance.Client
	timeout time.Duration
}

// NewRestSource creates a REST candle source. Public market data needs no keys.
func NewRestSource(timeout time.Duration) *RestSource {
	return &RestSource{client: binance.NewClient("", ""), timeout: timeout}
}

func (r *RestSource) Klines(ctx context.Context, symbol drepo.Symbol, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	klines, err := r.client.NewKlinesService().
		Symbol(string(symbol)).
		Interval(string(tf)).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("klines %s %s: %w", symbol, tf, err)
	}

	out := make([]models.Candle, 0, len(klines))
	for _, k := range klines {
		c, err := fromRestKline(k)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	// The last row may be the still-open bar; keep only bars whose close time
	// has passed.
	if n := len(out); n > 0 {
		last := klines[n-1]
		if time.UnixMilli(last.CloseTime).After(time.Now()) {
			out = out[:n-1]
		}
	}
	return out, nil
}

func fromRestKline(k *binance.Kline) (models.Candle, error) {
	c := models.Candle{OpenTime: time.UnixMilli(k.OpenTime).UTC()}
	fields := []struct {
		raw string
		dst *float64
	}{
		{k.Open, &c.Open},
		{k.High, &c.High},
		{k.Low, &c.Low},
		{k.Close, &c.Close},
		{k.Volume, &c.Volume},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("parse kline %q: %w", f.raw, err)
		}
		*f.dst = v
	}
	return c, nil
}

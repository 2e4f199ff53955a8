package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"SigFuse/internal/domain/models"
	drepo "SigFuse/internal/domain/repository"
	applogger "SigFuse/pkg/logger"

	"github.com/gorilla/websocket"
)

// Stream implements a CandleStream backed by the Binance combined kline feed.
// Only closed bars are emitted; in-progress updates are dropped so the store
// never sees a partial candle.
type Stream struct {
	baseURL      string
	symbols      []drepo.Symbol
	pingInterval time.Duration
	l            *applogger.Logger

	conn      *websocket.Conn
	connected bool
}

// NewStream creates a new Binance kline stream for the given symbols.
func NewStream(baseURL string, symbols []drepo.Symbol, pingInterval time.Duration, l *applogger.Logger) *Stream {
	return &Stream{
		baseURL:      baseURL,
		symbols:      symbols,
		pingInterval: pingInterval,
		l:            l,
	}
}

// Connect establishes the WebSocket connection. All symbols are subscribed
// through the combined stream path, so no separate subscribe step is needed.
func (s *Stream) Connect(ctx context.Context) error {
	streams := make([]string, 0, len(s.symbols))
	for _, sym := range s.symbols {
		streams = append(streams, sym.Lower()+"@kline_1m")
	}
	u := fmt.Sprintf("%s/stream?streams=%s", strings.TrimRight(s.baseURL, "/"), strings.Join(streams, "/"))

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("binance connect: %w", err)
	}
	s.conn = conn
	s.connected = true
	s.l.Info("binance stream connected", applogger.Int("symbols", len(s.symbols)))
	return nil
}

type wsKline struct {
	OpenTime int64  `json:"t"` // ms
	Symbol   string `json:"s"`
	Open     string `json:"o"`
	High     string `json:"h"`
	Low      string `json:"l"`
	Close    string `json:"c"`
	Volume   string `json:"v"`
	IsClosed bool   `json:"x"`
}

type wsEvent struct {
	EventType string  `json:"e"`
	Kline     wsKline `json:"k"`
}

type wsFrame struct {
	Stream string  `json:"stream"`
	Data   wsEvent `json:"data"`
}

// Read streams closed candles and errors. The error channel yields at most
// one error; after that the caller must reconnect.
func (s *Stream) Read(ctx context.Context) (<-chan drepo.SymbolCandle, <-chan error) {
	candles := make(chan drepo.SymbolCandle, 1024)
	errs := make(chan error, 1)

	// the ping loop lives exactly as long as this read session, so repeated
	// reconnects do not accumulate pingers
	done := make(chan struct{})
	go s.pingLoop(ctx, done)

	// read loop
	go func() {
		defer close(done)
		defer close(candles)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if s.conn == nil {
					errs <- fmt.Errorf("binance conn nil")
					return
				}
				_, b, err := s.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("binance read: %w", err)
					return
				}
				var f wsFrame
				if err := json.Unmarshal(b, &f); err != nil {
					// ignore non-kline frames
					continue
				}
				if f.Data.EventType != "kline" || !f.Data.Kline.IsClosed {
					continue
				}
				sc, err := toSymbolCandle(f.Data.Kline)
				if err != nil {
					s.l.Warn("binance kline parse", applogger.Error(err))
					continue
				}
				select {
				case candles <- sc:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return candles, errs
}

// pingLoop keeps the connection alive until the read session ends or the
// context is cancelled.
func (s *Stream) pingLoop(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			if s.conn != nil {
				_ = s.conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}
}

func toSymbolCandle(k wsKline) (drepo.SymbolCandle, error) {
	sym, err := drepo.ParseSymbol(k.Symbol)
	if err != nil {
		return drepo.SymbolCandle{}, err
	}
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
			return drepo.SymbolCandle{}, fmt.Errorf("parse %q: %w", f.raw, err)
		}
		*f.dst = v
	}
	if !c.Valid() {
		return drepo.SymbolCandle{}, fmt.Errorf("invalid candle for %s", k.Symbol)
	}
	return drepo.SymbolCandle{Symbol: sym, Candle: c}, nil
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool { return s.connected }

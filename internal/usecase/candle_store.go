package usecase

import (
	"sync"

	"SigFuse/internal/domain/models"
	drepo "SigFuse/internal/domain/repository"
)

// symbolBuffer is a fixed-capacity ring of closed base candles for one symbol.
type symbolBuffer struct {
	buf   []models.Candle
	head  int // index of oldest element
	count int
}

func newSymbolBuffer(capacity int) *symbolBuffer {
	return &symbolBuffer{buf: make([]models.Candle, capacity)}
}

// append adds a candle, replacing the newest element when open times match so
// a re-delivered bar never duplicates the timeline. Returns true when a new
// slot was consumed.
func (b *symbolBuffer) append(c models.Candle) bool {
	if b.count > 0 {
		lastIdx := (b.head + b.count - 1) % len(b.buf)
		if b.buf[lastIdx].OpenTime.Equal(c.OpenTime) {
			b.buf[lastIdx] = c
			return false
		}
	}
	if b.count < len(b.buf) {
		b.buf[(b.head+b.count)%len(b.buf)] = c
		b.count++
		return true
	}
	b.buf[b.head] = c
	b.head = (b.head + 1) % len(b.buf)
	return true
}

// tail copies out the newest n candles in ascending order.
func (b *symbolBuffer) tail(n int) []models.Candle {
	if n <= 0 || n > b.count {
		n = b.count
	}
	out := make([]models.Candle, n)
	start := b.head + b.count - n
	for i := 0; i < n; i++ {
		out[i] = b.buf[(start+i)%len(b.buf)]
	}
	return out
}

// CandleStore keeps the rolling in-memory history of closed base candles for
// every tracked symbol. It is the single source the resampler and feature
// engine read from.
type CandleStore struct {
	mu       sync.RWMutex
	capacity int
	buffers  map[drepo.Symbol]*symbolBuffer
}

// NewCandleStore creates a store with the given per-symbol capacity.
func NewCandleStore(capacity int) *CandleStore {
	if capacity <= 0 {
		capacity = 6000
	}
	return &CandleStore{
		capacity: capacity,
		buffers:  make(map[drepo.Symbol]*symbolBuffer),
	}
}

// Append records one closed candle. A bar re-delivered with the open time of
// the newest buffered bar replaces it in place.
func (s *CandleStore) Append(symbol drepo.Symbol, c models.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buffers[symbol]
	if !ok {
		b = newSymbolBuffer(s.capacity)
		s.buffers[symbol] = b
	}
	b.append(c)
}

// Seed bulk-loads historical candles for a symbol, oldest first.
func (s *CandleStore) Seed(symbol drepo.Symbol, candles []models.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buffers[symbol]
	if !ok {
		b = newSymbolBuffer(s.capacity)
		s.buffers[symbol] = b
	}
	for _, c := range candles {
		b.append(c)
	}
}

// Recent returns up to limit newest candles for symbol in ascending order.
// limit <= 0 returns the whole buffer.
func (s *CandleStore) Recent(symbol drepo.Symbol, limit int) []models.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buffers[symbol]
	if !ok {
		return nil
	}
	return b.tail(limit)
}

// Len returns the buffered candle count for symbol.
func (s *CandleStore) Len(symbol drepo.Symbol) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.buffers[symbol]; ok {
		return b.count
	}
	return 0
}

package analytics

import (
	"math"
	"sync"

	"SigFuse/internal/domain/models"
	"SigFuse/internal/domain/repository"
)

const (
	// l2Alpha and etaT0 give the inverse-scaling learning rate
	// eta_t = 1 / (alpha * (t0 + t)).
	l2Alpha = 1e-4
	etaT0   = 1e4
)

type sample struct {
	x []float64
	y float64
}

// OnlineModel is a per-symbol streaming logistic classifier over a sliding
// window of resolved outcomes. Each labeled bar enters the window exactly
// once; every update standardizes the window and runs one SGD epoch over it.
// Training order is the window order, so results are deterministic.
type OnlineModel struct {
	window int
	buf    []sample

	mean []float64
	std  []float64

	w      []float64
	bias   float64
	steps  int
	fitted bool

	seenUp   int
	seenDown int
}

// NewOnlineModel creates a model with the given window capacity.
func NewOnlineModel(window int) *OnlineModel {
	if window <= 0 {
		window = 5000
	}
	dim := len(models.ModelFeatures)
	return &OnlineModel{
		window: window,
		mean:   make([]float64, dim),
		std:    make([]float64, dim),
		w:      make([]float64, dim),
	}
}

// Update appends resolved rows to the window and refits. Rows with any
// non-finite feature or an unresolved forward return are skipped.
func (m *OnlineModel) Update(rows []models.FeatureRow) {
	added := false
	for _, r := range rows {
		x, ok := r.Vector()
		if !ok || !models.Finite(r.FwdRet5) {
			continue
		}
		y := 0.0
		if r.FwdRet5 > 0 {
			y = 1.0
			m.seenUp++
		} else {
			m.seenDown++
		}
		xc := make([]float64, len(x))
		copy(xc, x)
		m.buf = append(m.buf, sample{x: xc, y: y})
		if len(m.buf) > m.window {
			m.buf = m.buf[len(m.buf)-m.window:]
		}
		added = true
	}
	if !added || len(m.buf) == 0 {
		return
	}

	m.refitScaler()
	m.epoch()
	m.fitted = true
}

// Predict returns the probability of an upward outcome for the given row.
// ok is false until the model has fitted on at least one outcome of each
// class (a one-sided window gives a degenerate classifier), or when any
// feature is non-finite.
func (m *OnlineModel) Predict(row models.FeatureRow) (float64, bool) {
	if !m.fitted || m.seenUp == 0 || m.seenDown == 0 {
		return 0, false
	}
	x, ok := row.Vector()
	if !ok {
		return 0, false
	}
	return m.proba(x), true
}

// Fitted reports whether the model has trained at least once.
func (m *OnlineModel) Fitted() bool { return m.fitted }

// Size returns the current window occupancy.
func (m *OnlineModel) Size() int { return len(m.buf) }

func (m *OnlineModel) refitScaler() {
	dim := len(m.mean)
	for j := 0; j < dim; j++ {
		var sum float64
		for _, s := range m.buf {
			sum += s.x[j]
		}
		mean := sum / float64(len(m.buf))
		var sq float64
		for _, s := range m.buf {
			d := s.x[j] - mean
			sq += d * d
		}
		std := math.Sqrt(sq / float64(len(m.buf)))
		if std == 0 {
			std = 1
		}
		m.mean[j] = mean
		m.std[j] = std
	}
}

func (m *OnlineModel) epoch() {
	for _, s := range m.buf {
		m.steps++
		eta := 1.0 / (l2Alpha * (etaT0 + float64(m.steps)))
		z := m.bias
		for j, v := range s.x {
			z += m.w[j] * (v - m.mean[j]) / m.std[j]
		}
		g := sigmoid(z) - s.y
		for j, v := range s.x {
			xs := (v - m.mean[j]) / m.std[j]
			m.w[j] -= eta * (g*xs + l2Alpha*m.w[j])
		}
		m.bias -= eta * g
	}
}

func (m *OnlineModel) proba(x []float64) float64 {
	z := m.bias
	for j, v := range x {
		z += m.w[j] * (v - m.mean[j]) / m.std[j]
	}
	return sigmoid(z)
}

func sigmoid(z float64) float64 {
	if z > 35 {
		return 1
	}
	if z < -35 {
		return 0
	}
	return 1 / (1 + math.Exp(-z))
}

// ModelSet holds one online model per symbol.
type ModelSet struct {
	mu     sync.Mutex
	window int
	m      map[repository.Symbol]*OnlineModel
}

// NewModelSet creates an empty per-symbol model registry.
func NewModelSet(window int) *ModelSet {
	return &ModelSet{window: window, m: make(map[repository.Symbol]*OnlineModel)}
}

// Get returns the model for symbol, creating it on first use.
func (s *ModelSet) Get(symbol repository.Symbol) *OnlineModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	mdl, ok := s.m[symbol]
	if !ok {
		mdl = NewOnlineModel(s.window)
		s.m[symbol] = mdl
	}
	return mdl
}

package analytics

import (
	"context"
	"sync"
	"time"

	"SigFuse/internal/domain/models"
	"SigFuse/internal/domain/repository"
	applogger "SigFuse/pkg/logger"
)

// MacroRegimeClient serves the externally computed market-structure regime.
// Snapshots are refreshed lazily and cached for the configured TTL; when the
// upstream is unreachable the last good snapshot is kept and a fetch failure
// before any success yields CHOP.
type MacroRegimeClient struct {
	base *HTTPServiceBase
	ttl  time.Duration
	l    *applogger.Logger

	mu        sync.Mutex
	last      models.MacroSnapshot
	fetchedAt time.Time
}

// NewMacroRegimeClient creates a macro regime provider.
func NewMacroRegimeClient(baseURL string, ttl, timeout time.Duration, l *applogger.Logger) *MacroRegimeClient {
	return &MacroRegimeClient{
		base: NewHTTPServiceBase(baseURL, timeout),
		ttl:  ttl,
		l:    l,
		last: models.MacroSnapshot{Regime: models.RegimeChop},
	}
}

type macroResp struct {
	Regime  string             `json:"regime"`
	Drivers map[string]float64 `json:"drivers"`
}

func (c *MacroRegimeClient) Snapshot(ctx context.Context) models.MacroSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.fetchedAt) < c.ttl {
		return c.last
	}

	var resp macroResp
	if err := c.base.GetJSON(ctx, "/regime/current", &resp); err != nil {
		if c.l != nil {
			c.l.Warn("macro regime fetch failed, serving last snapshot", applogger.Error(err))
		}
		// keep serving the stale copy, retry after TTL
		c.fetchedAt = time.Now()
		return c.last
	}

	regime := models.RegimeLabel(resp.Regime)
	switch regime {
	case models.RegimeBull, models.RegimeBear, models.RegimeChop:
	default:
		regime = models.RegimeChop
	}
	c.last = models.MacroSnapshot{
		Regime:    regime,
		Drivers:   resp.Drivers,
		Timestamp: time.Now().UTC(),
	}
	c.fetchedAt = time.Now()
	return c.last
}

var _ repository.MacroRegimeProvider = (*MacroRegimeClient)(nil)

package api

import (
	"net/http"
	"time"

	"SigFuse/internal/domain/models"
	drepo "SigFuse/internal/domain/repository"
	"SigFuse/internal/service/ratelimit"
	"SigFuse/internal/usecase"
	xhttp "SigFuse/pkg/http"
	xlogger "SigFuse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Per-client request budget for the /api group.
const (
	rateCapacity     = 20
	rateRefillPerSec = 10
)

// SignalsEchoHandler exposes the signal snapshot, candle history and
// pipeline health over Echo.
type SignalsEchoHandler struct {
	logger   *xlogger.Logger
	pipeline *usecase.Pipeline
	candles  *usecase.CandlesUseCase
	limiter  *ratelimit.Limiter
}

func NewSignalsEchoHandler(logger *xlogger.Logger, pipeline *usecase.Pipeline, candles *usecase.CandlesUseCase) *SignalsEchoHandler {
	return &SignalsEchoHandler{
		logger:   logger,
		pipeline: pipeline,
		candles:  candles,
		limiter:  ratelimit.New(),
	}
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api", h.rateLimit)
	g.GET("/signals", h.ListSignals)
	g.GET("/signals/latest", h.Latest)
	g.GET("/signals/:id", h.GetSignal)
	g.GET("/alerts", h.Alerts)
	g.GET("/metrics", h.Outcomes)
	g.GET("/candles", h.Candles)
}

func (h *SignalsEchoHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !h.limiter.Allow(c.RealIP(), rateCapacity, rateRefillPerSec) {
			return xhttp.DataResponse(c, http.StatusTooManyRequests, map[string]string{
				"error": "rate limit exceeded",
			})
		}
		return next(c)
	}
}

func (h *SignalsEchoHandler) ListSignals(c echo.Context) error {
	req := &models.ListSignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	snap := h.pipeline.Snapshot()
	signals := snap.List(c.Request().Context(), usecase.ListParams{
		MinScore:   req.MinScore,
		OnlyStrong: req.OnlyStrong,
	})
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=5")
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"signals":    signals,
		"count":      len(signals),
		"lastUpdate": snap.LastUpdate(c.Request().Context()).Format(time.RFC3339),
	})
}

func (h *SignalsEchoHandler) Latest(c echo.Context) error {
	last := h.pipeline.Snapshot().LastUpdate(c.Request().Context())
	return xhttp.SuccessResponse(c, map[string]string{
		"lastUpdate": last.Format(time.RFC3339),
	})
}

func (h *SignalsEchoHandler) GetSignal(c echo.Context) error {
	req := &models.GetSignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sig, err := h.pipeline.Snapshot().ByID(c.Request().Context(), req.ID)
	if err != nil {
		return xhttp.NotFoundResponse(c, map[string]string{"error": err.Error()})
	}
	return xhttp.SuccessResponse(c, sig)
}

func (h *SignalsEchoHandler) Alerts(c echo.Context) error {
	alerts := h.pipeline.Snapshot().Alerts(c.Request().Context())
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

func (h *SignalsEchoHandler) Outcomes(c echo.Context) error {
	symbols, regimes := h.pipeline.Snapshot().Outcomes()
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"symbols": symbols,
		"regimes": regimes,
	})
}

func (h *SignalsEchoHandler) Candles(c echo.Context) error {
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol:    req.Symbol,
		Timeframe: drepo.Timeframe(req.Interval),
		Limit:     req.Limit,
	})
	if err != nil {
		// symbol/timeframe resolution failures are caller mistakes
		h.logger.Warn("candles request rejected", xlogger.Error(err))
		return xhttp.BadRequestResponse(c, map[string]string{"error": err.Error()})
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *SignalsEchoHandler) Health(c echo.Context) error {
	health := h.pipeline.Healthy(c.Request().Context())
	status := http.StatusOK
	for _, ok := range health {
		if !ok {
			status = http.StatusServiceUnavailable
			break
		}
	}
	return xhttp.DataResponse(c, status, map[string]interface{}{
		"status":     statusLabel(status),
		"components": health,
	})
}

func statusLabel(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}

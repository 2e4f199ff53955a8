package usecase

import (
	"context"
	"fmt"

	"SigFuse/internal/domain/models"
	drepo "SigFuse/internal/domain/repository"
	"SigFuse/pkg/util"
)

// CandlesUseCase serves buffered candle history for the API.
type CandlesUseCase struct {
	data     *MarketData
	registry *drepo.SymbolRegistry
}

func NewCandlesUseCase(data *MarketData, registry *drepo.SymbolRegistry) *CandlesUseCase {
	return &CandlesUseCase{data: data, registry: registry}
}

type GetCandlesParams struct {
	Symbol    string
	Timeframe drepo.Timeframe
	Limit     int
}

type GetCandlesResult struct {
	Symbol    string
	Timeframe string
	Count     int
	Quality   models.QualityReport
	Candles   []models.Candle
}

func (uc *CandlesUseCase) GetCandles(_ context.Context, p GetCandlesParams) (*GetCandlesResult, error) {
	sym, err := uc.registry.Resolve(p.Symbol)
	if err != nil {
		return nil, err
	}
	if !drepo.IsValidTimeframe(p.Timeframe) {
		return nil, fmt.Errorf("unsupported timeframe: %s", p.Timeframe)
	}
	if p.Limit <= 0 {
		p.Limit = 500
	}
	p.Limit = util.ClampInt(p.Limit, 1, 6000)

	candles := uc.data.Candles(sym, p.Timeframe, p.Limit)
	return &GetCandlesResult{
		Symbol:    string(sym),
		Timeframe: string(p.Timeframe),
		Count:     len(candles),
		Quality:   uc.data.Quality(sym, p.Timeframe),
		Candles:   candles,
	}, nil
}

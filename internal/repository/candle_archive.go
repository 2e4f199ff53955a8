package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"SigFuse/internal/domain/models"
	domrepo "SigFuse/internal/domain/repository"
	pkgch "SigFuse/pkg/clickhouse"
	applogger "SigFuse/pkg/logger"
)

// candle archive schema, applied idempotently on startup.
var archiveSchema = []string{
	`CREATE DATABASE IF NOT EXISTS sigfuse`,
	`CREATE TABLE IF NOT EXISTS sigfuse.candles_1m (
        ts      DateTime,
        symbol  String,
        open    Float64,
        high    Float64,
        low     Float64,
        close   Float64,
        vol     Float64
    ) ENGINE = ReplacingMergeTree()
    PARTITION BY toYYYYMMDD(ts)
    ORDER BY (symbol, ts)
    TTL ts + INTERVAL 14 DAY`,
}

// CHCandleArchive implements CandleArchive backed by ClickHouse. Closed base
// candles are appended as they arrive; Recent serves warm-start backfill after
// a restart. Duplicate (symbol, ts) rows collapse via ReplacingMergeTree.
type CHCandleArchive struct {
	client *pkgch.Client
	db     *sql.DB
	l      *applogger.Logger
}

func NewCHCandleArchive(ctx context.Context, client *pkgch.Client, l *applogger.Logger) (*CHCandleArchive, error) {
	if err := client.InitSchema(ctx, archiveSchema); err != nil {
		return nil, fmt.Errorf("archive schema: %w", err)
	}
	return &CHCandleArchive{client: client, db: client.DB(), l: l}, nil
}

func (a *CHCandleArchive) Store(ctx context.Context, symbol domrepo.Symbol, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	const chunkSize = 2000
	for start := 0; start < len(candles); start += chunkSize {
		end := start + chunkSize
		if end > len(candles) {
			end = len(candles)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, c := range candles[start:end] {
			if !c.Valid() {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args, c.OpenTime, string(symbol), c.Open, c.High, c.Low, c.Close, c.Volume)
		}
		if len(values) == 0 {
			continue
		}
		q := "INSERT INTO sigfuse.candles_1m (ts, symbol, open, high, low, close, vol) VALUES " + strings.Join(values, ",")
		if _, err := a.db.ExecContext(ctx, q, args...); err != nil {
			if a.l != nil {
				a.l.Error("clickhouse store candles error",
					applogger.String("symbol", string(symbol)),
					applogger.Int("rows", len(values)),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("store candles: %w", err)
		}
	}
	return nil
}

func (a *CHCandleArchive) Recent(ctx context.Context, symbol domrepo.Symbol, limit int) ([]models.Candle, error) {
	start := time.Now()
	const q = `
        SELECT ts, open, high, low, close, vol
        FROM sigfuse.candles_1m FINAL
        WHERE symbol = ?
        ORDER BY ts DESC
        LIMIT ?
    `
	rows, err := a.db.QueryContext(ctx, q, string(symbol), limit)
	if err != nil {
		if a.l != nil {
			a.l.Error("clickhouse recent candles query error",
				applogger.String("symbol", string(symbol)),
				applogger.Int("limit", limit),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("recent candles: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.Candle, 0, limit)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.OpenTime, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		tmp = append(tmp, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if a.l != nil {
		a.l.Debug("clickhouse recent candles ok",
			applogger.String("symbol", string(symbol)),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}

func (a *CHCandleArchive) Health(ctx context.Context) error {
	return a.client.Health(ctx)
}

func (a *CHCandleArchive) Close() error {
	return a.client.Close()
}

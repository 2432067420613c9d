package loader

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/amirphl/simple-indicators/internal/candle"
	"github.com/amirphl/simple-indicators/internal/db"
	"github.com/amirphl/simple-indicators/internal/metrics"
	"github.com/amirphl/simple-indicators/internal/utils"
)

// storageConfig is a data config that reads from a candle store.
type storageConfig interface {
	DataConfig
	Query() StorageQuery
}

// storageLoader serves both the memory and the PostgreSQL loaders.
type storageLoader struct {
	name    string
	store   db.Storage
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func (l *storageLoader) Name() string { return l.name }

func (l *storageLoader) Load(ctx context.Context, cfg DataConfig) ([]*candle.Series, error) {
	sc, ok := cfg.(storageConfig)
	if !ok {
		return nil, fmt.Errorf("%s loader cannot use %T", l.name, cfg)
	}
	q := sc.Query()
	timeframe := cfg.Interval().String()

	out := make([]*candle.Series, 0, len(cfg.Symbols()))
	for _, sym := range cfg.Symbols() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var (
			candles []candle.Candle
			err     error
		)
		if q.From.IsZero() {
			candles, err = l.store.GetLatestCandles(ctx, sym, timeframe, q.Limit)
		} else {
			candles, err = l.store.GetCandles(ctx, sym, timeframe, q.Source, q.From, q.To)
			candles = uniqueTimestamps(candles)
		}
		l.metrics.LoaderRequest(l.name, err)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sym, err)
		}
		if len(candles) == 0 {
			l.logger.Warn("Loader | no candles stored", zap.String("loader", l.name), zap.String("symbol", sym))
		}
		s, err := candle.NewSeries(sym, candles)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// uniqueTimestamps keeps the first candle of every timestamp of a sorted slice.
func uniqueTimestamps(candles []candle.Candle) []candle.Candle {
	out := candles[:0]
	for _, c := range candles {
		if len(out) > 0 && out[len(out)-1].Timestamp.Equal(c.Timestamp) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// MemoryLoader loads from a MemoryStorage.
type MemoryLoader struct {
	Store   *db.MemoryStorage
	Metrics *metrics.Metrics
}

func (f *MemoryLoader) Name() string { return typeName(f, "Loader") }

func (f *MemoryLoader) Loader() (Loader, error) {
	if f.Store == nil {
		return nil, fmt.Errorf("memory loader needs a store")
	}
	return &storageLoader{name: "Memory", store: f.Store, metrics: f.Metrics, logger: utils.GetLogger()}, nil
}

// PostgresLoader loads from the PostgreSQL candles table.
type PostgresLoader struct {
	Store   *db.Default
	Metrics *metrics.Metrics
}

func (f *PostgresLoader) Name() string { return typeName(f, "Loader") }

func (f *PostgresLoader) Loader() (Loader, error) {
	if f.Store == nil {
		return nil, fmt.Errorf("postgres loader needs a database")
	}
	return &storageLoader{name: "Postgres", store: f.Store, metrics: f.Metrics, logger: utils.GetLogger()}, nil
}

// Package db stores candles for the price loaders.
package db

import (
	"context"
	"time"

	"github.com/amirphl/simple-indicators/internal/candle"
)

// Storage is the candle store a loader reads from.
type Storage interface {
	SaveCandle(ctx context.Context, c candle.Candle) error
	SaveCandles(ctx context.Context, candles []candle.Candle) error
	// GetCandles returns candles in [start, end), oldest first. An empty
	// source matches every source.
	GetCandles(ctx context.Context, symbol, timeframe, source string, start, end time.Time) ([]candle.Candle, error)
	// GetLatestCandles returns up to limit of the newest candles, oldest first.
	GetLatestCandles(ctx context.Context, symbol, timeframe string, limit int) ([]candle.Candle, error)
	GetCandleCount(ctx context.Context, symbol, timeframe string, start, end time.Time) (int, error)
	DeleteCandles(ctx context.Context, symbol, timeframe string, before time.Time) error
}

// Schema creates the candles table.
const Schema = `
CREATE TABLE IF NOT EXISTS candles (
	symbol     TEXT             NOT NULL,
	timeframe  TEXT             NOT NULL,
	timestamp  TIMESTAMPTZ      NOT NULL,
	open       DOUBLE PRECISION NOT NULL,
	high       DOUBLE PRECISION NOT NULL,
	low        DOUBLE PRECISION NOT NULL,
	close      DOUBLE PRECISION NOT NULL,
	volume     DOUBLE PRECISION NOT NULL,
	source     TEXT             NOT NULL,
	PRIMARY KEY (symbol, timeframe, timestamp, source)
);
CREATE INDEX IF NOT EXISTS candles_symbol_timeframe_timestamp_idx ON candles (symbol, timeframe, timestamp DESC);
SELECT create_hypertable('candles', 'timestamp', if_not_exists => TRUE);
`

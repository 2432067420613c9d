// Package exchange fetches historical candles from exchanges.
package exchange

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/simple-indicators/internal/candle"
	"github.com/amirphl/simple-indicators/internal/tfutils"
)

// CandleSource is a remote source of historical candles.
type CandleSource interface {
	Name() string
	FetchCandles(ctx context.Context, symbol string, interval tfutils.Interval, start, end time.Time) ([]candle.Candle, error)
	FetchLatestCandles(ctx context.Context, symbol string, interval tfutils.Interval, count int) ([]candle.Candle, error)
}

// SplitSymbol splits an EXCHANGE:TICKER symbol.
func SplitSymbol(symbol string) (exchange, ticker string, err error) {
	exchange, ticker, ok := strings.Cut(symbol, ":")
	if !ok || exchange == "" || ticker == "" {
		return "", "", fmt.Errorf("symbol %q is not in EXCHANGE:TICKER form", symbol)
	}
	return exchange, ticker, nil
}

// NormalizeSymbol turns "btc-usdt" into "BTCUSDT".
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "-", ""))
}

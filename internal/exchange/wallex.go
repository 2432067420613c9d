package exchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	wallex "github.com/wallexchange/wallex-go"
	"go.uber.org/zap"

	"github.com/amirphl/simple-indicators/internal/candle"
	"github.com/amirphl/simple-indicators/internal/tfutils"
	"github.com/amirphl/simple-indicators/internal/utils"
)

const (
	defaultRequestTimeout = 15 * time.Second
	defaultMaxRetries     = 3
)

// wallexResolutions maps intervals onto the resolutions the Wallex
// candles endpoint accepts.
var wallexResolutions = map[tfutils.Interval]string{
	tfutils.M1: "1",
	tfutils.H1: "60",
	tfutils.H3: "180",
	tfutils.D1: "1D",
}

// candlesClient is the part of the Wallex client this package uses.
type candlesClient interface {
	Candles(symbol, resolution string, start, end time.Time) ([]*wallex.Candle, error)
}

type WallexExchange struct {
	client  candlesClient
	timeout time.Duration
	retry   func() backoff.BackOff
	logger  *zap.Logger
}

type Option func(*WallexExchange)

// WithRequestTimeout bounds every single request.
func WithRequestTimeout(d time.Duration) Option {
	return func(w *WallexExchange) { w.timeout = d }
}

// WithRetry sets the policy a failed request is retried with. The factory
// is called once per fetch.
func WithRetry(policy func() backoff.BackOff) Option {
	return func(w *WallexExchange) { w.retry = policy }
}

func NewWallexExchange(apiKey string, opts ...Option) *WallexExchange {
	return newWallexExchange(wallex.New(wallex.ClientOptions{APIKey: apiKey}), opts...)
}

func newWallexExchange(client candlesClient, opts ...Option) *WallexExchange {
	w := &WallexExchange{
		client:  client,
		timeout: defaultRequestTimeout,
		retry:   DefaultRetry,
		logger:  utils.GetLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// DefaultRetry is exponential backoff starting at 2s, at most 3 retries.
func DefaultRetry() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.MaxInterval = 5 * time.Minute
	return backoff.WithMaxRetries(b, defaultMaxRetries)
}

func (w *WallexExchange) Name() string {
	return "wallex"
}

// Resolution returns the Wallex resolution of interval.
func Resolution(interval tfutils.Interval) (string, error) {
	res, ok := wallexResolutions[interval]
	if !ok {
		return "", fmt.Errorf("interval %s is not supported by wallex", interval)
	}
	return res, nil
}

// FetchCandles fetches candles of symbol in [start, end). symbol may carry an
// exchange prefix, e.g. WALLEX:BTCUSDT.
func (w *WallexExchange) FetchCandles(ctx context.Context, symbol string, interval tfutils.Interval, start, end time.Time) ([]candle.Candle, error) {
	resolution, err := Resolution(interval)
	if err != nil {
		return nil, err
	}
	ticker := symbol
	if _, t, err := SplitSymbol(symbol); err == nil {
		ticker = t
	}
	ticker = NormalizeSymbol(ticker)

	var wallexCandles []*wallex.Candle
	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		var err error
		wallexCandles, err = w.candles(ctx, ticker, resolution, start, end)
		if err != nil {
			return fmt.Errorf("fetching candles: %w", err)
		}
		return nil
	}
	notify := func(err error, next time.Duration) {
		w.logger.Warn("Exchange | wallex candles request failed, backing off",
			zap.String("symbol", ticker),
			zap.Duration("backoff", next),
			zap.Error(err),
		)
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(w.retry(), ctx), notify); err != nil {
		return nil, fmt.Errorf("FetchCandles %s failed: %w", symbol, err)
	}

	candles := make([]candle.Candle, 0, len(wallexCandles))
	for _, wc := range wallexCandles {
		c, err := toCandle(wc, symbol, interval, w.Name())
		if err != nil {
			w.logger.Debug("Exchange | skipping invalid wallex candle", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// FetchLatestCandles fetches the most recent count candles.
func (w *WallexExchange) FetchLatestCandles(ctx context.Context, symbol string, interval tfutils.Interval, count int) ([]candle.Candle, error) {
	if interval.Duration() == 0 {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}
	start, end := tfutils.Bars(interval, time.Now().UTC(), count)
	candles, err := w.FetchCandles(ctx, symbol, interval, start, end)
	if err != nil {
		return nil, err
	}
	if len(candles) > count {
		candles = candles[len(candles)-count:]
	}
	return candles, nil
}

// candles runs one request under the request timeout. The client has no
// context support, so a timed out request is abandoned, not cancelled.
func (w *WallexExchange) candles(ctx context.Context, ticker, resolution string, start, end time.Time) ([]*wallex.Candle, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	type result struct {
		candles []*wallex.Candle
		err     error
	}
	ch := make(chan result, 1)
	go func() {
		c, err := w.client.Candles(ticker, resolution, start, end)
		ch <- result{c, err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("request timed out after %s: %w", w.timeout, ctx.Err())
		}
		return nil, ctx.Err()
	case r := <-ch:
		return r.candles, r.err
	}
}

func toCandle(wc *wallex.Candle, symbol string, interval tfutils.Interval, source string) (candle.Candle, error) {
	var values [5]float64
	for i, n := range []wallex.Number{wc.Open, wc.High, wc.Low, wc.Close, wc.Volume} {
		d, err := decimal.NewFromString(string(n))
		if err != nil {
			return candle.Candle{}, fmt.Errorf("parse %q: %w", n, err)
		}
		values[i] = d.InexactFloat64()
	}
	c := candle.Candle{
		Timestamp: wc.Timestamp.UTC().Truncate(time.Minute),
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
		Symbol:    symbol,
		Timeframe: interval.String(),
		Source:    source,
	}
	if err := c.Validate(); err != nil {
		return candle.Candle{}, err
	}
	return c, nil
}

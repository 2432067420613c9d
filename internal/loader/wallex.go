package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/amirphl/simple-indicators/internal/candle"
	"github.com/amirphl/simple-indicators/internal/exchange"
	"github.com/amirphl/simple-indicators/internal/metrics"
	"github.com/amirphl/simple-indicators/internal/utils"
)

// DefaultPacing waits one second between two symbol requests.
func DefaultPacing() backoff.BackOff {
	return backoff.NewConstantBackOff(time.Second)
}

// WallexLoader loads candles from the Wallex REST API.
type WallexLoader struct {
	APIKey string
	// Pacing is the pause policy between symbol requests. Nil means DefaultPacing.
	Pacing  func() backoff.BackOff
	Options []exchange.Option
	Metrics *metrics.Metrics

	// source overrides the exchange client in tests.
	source exchange.CandleSource
}

func (f *WallexLoader) Name() string { return typeName(f, "Loader") }

func (f *WallexLoader) Loader() (Loader, error) {
	src := f.source
	if src == nil {
		src = exchange.NewWallexExchange(f.APIKey, f.Options...)
	}
	pacing := f.Pacing
	if pacing == nil {
		pacing = DefaultPacing
	}
	return &wallexLoader{source: src, pacing: pacing, metrics: f.Metrics, logger: utils.GetLogger()}, nil
}

type wallexLoader struct {
	source  exchange.CandleSource
	pacing  func() backoff.BackOff
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func (l *wallexLoader) Name() string { return "Wallex" }

// Load fetches symbols one after the other, pausing between requests.
func (l *wallexLoader) Load(ctx context.Context, cfg DataConfig) ([]*candle.Series, error) {
	wc, ok := cfg.(WallexCfg)
	if !ok {
		return nil, fmt.Errorf("wallex loader cannot use %T", cfg)
	}
	pace := l.pacing()

	out := make([]*candle.Series, 0, len(wc.Symbols()))
	for i, sym := range wc.Symbols() {
		if i > 0 {
			if err := wait(ctx, pace); err != nil {
				return nil, err
			}
		}
		l.logger.Info("Loader | downloading", zap.String("symbol", sym), zap.Int("limit", wc.Limit()))
		candles, err := l.source.FetchLatestCandles(ctx, sym, wc.Interval(), wc.Limit())
		l.metrics.LoaderRequest(l.Name(), err)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sym, err)
		}
		s, err := candle.NewSeries(sym, candles)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func wait(ctx context.Context, b backoff.BackOff) error {
	d := b.NextBackOff()
	if d == backoff.Stop {
		return fmt.Errorf("pacing policy stopped further requests")
	}
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

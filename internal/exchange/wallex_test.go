package exchange

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	wallex "github.com/wallexchange/wallex-go"
	"go.uber.org/zap"

	"github.com/amirphl/simple-indicators/internal/tfutils"
)

type fakeClient struct {
	mu       sync.Mutex
	failures int
	block    chan struct{}
	calls    []string
	candles  []*wallex.Candle
}

func (f *fakeClient) Candles(symbol, resolution string, start, end time.Time) ([]*wallex.Candle, error) {
	f.mu.Lock()
	f.calls = append(f.calls, symbol+"@"+resolution)
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()

	if f.block != nil {
		<-f.block
	}
	if fail {
		return nil, errors.New("503 service unavailable")
	}
	return f.candles, nil
}

func noWait() backoff.BackOff {
	return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 3)
}

func testCandle(ts time.Time, o, h, l, c string) *wallex.Candle {
	return &wallex.Candle{
		Timestamp: ts,
		Open:      wallex.Number(o),
		High:      wallex.Number(h),
		Low:       wallex.Number(l),
		Close:     wallex.Number(c),
		Volume:    wallex.Number("12.5"),
	}
}

func newTestExchange(client candlesClient, opts ...Option) *WallexExchange {
	opts = append([]Option{WithRetry(noWait)}, opts...)
	w := newWallexExchange(client, opts...)
	w.logger = zap.NewNop()
	return w
}

func TestWallex_FetchCandles(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 30, 0, time.UTC)
	client := &fakeClient{candles: []*wallex.Candle{
		testCandle(start, "100.5", "101", "99.75", "100"),
		testCandle(start.Add(time.Hour), "100", "102", "99", "101.25"),
		testCandle(start.Add(2*time.Hour), "bad", "102", "99", "101"),
		testCandle(start.Add(3*time.Hour), "100", "99", "101", "100"),
	}}
	w := newTestExchange(client)

	candles, err := w.FetchCandles(context.Background(), "WALLEX:btc-usdt", tfutils.H1, start, start.Add(4*time.Hour))
	require.NoError(t, err)
	require.Len(t, candles, 2)
	assert.Equal(t, []string{"BTCUSDT@60"}, client.calls)

	assert.Equal(t, 100.5, candles[0].Open)
	assert.Equal(t, 99.75, candles[0].Low)
	assert.Equal(t, 12.5, candles[0].Volume)
	assert.Equal(t, "WALLEX:btc-usdt", candles[0].Symbol)
	assert.Equal(t, "1h", candles[0].Timeframe)
	assert.Equal(t, "wallex", candles[0].Source)
	assert.Equal(t, start.Truncate(time.Minute), candles[0].Timestamp)
}

func TestWallex_RetriesTransientErrors(t *testing.T) {
	client := &fakeClient{failures: 2, candles: []*wallex.Candle{testCandle(time.Now(), "1", "1", "1", "1")}}
	w := newTestExchange(client)

	candles, err := w.FetchCandles(context.Background(), "BTCUSDT", tfutils.M1, time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Len(t, candles, 1)
	assert.Len(t, client.calls, 3)
}

func TestWallex_GivesUpAfterMaxRetries(t *testing.T) {
	client := &fakeClient{failures: 10}
	w := newTestExchange(client)

	_, err := w.FetchCandles(context.Background(), "BTCUSDT", tfutils.M1, time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Len(t, client.calls, 4)
}

func TestWallex_RequestTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	client := &fakeClient{block: block}
	w := newTestExchange(client, WithRequestTimeout(10*time.Millisecond), WithRetry(func() backoff.BackOff { return &backoff.StopBackOff{} }))

	_, err := w.FetchCandles(context.Background(), "BTCUSDT", tfutils.M1, time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWallex_CancelledContext(t *testing.T) {
	client := &fakeClient{}
	w := newTestExchange(client)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.FetchCandles(ctx, "BTCUSDT", tfutils.M1, time.Now().Add(-time.Hour), time.Now())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, client.calls)
}

func TestWallex_UnsupportedInterval(t *testing.T) {
	w := newTestExchange(&fakeClient{})
	_, err := w.FetchCandles(context.Background(), "BTCUSDT", tfutils.M45, time.Now(), time.Now())
	assert.ErrorContains(t, err, "45m")
}

func TestWallex_FetchLatestCandles(t *testing.T) {
	now := time.Now().UTC()
	var cs []*wallex.Candle
	for i := 5; i > 0; i-- {
		cs = append(cs, testCandle(now.Add(-time.Duration(i)*time.Minute), "1", "2", "1", "2"))
	}
	w := newTestExchange(&fakeClient{candles: cs})

	candles, err := w.FetchLatestCandles(context.Background(), "BTCUSDT", tfutils.M1, 3)
	require.NoError(t, err)
	assert.Len(t, candles, 3)
}

func TestSplitSymbol(t *testing.T) {
	ex, ticker, err := SplitSymbol("WALLEX:BTCUSDT")
	require.NoError(t, err)
	assert.Equal(t, "WALLEX", ex)
	assert.Equal(t, "BTCUSDT", ticker)

	_, _, err = SplitSymbol("BTCUSDT")
	assert.Error(t, err)
}

package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/simple-indicators/internal/candle"
)

// MemoryStorage keeps candles in a map. Used by tests and the memory loader.
type MemoryStorage struct {
	mu sync.RWMutex

	// Candles keyed by symbol|timeframe|timestamp|source
	candles map[string]candle.Candle
}

func NewMemory() *MemoryStorage {
	return &MemoryStorage{
		candles: make(map[string]candle.Candle),
	}
}

func candleKey(symbol, timeframe string, ts time.Time, source string) string {
	return strings.ToUpper(symbol) + "|" + timeframe + "|" + ts.UTC().Format(time.RFC3339Nano) + "|" + source
}

func (m *MemoryStorage) SaveCandle(ctx context.Context, c candle.Candle) error {
	return m.SaveCandles(ctx, []candle.Candle{c})
}

func (m *MemoryStorage) SaveCandles(ctx context.Context, candles []candle.Candle) error {
	for i := range candles {
		if err := candles[i].Validate(); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range candles {
		c.Timestamp = c.Timestamp.UTC()
		m.candles[candleKey(c.Symbol, c.Timeframe, c.Timestamp, c.Source)] = c
	}
	return nil
}

func (m *MemoryStorage) GetCandles(ctx context.Context, symbol, timeframe, source string, start, end time.Time) ([]candle.Candle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	start = start.UTC()
	end = end.UTC()
	var out []candle.Candle
	for _, c := range m.candles {
		if !strings.EqualFold(c.Symbol, symbol) || c.Timeframe != timeframe {
			continue
		}
		if source != "" && c.Source != source {
			continue
		}
		if !c.Timestamp.Before(start) && c.Timestamp.Before(end) {
			out = append(out, c)
		}
	}
	sortCandles(out)
	return out, nil
}

// GetLatestCandles keeps one candle per timestamp, preferring the source
// that sorts first, the same way the PostgreSQL query does.
func (m *MemoryStorage) GetLatestCandles(ctx context.Context, symbol, timeframe string, limit int) ([]candle.Candle, error) {
	m.mu.RLock()
	var all []candle.Candle
	for _, c := range m.candles {
		if strings.EqualFold(c.Symbol, symbol) && c.Timeframe == timeframe {
			all = append(all, c)
		}
	}
	m.mu.RUnlock()

	sortCandles(all)
	var out []candle.Candle
	for _, c := range all {
		if len(out) > 0 && out[len(out)-1].Timestamp.Equal(c.Timestamp) {
			continue
		}
		out = append(out, c)
	}
	if limit >= 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func sortCandles(cs []candle.Candle) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Timestamp.Equal(cs[j].Timestamp) {
			return cs[i].Source < cs[j].Source
		}
		return cs[i].Timestamp.Before(cs[j].Timestamp)
	})
}

func (m *MemoryStorage) GetCandleCount(ctx context.Context, symbol, timeframe string, start, end time.Time) (int, error) {
	cs, err := m.GetCandles(ctx, symbol, timeframe, "", start, end)
	if err != nil {
		return 0, err
	}
	return len(cs), nil
}

func (m *MemoryStorage) DeleteCandles(ctx context.Context, symbol, timeframe string, before time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	before = before.UTC()
	for k, c := range m.candles {
		if strings.EqualFold(c.Symbol, symbol) && c.Timeframe == timeframe && c.Timestamp.Before(before) {
			delete(m.candles, k)
		}
	}
	return nil
}

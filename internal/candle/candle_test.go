package candle

import (
	"errors"
	"testing"
	"time"

	"github.com/amirphl/simple-indicators/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create test candles
func createTestCandles(symbol string, start time.Time, closes []float64) []Candle {
	candles := make([]Candle, len(closes))
	for i, c := range closes {
		candles[i] = Candle{
			Timestamp: start.Add(time.Duration(i) * time.Minute),
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    10,
			Symbol:    symbol,
			Timeframe: "1m",
			Source:    "test",
		}
	}
	return candles
}

func TestResolveColumn(t *testing.T) {
	tests := []struct {
		alias    string
		expected Column
	}{
		{"o", Open}, {"open", Open}, {"O", Open}, {"OPEN", Open},
		{"h", High}, {"High", High},
		{"l", Low}, {"low", Low},
		{"c", Close}, {" close ", Close},
	}
	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			col, err := ResolveColumn(tt.alias)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, col)
		})
	}

	t.Run("Idempotent on canonical names", func(t *testing.T) {
		for _, col := range PriceColumns {
			resolved, err := ResolveColumn(string(col))
			require.NoError(t, err)
			assert.Equal(t, col, resolved)
		}
	})

	t.Run("Unknown alias lists valid values", func(t *testing.T) {
		_, err := ResolveColumn("hl2")
		var verr *validation.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "src", verr.Field)
		assert.Contains(t, err.Error(), "open")
		assert.Contains(t, err.Error(), "close")
	})

	t.Run("Volume is not a price source", func(t *testing.T) {
		_, err := ResolveColumn("volume")
		assert.Error(t, err)
	})
}

func TestNewSeries(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Valid series", func(t *testing.T) {
		s, err := NewSeries("BTCUSDT", createTestCandles("BTCUSDT", now, []float64{1, 2, 3}))
		require.NoError(t, err)
		assert.Equal(t, 3, s.Len())
		assert.Equal(t, "1m", s.Timeframe)
		assert.Equal(t, "BTCUSDT", s.SymbolName())
	})

	t.Run("Candles inherit symbol", func(t *testing.T) {
		candles := createTestCandles("", now, []float64{1, 2})
		s, err := NewSeries("ETHUSDT", candles)
		require.NoError(t, err)
		assert.Equal(t, "ETHUSDT", s.Candles[1].Symbol)
	})

	t.Run("Mixed symbols", func(t *testing.T) {
		candles := createTestCandles("BTCUSDT", now, []float64{1, 2})
		candles[1].Symbol = "ETHUSDT"
		_, err := NewSeries("BTCUSDT", candles)
		assert.Error(t, err)
	})

	t.Run("Duplicate timestamp", func(t *testing.T) {
		candles := createTestCandles("BTCUSDT", now, []float64{1, 2})
		candles[1].Timestamp = candles[0].Timestamp
		_, err := NewSeries("BTCUSDT", candles)
		assert.Error(t, err)
	})

	t.Run("Descending timestamps", func(t *testing.T) {
		candles := createTestCandles("BTCUSDT", now, []float64{1, 2})
		candles[0], candles[1] = candles[1], candles[0]
		_, err := NewSeries("BTCUSDT", candles)
		assert.Error(t, err)
	})

	t.Run("Empty symbol", func(t *testing.T) {
		_, err := NewSeries("", nil)
		assert.Error(t, err)
	})
}

func TestSeries_Columns(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := NewSeries("BTCUSDT", createTestCandles("BTCUSDT", now, []float64{10, 20}))
	require.NoError(t, err)

	closes, err := s.Column(Close)
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20}, closes)

	highs, err := s.Column(High)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 21}, highs)

	closes[0] = 99
	assert.Equal(t, 10.0, s.Candles[0].Close)

	_, err = s.Column(Symbol)
	assert.Error(t, err)

	ts, values := s.At(1)
	assert.Equal(t, now.Add(time.Minute), ts)
	assert.Equal(t, []float64{20, 21, 19, 20, 10}, values)
	assert.Equal(t, []string{"open", "high", "low", "close", "volume"}, s.Columns())
	assert.Equal(t, []time.Time{now, now.Add(time.Minute)}, s.Timestamps())
}

func TestCandle_Validate(t *testing.T) {
	now := time.Now()
	c := Candle{Timestamp: now, Open: 10, High: 12, Low: 9, Close: 11, Volume: 1, Symbol: "BTCUSDT"}
	assert.NoError(t, c.Validate())

	bad := c
	bad.High = 8
	assert.Error(t, bad.Validate())

	bad = c
	bad.Timestamp = time.Time{}
	assert.Error(t, bad.Validate())

	bad = c
	bad.Volume = -1
	assert.Error(t, bad.Validate())
}

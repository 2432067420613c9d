// Package candle
package candle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/simple-indicators/internal/validation"
)

type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Symbol    string    `json:"symbol"`
	Timeframe string    `json:"timeframe"`
	Source    string    `json:"source"`
}

// Validate checks if a candle has valid data
func (c *Candle) Validate() error {
	if c.Timestamp.IsZero() {
		return errors.New("candle timestamp is zero")
	}
	if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
		return errors.New("candle prices must be positive")
	}
	if c.High < c.Low {
		return errors.New("candle high cannot be less than low")
	}
	if c.Open < c.Low || c.Open > c.High {
		return errors.New("candle open price must be between high and low")
	}
	if c.Close < c.Low || c.Close > c.High {
		return errors.New("candle close price must be between high and low")
	}
	if c.Volume < 0 {
		return errors.New("candle volume cannot be negative")
	}
	if c.Symbol == "" {
		return errors.New("candle symbol cannot be empty")
	}
	return nil
}

// Column is a canonical OHLCV column name.
type Column string

const (
	Date   Column = "date"
	Symbol Column = "symbol"
	Open   Column = "open"
	High   Column = "high"
	Low    Column = "low"
	Close  Column = "close"
	Volume Column = "volume"
)

// PriceColumns are the columns an indicator may read as its source.
var PriceColumns = []Column{Open, High, Low, Close}

var columnAliases = map[Column][]string{
	Open:  {"open", "o"},
	High:  {"high", "h"},
	Low:   {"low", "l"},
	Close: {"close", "c"},
}

// ResolveColumn maps a short or long, case-insensitive alias to its canonical
// price column. Canonical names resolve to themselves.
func ResolveColumn(alias string) (Column, error) {
	v := strings.ToLower(strings.TrimSpace(alias))
	for col, aliases := range columnAliases {
		for _, a := range aliases {
			if a == v {
				return col, nil
			}
		}
	}
	return "", validation.Invalid("src", alias, "use one of %v", PriceColumns)
}

// Series is the OHLCV history of one symbol, oldest bar first.
type Series struct {
	Symbol    string
	Timeframe string
	Candles   []Candle
}

// NewSeries builds a validated series. Candles without a symbol inherit it.
func NewSeries(symbol string, candles []Candle) (*Series, error) {
	s := &Series{Symbol: symbol, Candles: candles}
	for i := range s.Candles {
		if s.Candles[i].Symbol == "" {
			s.Candles[i].Symbol = symbol
		}
	}
	if len(candles) > 0 {
		s.Timeframe = candles[0].Timeframe
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate enforces one symbol per series and strictly increasing timestamps.
func (s *Series) Validate() error {
	if s.Symbol == "" {
		return errors.New("series symbol cannot be empty")
	}
	for i, c := range s.Candles {
		if c.Symbol != s.Symbol {
			return fmt.Errorf("candle at index %d has different symbol: %s, expected: %s", i, c.Symbol, s.Symbol)
		}
		if i > 0 && !c.Timestamp.After(s.Candles[i-1].Timestamp) {
			return fmt.Errorf("candle at index %d for %s is not after %s", i, s.Symbol, s.Candles[i-1].Timestamp)
		}
	}
	return nil
}

func (s *Series) Len() int { return len(s.Candles) }

// Column copies one column into a new float64 slice.
func (s *Series) Column(col Column) ([]float64, error) {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		switch col {
		case Open:
			out[i] = c.Open
		case High:
			out[i] = c.High
		case Low:
			out[i] = c.Low
		case Close:
			out[i] = c.Close
		case Volume:
			out[i] = c.Volume
		default:
			return nil, fmt.Errorf("column %q is not numeric", col)
		}
	}
	return out, nil
}

func (s *Series) Timestamps() []time.Time {
	out := make([]time.Time, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Timestamp
	}
	return out
}

var valueColumns = []string{string(Open), string(High), string(Low), string(Close), string(Volume)}

// Columns lists the value columns; the symbol lives on the series.
func (s *Series) Columns() []string { return valueColumns }

// At returns the timestamp and OHLCV values of bar i.
func (s *Series) At(i int) (time.Time, []float64) {
	c := s.Candles[i]
	return c.Timestamp, []float64{c.Open, c.High, c.Low, c.Close, c.Volume}
}

// SymbolName returns the symbol the series belongs to.
func (s *Series) SymbolName() string { return s.Symbol }

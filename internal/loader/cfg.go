package loader

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/amirphl/simple-indicators/internal/tfutils"
	"github.com/amirphl/simple-indicators/internal/utils"
	"github.com/amirphl/simple-indicators/internal/validation"
)

const (
	maxWallexLimit  = 1000
	maxStorageLimit = 5000
)

var (
	symbolPattern   = regexp.MustCompile(`^[A-Za-z]+:[A-Za-z]+$`)
	symbolSeparator = regexp.MustCompile(`[\d\W]+`)
)

// DataConfig describes what a loader should load. Name must match the
// loader's name.
type DataConfig interface {
	Name() string
	Interval() tfutils.Interval
	Symbols() []string
}

// typeName strips suffix from the dynamic type name of v.
func typeName(v any, suffix string) string {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return strings.TrimSuffix(t.Name(), suffix)
}

// DataCfg holds the fields every data config shares.
type DataCfg struct {
	interval tfutils.Interval
	symbols  []string
}

func (c DataCfg) Interval() tfutils.Interval { return c.interval }

func (c DataCfg) Symbols() []string {
	out := make([]string, len(c.symbols))
	copy(out, c.symbols)
	return out
}

// NewDataCfg resolves the interval alias and normalizes symbols into
// EXCHANGE:TICKER form. Symbols that cannot be normalized are logged and
// skipped; it fails when none is left.
func NewDataCfg(interval string, symbols ...string) (DataCfg, error) {
	iv, err := tfutils.ParseInterval(interval)
	if err != nil {
		return DataCfg{}, validation.Invalid("interval", interval, "%v", err)
	}
	normalized, err := NormalizeSymbols(symbols)
	if err != nil {
		return DataCfg{}, err
	}
	return DataCfg{interval: iv, symbols: normalized}, nil
}

// NormalizeSymbols turns "binance btcusdt" or "binance-btcusdt" into
// "BINANCE:BTCUSDT".
func NormalizeSymbols(symbols []string) ([]string, error) {
	logger := utils.GetLogger()
	var out []string
	for _, s := range symbols {
		sym := strings.ToUpper(strings.Trim(symbolSeparator.ReplaceAllString(s, ":"), ":"))
		if !symbolPattern.MatchString(sym) {
			logger.Warn("Loader | skipping symbol, use the format EXCHANGE:TICKER", zap.String("symbol", s))
			continue
		}
		out = append(out, sym)
	}
	if len(out) == 0 {
		return nil, validation.Invalid("symbols", symbols, "none is in EXCHANGE:TICKER format")
	}
	return out, nil
}

// StorageQuery selects candles from a store. A zero From loads the newest
// Limit candles instead of a time range.
type StorageQuery struct {
	Limit  int
	From   time.Time
	To     time.Time
	Source string
}

func newStorageQuery(q StorageQuery) (StorageQuery, error) {
	if !q.From.IsZero() {
		if q.To.IsZero() {
			q.To = time.Now().UTC()
		}
		if !q.From.Before(q.To) {
			return StorageQuery{}, validation.Invalid("from", q.From, "must be before %s", q.To)
		}
		return q, nil
	}
	limit, err := clampLimit("limit", q.Limit, maxStorageLimit)
	if err != nil {
		return StorageQuery{}, err
	}
	q.Limit = limit
	return q, nil
}

func clampLimit(field string, v, max int) (int, error) {
	if v <= 0 {
		return 0, validation.Invalid(field, v, "should be positive, use a value between 1 and %d", max)
	}
	if v > max {
		utils.GetLogger().Warn("Loader | limit too large, reduced",
			zap.Int("limit", v),
			zap.Int("max", max),
		)
		return max, nil
	}
	return v, nil
}

// MemoryCfg loads from in-process candle storage.
type MemoryCfg struct {
	DataCfg
	query StorageQuery
}

func (c MemoryCfg) Name() string        { return typeName(c, "Cfg") }
func (c MemoryCfg) Query() StorageQuery { return c.query }

func NewMemoryCfg(data DataCfg, q StorageQuery) (MemoryCfg, error) {
	q, err := newStorageQuery(q)
	if err != nil {
		return MemoryCfg{}, err
	}
	return MemoryCfg{DataCfg: data, query: q}, nil
}

// PostgresCfg loads from the PostgreSQL candles table.
type PostgresCfg struct {
	DataCfg
	query StorageQuery
}

func (c PostgresCfg) Name() string        { return typeName(c, "Cfg") }
func (c PostgresCfg) Query() StorageQuery { return c.query }

func NewPostgresCfg(data DataCfg, q StorageQuery) (PostgresCfg, error) {
	q, err := newStorageQuery(q)
	if err != nil {
		return PostgresCfg{}, err
	}
	return PostgresCfg{DataCfg: data, query: q}, nil
}

// WallexCfg loads the newest Limit bars per symbol from Wallex.
type WallexCfg struct {
	DataCfg
	limit int
}

func (c WallexCfg) Name() string { return typeName(c, "Cfg") }
func (c WallexCfg) Limit() int   { return c.limit }

// NewWallexCfg clamps limit to 1000 bars.
func NewWallexCfg(data DataCfg, limit int) (WallexCfg, error) {
	limit, err := clampLimit("limit", limit, maxWallexLimit)
	if err != nil {
		return WallexCfg{}, err
	}
	return WallexCfg{DataCfg: data, limit: limit}, nil
}

func describe(cfg DataConfig) string {
	return fmt.Sprintf("%s(%s, %v)", cfg.Name(), cfg.Interval(), cfg.Symbols())
}

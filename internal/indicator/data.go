package indicator

import (
	"context"
	"errors"

	"github.com/amirphl/simple-indicators/internal/candle"
	"github.com/amirphl/simple-indicators/internal/stack"
)

// PriceSource supplies the per-symbol series indicators are computed on.
// loader.PriceData satisfies it.
type PriceSource interface {
	Raw() ([]*candle.Series, error)
}

// Data binds a set of price series to an engine.
type Data struct {
	engine *Engine
	series []*candle.Series
}

func NewData(engine *Engine, src PriceSource) (*Data, error) {
	series, err := src.Raw()
	if err != nil {
		return nil, err
	}
	return NewDataFromSeries(engine, series...), nil
}

func NewDataFromSeries(engine *Engine, series ...*candle.Series) *Data {
	return &Data{engine: engine, series: series}
}

// AddMovingAverage computes family over every series with cfg.
func (d *Data) AddMovingAverage(ctx context.Context, family string, cfg Config) ([]*Result, error) {
	if len(d.series) == 0 {
		return nil, errors.New("no price series loaded")
	}
	return d.engine.Compute(ctx, family, cfg, d.series)
}

// Add builds the config declared by s and computes it with the family it names.
func (d *Data) Add(ctx context.Context, s Spec) ([]*Result, error) {
	cfg, err := FromSpec(s)
	if err != nil {
		return nil, err
	}
	return d.AddMovingAverage(ctx, cfg.FamilyName(), cfg)
}

func (d *Data) Symbols() []string { return stack.Symbols(d.series) }

func (d *Data) Series() []*candle.Series { return d.series }

func (d *Data) Raw(name string) ([]*Result, error) { return d.engine.Raw(name) }

func (d *Data) Stacked(name string) (*stack.Table, error) { return d.engine.Stacked(name) }

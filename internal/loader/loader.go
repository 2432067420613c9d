// Package loader supplies canonical OHLCV series, one per symbol, to the
// indicator engine.
package loader

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/amirphl/simple-indicators/internal/candle"
	"github.com/amirphl/simple-indicators/internal/registry"
	"github.com/amirphl/simple-indicators/internal/stack"
	"github.com/amirphl/simple-indicators/internal/utils"
	"github.com/amirphl/simple-indicators/internal/validation"
)

const RootName = "PriceData"

var ErrNotLoaded = errors.New("no price data loaded")

// Loader loads one series per configured symbol, in symbol order.
type Loader interface {
	Name() string
	Load(ctx context.Context, cfg DataConfig) ([]*candle.Series, error)
}

// Factory builds a Loader of the same name.
type Factory interface {
	Name() string
	Loader() (Loader, error)
}

// PriceData loads price series through one loader and keeps the last result.
type PriceData struct {
	loader Loader
	cfg    DataConfig
	prices []*candle.Series
	logger *zap.Logger
}

func New(factory Factory) (*PriceData, error) {
	l, err := factory.Loader()
	if err != nil {
		return nil, fmt.Errorf("%s loader: %w", factory.Name(), err)
	}
	if err := validation.Compatible([]string{factory.Name()}, []string{l.Name()}); err != nil {
		return nil, err
	}
	return &PriceData{loader: l, logger: utils.GetLogger()}, nil
}

// Load replaces the held series with what cfg selects and returns them stacked.
func (p *PriceData) Load(ctx context.Context, cfg DataConfig) (*stack.Table, error) {
	if err := validation.Compatible([]string{p.loader.Name()}, []string{cfg.Name()}); err != nil {
		return nil, err
	}
	prices, err := p.loader.Load(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s load: %w", p.loader.Name(), err)
	}
	table, err := stack.Stack(prices, cfg.Symbols())
	if err != nil {
		return nil, err
	}
	p.cfg, p.prices = cfg, prices
	p.logger.Info("Loader | loaded price data",
		zap.String("config", describe(cfg)),
		zap.Int("rows", table.Len()),
	)
	return table, nil
}

// Raw returns the per-symbol series of the last load.
func (p *PriceData) Raw() ([]*candle.Series, error) {
	if p.cfg == nil {
		return nil, ErrNotLoaded
	}
	return p.prices, nil
}

// Stacked returns the last load as one (timestamp, symbol) table.
func (p *PriceData) Stacked() (*stack.Table, error) {
	if p.cfg == nil {
		return nil, ErrNotLoaded
	}
	return stack.Stack(p.prices, p.cfg.Symbols())
}

func (p *PriceData) Config() DataConfig { return p.cfg }

func (p *PriceData) LoaderName() string { return p.loader.Name() }

// NewRegistry lists factories under the PriceData root.
func NewRegistry(factories ...Factory) (*registry.Tree, error) {
	tree := registry.New(RootName, registry.WithPolicy(registry.RejectDuplicates))
	for _, f := range factories {
		if err := tree.Add(f.Name(), "", map[string]any{"factory": f}); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

// Lookup returns the factory registered as name.
func Lookup(tree *registry.Tree, name string) (Factory, error) {
	v, err := tree.Payload(name, "factory")
	if err != nil {
		return nil, err
	}
	f, ok := v.(Factory)
	if !ok {
		return nil, fmt.Errorf("%s holds %T, not a loader factory", name, v)
	}
	return f, nil
}

package indicator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/amirphl/simple-indicators/internal/candle"
	"github.com/amirphl/simple-indicators/internal/marshal"
	"github.com/amirphl/simple-indicators/internal/metrics"
	"github.com/amirphl/simple-indicators/internal/registry"
	"github.com/amirphl/simple-indicators/internal/stack"
	"github.com/amirphl/simple-indicators/internal/utils"
	"github.com/amirphl/simple-indicators/internal/validation"
)

const rawDataKey = "raw_data"

// Engine runs families from a catalog and registers what they produce.
// Compute calls must not overlap; queries may run between them.
type Engine struct {
	catalog *Catalog
	results *registry.Tree
	metrics *metrics.Metrics
	logger  *zap.Logger
}

type EngineOption func(*Engine)

func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// NewEngine returns an engine storing results in results. A nil tree gets a
// fresh one rooted at Indicator.
func NewEngine(catalog *Catalog, results *registry.Tree, opts ...EngineOption) *Engine {
	if results == nil {
		results = registry.New(RootName)
	}
	e := &Engine{
		catalog: catalog,
		results: results,
		logger:  utils.GetLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// call is one prepared kernel invocation.
type call struct {
	series *candle.Series
	out    []float64
	args   []marshal.Arg
}

// Compute applies family to every series with cfg and registers the results
// under cfg.UserName(). All argument lists are built and checked before the
// first kernel runs, so a rejected call leaves no partial output behind.
func (e *Engine) Compute(ctx context.Context, family string, cfg Config, series []*candle.Series) ([]*Result, error) {
	if cfg == nil {
		return nil, validation.Invalid("config", nil, "a config is required")
	}
	logger := e.logger.With(zap.String("family", family), zap.String("config", String(cfg)))

	fam, err := e.catalog.Family(family)
	if err != nil {
		e.metrics.ComputeRejected(family)
		return nil, err
	}
	calls, err := e.prepare(fam, cfg, series)
	if err != nil {
		e.metrics.ComputeRejected(fam.Name)
		logger.Warn("Engine | rejected compute", zap.Error(err))
		return nil, err
	}

	start := time.Now()
	results := make([]*Result, 0, len(calls))
	for _, c := range calls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fam.Kernel(c.args)
		e.metrics.KernelCalled(fam.Name)
		results = append(results, &Result{
			Name:       cfg.UserName(),
			Symbol:     c.series.Symbol,
			Timestamps: c.series.Timestamps(),
			Values:     c.out,
		})
	}
	elapsed := time.Since(start)
	e.metrics.ObserveCompute(fam.Name, elapsed)

	if err := e.register(fam, cfg, results); err != nil {
		return nil, err
	}
	logger.Info("Engine | computed",
		zap.Int("symbols", len(results)),
		zap.Duration("elapsed", elapsed),
	)
	return results, nil
}

func (e *Engine) prepare(fam *Family, cfg Config, series []*candle.Series) ([]call, error) {
	if err := validation.Compatible([]string{cfg.FamilyName()}, []string{fam.Name}); err != nil {
		return nil, err
	}
	if _, err := e.catalog.Tree().Find(cfg.UserName()); err == nil {
		return nil, validation.Invalid("user_name", cfg.UserName(), "is a family or group name")
	}
	calls := make([]call, 0, len(series))
	seen := make(map[string]bool, len(series))
	for _, s := range series {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if seen[s.Symbol] {
			return nil, validation.Invalid("symbol", s.Symbol, "appears in more than one series")
		}
		seen[s.Symbol] = true
		in, err := s.Column(cfg.Source())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Symbol, err)
		}
		out := make([]float64, len(in))
		params := marshal.Params{
			{Kind: string(marshal.KindArray), Value: [][]float64{in, out}},
			{Kind: string(marshal.KindInt), Value: []int{len(in), cfg.Period()}},
		}
		if fam.RequiresExtra() {
			extra, err := fam.Extra(cfg, s)
			if err != nil {
				return nil, fmt.Errorf("%s extras for %s: %w", fam.Name, s.Symbol, err)
			}
			if len(extra) == 0 {
				return nil, fmt.Errorf("%s extras for %s: %w", fam.Name, s.Symbol, ErrMissingExtra)
			}
			params = params.Merge(extra)
		}
		args, err := marshal.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("%s arguments for %s: %w", fam.Name, s.Symbol, err)
		}
		if len(fam.Signature) > 0 {
			if err := fam.Signature.Check(args); err != nil {
				return nil, fmt.Errorf("%s arguments for %s: %w", fam.Name, s.Symbol, err)
			}
		}
		calls = append(calls, call{series: s, out: out, args: args})
	}
	return calls, nil
}

// register mirrors the family's catalog path into the results tree and hangs
// the user name beneath the family node.
func (e *Engine) register(fam *Family, cfg Config, results []*Result) error {
	path, err := e.catalog.Tree().Path(fam.Name)
	if err != nil {
		return err
	}
	parent := e.results.Root()
	for _, name := range path[1:] {
		if err := e.results.Add(name, parent, nil); err != nil && !errors.Is(err, registry.ErrDuplicate) {
			return err
		}
		n, err := e.results.Find(name)
		if err != nil {
			return err
		}
		if n.Parent != parent {
			return fmt.Errorf("register %s: %q sits under %q, not %q: %w", cfg.UserName(), name, n.Parent, parent, ErrHierarchy)
		}
		parent = name
	}

	name := cfg.UserName()
	if _, err := e.results.Find(name); err == nil {
		e.logger.Warn("Engine | name already registered, keeping earlier results",
			zap.String("user_name", name),
			zap.String("family", fam.Name),
		)
	}
	err = e.results.Add(name, fam.Name, map[string]any{
		rawDataKey: results,
		"config":   cfg,
	})
	if err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	return nil
}

// SupportedFamilies lists the families the engine can compute.
func (e *Engine) SupportedFamilies() []string { return e.catalog.Names() }

// UserIndicators lists the names results have been registered under.
func (e *Engine) UserIndicators() []string {
	var out []string
	for _, name := range e.results.Names() {
		if _, err := e.results.Payload(name, rawDataKey); err == nil {
			out = append(out, name)
		}
	}
	return out
}

// Raw returns the per-symbol results registered under name.
func (e *Engine) Raw(name string) ([]*Result, error) {
	v, err := e.results.Payload(name, rawDataKey)
	if err != nil {
		return nil, err
	}
	results, ok := v.([]*Result)
	if !ok {
		return nil, fmt.Errorf("%s holds %T, not indicator results", name, v)
	}
	return results, nil
}

// Stacked returns the results under name as one (timestamp, symbol) table.
func (e *Engine) Stacked(name string) (*stack.Table, error) {
	results, err := e.Raw(name)
	if err != nil {
		return nil, err
	}
	return stack.Stack(results, stack.Symbols(results))
}

// Results exposes the results tree for rendering.
func (e *Engine) Results() *registry.Tree { return e.results }

func (e *Engine) Catalog() *Catalog { return e.catalog }

package indicator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amirphl/simple-indicators/internal/candle"
	"github.com/amirphl/simple-indicators/internal/kernel"
	"github.com/amirphl/simple-indicators/internal/marshal"
	"github.com/amirphl/simple-indicators/internal/registry"
)

const (
	RootName = "Indicator"

	groupMovingAverage = "MovingAverage"
	groupBase          = "BaseMovingAverage"
	groupExtra         = "ExtraMovingAverage"
)

var (
	ErrUnknownFamily = errors.New("unknown indicator family")
	ErrMissingExtra  = errors.New("missing extra parameters")
	ErrHierarchy     = errors.New("results tree does not follow the family hierarchy")
)

// ExtraFunc returns the family-specific kernel parameters for one series.
type ExtraFunc func(cfg Config, s *candle.Series) (marshal.Params, error)

// Family binds an indicator name to its kernel and calling contract.
type Family struct {
	Name      string
	Parent    string
	Kernel    kernel.Func
	Signature marshal.Signature
	// Extra is nil for families that only take the base parameters.
	Extra ExtraFunc
}

func (f *Family) RequiresExtra() bool { return f.Extra != nil }

// groups is the declared hierarchy above the families, parents first.
var groups = []struct{ name, parent string }{
	{groupMovingAverage, ""},
	{groupBase, groupMovingAverage},
	{groupExtra, groupMovingAverage},
}

var familyTable = []struct {
	name      string
	parent    string
	signature marshal.Signature
	extra     ExtraFunc
}{
	{"SMA", groupBase, kernel.BaseSignature, nil},
	{"EMA", groupBase, kernel.BaseSignature, nil},
	{"WMA", groupBase, kernel.BaseSignature, nil},
	{"HMA", groupBase, kernel.BaseSignature, nil},
	{"RMA", groupBase, kernel.BaseSignature, nil},
	{"TEMA", groupBase, kernel.BaseSignature, nil},
	{"DEMA", groupBase, kernel.BaseSignature, nil},
	{"ESMA", groupExtra, kernel.ESMASignature, esmaExtra},
	{"KAMA", groupExtra, kernel.KAMASignature, kamaExtra},
	{"FRAMA", groupExtra, kernel.FRAMASignature, framaExtra},
}

func esmaExtra(cfg Config, _ *candle.Series) (marshal.Params, error) {
	c, ok := cfg.(ESMACfg)
	if !ok {
		return nil, fmt.Errorf("ESMA needs ESMACfg, got %T: %w", cfg, ErrMissingExtra)
	}
	return marshal.Params{{Kind: string(marshal.KindDouble), Value: c.Alpha()}}, nil
}

func kamaExtra(cfg Config, _ *candle.Series) (marshal.Params, error) {
	c, ok := cfg.(KAMACfg)
	if !ok {
		return nil, fmt.Errorf("KAMA needs KAMACfg, got %T: %w", cfg, ErrMissingExtra)
	}
	return marshal.Params{{Kind: string(marshal.KindInt), Value: []int{c.Fast(), c.Slow()}}}, nil
}

func framaExtra(_ Config, s *candle.Series) (marshal.Params, error) {
	high, err := s.Column(candle.High)
	if err != nil {
		return nil, err
	}
	low, err := s.Column(candle.Low)
	if err != nil {
		return nil, err
	}
	return marshal.Params{{Kind: string(marshal.KindArray), Value: [][]float64{high, low}}}, nil
}

// Catalog is the dispatch table of supported families together with the
// registry tree that describes their hierarchy.
type Catalog struct {
	families map[string]*Family
	tree     *registry.Tree
}

// NewCatalog returns a catalog holding only the group nodes.
func NewCatalog() *Catalog {
	c := &Catalog{
		families: make(map[string]*Family),
		tree:     registry.New(RootName, registry.WithPolicy(registry.RejectDuplicates)),
	}
	for _, g := range groups {
		// static table, parents are declared first
		_ = c.tree.Add(g.name, g.parent, nil)
	}
	return c
}

// Register adds f beneath its parent; the parent defaults to MovingAverage.
func (c *Catalog) Register(f *Family) error {
	if f.Kernel == nil {
		return fmt.Errorf("family %s: no kernel bound", f.Name)
	}
	parent := f.Parent
	if parent == "" {
		parent = groupMovingAverage
	}
	if err := c.tree.Add(f.Name, parent, map[string]any{"family": f}); err != nil {
		return fmt.Errorf("family %s: %w", f.Name, err)
	}
	c.families[f.Name] = f
	return nil
}

func (c *Catalog) Family(name string) (*Family, error) {
	f, ok := c.families[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownFamily)
	}
	return f, nil
}

// Names lists the supported family names without the grouping nodes.
func (c *Catalog) Names() []string {
	var out []string
	for _, name := range c.tree.Leaves() {
		if _, ok := c.families[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

func (c *Catalog) Tree() *registry.Tree { return c.tree }

// DefaultCatalog binds every built-in family to the kernel of the same,
// lower-cased, name in lib.
func DefaultCatalog(lib kernel.Library) (*Catalog, error) {
	c := NewCatalog()
	for _, row := range familyTable {
		fn, ok := lib[strings.ToLower(row.name)]
		if !ok {
			return nil, fmt.Errorf("family %s: kernel %q not in library %v", row.name, strings.ToLower(row.name), lib.Names())
		}
		err := c.Register(&Family{
			Name:      row.name,
			Parent:    row.parent,
			Kernel:    fn,
			Signature: row.signature,
			Extra:     row.extra,
		})
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

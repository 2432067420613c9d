package indicator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/amirphl/simple-indicators/internal/candle"
	"github.com/amirphl/simple-indicators/internal/validation"
)

// Config is a validated, immutable parameter bundle for one indicator family.
// Values are only produced by the New<Family>Cfg constructors, so anything
// implementing Config can be used without further checks.
type Config interface {
	// UserName is the caller-chosen name results are registered under.
	UserName() string
	// FamilyName is the config type name without its "Cfg" suffix.
	FamilyName() string
	Source() candle.Column
	Period() int
}

func familyName(cfg any) string {
	t := reflect.TypeOf(cfg)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return strings.TrimSuffix(t.Name(), "Cfg")
}

// MAParams are the fields shared by every moving average.
type MAParams struct {
	UserName string `validate:"required"`
	Src      string `validate:"required"`
	Period   int    `validate:"gt=0"`
}

type ESMAParams struct {
	MAParams
	Alpha float64 `validate:"gt=0"`
}

type KAMAParams struct {
	MAParams
	Fast int `validate:"gt=0"`
	Slow int `validate:"gt=0"`
}

type movingAverage struct {
	userName string
	src      candle.Column
	period   int
}

func (m movingAverage) UserName() string      { return m.userName }
func (m movingAverage) Source() candle.Column { return m.src }
func (m movingAverage) Period() int           { return m.period }

func newMovingAverage(p MAParams) (movingAverage, error) {
	if err := validation.Struct(p); err != nil {
		return movingAverage{}, err
	}
	src, err := candle.ResolveColumn(p.Src)
	if err != nil {
		return movingAverage{}, err
	}
	return movingAverage{userName: p.UserName, src: src, period: p.Period}, nil
}

// SMACfg configures the Simple Moving Average.
type SMACfg struct{ movingAverage }

func (c SMACfg) FamilyName() string { return familyName(c) }

func NewSMACfg(p MAParams) (SMACfg, error) {
	ma, err := newMovingAverage(p)
	return SMACfg{ma}, err
}

// EMACfg configures the Exponential Moving Average.
type EMACfg struct{ movingAverage }

func (c EMACfg) FamilyName() string { return familyName(c) }

func NewEMACfg(p MAParams) (EMACfg, error) {
	ma, err := newMovingAverage(p)
	return EMACfg{ma}, err
}

// WMACfg configures the Weighted Moving Average.
type WMACfg struct{ movingAverage }

func (c WMACfg) FamilyName() string { return familyName(c) }

func NewWMACfg(p MAParams) (WMACfg, error) {
	ma, err := newMovingAverage(p)
	return WMACfg{ma}, err
}

// HMACfg configures the Hull Moving Average.
type HMACfg struct{ movingAverage }

func (c HMACfg) FamilyName() string { return familyName(c) }

func NewHMACfg(p MAParams) (HMACfg, error) {
	ma, err := newMovingAverage(p)
	return HMACfg{ma}, err
}

// RMACfg configures the Rolling (Wilder) Moving Average.
type RMACfg struct{ movingAverage }

func (c RMACfg) FamilyName() string { return familyName(c) }

func NewRMACfg(p MAParams) (RMACfg, error) {
	ma, err := newMovingAverage(p)
	return RMACfg{ma}, err
}

// TEMACfg configures the Triple Exponential Moving Average.
type TEMACfg struct{ movingAverage }

func (c TEMACfg) FamilyName() string { return familyName(c) }

func NewTEMACfg(p MAParams) (TEMACfg, error) {
	ma, err := newMovingAverage(p)
	return TEMACfg{ma}, err
}

// DEMACfg configures the Double Exponential Moving Average.
type DEMACfg struct{ movingAverage }

func (c DEMACfg) FamilyName() string { return familyName(c) }

func NewDEMACfg(p MAParams) (DEMACfg, error) {
	ma, err := newMovingAverage(p)
	return DEMACfg{ma}, err
}

// FRAMACfg configures the Fractal Adaptive Moving Average. High and low
// always come from the series.
type FRAMACfg struct{ movingAverage }

func (c FRAMACfg) FamilyName() string { return familyName(c) }

func NewFRAMACfg(p MAParams) (FRAMACfg, error) {
	ma, err := newMovingAverage(p)
	return FRAMACfg{ma}, err
}

// ESMACfg configures exponential smoothing with an explicit smoothing factor.
type ESMACfg struct {
	movingAverage
	alpha float64
}

func (c ESMACfg) FamilyName() string { return familyName(c) }
func (c ESMACfg) Alpha() float64     { return c.alpha }

func NewESMACfg(p ESMAParams) (ESMACfg, error) {
	if err := validation.Struct(p); err != nil {
		return ESMACfg{}, err
	}
	ma, err := newMovingAverage(p.MAParams)
	if err != nil {
		return ESMACfg{}, err
	}
	return ESMACfg{movingAverage: ma, alpha: p.Alpha}, nil
}

// KAMACfg configures Kaufman's Adaptive Moving Average.
type KAMACfg struct {
	movingAverage
	fast int
	slow int
}

func (c KAMACfg) FamilyName() string { return familyName(c) }
func (c KAMACfg) Fast() int          { return c.fast }
func (c KAMACfg) Slow() int          { return c.slow }

func NewKAMACfg(p KAMAParams) (KAMACfg, error) {
	if err := validation.Struct(p); err != nil {
		return KAMACfg{}, err
	}
	ma, err := newMovingAverage(p.MAParams)
	if err != nil {
		return KAMACfg{}, err
	}
	return KAMACfg{movingAverage: ma, fast: p.Fast, slow: p.Slow}, nil
}

// Spec is the declarative form of a config, as written in YAML files.
type Spec struct {
	Family   string  `yaml:"family"`
	UserName string  `yaml:"user_name"`
	Src      string  `yaml:"src"`
	Period   int     `yaml:"period"`
	Alpha    float64 `yaml:"alpha,omitempty"`
	Fast     int     `yaml:"fast,omitempty"`
	Slow     int     `yaml:"slow,omitempty"`
}

// FromSpec builds the config of the family named in s.
func FromSpec(s Spec) (Config, error) {
	p := MAParams{UserName: s.UserName, Src: s.Src, Period: s.Period}
	var (
		cfg Config
		err error
	)
	switch strings.ToUpper(s.Family) {
	case "SMA":
		cfg, err = NewSMACfg(p)
	case "EMA":
		cfg, err = NewEMACfg(p)
	case "WMA":
		cfg, err = NewWMACfg(p)
	case "HMA":
		cfg, err = NewHMACfg(p)
	case "RMA":
		cfg, err = NewRMACfg(p)
	case "TEMA":
		cfg, err = NewTEMACfg(p)
	case "DEMA":
		cfg, err = NewDEMACfg(p)
	case "FRAMA":
		cfg, err = NewFRAMACfg(p)
	case "ESMA":
		cfg, err = NewESMACfg(ESMAParams{MAParams: p, Alpha: s.Alpha})
	case "KAMA":
		cfg, err = NewKAMACfg(KAMAParams{MAParams: p, Fast: s.Fast, Slow: s.Slow})
	default:
		return nil, validation.Invalid("family", s.Family, "use one of %v", familyNames())
	}
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", strings.ToUpper(s.Family), s.UserName, err)
	}
	return cfg, nil
}

func familyNames() []string {
	out := make([]string, len(familyTable))
	for i, f := range familyTable {
		out[i] = f.name
	}
	return out
}

// String renders a config for logs.
func String(cfg Config) string {
	return fmt.Sprintf("%s(%s, src=%s, period=%d)", cfg.FamilyName(), cfg.UserName(), cfg.Source(), cfg.Period())
}

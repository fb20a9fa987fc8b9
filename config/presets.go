package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/BacktestView/models"
)

//go:embed presets.yaml
var defaultPresets []byte

// Preset is a named bundle of form values applied in one step.
type Preset struct {
	Key    string       `yaml:"key" json:"key"`
	Name   string       `yaml:"name" json:"name"`
	Config PresetConfig `yaml:"config" json:"config"`
}

// PresetConfig mirrors the form fields a preset overwrites.
type PresetConfig struct {
	Ticker         string           `yaml:"ticker" json:"ticker"`
	InitialCapital float64          `yaml:"initialCapital" json:"initialCapital"`
	Period         string           `yaml:"period" json:"period"`
	Benchmark      string           `yaml:"benchmark" json:"benchmark"`
	Strategy       PresetStrategy   `yaml:"strategy" json:"strategy"`
	Commission     PresetCommission `yaml:"commission" json:"commission"`
	TakeProfit     *float64         `yaml:"takeProfit" json:"takeProfit"` // percent
	StopLoss       *float64         `yaml:"stopLoss" json:"stopLoss"`     // percent
}

type PresetStrategy struct {
	Name   models.StrategyName `yaml:"name" json:"name"`
	Params map[string]string   `yaml:"params" json:"params"`
}

type PresetCommission struct {
	Type   models.CommissionType `yaml:"type" json:"type"`
	Params map[string]string     `yaml:"params" json:"params"` // rate is per ten thousand
}

type catalogFile struct {
	Presets []Preset `yaml:"presets"`
}

// Catalog is an immutable, ordered set of presets. Every accessor hands out copies.
type Catalog struct {
	presets []Preset
	index   map[string]int
}

// NewCatalog validates the presets and freezes them into a catalog.
func NewCatalog(presets []Preset) (*Catalog, error) {
	c := &Catalog{
		presets: make([]Preset, 0, len(presets)),
		index:   make(map[string]int, len(presets)),
	}
	for _, p := range presets {
		if p.Key == "" {
			return nil, fmt.Errorf("preset %q has no key", p.Name)
		}
		if _, dup := c.index[p.Key]; dup {
			return nil, fmt.Errorf("duplicate preset key %q", p.Key)
		}
		if _, ok := models.StrategyFieldKeys[p.Config.Strategy.Name]; !ok {
			return nil, fmt.Errorf("preset %q: unknown strategy %q", p.Key, p.Config.Strategy.Name)
		}
		if _, ok := models.CommissionFieldKeys[p.Config.Commission.Type]; !ok {
			return nil, fmt.Errorf("preset %q: unknown commission type %q", p.Key, p.Config.Commission.Type)
		}
		c.index[p.Key] = len(c.presets)
		c.presets = append(c.presets, clonePreset(p))
	}
	return c, nil
}

// ParseCatalog decodes a YAML preset catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing presets: %w", err)
	}
	return NewCatalog(file.Presets)
}

// DefaultCatalog returns the built-in presets.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultPresets)
	if err != nil {
		panic(fmt.Sprintf("embedded presets are invalid: %v", err))
	}
	return c
}

// LoadCatalog reads presets from path, or returns the built-in set when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading presets file: %w", err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, err
	}
	log.Info().Str("path", path).Int("count", c.Len()).Msg("Loaded preset catalog")
	return c, nil
}

// Lookup returns a copy of the preset stored under key.
func (c *Catalog) Lookup(key string) (Preset, bool) {
	i, ok := c.index[key]
	if !ok {
		return Preset{}, false
	}
	return clonePreset(c.presets[i]), true
}

// List returns copies of all presets in catalog order.
func (c *Catalog) List() []Preset {
	out := make([]Preset, len(c.presets))
	for i, p := range c.presets {
		out[i] = clonePreset(p)
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.presets)
}

func clonePreset(p Preset) Preset {
	p.Config.Strategy.Params = cloneParams(p.Config.Strategy.Params)
	p.Config.Commission.Params = cloneParams(p.Config.Commission.Params)
	if p.Config.TakeProfit != nil {
		v := *p.Config.TakeProfit
		p.Config.TakeProfit = &v
	}
	if p.Config.StopLoss != nil {
		v := *p.Config.StopLoss
		p.Config.StopLoss = &v
	}
	return p
}

func cloneParams(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/cloudsketch/cloudsketch/pkg/layout"
)

const (
	ModeHierarchy     = "hierarchy"
	ModeRelationships = "relationships"
)

// knownFormats are the renderers the CLI can emit.
var knownFormats = map[string]bool{
	"svg":    true,
	"drawio": true,
	"dot":    true,
	"html":   true,
	"cfn":    true,
}

type (
	Config struct {
		AppName string   `toml:"app_name"`
		Region  string   `toml:"region"`
		Profile string   `toml:"profile"`
		OutDir  string   `toml:"out_dir"`
		Mode    string   `toml:"mode"`
		Formats []string `toml:"formats"`

		Layout LayoutConfig `toml:"layout"`
	}

	// LayoutConfig exposes the tunable layout knobs. Zero values mean
	// "use the default"; the full policy is never serialized.
	LayoutConfig struct {
		InlineDetailMax int `toml:"inline_detail_max"`
		SubnetsPerRow   int `toml:"subnets_per_row"`
		OrphanColumns   int `toml:"orphan_columns"`
		LabelBudget     int `toml:"label_budget"`
	}
)

func Default() Config {
	return Config{
		AppName: "cloudsketch",
		OutDir:  "out",
		Mode:    ModeHierarchy,
		Formats: []string{"svg", "drawio", "html"},
	}
}

// Load reads a TOML config, layering it over the defaults. A missing file
// is not an error; it just means pure defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "reading config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Mode != ModeHierarchy && c.Mode != ModeRelationships {
		return errors.Errorf("unknown mode %q (want %s or %s)", c.Mode, ModeHierarchy, ModeRelationships)
	}
	for _, f := range c.Formats {
		if !knownFormats[f] {
			return errors.Errorf("unknown output format %q", f)
		}
	}
	return nil
}

func (c Config) HasFormat(format string) bool {
	for _, f := range c.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Policy merges the configured knobs over the layout defaults.
func (c Config) Policy() layout.Policy {
	p := layout.DefaultPolicy()
	if c.Layout.InlineDetailMax > 0 {
		p.InlineDetailMax = c.Layout.InlineDetailMax
	}
	if c.Layout.SubnetsPerRow > 0 {
		p.SubnetsPerRow = c.Layout.SubnetsPerRow
	}
	if c.Layout.OrphanColumns > 0 {
		p.OrphanColumns = c.Layout.OrphanColumns
	}
	if c.Layout.LabelBudget > 0 {
		p.LabelBudget = c.Layout.LabelBudget
	}
	return p
}

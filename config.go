package thicket

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config configures a Scene. It is usually loaded from a thicket.toml file:
//
//	debug = false
//	capacity = 1024
//	max_tree_depth = 32
//	max_children = 1000
//	capture_dir = "captures"
//
//	[index]
//	min_entries = 4
//	max_entries = 16
type Config struct {
	Debug        bool        `toml:"debug"`
	Capacity     int         `toml:"capacity"`
	MaxTreeDepth int         `toml:"max_tree_depth"`
	MaxChildren  int         `toml:"max_children"`
	CaptureDir   string      `toml:"capture_dir"`
	Index        IndexConfig `toml:"index"`
}

// IndexConfig sizes the R-tree nodes of the spatial index.
type IndexConfig struct {
	MinEntries int `toml:"min_entries"`
	MaxEntries int `toml:"max_entries"`
}

// DefaultConfig returns the configuration NewScene uses.
func DefaultConfig() Config {
	return Config{
		Capacity:     256,
		MaxTreeDepth: 32,
		MaxChildren:  1000,
		CaptureDir:   "captures",
		Index:        IndexConfig{MinEntries: 4, MaxEntries: 16},
	}
}

// LoadConfig reads a TOML configuration file. Keys missing from the file keep
// their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes TOML data over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every setting and joins the errors of all invalid ones.
func (c Config) Validate() error {
	var errs []error
	if c.Capacity < 0 {
		errs = append(errs, fmt.Errorf("capacity must not be negative, got %d", c.Capacity))
	}
	if c.MaxTreeDepth < 0 {
		errs = append(errs, fmt.Errorf("max_tree_depth must not be negative, got %d", c.MaxTreeDepth))
	}
	if c.MaxChildren < 0 {
		errs = append(errs, fmt.Errorf("max_children must not be negative, got %d", c.MaxChildren))
	}
	if c.Index.MinEntries < 1 {
		errs = append(errs, fmt.Errorf("index.min_entries must be at least 1, got %d", c.Index.MinEntries))
	}
	if c.Index.MaxEntries < 2*c.Index.MinEntries {
		errs = append(errs, fmt.Errorf("index.max_entries (%d) must be at least twice index.min_entries (%d)",
			c.Index.MaxEntries, c.Index.MinEntries))
	}
	if len(errs) > 0 {
		return fmt.Errorf("thicket: invalid config: %w", errors.Join(errs...))
	}
	return nil
}

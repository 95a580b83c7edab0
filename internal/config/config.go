// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/elliotnunn/deskadv/internal/chunk"
	"github.com/elliotnunn/deskadv/resource"
)

// Dump holds all configuration for the dawdump tool.
type Dump struct {
	// Archives to load when none are named on the command line
	Archives []string `yaml:"archives"`
	Variant  string   `yaml:"variant"` // indy or yoda

	LogLevel string `yaml:"log_level"` // debug, info, warn or error

	// Tile bitmaps kept in memory per archive
	TileCacheSize int `yaml:"tile_cache_size"`

	// Pebble directory recording every loaded archive, empty to disable
	CatalogDir string `yaml:"catalog_dir"`
}

// DefaultDump returns Dump config with sensible defaults.
func DefaultDump() Dump {
	return Dump{
		Variant:       "indy",
		LogLevel:      "info",
		TileCacheSize: 256,
	}
}

// LoadDump loads dawdump config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadDump(path string) (Dump, error) {
	cfg := DefaultDump()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Level parses LogLevel.
func (d Dump) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(d.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

// Options converts the config into archive loading options.
func (d Dump) Options(logger *slog.Logger) (resource.Options, error) {
	v, err := chunk.ParseVariant(d.Variant)
	if err != nil {
		return resource.Options{}, fmt.Errorf("variant: %w", err)
	}
	return resource.Options{
		Variant:       v,
		Logger:        logger,
		TileCacheSize: d.TileCacheSize,
	}, nil
}

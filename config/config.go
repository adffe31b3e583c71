// Package config loads the construction-time parameters the storage core
// treats as "recognized configuration" rather than global state: chunk
// dimensions, the palette's initial capacity hint, and the logging
// verbosity that NewLogger honors.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-mclib/voxelpack/block"
)

// Config is the top-level engine configuration.
type Config struct {
	// Chunk describes the fixed dimensions every Chunk in this process
	// uses.
	Chunk ChunkConfig `json:"chunk" yaml:"chunk"`

	// LogLevel controls verbosity of the loggers built by NewLogger. One
	// of "quiet", "info", "debug".
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// ChunkConfig describes a chunk's geometry and initial palette sizing.
type ChunkConfig struct {
	Width  uint32 `json:"width" yaml:"width"`
	Height uint32 `json:"height" yaml:"height"`
	Depth  uint32 `json:"depth" yaml:"depth"`

	// PaletteCapacityHint is a sizing hint for chunks expected to hold
	// many distinct block ids. Validate rejects a negative value; no
	// constructor in this module reads it, so NewChunkPalette always
	// starts at a 1-bit width regardless of its value.
	PaletteCapacityHint int `json:"palette_capacity_hint" yaml:"palette_capacity_hint"`
}

// Size returns the ChunkConfig's dimensions as a block.Size.
func (c ChunkConfig) Size() block.Size {
	return block.Size{Width: c.Width, Height: c.Height, Depth: c.Depth}
}

// Default returns the reference 16x16x16 configuration.
func Default() Config {
	return Config{
		Chunk: ChunkConfig{
			Width:               16,
			Height:              16,
			Depth:               16,
			PaletteCapacityHint: 16,
		},
		LogLevel: "info",
	}
}

// Load reads a config file (JSON or YAML, chosen by extension, falling
// back to trying both when the extension is unrecognized), applies
// environment overrides, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		applyEnvOverrides(&cfg)
		return cfg, cfg.Validate()
	}
	if err := loadFile(path, &cfg); err != nil {
		return cfg, err
	}
	applyEnvOverrides(&cfg)
	return cfg, cfg.Validate()
}

func loadFile(path string, out *Config) error {
	bs, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		if err := json.Unmarshal(bs, out); err != nil {
			return fmt.Errorf("config: json unmarshal: %w", err)
		}
		return nil
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(bs, out); err != nil {
			return fmt.Errorf("config: yaml unmarshal: %w", err)
		}
		return nil
	default:
		if err := json.Unmarshal(bs, out); err == nil {
			return nil
		}
		if err := yaml.Unmarshal(bs, out); err == nil {
			return nil
		}
		return fmt.Errorf("config: %s: unrecognized format, tried json and yaml", path)
	}
}

// Validate checks that Config describes a usable chunk geometry.
func (c *Config) Validate() error {
	if c.Chunk.Width == 0 || c.Chunk.Height == 0 || c.Chunk.Depth == 0 {
		return errors.New("config: chunk dimensions must be positive")
	}
	switch c.LogLevel {
	case "quiet", "info", "debug":
	case "":
		c.LogLevel = "info"
	default:
		return fmt.Errorf("config: unsupported log_level %q", c.LogLevel)
	}
	if c.Chunk.PaletteCapacityHint < 0 {
		return errors.New("config: palette_capacity_hint must not be negative")
	}
	return nil
}

// applyEnvOverrides lets a small allow-list of fields be overridden
// without editing the config file, the same narrow mechanism the source
// this package is modeled on uses.
func applyEnvOverrides(c *Config) {
	if v := os.Getenv("VOXELPACK_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("VOXELPACK_CHUNK_WIDTH"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			c.Chunk.Width = uint32(n)
		}
	}
	if v := os.Getenv("VOXELPACK_CHUNK_HEIGHT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			c.Chunk.Height = uint32(n)
		}
	}
	if v := os.Getenv("VOXELPACK_CHUNK_DEPTH"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			c.Chunk.Depth = uint32(n)
		}
	}
}

// NewLogger returns a logger honoring Config.LogLevel: "quiet" discards
// output entirely, "info" and "debug" write to stderr with the given
// prefix.
func (c Config) NewLogger(prefix string) *log.Logger {
	if c.LogLevel == "quiet" {
		return log.New(os.Discard, prefix, log.LstdFlags)
	}
	return log.New(os.Stderr, prefix, log.LstdFlags)
}

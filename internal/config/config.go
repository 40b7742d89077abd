// Package config loads kestrel.toml, the runtime configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"kestrel/internal/trace"
	"kestrel/internal/vm"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "kestrel.toml"

// Seed modes.
const (
	SeedFixed  = "fixed"
	SeedRandom = "random"
)

// Config is the decoded configuration.
type Config struct {
	Runtime RuntimeConfig `toml:"runtime"`
	Hash    HashConfig    `toml:"hash"`
	Heap    HeapConfig    `toml:"heap"`
	Trace   TraceConfig   `toml:"trace"`
}

type RuntimeConfig struct {
	Verbose bool `toml:"verbose"`
}

type HashConfig struct {
	Seed  string `toml:"seed"`
	Value uint64 `toml:"value"`
}

type HeapConfig struct {
	GCPercent int `toml:"gc_percent"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
	Mode   string `toml:"mode"`
	Format string `toml:"format"`
	Ring   int    `toml:"ring_size"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Hash:  HashConfig{Seed: SeedFixed, Value: vm.DefaultSeed},
		Trace: TraceConfig{Level: "off", Output: "-", Mode: "stream", Format: "text", Ring: 256},
	}
}

// Load reads path. A missing file yields the defaults; keys absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if meta.IsDefined("hash", "seed") && cfg.Hash.Seed == SeedRandom && meta.IsDefined("hash", "value") {
		return Config{}, fmt.Errorf("%s: [hash].value is ignored with seed = \"random\"", path)
	}
	return cfg, nil
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	c.Hash.Seed = strings.ToLower(strings.TrimSpace(c.Hash.Seed))
	switch c.Hash.Seed {
	case SeedFixed, SeedRandom:
	default:
		return fmt.Errorf("[hash].seed: %q (expected fixed|random)", c.Hash.Seed)
	}
	if c.Heap.GCPercent < -1 {
		return fmt.Errorf("[heap].gc_percent: %d (expected -1, 0 or a positive percentage)", c.Heap.GCPercent)
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return fmt.Errorf("[trace].level: %w", err)
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		return fmt.Errorf("[trace].mode: %w", err)
	}
	if _, err := trace.ParseFormat(c.Trace.Format); err != nil {
		return fmt.Errorf("[trace].format: %w", err)
	}
	if c.Trace.Ring < 0 {
		return fmt.Errorf("[trace].ring_size: %d must not be negative", c.Trace.Ring)
	}
	return nil
}

// RuntimeOptions returns the vm options the configuration selects.
func (c *Config) RuntimeOptions() vm.Options {
	return vm.Options{
		Verbose:    c.Runtime.Verbose,
		HashSeed:   c.Hash.Value,
		RandomSeed: c.Hash.Seed == SeedRandom,
	}
}

// Tracer converts the [trace] table into a tracer configuration.
func (c *Config) Tracer() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, err
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return trace.Config{}, err
	}
	format, err := trace.ParseFormat(c.Trace.Format)
	if err != nil {
		return trace.Config{}, err
	}
	return trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: c.Trace.Output,
		RingSize:   c.Trace.Ring,
	}, nil
}

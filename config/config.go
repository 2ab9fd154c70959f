// SPDX-License-Identifier: EPL-2.0

// Package config loads engine settings from defaults, an optional YAML file
// and DAWCORE_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/ik5/dawcore/driver"
)

// EnvPrefix prefixes every environment override, e.g. DAWCORE_ENGINE_SAMPLE_RATE.
const EnvPrefix = "DAWCORE"

var ErrInvalid = errors.New("invalid configuration")

type Engine struct {
	SampleRate int `mapstructure:"sample_rate" yaml:"sample_rate"`
	Channels   int `mapstructure:"channels" yaml:"channels"`
}

type Driver struct {
	// BufferSize is the device callback size in frames.
	BufferSize int `mapstructure:"buffer_size" yaml:"buffer_size"`
	// RingMultiplier sizes each ring as BufferSize*Channels*RingMultiplier samples.
	RingMultiplier int    `mapstructure:"ring_multiplier" yaml:"ring_multiplier"`
	SampleFormat   string `mapstructure:"sample_format" yaml:"sample_format"`
}

type Pipeline struct {
	ChunkFrames     int `mapstructure:"chunk_frames" yaml:"chunk_frames"`
	MaxDecodeErrors int `mapstructure:"max_decode_errors" yaml:"max_decode_errors"`
}

type Preview struct {
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

type Log struct {
	Level string `mapstructure:"level" yaml:"level"`
}

type Metrics struct {
	// Address serves /metrics when set, e.g. ":9090".
	Address string `mapstructure:"address" yaml:"address"`
}

type Config struct {
	Engine   Engine   `mapstructure:"engine" yaml:"engine"`
	Driver   Driver   `mapstructure:"driver" yaml:"driver"`
	Pipeline Pipeline `mapstructure:"pipeline" yaml:"pipeline"`
	Preview  Preview  `mapstructure:"preview" yaml:"preview"`
	Log      Log      `mapstructure:"log" yaml:"log"`
	Metrics  Metrics  `mapstructure:"metrics" yaml:"metrics"`
}

var defaults = map[string]any{
	"engine.sample_rate":         48000,
	"engine.channels":            2,
	"driver.buffer_size":         512,
	"driver.ring_multiplier":     16,
	"driver.sample_format":       "f32",
	"pipeline.chunk_frames":      1024,
	"pipeline.max_decode_errors": 16,
	"preview.poll_interval":      "5ms",
	"log.level":                  "info",
	"metrics.address":            "",
}

// NewViper returns a viper instance with defaults and environment binding
// in place. Callers may bind flags to it before calling FromViper.
func NewViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := FromViper(NewViper())
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads path (when not empty) over the defaults and environment.
func Load(path string) (*Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates the settings held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Engine.SampleRate >= 8000 && c.Engine.SampleRate <= 384000, "engine.sample_rate %d", c.Engine.SampleRate)
	check(c.Engine.Channels == 1 || c.Engine.Channels == 2, "engine.channels %d", c.Engine.Channels)
	check(c.Driver.BufferSize > 0 && c.Driver.BufferSize <= 16384, "driver.buffer_size %d", c.Driver.BufferSize)
	check(c.Driver.RingMultiplier >= 2, "driver.ring_multiplier %d", c.Driver.RingMultiplier)
	_, err := driver.ParseSampleFormat(c.Driver.SampleFormat)
	check(err == nil, "driver.sample_format %q", c.Driver.SampleFormat)
	check(c.Pipeline.ChunkFrames > 0, "pipeline.chunk_frames %d", c.Pipeline.ChunkFrames)
	check(c.Pipeline.MaxDecodeErrors > 0, "pipeline.max_decode_errors %d", c.Pipeline.MaxDecodeErrors)
	check(c.Preview.PollInterval > 0, "preview.poll_interval %s", c.Preview.PollInterval)
	_, err = zerolog.ParseLevel(c.Log.Level)
	check(err == nil, "log.level %q", c.Log.Level)

	return errors.Join(errs...)
}

// SampleFormat returns the parsed device sample format.
func (c *Config) SampleFormat() driver.SampleFormat {
	f, _ := driver.ParseSampleFormat(c.Driver.SampleFormat)
	return f
}

// RingCapacity is the size of each ring buffer in samples.
func (c *Config) RingCapacity() int {
	return c.Driver.BufferSize * c.Engine.Channels * c.Driver.RingMultiplier
}

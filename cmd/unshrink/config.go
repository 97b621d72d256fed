package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/aouyang1/go-unshrink"
	"github.com/aouyang1/go-unshrink/kde"
	"gopkg.in/yaml.v3"
)

const (
	MethodLCC     = "lcc"
	MethodTweedie = "tweedie"

	DefaultMethod    = MethodLCC
	DefaultDelta     = unshrink.DefaultDelta
	DefaultBandwidth = string(kde.BandwidthScott)
	DefaultLogLevel  = "info"
)

var (
	ErrUnknownMethod   = errors.New("unknown debiasing method")
	ErrUnknownLogLevel = errors.New("unknown log level")
)

// Config selects and configures the debiaser used by every subcommand
type Config struct {
	Method    string  `yaml:"method"`
	Delta     float64 `yaml:"delta"`
	Bandwidth string  `yaml:"bandwidth"`
	LogLevel  string  `yaml:"log_level"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Method:    DefaultMethod,
		Delta:     DefaultDelta,
		Bandwidth: DefaultBandwidth,
		LogLevel:  DefaultLogLevel,
	}
}

// LoadConfig reads a YAML config file. Fields missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config, %w", err)
	}
	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config %s, %w", path, err)
	}
	return cfg, nil
}

// Validate normalizes the method and checks that a debiaser can be built from the config
func (c *Config) Validate() (*Config, error) {
	if c == nil {
		c = NewDefaultConfig()
	}
	c.Method = strings.ToLower(strings.TrimSpace(c.Method))
	switch c.Method {
	case MethodLCC:
	case MethodTweedie:
		if _, err := c.tweedieOptions().Validate(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%q, %w", c.Method, ErrUnknownMethod)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) tweedieOptions() *unshrink.TweedieOptions {
	return &unshrink.TweedieOptions{
		Delta:     c.Delta,
		Bandwidth: kde.Bandwidth(strings.ToLower(c.Bandwidth)),
	}
}

// NewDebiaser builds an unfitted debiaser for the configured method
func (c *Config) NewDebiaser() (unshrink.Debiaser, error) {
	switch c.Method {
	case MethodLCC:
		return unshrink.NewLinearCalibration(), nil
	case MethodTweedie:
		return unshrink.NewTweedie(c.tweedieOptions())
	default:
		return nil, fmt.Errorf("%q, %w", c.Method, ErrUnknownMethod)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("%q, %w", s, ErrUnknownLogLevel)
	}
	return level, nil
}

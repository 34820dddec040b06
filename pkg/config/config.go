// Package config loads fuzzer settings from defaults, a YAML file and the environment
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides, e.g. SMBFUZZ_TARGET__HOST
const EnvPrefix = "SMBFUZZ_"

// Configuration holds all settings of a fuzzing run
type Configuration struct {
	Target     TargetConfig     `koanf:"target"`
	Connection ConnectionConfig `koanf:"connection"`
	Fuzz       FuzzConfig       `koanf:"fuzz"`
	Auth       AuthConfig       `koanf:"auth"`
	Metrics    MetricsConfig    `koanf:"metrics"`
}

type TargetConfig struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	Socks5 string `koanf:"socks5"`
	Share  string `koanf:"share"`
	File   string `koanf:"file"`
}

type ConnectionConfig struct {
	ReadTimeout time.Duration `koanf:"readtimeout"`
	RetryDelay  time.Duration `koanf:"retrydelay"`
	ReadBuffer  int           `koanf:"readbuffer"`
}

type FuzzConfig struct {
	Iterations int   `koanf:"iterations"`
	RandomCap  int   `koanf:"randomcap"`
	MaxSamples int   `koanf:"maxsamples"`
	Seed       int64 `koanf:"seed"`
}

type AuthConfig struct {
	Password string `koanf:"password"`
}

type MetricsConfig struct {
	Listen string `koanf:"listen"`
}

// Defaults returns the built-in settings
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"target.host":            "192.168.0.171",
		"target.port":            445,
		"target.socks5":          "",
		"target.share":           "share",
		"target.file":            "read_test.txt",
		"connection.readtimeout": "5s",
		"connection.retrydelay":  "1s",
		"connection.readbuffer":  300,
		"fuzz.iterations":        100,
		"fuzz.randomcap":         10000,
		"fuzz.maxsamples":        100,
		"fuzz.seed":              0,
		"auth.password":          "",
		"metrics.listen":         "",
	}
}

// Load reads defaults, then configFile when it exists, then the environment.
// An empty configFile skips the file layer.
func Load(configFile string) (*Configuration, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configFile, err)
		}
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config from file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("error loading config from environment: %w", err)
	}

	var c Configuration
	if err := k.UnmarshalWithConf("", &c, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return &c, nil
}

// Validation errors
var (
	ErrEmptyHost      = errors.New("target host is empty")
	ErrInvalidPort    = errors.New("target port out of range")
	ErrInvalidBuffer  = errors.New("read buffer must be positive")
	ErrNegativeBudget = errors.New("iterations must not be negative")
	ErrInvalidCap     = errors.New("random cap and max samples must be positive")
)

// Validate rejects settings the fuzzer cannot run with
func (c *Configuration) Validate() error {
	if c.Target.Host == "" {
		return ErrEmptyHost
	}
	if c.Target.Port < 1 || c.Target.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Target.Port)
	}
	if c.Connection.ReadBuffer <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBuffer, c.Connection.ReadBuffer)
	}
	if c.Fuzz.Iterations < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeBudget, c.Fuzz.Iterations)
	}
	if c.Fuzz.RandomCap <= 0 || c.Fuzz.MaxSamples <= 0 {
		return ErrInvalidCap
	}
	return nil
}

// Package config loads server-mode settings from an optional TOML file.
// Flags override file values, file values override defaults; the merge
// happens in the CLI layer, this package only parses and validates.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/trendtower/pkg/errors"
)

// Config holds everything the serve command can read from a file.
type Config struct {
	Server ServerConfig `toml:"server"`
	GitHub GitHubConfig `toml:"github"`
	Cache  CacheConfig  `toml:"cache"`
	Stream StreamConfig `toml:"stream"`
}

type ServerConfig struct {
	// Addr is the listen address, host:port.
	Addr string `toml:"addr"`
}

type GitHubConfig struct {
	// Token authenticates detail lookups. The GITHUB_TOKEN and
	// GITHUB_PAT environment variables take precedence.
	Token string `toml:"token"`
}

type CacheConfig struct {
	// Backend selects the cache: "file", "redis", or "none".
	Backend string `toml:"backend"`

	// Dir overrides the file backend's directory.
	Dir string `toml:"dir"`

	// TTL bounds cached response age.
	TTL Duration `toml:"ttl"`

	// RedisAddr is the redis backend's host:port.
	RedisAddr string `toml:"redis_addr"`
}

type StreamConfig struct {
	// Interval is the default refresh interval for recurring streams
	// when the client does not pass one.
	Interval Duration `toml:"interval"`
}

// Duration wraps time.Duration so TOML values can be written as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Cache: CacheConfig{
			Backend: "file",
			TTL:     Duration{time.Hour},
		},
		Stream: StreamConfig{Interval: Duration{30 * time.Second}},
	}
}

// Load reads a TOML config file and merges it over the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config file %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config file %s", path)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"cache backend must be file, redis, or none (got %q)", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "redis cache backend requires redis_addr")
	}
	if c.Stream.Interval.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidInterval, "stream interval must be positive")
	}
	return nil
}

// GitHubToken resolves the detail-source credential: environment first,
// then the config file. Empty means anonymous access.
func (c Config) GitHubToken() string {
	if tok := os.Getenv("GITHUB_TOKEN"); tok != "" {
		return tok
	}
	if tok := os.Getenv("GITHUB_PAT"); tok != "" {
		return tok
	}
	return c.GitHub.Token
}

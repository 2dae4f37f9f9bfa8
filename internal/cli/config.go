package cli

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/paulmach/orb"
	"github.com/spf13/pflag"

	"github.com/matzehuels/followstreams/pkg/errors"
	"github.com/matzehuels/followstreams/pkg/feature"
)

// Environment variables read after the config file. They take precedence
// over file values and are typically supplied through a .env file.
const (
	envRedisAddr     = "FOLLOWSTREAMS_REDIS_ADDR"
	envRedisPassword = "FOLLOWSTREAMS_REDIS_PASSWORD"
)

// Config is the TOML config file. Explicitly-set flags override it.
//
//	workers = 8
//	strategy = "streaming"
//	tie_break = "first"
//	seeds = ["Lake Sammamish"]
//	bbox = [-122.2, 47.5, -121.9, 47.7]
//
//	[cache]
//	redis_addr = "localhost:6379"
//	scope = "puget-sound"
//	ttl = "24h"
//
//	[filter]
//	tags = ["natural=water", "waterway=river"]
type Config struct {
	Workers           int              `toml:"workers"`
	Strategy          string           `toml:"strategy"`
	TieBreak          feature.TieBreak `toml:"tie_break"`
	Seeds             []string         `toml:"seeds"`
	NearMissTolerance float64          `toml:"near_miss_tolerance"`
	BBox              []float64        `toml:"bbox"`

	Cache  CacheConfig  `toml:"cache"`
	Filter FilterConfig `toml:"filter"`
}

// CacheConfig selects and tunes the graph cache backend.
type CacheConfig struct {
	Dir           string        `toml:"dir"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	Scope         string        `toml:"scope"`
	TTL           time.Duration `toml:"ttl"`
}

// FilterConfig holds the feature pre-filter.
type FilterConfig struct {
	Tags []string `toml:"tags"`
}

// loadConfig reads the config file at path. An empty path means the default
// location, which may be absent; an explicit path must exist.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	explicit := path != ""
	if !explicit {
		p, err := configFile()
		if err != nil {
			cfg.applyEnv()
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err) && !explicit:
	case os.IsNotExist(err):
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envRedisAddr); v != "" {
		c.Cache.RedisAddr = v
	}
	if v := os.Getenv(envRedisPassword); v != "" {
		c.Cache.RedisPassword = v
	}
}

func (c *Config) validate() error {
	if c.BBox != nil {
		if _, err := boundFromSlice(c.BBox); err != nil {
			return err
		}
	}
	if _, err := feature.ParseTags(c.Filter.Tags); err != nil {
		return err
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid cache ttl %s", c.Cache.TTL)
	}
	return nil
}

// apply copies config values into cmd's flags that were not set explicitly.
func (c *Config) apply(flags *pflag.FlagSet) error {
	set := func(name, value string) error {
		if flags.Lookup(name) == nil || flags.Changed(name) {
			return nil
		}
		return flags.Set(name, value)
	}

	if c.Workers != 0 {
		if err := set("workers", strconv.Itoa(c.Workers)); err != nil {
			return err
		}
	}
	if c.Strategy != "" {
		if err := set("strategy", c.Strategy); err != nil {
			return err
		}
	}
	if c.TieBreak != feature.TieBreakNone {
		if err := set("tie-break", c.TieBreak.String()); err != nil {
			return err
		}
	}
	if c.NearMissTolerance != 0 {
		if err := set("near-miss", strconv.FormatFloat(c.NearMissTolerance, 'g', -1, 64)); err != nil {
			return err
		}
	}
	if len(c.BBox) == 4 {
		parts := make([]string, 4)
		for i, v := range c.BBox {
			parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := set("bbox", strings.Join(parts, ",")); err != nil {
			return err
		}
	}
	if flags.Lookup("seed") != nil && !flags.Changed("seed") {
		for _, s := range c.Seeds {
			if err := flags.Set("seed", s); err != nil {
				return err
			}
		}
	}
	if flags.Lookup("tag") != nil && !flags.Changed("tag") {
		for _, t := range c.Filter.Tags {
			if err := flags.Set("tag", t); err != nil {
				return err
			}
		}
	}
	return nil
}

// parseBBox parses "minLon,minLat,maxLon,maxLat".
func parseBBox(s string) (*orb.Bound, error) {
	parts := strings.Split(s, ",")
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid bbox %q", s)
		}
		vals[i] = v
	}
	return boundFromSlice(vals)
}

func boundFromSlice(v []float64) (*orb.Bound, error) {
	if len(v) != 4 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "bbox needs 4 values (minLon,minLat,maxLon,maxLat), got %d", len(v))
	}
	if err := errors.ValidateBound(v[0], v[1], v[2], v[3]); err != nil {
		return nil, err
	}
	return &orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

// Package config holds the tagcloud settings shared by the CLI commands.
//
// Values are resolved by viper in the usual order: bound flags, TAGCLOUD_*
// environment variables, the YAML config file, then Default().
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/IvanBrykalov/tagcloud/cache"
	"github.com/IvanBrykalov/tagcloud/cloud"
	"github.com/IvanBrykalov/tagcloud/internal/util"
	"github.com/IvanBrykalov/tagcloud/policy"
	"github.com/IvanBrykalov/tagcloud/policy/lru"
	"github.com/IvanBrykalov/tagcloud/policy/twoq"
)

// EnvPrefix is the prefix of environment overrides, e.g. TAGCLOUD_CACHE_CAPACITY.
const EnvPrefix = "tagcloud"

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the full set of tunables.
type Config struct {
	Steps  int    `mapstructure:"steps" yaml:"steps"`
	Sort   string `mapstructure:"sort" yaml:"sort"`
	Locale string `mapstructure:"locale" yaml:"locale"`

	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`
	DB    DBConfig    `mapstructure:"db" yaml:"db"`

	WarmConcurrency int    `mapstructure:"warm_concurrency" yaml:"warm_concurrency"`
	MetricsAddr     string `mapstructure:"metrics_addr" yaml:"metrics_addr"`
}

// CacheConfig maps onto cache.Options.
type CacheConfig struct {
	Capacity int           `mapstructure:"capacity" yaml:"capacity"`
	Shards   int           `mapstructure:"shards" yaml:"shards"`
	Policy   string        `mapstructure:"policy" yaml:"policy"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
	MaxBytes int64         `mapstructure:"max_bytes" yaml:"max_bytes"`
}

// DBConfig locates the SQLite tag source.
type DBConfig struct {
	Path  string `mapstructure:"path" yaml:"path"`
	Limit int    `mapstructure:"limit" yaml:"limit"`
}

// Default returns a valid configuration.
func Default() Config {
	return Config{
		Steps:  cloud.DefaultSteps,
		Sort:   cloud.ByName.String(),
		Locale: "und",
		Cache: CacheConfig{
			Capacity: 10_000,
			Policy:   lru.Name,
			TTL:      time.Hour,
		},
		DB:              DBConfig{Path: "tagcloud.db"},
		WarmConcurrency: 8,
		MetricsAddr:     ":9090",
	}
}

// NewViper returns a viper instance with defaults registered and TAGCLOUD_*
// environment lookup enabled.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers Default() on v so every key is known to Unmarshal
// and reachable through the environment.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("steps", d.Steps)
	v.SetDefault("sort", d.Sort)
	v.SetDefault("locale", d.Locale)
	v.SetDefault("cache.capacity", d.Cache.Capacity)
	v.SetDefault("cache.shards", d.Cache.Shards)
	v.SetDefault("cache.policy", d.Cache.Policy)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.max_bytes", d.Cache.MaxBytes)
	v.SetDefault("db.path", d.DB.Path)
	v.SetDefault("db.limit", d.DB.Limit)
	v.SetDefault("warm_concurrency", d.WarmConcurrency)
	v.SetDefault("metrics_addr", d.MetricsAddr)
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first unusable value, wrapped in ErrInvalid.
func (c Config) Validate() error {
	switch {
	case c.Steps < 0:
		return errors.Wrapf(ErrInvalid, "steps must be >= 0, got %d", c.Steps)
	case c.Cache.Capacity <= 0:
		return errors.Wrapf(ErrInvalid, "cache.capacity must be > 0, got %d", c.Cache.Capacity)
	case c.Cache.Shards < 0:
		return errors.Wrapf(ErrInvalid, "cache.shards must be >= 0, got %d", c.Cache.Shards)
	case c.Cache.TTL < 0:
		return errors.Wrapf(ErrInvalid, "cache.ttl must be >= 0, got %s", c.Cache.TTL)
	case c.Cache.MaxBytes < 0:
		return errors.Wrapf(ErrInvalid, "cache.max_bytes must be >= 0, got %d", c.Cache.MaxBytes)
	case c.DB.Limit < 0:
		return errors.Wrapf(ErrInvalid, "db.limit must be >= 0, got %d", c.DB.Limit)
	case c.WarmConcurrency < 0:
		return errors.Wrapf(ErrInvalid, "warm_concurrency must be >= 0, got %d", c.WarmConcurrency)
	}
	if _, err := cloud.ParseSortOrder(c.Sort); err != nil {
		return errors.Wrapf(ErrInvalid, "sort: %v", err)
	}
	if _, err := c.language(); err != nil {
		return err
	}
	if _, err := c.policy(); err != nil {
		return err
	}
	return nil
}

// SortOrder returns the configured order. Call after Validate.
func (c Config) SortOrder() cloud.SortOrder {
	o, _ := cloud.ParseSortOrder(c.Sort)
	return o
}

// CloudOptions converts the cloud settings.
func (c Config) CloudOptions() (cloud.Options, error) {
	loc, err := c.language()
	if err != nil {
		return cloud.Options{}, err
	}
	return cloud.Options{Steps: c.Steps, Locale: loc}, nil
}

// CacheOptions converts the cache settings; m may be nil.
func (c Config) CacheOptions(m cache.Metrics) (cache.Options, error) {
	p, err := c.policy()
	if err != nil {
		return cache.Options{}, err
	}
	return cache.Options{
		Capacity:   c.Cache.Capacity,
		Shards:     c.Cache.Shards,
		Policy:     p,
		DefaultTTL: c.Cache.TTL,
		MaxBytes:   c.Cache.MaxBytes,
		Metrics:    m,
	}, nil
}

func (c Config) language() (language.Tag, error) {
	if c.Locale == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Und, errors.Wrapf(ErrInvalid, "locale %q: %v", c.Locale, err)
	}
	return tag, nil
}

func (c Config) policy() (policy.Policy, error) {
	switch strings.ToLower(c.Cache.Policy) {
	case "", lru.Name:
		return lru.New(), nil
	case twoq.Name:
		n := util.ShardCount(c.Cache.Shards)
		perShard := (c.Cache.Capacity + n - 1) / n
		return twoq.New(perShard/4, perShard/2), nil
	default:
		return nil, errors.Wrapf(ErrInvalid, "cache.policy %q (use %s or %s)", c.Cache.Policy, lru.Name, twoq.Name)
	}
}

package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/IvanBrykalov/tagcloud/cloud"
	"github.com/IvanBrykalov/tagcloud/policy/lru"
	"github.com/IvanBrykalov/tagcloud/policy/twoq"
)

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, cloud.ByName, cfg.SortOrder())

	copt, err := cfg.CloudOptions()
	require.NoError(t, err)
	require.Equal(t, cloud.DefaultSteps, copt.Steps)
	require.Equal(t, language.Und, copt.Locale)

	opt, err := cfg.CacheOptions(nil)
	require.NoError(t, err)
	require.Equal(t, lru.Name, opt.Policy.Name())
	require.Equal(t, time.Hour, opt.DefaultTTL)
}

func TestLoad_FromYAML(t *testing.T) {
	t.Parallel()

	src := []byte(`
steps: 4
sort: count
locale: de
cache:
  capacity: 128
  shards: 2
  policy: 2Q
  ttl: 5m
  max_bytes: 4096
db:
  path: /tmp/tags.db
  limit: 50
`)
	v := NewViper()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewReader(src)))

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Steps)
	require.Equal(t, cloud.ByCount, cfg.SortOrder())
	require.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	require.Equal(t, int64(4096), cfg.Cache.MaxBytes)
	require.Equal(t, "/tmp/tags.db", cfg.DB.Path)
	require.Equal(t, 50, cfg.DB.Limit)
	require.Equal(t, 8, cfg.WarmConcurrency, "unset keys keep defaults")

	opt, err := cfg.CacheOptions(nil)
	require.NoError(t, err)
	require.Equal(t, twoq.Name, opt.Policy.Name())

	copt, err := cfg.CloudOptions()
	require.NoError(t, err)
	require.Equal(t, "de", copt.Locale.String())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TAGCLOUD_STEPS", "9")
	t.Setenv("TAGCLOUD_CACHE_CAPACITY", "77")
	t.Setenv("TAGCLOUD_CACHE_TTL", "90s")

	cfg, err := Load(NewViper())
	require.NoError(t, err)
	require.Equal(t, 9, cfg.Steps)
	require.Equal(t, 77, cfg.Cache.Capacity)
	require.Equal(t, 90*time.Second, cfg.Cache.TTL)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	for name, mutate := range map[string]func(*Config){
		"negative steps":  func(c *Config) { c.Steps = -1 },
		"zero capacity":   func(c *Config) { c.Cache.Capacity = 0 },
		"negative shards": func(c *Config) { c.Cache.Shards = -2 },
		"negative ttl":    func(c *Config) { c.Cache.TTL = -time.Second },
		"negative bytes":  func(c *Config) { c.Cache.MaxBytes = -1 },
		"negative limit":  func(c *Config) { c.DB.Limit = -1 },
		"negative warm":   func(c *Config) { c.WarmConcurrency = -1 },
		"unknown sort":    func(c *Config) { c.Sort = "alphabetical" },
		"bad locale":      func(c *Config) { c.Locale = "??-!!" },
		"unknown policy":  func(c *Config) { c.Cache.Policy = "arc" },
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	t.Parallel()

	out, err := yaml.Marshal(Default())
	require.NoError(t, err)
	require.Contains(t, string(out), "warm_concurrency: 8")

	v := NewViper()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewReader(out)))
	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

// Package config wraps viper behind the plugin.Config interface so modules
// can read configuration without depending on viper directly.
package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/lanscope/lanscope/pkg/plugin"
)

// Compile-time interface guard.
var _ plugin.Config = (*Config)(nil)

// Config adapts a *viper.Viper to plugin.Config. A nil viper is valid and
// yields zero values for every key.
type Config struct {
	v *viper.Viper
}

// New wraps the given viper instance. Passing nil returns a Config that
// reports zero values without panicking.
func New(v *viper.Viper) *Config {
	return &Config{v: v}
}

func (c *Config) GetString(key string) string {
	if c.v == nil {
		return ""
	}
	return c.v.GetString(key)
}

func (c *Config) GetInt(key string) int {
	if c.v == nil {
		return 0
	}
	return c.v.GetInt(key)
}

func (c *Config) GetBool(key string) bool {
	if c.v == nil {
		return false
	}
	return c.v.GetBool(key)
}

func (c *Config) GetDuration(key string) time.Duration {
	if c.v == nil {
		return 0
	}
	return c.v.GetDuration(key)
}

func (c *Config) IsSet(key string) bool {
	if c.v == nil {
		return false
	}
	return c.v.IsSet(key)
}

// Sub returns the subtree rooted at key. A missing key returns an empty
// Config, never nil.
func (c *Config) Sub(key string) plugin.Config {
	if c.v == nil {
		return New(nil)
	}
	return New(c.v.Sub(key))
}

func (c *Config) Unmarshal(target any) error {
	if c.v == nil {
		return nil
	}
	return c.v.Unmarshal(target)
}

// Load reads configuration from the given file path (optional) plus
// LANSCOPE_* environment variables, applying defaults for all known keys.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8343")
	v.SetDefault("store.path", "lanscope.db")
	v.SetDefault("sweep.probe_timeout", "1s")
	v.SetDefault("sweep.probe_workers", 50)
	v.SetDefault("sweep.enrich_workers", 20)
	v.SetDefault("sweep.probe_rate", 200)
	v.SetDefault("sweep.deadline", "45s")
	v.SetDefault("sweep.snmp_enabled", false)
	v.SetDefault("sweep.mdns_enabled", false)
	v.SetDefault("perf.window", 20)
	v.SetDefault("vault.token_ttl", "12h")

	v.SetEnvPrefix("LANSCOPE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	return New(v), nil
}

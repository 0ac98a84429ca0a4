// Package config adapts Viper to plugin.Config and builds the service logger.
package config

import (
	"time"

	"github.com/spf13/viper"
	"github.com/thebooleanin/techstory-weaver/pkg/plugin"
)

var _ plugin.Config = (*ViperConfig)(nil)

// ViperConfig wraps a Viper instance to implement plugin.Config.
type ViperConfig struct {
	v *viper.Viper
}

// New creates a Config backed by v. A nil v yields an empty config, which
// is what plugins see when their section is absent.
func New(v *viper.Viper) *ViperConfig {
	if v == nil {
		v = viper.New()
	}
	return &ViperConfig{v: v}
}

func (c *ViperConfig) Unmarshal(target any) error           { return c.v.Unmarshal(target) }
func (c *ViperConfig) Get(key string) any                   { return c.v.Get(key) }
func (c *ViperConfig) GetString(key string) string          { return c.v.GetString(key) }
func (c *ViperConfig) GetInt(key string) int                { return c.v.GetInt(key) }
func (c *ViperConfig) GetBool(key string) bool              { return c.v.GetBool(key) }
func (c *ViperConfig) GetDuration(key string) time.Duration { return c.v.GetDuration(key) }
func (c *ViperConfig) IsSet(key string) bool                { return c.v.IsSet(key) }

// Sub scopes the config to key, e.g. "plugins.webhook".
func (c *ViperConfig) Sub(key string) plugin.Config {
	return New(c.v.Sub(key))
}

// Viper returns the underlying instance for top-level keys such as
// server.port.
func (c *ViperConfig) Viper() *viper.Viper {
	return c.v
}

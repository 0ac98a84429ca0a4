package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"github.com/thebooleanin/techstory-weaver/internal/ratelimit"
)

// Config holds the server configuration.
type Config struct {
	Host      string  `mapstructure:"host"`
	Port      int     `mapstructure:"port"`
	DataDir   string  `mapstructure:"data_dir"`
	DevMode   bool    `mapstructure:"dev_mode"`
	ReadOnly  bool    `mapstructure:"read_only"`
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
	// TrustedProxies are addresses or CIDRs of reverse proxies allowed to
	// set X-Forwarded-For.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// Addr returns the listen address as host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Options converts the config into server options.
func (c *Config) Options() (Options, error) {
	proxies, err := ratelimit.ParseProxies(c.TrustedProxies)
	if err != nil {
		return Options{}, fmt.Errorf("server.trusted_proxies: %w", err)
	}
	return Options{
		DevMode:   c.DevMode,
		ReadOnly:  c.ReadOnly,
		RateLimit: c.RateLimit,
		RateBurst: c.RateBurst,
		Proxies:   proxies,
	}, nil
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.data_dir", "./data")
	v.SetDefault("server.dev_mode", false)
	v.SetDefault("server.read_only", false)
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.rate_burst", 200)
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("server.seed_demo", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("database.path", "./data/theboolean.db")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.refresh_token_ttl", "168h")

	v.SetDefault("theme.presets_file", "")
	v.SetDefault("theme.live_preview", true)

	// Plugin defaults
	for _, kind := range []string{"articles", "stories", "ads"} {
		v.SetDefault("plugins."+kind+".enabled", true)
		v.SetDefault("plugins."+kind+".default_page_size", 10)
		v.SetDefault("plugins."+kind+".max_page_size", 100)
	}
	v.SetDefault("plugins.forms.enabled", true)
	v.SetDefault("plugins.forms.rate_limit", 5)
	v.SetDefault("plugins.forms.burst", 3)
	v.SetDefault("plugins.forms.max_message_length", 5000)
	v.SetDefault("plugins.webhook.enabled", true)
	v.SetDefault("plugins.webhook.url", "")
	v.SetDefault("plugins.webhook.timeout", "10s")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("theboolean")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/theboolean")
	}

	// Environment variable support: TB_SERVER_PORT=9090
	v.SetEnvPrefix("TB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is fine -- use defaults
	}

	return v, nil
}

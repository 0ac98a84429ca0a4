package forms

import "time"

// Config holds the forms plugin configuration, read from plugins.forms.
type Config struct {
	// RateLimit is the sustained number of submissions allowed per client
	// IP per minute.
	RateLimit       float64       `mapstructure:"rate_limit"`
	Burst           int           `mapstructure:"burst"`
	IdleTTL         time.Duration `mapstructure:"idle_ttl"`
	MaxMessageLen   int           `mapstructure:"max_message_length"`
	DefaultPageSize int           `mapstructure:"default_page_size"`
	MaxPageSize     int           `mapstructure:"max_page_size"`
}

func DefaultConfig() Config {
	return Config{
		RateLimit:       5,
		Burst:           3,
		IdleTTL:         10 * time.Minute,
		MaxMessageLen:   5000,
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}
}

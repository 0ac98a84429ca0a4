package content

// Config holds per-kind listing options, read from plugins.<kind>.
type Config struct {
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
}

func DefaultConfig() Config {
	return Config{
		DefaultPageSize: 10,
		MaxPageSize:     100,
	}
}

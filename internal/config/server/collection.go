package server

// CacheServerConfig controls the evaluation result cache.
type CacheServerConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	SizeMB  int  `mapstructure:"size_mb" yaml:"size_mb" validate:"min:0"`
	// TTL in seconds, 0 keeps entries until evicted.
	TTL int `mapstructure:"ttl" yaml:"ttl" validate:"min:0"`
}

// RefreshServerConfig controls the periodic smart collection refresh of the agent.
type RefreshServerConfig struct {
	Interval string `mapstructure:"interval" yaml:"interval"`
	Workers  int    `mapstructure:"workers"  yaml:"workers"  validate:"required|min:1"`
}

type MetricsServerConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Address string `mapstructure:"address" yaml:"address"`
}

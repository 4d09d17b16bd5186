package buffer

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config sizes a buffer pool. PoolSize is the fixed frame count;
// ReplacerK is the LRU-K replacer's k; HashBucketSize bounds each
// extendible-hash bucket's key count for the page table.
type Config struct {
	PoolSize       int `mapstructure:"pool_size"`
	ReplacerK      int `mapstructure:"replacer_k"`
	HashBucketSize int `mapstructure:"hash_bucket_size"`
}

// DefaultConfig mirrors commonly-used bustub defaults: a modest pool, a
// classic LRU-2 replacer, and a bucket size that keeps directory splits
// frequent enough to exercise in tests.
func DefaultConfig() Config {
	return Config{PoolSize: 64, ReplacerK: 2, HashBucketSize: 4}
}

// LoadConfig reads pool sizing from a YAML file, with BUSTUB_-prefixed
// environment variables overriding individual fields — the same
// viper wiring the rest of the retrieval pack uses for service config.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BUSTUB")
	v.AutomaticEnv()

	cfg := DefaultConfig()
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("buffer: read config %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("buffer: unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects sizing that would make the pool or hash table
// unusable.
func (c Config) Validate() error {
	if c.PoolSize <= 0 {
		return fmt.Errorf("buffer: pool_size must be positive, got %d", c.PoolSize)
	}
	if c.ReplacerK <= 0 {
		return fmt.Errorf("buffer: replacer_k must be positive, got %d", c.ReplacerK)
	}
	if c.HashBucketSize <= 0 {
		return fmt.Errorf("buffer: hash_bucket_size must be positive, got %d", c.HashBucketSize)
	}
	return nil
}

package chunkmerge

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/chunkmerge/search"
)

// Config is the configuration for the Optimizer.
type Config struct {
	// MinSizeReduce is the minimum improvement ratio a pair must reach to be merged.
	//
	// The ratio is (size(a) + size(b)) / size(a ∪ b) with per-chunk overhead
	// excluded. 1.0 means the chunks share nothing; 2.0 means they are identical.
	// A pair whose ratio equals the threshold is merged.
	//
	// Default: 1.5
	MinSizeReduce float64 `yaml:"minSizeReduce"`

	// MaxMerges caps the number of merges performed by a single Run.
	// Zero means unlimited; the loop still terminates after at most n-1 merges.
	MaxMerges int `yaml:"maxMerges"`

	// CacheSizes wraps the chunk graph in a size cache so that scores of pairs
	// untouched by the last merge are not recomputed. Useful when the graph's
	// size model is expensive.
	CacheSizes bool `yaml:"cacheSizes"`
}

// DefaultConfig returns a Config with sensible defaults.
//
// Returns:
//   - Config: Configuration with default values
func DefaultConfig() Config {
	return Config{
		MinSizeReduce: search.DefaultMinSizeReduce,
		MaxMerges:     0,
		CacheSizes:    false,
	}
}

// SetDefaults fills in missing configuration values with defaults.
//
// Parameters:
//   - cfg: Config to apply defaults to (modified in place)
func SetDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.MinSizeReduce == 0 {
		cfg.MinSizeReduce = defaults.MinSizeReduce
	}
}

// Validate checks configuration constraints and returns error for invalid values.
//
// Hard Validation Rules:
//   - MinSizeReduce > 0 and finite
//   - MaxMerges >= 0
//
// Returns:
//   - error: Validation error wrapping ErrInvalidConfig, nil if valid
func (cfg *Config) Validate() error {
	if cfg.MinSizeReduce <= 0 || math.IsNaN(cfg.MinSizeReduce) || math.IsInf(cfg.MinSizeReduce, 0) {
		return fmt.Errorf("%w: MinSizeReduce must be a positive finite number, got %v",
			ErrInvalidConfig, cfg.MinSizeReduce)
	}

	if cfg.MaxMerges < 0 {
		return fmt.Errorf("%w: MaxMerges must be >= 0, got %d", ErrInvalidConfig, cfg.MaxMerges)
	}

	return nil
}

// ValidateWithWarnings logs warnings for legal but questionable values.
//
// Parameters:
//   - logger: Logger instance for warning output
func (cfg *Config) ValidateWithWarnings(logger Logger) {
	// Every pair scores at least 1.0, so a threshold at or below it merges
	// all async chunks into one.
	if cfg.MinSizeReduce <= 1 {
		logger.Warn(
			"MinSizeReduce does not require any shared modules, all async chunks will be merged",
			"minSizeReduce", cfg.MinSizeReduce,
			"recommended", search.DefaultMinSizeReduce,
		)
	}

	if cfg.MinSizeReduce > 2 {
		logger.Warn(
			"MinSizeReduce is above 2.0, which no pair can reach unless the size model counts overhead",
			"minSizeReduce", cfg.MinSizeReduce,
		)
	}
}

// LoadConfig loads configuration from a YAML file.
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded configuration with defaults applied
//   - error: Error if file cannot be read, parsed or validated
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	SetDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// TestConfig returns a configuration for tests: defaults plus a size cache,
// so tests exercise the cached path the same way hosts with expensive size
// models do.
func TestConfig() Config {
	cfg := DefaultConfig()
	cfg.CacheSizes = true

	return cfg
}

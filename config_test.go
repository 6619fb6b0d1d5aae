package chunkmerge

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/chunkmerge/internal/logger"
)

// warnLogger counts warnings and drops everything else.
type warnLogger struct {
	logger.NopLogger
	warnings []string
}

func (l *warnLogger) Warn(msg string, _ ...any) {
	l.warnings = append(l.warnings, msg)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, 1.5, cfg.MinSizeReduce)
	require.Equal(t, 0, cfg.MaxMerges)
	require.False(t, cfg.CacheSizes)
	require.NoError(t, cfg.Validate())
}

func TestSetDefaults(t *testing.T) {
	t.Run("applies defaults to empty config", func(t *testing.T) {
		cfg := Config{}
		SetDefaults(&cfg)

		require.Equal(t, 1.5, cfg.MinSizeReduce)
		require.Equal(t, 0, cfg.MaxMerges)
	})

	t.Run("preserves custom values", func(t *testing.T) {
		cfg := Config{MinSizeReduce: 1.2, MaxMerges: 7, CacheSizes: true}
		SetDefaults(&cfg)

		require.Equal(t, 1.2, cfg.MinSizeReduce)
		require.Equal(t, 7, cfg.MaxMerges)
		require.True(t, cfg.CacheSizes)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default", cfg: DefaultConfig()},
		{name: "threshold at one", cfg: Config{MinSizeReduce: 1}},
		{name: "zero threshold", cfg: Config{MinSizeReduce: 0}, wantErr: true},
		{name: "negative threshold", cfg: Config{MinSizeReduce: -0.5}, wantErr: true},
		{name: "NaN threshold", cfg: Config{MinSizeReduce: math.NaN()}, wantErr: true},
		{name: "infinite threshold", cfg: Config{MinSizeReduce: math.Inf(1)}, wantErr: true},
		{name: "negative max merges", cfg: Config{MinSizeReduce: 1.5, MaxMerges: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConfig_ValidateWithWarnings(t *testing.T) {
	tests := []struct {
		threshold float64
		warnings  int
	}{
		{threshold: 1.5, warnings: 0},
		{threshold: 2.0, warnings: 0},
		{threshold: 1.0, warnings: 1},
		{threshold: 0.8, warnings: 1},
		{threshold: 2.5, warnings: 1},
	}

	for _, tt := range tests {
		l := &warnLogger{}
		cfg := Config{MinSizeReduce: tt.threshold}
		cfg.ValidateWithWarnings(l)
		require.Len(t, l.warnings, tt.warnings, "threshold %v", tt.threshold)
	}
}

func TestConfig_YAML(t *testing.T) {
	data := []byte("minSizeReduce: 1.8\nmaxMerges: 3\ncacheSizes: true\n")

	var cfg Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	require.Equal(t, Config{MinSizeReduce: 1.8, MaxMerges: 3, CacheSizes: true}, cfg)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	write := func(t *testing.T, name, content string) string {
		t.Helper()

		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		return path
	}

	t.Run("partial file keeps defaults", func(t *testing.T) {
		cfg, err := LoadConfig(write(t, "partial.yaml", "maxMerges: 4\n"))
		require.NoError(t, err)
		require.Equal(t, 1.5, cfg.MinSizeReduce)
		require.Equal(t, 4, cfg.MaxMerges)
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := LoadConfig(write(t, "invalid.yaml", "minSizeReduce: -2\n"))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadConfig(write(t, "broken.yaml", "minSizeReduce: [\n"))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	require.True(t, cfg.CacheSizes)
	require.Equal(t, DefaultConfig().MinSizeReduce, cfg.MinSizeReduce)
}

package config

import (
	"fmt"
	"path/filepath"

	"github.com/waymark/waymark/internal/fileutil"
	"github.com/spf13/viper"
)

// DefaultConfigDir and DefaultConfigFile name the standard location of the
// repository-set config relative to a workspace root (§1.3).
const (
	DefaultConfigDir  = ".waymark"
	DefaultConfigFile = "config.yaml"
)

// Load reads and validates the repository-set config at configPath.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadFromDir loads `.waymark/config.yaml` from dir.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, DefaultConfigDir, DefaultConfigFile))
}

// FindConfig searches startDir and its parents, up to the filesystem root,
// for a `.waymark/config.yaml`.
func FindConfig(startDir string) (string, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, DefaultConfigDir, DefaultConfigFile)
		if fileutil.PathExists(configPath) {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("waymark config not found in %s or parent directories", startDir)
}

func resolvePath(configDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(configDir, path)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < env < flags.
func Load() (*Config, error) {
	cfg := Default()

	// Explicit --config path takes priority over the search.
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	applyFlags(cfg)

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Pano3D")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Pano3D")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "pano3d")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "pano3d")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv applies environment overrides. PORT, MESHY_API_KEY,
// MESHY_API_URL and PANO3D_DATA_DIR mirror the deployment variables the
// proxy is started with.
func loadFromEnv(cfg *Config) error {
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("parsing PORT %q: %w", port, err)
		}
		cfg.Server.Port = p
	}
	if key := os.Getenv("MESHY_API_KEY"); key != "" {
		cfg.Meshy.APIKey = key
	}
	if url := os.Getenv("MESHY_API_URL"); url != "" {
		cfg.Meshy.APIURL = url
	}
	if dir := os.Getenv("PANO3D_DATA_DIR"); dir != "" {
		cfg.Server.DataDir = dir
	}
	return nil
}

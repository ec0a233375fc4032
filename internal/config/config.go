// Package config handles viewer and proxy configuration loading.
package config

import "fmt"

// Config holds all settings for the panoview viewer and the meshproxy
// server. Each binary reads only its own section plus Logging.
type Config struct {
	Viewer  ViewerConfig  `yaml:"viewer"`
	Server  ServerConfig  `yaml:"server"`
	Meshy   MeshyConfig   `yaml:"meshy"`
	Logging LoggingConfig `yaml:"logging"`
}

// ViewerConfig holds point-cloud display settings.
type ViewerConfig struct {
	PLYPath        string  `yaml:"ply"`
	MaxPoints      int     `yaml:"max_points"`
	PointSize      float32 `yaml:"point_size"`
	FOVDegrees     float32 `yaml:"fov"`
	CameraDistance float32 `yaml:"camera_distance"`
	Background     string  `yaml:"background"`
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	Invert         bool    `yaml:"invert"`
	ShowAxis       bool    `yaml:"show_axis"`
	HorizontalOnly bool    `yaml:"horizontal_only"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    int    `yaml:"port"`
	DataDir string `yaml:"data_dir"`
}

// MeshyConfig holds Meshy API credentials and endpoint.
type MeshyConfig struct {
	APIKey string `yaml:"api_key"`
	APIURL string `yaml:"api_url"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			PLYPath:        "image360_2.ply",
			MaxPoints:      3000000,
			PointSize:      10.0,
			FOVDegrees:     100,
			CameraDistance: 0.0,
			Background:     "black",
			Width:          1400,
			Height:         900,
			Invert:         true,
			ShowAxis:       true,
			HorizontalOnly: false,
		},
		Server: ServerConfig{
			Port:    5001,
			DataDir: "data",
		},
		Meshy: MeshyConfig{
			APIKey: "",
			APIURL: "https://api.meshy.ai/openapi/v1/image-to-3d",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks settings that would break the viewer or server at
// startup. Unknown background names are not an error; the renderer
// falls back to black.
func (c *Config) Validate() error {
	if c.Viewer.FOVDegrees <= 0 || c.Viewer.FOVDegrees >= 180 {
		return fmt.Errorf("fov must be between 0 and 180 degrees exclusive, got %g", c.Viewer.FOVDegrees)
	}
	if c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Viewer.Width, c.Viewer.Height)
	}
	if c.Viewer.MaxPoints <= 0 {
		return fmt.Errorf("max points must be positive, got %d", c.Viewer.MaxPoints)
	}
	if c.Viewer.PointSize <= 0 {
		return fmt.Errorf("point size must be positive, got %g", c.Viewer.PointSize)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("port must be in 1..65535, got %d", c.Server.Port)
	}
	return nil
}

// Package main is the entry point for the meshproxy image-to-3D server.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/unjin-lab/pano3d/internal/config"
	"github.com/unjin-lab/pano3d/internal/logger"
	"github.com/unjin-lab/pano3d/internal/meshy"
	"github.com/unjin-lab/pano3d/internal/server"
	"github.com/unjin-lab/pano3d/internal/store"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Pano3D Mesh Proxy ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// The server comes up without a key; every remote call then fails
	// with the configuration error until one is provided.
	if cfg.Meshy.APIKey == "" {
		logger.Warn("MESHY_API_KEY is not set; Meshy calls will fail until it is exported")
	}

	st, err := store.New(cfg.Server.DataDir, logger.Log)
	if err != nil {
		return err
	}

	client := meshy.NewHTTPClient(meshy.HTTPConfig{
		APIKey:  cfg.Meshy.APIKey,
		BaseURL: cfg.Meshy.APIURL,
		Logger:  logger.Log,
	})

	srv := server.New(server.Config{
		Meshy:  client,
		Store:  st,
		Logger: logger.Log,
	})
	return srv.Listen(fmt.Sprintf(":%d", cfg.Server.Port))
}

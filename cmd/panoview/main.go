// Package main is the entry point for the panoview point cloud viewer.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/unjin-lab/pano3d/internal/cloud"
	"github.com/unjin-lab/pano3d/internal/config"
	"github.com/unjin-lab/pano3d/internal/logger"
	"github.com/unjin-lab/pano3d/internal/viewer"
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

	logger.Info("=== Pano3D Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Point cloud file not found: %s\n", cfg.Viewer.PLYPath)
			fmt.Fprintf(os.Stderr, "Pass --ply <file> or place the export next to the binary.\n")
			os.Exit(1)
		}
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}

func run(cfg *config.Config) error {
	vc := cfg.Viewer

	c, err := cloud.Load(vc.PLYPath)
	if err != nil {
		return err
	}
	logger.Info("point cloud loaded", zap.String("path", vc.PLYPath), zap.Int("points", c.Len()))

	if c.Len() > vc.MaxPoints {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		before := c.Len()
		c = cloud.Downsample(c, vc.MaxPoints, rng)
		logger.Info("downsampled", zap.Int("from", before), zap.Int("to", c.Len()))
	}

	b := c.Bounds()
	center, size := b.Center(), b.Size()
	logger.Info("cloud bounds",
		zap.String("center", fmt.Sprintf("(%.3f, %.3f, %.3f)", center.X, center.Y, center.Z)),
		zap.String("size", fmt.Sprintf("(%.3f, %.3f, %.3f)", size.X, size.Y, size.Z)))

	if vc.Invert {
		c.Invert()
		logger.Info("switching to inside view")
	}

	app, err := viewer.New(viewer.Config{
		Title:          "Pano3D 360 Viewer - Inside View",
		Width:          vc.Width,
		Height:         vc.Height,
		PointSize:      vc.PointSize,
		FOVDegrees:     vc.FOVDegrees,
		CameraDistance: vc.CameraDistance,
		Background:     vc.Background,
		ShowAxis:       vc.ShowAxis,
		HorizontalOnly: vc.HorizontalOnly,
	}, c)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Run()
}

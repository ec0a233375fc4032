// Package server exposes the image-to-3D proxy over HTTP.
package server

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/unjin-lab/pano3d/internal/meshy"
	"github.com/unjin-lab/pano3d/internal/store"
)

// Config holds server dependencies and HTTP tuning.
type Config struct {
	Meshy        meshy.Client
	Store        *store.Store
	Logger       *zap.Logger
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server wires the HTTP surface to the Meshy client and the store.
type Server struct {
	app    *fiber.App
	client meshy.Client
	store  *store.Store
	log    *zap.Logger
}

// New builds the fiber app with all middleware and routes registered.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// Result downloads wait on the upstream model fetch.
		cfg.WriteTimeout = 300 * time.Second
	}

	s := &Server{
		client: cfg.Meshy,
		store:  cfg.Store,
		log:    cfg.Logger,
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		AppName:      "meshproxy",
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(countRequests())

	app.Get("/health", s.health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/docs", swaggerUI)
	app.Get("/docs/openapi.yaml", openAPISpec)

	api := app.Group("/api", cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"*"},
		AllowMethods: []string{"*"},
	}))
	api.Post("/process-image", s.processImage)
	api.Get("/status/:taskID", s.taskStatus)
	api.Get("/result/:taskID", s.taskResult)

	s.app = app
	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until the process exits.
func (s *Server) Listen(addr string) error {
	s.log.Info("meshproxy listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

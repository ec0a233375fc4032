package server

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var httpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "meshproxy",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	},
	[]string{"method", "path", "status"},
)

// countRequests records one observation per completed request, labeled
// with the route pattern rather than the raw path.
func countRequests() fiber.Handler {
	return func(c fiber.Ctx) error {
		err := c.Next()

		httpRequestsTotal.WithLabelValues(
			c.Method(),
			c.Route().Path,
			strconv.Itoa(c.Response().StatusCode()),
		).Inc()
		return err
	}
}

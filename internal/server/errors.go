package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/unjin-lab/pano3d/internal/meshy"
	"github.com/unjin-lab/pano3d/internal/transcode"
)

const missingKeyMessage = "MESHY_API_KEY is not set. Add the key to the environment before starting the proxy."

// detailFromBody exposes an upstream response body to the client:
// parsed when it is JSON, wrapped as text otherwise.
func detailFromBody(body []byte) any {
	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fiber.Map{"text": string(body)}
	}
	return parsed
}

func (s *Server) respondCreateError(c fiber.Ctx, err error) error {
	var upstream *meshy.UpstreamError
	var protocol *meshy.ProtocolError
	switch {
	case errors.Is(err, meshy.ErrMissingAPIKey):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": missingKeyMessage})
	case errors.As(err, &upstream):
		s.log.Warn("meshy create failed", zap.Int("status", upstream.StatusCode))
		return c.Status(upstream.StatusCode).JSON(fiber.Map{
			"error":  "Meshy create failed",
			"detail": detailFromBody(upstream.Body),
		})
	case errors.As(err, &protocol):
		s.log.Warn("meshy create returned no task id")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":  "Invalid Meshy response",
			"detail": detailFromBody([]byte(protocol.Detail)),
		})
	default:
		return s.internalError(c, err)
	}
}

func (s *Server) respondStatusError(c fiber.Ctx, err error) error {
	var upstream *meshy.UpstreamError
	switch {
	case errors.Is(err, meshy.ErrMissingAPIKey):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": missingKeyMessage})
	case errors.As(err, &upstream):
		return c.Status(upstream.StatusCode).JSON(fiber.Map{
			"error":  "Meshy status failed",
			"detail": detailFromBody(upstream.Body),
		})
	default:
		return s.internalError(c, err)
	}
}

func (s *Server) respondResultError(c fiber.Ctx, err error) error {
	var upstream *meshy.UpstreamError
	var protocol *meshy.ProtocolError
	var notReady *meshy.NotReadyError
	switch {
	case errors.Is(err, meshy.ErrMissingAPIKey):
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": missingKeyMessage})
	case errors.As(err, &upstream):
		return c.Status(upstream.StatusCode).JSON(fiber.Map{"error": "Failed to get status from Meshy"})
	case errors.As(err, &notReady):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":  "Job not completed",
			"status": notReady.Status,
		})
	case errors.As(err, &protocol):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "GLB URL missing in Meshy response"})
	default:
		return s.internalError(c, err)
	}
}

func (s *Server) respondConvertError(c fiber.Ctx, format string, err error) error {
	var conv *transcode.ConversionError
	if errors.As(err, &conv) {
		s.log.Warn("model conversion failed", zap.String("format", format), zap.Error(conv.Err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":  fmt.Sprintf("Conversion to %s failed", format),
			"detail": conv.Err.Error(),
		})
	}
	return s.internalError(c, err)
}

func (s *Server) internalError(c fiber.Ctx, err error) error {
	s.log.Error("request failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":  "Internal server error",
		"detail": err.Error(),
	})
}

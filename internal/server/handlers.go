package server

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/unjin-lab/pano3d/internal/store"
	"github.com/unjin-lab/pano3d/internal/transcode"
)

func (s *Server) health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "service": "image-to-3d-backend"})
}

func (s *Server) processImage(c fiber.Ctx) error {
	n, herr := s.normalizeRequest(c)
	if herr != nil {
		return c.Status(herr.status).JSON(herr.body)
	}

	if n.ImageBytes != nil {
		s.store.SaveUpload(n.OriginalFilename, n.ImageBytes)
	}

	taskID, err := s.client.CreateTask(c.Context(), n.ImageSource, n.Options)
	if err != nil {
		return s.respondCreateError(c, err)
	}

	s.store.SaveTaskMeta(taskID, store.Meta{
		OriginalFilename: n.OriginalFilename,
		Options: store.MetaOptions{
			EnablePBR:     n.Options.EnablePBR,
			ShouldRemesh:  n.Options.ShouldRemesh,
			ShouldTexture: n.Options.ShouldTexture,
			AIModel:       n.Options.AIModel,
		},
	})

	s.log.Info("task accepted",
		zap.String("task_id", taskID),
		zap.String("ai_model", n.Options.AIModel),
		zap.Int("image_bytes", len(n.ImageBytes)))

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"task_id": taskID})
}

func (s *Server) taskStatus(c fiber.Ctx) error {
	taskID := c.Params("taskID")

	status, err := s.client.TaskStatus(c.Context(), taskID)
	if err != nil {
		return s.respondStatusError(c, err)
	}
	return c.JSON(status)
}

func (s *Server) taskResult(c fiber.Ctx) error {
	taskID := c.Params("taskID")
	format := strings.ToLower(c.Query("format", "glb"))

	// Reject bad formats before touching the upstream API.
	if !transcode.Supports(format) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Unsupported format",
			"allowed": transcode.Formats,
		})
	}

	glb, err := s.client.FetchModel(c.Context(), taskID)
	if err != nil {
		return s.respondResultError(c, err)
	}

	payload, err := transcode.Convert(glb, format)
	if err != nil {
		return s.respondConvertError(c, format, err)
	}

	s.log.Info("model delivered",
		zap.String("task_id", taskID),
		zap.String("format", format),
		zap.Int("bytes", len(payload)))

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", taskID+"."+format))
	c.Set(fiber.HeaderContentType, transcode.ContentType(format))
	return c.Send(payload)
}

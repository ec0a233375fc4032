package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/unjin-lab/pano3d/internal/meshy"
)

// normalized is the content-type-independent form of a process-image
// request.
type normalized struct {
	ImageBytes       []byte // raw upload, nil when only a URL was given
	ImageSource      string // URL or data: URI forwarded upstream
	OriginalFilename string
	Options          meshy.TaskOptions
}

// httpError is a ready-to-send client error response.
type httpError struct {
	status int
	body   fiber.Map
}

func (e *httpError) Error() string {
	return fmt.Sprintf("http %d", e.status)
}

type jsonRequest struct {
	ImageBase64   string `json:"image_base64"`
	ImageURL      string `json:"image_url"`
	EnablePBR     *bool  `json:"enable_pbr"`
	ShouldRemesh  *bool  `json:"should_remesh"`
	ShouldTexture *bool  `json:"should_texture"`
	AIModel       string `json:"ai_model"`
}

// normalizeRequest reduces the two accepted request shapes to one.
// Flags default to true however the request arrives.
func (s *Server) normalizeRequest(c fiber.Ctx) (*normalized, *httpError) {
	contentType := c.Get(fiber.HeaderContentType)

	var n normalized
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		if file, err := c.FormFile("image"); err == nil {
			f, err := file.Open()
			if err != nil {
				return nil, &httpError{fiber.StatusInternalServerError, fiber.Map{"error": "failed to open upload"}}
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, &httpError{fiber.StatusInternalServerError, fiber.Map{"error": "failed to read upload"}}
			}
			n.ImageBytes = data
			n.OriginalFilename = file.Filename
		}

		var values map[string][]string
		if form, err := c.MultipartForm(); err == nil {
			values = form.Value
		}
		n.Options = meshy.TaskOptions{
			EnablePBR:     formFlag(values, "enable_pbr"),
			ShouldRemesh:  formFlag(values, "should_remesh"),
			ShouldTexture: formFlag(values, "should_texture"),
			AIModel:       meshy.NormalizeAIModel(firstValue(values, "ai_model")),
		}

	case strings.HasPrefix(contentType, "application/json"):
		var body jsonRequest
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return nil, &httpError{fiber.StatusBadRequest, fiber.Map{"error": "Invalid JSON body"}}
		}
		if body.ImageBase64 != "" {
			b64 := body.ImageBase64
			// Strip a data:...;base64, prefix when present.
			if i := strings.IndexByte(b64, ','); i >= 0 {
				b64 = b64[i+1:]
			}
			data, err := base64.StdEncoding.DecodeString(b64)
			if err != nil {
				return nil, &httpError{fiber.StatusInternalServerError, fiber.Map{"error": "Internal server error", "detail": err.Error()}}
			}
			n.ImageBytes = data
		} else if body.ImageURL != "" {
			n.ImageSource = body.ImageURL
		}
		n.Options = meshy.TaskOptions{
			EnablePBR:     boolOrTrue(body.EnablePBR),
			ShouldRemesh:  boolOrTrue(body.ShouldRemesh),
			ShouldTexture: boolOrTrue(body.ShouldTexture),
			AIModel:       meshy.NormalizeAIModel(body.AIModel),
		}

	default:
		return nil, &httpError{fiber.StatusUnsupportedMediaType, fiber.Map{"error": "Unsupported content type"}}
	}

	if n.ImageBytes == nil && n.ImageSource == "" {
		return nil, &httpError{fiber.StatusBadRequest, fiber.Map{
			"error": "No image provided. Use multipart 'image' or JSON 'image_base64'/'image_url'.",
		}}
	}

	// Raw bytes go upstream as a data URI.
	if n.ImageSource == "" {
		n.ImageSource = "data:image/png;base64," + base64.StdEncoding.EncodeToString(n.ImageBytes)
	}
	return &n, nil
}

// formFlag parses a form toggle: absent means true, present means
// true only for the accepted truthy spellings.
func formFlag(values map[string][]string, name string) bool {
	vals, ok := values[name]
	if !ok || len(vals) == 0 {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(vals[0])) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}

func firstValue(values map[string][]string, name string) string {
	if vals := values[name]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func boolOrTrue(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

package meshy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Per-operation request timeouts. Model downloads are large, so they
// get far more room than the JSON calls.
const (
	createTimeout   = 60 * time.Second
	statusTimeout   = 30 * time.Second
	downloadTimeout = 180 * time.Second
)

// HTTPConfig configures the live client.
type HTTPConfig struct {
	APIKey  string
	BaseURL string // DefaultBaseURL when empty
	Logger  *zap.Logger
}

// HTTPClient is the live Meshy API client. One attempt per request,
// no retries.
type HTTPClient struct {
	apiKey  string
	baseURL string
	log     *zap.Logger

	createClient   *http.Client
	statusClient   *http.Client
	downloadClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a live client. The key may be empty; every
// operation then fails with ErrMissingAPIKey before touching the
// network.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &HTTPClient{
		apiKey:         cfg.APIKey,
		baseURL:        cfg.BaseURL,
		log:            cfg.Logger,
		createClient:   &http.Client{Timeout: createTimeout},
		statusClient:   &http.Client{Timeout: statusTimeout},
		downloadClient: &http.Client{Timeout: downloadTimeout},
	}
}

type createRequest struct {
	ImageURL      string `json:"image_url"`
	EnablePBR     bool   `json:"enable_pbr"`
	ShouldRemesh  bool   `json:"should_remesh"`
	ShouldTexture bool   `json:"should_texture"`
	AIModel       string `json:"ai_model"`
}

// CreateTask submits an image-to-3D task and returns the remote id.
func (c *HTTPClient) CreateTask(ctx context.Context, imageSource string, opts TaskOptions) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	body, err := json.Marshal(createRequest{
		ImageURL:      imageSource,
		EnablePBR:     opts.EnablePBR,
		ShouldRemesh:  opts.ShouldRemesh,
		ShouldTexture: opts.ShouldTexture,
		AIModel:       NormalizeAIModel(opts.AIModel),
	})
	if err != nil {
		return "", fmt.Errorf("encoding create request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.createClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("posting create request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading create response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &UpstreamError{Op: "create", StatusCode: resp.StatusCode, Body: respBody}
	}

	var created struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(respBody, &created); err != nil {
		return "", fmt.Errorf("decoding create response: %w", err)
	}
	if created.Result == "" {
		return "", &ProtocolError{Op: "create", Detail: string(respBody)}
	}

	c.log.Info("meshy task created", zap.String("task_id", created.Result))
	return created.Result, nil
}

// TaskStatus fetches the live state of a task.
func (c *HTTPClient) TaskStatus(ctx context.Context, taskID string) (*TaskStatus, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+taskID, nil)
	if err != nil {
		return nil, fmt.Errorf("building status request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.statusClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching status: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading status response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Op: "status", StatusCode: resp.StatusCode, Body: respBody}
	}

	var status TaskStatus
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, fmt.Errorf("decoding status response: %w", err)
	}
	return &status, nil
}

// FetchModel downloads the GLB of a completed task. Status is always
// re-fetched live; a stale SUCCEEDED is never trusted.
func (c *HTTPClient) FetchModel(ctx context.Context, taskID string) ([]byte, error) {
	status, err := c.TaskStatus(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if status.Status != StatusSucceeded {
		return nil, &NotReadyError{Status: status.Status}
	}
	glbURL := status.ModelURLs["glb"]
	if glbURL == "" {
		return nil, &ProtocolError{Op: "download", Detail: "no glb url in model_urls"}
	}

	// Model URLs are pre-signed storage links; no auth header here.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, glbURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}

	resp, err := c.downloadClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("downloading model: upstream status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}

	c.log.Info("meshy model downloaded",
		zap.String("task_id", taskID),
		zap.Int("bytes", len(data)),
	)
	return data, nil
}

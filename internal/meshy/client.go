// Package meshy talks to the Meshy image-to-3D API.
package meshy

import "context"

// DefaultBaseURL is the Meshy image-to-3D endpoint.
const DefaultBaseURL = "https://api.meshy.ai/openapi/v1/image-to-3d"

// StatusSucceeded is the terminal success state of a task.
const StatusSucceeded = "SUCCEEDED"

// Model names recognized by the API.
const (
	AIModelLatest = "latest"
	AIModelMeshy5 = "meshy-5"
)

// Client creates image-to-3D tasks and retrieves their results.
// Callers never see HTTP details through this interface.
type Client interface {
	// CreateTask submits an image and returns the remote task id.
	// imageSource is either a public URL or a data: URI.
	CreateTask(ctx context.Context, imageSource string, opts TaskOptions) (string, error)

	// TaskStatus fetches the live state of a task.
	TaskStatus(ctx context.Context, taskID string) (*TaskStatus, error)

	// FetchModel downloads the GLB model of a completed task.
	FetchModel(ctx context.Context, taskID string) ([]byte, error)
}

// TaskOptions mirror the generation flags of the create endpoint.
type TaskOptions struct {
	EnablePBR     bool
	ShouldRemesh  bool
	ShouldTexture bool
	AIModel       string
}

// DefaultTaskOptions returns the options used when a request does not
// override them: every toggle on, latest model.
func DefaultTaskOptions() TaskOptions {
	return TaskOptions{
		EnablePBR:     true,
		ShouldRemesh:  true,
		ShouldTexture: true,
		AIModel:       AIModelLatest,
	}
}

// NormalizeAIModel constrains a model name to the recognized set.
// Unknown names silently fall back to AIModelLatest, never an error.
func NormalizeAIModel(name string) string {
	switch name {
	case AIModelLatest, AIModelMeshy5:
		return name
	default:
		return AIModelLatest
	}
}

// TaskStatus is the live state of a remote task.
type TaskStatus struct {
	Status    string            `json:"status"`
	Progress  int               `json:"progress"`
	Message   string            `json:"message"`
	ModelURLs map[string]string `json:"model_urls"`
}

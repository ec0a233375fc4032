package meshy

import "context"

// Fake is an in-memory Client for handler tests. It records every
// call and serves canned responses.
type Fake struct {
	// Recorded calls, in order.
	CreatedSources []string
	CreatedOpts    []TaskOptions
	StatusCalls    []string
	FetchCalls     []string

	// Canned responses.
	NextTaskID string
	Statuses   map[string]*TaskStatus
	Models     map[string][]byte

	// Injected failures, returned as-is when set.
	CreateErr error
	StatusErr error
	FetchErr  error
}

var _ Client = (*Fake)(nil)

// NewFake returns a Fake with empty state and a fixed next task id.
func NewFake() *Fake {
	return &Fake{
		NextTaskID: "task-0001",
		Statuses:   map[string]*TaskStatus{},
		Models:     map[string][]byte{},
	}
}

func (f *Fake) CreateTask(_ context.Context, imageSource string, opts TaskOptions) (string, error) {
	f.CreatedSources = append(f.CreatedSources, imageSource)
	f.CreatedOpts = append(f.CreatedOpts, opts)
	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	return f.NextTaskID, nil
}

func (f *Fake) TaskStatus(_ context.Context, taskID string) (*TaskStatus, error) {
	f.StatusCalls = append(f.StatusCalls, taskID)
	if f.StatusErr != nil {
		return nil, f.StatusErr
	}
	status, ok := f.Statuses[taskID]
	if !ok {
		return nil, &UpstreamError{Op: "status", StatusCode: 404, Body: []byte(`{"message":"task not found"}`)}
	}
	return status, nil
}

// FetchModel gates on live status exactly like the HTTP client.
func (f *Fake) FetchModel(ctx context.Context, taskID string) ([]byte, error) {
	f.FetchCalls = append(f.FetchCalls, taskID)
	if f.FetchErr != nil {
		return nil, f.FetchErr
	}
	status, err := f.TaskStatus(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if status.Status != StatusSucceeded {
		return nil, &NotReadyError{Status: status.Status}
	}
	if status.ModelURLs["glb"] == "" {
		return nil, &ProtocolError{Op: "download", Detail: "no glb url in model_urls"}
	}
	return f.Models[taskID], nil
}

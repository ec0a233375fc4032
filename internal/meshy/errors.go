package meshy

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned before any network I/O when the client
// has no API key configured.
var ErrMissingAPIKey = errors.New("meshy: MESHY_API_KEY is not set")

// UpstreamError is a non-2xx response from the Meshy API. The status
// code and body are relayed verbatim to the proxy's own caller.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("meshy: %s returned status %d", e.Op, e.StatusCode)
}

// ProtocolError is a 2xx response whose body does not carry what the
// operation needs: a create response without a task id, or a completed
// task without a GLB URL.
type ProtocolError struct {
	Op     string
	Detail string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("meshy: %s: %s", e.Op, e.Detail)
}

// NotReadyError is returned by FetchModel while the task has not
// reached StatusSucceeded.
type NotReadyError struct {
	Status string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("meshy: task not completed, status %s", e.Status)
}

// Package completion provides the text-completion collaborator used for
// AI task-plan generation.
package completion

import (
	"context"
	"fmt"
)

// Request describes a single completion call.
type Request struct {
	System      string  // system prompt
	User        string  // user prompt
	Model       string  // model identifier
	Temperature float64
	MaxTokens   int
}

// Client issues completion requests. Implementations make exactly one
// network call per Complete invocation; retry policy lives with the caller.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// APIError is a non-2xx response from the completion endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("completion: API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("completion: API error: status %d: %s", e.StatusCode, e.Message)
}

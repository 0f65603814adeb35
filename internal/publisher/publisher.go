// Package publisher defines the outbound event interface used to announce
// finished jobs to downstream consumers.
package publisher

import "context"

// Publisher delivers a payload to a named topic and returns the broker's
// message id.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Completion is the payload published when a job reaches a terminal state.
type Completion struct {
	JobID      string `json:"job_id"`
	Status     string `json:"status"`
	FilesCount int    `json:"files_count"`
	Error      string `json:"error,omitempty"`
}

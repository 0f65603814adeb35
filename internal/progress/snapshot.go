// Package progress models per-job progress as a stream of immutable
// snapshots, decoupling the worker's cadence from each observer's.
package progress

import "time"

// Status is the lifecycle state carried by every snapshot.
type Status string

// Job lifecycle states.
const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusError    Status = "error"
)

// Terminal reports whether the status ends the job's snapshot sequence.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// Snapshot is a full picture of a job's progress at one instant. Consumers
// can render any snapshot without reference to earlier ones.
type Snapshot struct {
	JobID           string    `json:"job_id"`
	TotalTopics     int       `json:"total_topics"`
	CompletedTopics int       `json:"completed_topics"`
	CurrentTopic    string    `json:"current_topic,omitempty"`
	CurrentSource   string    `json:"current_source,omitempty"`
	Status          Status    `json:"status"`
	ProgressPercent int       `json:"progress_percent"`
	FilesCount      int       `json:"files_count"`
	Error           string    `json:"error,omitempty"`
	Heartbeat       bool      `json:"heartbeat,omitempty"`
	TS              time.Time `json:"ts"`
}

// percent computes the display percentage. It reports 0 for an empty job
// and caps at 99 until a terminal status confirms completion.
func percent(completed, total int, status Status) int {
	if total <= 0 {
		return 0
	}
	p := completed * 100 / total
	if p >= 100 && status != StatusComplete {
		return 99
	}
	if p > 100 {
		return 100
	}
	return p
}

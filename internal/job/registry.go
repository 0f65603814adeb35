// Package job tracks in-flight and finished scrape jobs for the process.
package job

import (
	"context"
	"sync"

	"github.com/ProgrammingPerson/wikipedizer-9000/internal/progress"
)

// Job is one registry entry. Its worker goroutine is the only writer of
// the mutable fields; everything exposed to observers flows through the
// Stream's snapshots.
type Job struct {
	ID        string
	OutputDir string
	Stream    *progress.Stream
	cancel    context.CancelFunc
}

// Cancel stops the job's worker context. Safe to call more than once.
func (j *Job) Cancel() {
	if j.cancel != nil {
		j.cancel()
	}
}

// Registry is the process-wide job table. It guards cross-job access; each
// entry's state is still owned by its own worker.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*Job)}
}

// Create registers a job and returns it together with the context its
// worker should run under.
func (r *Registry) Create(ctx context.Context, id, outputDir string, stream *progress.Stream) (*Job, context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	j := &Job{
		ID:        id,
		OutputDir: outputDir,
		Stream:    stream,
		cancel:    cancel,
	}
	r.mu.Lock()
	r.jobs[id] = j
	r.mu.Unlock()
	return j, workerCtx
}

// Get looks up a job by id.
func (r *Registry) Get(id string) (*Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	return j, ok
}

// Remove cancels the job's worker and drops the entry. It reports whether
// the job existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	j, ok := r.jobs[id]
	delete(r.jobs, id)
	r.mu.Unlock()
	if ok {
		j.Cancel()
	}
	return ok
}

// Len reports the number of registered jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

package progress

import (
	"sync"

	"github.com/ProgrammingPerson/wikipedizer-9000/internal/scrape"
)

// Tracker owns one job's mutable progress state. The worker goroutine is
// its only writer; every mutation pushes a complete snapshot onto the
// job's stream.
type Tracker struct {
	mu     sync.Mutex
	stream *Stream
	clock  scrape.Clock

	jobID     string
	total     int
	completed int
	topic     string
	source    string
	status    Status
	files     int
	errMsg    string
}

// NewTracker seeds a pending tracker and pushes the initial snapshot.
func NewTracker(jobID string, totalTopics int, stream *Stream, clock scrape.Clock) *Tracker {
	if clock == nil {
		clock = scrape.SystemClock{}
	}
	t := &Tracker{
		stream: stream,
		clock:  clock,
		jobID:  jobID,
		total:  totalTopics,
		status: StatusPending,
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emit()
	return t
}

// Start marks the job running.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = StatusRunning
	t.emit()
}

// Visiting records the (topic, source) pair currently being worked.
func (t *Tracker) Visiting(topic, source string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.topic = topic
	t.source = source
	t.emit()
}

// TopicDone increments the completed-topic counter.
func (t *Tracker) TopicDone() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.completed++
	t.source = ""
	t.emit()
}

// FileSaved increments the produced-artifact counter.
func (t *Tracker) FileSaved() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.files++
	t.emit()
}

// Complete marks the job finished and pushes the terminal snapshot.
func (t *Tracker) Complete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = StatusComplete
	t.topic = ""
	t.source = ""
	t.emit()
}

// Fail marks the job errored with a message and pushes the terminal
// snapshot.
func (t *Tracker) Fail(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = StatusError
	t.errMsg = msg
	t.emit()
}

// Snapshot returns the current state without pushing to the stream.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

func (t *Tracker) emit() {
	if t.stream != nil {
		t.stream.Push(t.snapshot())
	}
}

func (t *Tracker) snapshot() Snapshot {
	return Snapshot{
		JobID:           t.jobID,
		TotalTopics:     t.total,
		CompletedTopics: t.completed,
		CurrentTopic:    t.topic,
		CurrentSource:   t.source,
		Status:          t.status,
		ProgressPercent: percent(t.completed, t.total, t.status),
		FilesCount:      t.files,
		Error:           t.errMsg,
		TS:              t.clock.Now(),
	}
}

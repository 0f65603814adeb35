package scrape

import (
	"context"
	"errors"
	"time"
)

// Adapter-boundary failure classes. Adapters wrap the concrete cause so
// callers can distinguish them with errors.Is, but every one of them means
// the same thing to the pipeline: this source has no document for the topic.
var (
	// ErrNoContent signals that a source holds nothing usable for a topic.
	ErrNoContent = errors.New("source has no content for topic")
	// ErrTransport marks network-level failures (connect, timeout, non-2xx).
	ErrTransport = errors.New("transport failure")
	// ErrParse marks malformed markup that could not be traversed.
	ErrParse = errors.New("markup parse failure")
)

// Source translates one external content site into the normalized Document
// shape. Fetch returns ErrNoContent (possibly wrapping ErrTransport or
// ErrParse) instead of a partially populated Document.
type Source interface {
	Name() string
	Fetch(ctx context.Context, topic string) (Document, error)
}

// Clock returns the current time (swappable for deterministic tests).
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock with time.Now.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

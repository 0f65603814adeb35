package progress

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ProgrammingPerson/wikipedizer-9000/internal/scrape"
)

// ErrDone signals that the terminal snapshot has already been consumed and
// no further snapshots will arrive.
var ErrDone = errors.New("progress stream done")

// Stream is an unbounded per-job snapshot queue. The worker pushes without
// ever blocking; observers pull with Next. A single Stream supports one
// consumer at a time.
type Stream struct {
	mu     sync.Mutex
	queue  []Snapshot
	last   Snapshot
	seeded bool
	done   bool
	notify chan struct{}
	clock  scrape.Clock
}

// NewStream returns an empty stream. A nil clock falls back to system time.
func NewStream(clock scrape.Clock) *Stream {
	if clock == nil {
		clock = scrape.SystemClock{}
	}
	return &Stream{
		notify: make(chan struct{}, 1),
		clock:  clock,
	}
}

// Push enqueues a snapshot. Pushes after a terminal snapshot are ignored.
func (s *Stream) Push(snap Snapshot) {
	s.mu.Lock()
	if s.done || (s.seeded && s.last.Status.Terminal()) {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, snap)
	s.last = snap
	s.seeded = true
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Next returns the next snapshot, blocking until one arrives. If nothing
// arrives within idleTimeout it synthesizes a heartbeat copy of the latest
// snapshot so observers can distinguish "slow" from "gone". After the
// terminal snapshot has been returned, Next reports ErrDone.
func (s *Stream) Next(ctx context.Context, idleTimeout time.Duration) (Snapshot, error) {
	timer := time.NewTimer(idleTimeout)
	defer timer.Stop()

	for {
		s.mu.Lock()
		if len(s.queue) > 0 {
			snap := s.queue[0]
			s.queue = s.queue[1:]
			if snap.Status.Terminal() {
				s.done = true
			}
			s.mu.Unlock()
			return snap, nil
		}
		if s.done {
			s.mu.Unlock()
			return Snapshot{}, ErrDone
		}
		s.mu.Unlock()

		select {
		case <-s.notify:
		case <-timer.C:
			return s.heartbeat(), nil
		case <-ctx.Done():
			return Snapshot{}, ctx.Err()
		}
	}
}

func (s *Stream) heartbeat() Snapshot {
	s.mu.Lock()
	snap := s.last
	s.mu.Unlock()
	snap.Heartbeat = true
	snap.TS = s.clock.Now()
	return snap
}

// Latest returns the most recent snapshot pushed, for status polling.
func (s *Stream) Latest() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.seeded
}

package progress

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func drain(t *testing.T, stream *Stream) []Snapshot {
	t.Helper()

	var snaps []Snapshot
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		snap, err := stream.Next(ctx, time.Minute)
		if err == ErrDone {
			return snaps
		}
		require.NoError(t, err)
		snaps = append(snaps, snap)
	}
}

func TestTrackerEmitsMonotonicPercent(t *testing.T) {
	t.Parallel()

	clock := fixedClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	stream := NewStream(clock)
	tracker := NewTracker("job-1", 2, stream, clock)

	tracker.Start()
	tracker.Visiting("X", "wikipedia")
	tracker.FileSaved()
	tracker.TopicDone()
	tracker.Visiting("Y", "wikipedia")
	tracker.FileSaved()
	tracker.TopicDone()
	tracker.Complete()

	snaps := drain(t, stream)
	require.NotEmpty(t, snaps)

	prev := -1
	for _, snap := range snaps {
		require.GreaterOrEqual(t, snap.ProgressPercent, prev)
		prev = snap.ProgressPercent
		if snap.Status != StatusComplete {
			require.Less(t, snap.ProgressPercent, 100)
		}
	}

	last := snaps[len(snaps)-1]
	require.Equal(t, StatusComplete, last.Status)
	require.Equal(t, 100, last.ProgressPercent)
	require.Equal(t, 2, last.CompletedTopics)
	require.Equal(t, 2, last.FilesCount)
}

func TestTrackerPercentCapBeforeTerminal(t *testing.T) {
	t.Parallel()

	stream := NewStream(nil)
	tracker := NewTracker("job-1", 1, stream, nil)
	tracker.Start()
	tracker.TopicDone()

	// All topics visited but the run has not finished its index yet.
	snap := tracker.Snapshot()
	require.Equal(t, StatusRunning, snap.Status)
	require.Equal(t, 99, snap.ProgressPercent)

	tracker.Complete()
	require.Equal(t, 100, tracker.Snapshot().ProgressPercent)
}

func TestTrackerZeroTopics(t *testing.T) {
	t.Parallel()

	tracker := NewTracker("job-1", 0, NewStream(nil), nil)
	require.Equal(t, 0, tracker.Snapshot().ProgressPercent)
}

func TestTrackerFailSurfacesError(t *testing.T) {
	t.Parallel()

	stream := NewStream(nil)
	tracker := NewTracker("job-1", 3, stream, nil)
	tracker.Start()
	tracker.TopicDone()
	tracker.Fail("fetch blew up")

	snaps := drain(t, stream)
	last := snaps[len(snaps)-1]
	require.Equal(t, StatusError, last.Status)
	require.Equal(t, "fetch blew up", last.Error)
	require.Less(t, last.ProgressPercent, 100)
}

func TestStreamHeartbeatOnIdle(t *testing.T) {
	t.Parallel()

	clock := fixedClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	stream := NewStream(clock)
	stream.Push(Snapshot{JobID: "job-1", Status: StatusRunning, ProgressPercent: 40})

	ctx := context.Background()
	snap, err := stream.Next(ctx, time.Minute)
	require.NoError(t, err)
	require.False(t, snap.Heartbeat)

	hb, err := stream.Next(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, hb.Heartbeat)
	require.Equal(t, "job-1", hb.JobID)
	require.Equal(t, 40, hb.ProgressPercent)
	require.Equal(t, clock.now, hb.TS)
}

func TestStreamDoneAfterTerminalConsumed(t *testing.T) {
	t.Parallel()

	stream := NewStream(nil)
	stream.Push(Snapshot{JobID: "job-1", Status: StatusRunning})
	stream.Push(Snapshot{JobID: "job-1", Status: StatusComplete})
	// Pushes after the terminal snapshot are dropped.
	stream.Push(Snapshot{JobID: "job-1", Status: StatusRunning})

	ctx := context.Background()
	first, err := stream.Next(ctx, time.Minute)
	require.NoError(t, err)
	require.Equal(t, StatusRunning, first.Status)

	second, err := stream.Next(ctx, time.Minute)
	require.NoError(t, err)
	require.Equal(t, StatusComplete, second.Status)

	_, err = stream.Next(ctx, time.Minute)
	require.ErrorIs(t, err, ErrDone)
}

func TestStreamNextHonorsContext(t *testing.T) {
	t.Parallel()

	stream := NewStream(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := stream.Next(ctx, time.Minute)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

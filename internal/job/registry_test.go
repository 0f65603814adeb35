package job

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ProgrammingPerson/wikipedizer-9000/internal/progress"
)

func TestRegistryLifecycle(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.Equal(t, 0, reg.Len())

	stream := progress.NewStream(nil)
	j, workerCtx := reg.Create(context.Background(), "job-1", "/tmp/out", stream)
	require.Equal(t, "job-1", j.ID)
	require.Equal(t, 1, reg.Len())
	require.NoError(t, workerCtx.Err())

	got, ok := reg.Get("job-1")
	require.True(t, ok)
	require.Same(t, j, got)

	_, ok = reg.Get("missing")
	require.False(t, ok)

	require.True(t, reg.Remove("job-1"))
	require.Equal(t, 0, reg.Len())
	require.ErrorIs(t, workerCtx.Err(), context.Canceled)

	require.False(t, reg.Remove("job-1"))
}

func TestJobCancelIsIdempotent(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	j, workerCtx := reg.Create(context.Background(), "job-1", "", nil)
	j.Cancel()
	j.Cancel()
	require.ErrorIs(t, workerCtx.Err(), context.Canceled)
}

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ProgrammingPerson/wikipedizer-9000/internal/cache"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/catalog"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/job"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/progress"
	pubmemory "github.com/ProgrammingPerson/wikipedizer-9000/internal/publisher/memory"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/scrape"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/source"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/storage/memory"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// stubSource serves canned documents per topic and records fetch calls.
type stubSource struct {
	name string

	mu    sync.Mutex
	docs  map[string]scrape.Document
	errs  map[string]error
	calls []string
	block chan struct{}
}

func newStubSource(name string) *stubSource {
	return &stubSource{
		name: name,
		docs: make(map[string]scrape.Document),
		errs: make(map[string]error),
	}
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) serve(topic string) {
	s.docs[topic] = scrape.Document{
		Title:  topic,
		Source: s.name,
		URL:    "https://example.test/" + s.name + "/" + topic,
		Sections: []scrape.Section{
			{Heading: "Overview", Paragraphs: []string{"Content about " + topic + " from " + s.name + "."}},
		},
	}
}

func (s *stubSource) Fetch(ctx context.Context, topic string) (scrape.Document, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return scrape.Document{}, fmt.Errorf("%w: %v", scrape.ErrTransport, ctx.Err())
		}
	}
	s.mu.Lock()
	s.calls = append(s.calls, topic)
	doc, okDoc := s.docs[topic]
	err := s.errs[topic]
	s.mu.Unlock()

	if err != nil {
		return scrape.Document{}, err
	}
	if !okDoc {
		return scrape.Document{}, fmt.Errorf("%w: %s has no page for %q", scrape.ErrNoContent, s.name, topic)
	}
	return doc, nil
}

func (s *stubSource) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type env struct {
	registry *job.Registry
	cache    *cache.FS
	blobs    *memory.BlobStore
	pub      *pubmemory.Publisher
	orch     *Orchestrator
	clock    fixedClock
}

func newEnv(t *testing.T, sources source.Registry, cfg Config) *env {
	t.Helper()

	clock := fixedClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	store, err := cache.NewFS(t.TempDir(), 0, clock, nil)
	require.NoError(t, err)

	e := &env{
		registry: job.NewRegistry(),
		cache:    store,
		blobs:    memory.New(),
		pub:      pubmemory.New(),
		clock:    clock,
	}
	if cfg.OutputBaseDir == "" {
		cfg.OutputBaseDir = t.TempDir()
	}
	e.orch = New(e.registry, sources, store, e.blobs, e.pub, clock, cfg, nil)
	return e
}

func registryOf(sources ...scrape.Source) source.Registry {
	reg := make(source.Registry, len(sources))
	for _, s := range sources {
		reg[s.Name()] = s
	}
	return reg
}

// waitTerminal drains the job's stream until a terminal snapshot and
// returns every snapshot seen.
func waitTerminal(t *testing.T, reg *job.Registry, id string) []progress.Snapshot {
	t.Helper()

	j, ok := reg.Get(id)
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var snaps []progress.Snapshot
	for {
		snap, err := j.Stream.Next(ctx, time.Minute)
		if errors.Is(err, progress.ErrDone) {
			return snaps
		}
		require.NoError(t, err)
		snaps = append(snaps, snap)
		if snap.Status.Terminal() {
			// Keep reading until ErrDone confirms the stream closed.
			_, err := j.Stream.Next(ctx, time.Minute)
			require.ErrorIs(t, err, progress.ErrDone)
			return snaps
		}
	}
}

func basicsCatalog() catalog.Catalog {
	return catalog.Catalog{{
		Name:   "basics",
		Topics: []string{"X", "Y"},
	}}
}

func TestRunPartialSourceFailure(t *testing.T) {
	t.Parallel()

	wiki := newStubSource("wikipedia")
	wiki.serve("X")
	wiki.serve("Y")
	nasa := newStubSource("nasa")
	nasa.errs["X"] = fmt.Errorf("%w: boom", scrape.ErrTransport)
	nasa.serve("Y")

	e := newEnv(t, registryOf(wiki, nasa), Config{PublishTopic: "jobs.completed"})

	id, err := e.orch.Submit(context.Background(), basicsCatalog(), []string{"wikipedia", "nasa"})
	require.NoError(t, err)

	snaps := waitTerminal(t, e.registry, id)
	last := snaps[len(snaps)-1]
	require.Equal(t, progress.StatusComplete, last.Status)
	require.Equal(t, 2, last.CompletedTopics)
	require.Equal(t, 100, last.ProgressPercent)
	require.Equal(t, 2, last.FilesCount)

	// X carries only wikipedia, Y carries both.
	xData, ok := e.blobs.Get(id + "/basics/X.txt")
	require.True(t, ok)
	require.Contains(t, string(xData), "Source: WIKIPEDIA")
	require.NotContains(t, string(xData), "Source: NASA")

	yData, ok := e.blobs.Get(id + "/basics/Y.txt")
	require.True(t, ok)
	require.Contains(t, string(yData), "Source: WIKIPEDIA")
	require.Contains(t, string(yData), "Source: NASA")

	_, ok = e.blobs.Get(id + "/INDEX.txt")
	require.True(t, ok)
	manifest, ok := e.blobs.Get(id + "/index.json")
	require.True(t, ok)
	require.Contains(t, string(manifest), `"total_files": 2`)

	msgs := e.pub.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "jobs.completed", msgs[0].Topic)
}

func TestSubmitRejectsEmptyCatalog(t *testing.T) {
	t.Parallel()

	e := newEnv(t, registryOf(newStubSource("wikipedia")), Config{})

	_, err := e.orch.Submit(context.Background(), catalog.Catalog{}, []string{"wikipedia"})
	require.ErrorIs(t, err, ErrEmptyCategories)
	require.Equal(t, 0, e.registry.Len())

	_, err = e.orch.Submit(context.Background(), catalog.Catalog{{Name: "empty"}}, []string{"wikipedia"})
	require.ErrorIs(t, err, ErrEmptyCategories)
	require.Equal(t, 0, e.registry.Len())
}

func TestSubmitRejectsUnknownSources(t *testing.T) {
	t.Parallel()

	e := newEnv(t, registryOf(newStubSource("wikipedia")), Config{})

	_, err := e.orch.Submit(context.Background(), basicsCatalog(), []string{"mystery"})
	require.ErrorIs(t, err, ErrNoSources)
	require.Equal(t, 0, e.registry.Len())
}

func TestRunOmitsAbsentSourceWithoutAborting(t *testing.T) {
	t.Parallel()

	wiki := newStubSource("wikipedia")
	wiki.serve("X")
	// nasa has no page for X at all.
	nasa := newStubSource("nasa")

	e := newEnv(t, registryOf(wiki, nasa), Config{})

	id, err := e.orch.Submit(context.Background(), catalog.Catalog{{Name: "basics", Topics: []string{"X"}}}, []string{"wikipedia", "nasa"})
	require.NoError(t, err)

	snaps := waitTerminal(t, e.registry, id)
	last := snaps[len(snaps)-1]
	require.Equal(t, progress.StatusComplete, last.Status)
	require.Equal(t, 1, last.FilesCount)

	data, ok := e.blobs.Get(id + "/basics/X.txt")
	require.True(t, ok)
	require.NotContains(t, string(data), "NASA")
}

func TestRunSkipsArtifactWhenAllSourcesEmpty(t *testing.T) {
	t.Parallel()

	e := newEnv(t, registryOf(newStubSource("wikipedia")), Config{})

	id, err := e.orch.Submit(context.Background(), catalog.Catalog{{Name: "basics", Topics: []string{"X"}}}, []string{"wikipedia"})
	require.NoError(t, err)

	snaps := waitTerminal(t, e.registry, id)
	last := snaps[len(snaps)-1]
	require.Equal(t, progress.StatusComplete, last.Status)
	require.Equal(t, 0, last.FilesCount)
	require.Equal(t, 1, last.CompletedTopics)

	_, ok := e.blobs.Get(id + "/basics/X.txt")
	require.False(t, ok)
	// The index is still written for an empty run.
	_, ok = e.blobs.Get(id + "/INDEX.txt")
	require.True(t, ok)
}

func TestRerunWithWarmCacheSkipsFetches(t *testing.T) {
	t.Parallel()

	wiki := newStubSource("wikipedia")
	wiki.serve("X")
	wiki.serve("Y")

	e := newEnv(t, registryOf(wiki), Config{})
	cat := basicsCatalog()

	first, err := e.orch.Submit(context.Background(), cat, []string{"wikipedia"})
	require.NoError(t, err)
	waitTerminal(t, e.registry, first)
	require.Equal(t, 2, wiki.fetchCount())

	second, err := e.orch.Submit(context.Background(), cat, []string{"wikipedia"})
	require.NoError(t, err)
	waitTerminal(t, e.registry, second)

	// Warm cache: no additional network fetches.
	require.Equal(t, 2, wiki.fetchCount())

	firstData, ok := e.blobs.Get(first + "/basics/X.txt")
	require.True(t, ok)
	secondData, ok := e.blobs.Get(second + "/basics/X.txt")
	require.True(t, ok)
	require.Equal(t, firstData, secondData)
}

func TestRunProgressIsMonotonic(t *testing.T) {
	t.Parallel()

	wiki := newStubSource("wikipedia")
	wiki.serve("X")
	wiki.serve("Y")

	e := newEnv(t, registryOf(wiki), Config{})

	id, err := e.orch.Submit(context.Background(), basicsCatalog(), []string{"wikipedia"})
	require.NoError(t, err)

	snaps := waitTerminal(t, e.registry, id)
	prevPercent, prevCompleted := -1, -1
	for _, snap := range snaps {
		require.GreaterOrEqual(t, snap.ProgressPercent, prevPercent)
		require.GreaterOrEqual(t, snap.CompletedTopics, prevCompleted)
		require.LessOrEqual(t, snap.CompletedTopics, snap.TotalTopics)
		if snap.Status != progress.StatusComplete {
			require.Less(t, snap.ProgressPercent, 100)
		}
		prevPercent = snap.ProgressPercent
		prevCompleted = snap.CompletedTopics
	}
}

func TestRemoveCancelsRunningJob(t *testing.T) {
	t.Parallel()

	wiki := newStubSource("wikipedia")
	wiki.serve("X")
	wiki.serve("Y")
	wiki.block = make(chan struct{})

	e := newEnv(t, registryOf(wiki), Config{})

	id, err := e.orch.Submit(context.Background(), basicsCatalog(), []string{"wikipedia"})
	require.NoError(t, err)

	j, ok := e.registry.Get(id)
	require.True(t, ok)
	stream := j.Stream

	require.True(t, e.registry.Remove(id))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		snap, err := stream.Next(ctx, time.Minute)
		require.NoError(t, err)
		if snap.Status.Terminal() {
			require.Equal(t, progress.StatusError, snap.Status)
			require.NotEmpty(t, snap.Error)
			break
		}
	}
	require.Equal(t, 0, e.registry.Len())
}

// Package orchestrator drives the aggregation pipeline: it walks the
// submitted catalog in order, resolves each (topic, source) pair through
// the cache or a live fetch, and renders artifacts plus the run index.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ProgrammingPerson/wikipedizer-9000/internal/cache"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/catalog"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/job"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/metrics"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/output"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/progress"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/publisher"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/scrape"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/source"
	"github.com/ProgrammingPerson/wikipedizer-9000/internal/storage"
)

// Submission errors reported synchronously, before a job is created.
var (
	ErrEmptyCategories = errors.New("no categories with topics submitted")
	ErrNoSources       = errors.New("no known sources selected")
)

// Config controls per-job pacing and output placement.
type Config struct {
	// OutputBaseDir is the root under which each job gets its own directory.
	OutputBaseDir string
	// RequestDelay spaces out live fetches. Cache hits don't pay it.
	RequestDelay time.Duration
	// FetchTimeout bounds a single adapter fetch. Zero means no bound
	// beyond the job context.
	FetchTimeout time.Duration
	// PublishTopic, when set, receives a completion payload per job.
	PublishTopic string
}

// Orchestrator owns job submission and the worker goroutines it spawns.
type Orchestrator struct {
	registry *job.Registry
	sources  source.Registry
	cache    cache.Store
	blobs    storage.BlobStore
	pub      publisher.Publisher
	clock    scrape.Clock
	cfg      Config
	logger   *zap.Logger
	flight   singleflight.Group
}

// New constructs an Orchestrator. The publisher may be nil when no
// completion topic is configured.
func New(
	registry *job.Registry,
	sources source.Registry,
	store cache.Store,
	blobs storage.BlobStore,
	pub publisher.Publisher,
	clock scrape.Clock,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	if clock == nil {
		clock = scrape.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		registry: registry,
		sources:  sources,
		cache:    store,
		blobs:    blobs,
		pub:      pub,
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
	}
}

// Submit validates the request, registers a pending job, and starts its
// worker. It returns the job id immediately; progress flows through the
// job's stream.
func (o *Orchestrator) Submit(ctx context.Context, cat catalog.Catalog, sourceNames []string) (string, error) {
	if len(cat) == 0 || cat.TotalTopics() == 0 {
		return "", ErrEmptyCategories
	}
	if err := cat.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrEmptyCategories, err)
	}
	selected := o.sources.Select(sourceNames)
	if len(selected) == 0 {
		return "", ErrNoSources
	}

	id := uuid.NewString()
	stream := progress.NewStream(o.clock)
	tracker := progress.NewTracker(id, cat.TotalTopics(), stream, o.clock)

	outputDir := filepath.Join(o.cfg.OutputBaseDir, id)
	j, workerCtx := o.registry.Create(context.WithoutCancel(ctx), id, outputDir, stream)

	metrics.ObserveJobStarted()
	o.logger.Info("job submitted",
		zap.String("job_id", id),
		zap.Int("categories", len(cat)),
		zap.Int("topics", cat.TotalTopics()),
		zap.Int("sources", len(selected)),
	)

	go o.run(workerCtx, j, tracker, cat, selected)
	return id, nil
}

func (o *Orchestrator) run(ctx context.Context, j *job.Job, tracker *progress.Tracker, cat catalog.Catalog, sources []scrape.Source) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("job worker panicked",
				zap.String("job_id", j.ID),
				zap.Any("panic", r),
			)
			tracker.Fail(fmt.Sprintf("internal error: %v", r))
			metrics.ObserveJobFinished("error")
		}
	}()

	tracker.Start()
	summary := output.RunSummary{StartedAt: o.clock.Now()}

	for _, category := range cat {
		catSummary := output.CategorySummary{
			Name:        category.Name,
			Description: category.Description,
			Topics:      category.Topics,
		}
		for _, topic := range category.Topics {
			if err := ctx.Err(); err != nil {
				o.finishCanceled(j.ID, tracker, err)
				return
			}
			result := o.collectTopic(ctx, topic, sources, tracker)
			if ctx.Err() != nil {
				o.finishCanceled(j.ID, tracker, ctx.Err())
				return
			}
			if result.HasContent() {
				if rel, ok := o.saveArtifact(ctx, j.ID, category.Name, result); ok {
					catSummary.Files = append(catSummary.Files, rel)
					tracker.FileSaved()
					metrics.ObserveArtifact()
				}
			} else {
				o.logger.Info("no content found",
					zap.String("job_id", j.ID),
					zap.String("topic", topic),
				)
			}
			tracker.TopicDone()
		}
		summary.Categories = append(summary.Categories, catSummary)
	}

	summary.CompletedAt = o.clock.Now()
	o.writeIndex(ctx, j.ID, summary)
	o.publishCompletion(ctx, j.ID, progress.StatusComplete, summary.TotalFiles(), "")

	tracker.Complete()
	metrics.ObserveJobFinished("complete")
	o.logger.Info("job complete",
		zap.String("job_id", j.ID),
		zap.Int("files", summary.TotalFiles()),
	)
}

// collectTopic resolves one topic against every selected source in order.
// Failures are isolated: a source that errors simply contributes nothing.
func (o *Orchestrator) collectTopic(ctx context.Context, topic string, sources []scrape.Source, tracker *progress.Tracker) scrape.TopicResult {
	result := scrape.TopicResult{Topic: topic}
	for _, src := range sources {
		if ctx.Err() != nil {
			return result
		}
		tracker.Visiting(topic, src.Name())

		doc, err := o.lookup(ctx, topic, src)
		if err != nil {
			if errors.Is(err, scrape.ErrNoContent) {
				o.logger.Debug("source absent",
					zap.String("topic", topic),
					zap.String("source", src.Name()),
					zap.Error(err),
				)
			} else if ctx.Err() == nil {
				o.logger.Warn("source fetch failed",
					zap.String("topic", topic),
					zap.String("source", src.Name()),
					zap.Error(err),
				)
			}
			continue
		}
		result.Add(src.Name(), doc)
	}
	return result
}

// lookup consults the cache first; misses go through singleflight so
// concurrent jobs fetching the same pair share one network request.
func (o *Orchestrator) lookup(ctx context.Context, topic string, src scrape.Source) (scrape.Document, error) {
	name := src.Name()
	if doc, err := o.cache.Get(ctx, topic, name); err == nil {
		metrics.ObserveCacheOp("hit")
		return doc, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		o.logger.Warn("cache lookup failed",
			zap.String("topic", topic),
			zap.String("source", name),
			zap.Error(err),
		)
	}
	metrics.ObserveCacheOp("miss")

	v, err, _ := o.flight.Do(cache.Fingerprint(topic, name), func() (any, error) {
		doc, err := o.fetch(ctx, topic, src)
		if err != nil {
			return nil, err
		}
		if putErr := o.cache.Put(ctx, topic, name, doc); putErr != nil {
			o.logger.Warn("cache write failed",
				zap.String("topic", topic),
				zap.String("source", name),
				zap.Error(putErr),
			)
		}
		o.pause(ctx)
		return doc, nil
	})
	if err != nil {
		return scrape.Document{}, err
	}
	return v.(scrape.Document), nil
}

func (o *Orchestrator) fetch(ctx context.Context, topic string, src scrape.Source) (scrape.Document, error) {
	fctx := ctx
	if o.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, o.cfg.FetchTimeout)
		defer cancel()
	}
	start := time.Now()
	doc, err := src.Fetch(fctx, topic)
	if err != nil {
		metrics.ObserveFetch(src.Name(), "error", time.Since(start))
		return scrape.Document{}, err
	}
	metrics.ObserveFetch(src.Name(), "ok", time.Since(start))
	return doc, nil
}

// pause applies the inter-request delay, returning early on cancellation.
func (o *Orchestrator) pause(ctx context.Context) {
	if o.cfg.RequestDelay <= 0 {
		return
	}
	select {
	case <-time.After(o.cfg.RequestDelay):
	case <-ctx.Done():
	}
}

// saveArtifact renders and stores one topic file. Write failures are
// logged and skipped so the rest of the run proceeds.
func (o *Orchestrator) saveArtifact(ctx context.Context, jobID, category string, result scrape.TopicResult) (string, bool) {
	text := output.Artifact(result, category, o.clock.Now())
	rel := path.Join(output.CategoryDirName(category), output.SafeFileName(result.Topic)+".txt")
	blobPath := path.Join(jobID, rel)

	uri, err := o.blobs.Put(ctx, blobPath, "text/plain; charset=utf-8", []byte(text))
	if err != nil {
		o.logger.Warn("artifact write failed",
			zap.String("job_id", jobID),
			zap.String("topic", result.Topic),
			zap.Error(err),
		)
		return "", false
	}
	o.logger.Debug("artifact saved",
		zap.String("job_id", jobID),
		zap.String("topic", result.Topic),
		zap.String("uri", uri),
	)
	return rel, true
}

func (o *Orchestrator) writeIndex(ctx context.Context, jobID string, summary output.RunSummary) {
	now := o.clock.Now()
	if _, err := o.blobs.Put(ctx, path.Join(jobID, "INDEX.txt"), "text/plain; charset=utf-8", []byte(output.Index(summary, now))); err != nil {
		o.logger.Warn("index write failed", zap.String("job_id", jobID), zap.Error(err))
	}
	manifest, err := output.Manifest(summary)
	if err != nil {
		o.logger.Warn("manifest render failed", zap.String("job_id", jobID), zap.Error(err))
		return
	}
	if _, err := o.blobs.Put(ctx, path.Join(jobID, "index.json"), "application/json", manifest); err != nil {
		o.logger.Warn("manifest write failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (o *Orchestrator) publishCompletion(ctx context.Context, jobID string, status progress.Status, files int, errMsg string) {
	if o.pub == nil || o.cfg.PublishTopic == "" {
		return
	}
	payload := publisher.Completion{
		JobID:      jobID,
		Status:     string(status),
		FilesCount: files,
		Error:      errMsg,
	}
	if _, err := o.pub.Publish(ctx, o.cfg.PublishTopic, payload); err != nil {
		o.logger.Warn("completion publish failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (o *Orchestrator) finishCanceled(jobID string, tracker *progress.Tracker, cause error) {
	msg := "job canceled"
	if cause != nil && !errors.Is(cause, context.Canceled) {
		msg = fmt.Sprintf("job aborted: %v", cause)
	}
	tracker.Fail(msg)
	metrics.ObserveJobFinished("error")
	o.publishCompletion(context.Background(), jobID, progress.StatusError, 0, msg)
	o.logger.Info("job canceled", zap.String("job_id", jobID))
}

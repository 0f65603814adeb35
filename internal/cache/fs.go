package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ProgrammingPerson/wikipedizer-9000/internal/scrape"
)

// FS stores one JSON record per fingerprint under a base directory. It is
// durable across process restarts and needs no locking beyond
// write-idempotence.
type FS struct {
	baseDir string
	ttl     time.Duration
	clock   scrape.Clock
	logger  *zap.Logger
}

// NewFS creates the directory if needed and verifies it is writable.
func NewFS(baseDir string, ttl time.Duration, clock scrape.Clock, logger *zap.Logger) (*FS, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	if clock == nil {
		clock = scrape.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	probe := filepath.Join(baseDir, ".writable")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return nil, fmt.Errorf("cache directory is not writable: %w", err)
	}
	if err := os.Remove(probe); err != nil {
		return nil, fmt.Errorf("clean up probe file: %w", err)
	}
	return &FS{baseDir: baseDir, ttl: ttl, clock: clock, logger: logger}, nil
}

// Get loads the record for (topic, source). Unreadable or corrupt records are
// reported as ErrMiss.
func (c *FS) Get(_ context.Context, topic, source string) (scrape.Document, error) {
	path := c.recordPath(topic, source)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return scrape.Document{}, ErrMiss
		}
		c.logger.Warn("cache read failed",
			zap.String("topic", topic),
			zap.String("source", source),
			zap.Error(err),
		)
		return scrape.Document{}, fmt.Errorf("%w: read record: %v", ErrMiss, err)
	}
	var doc scrape.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		c.logger.Warn("cache record corrupt",
			zap.String("topic", topic),
			zap.String("source", source),
			zap.Error(err),
		)
		return scrape.Document{}, fmt.Errorf("%w: decode record: %v", ErrMiss, err)
	}
	if expired(doc.FetchedAt, c.ttl, c.clock.Now()) {
		return scrape.Document{}, ErrMiss
	}
	return doc, nil
}

// Put writes the record, replacing any previous one for the fingerprint.
func (c *FS) Put(_ context.Context, topic, source string, doc scrape.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache record: %w", err)
	}
	if err := os.WriteFile(c.recordPath(topic, source), data, 0o600); err != nil {
		return fmt.Errorf("write cache record: %w", err)
	}
	return nil
}

func (c *FS) recordPath(topic, source string) string {
	return filepath.Join(c.baseDir, Fingerprint(topic, source)+".json")
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ProgrammingPerson/wikipedizer-9000/internal/scrape"
)

const (
	createCacheTableSQL = `
		CREATE TABLE IF NOT EXISTS document_cache (
			fingerprint TEXT PRIMARY KEY,
			topic TEXT NOT NULL,
			source TEXT NOT NULL,
			document JSONB NOT NULL,
			fetched_at TIMESTAMPTZ NOT NULL
		)`

	selectCacheSQL = `
		SELECT document, fetched_at FROM document_cache
		WHERE fingerprint = $1`

	upsertCacheSQL = `
		INSERT INTO document_cache (fingerprint, topic, source, document, fetched_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (fingerprint) DO UPDATE SET
			document = EXCLUDED.document,
			fetched_at = EXCLUDED.fetched_at`
)

// pgQuerier is the slice of the pgx API the store needs, so tests can swap
// in pgxmock.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres keeps records in a single table keyed by fingerprint. Documents
// are stored as JSONB so the schema survives document shape changes.
type Postgres struct {
	db     pgQuerier
	ttl    time.Duration
	clock  scrape.Clock
	logger *zap.Logger
}

// NewPostgres connects a pool and ensures the cache table exists.
func NewPostgres(ctx context.Context, dsn string, ttl time.Duration, logger *zap.Logger) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	store, err := newPostgres(ctx, pool, ttl, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func newPostgres(ctx context.Context, db pgQuerier, ttl time.Duration, logger *zap.Logger) (*Postgres, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := db.Exec(ctx, createCacheTableSQL); err != nil {
		return nil, fmt.Errorf("create cache table: %w", err)
	}
	return &Postgres{db: db, ttl: ttl, clock: scrape.SystemClock{}, logger: logger}, nil
}

// Get loads the record or reports ErrMiss. Corrupt rows and read failures
// degrade to a miss so a broken cache never fails a run.
func (s *Postgres) Get(ctx context.Context, topic, source string) (scrape.Document, error) {
	var (
		payload   []byte
		fetchedAt time.Time
	)
	row := s.db.QueryRow(ctx, selectCacheSQL, Fingerprint(topic, source))
	if err := row.Scan(&payload, &fetchedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return scrape.Document{}, ErrMiss
		}
		s.logger.Warn("postgres cache read failed", zap.String("topic", topic), zap.Error(err))
		return scrape.Document{}, fmt.Errorf("%w: %v", ErrMiss, err)
	}
	if expired(fetchedAt, s.ttl, s.clock.Now()) {
		return scrape.Document{}, ErrMiss
	}
	var doc scrape.Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		s.logger.Warn("postgres cache record corrupt", zap.String("topic", topic), zap.Error(err))
		return scrape.Document{}, fmt.Errorf("%w: decode record: %v", ErrMiss, err)
	}
	return doc, nil
}

// Put upserts the record under its fingerprint.
func (s *Postgres) Put(ctx context.Context, topic, source string, doc scrape.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode cache record: %w", err)
	}
	_, err = s.db.Exec(ctx, upsertCacheSQL,
		Fingerprint(topic, source), topic, source, payload, doc.FetchedAt)
	if err != nil {
		return fmt.Errorf("write cache record: %w", err)
	}
	return nil
}

// Close releases the pool when the store owns one.
func (s *Postgres) Close() {
	if pool, ok := s.db.(*pgxpool.Pool); ok {
		pool.Close()
	}
}

// Package cache persists fetched documents keyed by a (topic, source)
// fingerprint so repeat runs avoid redundant network access.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/ProgrammingPerson/wikipedizer-9000/internal/scrape"
)

// ErrMiss signals that no usable record exists for a fingerprint. Corrupt or
// expired records degrade to it; a miss is never fatal.
var ErrMiss = errors.New("cache miss")

// Store is the durable (topic, source) → Document mapping. Writes for the
// same fingerprint are idempotent in effect: a second writer stores
// semantically equivalent content.
type Store interface {
	Get(ctx context.Context, topic, source string) (scrape.Document, error)
	Put(ctx context.Context, topic, source string, doc scrape.Document) error
}

// Fingerprint derives the cache key for a (topic, source) pair. It is a pure
// function: equal inputs always produce the same hex digest.
func Fingerprint(topic, source string) string {
	h := sha256.New()
	h.Write([]byte(topic))
	h.Write([]byte{0})
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

// expired reports whether a record written at fetchedAt has outlived ttl.
// A ttl of zero means records persist until external deletion.
func expired(fetchedAt time.Time, ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(fetchedAt) > ttl
}

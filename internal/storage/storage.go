// Package storage defines the blob store abstraction used for artifacts,
// keeping the pipeline independent of where files end up (local disk,
// Google Cloud Storage, or memory in tests).
package storage

import "context"

// BlobStore persists one artifact per call and returns a URI locating it.
type BlobStore interface {
	Put(ctx context.Context, path, contentType string, data []byte) (string, error)
}

package script

import (
	"context"
	"errors"
)

// ErrNotFound is returned by store lookups for keys or ids with no entry.
var ErrNotFound = errors.New("script: not found")

// BlobStore is the key-addressed byte store the committer writes scripts to.
// Delete is best-effort compensation; its failure must not mask the error
// that triggered it.
type BlobStore interface {
	Put(ctx context.Context, key string, content []byte) error
	Delete(ctx context.Context, key string) error
}

// RecordStore persists script metadata. Insert returns the materialized
// record with the store-assigned id and timestamp.
type RecordStore interface {
	Insert(ctx context.Context, meta Metadata) (*Record, error)
}

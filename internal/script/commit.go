package script

import (
	"context"
	"errors"
	"fmt"
	"log"
)

var (
	// ErrBlobWrite marks a failed blob write. Nothing was persisted; the
	// caller may retry with a fresh key.
	ErrBlobWrite = errors.New("script: blob write failed")
	// ErrMetadataWrite marks a failed metadata insert after a successful
	// blob write. Compensation was attempted; the key is burned either way.
	ErrMetadataWrite = errors.New("script: metadata write failed")
	// ErrCompensation marks a failed compensating delete. It is only ever
	// attached to an ErrMetadataWrite, never returned alone.
	ErrCompensation = errors.New("script: compensation failed")
)

// Committer pairs a blob write with a metadata insert across two stores that
// share no transaction. The blob goes first so a metadata row never points at
// a blob that was never written; when the insert fails, the blob just written
// is deleted best-effort. A failed delete leaves at most one orphaned blob
// per call, which an out-of-band sweep can reclaim.
type Committer struct {
	blobs   BlobStore
	records RecordStore
}

func NewCommitter(blobs BlobStore, records RecordStore) *Committer {
	return &Committer{blobs: blobs, records: records}
}

// Commit writes content under key, then inserts meta. It returns either the
// fully materialized record or an error classified by errors.Is against
// ErrBlobWrite or ErrMetadataWrite; no partial record is ever returned.
//
// Commit is not idempotent: a key that was ever written is burned, and a
// second call with it fails the blob write. Callers retry with a fresh key.
func (c *Committer) Commit(ctx context.Context, key string, content []byte, meta Metadata) (*Record, error) {
	if c == nil || c.blobs == nil || c.records == nil {
		return nil, fmt.Errorf("script: committer is not configured")
	}
	if key == "" {
		return nil, fmt.Errorf("%w: storage key is empty", ErrBlobWrite)
	}

	if err := c.blobs.Put(ctx, key, content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBlobWrite, err)
	}

	rec, err := c.records.Insert(ctx, meta)
	if err == nil {
		return rec, nil
	}

	primary := fmt.Errorf("%w: %v", ErrMetadataWrite, err)
	if delErr := c.blobs.Delete(ctx, key); delErr != nil {
		log.Printf("WARN script commit: orphaned blob %q left behind: %v", key, delErr)
		return nil, errors.Join(primary, fmt.Errorf("%w: %v", ErrCompensation, delErr))
	}
	return nil, primary
}

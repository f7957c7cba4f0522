package blob

import (
	"context"
	"errors"
)

// Store defines operations for persisting generated script blobs.
// Put and Delete satisfy the committer's write contract; Get and List serve
// the retrieval endpoints.
type Store interface {
	Put(ctx context.Context, key string, content []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]string, error)
}

var ErrNotFound = errors.New("blob not found")

package record

import (
	"context"

	"podscript/internal/script"
)

// Store persists script metadata rows. Insert returns the materialized
// record with the store-assigned id and creation timestamp.
type Store interface {
	Insert(ctx context.Context, meta script.Metadata) (*script.Record, error)
	Get(ctx context.Context, id int64) (*script.Record, error)
	List(ctx context.Context) ([]script.Record, error)
}

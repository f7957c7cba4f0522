package llmclient

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the model answers with no usable text.
var ErrEmptyResponse = errors.New("llmclient: empty model response")

// Client is the narrow surface the dialogue generator needs: one prompt in,
// one plain-text completion out.
type Client interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Name() string
	Close() error
}

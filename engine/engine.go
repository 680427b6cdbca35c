// Package engine defines the inference-engine boundary: a Loader that
// materializes a model into a Ref, and a Ref that streams chat completions
// chunk by chunk. The Handle type layers lifecycle state and a
// concurrent-load guard on top of a Loader.
package engine

import (
	"context"

	"github.com/tailored-agentic-units/converse/core/protocol"
)

// Params are the sampling parameters for a single generation request.
type Params struct {
	Temperature float64
	MaxTokens   int
}

// Chunk is one incremental unit of generated text. An empty Delta is valid
// and carries no content.
type Chunk struct {
	Delta string
}

// Options carries engine-specific load options, passed through opaquely.
type Options map[string]any

// Ref is a loaded engine instance ready to serve generation requests.
type Ref interface {
	// Model returns the identifier of the loaded model.
	Model() string
	// StreamChat starts a generation over messages and returns a stream of
	// chunks. The producer closes the stream on completion, error, or when
	// ctx is cancelled; chunks arrive in generation order.
	StreamChat(ctx context.Context, messages []protocol.Message, params Params) (*Stream, error)
}

// Loader materializes a model into a usable Ref. Implementations wrap the
// actual inference runtime; the rest of the system depends only on this shape.
type Loader interface {
	Load(ctx context.Context, modelID string, opts Options) (Ref, error)
}

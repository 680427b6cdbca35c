package engine

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/tailored-agentic-units/converse/observability"
)

// State is the lifecycle phase of a Handle.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
	StateFailed        State = "failed"
)

// HandleOption configures a Handle after construction.
type HandleOption func(*Handle)

// WithObserver overrides the default no-op observer.
func WithObserver(o observability.Observer) HandleOption {
	return func(h *Handle) { h.observer = o }
}

// WithLoadOptions sets engine-specific options passed to every Load.
func WithLoadOptions(opts Options) HandleOption {
	return func(h *Handle) { h.opts = opts }
}

// Handle owns a single engine instance and its lifecycle:
// uninitialized → loading → ready/failed. Concurrent EnsureReady calls for
// the same model collapse into one in-flight load; a failed load is
// surfaced to every waiter and not retried until the next explicit call.
type Handle struct {
	loader   Loader
	opts     Options
	observer observability.Observer

	group singleflight.Group

	mu      sync.Mutex
	state   State
	modelID string
	ref     Ref
	loadErr error
}

// NewHandle creates a Handle over the given loader in the uninitialized state.
func NewHandle(loader Loader, opts ...HandleOption) *Handle {
	h := &Handle{
		loader:   loader,
		state:    StateUninitialized,
		observer: observability.NoOpObserver{},
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// State returns the current lifecycle phase.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Model returns the model identifier of the current or in-flight load.
func (h *Handle) Model() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.modelID
}

// Err returns the failure from the most recent load, or nil.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loadErr
}

// EnsureReady returns a Ref for modelID, loading it if necessary. Callers
// arriving while a load for the same model is in flight wait for that
// load's outcome instead of starting a second one. A handle that is already
// Ready with a different model rejects the call with ErrModelMismatch;
// use Reinit for an explicit swap.
func (h *Handle) EnsureReady(ctx context.Context, modelID string) (Ref, error) {
	h.mu.Lock()
	if h.state == StateReady {
		ref, current := h.ref, h.modelID
		h.mu.Unlock()
		if current != modelID {
			return nil, fmt.Errorf("%w: have %q, want %q", ErrModelMismatch, current, modelID)
		}
		return ref, nil
	}
	h.mu.Unlock()

	v, err, _ := h.group.Do(modelID, func() (any, error) {
		return h.load(ctx, modelID)
	})
	if err != nil {
		return nil, err
	}
	return v.(Ref), nil
}

// Reinit tears down any current instance and loads modelID fresh. This is
// the only path that swaps models on a Ready handle.
func (h *Handle) Reinit(ctx context.Context, modelID string) (Ref, error) {
	h.mu.Lock()
	if closer, ok := h.ref.(io.Closer); ok {
		closer.Close()
	}
	h.state = StateUninitialized
	h.ref = nil
	h.loadErr = nil
	h.modelID = ""
	h.mu.Unlock()

	h.group.Forget(modelID)
	return h.EnsureReady(ctx, modelID)
}

func (h *Handle) load(ctx context.Context, modelID string) (Ref, error) {
	// A winner queued ahead of us may already have finished.
	h.mu.Lock()
	if h.state == StateReady && h.modelID == modelID {
		ref := h.ref
		h.mu.Unlock()
		return ref, nil
	}
	h.state = StateLoading
	h.modelID = modelID
	h.loadErr = nil
	h.mu.Unlock()

	observability.Emit(ctx, h.observer, EventLoadStart, observability.LevelInfo, "engine.Handle", map[string]any{
		"model": modelID,
	})

	ref, err := h.loader.Load(ctx, modelID, h.opts)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrLoadFailed, err)

		h.mu.Lock()
		h.state = StateFailed
		h.ref = nil
		h.loadErr = wrapped
		h.mu.Unlock()

		observability.Emit(ctx, h.observer, EventLoadFailed, observability.LevelError, "engine.Handle", map[string]any{
			"model": modelID,
			"error": err.Error(),
		})

		return nil, wrapped
	}

	h.mu.Lock()
	h.state = StateReady
	h.ref = ref
	h.mu.Unlock()

	observability.Emit(ctx, h.observer, EventLoadReady, observability.LevelInfo, "engine.Handle", map[string]any{
		"model": modelID,
	})

	return ref, nil
}

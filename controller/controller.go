// Package controller implements the conversational session controller: it
// owns the ordered message history, issues generation requests against the
// engine handle, merges the streamed response into history chunk by chunk,
// and exposes cancellation.
//
// The controller initializes from configuration via New, creating all
// subsystems internally. Functional options allow test overrides of any
// subsystem.
//
//	c, err := controller.New(&cfg)
//	err = c.Send(ctx, "What's the weather in Boston?")
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/converse/core/protocol"
	"github.com/tailored-agentic-units/converse/engine"
	"github.com/tailored-agentic-units/converse/observability"
	"github.com/tailored-agentic-units/converse/session"
	"github.com/tailored-agentic-units/converse/settings"
	"github.com/tailored-agentic-units/converse/store"
)

// request is the single active generation slot. At most one request may be
// in flight per controller; done is closed when its Send call returns.
type request struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Controller after config-driven initialization.
// Applied by New after cold start; overrides replace config-created defaults.
type Option func(*Controller)

// WithHandle overrides the config-created engine handle.
func WithHandle(h *engine.Handle) Option {
	return func(c *Controller) { c.handle = h }
}

// WithSession overrides the config-created session.
func WithSession(s session.Session) Option {
	return func(c *Controller) { c.session = s }
}

// WithSettingsStore overrides the config-created settings store.
func WithSettingsStore(s *settings.Store) Option {
	return func(c *Controller) { c.sstore = s }
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// Controller is the session runtime mediating between the caller, the
// engine handle, and the settings store.
type Controller struct {
	handle   *engine.Handle
	session  session.Session
	sstore   *settings.Store
	kv       store.Store
	observer observability.Observer

	mu       sync.Mutex
	settings settings.Settings
	active   *request

	notify chan struct{}
}

// New creates a Controller from configuration. Subsystems (engine loader,
// session, settings store) are initialized from their respective config
// sections; persisted settings are loaded immediately so the controller
// starts from the last saved state. Functional options applied after
// initialization can override any subsystem for testing.
func New(cfg *Config, opts ...Option) (*Controller, error) {
	sesh, err := session.New(&cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	kv, err := store.New(&cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	c := &Controller{
		session:  sesh,
		sstore:   settings.NewStore(kv),
		kv:       kv,
		observer: observability.NewSlogObserver(slog.Default()),
		notify:   make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.handle == nil {
		loader, err := engine.New(&cfg.Engine)
		if err != nil {
			return nil, fmt.Errorf("failed to create engine loader: %w", err)
		}
		c.handle = engine.NewHandle(loader, engine.WithObserver(c.observer))
	}

	c.settings = c.sstore.Load(context.Background())

	return c, nil
}

// SessionID returns the identifier of the underlying session.
func (c *Controller) SessionID() string {
	return c.session.ID()
}

// History returns a copy of the ordered conversation history.
func (c *Controller) History() []protocol.Message {
	return c.session.Messages()
}

// Settings returns a snapshot of the current session settings.
func (c *Controller) Settings() settings.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// ApplySettings merges a partial update into the session settings, persists
// the result best-effort, and returns the new snapshot. Takes effect for
// the next Send; an in-flight generation keeps its own snapshot.
func (c *Controller) ApplySettings(p settings.Patch) settings.Settings {
	c.mu.Lock()
	c.settings.Apply(p)
	snapshot := c.settings
	c.mu.Unlock()

	c.sstore.Save(context.Background(), snapshot)
	return snapshot
}

// Busy reports whether a generation request is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

// Subscribe returns the history-change signal channel. Signals coalesce:
// a pending signal means "history changed at least once since the last
// read". Intended for a single consumer driving a render or poll loop.
func (c *Controller) Subscribe() <-chan struct{} {
	return c.notify
}

// Send runs one generation request to completion: it ensures the engine is
// ready, appends the user message and an empty assistant placeholder,
// streams the response into the placeholder delta by delta, and returns on
// the terminal state. Blank input is a no-op. While a request is active,
// further Send calls are rejected with ErrRequestActive and leave history
// untouched. Cancellation (via Cancel, Reset, or ctx) is a normal terminal
// state returning nil; partial content is retained either way.
func (c *Controller) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	c.mu.Lock()
	if c.active != nil {
		c.mu.Unlock()
		return ErrRequestActive
	}
	snapshot := c.settings

	reqCtx, cancel := context.WithCancel(ctx)
	req := &request{
		id:     uuid.Must(uuid.NewV7()).String(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.active = req
	c.mu.Unlock()

	defer func() {
		cancel()
		c.mu.Lock()
		if c.active == req {
			c.active = nil
		}
		c.mu.Unlock()
		close(req.done)
	}()

	// The engine must be ready before anything is appended, so a failed
	// load leaves history untouched. A model selection made after the
	// engine loaded is ignored here; ReloadModel is the explicit swap path.
	modelID := snapshot.ModelID
	if c.handle.State() == engine.StateReady {
		modelID = c.handle.Model()
	}

	ref, err := c.handle.EnsureReady(reqCtx, modelID)
	if err != nil {
		return err
	}

	c.session.AddMessage(protocol.NewMessage(protocol.RoleUser, text))
	outbound := c.composeRequest(snapshot)
	c.session.AddMessage(protocol.NewMessage(protocol.RoleAssistant, ""))
	c.changed()

	observability.Emit(reqCtx, c.observer, EventSendStart, observability.LevelInfo, "controller.Send", map[string]any{
		"request":     req.id,
		"session":     c.session.ID(),
		"model":       modelID,
		"policy_only": snapshot.EnforceOnlyPolicy,
		"messages":    len(outbound),
	})

	stream, err := ref.StreamChat(reqCtx, outbound, engine.Params{
		Temperature: snapshot.Temperature,
		MaxTokens:   snapshot.MaxTokens,
	})
	if err != nil {
		return c.finishError(reqCtx, req, err)
	}

	chunks := 0
	for {
		chunk, err := stream.Recv(reqCtx)
		if err == io.EOF {
			observability.Emit(reqCtx, c.observer, EventSendComplete, observability.LevelInfo, "controller.Send", map[string]any{
				"request": req.id,
				"chunks":  chunks,
			})
			return nil
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				observability.Emit(context.WithoutCancel(reqCtx), c.observer, EventSendCancelled, observability.LevelInfo, "controller.Send", map[string]any{
					"request": req.id,
					"chunks":  chunks,
				})
				return nil
			}
			return c.finishError(reqCtx, req, err)
		}

		// Empty deltas are valid heartbeats: no mutation, no signal.
		if chunk.Delta == "" {
			continue
		}

		c.session.AppendToLast(protocol.RoleAssistant, chunk.Delta)
		chunks++
		observability.Emit(reqCtx, c.observer, EventChunk, observability.LevelVerbose, "controller.Send", map[string]any{
			"request": req.id,
			"delta":   chunk.Delta,
		})
		c.changed()
	}
}

// Cancel signals the active request's cancellation token. The streaming
// loop observes it at the next chunk boundary; partial content stays in
// history. No-op when idle.
func (c *Controller) Cancel() {
	c.mu.Lock()
	req := c.active
	c.mu.Unlock()

	if req != nil {
		req.cancel()
	}
}

// Reset clears the history. An active request is cancelled first and
// awaited, so the cleared history is never mutated by a stale stream.
func (c *Controller) Reset() {
	c.mu.Lock()
	req := c.active
	c.mu.Unlock()

	if req != nil {
		req.cancel()
		<-req.done
	}

	c.session.Clear()
	observability.Emit(context.Background(), c.observer, EventReset, observability.LevelInfo, "controller.Reset", map[string]any{
		"session": c.session.ID(),
	})
	c.changed()
}

// ReloadModel tears down the current engine instance and loads the model
// currently selected in settings. Rejected while a request is active.
func (c *Controller) ReloadModel(ctx context.Context) error {
	c.mu.Lock()
	if c.active != nil {
		c.mu.Unlock()
		return ErrRequestActive
	}
	modelID := c.settings.ModelID
	c.mu.Unlock()

	_, err := c.handle.Reinit(ctx, modelID)
	return err
}

// Close releases the persistence backend. The controller must be idle.
func (c *Controller) Close() error {
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// composeRequest builds the outbound message sequence from the settings
// snapshot and the history as of the just-appended user message. When
// policy enforcement is on, a single system message built from the trimmed
// policy text leads the request; otherwise only history is sent.
func (c *Controller) composeRequest(snapshot settings.Settings) []protocol.Message {
	history := c.session.Messages()

	if !snapshot.EnforceOnlyPolicy {
		return history
	}

	messages := make([]protocol.Message, 0, len(history)+1)
	messages = append(messages, protocol.NewMessage(protocol.RoleSystem, strings.TrimSpace(snapshot.PolicyText)))
	messages = append(messages, history...)
	return messages
}

func (c *Controller) finishError(ctx context.Context, req *request, err error) error {
	wrapped := fmt.Errorf("%w: %v", ErrGeneration, err)
	observability.Emit(context.WithoutCancel(ctx), c.observer, EventSendError, observability.LevelError, "controller.Send", map[string]any{
		"request": req.id,
		"error":   err.Error(),
	})
	return wrapped
}

func (c *Controller) changed() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

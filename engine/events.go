package engine

import "github.com/tailored-agentic-units/converse/observability"

// Engine event types emitted during model lifecycle transitions.
const (
	EventLoadStart  observability.EventType = "engine.load.start"
	EventLoadReady  observability.EventType = "engine.load.ready"
	EventLoadFailed observability.EventType = "engine.load.failed"
)

package controller

import "github.com/tailored-agentic-units/converse/observability"

// Controller event types emitted across a generation request's lifecycle.
const (
	EventSendStart     observability.EventType = "controller.send.start"
	EventChunk         observability.EventType = "controller.chunk"
	EventSendComplete  observability.EventType = "controller.send.complete"
	EventSendCancelled observability.EventType = "controller.send.cancelled"
	EventSendError     observability.EventType = "controller.send.error"
	EventReset         observability.EventType = "controller.reset"
)

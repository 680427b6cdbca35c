// Package session manages ordered conversation history for the controller.
package session

import (
	"github.com/tailored-agentic-units/converse/core/protocol"
)

// Session holds an ordered sequence of conversation messages. History is
// append-only except for AppendToLast, the single mutation path used while
// an assistant message is the streaming target. Implementations must be
// safe for concurrent use.
type Session interface {
	// ID returns the unique session identifier.
	ID() string
	// AddMessage appends a message to the conversation history.
	AddMessage(msg protocol.Message)
	// AppendToLast appends delta to the content of the last message.
	// Reports false when the history is empty or the last message does not
	// carry the given role.
	AppendToLast(role protocol.Role, delta string) bool
	// Messages returns a defensive copy of the conversation history.
	Messages() []protocol.Message
	// Len returns the number of messages in the history.
	Len() int
	// Clear resets the conversation history.
	Clear()
}

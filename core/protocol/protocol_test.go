package protocol_test

import (
	"encoding/json"
	"testing"

	"github.com/tailored-agentic-units/converse/core/protocol"
)

func TestRole_IsValid(t *testing.T) {
	tests := []struct {
		name string
		role protocol.Role
		want bool
	}{
		{"system", protocol.RoleSystem, true},
		{"user", protocol.RoleUser, true},
		{"assistant", protocol.RoleAssistant, true},
		{"tool", protocol.Role("tool"), false},
		{"empty", protocol.Role(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.role.IsValid(); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestNewMessage(t *testing.T) {
	msg := protocol.NewMessage(protocol.RoleUser, "hello")

	if msg.Role != protocol.RoleUser {
		t.Errorf("got role %q, want %q", msg.Role, protocol.RoleUser)
	}
	if msg.Content != "hello" {
		t.Errorf("got content %q, want %q", msg.Content, "hello")
	}
}

func TestInitMessages(t *testing.T) {
	msgs := protocol.InitMessages(protocol.RoleSystem, "Be terse.")

	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Role != protocol.RoleSystem {
		t.Errorf("got role %q, want %q", msgs[0].Role, protocol.RoleSystem)
	}
	if msgs[0].Content != "Be terse." {
		t.Errorf("got content %q, want %q", msgs[0].Content, "Be terse.")
	}
}

func TestMessage_JSONRoundTrip(t *testing.T) {
	in := protocol.NewMessage(protocol.RoleAssistant, "partial answer")

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out protocol.Message
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if out != in {
		t.Errorf("round trip mismatch: got %+v, want %+v", out, in)
	}
}

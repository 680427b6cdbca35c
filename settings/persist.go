package settings

import (
	"context"
	"encoding/json"

	"github.com/tailored-agentic-units/converse/store"
)

// Store reads and writes Settings through a key-value backend, one entry
// per field, JSON-encoded. A nil backend disables persistence: Load returns
// defaults and Save is a no-op. Reads never fail: absent or undecodable
// entries yield the field's default. Writes are fire-and-forget; storage
// failures are absorbed because the in-memory settings stay authoritative.
type Store struct {
	kv store.Store
}

// NewStore creates a settings Store over the given backend. kv may be nil.
func NewStore(kv store.Store) *Store {
	return &Store{kv: kv}
}

// Load reconstructs Settings from the backend, field by field.
func (s *Store) Load(ctx context.Context) Settings {
	out := Default()
	if s.kv == nil {
		return out
	}

	out.ModelID = loadField(ctx, s.kv, KeyModelID, out.ModelID)
	out.PolicyText = loadField(ctx, s.kv, KeyPolicyText, out.PolicyText)
	out.EnforceOnlyPolicy = loadField(ctx, s.kv, KeyEnforceOnlyPolicy, out.EnforceOnlyPolicy)
	out.Temperature = loadField(ctx, s.kv, KeyTemperature, out.Temperature)
	out.MaxTokens = loadField(ctx, s.kv, KeyMaxTokens, out.MaxTokens)

	out.Clamp()
	return out
}

// Save persists every field of st. Individual write failures are ignored.
func (s *Store) Save(ctx context.Context, st Settings) {
	if s.kv == nil {
		return
	}

	saveField(ctx, s.kv, KeyModelID, st.ModelID)
	saveField(ctx, s.kv, KeyPolicyText, st.PolicyText)
	saveField(ctx, s.kv, KeyEnforceOnlyPolicy, st.EnforceOnlyPolicy)
	saveField(ctx, s.kv, KeyTemperature, st.Temperature)
	saveField(ctx, s.kv, KeyMaxTokens, st.MaxTokens)
}

func loadField[T any](ctx context.Context, kv store.Store, key string, def T) T {
	data, err := kv.Load(ctx, key)
	if err != nil {
		return def
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return def
	}
	return v
}

func saveField[T any](ctx context.Context, kv store.Store, key string, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = kv.Save(ctx, key, data)
}

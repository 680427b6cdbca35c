// Package settings defines the user-tunable session configuration and its
// persistence contract: every field is stored under its own key, reads fall
// back to documented defaults on missing or corrupt entries, and writes are
// best-effort. A torn entry for one field never invalidates the others.
package settings

// Storage keys, one per field.
const (
	KeyModelID           = "settings/model_id"
	KeyPolicyText        = "settings/policy_text"
	KeyEnforceOnlyPolicy = "settings/policy_only"
	KeyTemperature       = "settings/temperature"
	KeyMaxTokens         = "settings/max_tokens"
)

// Documented defaults and sampling bounds.
const (
	DefaultModelID     = "llama-3.2-1b-instruct"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 512

	MinTemperature = 0.0
	MaxTemperature = 2.0
	MinMaxTokens   = 64
	MaxMaxTokens   = 4096
)

// Settings is the session configuration tuple. Always complete and valid:
// construct via Default and mutate through Apply so sampling parameters
// stay within bounds.
type Settings struct {
	ModelID           string  `json:"model_id"`
	PolicyText        string  `json:"policy_text"`
	EnforceOnlyPolicy bool    `json:"policy_only"`
	Temperature       float64 `json:"temperature"`
	MaxTokens         int     `json:"max_tokens"`
}

// Default returns the documented default settings.
func Default() Settings {
	return Settings{
		ModelID:     DefaultModelID,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// Clamp forces sampling parameters into their valid ranges.
func (s *Settings) Clamp() {
	if s.Temperature < MinTemperature {
		s.Temperature = MinTemperature
	}
	if s.Temperature > MaxTemperature {
		s.Temperature = MaxTemperature
	}
	if s.MaxTokens < MinMaxTokens {
		s.MaxTokens = MinMaxTokens
	}
	if s.MaxTokens > MaxMaxTokens {
		s.MaxTokens = MaxMaxTokens
	}
}

// Patch is a partial settings update. Nil fields are left unchanged.
type Patch struct {
	ModelID           *string  `json:"model_id,omitempty"`
	PolicyText        *string  `json:"policy_text,omitempty"`
	EnforceOnlyPolicy *bool    `json:"policy_only,omitempty"`
	Temperature       *float64 `json:"temperature,omitempty"`
	MaxTokens         *int     `json:"max_tokens,omitempty"`
}

// Apply merges p into s and clamps the result.
func (s *Settings) Apply(p Patch) {
	if p.ModelID != nil {
		s.ModelID = *p.ModelID
	}
	if p.PolicyText != nil {
		s.PolicyText = *p.PolicyText
	}
	if p.EnforceOnlyPolicy != nil {
		s.EnforceOnlyPolicy = *p.EnforceOnlyPolicy
	}
	if p.Temperature != nil {
		s.Temperature = *p.Temperature
	}
	if p.MaxTokens != nil {
		s.MaxTokens = *p.MaxTokens
	}
	s.Clamp()
}

package settings_test

import (
	"testing"

	"github.com/tailored-agentic-units/converse/settings"
)

func TestDefault(t *testing.T) {
	s := settings.Default()

	if s.ModelID != settings.DefaultModelID {
		t.Errorf("got model %q, want %q", s.ModelID, settings.DefaultModelID)
	}
	if s.PolicyText != "" {
		t.Errorf("got policy %q, want empty", s.PolicyText)
	}
	if s.EnforceOnlyPolicy {
		t.Error("policy enforcement should default to off")
	}
	if s.Temperature != settings.DefaultTemperature {
		t.Errorf("got temperature %v, want %v", s.Temperature, settings.DefaultTemperature)
	}
	if s.MaxTokens != settings.DefaultMaxTokens {
		t.Errorf("got max tokens %d, want %d", s.MaxTokens, settings.DefaultMaxTokens)
	}
}

func TestSettings_Clamp(t *testing.T) {
	tests := []struct {
		name            string
		temperature     float64
		maxTokens       int
		wantTemperature float64
		wantMaxTokens   int
	}{
		{"in range", 1.2, 1024, 1.2, 1024},
		{"temperature low", -0.5, 512, 0.0, 512},
		{"temperature high", 3.1, 512, 2.0, 512},
		{"tokens low", 0.7, 1, 0.7, 64},
		{"tokens high", 0.7, 100000, 0.7, 4096},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := settings.Default()
			s.Temperature = tt.temperature
			s.MaxTokens = tt.maxTokens
			s.Clamp()

			if s.Temperature != tt.wantTemperature {
				t.Errorf("got temperature %v, want %v", s.Temperature, tt.wantTemperature)
			}
			if s.MaxTokens != tt.wantMaxTokens {
				t.Errorf("got max tokens %d, want %d", s.MaxTokens, tt.wantMaxTokens)
			}
		})
	}
}

func TestSettings_Apply(t *testing.T) {
	s := settings.Default()

	temp := 1.2
	policy := "Be terse."
	enforce := true
	s.Apply(settings.Patch{
		Temperature:       &temp,
		PolicyText:        &policy,
		EnforceOnlyPolicy: &enforce,
	})

	if s.Temperature != 1.2 {
		t.Errorf("got temperature %v, want 1.2", s.Temperature)
	}
	if s.PolicyText != "Be terse." {
		t.Errorf("got policy %q, want %q", s.PolicyText, "Be terse.")
	}
	if !s.EnforceOnlyPolicy {
		t.Error("enforcement flag not applied")
	}
	if s.ModelID != settings.DefaultModelID {
		t.Errorf("nil patch field changed model to %q", s.ModelID)
	}
	if s.MaxTokens != settings.DefaultMaxTokens {
		t.Errorf("nil patch field changed max tokens to %d", s.MaxTokens)
	}
}

func TestSettings_Apply_ClampsOutOfRange(t *testing.T) {
	s := settings.Default()

	tokens := 2
	s.Apply(settings.Patch{MaxTokens: &tokens})

	if s.MaxTokens != settings.MinMaxTokens {
		t.Errorf("got max tokens %d, want clamped %d", s.MaxTokens, settings.MinMaxTokens)
	}
}

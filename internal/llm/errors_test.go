package llm

import (
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		expected string
	}{
		{
			name:     "unsupported provider - codex",
			provider: "codex",
			expected: "unsupported LLM provider: codex",
		},
		{
			name:     "unsupported provider - empty",
			provider: "",
			expected: "unsupported LLM provider: ",
		},
		{
			name:     "unsupported provider - custom",
			provider: "my-custom-provider",
			expected: "unsupported LLM provider: my-custom-provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ErrUnsupportedProvider{Provider: tt.provider}
			if err.Error() != tt.expected {
				t.Errorf("expected error message '%s', got '%s'", tt.expected, err.Error())
			}
		})
	}
}

func TestErrMissingAPIKey_Error(t *testing.T) {
	err := ErrMissingAPIKey{Env: "OPENAI_API_KEY"}
	if err.Error() != "Missing OPENAI_API_KEY environment variable." {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

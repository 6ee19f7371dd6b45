package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const (
	ModeLocal  = "local"
	ModeRemote = "remote"

	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Schema is a named JSON schema the agent's text output should conform to.
type Schema struct {
	Name       string
	Definition map[string]any
}

type Request struct {
	Messages  []Message
	Schema    *Schema
	WebSearch bool
}

// Response carries the agent's final text plus the upstream response body,
// which callers return verbatim when the text cannot be used.
type Response struct {
	Text string
	Raw  json.RawMessage
}

type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (Response, error)
}

type Config struct {
	Mode            string
	Provider        string
	Model           string
	BaseURL         string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	Timeout         time.Duration
	HTTPClient      *http.Client
}

func NewProvider(cfg Config) (Provider, error) {
	if cfg.Mode == ModeLocal {
		return LocalProvider{Now: time.Now}, nil
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI, "":
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			Timeout:    cfg.Timeout,
			HTTPClient: cfg.HTTPClient,
		}), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(AnthropicConfig{
			APIKey:     cfg.AnthropicAPIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			Timeout:    cfg.Timeout,
			HTTPClient: cfg.HTTPClient,
		}), nil
	default:
		return nil, ErrUnsupportedProvider{Provider: cfg.Provider}
	}
}

// Validate reports configuration problems that would make every call fail.
func Validate(cfg Config) error {
	if cfg.Mode == ModeLocal {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI, "":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return ErrMissingAPIKey{Env: "OPENAI_API_KEY"}
		}
	case ProviderAnthropic:
		if strings.TrimSpace(cfg.AnthropicAPIKey) == "" {
			return ErrMissingAPIKey{Env: "ANTHROPIC_API_KEY"}
		}
	default:
		return ErrUnsupportedProvider{Provider: cfg.Provider}
	}
	return nil
}

func splitMessages(messages []Message) (string, string) {
	var system, user []string
	for _, msg := range messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		if msg.Role == "system" {
			system = append(system, content)
		} else {
			user = append(user, content)
		}
	}
	return strings.Join(system, "\n\n"), strings.Join(user, "\n\n")
}

func defaultIfEmpty(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultAnthropicModel     = "claude-sonnet-4-5" // anthropic.ModelClaudeSonnet4_5
	defaultAnthropicMaxTokens = 8192
	anthropicWebSearchUses    = 5
)

type AnthropicConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type AnthropicProvider struct {
	apiKey    string
	model     string
	baseURL   string
	maxTokens int64
	client    anthropic.Client
}

func NewAnthropicProvider(cfg AnthropicConfig) *AnthropicProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL+"/"))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	model := cfg.Model
	if model == "" || strings.HasPrefix(model, "gpt-") {
		model = defaultAnthropicModel
	}
	return &AnthropicProvider{
		apiKey:    cfg.APIKey,
		model:     model,
		baseURL:   baseURL,
		maxTokens: defaultAnthropicMaxTokens,
		client:    anthropic.NewClient(opts...),
	}
}

func (p *AnthropicProvider) Name() string { return ProviderAnthropic }

func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(p.apiKey) == "" {
		return Response{}, ErrMissingAPIKey{Env: "ANTHROPIC_API_KEY"}
	}
	system, user := splitMessages(req.Messages)
	if user == "" {
		return Response{}, errors.New("missing user message")
	}
	if req.Schema != nil {
		schema, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return Response{}, fmt.Errorf("encode schema: %w", err)
		}
		system = strings.TrimSpace(system + "\n\nRespond with a single JSON object named " + req.Schema.Name +
			" that matches this JSON schema, with no surrounding text:\n" + string(schema))
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(user))},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.WebSearch {
		params.Tools = []anthropic.ToolUnionParam{{
			OfWebSearchTool20250305: &anthropic.WebSearchTool20250305Param{MaxUses: anthropic.Int(anthropicWebSearchUses)},
		}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("anthropic request failed: %w", err)
	}
	raw := msg.RawJSON()
	if raw == "" {
		return Response{}, ErrEmptyResponse
	}

	var parts []string
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return Response{
		Text: extractJSONObject(strings.Join(parts, "")),
		Raw:  json.RawMessage(raw),
	}, nil
}

// extractJSONObject trims prose around a JSON object in model output. Text
// that already parses, or has no object in it, is returned trimmed.
func extractJSONObject(text string) string {
	text = strings.TrimSpace(text)
	if text == "" || json.Valid([]byte(text)) {
		return text
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return text
	}
	candidate := text[start : end+1]
	if json.Valid([]byte(candidate)) {
		return candidate
	}
	return text
}

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	webSearchTool      = "web_search"
)

type OpenAIConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type OpenAIProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  openai.Client
}

func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
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
	return &OpenAIProvider{
		apiKey:  cfg.APIKey,
		model:   defaultIfEmpty(cfg.Model, defaultOpenAIModel),
		baseURL: baseURL,
		client:  openai.NewClient(opts...),
	}
}

func (p *OpenAIProvider) Name() string { return ProviderOpenAI }

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(p.apiKey) == "" {
		return Response{}, ErrMissingAPIKey{Env: "OPENAI_API_KEY"}
	}
	system, user := splitMessages(req.Messages)
	if user == "" {
		return Response{}, errors.New("missing user message")
	}

	params := responses.ResponseNewParams{
		Model: p.model,
		Input: responses.ResponseNewParamsInputUnion{OfString: openai.String(user)},
	}
	if system != "" {
		params.Instructions = openai.String(system)
	}
	var callOpts []option.RequestOption
	if req.WebSearch {
		params.Tools = []responses.ToolUnionParam{{
			OfWebSearchPreview: &responses.WebSearchToolParam{Type: responses.WebSearchToolTypeWebSearchPreview},
		}}
		// The SDK only models the preview tool; send the GA type.
		callOpts = append(callOpts, option.WithJSONSet("tools.0.type", webSearchTool))
	}
	if req.Schema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:   req.Schema.Name,
					Schema: req.Schema.Definition,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	resp, err := p.client.Responses.New(ctx, params, callOpts...)
	if err != nil {
		return Response{}, fmt.Errorf("openai request failed: %w", err)
	}
	raw := resp.RawJSON()
	if raw == "" {
		return Response{}, ErrEmptyResponse
	}
	return Response{
		Text: strings.TrimSpace(resp.OutputText()),
		Raw:  json.RawMessage(raw),
	}, nil
}

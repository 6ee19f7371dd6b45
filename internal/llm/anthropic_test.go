package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const anthropicResponseBody = `{
  "id": "msg_123",
  "type": "message",
  "role": "assistant",
  "model": "claude-sonnet-4-5",
  "content": [
    {"type": "server_tool_use", "id": "srvtoolu_1", "name": "web_search", "input": {"query": "DC jazz this week"}},
    {"type": "text", "text": "Here is what I found:\n"},
    {"type": "text", "text": "{\"events\":[{\"title\":\"Jazz\"}],\"meta\":{\"count\":1}}"}
  ],
  "stop_reason": "end_turn",
  "usage": {"input_tokens": 10, "output_tokens": 20}
}`

func TestAnthropicProvider_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("expected path '/v1/messages', got %s", r.URL.Path)
		}
		if key := r.Header.Get("X-Api-Key"); key != "ant-key" {
			t.Errorf("expected x-api-key header 'ant-key', got %s", key)
		}

		var reqBody map[string]any
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if reqBody["model"] != "claude-sonnet-4-5" {
			t.Errorf("expected default model, got %v", reqBody["model"])
		}
		system, _ := reqBody["system"].([]any)
		if len(system) != 1 {
			t.Fatalf("expected one system block, got %v", reqBody["system"])
		}
		systemText, _ := system[0].(map[string]any)["text"].(string)
		if !strings.HasPrefix(systemText, "You are DC Explorer.") || !strings.Contains(systemText, "event_list") {
			t.Errorf("expected persona plus schema instruction, got %q", systemText)
		}
		tools, _ := reqBody["tools"].([]any)
		if len(tools) != 1 {
			t.Fatalf("expected one tool, got %v", reqBody["tools"])
		}
		tool := tools[0].(map[string]any)
		if tool["type"] != "web_search_20250305" || tool["name"] != "web_search" {
			t.Errorf("expected web search tool, got %v", tool)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(anthropicResponseBody))
	}))
	defer server.Close()

	provider := NewAnthropicProvider(AnthropicConfig{APIKey: "ant-key", BaseURL: server.URL})
	resp, err := provider.Generate(context.Background(), Request{
		Messages: []Message{
			{Role: "system", Content: "You are DC Explorer."},
			{Role: "user", Content: "Find jazz"},
		},
		Schema:    EventListSchema(),
		WebSearch: true,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Text != `{"events":[{"title":"Jazz"}],"meta":{"count":1}}` {
		t.Errorf("unexpected text: %s", resp.Text)
	}
	if !strings.Contains(string(resp.Raw), `"msg_123"`) {
		t.Errorf("expected raw upstream body, got %s", string(resp.Raw))
	}
}

func TestAnthropicProvider_MissingKey(t *testing.T) {
	provider := NewAnthropicProvider(AnthropicConfig{BaseURL: "http://127.0.0.1:0"})
	_, err := provider.Generate(context.Background(), Request{Messages: []Message{{Role: "user", Content: "Hello"}}})
	var missing ErrMissingAPIKey
	if !errors.As(err, &missing) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if missing.Env != "ANTHROPIC_API_KEY" {
		t.Errorf("expected ANTHROPIC_API_KEY, got %s", missing.Env)
	}
}

func TestAnthropicProvider_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
	}))
	defer server.Close()

	provider := NewAnthropicProvider(AnthropicConfig{APIKey: "ant-key", BaseURL: server.URL})
	_, err := provider.Generate(context.Background(), Request{Messages: []Message{{Role: "user", Content: "Hello"}}})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "anthropic request failed") {
		t.Errorf("expected wrapped error, got %s", err.Error())
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain object", in: ` {"a":1} `, want: `{"a":1}`},
		{name: "prose around object", in: "Sure!\n{\"a\":{\"b\":2}}\nEnjoy.", want: `{"a":{"b":2}}`},
		{name: "no object", in: "No verified events.", want: "No verified events."},
		{name: "broken object", in: "x {not json} y", want: "x {not json} y"},
		{name: "empty", in: "  ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSONObject(tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

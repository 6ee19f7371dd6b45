package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/images"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/llm"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/secrets"
)

type Config struct {
	Port               string
	LLMMode            string
	LLMProvider        string
	LLMModel           string
	LLMBaseURL         string
	OpenAIAPIKey       string
	AnthropicAPIKey    string
	LLMSecretsKey      string
	LLMTimeout         time.Duration
	PageFetchTimeout   time.Duration
	ImageProbeTimeout  time.Duration
	MaxHTMLBytes       int
	ResolveConcurrency int
	UserAgent          string
	ImageCatalogPath   string
	LogLevel           string
	LogFormat          string
	CORSAllowedOrigin  string
}

func Load() Config {
	return Config{
		Port:               getEnv("PORT", "3001"),
		LLMMode:            getEnv("LLM_MODE", llm.ModeRemote),
		LLMProvider:        getEnv("LLM_PROVIDER", llm.ProviderOpenAI),
		LLMModel:           getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMBaseURL:         getEnv("LLM_BASE_URL", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		LLMSecretsKey:      getEnv(secrets.SecretsKeyEnv, ""),
		LLMTimeout:         getEnvDuration("LLM_TIMEOUT", 90*time.Second),
		PageFetchTimeout:   getEnvDuration("PAGE_FETCH_TIMEOUT", images.DefaultPageTimeout),
		ImageProbeTimeout:  getEnvDuration("IMAGE_PROBE_TIMEOUT", images.DefaultProbeTimeout),
		MaxHTMLBytes:       getEnvInt("MAX_HTML_BYTES", images.DefaultMaxHTMLBytes),
		ResolveConcurrency: getEnvInt("RESOLVE_CONCURRENCY", 0),
		UserAgent:          getEnv("USER_AGENT", images.DefaultUserAgent),
		ImageCatalogPath:   getEnv("IMAGE_CATALOG_PATH", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		CORSAllowedOrigin:  getEnv("CORS_ALLOWED_ORIGIN", "*"),
	}
}

// LLM builds the provider configuration, decrypting enc:-prefixed API keys.
func (c Config) LLM() (llm.Config, error) {
	openAIKey, err := secrets.Reveal(c.OpenAIAPIKey, c.LLMSecretsKey)
	if err != nil {
		return llm.Config{}, fmt.Errorf("OPENAI_API_KEY: %w", err)
	}
	anthropicKey, err := secrets.Reveal(c.AnthropicAPIKey, c.LLMSecretsKey)
	if err != nil {
		return llm.Config{}, fmt.Errorf("ANTHROPIC_API_KEY: %w", err)
	}
	return llm.Config{
		Mode:            strings.ToLower(strings.TrimSpace(c.LLMMode)),
		Provider:        strings.ToLower(strings.TrimSpace(c.LLMProvider)),
		Model:           strings.TrimSpace(c.LLMModel),
		BaseURL:         strings.TrimSpace(c.LLMBaseURL),
		OpenAIAPIKey:    openAIKey,
		AnthropicAPIKey: anthropicKey,
		Timeout:         c.LLMTimeout,
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if parsed, ok := ParseDuration(os.Getenv(key)); ok {
		return parsed
	}
	return fallback
}

// ParseDuration accepts Go duration strings ("4s", "2500ms") or a bare
// number of milliseconds. Non-positive values are rejected.
func ParseDuration(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
		return parsed, true
	}
	if ms, err := strconv.Atoi(value); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond, true
	}
	return 0, false
}

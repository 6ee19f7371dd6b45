package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/config"
)

const version = "0.1.0"

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	var cfgFile string
	root := &cobra.Command{
		Use:   "eventsearch",
		Short: "DC Explorer event search CLI",
		Long: `eventsearch runs the DC Explorer search pipeline from the terminal.

Settings come from the same environment variables as the server
(LLM_PROVIDER, OPENAI_API_KEY, ...), an optional YAML config file,
and command-line flags, in increasing order of precedence.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile == "" {
				return nil
			}
			v.SetConfigFile(cfgFile)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config: %w", err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file with keys named like the environment variables (llm_provider, openai_api_key, ...)")
	root.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	_ = v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newSearchCmd(v))
	root.AddCommand(newCatalogCmd(v))
	root.AddCommand(newSecretsCmd(v))
	return root
}

// resolveConfig layers viper values (config file, environment, changed
// flags) over the environment defaults the server uses.
func resolveConfig(v *viper.Viper) config.Config {
	cfg := config.Load()
	setString(v, "llm_mode", &cfg.LLMMode)
	setString(v, "llm_provider", &cfg.LLMProvider)
	setString(v, "llm_model", &cfg.LLMModel)
	setString(v, "llm_base_url", &cfg.LLMBaseURL)
	setString(v, "openai_api_key", &cfg.OpenAIAPIKey)
	setString(v, "anthropic_api_key", &cfg.AnthropicAPIKey)
	setString(v, "llm_secrets_key", &cfg.LLMSecretsKey)
	setString(v, "user_agent", &cfg.UserAgent)
	setString(v, "image_catalog_path", &cfg.ImageCatalogPath)
	setString(v, "log_level", &cfg.LogLevel)
	setDuration(v, "llm_timeout", &cfg.LLMTimeout)
	setDuration(v, "page_fetch_timeout", &cfg.PageFetchTimeout)
	setDuration(v, "image_probe_timeout", &cfg.ImageProbeTimeout)
	if v.IsSet("max_html_bytes") {
		if n := v.GetInt("max_html_bytes"); n > 0 {
			cfg.MaxHTMLBytes = n
		}
	}
	if v.IsSet("resolve_concurrency") {
		cfg.ResolveConcurrency = v.GetInt("resolve_concurrency")
	}
	return cfg
}

func setString(v *viper.Viper, key string, dst *string) {
	if !v.IsSet(key) {
		return
	}
	if value := strings.TrimSpace(v.GetString(key)); value != "" {
		*dst = value
	}
}

func setDuration(v *viper.Viper, key string, dst *time.Duration) {
	if !v.IsSet(key) {
		return
	}
	if d, ok := config.ParseDuration(v.GetString(key)); ok {
		*dst = d
	}
}

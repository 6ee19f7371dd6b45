package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/catalog"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/config"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/images"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/llm"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/logging"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/search"
)

var (
	newProvider = llm.NewProvider
	newResolver = func(cfg config.Config, cat *catalog.Catalog, logger *slog.Logger) search.ImageResolver {
		return images.NewResolver(
			images.WithCatalog(cat),
			images.WithLogger(logger),
			images.WithUserAgent(cfg.UserAgent),
			images.WithTimeouts(cfg.PageFetchTimeout, cfg.ImageProbeTimeout),
			images.WithMaxHTMLBytes(cfg.MaxHTMLBytes),
			images.WithConcurrency(cfg.ResolveConcurrency),
		)
	}
)

func newSearchCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search for DC events and print the processed JSON payload",
		Example: `  eventsearch search "jazz this weekend"
  eventsearch search --local --pretty
  eventsearch search "museum exhibits" --provider anthropic --model claude-sonnet-4-5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := resolveConfig(v)
			if local, _ := cmd.Flags().GetBool("local"); local {
				cfg.LLMMode = llm.ModeLocal
			}
			logger := logging.New(cfg.LogLevel, "text", cmd.ErrOrStderr())

			llmCfg, err := cfg.LLM()
			if err != nil {
				return err
			}
			provider, err := newProvider(llmCfg)
			if err != nil {
				return err
			}
			cat, err := loadCatalog(cfg.ImageCatalogPath)
			if err != nil {
				return err
			}
			svc := search.NewService(provider, newResolver(cfg, cat, logger),
				search.WithLogger(logger),
				search.WithTimeout(cfg.LLMTimeout),
			)

			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			result, err := svc.Run(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			out := []byte(result.Payload)
			if pretty, _ := cmd.Flags().GetBool("pretty"); pretty {
				var buf bytes.Buffer
				if err := json.Indent(&buf, result.Payload, "", "  "); err == nil {
					out = buf.Bytes()
				}
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().String("provider", "", "agent provider: openai or anthropic")
	cmd.Flags().String("model", "", "model id")
	cmd.Flags().Duration("timeout", 0, "agent call timeout")
	cmd.Flags().Bool("local", false, "use the built-in sample events instead of a remote agent")
	cmd.Flags().Bool("pretty", false, "indent the JSON output")
	_ = v.BindPFlag("llm_provider", cmd.Flags().Lookup("provider"))
	_ = v.BindPFlag("llm_model", cmd.Flags().Lookup("model"))
	_ = v.BindPFlag("llm_timeout", cmd.Flags().Lookup("timeout"))
	return cmd
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(path)
}

package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/event"
)

type catalogMatch struct {
	Curated   string   `json:"curated"`
	Fallbacks []string `json:"fallbacks"`
	Default   string   `json:"default"`
}

func newCatalogCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the image catalog",
	}

	match := &cobra.Command{
		Use:   "match",
		Short: "Show which catalog images an event would fall back to",
		Example: `  eventsearch catalog match --title "Dupont Circle Farmers Market" --type outdoors
  eventsearch catalog match --term "jazz" --catalog ./catalog.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := resolveConfig(v)
			cat, err := loadCatalog(cfg.ImageCatalogPath)
			if err != nil {
				return err
			}
			title, _ := cmd.Flags().GetString("title")
			term, _ := cmd.Flags().GetString("term")
			eventType, _ := cmd.Flags().GetString("type")

			result := catalogMatch{
				Curated:   cat.Curated(optional(title), optional(eventType), term),
				Fallbacks: cat.Fallbacks(optional(eventType)),
				Default:   cat.DefaultImage(),
			}
			if result.Fallbacks == nil {
				result.Fallbacks = []string{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	match.Flags().String("title", "", "event title")
	match.Flags().String("term", "", "search term")
	match.Flags().String("type", "", "event type label")
	match.Flags().String("catalog", "", "YAML catalog overriding the built-in one")
	_ = v.BindPFlag("image_catalog_path", match.Flags().Lookup("catalog"))

	cmd.AddCommand(match)
	return cmd
}

func optional(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return event.String(value)
}

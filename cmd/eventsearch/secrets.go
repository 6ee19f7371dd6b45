package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/secrets"
)

func newSecretsCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Manage encrypted provider keys",
	}

	encrypt := &cobra.Command{
		Use:   "encrypt [value]",
		Short: "Encrypt an API key for use as an enc: environment value",
		Long: `Encrypt an API key with LLM_SECRETS_KEY. The output can be used as
OPENAI_API_KEY or ANTHROPIC_API_KEY. Reads the value from stdin when no
argument is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value string
			if len(args) > 0 {
				value = args[0]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				value = string(data)
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return fmt.Errorf("no value to encrypt")
			}
			sealed, err := secrets.Conceal(value, v.GetString("llm_secrets_key"))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), sealed)
			return err
		},
	}
	encrypt.Flags().String("key", "", "secrets key (defaults to "+secrets.SecretsKeyEnv+")")
	_ = v.BindPFlag("llm_secrets_key", encrypt.Flags().Lookup("key"))

	cmd.AddCommand(encrypt)
	return cmd
}

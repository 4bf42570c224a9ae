package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/devpack-ai/devpack/pkg/config"
	"github.com/devpack-ai/devpack/pkg/presenter"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Store the Anthropic API key used for agent-backed detection",
	Long: `Store the Anthropic API key in ~/.devpack/config.yaml so agent-backed
stack detection works without environment setup.

The key is resolved in this order:
  1. ANTHROPIC_API_KEY environment variable
  2. .devpack/config.yaml in the current directory
  3. ~/.devpack/config.yaml

Examples:
  devpack configure --api-key sk-ant-...
  devpack configure           (prompts for the key)
  devpack configure --show    (reports where the key resolves from)`,
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().String("api-key", "", "API key to store (prompted when omitted)")
	configureCmd.Flags().Bool("show", false, "Show where the API key currently resolves from")
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	show, _ := cmd.Flags().GetBool("show")
	if show {
		key, source := config.ResolveAPIKey()
		if key == "" {
			presenter.Warning("No Anthropic API key configured")
			return nil
		}
		presenter.Info(fmt.Sprintf("Anthropic API key resolved from %s", source))
		return nil
	}

	key, _ := cmd.Flags().GetString("api-key")
	if key == "" {
		key = presenter.Prompt("Anthropic API key")
	}
	if key == "" {
		return errors.New("no API key provided")
	}

	path, err := config.SaveAPIKey(key)
	if err != nil {
		presenter.Error(err, "Failed to save API key")
		os.Exit(1)
	}

	presenter.Success(fmt.Sprintf("Saved API key to %s", path))
	return nil
}

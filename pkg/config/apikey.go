// Package config resolves and stores the Anthropic API credential used by
// the agent-backed detector. Resolution walks an ordered fallback chain:
// process environment, project-local config, then user-global config. The
// resolved source is reported alongside the key for diagnostics.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	apiKeyEnv     = "ANTHROPIC_API_KEY"
	apiKeyField   = "anthropic_api_key"
	localConfig   = ".devpack/config.yaml"
	globalDirName = ".devpack"
	configName    = "config.yaml"
)

// Source identifies where the API key was resolved from.
type Source string

const (
	// SourceEnv means the key came from the process environment.
	SourceEnv Source = "environment variable"
	// SourceLocal means the key came from the project-local config file.
	SourceLocal Source = "project config (.devpack/config.yaml)"
	// SourceGlobal means the key came from the user-global config file.
	SourceGlobal Source = "user config (~/.devpack/config.yaml)"
	// SourceNone means no key was found anywhere.
	SourceNone Source = ""
)

// ResolveAPIKey returns the Anthropic API key and the source it was resolved
// from. An empty key with SourceNone means the credential is absent.
func ResolveAPIKey() (string, Source) {
	if key := os.Getenv(apiKeyEnv); key != "" {
		return key, SourceEnv
	}

	if key := readKeyFromFile(localConfig); key != "" {
		return key, SourceLocal
	}

	if path, err := globalConfigPath(); err == nil {
		if key := readKeyFromFile(path); key != "" {
			return key, SourceGlobal
		}
	}

	return "", SourceNone
}

// SaveAPIKey writes the key to the user-global config file with permissions
// restricted to the owner. Existing unrelated settings in the file are kept.
func SaveAPIKey(key string) (string, error) {
	path, err := globalConfigPath()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", errors.Wrap(err, "failed to create config directory")
	}

	settings := map[string]any{}
	if content, err := os.ReadFile(path); err == nil {
		// Best effort: a corrupt existing file is replaced rather than kept.
		_ = yaml.Unmarshal(content, &settings)
	}
	settings[apiKeyField] = key

	content, err := yaml.Marshal(settings)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode config")
	}

	if err := os.WriteFile(path, content, 0o600); err != nil {
		return "", errors.Wrap(err, "failed to write config file")
	}
	return path, nil
}

func globalConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	return filepath.Join(homeDir, globalDirName, configName), nil
}

func readKeyFromFile(path string) string {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return ""
	}
	return v.GetString(apiKeyField)
}

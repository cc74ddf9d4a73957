package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ajramos/inboxpilot/internal/config"
)

// Environment variables overriding the default file locations
const (
	EnvConfig      = "INBOXPILOT_CONFIG"
	EnvCredentials = "INBOXPILOT_CREDENTIALS"
	EnvToken       = "INBOXPILOT_TOKEN"
)

// getConfigPath returns the configuration file path using the following priority:
// 1. CLI flag
// 2. Environment variable INBOXPILOT_CONFIG
// 3. Default path ~/.config/inboxpilot/config.json
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envPath := os.Getenv(EnvConfig); envPath != "" {
		return expandPath(envPath)
	}

	return config.DefaultConfigPath()
}

// getCredentialsPath returns the OAuth client file path: flag, then
// INBOXPILOT_CREDENTIALS, then config, then ~/.config/inboxpilot/credentials.json
func getCredentialsPath(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envPath := os.Getenv(EnvCredentials); envPath != "" {
		return expandPath(envPath)
	}

	if configValue != "" {
		return expandPath(configValue)
	}

	credPath, _ := config.DefaultCredentialPaths()
	return credPath
}

// getTokenPath returns the token cache path with the same precedence as
// getCredentialsPath
func getTokenPath(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envPath := os.Getenv(EnvToken); envPath != "" {
		return expandPath(envPath)
	}

	if configValue != "" {
		return expandPath(configValue)
	}

	_, tokenPath := config.DefaultCredentialPaths()
	return tokenPath
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return home
	}

	return filepath.Join(home, path[2:])
}

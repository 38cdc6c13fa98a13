// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files and
// from a dotenv file. Each file in the directory holds one secret: the
// filename is the key name and the trimmed contents are the value.
//
// Recognized keys: ai-api-key, together-api-key, openai-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/pdiddy/filing-cloud/internal/logging"
)

// envKeys maps dotenv variable names to secret key names.
var envKeys = map[string]string{
	"AI_API_KEY":       "ai-api-key",
	"TOGETHER_API_KEY": "together-api-key",
	"OPENAI_API_KEY":   "openai-api-key",
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory is not an error; Load returns an empty map.
// Unreadable files are logged and skipped.
func Load(dir string, logger *log.Logger) (map[string]string, error) {
	logger = logging.OrDiscard(logger)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", "name", name, "err", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadEnv reads a dotenv file and returns the recognized keys under their
// secret names. A missing file yields an empty map.
func LoadEnv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}

	secrets := make(map[string]string)
	for envName, key := range envKeys {
		if v := strings.TrimSpace(vars[envName]); v != "" {
			secrets[key] = v
		}
	}
	return secrets, nil
}

// Merge combines secret maps. Later maps win on conflicting keys.
func Merge(maps ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// APIKey returns the key for a chat provider: the provider-specific key when
// present, otherwise the generic ai-api-key.
func APIKey(secrets map[string]string, provider string) string {
	if v := secrets[provider+"-api-key"]; v != "" {
		return v
	}
	return secrets["ai-api-key"]
}

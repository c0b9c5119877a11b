// Package provider holds the push-provider side helpers the host runtime
// needs: reading the provider's app configuration file.
package provider

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrConfigKeyNotFound is returned when a path does not resolve to a scalar value.
var ErrConfigKeyNotFound = errors.New("config key not found")

// AppConfig is a parsed provider services file (agconnect-services.json style).
// JSON is valid YAML, so both formats are accepted.
type AppConfig struct {
	root map[string]any
}

// LoadAppConfig reads and parses the file at path.
func LoadAppConfig(path string) (*AppConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read provider config %s: %w", path, err)
	}
	return ParseAppConfig(raw)
}

// ParseAppConfig parses raw file content.
func ParseAppConfig(raw []byte) (*AppConfig, error) {
	root := make(map[string]any)
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("failed to parse provider config: %w", err)
	}
	return &AppConfig{root: root}, nil
}

// GetString resolves a "/"-separated path such as "client/app_id".
// Numbers and booleans are returned in their text form.
func (c *AppConfig) GetString(key string) (string, error) {
	var node any = c.root
	for _, part := range strings.Split(key, "/") {
		m, ok := node.(map[string]any)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrConfigKeyNotFound, key)
		}
		node, ok = m[part]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrConfigKeyNotFound, key)
		}
	}

	switch v := node.(type) {
	case string:
		return v, nil
	case int, int64, float64, bool:
		return fmt.Sprint(v), nil
	default:
		return "", fmt.Errorf("%w: %s is not a scalar", ErrConfigKeyNotFound, key)
	}
}

package helpers

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/budgetq/internal/domain"
)

// ConfigToMap converts the config to the generic map shape of its YAML file.
func ConfigToMap(cfg domain.Config) (map[string]interface{}, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	var cfgMap map[string]interface{}
	if err := yaml.Unmarshal(raw, &cfgMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal to map: %w", err)
	}

	return cfgMap, nil
}

// LookupConfigValue resolves a dotted key such as "service.base_url".
func LookupConfigValue(cfg domain.Config, key string) (interface{}, error) {
	cfgMap, err := ConfigToMap(cfg)
	if err != nil {
		return nil, err
	}
	value, ok := TraverseNestedMap(cfgMap, strings.Split(key, "."))
	if !ok {
		return nil, fmt.Errorf("key %s not found", key)
	}
	return value, nil
}

// TraverseNestedMap retrieves a value from a nested map using a key path
// Returns the value and true if found, nil and false otherwise
func TraverseNestedMap(data interface{}, keyPath []string) (interface{}, bool) {
	if len(keyPath) == 0 {
		return data, true
	}

	switch node := data.(type) {
	case map[string]interface{}:
		next, exists := node[keyPath[0]]
		if !exists {
			return nil, false
		}
		return TraverseNestedMap(next, keyPath[1:])
	default:
		return nil, false
	}
}

package utils

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// LoadTOMLFile decodes a TOML file into v and returns the keys it did not recognise.
func LoadTOMLFile(path string, v any) ([]string, error) {
	meta, err := toml.DecodeFile(path, v)
	if err != nil {
		log.Warnf("TOML parsing error in %s: %v. Attempting partial recovery...", path, err)
		return nil, err
	}
	var unknown []string
	for _, key := range meta.Undecoded() {
		unknown = append(unknown, key.String())
	}
	return unknown, nil
}

// ParseTOMLWithRecovery decodes path into a generic map so that well formed
// sections can be salvaged when the typed decode fails.
func ParseTOMLWithRecovery(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	tree := make(map[string]any)
	if _, err := toml.Decode(string(data), &tree); err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v", path, err)
		return nil, err
	}
	return tree, nil
}

// ExtractSection returns the table named section.
func ExtractSection(data map[string]any, section string) (map[string]any, bool) {
	table, ok := data[section].(map[string]any)
	return table, ok
}

// Extract returns data[key] when it holds a T.
func Extract[T any](data map[string]any, key string) (T, bool) {
	val, ok := data[key].(T)
	return val, ok
}

// ExtractInt returns an integer value. TOML integers decode as int64.
func ExtractInt(data map[string]any, key string) (int, bool) {
	val, ok := Extract[int64](data, key)
	return int(val), ok
}

func ExtractBool(data map[string]any, key string) (bool, bool) {
	return Extract[bool](data, key)
}

func ExtractString(data map[string]any, key string) (string, bool) {
	return Extract[string](data, key)
}

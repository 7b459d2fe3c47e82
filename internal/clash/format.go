package clash

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// ValidateYAML reports whether content parses. Empty content is valid.
func ValidateYAML(content string) error {
	var node yaml.Node
	return yaml.Unmarshal([]byte(content), &node)
}

// FormatYAML re-serializes content with two-space indentation. Comments survive.
func FormatYAML(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(content), &node); err != nil {
		return "", err
	}
	out, err := encode(&node)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

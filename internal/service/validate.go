package service

import (
	"net/url"
	"regexp"
	"strings"
)

var idPattern = regexp.MustCompile(`^[a-z0-9.]+(-[a-z0-9.]+)*$`)

// SanitizeID trims surrounding whitespace and checks the id grammar. Nothing is lowercased:
// "My Provider!" is rejected rather than rewritten.
func SanitizeID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if !idPattern.MatchString(id) {
		return "", ErrInvalidID
	}
	return id, nil
}

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(raw string) (string, error) {
	target := strings.TrimSpace(raw)
	if target == "" {
		return "", ErrInvalidURL
	}
	parsed, err := url.Parse(target)
	if err != nil || parsed.Host == "" {
		return "", ErrInvalidURL
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return target, nil
	default:
		return "", ErrInvalidURL
	}
}

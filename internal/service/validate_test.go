package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeID(t *testing.T) {
	valid := []string{"my-provider.1", "a", "a.b", "v2-ray-01", "..."}
	for _, id := range valid {
		got, err := SanitizeID(id)
		assert.NoError(t, err, id)
		assert.Equal(t, id, got)
	}

	got, err := SanitizeID("  padded-id  ")
	assert.NoError(t, err)
	assert.Equal(t, "padded-id", got)

	invalid := []string{"My Provider!", "", "-lead", "trail-", "double--hyphen", "UPPER", "under_score", "a b"}
	for _, id := range invalid {
		_, err := SanitizeID(id)
		assert.ErrorIs(t, err, ErrInvalidID, id)
	}
}

func TestValidateURL(t *testing.T) {
	for _, raw := range []string{"https://example.com/sub?x=1", "http://127.0.0.1:8080/a", " https://example.com "} {
		_, err := ValidateURL(raw)
		assert.NoError(t, err, raw)
	}
	for _, raw := range []string{"", "example.com/path", "ftp://example.com", "/relative", "https://", "javascript:alert(1)"} {
		_, err := ValidateURL(raw)
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}
}

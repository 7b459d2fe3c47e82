package clash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestExtractProxiesKeepsOnlyProxies(t *testing.T) {
	input := []byte(`proxies:
  - {name: "a", type: ss, server: x, port: 1}
other: ignored
`)
	out, err := ExtractProxies(input)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Len(t, decoded, 1)
	assert.NotContains(t, decoded, "other")

	proxies, ok := decoded["proxies"].([]any)
	require.True(t, ok)
	require.Len(t, proxies, 1)
	assert.Equal(t, map[string]any{"name": "a", "type": "ss", "server": "x", "port": 1}, proxies[0])

	text := string(out)
	assert.Contains(t, text, "name: a")
	assert.NotContains(t, text, "{")
	assert.NotContains(t, text, "ignored")
}

func TestExtractProxiesExpandsAliases(t *testing.T) {
	input := []byte(`base: &base
  type: ss
  server: x
proxies:
  - &first
    name: a
    port: 1
  - *first
`)
	out, err := ExtractProxies(input)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "&")
	assert.NotContains(t, string(out), "*")

	var decoded struct {
		Proxies []map[string]any `yaml:"proxies"`
	}
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	require.Len(t, decoded.Proxies, 2)
	assert.Equal(t, decoded.Proxies[0], decoded.Proxies[1])
}

func TestExtractProxiesQuotesOnlyWhenNeeded(t *testing.T) {
	out, err := ExtractProxies([]byte(`proxies:
  - name: "plain"
    password: "123"
`))
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "name: plain")
	assert.Contains(t, text, `password: "123"`)
}

func TestExtractProxiesKeepsYAML11BooleansQuoted(t *testing.T) {
	out, err := ExtractProxies([]byte(`proxies:
  - name: a
    password: 'on'
    udp: 'no'
    flag: "Y"
    uptime: "1:20"
    tfo: true
`))
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, `password: "on"`)
	assert.Contains(t, text, `udp: "no"`)
	assert.Contains(t, text, `flag: "Y"`)
	assert.Contains(t, text, `uptime: "1:20"`)
	assert.Contains(t, text, "tfo: true\n")

	var decoded struct {
		Proxies []map[string]any `yaml:"proxies"`
	}
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	require.Len(t, decoded.Proxies, 1)
	assert.Equal(t, "on", decoded.Proxies[0]["password"])
	assert.Equal(t, "no", decoded.Proxies[0]["udp"])
	assert.Equal(t, true, decoded.Proxies[0]["tfo"])
}

func TestExtractProxiesAppliesMergeKeys(t *testing.T) {
	out, err := ExtractProxies([]byte(`common: &c {type: ss, server: x, port: 1}
extra: &e {cipher: aes-128-gcm, port: 2}
proxies:
  - name: a
    <<: *c
    port: 443
  - name: b
    <<: [*c, *e]
`))
	require.NoError(t, err)
	text := string(out)
	assert.NotContains(t, text, "<<")
	assert.NotContains(t, text, "!!merge")

	var decoded struct {
		Proxies []map[string]any `yaml:"proxies"`
	}
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	require.Len(t, decoded.Proxies, 2)
	assert.Equal(t, map[string]any{"name": "a", "type": "ss", "server": "x", "port": 443}, decoded.Proxies[0])
	assert.Equal(t, map[string]any{"name": "b", "type": "ss", "server": "x", "port": 1, "cipher": "aes-128-gcm"}, decoded.Proxies[1])

	// merged keys keep their position; an explicit key after the merge overrides in place
	first := text[:strings.Index(text, "- name: b")]
	assert.Less(t, strings.Index(first, "name: a"), strings.Index(first, "type: ss"))
	assert.Less(t, strings.Index(first, "server: x"), strings.Index(first, "port: 443"))
	assert.Equal(t, 1, strings.Count(first, "port:"))
}

func TestExtractProxiesErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  error
	}{
		{name: "missing", input: "other: 1\n", want: ErrMissingProxies},
		{name: "not a list", input: "proxies: nope\n", want: ErrProxiesNotSequence},
		{name: "mapping proxies", input: "proxies:\n  a: 1\n", want: ErrProxiesNotSequence},
		{name: "scalar document", input: "just text\n", want: ErrNotMapping},
		{name: "empty", input: "", want: ErrNotMapping},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExtractProxies([]byte(tc.input))
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := ExtractProxies([]byte("proxies: [\n"))
	assert.Error(t, err)
}

func TestParseSumType(t *testing.T) {
	switch doc := Parse([]byte("proxies: []\n")).(type) {
	case Valid:
		require.NotNil(t, doc.Proxies)
		assert.Equal(t, yaml.SequenceNode, doc.Proxies.Kind)
	default:
		t.Fatalf("unexpected document %T", doc)
	}

	_, malformed := Parse([]byte("a: [1, 2\n")).(Malformed)
	assert.True(t, malformed)
}

func TestValidateAndFormatYAML(t *testing.T) {
	assert.NoError(t, ValidateYAML(""))
	assert.NoError(t, ValidateYAML("a: 1\n"))
	assert.Error(t, ValidateYAML("a: [1, 2\n"))

	formatted, err := FormatYAML("a:\n        b: 1\n")
	require.NoError(t, err)
	assert.Equal(t, "a:\n  b: 1\n", formatted)

	formatted, err = FormatYAML("  \n")
	require.NoError(t, err)
	assert.Empty(t, formatted)

	_, err = FormatYAML("a: [1, 2\n")
	assert.Error(t, err)
}

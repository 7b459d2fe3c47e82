// 文件路径: internal/clash/document.go
// 模块说明: Clash 订阅文档的结构化表示：要么是合法的映射文档，要么是无法解析的内容。
package clash

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingProxies indicates the document has no proxies key.
	ErrMissingProxies = errors.New("clash: missing proxies field / 缺少 proxies 字段")
	// ErrProxiesNotSequence indicates proxies exists but is not a list.
	ErrProxiesNotSequence = errors.New("clash: proxies is not a list / proxies 不是数组")
	// ErrNotMapping indicates the top level is not a mapping.
	ErrNotMapping = errors.New("clash: document is not a mapping / 文档顶层不是映射")
)

// Document is either Valid or Malformed.
type Document interface {
	isDocument()
}

// Valid is a top-level mapping. Proxies is nil when the key is absent.
type Valid struct {
	Root    *yaml.Node
	Proxies *yaml.Node
}

// Malformed carries the reason a payload could not be used as a document.
type Malformed struct {
	Err error
}

func (Valid) isDocument()     {}
func (Malformed) isDocument() {}

// Parse decodes the first YAML document in data.
func Parse(data []byte) Document {
	var file yaml.Node
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Malformed{Err: err}
	}
	if file.Kind != yaml.DocumentNode || len(file.Content) == 0 {
		return Malformed{Err: ErrNotMapping}
	}
	root := file.Content[0]
	if root.Kind != yaml.MappingNode {
		return Malformed{Err: ErrNotMapping}
	}
	doc := Valid{Root: root}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "proxies" {
			doc.Proxies = root.Content[i+1]
			break
		}
	}
	return doc
}

// ExtractProxies returns a document holding only the proxies list. Aliases and merge keys are expanded,
// comments dropped and scalar quoting reduced to what the value needs.
func ExtractProxies(data []byte) ([]byte, error) {
	var doc Valid
	switch parsed := Parse(data).(type) {
	case Malformed:
		return nil, parsed.Err
	case Valid:
		doc = parsed
	}
	if doc.Proxies == nil {
		return nil, ErrMissingProxies
	}
	proxies := flatten(doc.Proxies)
	if proxies.Kind != yaml.SequenceNode {
		return nil, ErrProxiesNotSequence
	}
	out := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: "proxies"},
			proxies,
		},
	}
	return encode(out)
}

// flatten deep-copies n, resolving aliases and merge keys and clearing anchors, comments and styles.
func flatten(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind == yaml.MappingNode {
		return flattenMapping(n)
	}
	cp := &yaml.Node{
		Kind:  n.Kind,
		Tag:   n.ShortTag(),
		Value: n.Value,
	}
	if n.Kind == yaml.ScalarNode {
		switch {
		case n.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0:
			cp.Style = yaml.LiteralStyle
		case cp.Tag == "!!str" && ambiguousInYAML11(n.Value):
			// the encoder only checks the 1.2 resolver; older readers would see a bool or number.
			cp.Style = yaml.DoubleQuotedStyle
		}
	}
	if len(n.Content) > 0 {
		cp.Content = make([]*yaml.Node, 0, len(n.Content))
		for _, child := range n.Content {
			cp.Content = append(cp.Content, flatten(child))
		}
	}
	return cp
}

// flattenMapping applies "<<" merge keys. Explicit keys win over merged ones, and earlier
// merge sources win over later ones.
func flattenMapping(n *yaml.Node) *yaml.Node {
	cp := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	valueAt := make(map[string]int)
	put := func(key, value *yaml.Node, override bool) {
		if key.Kind == yaml.ScalarNode {
			if i, ok := valueAt[key.Value]; ok {
				if override {
					cp.Content[i] = value
				}
				return
			}
			valueAt[key.Value] = len(cp.Content) + 1
		}
		cp.Content = append(cp.Content, key, value)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if key.Kind == yaml.ScalarNode && key.ShortTag() == "!!merge" {
			for _, source := range mergeSources(value) {
				merged := flatten(source)
				if merged.Kind != yaml.MappingNode {
					continue
				}
				for j := 0; j+1 < len(merged.Content); j += 2 {
					put(merged.Content[j], merged.Content[j+1], false)
				}
			}
			continue
		}
		put(flatten(key), flatten(value), true)
	}
	return cp
}

func mergeSources(n *yaml.Node) []*yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	if n.Kind == yaml.SequenceNode {
		return n.Content
	}
	return []*yaml.Node{n}
}

var base60Pattern = regexp.MustCompile(`^[-+]?[0-9][0-9_]*(?::[0-5]?[0-9])+(?:\.[0-9_]*)?$`)

// ambiguousInYAML11 reports strings a YAML 1.1 reader resolves to a bool, null or sexagesimal number.
func ambiguousInYAML11(value string) bool {
	switch strings.ToLower(value) {
	case "y", "yes", "n", "no", "on", "off", "true", "false", "null", "~":
		return true
	}
	return base60Pattern.MatchString(value)
}

func encode(node *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

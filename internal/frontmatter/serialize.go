package frontmatter

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultKeySchedule is the canonical emission order for recognized keys.
// Keys outside the schedule follow in their insertion order.
var DefaultKeySchedule = []string{
	"title",
	"sidebar_label",
	"sidebar_position",
	"description",
	"keywords",
	"author",
	"datePublished",
	"dateModified",
	"structuredData",
}

// Serialize renders a front matter block and body back into document text.
//
// The body is appended verbatim. An empty (or nil) block yields the body
// alone, with no delimiters. Output is deterministic for identical inputs:
// schedule keys first, remaining keys in insertion order, sequences in block
// style, scalars quoted per YAML rules when needed.
func Serialize(block *Block, body string, schedule []string) (string, error) {
	if block.Len() == 0 {
		return body, nil
	}

	node := buildMapping(block, schedule)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return "", fmt.Errorf("frontmatter: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("frontmatter: close encoder: %w", err)
	}

	return delimiter + "\n" + buf.String() + delimiter + "\n" + body, nil
}

// buildMapping constructs the ordered yaml.Node tree. Only the top level is
// reordered by the schedule; nested mappings keep pure insertion order.
func buildMapping(block *Block, schedule []string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}

	emitted := make(map[string]struct{}, block.Len())
	appendKey := func(key string) {
		v, ok := block.Get(key)
		if !ok {
			return
		}
		if _, done := emitted[key]; done {
			return
		}
		emitted[key] = struct{}{}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			buildValue(v),
		)
	}

	for _, key := range schedule {
		appendKey(key)
	}
	for _, key := range block.Keys() {
		appendKey(key)
	}
	return node
}

func buildValue(v Value) *yaml.Node {
	switch v.Kind() {
	case KindSequence:
		seq := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range v.AsSequence() {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: item})
		}
		return seq
	case KindMapping:
		inner := &yaml.Node{Kind: yaml.MappingNode}
		m := v.AsMapping()
		for _, key := range m.Keys() {
			mv, _ := m.Get(key)
			inner.Content = append(inner.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: key},
				buildValue(mv),
			)
		}
		return inner
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: v.AsScalar()}
	}
}

package frontmatter

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/ansuz/internal/apperr"
)

const delimiter = "---"

// Parse splits a document into its front matter block and body.
//
// A front matter block is recognized only when the document starts with a
// "---" line; the block runs to the next line consisting of exactly "---".
// The body is everything after that closing line and is returned verbatim,
// byte for byte. Documents without an opening delimiter (or without a
// closing one) have no front matter: the whole text is body.
//
// A present but undecodable block returns apperr.ErrMalformedFrontmatter.
func Parse(data []byte) (*Block, string, error) {
	text := string(data)

	open, rest, ok := splitLine(text)
	if !ok || strings.TrimRight(open, "\r") != delimiter {
		return nil, text, nil
	}

	// Scan for the closing delimiter line.
	var yamlBlock strings.Builder
	remaining := rest
	for {
		line, after, more := splitLine(remaining)
		if strings.TrimRight(line, "\r") == delimiter {
			block, err := decodeBlock([]byte(yamlBlock.String()))
			if err != nil {
				return nil, "", err
			}
			return block, after, nil
		}
		if !more {
			// No closing delimiter: not front matter.
			return nil, text, nil
		}
		yamlBlock.WriteString(line)
		yamlBlock.WriteString("\n")
		remaining = after
	}
}

// splitLine cuts text at the first newline. ok is false when the text holds
// no newline (line is then the whole text and rest is empty).
func splitLine(text string) (line, rest string, ok bool) {
	i := strings.IndexByte(text, '\n')
	if i < 0 {
		return text, "", false
	}
	return text[:i], text[i+1:], true
}

// decodeBlock parses the YAML between the delimiters into a Block,
// preserving key order via the yaml.Node API.
func decodeBlock(src []byte) (*Block, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrMalformedFrontmatter, err)
	}
	if len(doc.Content) == 0 {
		// Empty block ("---" immediately followed by "---").
		return NewBlock(), nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return NewBlock(), nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level is %s, want mapping", apperr.ErrMalformedFrontmatter, nodeKind(root))
	}
	return decodeMapping(root)
}

func decodeMapping(node *yaml.Node) (*Block, error) {
	block := NewBlock()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: non-scalar mapping key", apperr.ErrMalformedFrontmatter)
		}
		v, err := decodeValue(valNode)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", keyNode.Value, err)
		}
		block.Set(keyNode.Value, v)
	}
	return block, nil
}

func decodeValue(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return Scalar(node.Value), nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("%w: sequence item is %s, want scalar", apperr.ErrMalformedFrontmatter, nodeKind(item))
			}
			items = append(items, strings.TrimSpace(item.Value))
		}
		return Sequence(items), nil
	case yaml.MappingNode:
		b, err := decodeMapping(node)
		if err != nil {
			return Value{}, err
		}
		return Mapping(b), nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported %s node", apperr.ErrMalformedFrontmatter, nodeKind(node))
	}
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	}
	return "unknown"
}

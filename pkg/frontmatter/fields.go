package frontmatter

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fields is the ordered key/value mapping held in a frontmatter block.
//
// Fields keeps the parsed yaml document so that key order, comments and
// scalar styles survive a rewrite. Only keys touched through Set, SetStrings
// or Delete change on output.
type Fields struct {
	doc *yaml.Node
}

// NewFields returns an empty mapping.
func NewFields() *Fields {
	return &Fields{doc: newDocument()}
}

func newDocument() *yaml.Node {
	return &yaml.Node{
		Kind: yaml.DocumentNode,
		Content: []*yaml.Node{
			{Kind: yaml.MappingNode, Tag: "!!map"},
		},
	}
}

// parseFields parses raw yaml into Fields. ok is false when the content is
// not a yaml mapping or cannot be decoded into one.
func parseFields(raw []byte) (*Fields, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return NewFields(), true
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, false
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return NewFields(), true
	}
	root := doc.Content[0]
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, false
	}

	// Decoding into a map rejects duplicate keys and non-string keys.
	var probe map[string]any
	if err := root.Decode(&probe); err != nil {
		return nil, false
	}
	return &Fields{doc: &doc}, true
}

func (f *Fields) root() *yaml.Node {
	if f == nil || f.doc == nil {
		return nil
	}
	if len(f.doc.Content) == 0 {
		f.doc.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}
	return f.doc.Content[0]
}

// Len returns the number of keys.
func (f *Fields) Len() int {
	root := f.root()
	if root == nil {
		return 0
	}
	return len(root.Content) / 2
}

// Keys returns the keys in document order.
func (f *Fields) Keys() []string {
	root := f.root()
	if root == nil {
		return nil
	}
	keys := make([]string, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keys = append(keys, root.Content[i].Value)
	}
	return keys
}

// Has reports whether key is present, including keys with a null value.
func (f *Fields) Has(key string) bool {
	return mappingValue(f.root(), key) != nil
}

// Node returns the raw yaml value node for key, or nil when absent.
func (f *Fields) Node(key string) *yaml.Node {
	return mappingValue(f.root(), key)
}

// Get decodes the value stored under key. Scalars decode to their natural Go
// type (string, int, bool, float64, nil) and sequences to []any.
func (f *Fields) Get(key string) (any, bool) {
	val := mappingValue(f.root(), key)
	if val == nil {
		return nil, false
	}
	var out any
	if err := val.Decode(&out); err != nil {
		return nil, false
	}
	return out, true
}

// Set stores value under key, replacing the existing value in place or
// appending the key at the end of the mapping.
func (f *Fields) Set(key string, value any) error {
	root := f.root()
	if root == nil {
		return fmt.Errorf("set %q: %w", key, ErrNilFields)
	}
	var node yaml.Node
	if err := node.Encode(value); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	setNodeInMapping(root, key, &node)
	return nil
}

// SetStrings stores values as a sequence of strings under key.
//
// When key already holds a sequence, that node is reused so its flow or block
// style is kept, and items whose text is unchanged keep their comments.
func (f *Fields) SetStrings(key string, values []string) {
	root := f.root()
	if root == nil {
		return
	}

	seq := mappingValue(root, key)
	if seq == nil || seq.Kind != yaml.SequenceNode {
		seq = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, v := range values {
			seq.Content = append(seq.Content, stringNode(v))
		}
		setNodeInMapping(root, key, seq)
		return
	}

	existing := make(map[string][]*yaml.Node)
	for _, item := range seq.Content {
		if item == nil || item.Kind != yaml.ScalarNode || item.ShortTag() != "!!str" {
			continue
		}
		existing[item.Value] = append(existing[item.Value], item)
	}

	next := make([]*yaml.Node, 0, len(values))
	for _, v := range values {
		if nodes := existing[v]; len(nodes) > 0 {
			next = append(next, nodes[0])
			existing[v] = nodes[1:]
			continue
		}
		next = append(next, stringNode(v))
	}
	seq.Tag = "!!seq"
	seq.Content = next
}

// Delete removes key. It reports whether the key was present.
func (f *Fields) Delete(key string) bool {
	return removeFromMapping(f.root(), key)
}

// Map decodes the whole mapping. Key order is not retained.
func (f *Fields) Map() (map[string]any, error) {
	out := make(map[string]any)
	root := f.root()
	if root == nil || len(root.Content) == 0 {
		return out, nil
	}
	if err := root.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode frontmatter: %w", err)
	}
	return out, nil
}

// Marshal serializes the mapping as block yaml with trailing blank lines
// trimmed and exactly one final newline. An empty mapping yields "".
func (f *Fields) Marshal() (string, error) {
	if f.Len() == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f.doc); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}

	out := strings.TrimRight(buf.String(), " \t\r\n")
	if out == "" || out == "{}" {
		return "", nil
	}
	return out + "\n", nil
}

func stringNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func mappingValue(root *yaml.Node, key string) *yaml.Node {
	if root == nil || root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		k := root.Content[i]
		if k != nil && k.Kind == yaml.ScalarNode && k.Value == key {
			return root.Content[i+1]
		}
	}
	return nil
}

func setNodeInMapping(root *yaml.Node, key string, node *yaml.Node) {
	if root == nil || root.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		k := root.Content[i]
		if k != nil && k.Kind == yaml.ScalarNode && k.Value == key {
			root.Content[i+1] = node
			return
		}
	}
	root.Content = append(root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key, Tag: "!!str"},
		node,
	)
}

func removeFromMapping(root *yaml.Node, key string) bool {
	if root == nil || root.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		k := root.Content[i]
		if k != nil && k.Kind == yaml.ScalarNode && k.Value == key {
			root.Content = append(root.Content[:i], root.Content[i+2:]...)
			return true
		}
	}
	return false
}

// Package frontmatter implements the front matter merge engine: parsing a
// document's YAML metadata block, merging it with a candidate update under
// per-key policies, and serializing the result back without touching the
// document body.
package frontmatter

import "strings"

// Kind discriminates the variants a front matter value can take.
type Kind int

const (
	// KindScalar is a single string value. Numbers and booleans from YAML
	// are kept as their string spelling.
	KindScalar Kind = iota
	// KindSequence is an ordered list of strings (e.g. keywords).
	KindSequence
	// KindMapping is a nested ordered block (e.g. structuredData).
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	}
	return "unknown"
}

// Value is a tagged variant: exactly one of the three payloads is set,
// according to Kind. Values are treated as immutable once constructed.
type Value struct {
	kind    Kind
	scalar  string
	seq     []string
	mapping *Block
}

// Scalar returns a scalar Value. Leading and trailing whitespace is trimmed;
// this is the one documented normalization the round-trip law allows.
func Scalar(s string) Value {
	return Value{kind: KindScalar, scalar: strings.TrimSpace(s)}
}

// Sequence returns a sequence Value over a copy of items.
func Sequence(items []string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: KindSequence, seq: cp}
}

// Mapping returns a mapping Value. A nil block is replaced with an empty one.
func Mapping(b *Block) Value {
	if b == nil {
		b = NewBlock()
	}
	return Value{kind: KindMapping, mapping: b}
}

// Kind reports which variant this value holds.
func (v Value) Kind() Kind { return v.kind }

// AsScalar returns the scalar payload; empty string for other kinds.
func (v Value) AsScalar() string { return v.scalar }

// AsSequence returns a copy of the sequence payload; nil for other kinds.
func (v Value) AsSequence() []string {
	if v.kind != KindSequence {
		return nil
	}
	cp := make([]string, len(v.seq))
	copy(cp, v.seq)
	return cp
}

// AsMapping returns the nested block; nil for other kinds.
func (v Value) AsMapping() *Block {
	if v.kind != KindMapping {
		return nil
	}
	return v.mapping
}

// Equal reports deep equality of two values.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindScalar:
		return v.scalar == o.scalar
	case KindSequence:
		if len(v.seq) != len(o.seq) {
			return false
		}
		for i := range v.seq {
			if v.seq[i] != o.seq[i] {
				return false
			}
		}
		return true
	case KindMapping:
		return v.mapping.Equal(o.mapping)
	}
	return false
}

// Block is an ordered mapping from keys to Values. Iteration order is
// insertion order, which keeps repeated serializations byte-identical.
type Block struct {
	keys   []string
	values map[string]Value
}

// NewBlock returns an empty Block.
func NewBlock() *Block {
	return &Block{values: make(map[string]Value)}
}

// Len returns the number of keys. A nil block has length zero.
func (b *Block) Len() int {
	if b == nil {
		return 0
	}
	return len(b.keys)
}

// Has reports whether key is present.
func (b *Block) Has(key string) bool {
	if b == nil {
		return false
	}
	_, ok := b.values[key]
	return ok
}

// Get returns the value for key and whether it was present.
func (b *Block) Get(key string) (Value, bool) {
	if b == nil {
		return Value{}, false
	}
	v, ok := b.values[key]
	return v, ok
}

// Set stores v under key. An existing key keeps its position; a new key is
// appended.
func (b *Block) Set(key string, v Value) {
	if _, ok := b.values[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.values[key] = v
}

// Keys returns the keys in insertion order.
func (b *Block) Keys() []string {
	if b == nil {
		return nil
	}
	cp := make([]string, len(b.keys))
	copy(cp, b.keys)
	return cp
}

// Equal reports whether two blocks hold the same keys and values. Key order
// is not part of equality; it is a serialization concern.
func (b *Block) Equal(o *Block) bool {
	if b.Len() != o.Len() {
		return false
	}
	if b == nil || o == nil {
		return true // both empty
	}
	for k, v := range b.values {
		ov, ok := o.values[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy. Cloning nil returns an empty block.
func (b *Block) Clone() *Block {
	out := NewBlock()
	if b == nil {
		return out
	}
	for _, k := range b.keys {
		v := b.values[k]
		if v.kind == KindMapping {
			v = Mapping(v.mapping.Clone())
		} else if v.kind == KindSequence {
			v = Sequence(v.seq)
		}
		out.Set(k, v)
	}
	return out
}

package frontmatter

import "strings"

// Strategy is the per-key merge rule.
type Strategy int

const (
	// FillIfMissing keeps the existing value when present, otherwise
	// takes the candidate. The default.
	FillIfMissing Strategy = iota
	// Overwrite takes the candidate value whenever the candidate has one.
	Overwrite
	// UnionSequence merges two sequences, deduplicating case-insensitively
	// on the trimmed form. Existing items keep their order and casing; new
	// items append in candidate order.
	UnionSequence
	// PreserveAlways never lets the merge engine touch the key.
	PreserveAlways
)

func (s Strategy) String() string {
	switch s {
	case FillIfMissing:
		return "fillIfMissing"
	case Overwrite:
		return "overwrite"
	case UnionSequence:
		return "unionSequence"
	case PreserveAlways:
		return "preserveAlways"
	}
	return "unknown"
}

// Policy maps keys to strategies. Nested mapping fields are looked up by
// their own field name, so one policy covers both levels.
type Policy struct {
	Default Strategy
	Keys    map[string]Strategy
}

// DefaultPolicy reflects how the enhancement pipeline treats the recognized
// key schedule: titles and navigation metadata are manually curated, dates
// fill in only when missing, and keywords accumulate.
func DefaultPolicy() Policy {
	return Policy{
		Default: FillIfMissing,
		Keys: map[string]Strategy{
			"title":            PreserveAlways,
			"sidebar_label":    PreserveAlways,
			"sidebar_position": PreserveAlways,
			"keywords":         UnionSequence,
			"description":      FillIfMissing,
			"dateModified":     Overwrite,
		},
	}
}

func (p Policy) strategyFor(key string) Strategy {
	if s, ok := p.Keys[key]; ok {
		return s
	}
	return p.Default
}

// Conflict reports a merge decision worth surfacing to the user: the two
// sides disagreed in a way the policy resolved silently in favor of the
// existing value.
type Conflict struct {
	Path      string `json:"path"` // dotted key path, e.g. "structuredData.type"
	Existing  string `json:"existing"`
	Candidate string `json:"candidate"`
	Reason    string `json:"reason"`
}

// Merge combines existing front matter with a candidate update under pol.
//
// Merge is pure: inputs are never mutated, the result shares no nested state
// with them, and identical inputs always produce identical output. A nil
// existing block is treated as empty. Keys absent from both sides stay
// absent.
func Merge(existing, candidate *Block, pol Policy) (*Block, []Conflict) {
	out, conflicts := mergeBlocks("", existing, candidate, pol)
	return out, conflicts
}

func mergeBlocks(prefix string, existing, candidate *Block, pol Policy) (*Block, []Conflict) {
	out := NewBlock()
	var conflicts []Conflict

	apply := func(key string) {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		ev, eok := existing.Get(key)
		cv, cok := candidate.Get(key)

		switch strat := pol.strategyFor(key); {
		case eok && !cok:
			out.Set(key, cloneValue(ev))

		case !eok && cok:
			if strat == PreserveAlways {
				return // the engine never writes this key
			}
			if strat == UnionSequence {
				merged, cs := unionSequences(path, Value{kind: KindSequence}, cv)
				out.Set(key, merged)
				conflicts = append(conflicts, cs...)
				return
			}
			out.Set(key, cloneValue(cv))

		case eok && cok:
			merged, cs := mergeValues(path, strat, ev, cv, pol)
			out.Set(key, merged)
			conflicts = append(conflicts, cs...)
		}
	}

	for _, key := range existing.Keys() {
		apply(key)
	}
	for _, key := range candidate.Keys() {
		if !existing.Has(key) {
			apply(key)
		}
	}
	return out, conflicts
}

func mergeValues(path string, strat Strategy, ev, cv Value, pol Policy) (Value, []Conflict) {
	if strat == PreserveAlways {
		return cloneValue(ev), nil
	}

	// Nested mappings merge recursively regardless of the outer strategy,
	// so unspecified nested fields survive from the existing side.
	if ev.Kind() == KindMapping && cv.Kind() == KindMapping {
		merged, cs := mergeBlocks(path, ev.AsMapping(), cv.AsMapping(), pol)
		return Mapping(merged), cs
	}

	if strat == UnionSequence {
		return unionSequences(path, ev, cv)
	}

	// Shape mismatch: keep the existing value and report it.
	if ev.Kind() != cv.Kind() {
		return cloneValue(ev), []Conflict{{
			Path:      path,
			Existing:  describe(ev),
			Candidate: describe(cv),
			Reason:    "value shapes differ (" + ev.Kind().String() + " vs " + cv.Kind().String() + ")",
		}}
	}

	switch strat {
	case Overwrite:
		return cloneValue(cv), nil
	default: // FillIfMissing
		var cs []Conflict
		if lastSegment(path) == "type" && !ev.Equal(cv) {
			cs = append(cs, Conflict{
				Path:      path,
				Existing:  describe(ev),
				Candidate: describe(cv),
				Reason:    "type mismatch, existing value kept",
			})
		}
		return cloneValue(ev), cs
	}
}

// unionSequences merges two values as sequences. Scalars coerce to sequences
// by splitting on commas (legacy documents carry keywords as one
// comma-separated string); mappings do not coerce and keep the existing side.
func unionSequences(path string, ev, cv Value) (Value, []Conflict) {
	es, eok := coerceSequence(ev)
	cs, cok := coerceSequence(cv)
	if !eok || !cok {
		return cloneValue(ev), []Conflict{{
			Path:      path,
			Existing:  describe(ev),
			Candidate: describe(cv),
			Reason:    "unionSequence needs sequences, existing value kept",
		}}
	}

	seen := make(map[string]struct{}, len(es)+len(cs))
	var out []string
	for _, lst := range [][]string{es, cs} {
		for _, item := range lst {
			norm := strings.ToLower(strings.TrimSpace(item))
			if norm == "" {
				continue
			}
			if _, dup := seen[norm]; dup {
				continue
			}
			seen[norm] = struct{}{}
			out = append(out, strings.TrimSpace(item))
		}
	}
	return Sequence(out), nil
}

func coerceSequence(v Value) ([]string, bool) {
	switch v.Kind() {
	case KindSequence:
		return v.AsSequence(), true
	case KindScalar:
		if v.AsScalar() == "" {
			return nil, true
		}
		parts := strings.Split(v.AsScalar(), ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func cloneValue(v Value) Value {
	switch v.Kind() {
	case KindSequence:
		return Sequence(v.seq)
	case KindMapping:
		return Mapping(v.mapping.Clone())
	default:
		return v
	}
}

func describe(v Value) string {
	switch v.Kind() {
	case KindScalar:
		return v.AsScalar()
	case KindSequence:
		return "[" + strings.Join(v.seq, ", ") + "]"
	case KindMapping:
		return "{" + strings.Join(v.mapping.Keys(), ", ") + "}"
	}
	return ""
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}

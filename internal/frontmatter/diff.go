package frontmatter

// Change describes one top-level key difference between two blocks.
type Change struct {
	Key  string `json:"key"`
	Kind string `json:"kind"` // "added" or "updated"
}

// Diff reports which top-level keys of after differ from before, in after's
// key order. Keys only ever gain or change under a merge, so removals are
// not modeled.
func Diff(before, after *Block) []Change {
	var out []Change
	for _, key := range after.Keys() {
		av, _ := after.Get(key)
		bv, ok := before.Get(key)
		switch {
		case !ok:
			out = append(out, Change{Key: key, Kind: "added"})
		case !bv.Equal(av):
			out = append(out, Change{Key: key, Kind: "updated"})
		}
	}
	return out
}

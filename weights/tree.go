// Package weights ingests an externally trained checkpoint into the
// nested parameter tree the model packages are populated from: key
// normalization (wrapper-sequential flattening, identifier-style
// conversion, tensor layout conversion) followed by reflect-tag-driven
// struct population (spec.md §4.9).
package weights

import (
	"sort"
	"strings"

	"github.com/ace-step/aceinfer/ml"
)

// Tree is a flat, dotted-key parameter map — the "nested tree" of
// spec.md §3 represented the way it is both read from and written to: a
// map keyed by the full dotted path, since every consumer (population,
// lookup helpers, prefix stripping) addresses tensors by full path rather
// than walking nested maps.
type Tree map[string]*ml.Array

// Keys returns the tree's keys in sorted order, for deterministic
// iteration in logs and tests.
func (t Tree) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SubTree returns the sub-tree whose keys start with prefix+".", with the
// prefix stripped — spec.md §4.9's "variant entry point" for a
// `decoder.`-prefixed sub-checkpoint. Returns the original tree unchanged
// if no key carries the prefix.
func (t Tree) SubTree(prefix string) Tree {
	full := prefix + "."
	out := make(Tree)
	found := false
	for k, v := range t {
		if strings.HasPrefix(k, full) {
			out[strings.TrimPrefix(k, full)] = v
			found = true
		}
	}
	if !found {
		return t
	}
	return out
}

// Find returns the first tensor whose key contains substr, used by the
// null-condition-embedding and silence-latent lookup helpers (spec.md
// §4.9).
func (t Tree) Find(substr string) (*ml.Array, bool) {
	for _, k := range t.Keys() {
		if strings.Contains(k, substr) {
			return t[k], true
		}
	}
	return nil, false
}

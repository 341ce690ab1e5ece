// Package kvcache implements the DiT decoder's cross-attention cache: the
// per-layer (K, V) pair computed once from the encoder's hidden states and
// reused for every subsequent diffusion step of one run (spec.md §3, §4.3,
// §4.7). Unlike the teacher's causal-LM sequence cache, there is nothing
// to evict or slide here — the whole cache lives for exactly one run and
// is invalidated wholesale when the encoder input changes or CFG doubles
// the batch.
package kvcache

import "github.com/ace-step/aceinfer/ml"

type entry struct {
	k, v *ml.Array
}

// Cross is a per-layer cross-attention cache, owned by the stepper and
// scoped to a single generation run (spec.md §3's "Ownership").
type Cross struct {
	enabled bool
	entries map[int]entry
}

// NewCross creates a cache. enabled=false makes every Get report a miss
// and every Set a no-op, matching the "disabled under CFG" rule of
// spec.md §4.7.
func NewCross(enabled bool) *Cross {
	return &Cross{enabled: enabled, entries: make(map[int]entry)}
}

// Get returns the cached (K, V) for layer, or ok=false on a miss or when
// the cache is disabled.
func (c *Cross) Get(layer int) (k, v *ml.Array, ok bool) {
	if !c.enabled {
		return nil, nil, false
	}
	e, found := c.entries[layer]
	if !found {
		return nil, nil, false
	}
	return e.k, e.v, true
}

// Set populates layer's cached (K, V). A no-op when the cache is disabled.
func (c *Cross) Set(layer int, k, v *ml.Array) {
	if !c.enabled {
		return
	}
	c.entries[layer] = entry{k: k, v: v}
}

// Reset drops every cached entry, used when the encoder input changes
// within a run.
func (c *Cross) Reset() {
	c.entries = make(map[int]entry)
}

// Enabled reports whether this cache is serving lookups.
func (c *Cross) Enabled() bool { return c.enabled }

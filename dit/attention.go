package dit

import (
	"github.com/ace-step/aceinfer/kvcache"
	"github.com/ace-step/aceinfer/ml"
	"github.com/ace-step/aceinfer/nn"
)

// Attention implements the DiT block's grouped-query attention with
// per-head QK-RMSNorm (spec.md §4.3). The same struct backs both the
// self-attention sub-layer (rotary position embedding, sliding-window or
// no mask) and the cross-attention sub-layer (no rotary, cached encoder
// K/V, encoder padding mask), selected by which Forward variant is
// called.
type Attention struct {
	ToQ   *nn.Linear `weight:"to_q"`
	ToK   *nn.Linear `weight:"to_k"`
	ToV   *nn.Linear `weight:"to_v"`
	ToOut *nn.Linear `weight:"to_out"`
	NormQ *nn.RMSNorm `weight:"norm_q"`
	NormK *nn.RMSNorm `weight:"norm_k"`

	nHeads, nKVHeads, headDim int
}

func (a *Attention) init(nHeads, nKVHeads, headDim int, eps float32) {
	a.nHeads, a.nKVHeads, a.headDim = nHeads, nKVHeads, headDim
	a.NormQ.Eps = eps
	a.NormK.Eps = eps
}

// projectHeads runs lin over x and reshapes to [B, heads, L, headDim].
// norm, when non-nil, applies per-head QK-RMSNorm before the head-axis
// transpose; V projections pass norm=nil since spec.md §4.3 only
// RMSNorms Q and K.
func (a *Attention) projectHeads(lin *nn.Linear, norm *nn.RMSNorm, x *ml.Array, heads int) *ml.Array {
	b, l := x.Dim(0), x.Dim(1)
	proj := lin.Forward(x)
	proj = ml.Reshape(proj, b, l, heads, a.headDim)
	if norm != nil {
		proj = norm.Forward(proj)
	}
	return ml.Transpose(proj, 0, 2, 1, 3) // [B, heads, L, headDim]
}

func (a *Attention) expandKV(k *ml.Array) *ml.Array {
	if a.nHeads == a.nKVHeads {
		return k
	}
	return ml.Repeat(k, 1, a.nHeads/a.nKVHeads)
}

func (a *Attention) combineOut(attn *ml.Array) *ml.Array {
	b, h, l, d := attn.Dim(0), attn.Dim(1), attn.Dim(2), attn.Dim(3)
	out := ml.Transpose(attn, 0, 2, 1, 3)
	out = ml.Reshape(out, b, l, h*d)
	return a.ToOut.Forward(out)
}

// Self computes rotary self-attention with an optional additive mask
// (nil for full attention, a sliding-window mask on odd layers).
func (a *Attention) Self(x *ml.Array, cos, sin, mask *ml.Array) *ml.Array {
	q := a.projectHeads(a.ToQ, a.NormQ, x, a.nHeads)
	k := a.projectHeads(a.ToK, a.NormK, x, a.nKVHeads)
	v := a.projectHeads(a.ToV, nil, x, a.nKVHeads)

	q = nn.ApplyRotary(q, cos, sin)
	k = nn.ApplyRotary(k, cos, sin)

	k, v = a.expandKV(k), a.expandKV(v)
	out := ml.ScaledDotProductAttention(q, k, v, mask)
	return a.combineOut(out)
}

// Cross computes cross-attention against encoder hidden states, reusing a
// per-layer cached (K, V) when the cache is enabled and already populated
// (spec.md §4.3, §4.7).
func (a *Attention) Cross(x, encoderStates, encoderMask *ml.Array, cache *kvcache.Cross, layer int) *ml.Array {
	q := a.projectHeads(a.ToQ, a.NormQ, x, a.nHeads)

	k, v, ok := cache.Get(layer)
	if !ok {
		k = a.projectHeads(a.ToK, a.NormK, encoderStates, a.nKVHeads)
		v = a.projectHeads(a.ToV, nil, encoderStates, a.nKVHeads)
		cache.Set(layer, k, v)
	}

	k, v = a.expandKV(k), a.expandKV(v)
	out := ml.ScaledDotProductAttention(q, k, v, encoderMask)
	return a.combineOut(out)
}

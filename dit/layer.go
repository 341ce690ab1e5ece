package dit

import (
	"github.com/ace-step/aceinfer/kvcache"
	"github.com/ace-step/aceinfer/ml"
	"github.com/ace-step/aceinfer/nn"
)

// Layer is one DiT block: self-attention, cross-attention, SwiGLU MLP,
// modulated by a per-layer AdaLN scale_shift_table added to the shared
// timestep projection (spec.md §4.4).
type Layer struct {
	SelfAttn  *Attention  `weight:"self_attn"`
	CrossAttn *Attention  `weight:"cross_attn"`
	MLP       *nn.SwiGLU  `weight:"mlp"`
	Norm1     *nn.RMSNorm `weight:"norm1"`
	Norm2     *nn.RMSNorm `weight:"norm2"`
	NormMLP1  *nn.RMSNorm `weight:"norm_mlp1"`

	// ScaleShiftTable is [1, 6, D]; added to the shared [B, 6, D]
	// timestep projection and split into the six modulation vectors.
	ScaleShiftTable *ml.Array `weight:"scale_shift_table"`

	index        int
	useSliding   bool
}

func (l *Layer) init(index, nHeads, nKVHeads, headDim int, eps float32, slidingWindow int) {
	l.index = index
	l.useSliding = index%2 == 1 // odd layers use the sliding-window mask
	l.SelfAttn.init(nHeads, nKVHeads, headDim, eps)
	l.CrossAttn.init(nHeads, nKVHeads, headDim, eps)
	l.Norm1.Eps, l.Norm2.Eps = eps, eps
	l.NormMLP1.Eps = eps
}

// modulation splits a [B, 6, D] projection into six [B, 1, D] vectors in
// the fixed order (shift_self, scale_self, gate_self, shift_mlp,
// scale_mlp, gate_mlp).
func modulation(timestepProj, table *ml.Array) [6]*ml.Array {
	b := timestepProj.Dim(0)
	combined := ml.Add(timestepProj, ml.BroadcastTo(table, timestepProj.Shape()))
	var out [6]*ml.Array
	for i := 0; i < 6; i++ {
		out[i] = ml.Reshape(ml.Slice(combined, 1, i, i+1), b, 1, combined.Dim(2))
	}
	return out
}

// Forward runs the five-step block body from spec.md §4.4.
func (l *Layer) Forward(h, timestepProj, cos, sin, slidingMask, encoderStates, encoderMask *ml.Array, cache *kvcache.Cross) *ml.Array {
	mod := modulation(timestepProj, l.ScaleShiftTable)
	shiftSelf, scaleSelf, gateSelf := mod[0], mod[1], mod[2]
	shiftMLP, scaleMLP, gateMLP := mod[3], mod[4], mod[5]

	var mask *ml.Array
	if l.useSliding {
		mask = slidingMask
	}

	normed := l.Norm1.Forward(h)
	modulated := ml.Add(ml.Mul(normed, ml.BroadcastTo(ml.AddScalar(scaleSelf, 1), normed.Shape())), ml.BroadcastTo(shiftSelf, normed.Shape()))
	selfOut := l.SelfAttn.Self(modulated, cos, sin, mask)
	h = ml.Add(h, ml.Mul(ml.BroadcastTo(gateSelf, selfOut.Shape()), selfOut))

	crossOut := l.CrossAttn.Cross(l.Norm2.Forward(h), encoderStates, encoderMask, cache, l.index)
	h = ml.Add(h, crossOut)

	normedMLP := l.NormMLP1.Forward(h)
	modulatedMLP := ml.Add(ml.Mul(normedMLP, ml.BroadcastTo(ml.AddScalar(scaleMLP, 1), normedMLP.Shape())), ml.BroadcastTo(shiftMLP, normedMLP.Shape()))
	mlpOut := l.MLP.Forward(modulatedMLP)
	h = ml.Add(h, ml.Mul(ml.BroadcastTo(gateMLP, mlpOut.Shape()), mlpOut))

	return h
}

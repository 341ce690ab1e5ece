package nn

import (
	"github.com/ace-step/aceinfer/ml"
	"github.com/chewxy/math32"
)

// SinusoidalEmbedding builds the classic transformer timestep embedding
// [cos(t·f₀), …, cos(t·f_{h-1}), sin(t·f₀), …, sin(t·f_{h-1})] for a batch
// of scalar timesteps t ([B]), with freqDim frequencies split evenly
// between cos and sin halves.
func SinusoidalEmbedding(t *ml.Array, freqDim int) *ml.Array {
	half := freqDim / 2
	freqs := make([]float32, half)
	for i := 0; i < half; i++ {
		freqs[i] = math32.Exp(-math32.Log(10000) * float32(i) / float32(half))
	}
	freqArr := ml.NewFromFloats(freqs, 1, half)

	b := t.Dim(0)
	tExpanded := ml.Reshape(t.Clone(), b, 1)
	args := ml.Mul(ml.BroadcastTo(tExpanded, []int{b, half}), ml.BroadcastTo(freqArr, []int{b, half}))

	return ml.Concat(1, ml.Cos(args), ml.Sin(args))
}

// TimestepEmbedding is one of the DiT decoder's two independent
// sinusoidal+MLP heads (spec.md §4.5): it turns a scalar-per-batch
// timestep into a model-dimension embedding `temb` and, via a shared
// projection, a per-layer AdaLN modulation source `proj` of shape
// [B, 6, D].
type TimestepEmbedding struct {
	Linear1 *Linear `weight:"timestep_embedder.linear_1"`
	Linear2 *Linear `weight:"timestep_embedder.linear_2"`
	Proj    *Linear `weight:"timestep_proj"`

	FreqDim int
	ModelDim int
}

// Forward returns (temb [B, D], proj [B, 6, D]).
func (te *TimestepEmbedding) Forward(t *ml.Array) (temb, proj *ml.Array) {
	freqDim := te.FreqDim
	if freqDim == 0 {
		freqDim = 256
	}
	emb := SinusoidalEmbedding(t, freqDim)
	h := ml.SiLU(te.Linear1.Forward(emb))
	temb = te.Linear2.Forward(h)

	p := te.Proj.Forward(ml.SiLU(temb))
	b := temb.Dim(0)
	proj = ml.Reshape(p, b, 6, te.ModelDim)
	return temb, proj
}

// Package nn holds the small reusable layers the DiT and VAE decoders are
// built from: linear projections, norms, activations, embeddings and
// masks. Every layer operates on *ml.Array and is populated from a
// checkpoint via the `weight:"..."` struct tags package weights reads.
package nn

import "github.com/ace-step/aceinfer/ml"

// Linear is `y = x·Wᵀ + b` with weight stored as [out, in] (the runtime
// convention spec.md §3 mandates) and an optional bias [out].
type Linear struct {
	Weight *ml.Array `weight:"weight"`
	Bias   *ml.Array `weight:"bias,optional"`

	OutDim int
}

// Forward projects the last axis of x from in to OutDim, applied over any
// number of leading batch/sequence axes.
func (l *Linear) Forward(x *ml.Array) *ml.Array {
	shape := x.Shape()
	lead := shape[:len(shape)-1]
	in := shape[len(shape)-1]

	flat := ml.Reshape(x.Clone(), numel(lead), in)
	wt := ml.Transpose(l.Weight, 1, 0) // [in, out]
	out := ml.MatMul(flat, wt)

	if l.Bias != nil {
		out = ml.Add(out, ml.BroadcastTo(l.Bias, out.Shape()))
	}

	outShape := append(append([]int(nil), lead...), l.outDim())
	return ml.Reshape(out, outShape...)
}

func (l *Linear) outDim() int {
	if l.OutDim != 0 {
		return l.OutDim
	}
	return l.Weight.Dim(0)
}

func numel(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

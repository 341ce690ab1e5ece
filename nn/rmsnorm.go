package nn

import "github.com/ace-step/aceinfer/ml"

// RMSNorm normalizes the last axis by its RMS and rescales by a learned
// per-channel weight: `x / sqrt(mean(x^2) + eps) * weight`.
type RMSNorm struct {
	Weight *ml.Array `weight:"weight"`
	Eps    float32
}

func (n *RMSNorm) Forward(x *ml.Array) *ml.Array {
	eps := n.Eps
	if eps == 0 {
		eps = 1e-6
	}
	axis := x.Ndim() - 1
	ms := ml.Mean(ml.Mul(x, x), axis, true)
	rms := ml.Sqrt(ml.AddScalar(ms, eps))
	normed := ml.Div(x, ml.BroadcastTo(rms, x.Shape()))
	return ml.Mul(normed, ml.BroadcastTo(n.Weight, x.Shape()))
}

// RMSNormNoAffine applies the RMS normalization term without a learned
// weight, used by the DiT decoder's output AdaLN (spec.md §4.5) where the
// scale/shift come from a separate learned table rather than a per-channel
// norm weight.
func RMSNormNoAffine(x *ml.Array, eps float32) *ml.Array {
	axis := x.Ndim() - 1
	ms := ml.Mean(ml.Mul(x, x), axis, true)
	rms := ml.Sqrt(ml.AddScalar(ms, eps))
	return ml.Div(x, ml.BroadcastTo(rms, x.Shape()))
}

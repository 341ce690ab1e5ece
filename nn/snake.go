package nn

import "github.com/ace-step/aceinfer/ml"

const snakeEps = 1e-9

// Snake is the periodic activation the Oobleck VAE decoder uses instead of
// SiLU/GELU: x + (1/(β+ε))·sin(α·x)². Alpha and Beta are per-channel,
// stored in log-space (Logscale) and exponentiated before use, matching
// the reference decoder's default.
//
// The reference decoder upcasts to float32 before this activation when
// running on 16-bit weights to avoid exp() overflow; this backend's Array
// always stores float32 underneath (ml.Array.Cast only simulates
// precision loss), so that upcast is a no-op here and is not repeated.
type Snake struct {
	Alpha    *ml.Array `weight:"alpha"`
	Beta     *ml.Array `weight:"beta"`
	Logscale bool      `weight:"-"`
}

// Forward applies Snake over the channel axis (last, per the channels-last
// convention) of a [B, T, C] input.
func (s *Snake) Forward(x *ml.Array) *ml.Array {
	alpha, beta := s.Alpha, s.Beta
	if s.Logscale {
		alpha = ml.Exp(alpha)
		beta = ml.Exp(beta)
	}
	shape := make([]int, x.Ndim())
	for i := range shape {
		shape[i] = 1
	}
	shape[x.Ndim()-1] = alpha.Dim(0)
	alpha = ml.Reshape(alpha.Clone(), shape...)
	beta = ml.Reshape(beta.Clone(), shape...)

	ax := ml.Mul(ml.BroadcastTo(alpha, x.Shape()), x)
	sinax := ml.Sin(ax)
	sq := ml.Mul(sinax, sinax)
	invBeta := ml.Div(ml.Full(1, x.Shape()...), ml.AddScalar(ml.BroadcastTo(beta, x.Shape()), snakeEps))
	return ml.Add(x, ml.Mul(invBeta, sq))
}

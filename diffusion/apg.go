package diffusion

import (
	"github.com/ace-step/aceinfer/ml"
	"gonum.org/v1/gonum/floats"
)

const apgEps = 1e-8

// MomentumState carries APG's running guidance-delta average across
// diffusion steps (spec.md §4.2). A nil *MomentumState disables momentum.
type MomentumState struct {
	Running *ml.Array
}

// APGConfig bundles APG's tunables; zero values fall back to the
// reference defaults (momentum -0.75, norm threshold 2.5).
type APGConfig struct {
	GuidanceScale float32
	Momentum      float32
	NormThreshold float32
}

func (c APGConfig) momentum() float32 {
	if c.Momentum == 0 {
		return -0.75
	}
	return c.Momentum
}

func (c APGConfig) normThreshold() float32 {
	if c.NormThreshold == 0 {
		return 2.5
	}
	return c.NormThreshold
}

// APG combines a conditional and unconditional prediction by adding only
// the component of their difference orthogonal to the conditional
// direction, along axis 1 (spec.md §4.2). At GuidanceScale == 1 it is the
// identity on pCond.
func APG(pCond, pUncond *ml.Array, cfg APGConfig, state *MomentumState) *ml.Array {
	d := ml.Sub(pCond, pUncond)

	if state != nil {
		if state.Running == nil {
			state.Running = ml.NewZeros(d.Shape()...)
		}
		state.Running = ml.Add(ml.MulScalar(state.Running, cfg.momentum()), d)
		d = state.Running
	}

	if tau := cfg.normThreshold(); tau > 0 {
		n := ml.L2Norm(d, 1, true)
		factor := ml.MinScalar(ml.Div(ml.Full(tau, n.Shape()...), ml.AddScalar(n, apgEps)), 1)
		d = ml.Mul(d, ml.BroadcastTo(factor, d.Shape()))
	}

	v1Norm := ml.L2Norm(pCond, 1, true)
	v1 := ml.Div(pCond, ml.BroadcastTo(ml.AddScalar(v1Norm, apgEps), pCond.Shape()))

	dot := dotAlongAxis1(d, v1)
	dPar := ml.Mul(ml.BroadcastTo(dot, d.Shape()), v1)
	dPerp := ml.Sub(d, dPar)

	return ml.Add(pCond, ml.MulScalar(dPerp, cfg.GuidanceScale-1))
}

// dotAlongAxis1 computes the dot product of a and b along axis 1 (the time
// axis), keeping dims, via gonum's float64 Dot — the small per-(batch,
// channel) reduction APG needs, converted to/from float64 since gonum's
// floats package has no float32 entry point.
func dotAlongAxis1(a, b *ml.Array) *ml.Array {
	shape := a.Shape()
	axisLen := shape[1]
	outShape := append([]int(nil), shape...)
	outShape[1] = 1
	out := ml.NewZeros(outShape...)

	lead := 1
	for _, s := range shape[:1] {
		lead *= s
	}
	trail := 1
	for _, s := range shape[2:] {
		trail *= s
	}

	av, bv := make([]float64, axisLen), make([]float64, axisLen)
	ad, bd := a.Data(), b.Data()
	for bi := 0; bi < lead; bi++ {
		for ti := 0; ti < trail; ti++ {
			for i := 0; i < axisLen; i++ {
				idx := (bi*axisLen+i)*trail + ti
				av[i] = float64(ad[idx])
				bv[i] = float64(bd[idx])
			}
			out.Data()[bi*trail+ti] = float32(floats.Dot(av, bv))
		}
	}
	return out
}

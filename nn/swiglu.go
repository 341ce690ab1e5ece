package nn

import "github.com/ace-step/aceinfer/ml"

// SwiGLU is the gated MLP the DiT layer uses in place of a plain
// two-linear feedforward: down(silu(gate(x)) ⊙ up(x)), no biases.
type SwiGLU struct {
	Gate *Linear `weight:"gate_proj"`
	Up   *Linear `weight:"up_proj"`
	Down *Linear `weight:"down_proj"`
}

func (m *SwiGLU) Forward(x *ml.Array) *ml.Array {
	gate := ml.SiLU(m.Gate.Forward(x))
	up := m.Up.Forward(x)
	return m.Down.Forward(ml.Mul(gate, up))
}

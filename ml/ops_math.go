package ml

import "github.com/chewxy/math32"

func elementwise(a *Array, f func(float32) float32) *Array {
	out := a.Clone()
	for i, v := range out.data {
		out.data[i] = f(v)
	}
	return out
}

func Sin(a *Array) *Array  { return elementwise(a, math32.Sin) }
func Cos(a *Array) *Array  { return elementwise(a, math32.Cos) }
func Tanh(a *Array) *Array { return elementwise(a, math32.Tanh) }
func Exp(a *Array) *Array  { return elementwise(a, math32.Exp) }
func Sqrt(a *Array) *Array { return elementwise(a, math32.Sqrt) }

func Sigmoid(a *Array) *Array {
	return elementwise(a, func(x float32) float32 { return 1 / (1 + math32.Exp(-x)) })
}

// SiLU is x*sigmoid(x), the activation used throughout the DiT MLP and
// timestep embedding.
func SiLU(a *Array) *Array {
	return elementwise(a, func(x float32) float32 { return x / (1 + math32.Exp(-x)) })
}

// Softmax normalizes along the last axis, subtracting the row max for
// numerical stability before exponentiating.
func Softmax(a *Array) *Array {
	axis := a.Ndim() - 1
	m := Max(a, axis, true)
	shifted := Sub(a, BroadcastTo(m, a.shape))
	exp := Exp(shifted)
	sum := Sum(exp, axis, true)
	return Div(exp, BroadcastTo(sum, a.shape))
}

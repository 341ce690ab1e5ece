package ml

import "gorgonia.org/vecf32"

// binaryOp applies f elementwise with numpy-style broadcasting.
func binaryOp(a, b *Array, f func(x, y float32) float32) *Array {
	out := broadcastShape(a.shape, b.shape)
	result := NewZeros(out...)

	if sameShape(a.shape, out) && sameShape(b.shape, out) {
		for i := range result.data {
			result.data[i] = f(a.data[i], b.data[i])
		}
		return result
	}

	aStrides := broadcastStrides(a.shape, out)
	bStrides := broadcastStrides(b.shape, out)
	coords := make([]int, len(out))
	for i := range result.data {
		indexToCoords(i, out, coords)
		result.data[i] = f(a.data[flatOffset(coords, aStrides)], b.data[flatOffset(coords, bStrides)])
	}
	return result
}

// Add computes a+b with broadcasting. The same-shape fast path is
// vectorized with gorgonia's float32 kernels; the broadcasting path falls
// back to an indexed loop.
func Add(a, b *Array) *Array {
	if sameShape(a.shape, b.shape) {
		out := a.Clone()
		vecf32.Add(out.data, b.data)
		return out
	}
	return binaryOp(a, b, func(x, y float32) float32 { return x + y })
}

func Sub(a, b *Array) *Array {
	if sameShape(a.shape, b.shape) {
		out := a.Clone()
		vecf32.Sub(out.data, b.data)
		return out
	}
	return binaryOp(a, b, func(x, y float32) float32 { return x - y })
}

func Mul(a, b *Array) *Array {
	if sameShape(a.shape, b.shape) {
		out := a.Clone()
		vecf32.Mul(out.data, b.data)
		return out
	}
	return binaryOp(a, b, func(x, y float32) float32 { return x * y })
}

func Div(a, b *Array) *Array {
	if sameShape(a.shape, b.shape) {
		out := a.Clone()
		vecf32.Div(out.data, b.data)
		return out
	}
	return binaryOp(a, b, func(x, y float32) float32 { return x / y })
}

func AddScalar(a *Array, s float32) *Array {
	out := a.Clone()
	vecf32.Trans(out.data, s)
	return out
}

func MulScalar(a *Array, s float32) *Array {
	out := a.Clone()
	vecf32.Scale(out.data, s)
	return out
}

func Neg(a *Array) *Array { return MulScalar(a, -1) }

// MinScalar returns elementwise min(a, scalar).
func MinScalar(a *Array, s float32) *Array {
	out := a.Clone()
	for i, v := range out.data {
		if v > s {
			out.data[i] = s
		}
	}
	return out
}

// ClipScalar clamps every element into [lo, hi].
func ClipScalar(a *Array, lo, hi float32) *Array {
	out := a.Clone()
	for i, v := range out.data {
		if v < lo {
			v = lo
		}
		if v > hi {
			v = hi
		}
		out.data[i] = v
	}
	return out
}

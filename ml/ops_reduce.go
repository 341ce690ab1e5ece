package ml

import "github.com/chewxy/math32"

// reduceAxis applies a running fold over axis, with an optional final
// transform (e.g. divide by count for Mean).
func reduceAxis(a *Array, axis int, keepdim bool, init float32, f func(acc, v float32) float32, finish func(acc float32, n int) float32) *Array {
	n := a.Dim(axis)
	outShape := append([]int(nil), a.shape...)
	outShape[axis] = 1

	acc := Full(init, outShape...)
	coords := make([]int, len(a.shape))
	for i, v := range a.data {
		indexToCoords(i, a.shape, coords)
		oc := append([]int(nil), coords...)
		oc[axis] = 0
		off := flatOffset(oc, acc.strides)
		acc.data[off] = f(acc.data[off], v)
	}
	if finish != nil {
		for i := range acc.data {
			acc.data[i] = finish(acc.data[i], n)
		}
	}
	if !keepdim {
		return Squeeze(acc, axis)
	}
	return acc
}

// Sum reduces axis by addition.
func Sum(a *Array, axis int, keepdim bool) *Array {
	return reduceAxis(a, axis, keepdim, 0, func(acc, v float32) float32 { return acc + v }, nil)
}

// Mean reduces axis by averaging.
func Mean(a *Array, axis int, keepdim bool) *Array {
	return reduceAxis(a, axis, keepdim, 0, func(acc, v float32) float32 { return acc + v },
		func(acc float32, n int) float32 { return acc / float32(n) })
}

// SumSquares reduces axis by summing squared elements, the building block
// for L2Norm.
func SumSquares(a *Array, axis int, keepdim bool) *Array {
	return reduceAxis(a, axis, keepdim, 0, func(acc, v float32) float32 { return acc + v*v }, nil)
}

// L2Norm computes the Euclidean norm along axis.
func L2Norm(a *Array, axis int, keepdim bool) *Array {
	ss := SumSquares(a, axis, keepdim)
	out := ss.Clone()
	for i, v := range out.data {
		out.data[i] = math32.Sqrt(v)
	}
	return out
}

// Max reduces axis by taking the maximum, used by the numerically stable
// Softmax.
func Max(a *Array, axis int, keepdim bool) *Array {
	return reduceAxis(a, axis, keepdim, math32.Inf(-1), func(acc, v float32) float32 {
		if v > acc {
			return v
		}
		return acc
	}, nil)
}

// MaxAbs returns the largest absolute value across every element, used by
// peak normalization of decoded audio.
func MaxAbs(a *Array) float32 {
	var m float32
	for _, v := range a.data {
		if v < 0 {
			v = -v
		}
		if v > m {
			m = v
		}
	}
	return m
}

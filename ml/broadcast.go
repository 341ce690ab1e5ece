package ml

import "fmt"

// broadcastShape computes the numpy-style broadcast result of two shapes.
func broadcastShape(a, b []int) []int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		ai, bi := 1, 1
		if i < len(a) {
			ai = a[len(a)-1-i]
		}
		if i < len(b) {
			bi = b[len(b)-1-i]
		}
		switch {
		case ai == bi:
			out[n-1-i] = ai
		case ai == 1:
			out[n-1-i] = bi
		case bi == 1:
			out[n-1-i] = ai
		default:
			panic(fmt.Sprintf("ml: shapes %v and %v are not broadcastable", a, b))
		}
	}
	return out
}

// broadcastStrides computes the strides to read `shape` as if it were
// `target`, with zero strides on axes that broadcast.
func broadcastStrides(shape, target []int) []int {
	pad := len(target) - len(shape)
	strides := rowMajorStrides(shape)
	out := make([]int, len(target))
	for i := range target {
		si := i - pad
		if si < 0 || shape[si] == 1 {
			out[i] = 0
		} else {
			out[i] = strides[si]
		}
	}
	return out
}

func indexToCoords(idx int, shape []int, coords []int) {
	for i := len(shape) - 1; i >= 0; i-- {
		coords[i] = idx % shape[i]
		idx /= shape[i]
	}
}

func flatOffset(coords, strides []int) int {
	off := 0
	for i, c := range coords {
		off += c * strides[i]
	}
	return off
}

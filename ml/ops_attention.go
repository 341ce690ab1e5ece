package ml

import "github.com/chewxy/math32"

// swapLastTwo returns the axis permutation that swaps the two trailing axes,
// leaving all leading axes in place.
func swapLastTwo(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	perm[n-2], perm[n-1] = perm[n-1], perm[n-2]
	return perm
}

// ScaledDotProductAttention computes softmax(q·kᵀ/√d + mask)·v over the
// trailing two axes of q [..., Lq, D], k [..., Lk, D] and v [..., Lk, Dv].
// mask, if non-nil, is additive (0 to attend, large negative to block) and
// must broadcast against the [..., Lq, Lk] score tensor.
func ScaledDotProductAttention(q, k, v, mask *Array) *Array {
	d := q.Dim(-1)
	scale := 1 / math32.Sqrt(float32(d))

	kt := Transpose(k, swapLastTwo(k.Ndim())...)
	scores := MulScalar(MatMul(q, kt), scale)
	if mask != nil {
		scores = Add(scores, BroadcastTo(mask, scores.shape))
	}
	weights := Softmax(scores)
	return MatMul(weights, v)
}

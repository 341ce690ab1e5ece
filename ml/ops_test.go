package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReshapePreservesData(t *testing.T) {
	a := NewFromFloats([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
	b := Reshape(a, 3, 2)
	assert.Equal(t, []int{3, 2}, b.Shape())
	assert.Equal(t, a.Data(), b.Data())
}

func TestBroadcastToExpandsLeadingAxis(t *testing.T) {
	a := NewFromFloats([]float32{1, 2, 3}, 1, 3)
	b := BroadcastTo(a, []int{4, 3})
	require.Equal(t, []int{4, 3}, b.Shape())
	for i := 0; i < 4; i++ {
		assert.Equal(t, []float32{1, 2, 3}, b.Data()[i*3:i*3+3])
	}
}

func TestSoftmaxSumsToOne(t *testing.T) {
	a := NewFromFloats([]float32{1, 2, 3, 0, 0, 0}, 2, 3)
	out := Softmax(a)
	for row := 0; row < 2; row++ {
		var sum float32
		for _, v := range out.Data()[row*3 : row*3+3] {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-5)
	}
}

func TestMatMul2D(t *testing.T) {
	a := NewFromFloats([]float32{1, 2, 3, 4}, 2, 2)
	b := NewFromFloats([]float32{1, 0, 0, 1}, 2, 2) // identity
	out := MatMul(a, b)
	assert.Equal(t, a.Data(), out.Data())
}

func TestConcatAlongAxis(t *testing.T) {
	a := NewFromFloats([]float32{1, 2}, 1, 2)
	b := NewFromFloats([]float32{3, 4, 5}, 1, 3)
	out := Concat(1, a, b)
	assert.Equal(t, []int{1, 5}, out.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 5}, out.Data())
}

func TestSliceExtractsRange(t *testing.T) {
	a := NewFromFloats([]float32{1, 2, 3, 4, 5, 6}, 1, 6)
	out := Slice(a, 1, 2, 4)
	assert.Equal(t, []float32{3, 4}, out.Data())
}

func TestMaxAbsFindsLargestMagnitude(t *testing.T) {
	a := NewFromFloats([]float32{-3, 1, 2, -9, 4}, 5)
	assert.Equal(t, float32(9), MaxAbs(a))
}

func TestScaledDotProductAttentionWithCausalMask(t *testing.T) {
	q := NewFromFloats([]float32{1, 0, 0, 1}, 1, 1, 2, 2)
	k := q.Clone()
	v := NewFromFloats([]float32{10, 20, 30, 40}, 1, 1, 2, 2)
	mask := NewFromFloats([]float32{0, -1e9, 0, 0}, 1, 1, 2, 2)

	out := ScaledDotProductAttention(q, k, v, mask)
	require.Equal(t, []int{1, 1, 2, 2}, out.Shape())
	// First query can only attend to the first key, so its output equals v[0].
	assert.InDelta(t, 10, out.Data()[0], 1e-3)
	assert.InDelta(t, 20, out.Data()[1], 1e-3)
}

package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConv1DIdentityKernelPassesThrough(t *testing.T) {
	// weight [Cout=1, K=1, Cin=1] = [[[1]]], no bias: identity.
	x := NewFromFloats([]float32{1, 2, 3, 4}, 1, 4, 1)
	w := NewFromFloats([]float32{1}, 1, 1, 1)
	out := Conv1D(x, w, nil, 1, 0, 1)
	assert.Equal(t, x.Data(), out.Data())
}

func TestConv1DSamePaddingPreservesLength(t *testing.T) {
	x := NewFromFloats([]float32{1, 2, 3, 4, 5}, 1, 5, 1)
	w := Full(1, 1, 3, 1) // kernel 3, sums a sliding window of 3
	out := Conv1D(x, w, nil, 1, 1, 1)
	require.Equal(t, []int{1, 5, 1}, out.Shape())
	// middle element sums the full 3-window: 2+3+4 = 9
	assert.Equal(t, float32(9), out.Data()[2])
}

func TestConv1DDilationSkipsPositions(t *testing.T) {
	x := NewFromFloats([]float32{1, 10, 100, 1000, 10000}, 1, 5, 1)
	w := NewFromFloats([]float32{1, 1}, 1, 2, 1) // kernel 2, dilation 2
	out := Conv1D(x, w, nil, 1, 0, 2)
	// tOut = (5 - 2*1 - 1)/1 + 1 = 3; out[0] = x[0]+x[2] = 1+100
	require.Equal(t, []int{1, 3, 1}, out.Shape())
	assert.Equal(t, float32(101), out.Data()[0])
}

func TestConvTranspose1DUpsamplesLength(t *testing.T) {
	x := NewFromFloats([]float32{1, 2}, 1, 2, 1)
	w := Full(1, 1, 4, 1) // Cout=1, K=4, Cin=1
	out := ConvTranspose1D(x, w, nil, 2, 1)
	wantLen := (2-1)*2 - 2*1 + 4
	require.Equal(t, wantLen, out.Dim(1))
}

package ml

import (
	"fmt"

	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// Array is a dense, row-major, channels-last N-dimensional float32 tensor.
type Array struct {
	shape   []int
	strides []int
	data    []float32
	dtype   DType
}

func rowMajorStrides(shape []int) []int {
	strides := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}

func numel(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

// NewZeros allocates a zero-filled Array of the given shape.
func NewZeros(shape ...int) *Array {
	return &Array{shape: append([]int(nil), shape...), strides: rowMajorStrides(shape), data: make([]float32, numel(shape))}
}

// NewFromFloats wraps an existing contiguous buffer. len(data) must equal
// the product of shape.
func NewFromFloats(data []float32, shape ...int) *Array {
	if n := numel(shape); n != len(data) {
		panic(fmt.Sprintf("ml: shape %v needs %d elements, got %d", shape, n, len(data)))
	}
	return &Array{shape: append([]int(nil), shape...), strides: rowMajorStrides(shape), data: data, dtype: DTypeF32}
}

// Full returns a shape-filled Array with every element set to v.
func Full(v float32, shape ...int) *Array {
	a := NewZeros(shape...)
	for i := range a.data {
		a.data[i] = v
	}
	return a
}

func (a *Array) Shape() []int { return a.shape }
func (a *Array) Ndim() int    { return len(a.shape) }
func (a *Array) Numel() int   { return len(a.data) }
func (a *Array) DType() DType { return a.dtype }

// Dim returns the size of axis n, supporting negative indices.
func (a *Array) Dim(n int) int {
	if n < 0 {
		n += len(a.shape)
	}
	return a.shape[n]
}

// Data returns the raw contiguous backing store. Callers that mutate it
// must own the Array exclusively (Clone first otherwise).
func (a *Array) Data() []float32 { return a.data }

// Clone makes an independent deep copy.
func (a *Array) Clone() *Array {
	data := make([]float32, len(a.data))
	copy(data, a.data)
	return &Array{shape: append([]int(nil), a.shape...), strides: append([]int(nil), a.strides...), data: data, dtype: a.dtype}
}

// Cast simulates narrowing to a lower-precision dtype and widening back to
// float32, matching checkpoints whose native storage is float16/bfloat16.
// The logical DType is recorded on the result; the values stay float32, so
// every later op (Snake included) computes in float32.
func (a *Array) Cast(dtype DType) *Array {
	out := a.Clone()
	out.dtype = dtype
	switch dtype {
	case DTypeF16:
		for i, v := range out.data {
			out.data[i] = float16.Fromfloat32(v).Float32()
		}
	case DTypeBF16:
		raw := bfloat16.EncodeFloat32(out.data)
		out.data = bfloat16.DecodeFloat32(raw)
	}
	return out
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

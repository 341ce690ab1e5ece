package ml

import "fmt"

// Reshape returns a view with a new shape over the same element count.
// The Array is assumed contiguous, which every op in this package
// preserves.
func Reshape(a *Array, shape ...int) *Array {
	if n := numel(shape); n != len(a.data) {
		panic(fmt.Sprintf("ml: cannot reshape %v into %v", a.shape, shape))
	}
	return &Array{shape: append([]int(nil), shape...), strides: rowMajorStrides(shape), data: a.data, dtype: a.dtype}
}

// ExpandDims inserts a length-1 axis at position axis (supports axis == Ndim).
func ExpandDims(a *Array, axis int) *Array {
	shape := make([]int, 0, len(a.shape)+1)
	shape = append(shape, a.shape[:axis]...)
	shape = append(shape, 1)
	shape = append(shape, a.shape[axis:]...)
	return Reshape(a.Clone(), shape...)
}

// Squeeze removes a length-1 axis.
func Squeeze(a *Array, axis int) *Array {
	if a.shape[axis] != 1 {
		panic(fmt.Sprintf("ml: cannot squeeze axis %d of shape %v", axis, a.shape))
	}
	shape := make([]int, 0, len(a.shape)-1)
	shape = append(shape, a.shape[:axis]...)
	shape = append(shape, a.shape[axis+1:]...)
	return Reshape(a.Clone(), shape...)
}

// Transpose permutes axes according to perm (perm[i] names the source axis
// that becomes axis i of the result). Always materializes a contiguous
// copy, matching the teacher's Permute+Contiguous pairing.
func Transpose(a *Array, perm ...int) *Array {
	if len(perm) != len(a.shape) {
		panic("ml: Transpose permutation length mismatch")
	}
	newShape := make([]int, len(perm))
	for i, p := range perm {
		newShape[i] = a.shape[p]
	}
	out := NewZeros(newShape...)
	out.dtype = a.dtype

	srcStrides := a.strides
	dstCoords := make([]int, len(newShape))
	srcCoords := make([]int, len(newShape))
	for i := range out.data {
		indexToCoords(i, newShape, dstCoords)
		for j, p := range perm {
			srcCoords[p] = dstCoords[j]
		}
		out.data[i] = a.data[flatOffset(srcCoords, srcStrides)]
	}
	return out
}

// SliceRange extracts the half-open range [low[d], high[d]) on every axis
// d, mirroring the teacher's multi-axis Slice(low, high) convention.
func SliceRange(a *Array, low, high []int) *Array {
	shape := make([]int, len(low))
	for i := range low {
		shape[i] = high[i] - low[i]
	}
	out := NewZeros(shape...)
	out.dtype = a.dtype
	coords := make([]int, len(shape))
	srcCoords := make([]int, len(shape))
	for i := range out.data {
		indexToCoords(i, shape, coords)
		for d := range coords {
			srcCoords[d] = coords[d] + low[d]
		}
		out.data[i] = a.data[flatOffset(srcCoords, a.strides)]
	}
	return out
}

// Slice extracts [start, end) along a single axis.
func Slice(a *Array, axis, start, end int) *Array {
	low := make([]int, len(a.shape))
	high := append([]int(nil), a.shape...)
	low[axis] = start
	high[axis] = end
	return SliceRange(a, low, high)
}

// Concat joins arrays along axis.
func Concat(axis int, arrays ...*Array) *Array {
	if len(arrays) == 0 {
		panic("ml: Concat needs at least one array")
	}
	shape := append([]int(nil), arrays[0].shape...)
	total := 0
	for _, arr := range arrays {
		total += arr.shape[axis]
	}
	shape[axis] = total
	out := NewZeros(shape...)
	out.dtype = arrays[0].dtype

	offset := 0
	coords := make([]int, len(shape))
	for _, arr := range arrays {
		for i, v := range arr.data {
			indexToCoords(i, arr.shape, coords)
			coords[axis] += offset
			out.data[flatOffset(coords, out.strides)] = v
		}
		offset += arr.shape[axis]
	}
	return out
}

// Pad zero-pads axis with `before` elements prepended and `after` appended.
func Pad(a *Array, axis, before, after int) *Array {
	if before == 0 && after == 0 {
		return a.Clone()
	}
	shape := append([]int(nil), a.shape...)
	shape[axis] += before + after
	out := NewZeros(shape...)
	out.dtype = a.dtype

	coords := make([]int, len(shape))
	for i, v := range a.data {
		indexToCoords(i, a.shape, coords)
		coords[axis] += before
		out.data[flatOffset(coords, out.strides)] = v
	}
	return out
}

// Repeat repeats each element n times along axis (repeat_interleave),
// matching the GQA key/value expansion in the spec.
func Repeat(a *Array, axis, n int) *Array {
	shape := append([]int(nil), a.shape...)
	shape[axis] *= n
	out := NewZeros(shape...)
	out.dtype = a.dtype

	coords := make([]int, len(shape))
	srcCoords := make([]int, len(shape))
	for i := range out.data {
		indexToCoords(i, shape, coords)
		copy(srcCoords, coords)
		srcCoords[axis] = coords[axis] / n
		out.data[i] = a.data[flatOffset(srcCoords, a.strides)]
	}
	return out
}

// BroadcastTo materializes a into the given target shape.
func BroadcastTo(a *Array, shape []int) *Array {
	strides := broadcastStrides(a.shape, shape)
	out := NewZeros(shape...)
	out.dtype = a.dtype
	coords := make([]int, len(shape))
	for i := range out.data {
		indexToCoords(i, shape, coords)
		out.data[i] = a.data[flatOffset(coords, strides)]
	}
	return out
}

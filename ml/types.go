// Package ml provides the N-dimensional tensor primitives the generation
// pipeline is built on: channels-last arrays with broadcast, reshape,
// slicing, matmul, attention and 1-D (transposed) convolution.
//
// There is no accelerator binding here — Array is a CPU reference backend.
// The operation set mirrors what a GPU-backed implementation would need to
// expose; dit and vae work through these operations, while a few kernels
// elsewhere (diffusion's APG dot product, nn's rotary embedding) index the
// raw []float32 from Data directly.
package ml

// DType is the logical element type of an Array. The backing storage is
// always float32; DType is set by Cast and reported by Array.DType, and no
// operation in this module changes its math based on it.
type DType int

const (
	DTypeF32 DType = iota
	DTypeF16
	DTypeBF16
)

func (d DType) String() string {
	switch d {
	case DTypeF16:
		return "float16"
	case DTypeBF16:
		return "bfloat16"
	default:
		return "float32"
	}
}

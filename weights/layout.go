package weights

import "github.com/ace-step/aceinfer/ml"

// TensorRole classifies how a checkpoint tensor's axes must be permuted
// to reach this module's runtime convention (spec.md §3, §4.9 step 4).
type TensorRole int

const (
	RoleOther TensorRole = iota
	RoleConv1D
	RoleConvTranspose1D
)

// ConvertLayout permutes a tensor from its source-framework layout to the
// runtime's [out, kernel, in] convention. This is a pure axis permutation,
// not a linear-algebra operation, so it is implemented directly with
// ml.Transpose's index arithmetic rather than routed through a matrix
// library — there is no matmul here to hand to gonum/blas32 (see
// DESIGN.md).
func ConvertLayout(t *ml.Array, role TensorRole) *ml.Array {
	switch role {
	case RoleConv1D:
		// [out, in, k] -> [out, k, in]
		return ml.Transpose(t, 0, 2, 1)
	case RoleConvTranspose1D:
		// [in, out, k] -> [out, k, in]
		return ml.Transpose(t, 1, 2, 0)
	default:
		return t
	}
}

// InferRole guesses a tensor's role from its normalized key, used when a
// checkpoint doesn't separately record which tensors are convolutional.
// Suffixes match whole dotted segments, including at the start of key.
func InferRole(key string) TensorRole {
	key = "." + key
	switch {
	case hasAnySuffix(key, ".conv1.weight", ".conv2.weight", ".conv_in.weight", ".conv_final.weight", ".patch_in.weight"):
		return RoleConv1D
	case hasAnySuffix(key, ".conv_t1.weight", ".patch_out.weight"):
		return RoleConvTranspose1D
	default:
		return RoleOther
	}
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if len(s) >= len(suf) && s[len(s)-len(suf):] == suf {
			return true
		}
	}
	return false
}

package ml

import "math/rand"

// RandN draws an Array of the given shape from a standard normal
// distribution seeded deterministically by seed, matching the
// reproducible-from-seed latent initialization the pipeline requires.
//
// None of the pack's third-party libraries expose a PRNG; math/rand's
// Gaussian sampler (Box-Muller under the hood) is the standard way Go
// code draws seeded normals, so it is used directly rather than hand
// rolling one.
func RandN(seed int64, shape ...int) *Array {
	r := rand.New(rand.NewSource(seed))
	out := NewZeros(shape...)
	for i := range out.data {
		out.data[i] = float32(r.NormFloat64())
	}
	return out
}

package nn

import "github.com/ace-step/aceinfer/ml"

const negInf = float32(-1e9)

// SlidingWindowMask builds the additive [1, 1, L, L] bidirectional mask
// used by odd-indexed DiT self-attention layers: 0 where |i-j| <= window,
// -inf otherwise.
func SlidingWindowMask(length, window int) *ml.Array {
	data := make([]float32, length*length)
	for i := 0; i < length; i++ {
		for j := 0; j < length; j++ {
			v := float32(0)
			if abs(i-j) > window {
				v = negInf
			}
			data[i*length+j] = v
		}
	}
	return ml.Reshape(ml.NewFromFloats(data, length, length), 1, 1, length, length)
}

// EncoderMaskToAdditive broadcasts a [B, encL] 0/1 padding mask to the
// additive [B, 1, 1, encL] form cross-attention adds to its scores.
func EncoderMaskToAdditive(mask *ml.Array) *ml.Array {
	b, l := mask.Dim(0), mask.Dim(1)
	data := make([]float32, b*l)
	for i, v := range mask.Data() {
		if v == 0 {
			data[i] = negInf
		} else {
			data[i] = 0
		}
	}
	return ml.Reshape(ml.NewFromFloats(data, b, l), b, 1, 1, l)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

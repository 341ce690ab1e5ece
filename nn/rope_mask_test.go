package nn

import (
	"testing"

	"github.com/ace-step/aceinfer/ml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRotaryPositionZeroIsIdentity(t *testing.T) {
	cos, sin := BuildRotary(3, 4, 10000)
	// position 0: angle = 0 for every frequency, so cos=1, sin=0.
	for _, v := range cos.Data()[:2] {
		assert.InDelta(t, 1.0, v, 1e-6)
	}
	for _, v := range sin.Data()[:2] {
		assert.InDelta(t, 0.0, v, 1e-6)
	}
}

func TestApplyRotaryPreservesNormPerPair(t *testing.T) {
	cos, sin := BuildRotary(2, 4, 10000)
	x := ml.NewFromFloats([]float32{1, 0, 0, 1, 2, 1, 1, 2}, 1, 1, 2, 4)
	out := ApplyRotary(x, cos, sin)

	for i := 0; i < 2; i++ { // per position
		for pair := 0; pair < 2; pair++ {
			base := i*4 + pair*2
			in1, in2 := x.Data()[base], x.Data()[base+1]
			out1, out2 := out.Data()[base], out.Data()[base+1]
			inNorm := in1*in1 + in2*in2
			outNorm := out1*out1 + out2*out2
			assert.InDelta(t, inNorm, outNorm, 1e-4, "rotation must preserve per-pair norm")
		}
	}
}

func TestSlidingWindowMaskBlocksBeyondWindow(t *testing.T) {
	m := SlidingWindowMask(5, 1)
	require.Equal(t, []int{1, 1, 5, 5}, m.Shape())
	// row 0: positions 0,1 allowed, 2..4 blocked.
	row0 := m.Data()[0:5]
	assert.Equal(t, float32(0), row0[0])
	assert.Equal(t, float32(0), row0[1])
	assert.Equal(t, negInf, row0[2])
	assert.Equal(t, negInf, row0[4])
}

func TestEncoderMaskToAdditiveConvertsZerosToNegInf(t *testing.T) {
	mask := ml.NewFromFloats([]float32{1, 1, 0}, 1, 3)
	out := EncoderMaskToAdditive(mask)
	require.Equal(t, []int{1, 1, 1, 3}, out.Shape())
	assert.Equal(t, []float32{0, 0, negInf}, out.Data())
}

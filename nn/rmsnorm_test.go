package nn

import (
	"testing"

	"github.com/ace-step/aceinfer/ml"
	"github.com/stretchr/testify/assert"
)

func TestRMSNormUnitWeightNormalizesToUnitRMS(t *testing.T) {
	n := &RMSNorm{Weight: ml.Full(1, 4), Eps: 1e-6}
	x := ml.NewFromFloats([]float32{2, 4, 6, 8}, 1, 4)
	out := n.Forward(x)

	var ss float32
	for _, v := range out.Data() {
		ss += v * v
	}
	rms := ss / float32(len(out.Data()))
	assert.InDelta(t, 1.0, rms, 1e-3)
}

func TestRMSNormScalesByWeight(t *testing.T) {
	n := &RMSNorm{Weight: ml.NewFromFloats([]float32{2, 2}, 2), Eps: 1e-6}
	x := ml.NewFromFloats([]float32{1, 1}, 1, 2)
	out := n.Forward(x)
	// x is already unit RMS, so normalized(x) == x, scaled by weight=2.
	assert.InDelta(t, 2.0, out.Data()[0], 1e-3)
	assert.InDelta(t, 2.0, out.Data()[1], 1e-3)
}

func TestRMSNormNoAffineMatchesWeightedVersionAtUnitWeight(t *testing.T) {
	x := ml.NewFromFloats([]float32{1, -3, 5, 7}, 1, 4)
	withWeight := (&RMSNorm{Weight: ml.Full(1, 4), Eps: 1e-6}).Forward(x)
	noAffine := RMSNormNoAffine(x, 1e-6)
	for i := range withWeight.Data() {
		assert.InDelta(t, withWeight.Data()[i], noAffine.Data()[i], 1e-6)
	}
}

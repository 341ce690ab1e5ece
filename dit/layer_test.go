package dit

import (
	"testing"

	"github.com/ace-step/aceinfer/kvcache"
	"github.com/ace-step/aceinfer/ml"
	"github.com/ace-step/aceinfer/nn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModulationSplitsSixVectorsInOrder(t *testing.T) {
	d := 4
	// table all zero, so combined == timestepProj; make each of the 6
	// slots identifiable by its slot index.
	data := make([]float32, 6*d)
	for slot := 0; slot < 6; slot++ {
		for c := 0; c < d; c++ {
			data[slot*d+c] = float32(slot)
		}
	}
	proj := ml.NewFromFloats(data, 1, 6, d)
	table := ml.NewZeros(1, 6, d)

	mod := modulation(proj, table)
	for slot := 0; slot < 6; slot++ {
		assert.Equal(t, float32(slot), mod[slot].Data()[0], "slot %d", slot)
	}
}

func newTestLayer(index int) *Layer {
	dim, heads, kvHeads, headDim := 16, 4, 2, 4
	newAttn := func() *Attention {
		return &Attention{
			ToQ:   &nn.Linear{Weight: ml.NewZeros(heads * headDim, dim)},
			ToK:   &nn.Linear{Weight: ml.NewZeros(kvHeads * headDim, dim)},
			ToV:   &nn.Linear{Weight: ml.NewZeros(kvHeads * headDim, dim)},
			ToOut: &nn.Linear{Weight: ml.NewZeros(dim, dim)},
			NormQ: &nn.RMSNorm{Weight: ml.Full(1, headDim)},
			NormK: &nn.RMSNorm{Weight: ml.Full(1, headDim)},
		}
	}
	l := &Layer{
		SelfAttn:        newAttn(),
		CrossAttn:       newAttn(),
		MLP:             &nn.SwiGLU{Gate: &nn.Linear{Weight: ml.NewZeros(dim, dim)}, Up: &nn.Linear{Weight: ml.NewZeros(dim, dim)}, Down: &nn.Linear{Weight: ml.NewZeros(dim, dim)}},
		Norm1:           &nn.RMSNorm{Weight: ml.Full(1, dim)},
		Norm2:           &nn.RMSNorm{Weight: ml.Full(1, dim)},
		NormMLP1:        &nn.RMSNorm{Weight: ml.Full(1, dim)},
		ScaleShiftTable: ml.NewZeros(1, 6, dim),
	}
	l.init(index, heads, kvHeads, headDim, 1e-6, 4)
	return l
}

func TestLayerForwardPreservesShapeAndAlternatesMask(t *testing.T) {
	evenLayer := newTestLayer(0)
	oddLayer := newTestLayer(1)
	assert.False(t, evenLayer.useSliding)
	assert.True(t, oddLayer.useSliding)

	dim := 16
	h := ml.NewZeros(1, 5, dim)
	temb := ml.NewZeros(1, 6, dim)
	cos, sin := nn.BuildRotary(5, 4, 10000)
	sliding := nn.SlidingWindowMask(5, 1)
	enc := ml.NewZeros(1, 3, dim)
	cache := kvcache.NewCross(true)

	out := evenLayer.Forward(h, temb, cos, sin, sliding, enc, nil, cache)
	require.Equal(t, h.Shape(), out.Shape())
}

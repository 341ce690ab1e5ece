package weights

import (
	"testing"

	"github.com/ace-step/aceinfer/ml"
	"github.com/stretchr/testify/assert"
)

func TestInferRoleFromSuffix(t *testing.T) {
	assert.Equal(t, RoleConv1D, InferRole("decoder_block.0.res_unit.0.conv1.weight"))
	assert.Equal(t, RoleConvTranspose1D, InferRole("decoder_block.0.conv_t1.weight"))
	assert.Equal(t, RoleOther, InferRole("layers.0.norm1.weight"))
}

func TestConvertLayoutPermutesConv1D(t *testing.T) {
	// [out=2, in=3, k=4] -> [out=2, k=4, in=3]
	src := ml.NewZeros(2, 3, 4)
	for i := range src.Data() {
		src.Data()[i] = float32(i)
	}
	out := ConvertLayout(src, RoleConv1D)
	assert.Equal(t, []int{2, 4, 3}, out.Shape())
}

func TestConvertLayoutPermutesConvTranspose1D(t *testing.T) {
	// [in=3, out=2, k=4] -> [out=2, k=4, in=3]
	src := ml.NewZeros(3, 2, 4)
	out := ConvertLayout(src, RoleConvTranspose1D)
	assert.Equal(t, []int{2, 4, 3}, out.Shape())
}

func TestConvertLayoutOtherIsNoOp(t *testing.T) {
	src := ml.NewZeros(4, 4)
	out := ConvertLayout(src, RoleOther)
	assert.Equal(t, src, out)
}

package weights

import (
	"testing"

	"github.com/ace-step/aceinfer/ml"
	"github.com/ace-step/aceinfer/nn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type leafStruct struct {
	Weight *ml.Array `weight:"weight"`
	Bias   *ml.Array `weight:"bias,optional"`
	Hyper  int       `weight:"-"`
}

type nestedStruct struct {
	Leaf  *leafStruct   `weight:"leaf"`
	Norm  *nn.RMSNorm   `weight:"norm"`
	Items []*leafStruct `weight:"items"`
}

func TestPopulateLeafTensorAndOptionalBias(t *testing.T) {
	tree := Tree{
		"weight": ml.NewFromFloats([]float32{1, 2, 3}, 3),
	}
	var dst leafStruct
	require.NoError(t, Populate(tree, &dst))
	assert.Equal(t, []float32{1, 2, 3}, dst.Weight.Data())
	assert.Nil(t, dst.Bias)
}

func TestPopulateMissingRequiredTensorErrors(t *testing.T) {
	var dst leafStruct
	err := Populate(Tree{}, &dst)
	assert.Error(t, err)
}

func TestPopulateNestedStructAndRepeatedSlice(t *testing.T) {
	tree := Tree{
		"leaf.weight":    ml.NewFromFloats([]float32{1}, 1),
		"norm.weight":    ml.NewFromFloats([]float32{1, 1}, 2),
		"items.0.weight": ml.NewFromFloats([]float32{10}, 1),
		"items.1.weight": ml.NewFromFloats([]float32{20}, 1),
	}
	var dst nestedStruct
	require.NoError(t, Populate(tree, &dst))

	require.NotNil(t, dst.Leaf)
	assert.Equal(t, float32(1), dst.Leaf.Weight.Data()[0])
	require.NotNil(t, dst.Norm)
	require.Len(t, dst.Items, 2)
	assert.Equal(t, float32(10), dst.Items[0].Weight.Data()[0])
	assert.Equal(t, float32(20), dst.Items[1].Weight.Data()[0])
}

func TestPopulateConvertsLayoutByInferredRole(t *testing.T) {
	type convStruct struct {
		Conv1 *ml.Array `weight:"block.conv1.weight"`
	}
	// [out=2, in=3, k=2] source layout; InferRole(".conv1.weight") says
	// RoleConv1D, which permutes to [out, k, in] = [2, 2, 3].
	src := ml.NewFromFloats(make([]float32, 2*3*2), 2, 3, 2)
	tree := Tree{"block.conv1.weight": src}

	var dst convStruct
	require.NoError(t, Populate(tree, &dst))
	assert.Equal(t, []int{2, 2, 3}, dst.Conv1.Shape())
}

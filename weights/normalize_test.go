package weights

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlattenWrapperSequentialDropsKnownPassThroughIndex(t *testing.T) {
	idx := map[string]int{"proj_in": 1}
	assert.Equal(t, "proj_in.weight", FlattenWrapperSequential("proj_in.1.weight", idx))
}

func TestFlattenWrapperSequentialLeavesOtherIndicesAlone(t *testing.T) {
	idx := map[string]int{"proj_in": 1}
	assert.Equal(t, "layers.3.norm1.weight", FlattenWrapperSequential("layers.3.norm1.weight", idx))
}

func TestFlattenWrapperSequentialOnlyStripsConfiguredIndex(t *testing.T) {
	idx := map[string]int{"proj_in": 1}
	// index 0 isn't the configured pass-through, so it stays.
	assert.Equal(t, "proj_in.0.weight", FlattenWrapperSequential("proj_in.0.weight", idx))
}

func TestApplyReplacementsRewritesKnownAliases(t *testing.T) {
	assert.Equal(t, "layers.0.self_attn.to_q.weight", ApplyReplacements("layers.0.self_attention.to_q.weight"))
	assert.Equal(t, "layers.0.mlp.gate_proj.weight", ApplyReplacements("layers.0.feed_forward.gate_proj.weight"))
}

func TestToIdentifierStyleIsIdentity(t *testing.T) {
	assert.Equal(t, "patch_in.weight", ToIdentifierStyle("patch_in.weight"))
}

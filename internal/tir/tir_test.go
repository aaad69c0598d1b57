package tir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tridentlang/trident/internal/target"
)

func TestTierOfGroupsMatchSpecCounts(t *testing.T) {
	counts := map[target.Tier]int{}
	for op := OpCall; op <= OpProofBlock; op++ {
		counts[TierOf(op)]++
	}
	assert.Equal(t, 11, counts[target.Tier0])
	assert.Equal(t, 31, counts[target.Tier1])
	assert.Equal(t, 7, counts[target.Tier2])
	assert.Equal(t, 5, counts[target.Tier3])
}

func TestMaxTierFindsDeepestTierInStructuralBody(t *testing.T) {
	ops := []TIROp{
		{Kind: OpPush},
		{Kind: OpIfElse, Then: []TIROp{
			{Kind: OpAdd},
		}, Else: []TIROp{
			{Kind: OpExtMul}, // Tier3, buried inside an Else arm
		}},
	}
	assert.Equal(t, target.Tier3, MaxTier(ops))
}

func TestMaxTierOfFlatTier0ProgramIsTier0(t *testing.T) {
	ops := []TIROp{{Kind: OpFnStart}, {Kind: OpCall}, {Kind: OpFnEnd}, {Kind: OpHalt}}
	assert.Equal(t, target.Tier0, MaxTier(ops))
}

func TestMaxTierDescendsIntoLoopBody(t *testing.T) {
	ops := []TIROp{
		{Kind: OpLoop, Body: []TIROp{{Kind: OpMerkleStep}}},
	}
	assert.Equal(t, target.Tier2, MaxTier(ops))
}

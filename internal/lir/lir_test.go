package lir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tridentlang/trident/internal/tir"
)

func TestConvertPushThenAddProducesOneAluOpWithTwoArgs(t *testing.T) {
	c := NewConverter()
	ops := c.Convert([]tir.TIROp{
		{Kind: tir.OpPush, U64: 1},
		{Kind: tir.OpPush, U64: 2},
		{Kind: tir.OpAdd},
	})

	require.Len(t, ops, 3)
	assert.Equal(t, tir.OpAdd, ops[2].Src)
	assert.Len(t, ops[2].Args, 2)
	assert.NotEqual(t, ops[2].Args[0], ops[2].Args[1], "the two pushed values must land in distinct registers")
}

func TestConvertAssertDoesNotPushAResultRegister(t *testing.T) {
	c := NewConverter()
	ops := c.Convert([]tir.TIROp{
		{Kind: tir.OpPush, U64: 1},
		{Kind: tir.OpAssert},
	})
	require.Len(t, ops, 2)
	assert.Len(t, ops[1].Args, 1, "Assert consumes exactly one operand")
	assert.Empty(t, c.valReg, "Assert must not leave a value live on the simulated stack")
}

func TestConvertIfElseEmitsBranchThenElseEndLabels(t *testing.T) {
	c := NewConverter()
	ops := c.Convert([]tir.TIROp{
		{Kind: tir.OpPush, U64: 1},
		{Kind: tir.OpIfElse,
			Then: []tir.TIROp{{Kind: tir.OpPush, U64: 2}},
			Else: []tir.TIROp{{Kind: tir.OpPush, U64: 3}},
		},
	})

	var kinds []LKind
	for _, op := range ops {
		kinds = append(kinds, op.Kind)
	}
	assert.Contains(t, kinds, LBranch)
	assert.Contains(t, kinds, LJump)

	labelDefs := 0
	for _, op := range ops {
		if op.Kind == LLabelDef {
			labelDefs++
		}
	}
	assert.Equal(t, 3, labelDefs, "then, else and end labels")
}

func TestConvertLoopEmitsLabeledHeadAndCarriesBoundOnTheBackBranch(t *testing.T) {
	c := NewConverter()
	ops := c.Convert([]tir.TIROp{
		{Kind: tir.OpLoop, U64: 4, Body: []tir.TIROp{{Kind: tir.OpPush, U64: 1}}},
	})

	var branch *LOp
	for i := range ops {
		if ops[i].Kind == LBranch {
			branch = &ops[i]
		}
	}
	require.NotNil(t, branch)
	assert.Equal(t, uint64(4), branch.U64)
}

func TestConvertCallPopsOneArgAndPushesAFreshDestination(t *testing.T) {
	c := NewConverter()
	ops := c.Convert([]tir.TIROp{
		{Kind: tir.OpPush, U64: 1},
		{Kind: tir.OpCall, Name: "helper"},
	})

	require.Len(t, ops, 2)
	call := ops[1]
	assert.Equal(t, LCall, call.Kind)
	assert.Equal(t, "helper", call.Name)
	assert.Len(t, call.Args, 1)
}

func TestConvertAsmPreservesLinesAndEffect(t *testing.T) {
	c := NewConverter()
	ops := c.Convert([]tir.TIROp{
		{Kind: tir.OpAsm, Lines: []string{"nop"}, Effect: 1},
	})
	require.Len(t, ops, 1)
	assert.Equal(t, []string{"nop"}, ops[0].Lines)
	assert.Equal(t, 1, ops[0].Effect)
}

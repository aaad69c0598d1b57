package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tridentlang/trident/internal/lir"
	"github.com/tridentlang/trident/internal/tir"
)

func TestStackLoweringEmitsMnemonicForSimpleOp(t *testing.T) {
	s := NewStackLowering("triton-vm")
	out := s.Lower([]tir.TIROp{{Kind: tir.OpAdd}})
	assert.Equal(t, []string{"add"}, out)
}

func TestStackLoweringIndentsIfElseArmsAndClosesWithEndif(t *testing.T) {
	s := NewStackLowering("triton-vm")
	out := s.Lower([]tir.TIROp{
		{Kind: tir.OpIfElse,
			Then: []tir.TIROp{{Kind: tir.OpAdd}},
			Else: []tir.TIROp{{Kind: tir.OpSub}},
		},
	})
	require.Equal(t, []string{"if", "  add", "else", "  sub", "endif"}, out)
}

func TestStackLoweringNestsLoopBodyUnderLoopLabel(t *testing.T) {
	s := NewStackLowering("triton-vm")
	out := s.Lower([]tir.TIROp{
		{Kind: tir.OpLoop, Label: "l0", Body: []tir.TIROp{{Kind: tir.OpAdd}}},
	})
	require.Equal(t, []string{"loop l0:", "  add", "endloop"}, out)
}

func TestStackLoweringFallsBackToNumericOpcodeForUnmappedOp(t *testing.T) {
	s := NewStackLowering("triton-vm")
	s.Mnemonic = map[tir.Op]string{} // clear the default table
	out := s.Lower([]tir.TIROp{{Kind: tir.OpAdd}})
	require.Len(t, out, 1)
	assert.Contains(t, out[0], "op")
}

func TestStackLoweringOutputExtensionAndTargetName(t *testing.T) {
	s := NewStackLowering("triton-vm")
	assert.Equal(t, "triton-vm", s.TargetName())
	assert.Equal(t, "vm.txt", s.OutputExtension())
}

func TestRegisterLoweringFormatsBranchWithRegisterAndLabels(t *testing.T) {
	r := NewRegisterLowering("risc-fold")
	out := r.Lower([]lir.LOp{
		{Kind: lir.LBranch, Cond: 2, ThenLabel: "then_1", ElseLabel: "else_1"},
	})
	require.Equal(t, []string{"br r2, then_1, else_1"}, out)
}

func TestRegisterLoweringFormatsCallWithArgList(t *testing.T) {
	r := NewRegisterLowering("risc-fold")
	out := r.Lower([]lir.LOp{
		{Kind: lir.LCall, Name: "helper", Dst: 3, Args: []lir.Reg{0, 1}},
	})
	require.Equal(t, []string{"r3 = call helper(r0, r1)"}, out)
}

func TestTreeLoweringTerminatesListWithAtomZero(t *testing.T) {
	tl := NewTreeLowering("nock-vm")
	n := tl.Lower(nil)
	require.True(t, n.IsAtom)
	assert.Equal(t, uint64(0), n.Atom)
}

func TestTreeLoweringEncodesPushAsTaggedCell(t *testing.T) {
	tl := NewTreeLowering("nock-vm")
	n := tl.Lower([]tir.TIROp{{Kind: tir.OpPush, U64: 42}})
	require.False(t, n.IsAtom)
	require.True(t, n.Head.Head.IsAtom)
	assert.Equal(t, uint64(1), n.Head.Head.Atom)
}

func TestTreeLoweringEncodesIfElseAsNockSixCell(t *testing.T) {
	tl := NewTreeLowering("nock-vm")
	n := tl.Lower([]tir.TIROp{
		{Kind: tir.OpIfElse, Then: nil, Else: nil},
	})
	require.False(t, n.IsAtom)
	assert.Equal(t, uint64(6), n.Head.Head.Atom)
}

func TestSerializeEmitsCellTagThenTaggedAtoms(t *testing.T) {
	n := cell(atom(1), atom(2))
	out := Serialize(n)
	require.Len(t, out, 1+9+9) // cell tag + (atom tag + 8 bytes) * 2
	assert.Equal(t, byte(1), out[0])
	assert.Equal(t, byte(0), out[1])
}

package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tridentlang/trident/internal/lir"
	"github.com/tridentlang/trident/internal/tir"
)

func TestProfileAddSumsEachTableAndAttestation(t *testing.T) {
	a := Profile{Fields: [numTables]uint64{1, 2, 3, 4, 5, 6}, Attestation: 10}
	b := Profile{Fields: [numTables]uint64{1, 1, 1, 1, 1, 1}, Attestation: 1}

	got := a.Add(b)
	assert.Equal(t, [numTables]uint64{2, 3, 4, 5, 6, 7}, got.Fields)
	assert.Equal(t, uint64(11), got.Attestation)
}

func TestProfileScaleMultipliesEveryField(t *testing.T) {
	p := Profile{Fields: [numTables]uint64{1, 2, 0, 0, 0, 0}, Attestation: 3}
	got := p.Scale(4)
	assert.Equal(t, [numTables]uint64{4, 8, 0, 0, 0, 0}, got.Fields)
	assert.Equal(t, uint64(12), got.Attestation)
}

func TestPaddedHeightRoundsUpToNextPowerOfTwo(t *testing.T) {
	cases := []struct {
		max  uint64
		want uint64
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {5, 8}, {16, 16}, {17, 32},
	}
	for _, c := range cases {
		p := Profile{Fields: [numTables]uint64{c.max, 0, 0, 0, 0, 0}}
		assert.Equal(t, c.want, PaddedHeight(p), "max=%d", c.max)
	}
}

func TestDominantTableReportsTheLargestField(t *testing.T) {
	p := Profile{Fields: [numTables]uint64{1, 9, 2, 0, 0, 0}}
	assert.Equal(t, TableHash, DominantTable(p))
}

func TestStackModelIfElseTakesMaxOfBothArms(t *testing.T) {
	m := NewStackModel(0)
	ops := []tir.TIROp{
		{Kind: tir.OpIfElse,
			Then: []tir.TIROp{{Kind: tir.OpHash}},
			Else: []tir.TIROp{{Kind: tir.OpHash}, {Kind: tir.OpHash}},
		},
	}
	got := m.Estimate(ops, 0)
	assert.Equal(t, uint64(2), got.Fields[TableHash], "else arm has 2 hash rows, should dominate")
}

func TestStackModelLoopScalesBodyByBound(t *testing.T) {
	m := NewStackModel(0)
	ops := []tir.TIROp{
		{Kind: tir.OpLoop, U64: 5, Body: []tir.TIROp{{Kind: tir.OpAdd}}},
	}
	got := m.Estimate(ops, 0)
	assert.Equal(t, uint64(5), got.Fields[TableProcessor])
}

func TestStackModelAttestationScalesWithProgramBytes(t *testing.T) {
	m := NewStackModel(2)
	got := m.Estimate(nil, 10)
	assert.Equal(t, uint64(20), got.Attestation)
}

func TestStackModelU32OpScalesByDeclaredWidth(t *testing.T) {
	m := NewStackModel(0)
	ops := []tir.TIROp{{Kind: tir.OpAnd, Width: 3}}
	got := m.Estimate(ops, 0)
	assert.Equal(t, uint64(3), got.Fields[TableU32])
}

func TestCycleModelIfElseTakesMaxBranch(t *testing.T) {
	m := NewCycleModel()
	ops := []tir.TIROp{
		{Kind: tir.OpIfElse,
			Then: []tir.TIROp{{Kind: tir.OpHash}},
			Else: []tir.TIROp{{Kind: tir.OpAdd}, {Kind: tir.OpAdd}},
		},
	}
	assert.Equal(t, m.Weight[tir.OpHash], m.Estimate(ops))
}

func TestCycleModelLoopMultipliesBodyByBound(t *testing.T) {
	m := NewCycleModel()
	ops := []tir.TIROp{
		{Kind: tir.OpLoop, U64: 3, Body: []tir.TIROp{{Kind: tir.OpMerkleStep}}},
	}
	assert.Equal(t, uint64(3)*m.Weight[tir.OpMerkleStep], m.Estimate(ops))
}

func TestRegisterModelCountsMemoryTouchingOps(t *testing.T) {
	m := NewRegisterModel()
	ops := []lir.LOp{
		{Kind: lir.LAlu, Src: tir.OpReadMem},
		{Kind: lir.LAlu, Src: tir.OpAdd},
		{Kind: lir.LCall},
	}
	cycles, mem := m.EstimateLIR(ops)
	assert.Equal(t, uint64(1), mem)
	assert.Equal(t, m.Cycle.Weight[tir.OpReadMem]+m.Cycle.Weight[tir.OpAdd]+1, cycles)
}

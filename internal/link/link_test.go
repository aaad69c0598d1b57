package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tridentlang/trident/internal/tir"
)

func TestAddIsANoopForAnAlreadyRegisteredSymbol(t *testing.T) {
	l := New()
	l.Add(Unit{Symbol: "f", Ops: []tir.TIROp{{Kind: tir.OpAdd}}})
	l.Add(Unit{Symbol: "f", Ops: []tir.TIROp{{Kind: tir.OpSub}, {Kind: tir.OpSub}}})

	assert.Equal(t, []tir.TIROp{{Kind: tir.OpAdd}}, l.units["f"].Ops)
}

func TestLinkPutsEntryUnitFirst(t *testing.T) {
	l := New()
	l.Add(Unit{Symbol: "helper", Ops: []tir.TIROp{{Kind: tir.OpAdd}}})
	l.Add(Unit{Symbol: "main", Ops: []tir.TIROp{{Kind: tir.OpSub}}})

	ops, errs := l.Link("main")
	require.Empty(t, errs)
	require.Len(t, ops, 2)
	assert.Equal(t, tir.OpSub, ops[0].Kind)
	assert.Equal(t, tir.OpAdd, ops[1].Kind)
}

func TestLinkOrdersNonEntryUnitsBySymbol(t *testing.T) {
	l := New()
	l.Add(Unit{Symbol: "main", Ops: nil})
	l.Add(Unit{Symbol: "zeta", Ops: []tir.TIROp{{Kind: tir.OpMul, Name: "zeta"}}})
	l.Add(Unit{Symbol: "alpha", Ops: []tir.TIROp{{Kind: tir.OpMul, Name: "alpha"}}})

	ops, errs := l.Link("main")
	require.Empty(t, errs)
	require.Len(t, ops, 2)
	assert.Equal(t, "alpha", ops[0].Name)
	assert.Equal(t, "zeta", ops[1].Name)
}

func TestLinkReportsMissingEntry(t *testing.T) {
	l := New()
	_, errs := l.Link("main")
	require.NotEmpty(t, errs)
	assert.Equal(t, "LNK001", errs[0].Code)
}

func TestLinkReportsUnresolvedCallTargets(t *testing.T) {
	l := New()
	l.Add(Unit{Symbol: "main", Ops: []tir.TIROp{{Kind: tir.OpCall, Name: "missing"}}})

	_, errs := l.Link("main")
	require.NotEmpty(t, errs)
	assert.Equal(t, "LNK002", errs[0].Code)
}

func TestLinkFindsUnresolvedCallsNestedInsideBranchesAndLoops(t *testing.T) {
	l := New()
	l.Add(Unit{Symbol: "main", Ops: []tir.TIROp{
		{Kind: tir.OpIfElse, Then: []tir.TIROp{
			{Kind: tir.OpLoop, Body: []tir.TIROp{{Kind: tir.OpCall, Name: "ghost"}}},
		}},
	}})

	_, errs := l.Link("main")
	require.NotEmpty(t, errs)
	assert.Equal(t, "LNK002", errs[0].Code)
}

func TestLinkResolvesCallsToRegisteredUnits(t *testing.T) {
	l := New()
	l.Add(Unit{Symbol: "main", Ops: []tir.TIROp{{Kind: tir.OpCall, Name: "helper"}}})
	l.Add(Unit{Symbol: "helper", Ops: []tir.TIROp{{Kind: tir.OpAdd}}})

	ops, errs := l.Link("main")
	require.Empty(t, errs)
	require.Len(t, ops, 2)
}

func TestAssembleWrapsBodyWithEntryAndHalt(t *testing.T) {
	body := []tir.TIROp{{Kind: tir.OpAdd}}
	out := Assemble("main", body)

	require.Len(t, out, 3)
	assert.Equal(t, tir.OpEntry, out[0].Kind)
	assert.Equal(t, "main", out[0].Name)
	assert.Equal(t, tir.OpAdd, out[1].Kind)
	assert.Equal(t, tir.OpHalt, out[2].Kind)
}

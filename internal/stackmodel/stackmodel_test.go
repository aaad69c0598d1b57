package stackmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tridentlang/trident/internal/tir"
)

func TestAllocPlacesValueAtTop(t *testing.T) {
	m := NewManager(16)
	m.Alloc("a", 1)
	m.Alloc("b", 1)

	ops := m.Access("b")
	assert.Empty(t, ops, "top-of-stack access should need no Swap/Dup")
}

func TestAccessBringsBuriedValueToTop(t *testing.T) {
	m := NewManager(16)
	m.Alloc("a", 1)
	m.Alloc("b", 1)

	ops := m.Access("a")
	require.Len(t, ops, 1)
	assert.Equal(t, tir.OpDup, ops[0].Kind)
}

func TestSpillsWhenOverNativeDepth(t *testing.T) {
	m := NewManager(2)
	m.Alloc("a", 1)
	m.Alloc("b", 1)
	ops := m.Alloc("c", 1) // exceeds native depth 2, forces a spill

	assert.Equal(t, 1, m.SpillCount())
	require.Len(t, ops, 1, "the spilling alloc must emit the WriteMem that lands the evicted value in RAM")
	assert.Equal(t, tir.OpWriteMem, ops[0].Kind)
}

func TestSpilledValueReloadsOnAccess(t *testing.T) {
	m := NewManager(2)
	m.Alloc("a", 1)
	m.Alloc("b", 1)
	m.Alloc("c", 1) // "a" spills, being the least recently used

	ops := m.Access("a")
	// Native depth 2 can't hold all three of a/b/c unspilled at once, so
	// reloading "a" immediately spills whichever of b/c is now LRU ("b").
	require.Len(t, ops, 2)
	assert.Equal(t, tir.OpReadMem, ops[0].Kind)
	assert.Equal(t, tir.OpWriteMem, ops[1].Kind)
	assert.Equal(t, 2, m.SpillCount())
}

func TestDropEmitsSwapThenPop(t *testing.T) {
	m := NewManager(16)
	m.Alloc("a", 1)
	m.Alloc("b", 1)

	ops := m.Drop("a") // "a" is buried under "b"
	require.Len(t, ops, 2)
	assert.Equal(t, tir.OpSwap, ops[0].Kind)
	assert.Equal(t, tir.OpPop, ops[1].Kind)
}

func TestDropAtTopSkipsSwap(t *testing.T) {
	m := NewManager(16)
	m.Alloc("a", 1)

	ops := m.Drop("a")
	require.Len(t, ops, 1)
	assert.Equal(t, tir.OpPop, ops[0].Kind)
}

func TestCheckpointRestoreAcceptsBalancedHeight(t *testing.T) {
	m := NewManager(16)
	m.Alloc("a", 1)
	cp := m.Checkpoint()

	m.Alloc("tmp", 1)
	m.Drop("tmp")

	assert.True(t, m.Restore(cp))
}

func TestCheckpointRestoreRejectsImbalancedHeight(t *testing.T) {
	m := NewManager(16)
	m.Alloc("a", 1)
	cp := m.Checkpoint()

	m.Alloc("leftover", 1)

	assert.False(t, m.Restore(cp))
}

func TestRestoreDropsBindingsAllocatedAfterTheCheckpoint(t *testing.T) {
	m := NewManager(16)
	m.Alloc("a", 1)
	cp := m.Checkpoint()

	m.Alloc("thenLocal", 1) // e.g. a let-binding from an if's then-arm
	require.True(t, m.Restore(cp))

	// thenLocal must no longer be live: accessing it is a no-op, the same
	// as accessing a name that was never allocated.
	assert.Empty(t, m.Access("thenLocal"))
}

func TestRestoreResetsDepthsToTheCheckpointedState(t *testing.T) {
	m := NewManager(16)
	m.Alloc("a", 1)
	m.Alloc("b", 1)
	cp := m.Checkpoint() // "a" at depth 1, "b" at depth 0

	m.Alloc("thenLocal", 1) // buries both "a" and "b" one deeper
	m.Restore(cp)

	// After restore, "b" is back at depth 0 (its checkpointed depth): a
	// top-of-stack access needs no Swap/Dup.
	assert.Empty(t, m.Access("b"))
	// "a" is back at its checkpointed depth 1 and needs exactly one Dup.
	ops := m.Access("a")
	require.Len(t, ops, 1)
	assert.Equal(t, tir.OpDup, ops[0].Kind)
}

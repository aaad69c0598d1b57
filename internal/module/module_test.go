package module

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopoSortPlacesDependenciesBeforeDependents(t *testing.T) {
	mods := map[string]*Module{
		"main":          {Identity: "main", Uses: []string{"std.crypto.hash"}},
		"std.crypto.hash": {Identity: "std.crypto.hash"},
	}

	order := TopoSort(mods, "main")
	require.Len(t, order, 2)
	assert.Equal(t, "std.crypto.hash", order[0].Identity)
	assert.Equal(t, "main", order[1].Identity)
}

func TestTopoSortHandlesADiamondDependency(t *testing.T) {
	mods := map[string]*Module{
		"main": {Identity: "main", Uses: []string{"a", "b"}},
		"a":    {Identity: "a", Uses: []string{"leaf"}},
		"b":    {Identity: "b", Uses: []string{"leaf"}},
		"leaf": {Identity: "leaf"},
	}

	order := TopoSort(mods, "main")
	require.Len(t, order, 4)

	pos := map[string]int{}
	for i, m := range order {
		pos[m.Identity] = i
	}
	assert.Less(t, pos["leaf"], pos["a"])
	assert.Less(t, pos["leaf"], pos["b"])
	assert.Less(t, pos["a"], pos["main"])
	assert.Less(t, pos["b"], pos["main"])

	seen := map[string]int{}
	for _, m := range order {
		seen[m.Identity]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "%s must appear exactly once", id)
	}
}

func TestTopoSortAppendsModulesUnreachableFromEntryInSortedOrder(t *testing.T) {
	mods := map[string]*Module{
		"main": {Identity: "main"},
		"zeta": {Identity: "zeta"},
		"alfa": {Identity: "alfa"},
	}

	order := TopoSort(mods, "main")
	require.Len(t, order, 3)
	assert.Equal(t, "main", order[0].Identity)
	assert.Equal(t, "alfa", order[1].Identity)
	assert.Equal(t, "zeta", order[2].Identity)
}

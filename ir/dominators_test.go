package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDominators_Diamond(t *testing.T) {
	m, ids, _ := buildDiamond(t)
	fn := m.Functions[0]
	dom := m.Dominators(fn)

	require.Equal(t, ids.entry, dom.Root())
	require.True(t, dom.Dominates(ids.entry, ids.merge))
	require.True(t, dom.Dominates(ids.left, ids.left))
	require.False(t, dom.StrictlyDominates(ids.left, ids.left))
	require.False(t, dom.Dominates(ids.left, ids.merge))
	require.False(t, dom.Dominates(ids.right, ids.merge))

	idom, ok := dom.ImmediateDominator(ids.merge)
	require.True(t, ok)
	require.Equal(t, ids.entry, idom)
	_, ok = dom.ImmediateDominator(ids.entry)
	require.False(t, ok)

	require.Equal(t, []uint32{ids.entry, ids.left}, dom.Chain(ids.left))
}

func TestPostDominators_Diamond(t *testing.T) {
	m, ids, _ := buildDiamond(t)
	pdom := m.PostDominators(m.Functions[0])

	require.True(t, pdom.Dominates(ids.merge, ids.entry))
	require.True(t, pdom.StrictlyDominates(ids.merge, ids.left))
	require.False(t, pdom.Dominates(ids.left, ids.entry))
}

func TestDominators_LoopAndUnreachable(t *testing.T) {
	// 1 -> 2 (header) -> 3 (body) -> 4 (continue) -> 2; 2 -> 5 (merge); 6 unreachable -> 5
	succ := map[uint32][]uint32{
		1: {2},
		2: {3, 5},
		3: {4},
		4: {2},
		6: {5},
	}
	dom := BuildDominatorTree(1, func(id uint32) []uint32 { return succ[id] })

	require.True(t, dom.Dominates(2, 4))
	require.True(t, dom.Dominates(2, 5))
	require.False(t, dom.Dominates(3, 5))
	require.False(t, dom.Reachable(6))
	require.False(t, dom.Dominates(6, 5))
	require.False(t, dom.Dominates(1, 6))
	require.Nil(t, dom.Chain(6))

	idom, ok := dom.ImmediateDominator(4)
	require.True(t, ok)
	require.Equal(t, uint32(3), idom)
}

func TestAnalyses_Invalidation(t *testing.T) {
	m, ids, _ := buildDiamond(t)
	fn := m.Functions[0]

	du := m.DefUse()
	dom := m.Dominators(fn)
	require.Same(t, du, m.DefUse())
	require.Same(t, dom, m.Dominators(fn))
	require.Equal(t, []uint32{ids.left, ids.right}, m.Predecessors(ids.merge))

	before := m.Generation()
	m.InvalidateAnalyses()
	require.Equal(t, before+1, m.Generation())
	require.NotSame(t, du, m.DefUse())
	require.NotSame(t, dom, m.Dominators(fn))
}

package facts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManager_SimpleFacts(t *testing.T) {
	m := NewManager()

	require.False(t, m.BlockIsDead(10))
	m.AddFactBlockIsDead(10)
	m.AddFactBlockIsDead(3)
	require.True(t, m.BlockIsDead(10))
	require.Equal(t, []uint32{3, 10}, m.DeadBlocks())

	m.AddFactValueOfPointeeIsIrrelevant(7)
	require.True(t, m.PointeeValueIsIrrelevant(7))
	require.False(t, m.IDIsIrrelevant(7))

	m.AddFactIDIsIrrelevant(8)
	require.True(t, m.IDIsIrrelevant(8))
	require.Equal(t, []uint32{8}, m.IrrelevantIDs())

	m.AddFactFunctionIsLivesafe(4)
	require.True(t, m.FunctionIsLivesafe(4))
	require.Equal(t, []uint32{4}, m.LivesafeFunctions())

	m.AddFactValueOfVariableIsArbitrary(9)
	require.True(t, m.VariableValueIsArbitrary(9))
	require.Equal(t, []uint32{7}, m.IrrelevantPointees())
}

func TestManager_SynonymClosure(t *testing.T) {
	m := NewManager()
	a := MakeDataDescriptor(1)
	b := MakeDataDescriptor(2)
	c := MakeDataDescriptor(3)
	d := MakeDataDescriptor(4)

	require.True(t, m.IsSynonymous(a, a), "reflexive without any fact")
	require.False(t, m.IsSynonymous(a, b))

	m.AddFactDataSynonym(a, b)
	m.AddFactDataSynonym(c, b)
	require.True(t, m.IsSynonymous(b, a), "symmetric")
	require.True(t, m.IsSynonymous(a, c), "transitive")
	require.False(t, m.IsSynonymous(a, d))

	require.Equal(t, []DataDescriptor{b, c}, m.SynonymsOf(a))
	require.Empty(t, m.SynonymsOf(d))
}

func TestManager_ComponentwiseSynonyms(t *testing.T) {
	m := NewManager()
	m.AddFactDataSynonym(MakeDataDescriptor(10, 1), MakeDataDescriptor(20))

	require.True(t, m.IsSynonymous(MakeDataDescriptor(10, 1, 2), MakeDataDescriptor(20, 2)))
	require.True(t, m.IsSynonymous(MakeDataDescriptor(10, 1, 2, 0), MakeDataDescriptor(20, 2, 0)))
	require.False(t, m.IsSynonymous(MakeDataDescriptor(10, 1, 2), MakeDataDescriptor(20, 3)))
	require.False(t, m.IsSynonymous(MakeDataDescriptor(10, 2), MakeDataDescriptor(20)))
}

func TestManager_IrrelevantSynonymPanics(t *testing.T) {
	m := NewManager()
	m.AddFactIDIsIrrelevant(5)
	require.Panics(t, func() {
		m.AddFactDataSynonym(MakeDataDescriptor(5), MakeDataDescriptor(6))
	})

	m.AddFactDataSynonym(MakeDataDescriptor(7), MakeDataDescriptor(8))
	require.Panics(t, func() { m.AddFactIDIsIrrelevant(7) })
}

func TestDataDescriptor(t *testing.T) {
	d := MakeDataDescriptor(12, 0, 3)
	require.Equal(t, "%12[0][3]", d.String())

	parent, last, ok := d.Parent()
	require.True(t, ok)
	require.Equal(t, uint32(3), last)
	require.True(t, parent.Equal(MakeDataDescriptor(12, 0)))
	require.True(t, parent.Child(3).Equal(d))

	_, _, ok = MakeDataDescriptor(12).Parent()
	require.False(t, ok)
}

func TestFacts_EncodeDecode(t *testing.T) {
	in := []Fact{
		{Kind: KindBlockIsDead, ID: 10},
		{Kind: KindFunctionIsLivesafe, ID: 4},
		{Kind: KindDataSynonym, A: MakeDataDescriptor(1, 0), B: MakeDataDescriptor(2)},
	}
	data, err := EncodeFacts(in)
	require.NoError(t, err)
	out, err := DecodeFacts(data)
	require.NoError(t, err)
	require.Len(t, out, 3)

	m := NewManager()
	for _, f := range out {
		require.NoError(t, m.Add(f))
	}
	require.True(t, m.BlockIsDead(10))
	require.True(t, m.FunctionIsLivesafe(4))
	require.True(t, m.IsSynonymous(MakeDataDescriptor(2), MakeDataDescriptor(1, 0)))

	require.Error(t, m.Add(Fact{Kind: "Bogus"}))
	_, err = DecodeFacts([]byte{0xc1})
	require.Error(t, err)
}

package ir

import (
	"testing"

	"github.com/gogpu/spvfuzz/spirv"
	"github.com/stretchr/testify/require"
)

func TestParse_Sections(t *testing.T) {
	m, ids, _ := buildDiamond(t)

	require.Len(t, m.Capabilities, 1)
	require.NotNil(t, m.MemoryModel)
	require.Len(t, m.EntryPoints, 1)
	require.Len(t, m.ExecutionModes, 1)
	require.Len(t, m.Debugs, 1)
	require.Len(t, m.TypesValues, 6)
	require.Len(t, m.Functions, 1)
	require.Equal(t, ids.phi+1, m.IDBound())

	fn := m.Functions[0]
	require.Equal(t, ids.fn, fn.ID())
	require.Equal(t, ids.void, fn.ReturnType())
	require.Equal(t, ids.fnType, fn.TypeID())
	require.Len(t, fn.Blocks, 4)
	require.Equal(t, ids.entry, fn.Entry().ID())
	require.Same(t, fn, fn.Blocks[2].Function)

	entry := fn.Entry()
	require.Equal(t, ids.merge, entry.MergeBlock())
	require.False(t, entry.IsLoopHeader())
	require.Equal(t, []uint32{ids.left, ids.right}, entry.Successors())

	merge := fn.Block(ids.merge)
	require.Len(t, merge.Phis(), 1)
	require.Equal(t, ids.sum, merge.Phis()[0].PhiValueFor(ids.left))
	require.Equal(t, ids.one, merge.Phis()[0].PhiValueFor(ids.right))
	require.Empty(t, merge.Successors())
}

func TestParse_RoundTrip(t *testing.T) {
	m, _, data := buildDiamond(t)
	require.Equal(t, data, m.Encode())

	clone := m.Clone()
	require.Equal(t, data, clone.Encode())
	require.NotSame(t, m.Functions[0], clone.Functions[0])
}

func TestParse_Errors(t *testing.T) {
	encode := func(insts ...spirv.Instruction) []byte {
		return spirv.Encode(spirv.Header{Version: spirv.Version1_0, Bound: 10}, insts)
	}
	tests := []struct {
		name string
		data []byte
	}{
		{"garbage", []byte{1, 2, 3}},
		{"unknown opcode", encode(spirv.Instruction{Opcode: 9999})},
		{"label outside function", encode(spirv.Instruction{Opcode: spirv.OpLabel, Words: []uint32{1}})},
		{"unterminated function", encode(
			spirv.Instruction{Opcode: spirv.OpFunction, Words: []uint32{1, 2, 0, 3}},
		)},
		{"instruction before label", encode(
			spirv.Instruction{Opcode: spirv.OpFunction, Words: []uint32{1, 2, 0, 3}},
			spirv.Instruction{Opcode: spirv.OpReturn},
		)},
		{"branch at module scope", encode(spirv.Instruction{Opcode: spirv.OpBranch, Words: []uint32{4}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			require.Error(t, err)
		})
	}
}

func TestBlockEditing(t *testing.T) {
	m, ids, _ := buildDiamond(t)
	fn := m.Functions[0]

	extra := NewBasicBlock(100, NewInstruction(spirv.OpBranch, 0, 0, IDs(ids.merge)...))
	fn.InsertBlockAfter(ids.left, extra)
	require.Equal(t, 2, fn.BlockIndex(100))
	require.Same(t, fn, extra.Function)

	left := fn.Block(ids.left)
	nop := NewInstruction(spirv.OpNop, 0, 0)
	left.InsertBefore(1, nop)
	require.Equal(t, 1, left.IndexOf(nop))
	left.Remove(1)
	require.Equal(t, -1, left.IndexOf(nop))

	fn.RemoveBlock(100)
	require.Nil(t, fn.Block(100))
}

func TestInstruction_IDRewriting(t *testing.T) {
	inst := NewInstruction(spirv.OpIAdd, 2, 10, IDs(7, 7)...)
	require.True(t, inst.UsesID(7))
	require.True(t, inst.ReplaceID(7, 8))
	require.Equal(t, []uint32{8, 8}, inst.InIDs())
	require.False(t, inst.ReplaceID(7, 9))

	clone := inst.Clone()
	clone.SetOperand(0, spirv.IDOperand(1))
	require.Equal(t, uint32(8), inst.IDOperand(0))
	require.Equal(t, []uint32{2, 10, 8, 8}, inst.Words())

	require.Panics(t, func() {
		NewInstruction(spirv.OpConstant, 2, 3, Literals(5)...).IDOperand(0)
	})
}

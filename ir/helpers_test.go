package ir

import (
	"testing"

	"github.com/gogpu/spvfuzz/spirv"
	"github.com/stretchr/testify/require"
)

type diamondIDs struct {
	void, boolType, intType, trueConst, one, fnType uint32
	fn, entry, left, right, merge                   uint32
	sum, phi                                        uint32
}

// buildDiamond builds a compute shader whose main function branches on true
// into two arms that join at a merge block with an OpPhi.
func buildDiamond(t *testing.T) (*Module, diamondIDs, []byte) {
	t.Helper()
	var ids diamondIDs
	b := spirv.NewModuleBuilder(spirv.Version1_3)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)

	ids.void = b.AddTypeVoid()
	ids.boolType = b.AddTypeBool()
	ids.trueConst = b.AddConstantTrue(ids.boolType)
	ids.intType = b.AddTypeInt(32, true)
	ids.one = b.AddConstant(ids.intType, 1)
	ids.fnType = b.AddTypeFunction(ids.void)

	ids.fn = b.AddFunction(ids.fnType, ids.void, spirv.FunctionControlNone)
	ids.entry = b.AddLabel()
	ids.left, ids.right, ids.merge = b.AllocID(), b.AllocID(), b.AllocID()
	b.AddSelectionMerge(ids.merge, spirv.SelectionControlNone)
	b.AddBranchConditional(ids.trueConst, ids.left, ids.right)
	b.AddLabelWithID(ids.left)
	ids.sum = b.AddBinaryOp(spirv.OpIAdd, ids.intType, ids.one, ids.one)
	b.AddBranch(ids.merge)
	b.AddLabelWithID(ids.right)
	b.AddBranch(ids.merge)
	b.AddLabelWithID(ids.merge)
	ids.phi = b.AddPhi(ids.intType, ids.sum, ids.left, ids.one, ids.right)
	b.AddReturn()
	b.AddFunctionEnd()

	b.AddEntryPoint(spirv.ExecutionModelGLCompute, ids.fn, "main", nil)
	b.AddExecutionMode(ids.fn, spirv.ExecutionModeLocalSize, 1, 1, 1)
	b.AddName(ids.fn, "main")

	data := b.Build()
	m, err := Parse(data)
	require.NoError(t, err)
	return m, ids, data
}

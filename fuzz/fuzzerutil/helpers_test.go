package fuzzerutil

import (
	"testing"

	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
	"github.com/stretchr/testify/require"
)

type loopIDs struct {
	void, boolType, trueConst, intType, uintType, one, zero     uint32
	ptrFunction, ptrPrivate, global, fnType                     uint32
	fn, variable, entry, header, body, cont, merge, dead, sum uint32
}

// buildLoop builds a function with a single loop:
//
//	entry -> header -> body -> cont -> header
//	header -> merge
//
// plus an unreachable block dead that branches to merge.
func buildLoop(t *testing.T) (*ir.Module, loopIDs) {
	t.Helper()
	var ids loopIDs
	b := spirv.NewModuleBuilder(spirv.Version1_3)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)

	ids.void = b.AddTypeVoid()
	ids.boolType = b.AddTypeBool()
	ids.trueConst = b.AddConstantTrue(ids.boolType)
	ids.intType = b.AddTypeInt(32, true)
	ids.uintType = b.AddTypeInt(32, false)
	ids.one = b.AddConstant(ids.intType, 1)
	ids.zero = b.AddConstant(ids.intType, 0)
	ids.ptrFunction = b.AddTypePointer(spirv.StorageClassFunction, ids.intType)
	ids.ptrPrivate = b.AddTypePointer(spirv.StorageClassPrivate, ids.intType)
	ids.global = b.AddVariable(ids.ptrPrivate, spirv.StorageClassPrivate)
	ids.fnType = b.AddTypeFunction(ids.void)

	ids.fn = b.AddFunction(ids.fnType, ids.void, spirv.FunctionControlNone)
	ids.entry = b.AddLabel()
	ids.variable = b.AddLocalVariable(ids.ptrFunction)
	ids.header, ids.body, ids.cont, ids.merge, ids.dead = b.AllocID(), b.AllocID(), b.AllocID(), b.AllocID(), b.AllocID()
	b.AddBranch(ids.header)

	b.AddLabelWithID(ids.header)
	b.AddLoopMerge(ids.merge, ids.cont, spirv.LoopControlNone)
	b.AddBranchConditional(ids.trueConst, ids.body, ids.merge)

	b.AddLabelWithID(ids.body)
	ids.sum = b.AddBinaryOp(spirv.OpIAdd, ids.intType, ids.one, ids.one)
	b.AddStore(ids.variable, ids.sum)
	b.AddBranch(ids.cont)

	b.AddLabelWithID(ids.cont)
	b.AddBranch(ids.header)

	b.AddLabelWithID(ids.merge)
	b.AddReturn()

	b.AddLabelWithID(ids.dead)
	b.AddBranch(ids.merge)
	b.AddFunctionEnd()

	b.AddEntryPoint(spirv.ExecutionModelGLCompute, ids.fn, "main", nil)
	b.AddExecutionMode(ids.fn, spirv.ExecutionModeLocalSize, 1, 1, 1)

	m, err := ir.Parse(b.Build())
	require.NoError(t, err)
	return m, ids
}

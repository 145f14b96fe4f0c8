package fuzz

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gogpu/spvfuzz/fuzz/facts"
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// shader is a module under construction with the declarations most tests
// need already in place.
type shader struct {
	b *spirv.ModuleBuilder

	void, boolType, trueConst, falseConst uint32
	intType, uintType, floatType          uint32
	zero, one, two                        uint32
	voidFn                                uint32
	ptrFunctionInt, ptrPrivateInt         uint32
}

func newShader() *shader {
	return newShaderWithVersion(spirv.Version1_3)
}

func newShaderWithVersion(version spirv.Version) *shader {
	b := spirv.NewModuleBuilder(version)
	b.AddCapability(spirv.CapabilityShader)
	b.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)

	s := &shader{b: b}
	s.void = b.AddTypeVoid()
	s.boolType = b.AddTypeBool()
	s.trueConst = b.AddConstantTrue(s.boolType)
	s.falseConst = b.AddConstantFalse(s.boolType)
	s.intType = b.AddTypeInt(32, true)
	s.uintType = b.AddTypeInt(32, false)
	s.floatType = b.AddTypeFloat(32)
	s.zero = b.AddConstant(s.intType, 0)
	s.one = b.AddConstant(s.intType, 1)
	s.two = b.AddConstant(s.intType, 2)
	s.voidFn = b.AddTypeFunction(s.void)
	s.ptrFunctionInt = b.AddTypePointer(spirv.StorageClassFunction, s.intType)
	s.ptrPrivateInt = b.AddTypePointer(spirv.StorageClassPrivate, s.intType)
	return s
}

// entryPoint declares fn as a compute entry point.
func (s *shader) entryPoint(fn uint32) {
	s.b.AddEntryPoint(spirv.ExecutionModelGLCompute, fn, "main", nil)
	s.b.AddExecutionMode(fn, spirv.ExecutionModeLocalSize, 1, 1, 1)
}

func (s *shader) build(t *testing.T) *ir.Module {
	t.Helper()
	m, err := ir.Parse(s.b.Build())
	require.NoError(t, err)
	requireValid(t, m)
	return m
}

func newContext() *TransformationContext {
	return NewTransformationContext(facts.NewManager(), nil)
}

func newOverflowContext(start uint32) *TransformationContext {
	return NewTransformationContext(facts.NewManager(), NewCounterOverflowIDSource(start))
}

func requireValid(t *testing.T, m *ir.Module) {
	t.Helper()
	require.True(t, fuzzerutil.IsValidAndWellFormed(m, zaptest.NewLogger(t)), "module is invalid:\n%s", ir.Disassemble(m))
}

// requireApply checks that tr is applicable, applies it and checks that the
// result is still valid.
func requireApply(t *testing.T, tr Transformation, m *ir.Module, ctx *TransformationContext) {
	t.Helper()
	require.True(t, tr.IsApplicable(m, ctx))
	// Applicability checks leave the module untouched.
	require.True(t, tr.IsApplicable(m, ctx))
	tr.Apply(m, ctx)
	requireValid(t, m)
}

func def(m *ir.Module, id uint32) *ir.Instruction {
	return m.DefUse().GetDef(id)
}

func opcodes(b *ir.BasicBlock) []spirv.OpCode {
	ops := make([]spirv.OpCode, len(b.Insts))
	for k, inst := range b.Insts {
		ops[k] = inst.Opcode
	}
	return ops
}

func blockIDs(fn *ir.Function) []uint32 {
	ids := make([]uint32, len(fn.Blocks))
	for k, b := range fn.Blocks {
		ids[k] = b.ID()
	}
	return ids
}

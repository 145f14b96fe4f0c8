package fuzz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvfuzz/fuzz/facts"
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// buildEmpty builds a module with one entry point that only returns.
func buildEmpty(t *testing.T) (*ir.Module, *shader, uint32) {
	t.Helper()
	s := newShader()
	fn := s.b.AddFunction(s.voidFn, s.void, spirv.FunctionControlNone)
	s.b.AddLabel()
	s.b.AddReturn()
	s.b.AddFunctionEnd()
	s.entryPoint(fn)
	return s.build(t), s, fn
}

func TestAddTypes(t *testing.T) {
	m, s, _ := buildEmpty(t)
	ctx := newContext()
	fresh := m.IDBound()

	// Scalar types that already exist cannot be declared again.
	require.False(t, NewAddTypeBoolean(fresh).IsApplicable(m, ctx))
	require.False(t, NewAddTypeInt(fresh, 32, true).IsApplicable(m, ctx))
	require.False(t, NewAddTypeFloat(fresh, 32).IsApplicable(m, ctx))
	// Other widths need their capability.
	require.False(t, NewAddTypeInt(fresh, 64, true).IsApplicable(m, ctx))
	require.False(t, NewAddTypeFloat(fresh, 64).IsApplicable(m, ctx))
	require.False(t, NewAddTypeInt(fresh, 12, true).IsApplicable(m, ctx))

	requireApply(t, NewAddTypePointer(fresh, spirv.StorageClassWorkgroup, s.intType), m, ctx)
	require.Equal(t, fresh, fuzzerutil.MaybeGetPointerType(m, spirv.StorageClassWorkgroup, s.intType))
	require.False(t, NewAddTypePointer(fresh+1, spirv.StorageClassPrivate, s.one).IsApplicable(m, ctx))

	requireApply(t, NewAddTypeFunction(fresh+1, s.intType, s.floatType, s.boolType), m, ctx)
	require.Equal(t, fresh+1, fuzzerutil.FindFunctionType(m, s.intType, []uint32{s.floatType, s.boolType}))
	// Duplicate signature.
	require.False(t, NewAddTypeFunction(fresh+2, s.void).IsApplicable(m, ctx))
	// Void parameter.
	require.False(t, NewAddTypeFunction(fresh+2, s.void, s.void).IsApplicable(m, ctx))
	// Function return type.
	require.False(t, NewAddTypeFunction(fresh+2, s.voidFn).IsApplicable(m, ctx))

	requireApply(t, NewAddTypeStruct(fresh+2, s.intType, s.floatType), m, ctx)
	require.Equal(t, fresh+2, fuzzerutil.MaybeGetStructType(m, []uint32{s.intType, s.floatType}))
	require.False(t, NewAddTypeStruct(fresh+3, s.void).IsApplicable(m, ctx))
	require.False(t, NewAddTypeStruct(fresh+3, s.voidFn).IsApplicable(m, ctx))
	require.False(t, NewAddTypeStruct(fresh+2, s.intType).IsApplicable(m, ctx))
}

func TestAddTypeInt_Capability(t *testing.T) {
	s := newShader()
	s.b.AddCapability(spirv.CapabilityInt64)
	fn := s.b.AddFunction(s.voidFn, s.void, spirv.FunctionControlNone)
	s.b.AddLabel()
	s.b.AddReturn()
	s.b.AddFunctionEnd()
	s.entryPoint(fn)
	m := s.build(t)
	ctx := newContext()
	fresh := m.IDBound()

	requireApply(t, NewAddTypeInt(fresh, 64, false), m, ctx)
	require.Equal(t, fresh, fuzzerutil.MaybeGetIntegerType(m, 64, false))
	require.False(t, NewAddTypeInt(fresh+1, 16, false).IsApplicable(m, ctx))
}

func TestAddTypeStruct_RejectsBuiltInBlocks(t *testing.T) {
	s := newShader()
	vec4 := s.b.AddTypeVector(s.floatType, 4)
	perVertex := s.b.AddTypeStruct(vec4)
	s.b.AddMemberDecorate(perVertex, 0, spirv.DecorationBuiltIn, uint32(spirv.BuiltInPosition))
	fn := s.b.AddFunction(s.voidFn, s.void, spirv.FunctionControlNone)
	s.b.AddLabel()
	s.b.AddReturn()
	s.b.AddFunctionEnd()
	s.entryPoint(fn)
	m := s.build(t)

	require.False(t, NewAddTypeStruct(m.IDBound(), perVertex).IsApplicable(m, newContext()))
	require.True(t, NewAddTypeStruct(m.IDBound(), vec4).IsApplicable(m, newContext()))
}

func TestAddConstants(t *testing.T) {
	m, s, _ := buildEmpty(t)
	ctx := newContext()
	fresh := m.IDBound()

	requireApply(t, NewAddConstantBoolean(fresh, true, true), m, ctx)
	require.Equal(t, spirv.OpConstantTrue, def(m, fresh).Opcode)
	require.True(t, ctx.Facts().IDIsIrrelevant(fresh))

	requireApply(t, NewAddConstantScalar(fresh+1, s.intType, []uint32{7}, false), m, ctx)
	require.Equal(t, fresh+1, fuzzerutil.MaybeGetIntegerConstant(m, ctx.Facts(), []uint32{7}, 32, true, false))
	// A 32-bit type takes exactly one word.
	require.False(t, NewAddConstantScalar(fresh+2, s.intType, []uint32{7, 0}, false).IsApplicable(m, ctx))
	require.False(t, NewAddConstantScalar(fresh+2, s.boolType, []uint32{1}, false).IsApplicable(m, ctx))

	requireApply(t, NewAddGlobalUndef(fresh+2, s.floatType), m, ctx)
	require.Equal(t, spirv.OpUndef, def(m, fresh+2).Opcode)
	require.False(t, NewAddGlobalUndef(fresh+3, s.void).IsApplicable(m, ctx))
	require.False(t, NewAddGlobalUndef(fresh+3, s.voidFn).IsApplicable(m, ctx))
}

func TestAddConstantComposite(t *testing.T) {
	s := newShader()
	vec2 := s.b.AddTypeVector(s.intType, 2)
	pair := s.b.AddTypeStruct(s.intType, s.boolType)
	fn := s.b.AddFunction(s.voidFn, s.void, spirv.FunctionControlNone)
	s.b.AddLabel()
	s.b.AddReturn()
	s.b.AddFunctionEnd()
	s.entryPoint(fn)
	m := s.build(t)
	ctx := newContext()
	fresh := m.IDBound()

	requireApply(t, NewAddConstantComposite(fresh, vec2, []uint32{s.one, s.two}, false), m, ctx)
	f := ctx.Facts()
	require.True(t, f.IsSynonymous(facts.MakeDataDescriptor(s.one), facts.MakeDataDescriptor(fresh, 0)))
	require.True(t, f.IsSynonymous(facts.MakeDataDescriptor(s.two), facts.MakeDataDescriptor(fresh, 1)))

	requireApply(t, NewAddConstantComposite(fresh+1, pair, []uint32{s.zero, s.trueConst}, true), m, ctx)
	require.True(t, f.IDIsIrrelevant(fresh+1))
	require.False(t, f.IsSynonymous(facts.MakeDataDescriptor(s.zero), facts.MakeDataDescriptor(fresh+1, 0)))

	// Wrong constituent count or types.
	require.False(t, NewAddConstantComposite(fresh+2, vec2, []uint32{s.one}, false).IsApplicable(m, ctx))
	require.False(t, NewAddConstantComposite(fresh+2, pair, []uint32{s.trueConst, s.zero}, false).IsApplicable(m, ctx))
	require.False(t, NewAddConstantComposite(fresh+2, s.intType, []uint32{s.one}, false).IsApplicable(m, ctx))
}

func TestAddVariables(t *testing.T) {
	m, s, fn := buildEmpty(t)
	ctx := newContext()
	fresh := m.IDBound()

	requireApply(t, NewAddGlobalVariable(fresh, s.ptrPrivateInt, spirv.StorageClassPrivate, s.one, true), m, ctx)
	require.True(t, ctx.Facts().PointeeValueIsIrrelevant(fresh))
	// Storage class must match the pointer type.
	require.False(t, NewAddGlobalVariable(fresh+1, s.ptrPrivateInt, spirv.StorageClassWorkgroup, 0, false).IsApplicable(m, ctx))
	// Function variables are local.
	require.False(t, NewAddGlobalVariable(fresh+1, s.ptrFunctionInt, spirv.StorageClassFunction, 0, false).IsApplicable(m, ctx))
	// The initializer must have the pointee type.
	require.False(t, NewAddGlobalVariable(fresh+1, s.ptrPrivateInt, spirv.StorageClassPrivate, s.trueConst, false).IsApplicable(m, ctx))

	requireApply(t, NewAddLocalVariable(fresh+1, s.ptrFunctionInt, fn, s.zero, false), m, ctx)
	entry := m.Function(fn).Entry()
	require.Equal(t, fresh+1, entry.Insts[0].ResultID)
	require.False(t, ctx.Facts().PointeeValueIsIrrelevant(fresh+1))
	require.False(t, NewAddLocalVariable(fresh+2, s.ptrPrivateInt, fn, s.zero, false).IsApplicable(m, ctx))
	require.False(t, NewAddLocalVariable(fresh+2, s.ptrFunctionInt, fn, 0, false).IsApplicable(m, ctx))
	require.False(t, NewAddLocalVariable(fresh+2, s.ptrFunctionInt, s.one, s.zero, false).IsApplicable(m, ctx))
}

func TestAddGlobalVariable_EntryPointInterface(t *testing.T) {
	s := newShaderWithVersion(spirv.Version1_4)
	fn := s.b.AddFunction(s.voidFn, s.void, spirv.FunctionControlNone)
	s.b.AddLabel()
	s.b.AddReturn()
	s.b.AddFunctionEnd()
	s.entryPoint(fn)
	m := s.build(t)
	ctx := newContext()
	fresh := m.IDBound()

	requireApply(t, NewAddGlobalVariable(fresh, s.ptrPrivateInt, spirv.StorageClassPrivate, 0, false), m, ctx)
	require.True(t, m.EntryPoints[0].UsesID(fresh))
}

func TestAddConstantComposite_Arrays(t *testing.T) {
	s := newShader()
	length := s.b.AddConstant(s.uintType, 2)
	huge := s.b.AddConstant(s.uintType, 0x40000000)
	small := s.b.AddTypeArray(s.intType, length)
	large := s.b.AddTypeArray(s.intType, huge)
	fn := s.b.AddFunction(s.voidFn, s.void, spirv.FunctionControlNone)
	s.b.AddLabel()
	s.b.AddReturn()
	s.b.AddFunctionEnd()
	s.entryPoint(fn)
	m := s.build(t)
	ctx := newContext()
	fresh := m.IDBound()

	// The declared length is compared before any per-component work.
	require.False(t, NewAddConstantComposite(fresh, large, []uint32{s.one}, false).IsApplicable(m, ctx))
	require.False(t, NewAddConstantComposite(fresh, small, []uint32{s.one}, false).IsApplicable(m, ctx))
	require.False(t, NewAddConstantComposite(fresh, small, []uint32{s.one, s.trueConst}, false).IsApplicable(m, ctx))

	requireApply(t, NewAddConstantComposite(fresh, small, []uint32{s.one, s.two}, false), m, ctx)
	require.True(t, ctx.Facts().IsSynonymous(facts.MakeDataDescriptor(s.two), facts.MakeDataDescriptor(fresh, 1)))
}

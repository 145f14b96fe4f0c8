package fuzz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvfuzz/fuzz/facts"
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

type callShader struct {
	*shader
	half, pair, single, calleeType     uint32
	callee, paramA, paramB, main, call uint32
}

// buildCall builds a helper function int(int a, float b) and an entry point
// that calls it once.
func buildCall(t *testing.T) (*ir.Module, callShader) {
	t.Helper()
	s := callShader{shader: newShader()}
	b := s.b
	s.half = b.AddConstantFloat32(s.floatType, 0.5)
	s.pair = b.AddTypeStruct(s.intType, s.floatType)
	s.single = b.AddTypeStruct(s.intType)
	s.calleeType = b.AddTypeFunction(s.intType, s.intType, s.floatType)

	s.callee = b.AddFunction(s.calleeType, s.intType, spirv.FunctionControlNone)
	s.paramA = b.AddFunctionParameter(s.intType)
	s.paramB = b.AddFunctionParameter(s.floatType)
	b.AddLabel()
	sum := b.AddBinaryOp(spirv.OpIAdd, s.intType, s.paramA, s.one)
	b.AddReturnValue(sum)
	b.AddFunctionEnd()

	s.main = b.AddFunction(s.voidFn, s.void, spirv.FunctionControlNone)
	b.AddLabel()
	s.call = b.AddFunctionCall(s.intType, s.callee, s.two, s.half)
	b.AddReturn()
	b.AddFunctionEnd()
	s.entryPoint(s.main)
	return s.build(t), s
}

func TestReplaceParameterWithGlobal(t *testing.T) {
	m, s := buildCall(t)
	f := facts.NewManager()
	f.AddFactIDIsIrrelevant(s.paramA)
	ctx := NewTransformationContext(f, nil)
	fresh := m.IDBound()

	requireApply(t, NewReplaceParameterWithGlobal(fresh, s.paramA, fresh+1), m, ctx)

	callee := m.Function(s.callee)
	require.Len(t, callee.Params, 1)
	require.Equal(t, s.paramB, callee.Params[0].ResultID)
	load := callee.Entry().Insts[0]
	require.Equal(t, spirv.OpLoad, load.Opcode)
	require.Equal(t, s.paramA, load.ResultID)
	require.Equal(t, []uint32{fresh + 1}, load.InIDs())

	require.Equal(t, fresh, callee.TypeID())
	require.Nil(t, def(m, s.calleeType), "the old function type is unused")

	call := def(m, s.call)
	require.Equal(t, []uint32{s.callee, s.half}, call.InIDs())
	entry := m.Function(s.main).Entry()
	store := entry.Insts[entry.IndexOf(call)-1]
	require.Equal(t, spirv.OpStore, store.Opcode)
	require.Equal(t, []uint32{fresh + 1, s.two}, store.InIDs())

	require.True(t, f.PointeeValueIsIrrelevant(fresh+1))
}

func TestReplaceParameterWithGlobal_NotApplicable(t *testing.T) {
	m, s := buildCall(t)
	ctx := newContext()
	fresh := m.IDBound()

	// There is no Private pointer to float.
	require.False(t, NewReplaceParameterWithGlobal(fresh, s.paramB, fresh+1).IsApplicable(m, ctx))
	// Not a parameter.
	require.False(t, NewReplaceParameterWithGlobal(fresh, s.call, fresh+1).IsApplicable(m, ctx))
	require.False(t, NewReplaceParameterWithGlobal(fresh, s.paramA, fresh).IsApplicable(m, ctx))
}

func TestReplaceParamsWithStruct(t *testing.T) {
	m, s := buildCall(t)
	ctx := newContext()
	fresh := m.IDBound()
	composite := fresh + 2

	require.False(t, NewReplaceParamsWithStruct([]uint32{s.paramA, s.paramB}, fresh, fresh+1, nil).IsApplicable(m, ctx),
		"the call site needs a composite id")
	require.False(t, NewReplaceParamsWithStruct([]uint32{s.paramB, s.paramA}, fresh, fresh+1, map[uint32]uint32{s.call: composite}).
		IsApplicable(m, ctx), "there is no struct {float, int}")
	require.False(t, NewReplaceParamsWithStruct([]uint32{s.paramA, s.paramA}, fresh, fresh+1, map[uint32]uint32{s.call: composite}).
		IsApplicable(m, ctx))

	tr := NewReplaceParamsWithStruct([]uint32{s.paramA, s.paramB}, fresh, fresh+1, map[uint32]uint32{s.call: composite})
	requireApply(t, tr, m, ctx)

	callee := m.Function(s.callee)
	require.Len(t, callee.Params, 1)
	require.Equal(t, fresh+1, callee.Params[0].ResultID)
	require.Equal(t, s.pair, callee.Params[0].TypeID)
	require.Equal(t, fresh, fuzzerutil.FindFunctionType(m, s.intType, []uint32{s.pair}))

	entry := callee.Entry()
	require.Equal(t, spirv.OpCompositeExtract, entry.Insts[0].Opcode)
	require.Equal(t, s.paramA, entry.Insts[0].ResultID)
	require.Equal(t, s.paramB, entry.Insts[1].ResultID)

	construct := def(m, composite)
	require.Equal(t, spirv.OpCompositeConstruct, construct.Opcode)
	require.Equal(t, []uint32{s.two, s.half}, construct.InIDs())
	require.Equal(t, []uint32{s.callee, composite}, def(m, s.call).InIDs())

	require.True(t, ctx.Facts().IsSynonymous(facts.MakeDataDescriptor(s.two), facts.MakeDataDescriptor(composite, 0)))
	require.True(t, ctx.Facts().IsSynonymous(facts.MakeDataDescriptor(s.half), facts.MakeDataDescriptor(composite, 1)))
}

func TestReplaceParamsWithStruct_OverflowIDs(t *testing.T) {
	m, s := buildCall(t)
	fresh := m.IDBound()

	requireApply(t, NewReplaceParamsWithStruct([]uint32{s.paramA}, fresh, fresh+1, nil), m, newOverflowContext(1000))
	require.Equal(t, spirv.OpCompositeConstruct, def(m, 1000).Opcode)
	require.Equal(t, s.single, def(m, 1000).TypeID)
}

func TestReplaceParamsWithStruct_SingleMember(t *testing.T) {
	s := newShader()
	b := s.b
	single := b.AddTypeStruct(s.intType)
	calleeType := b.AddTypeFunction(s.void, s.intType)
	callee := b.AddFunction(calleeType, s.void, spirv.FunctionControlNone)
	param := b.AddFunctionParameter(s.intType)
	b.AddLabel()
	b.AddReturn()
	b.AddFunctionEnd()
	main := b.AddFunction(s.voidFn, s.void, spirv.FunctionControlNone)
	b.AddLabel()
	call := b.AddFunctionCall(s.void, callee, s.one)
	b.AddReturn()
	b.AddFunctionEnd()
	s.entryPoint(main)
	m := s.build(t)
	fresh := m.IDBound()

	requireApply(t, NewReplaceParamsWithStruct([]uint32{param}, fresh, fresh+1, map[uint32]uint32{call: fresh + 2}), m, newContext())
	require.Equal(t, single, def(m, fresh+2).TypeID)
}

func TestSwapTwoFunctions(t *testing.T) {
	m, s := buildCall(t)
	ctx := newContext()

	require.False(t, NewSwapTwoFunctions(s.main, s.main).IsApplicable(m, ctx))
	require.False(t, NewSwapTwoFunctions(s.main, s.call).IsApplicable(m, ctx))

	requireApply(t, NewSwapTwoFunctions(s.callee, s.main), m, ctx)
	require.Equal(t, s.main, m.Functions[0].ID())
	require.Equal(t, s.callee, m.Functions[1].ID())
}

func TestAddBitInstructionSynonym(t *testing.T) {
	s := newShader()
	b := s.b
	offsets := make([]uint32, 32)
	for i := range offsets {
		offsets[i] = b.AddConstant(s.uintType, uint32(i))
	}
	fn := b.AddFunction(s.voidFn, s.void, spirv.FunctionControlNone)
	b.AddLabel()
	and := b.AddBinaryOp(spirv.OpBitwiseAnd, s.uintType, offsets[5], offsets[3])
	sum := b.AddBinaryOp(spirv.OpIAdd, s.uintType, and, offsets[1])
	b.AddReturn()
	b.AddFunctionEnd()
	s.entryPoint(fn)
	m := s.build(t)
	ctx := newContext()

	required := RequiredFreshIDsForBitInstruction(m, and)
	require.Equal(t, 2*32+32+31, required)
	require.Zero(t, RequiredFreshIDsForBitInstruction(m, sum))

	fresh := make([]uint32, required)
	for i := range fresh {
		fresh[i] = m.IDBound() + uint32(i)
	}
	require.False(t, NewAddBitInstructionSynonym(and, fresh[1:]).IsApplicable(m, ctx))
	require.False(t, NewAddBitInstructionSynonym(sum, fresh).IsApplicable(m, ctx))

	requireApply(t, NewAddBitInstructionSynonym(and, fresh), m, ctx)
	last := fresh[len(fresh)-1]
	require.Equal(t, spirv.OpBitFieldInsert, def(m, last).Opcode)
	require.True(t, ctx.Facts().IsSynonymous(facts.MakeDataDescriptor(last), facts.MakeDataDescriptor(and)))

	entry := m.Function(fn).Entry()
	require.Len(t, entry.Insts, required+3)
	require.Equal(t, spirv.OpBitFieldUExtract, entry.Insts[0].Opcode)
	require.Equal(t, spirv.OpBitwiseAnd, entry.Insts[2*32].Opcode)
}

func TestAddBitInstructionSynonym_MissingOffsets(t *testing.T) {
	s := newShader()
	b := s.b
	c := b.AddConstant(s.uintType, 6)
	fn := b.AddFunction(s.voidFn, s.void, spirv.FunctionControlNone)
	b.AddLabel()
	not := b.AddUnaryOp(spirv.OpNot, s.uintType, c)
	b.AddReturn()
	b.AddFunctionEnd()
	s.entryPoint(fn)
	m := s.build(t)

	fresh := make([]uint32, RequiredFreshIDsForBitInstruction(m, not))
	for i := range fresh {
		fresh[i] = m.IDBound() + uint32(i)
	}
	require.False(t, NewAddBitInstructionSynonym(not, fresh).IsApplicable(m, newContext()))
}

func TestAddImageSampleUnusedComponents(t *testing.T) {
	s := newShader()
	b := s.b
	vec2 := b.AddTypeVector(s.floatType, 2)
	vec3 := b.AddTypeVector(s.floatType, 3)
	vec4 := b.AddTypeVector(s.floatType, 4)
	image := b.AddTypeImage(s.floatType, spirv.Dim2D, 0, 0, 0, 1)
	sampledImage := b.AddTypeSampledImage(image)
	ptr := b.AddTypePointer(spirv.StorageClassUniformConstant, sampledImage)
	texture := b.AddVariable(ptr, spirv.StorageClassUniformConstant)
	half := b.AddConstantFloat32(s.floatType, 0.5)

	fn := b.AddFunction(s.voidFn, s.void, spirv.FunctionControlNone)
	b.AddLabel()
	loaded := b.AddLoad(sampledImage, texture)
	coord := b.AddCompositeConstruct(vec2, half, half)
	wider := b.AddCompositeConstruct(vec4, coord, half, half)
	other := b.AddCompositeConstruct(vec3, half, half, half)
	sample := b.AddResult(spirv.OpImageSampleImplicitLod, vec4, loaded, coord)
	b.AddReturn()
	b.AddFunctionEnd()
	s.entryPoint(fn)
	m := s.build(t)
	ctx := newContext()
	at := MakeInstructionDescriptor(sample, spirv.OpImageSampleImplicitLod, 0)

	require.False(t, NewAddImageSampleUnusedComponents(other, at).IsApplicable(m, ctx), "does not extend the coordinate")
	require.False(t, NewAddImageSampleUnusedComponents(wider, MakeInstructionDescriptor(coord, spirv.OpCompositeConstruct, 0)).
		IsApplicable(m, ctx), "not a sample")

	requireApply(t, NewAddImageSampleUnusedComponents(wider, at), m, ctx)
	require.Equal(t, []uint32{loaded, wider}, def(m, sample).InIDs())
}

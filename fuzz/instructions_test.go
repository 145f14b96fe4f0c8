package fuzz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvfuzz/fuzz/facts"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

type straightLine struct {
	*shader
	fn, entry, variable, private uint32
	sum, less, loaded, product   uint32
	fsum                         uint32
}

// buildStraightLine builds an entry point with a single block:
//
//	%variable = OpVariable Function
//	%sum      = OpIAdd %one %two
//	%less     = OpSLessThan %sum %two
//	OpStore %variable %sum
//	%loaded   = OpLoad %variable
//	%product  = OpIMul %loaded %two
//	%fsum     = OpFAdd %f %f
//	OpStore %private %product
//	OpReturn
func buildStraightLine(t *testing.T) (*ir.Module, straightLine) {
	t.Helper()
	s := straightLine{shader: newShader()}
	b := s.b
	f := b.AddConstantFloat32(s.floatType, 1.5)
	s.private = b.AddVariable(s.ptrPrivateInt, spirv.StorageClassPrivate)
	s.fn = b.AddFunction(s.voidFn, s.void, spirv.FunctionControlNone)
	s.entry = b.AddLabel()
	s.variable = b.AddLocalVariable(s.ptrFunctionInt)
	s.sum = b.AddBinaryOp(spirv.OpIAdd, s.intType, s.one, s.two)
	s.less = b.AddBinaryOp(spirv.OpSLessThan, s.boolType, s.sum, s.two)
	b.AddStore(s.variable, s.sum)
	s.loaded = b.AddLoad(s.intType, s.variable)
	s.product = b.AddBinaryOp(spirv.OpIMul, s.intType, s.loaded, s.two)
	s.fsum = b.AddBinaryOp(spirv.OpFAdd, s.floatType, f, f)
	b.AddStore(s.private, s.product)
	b.AddReturn()
	b.AddFunctionEnd()
	s.entryPoint(s.fn)
	return s.build(t), s
}

func TestInvertComparisonOperator(t *testing.T) {
	m, s := buildStraightLine(t)
	ctx := newContext()
	fresh := m.IDBound()

	require.False(t, NewInvertComparisonOperator(s.sum, fresh).IsApplicable(m, ctx))
	require.False(t, NewInvertComparisonOperator(s.less, s.sum).IsApplicable(m, ctx))

	requireApply(t, NewInvertComparisonOperator(s.less, fresh), m, ctx)
	inverted := def(m, fresh)
	require.Equal(t, spirv.OpSGreaterThanEqual, inverted.Opcode)
	require.Equal(t, []uint32{s.sum, s.two}, inverted.InIDs())
	not := def(m, s.less)
	require.Equal(t, spirv.OpLogicalNot, not.Opcode)
	require.Equal(t, []uint32{fresh}, not.InIDs())

	entry := m.Function(s.fn).Entry()
	require.Equal(t, entry.IndexOf(inverted)+1, entry.IndexOf(not))
}

func TestInvertedComparison_IsAnInvolution(t *testing.T) {
	for op, inverse := range invertedComparison {
		back, ok := InvertedComparison(inverse)
		require.True(t, ok, op.String())
		require.Equal(t, op, back)
	}
}

func TestAddNoContractionDecoration(t *testing.T) {
	m, s := buildStraightLine(t)
	ctx := newContext()

	require.False(t, NewAddNoContractionDecoration(s.less).IsApplicable(m, ctx))
	require.False(t, NewAddNoContractionDecoration(s.variable).IsApplicable(m, ctx))

	requireApply(t, NewAddNoContractionDecoration(s.fsum), m, ctx)
	last := m.Annotations[len(m.Annotations)-1]
	require.Equal(t, spirv.OpDecorate, last.Opcode)
	require.Equal(t, s.fsum, last.IDOperand(0))
	require.Equal(t, uint32(spirv.DecorationNoContraction), last.Word(1))
}

func TestLoad(t *testing.T) {
	m, s := buildStraightLine(t)
	ctx := newContext()
	fresh := m.IDBound()
	beforeProduct := MakeInstructionDescriptor(s.product, spirv.OpIMul, 0)

	// Not a pointer.
	require.False(t, NewLoad(fresh, s.sum, beforeProduct).IsApplicable(m, ctx))
	// Loads may not go before OpVariable.
	require.False(t, NewLoad(fresh, s.private, MakeInstructionDescriptor(s.entry, spirv.OpVariable, 0)).IsApplicable(m, ctx))

	requireApply(t, NewLoad(fresh, s.private, beforeProduct), m, ctx)
	load := def(m, fresh)
	require.Equal(t, spirv.OpLoad, load.Opcode)
	require.Equal(t, s.intType, load.TypeID)
	entry := m.Function(s.fn).Entry()
	require.Equal(t, entry.IndexOf(def(m, s.product))-1, entry.IndexOf(load))
}

func TestMoveInstructionDown(t *testing.T) {
	m, s := buildStraightLine(t)
	ctx := newContext()

	sum := NewMoveInstructionDown(MakeInstructionDescriptor(s.sum, spirv.OpIAdd, 0))
	require.False(t, sum.IsApplicable(m, ctx), "the next instruction uses the result")
	mul := NewMoveInstructionDown(MakeInstructionDescriptor(s.product, spirv.OpIMul, 0))
	require.True(t, mul.IsApplicable(m, ctx))
	fadd := NewMoveInstructionDown(MakeInstructionDescriptor(s.fsum, spirv.OpFAdd, 0))
	require.True(t, fadd.IsApplicable(m, ctx))

	// A store followed by a load of a pointer that may alias.
	store := NewMoveInstructionDown(MakeInstructionDescriptor(s.less, spirv.OpStore, 0))
	require.False(t, store.IsApplicable(m, ctx))

	// The instruction before the terminator cannot move.
	last := NewMoveInstructionDown(MakeInstructionDescriptor(s.fsum, spirv.OpStore, 0))
	require.False(t, last.IsApplicable(m, ctx))

	requireApply(t, fadd, m, ctx)
	entry := m.Function(s.fn).Entry()
	require.Equal(t, []spirv.OpCode{
		spirv.OpVariable, spirv.OpIAdd, spirv.OpSLessThan, spirv.OpStore, spirv.OpLoad,
		spirv.OpIMul, spirv.OpStore, spirv.OpFAdd, spirv.OpReturn,
	}, opcodes(entry))
}

func TestMoveInstructionDown_SimpleBeforeLoad(t *testing.T) {
	s := newShader()
	b := s.b
	fn := b.AddFunction(s.voidFn, s.void, spirv.FunctionControlNone)
	b.AddLabel()
	variable := b.AddLocalVariable(s.ptrFunctionInt)
	sum := b.AddBinaryOp(spirv.OpIAdd, s.intType, s.one, s.two)
	b.AddLoad(s.intType, variable)
	b.AddReturn()
	b.AddFunctionEnd()
	s.entryPoint(fn)
	m := s.build(t)

	requireApply(t, NewMoveInstructionDown(MakeInstructionDescriptor(sum, spirv.OpIAdd, 0)), m, newContext())
	require.Equal(t, []spirv.OpCode{spirv.OpVariable, spirv.OpLoad, spirv.OpIAdd, spirv.OpReturn},
		opcodes(m.Function(fn).Entry()))
}

func TestMoveInstructionDown_IrrelevantPointee(t *testing.T) {
	m, s := buildStraightLine(t)
	f := facts.NewManager()
	f.AddFactValueOfPointeeIsIrrelevant(s.variable)
	ctx := NewTransformationContext(f, nil)

	store := NewMoveInstructionDown(MakeInstructionDescriptor(s.less, spirv.OpStore, 0))
	requireApply(t, store, m, ctx)
}

func TestSwapFunctionVariables(t *testing.T) {
	s := newShader()
	b := s.b
	fn := b.AddFunction(s.voidFn, s.void, spirv.FunctionControlNone)
	b.AddLabel()
	v1 := b.AddLocalVariable(s.ptrFunctionInt)
	v2 := b.AddLocalVariable(s.ptrFunctionInt, s.one)
	b.AddReturn()
	b.AddFunctionEnd()
	s.entryPoint(fn)
	m := s.build(t)
	ctx := newContext()

	require.False(t, NewSwapFunctionVariables(v1, v1).IsApplicable(m, ctx))
	require.False(t, NewSwapFunctionVariables(v1, s.one).IsApplicable(m, ctx))

	requireApply(t, NewSwapFunctionVariables(v1, v2), m, ctx)
	entry := m.Function(fn).Entry()
	require.Equal(t, v2, entry.Insts[0].ResultID)
	require.Equal(t, v1, entry.Insts[1].ResultID)
}

func TestPushIDThroughVariable(t *testing.T) {
	tests := []struct {
		name         string
		storageClass spirv.StorageClass
	}{
		{name: "function", storageClass: spirv.StorageClassFunction},
		{name: "private", storageClass: spirv.StorageClassPrivate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s := buildStraightLine(t)
			ctx := newContext()
			fresh := m.IDBound()
			before := MakeInstructionDescriptor(s.product, spirv.OpIMul, 0)

			tr := NewPushIDThroughVariable(s.sum, fresh, fresh+1, tt.storageClass, s.zero, before)
			requireApply(t, tr, m, ctx)

			require.True(t, ctx.Facts().IsSynonymous(facts.MakeDataDescriptor(s.sum), facts.MakeDataDescriptor(fresh)))
			variable := def(m, fresh+1)
			require.Equal(t, spirv.OpVariable, variable.Opcode)
			require.Equal(t, uint32(tt.storageClass), variable.Word(0))
			entry := m.Function(s.fn).Entry()
			k := entry.IndexOf(def(m, s.product))
			require.Equal(t, spirv.OpStore, entry.Insts[k-2].Opcode)
			require.Equal(t, fresh, entry.Insts[k-1].ResultID)
		})
	}
}

func TestPushIDThroughVariable_NotApplicable(t *testing.T) {
	m, s := buildStraightLine(t)
	ctx := newContext()
	fresh := m.IDBound()
	before := MakeInstructionDescriptor(s.product, spirv.OpIMul, 0)

	// Fresh ids must differ.
	require.False(t, NewPushIDThroughVariable(s.sum, fresh, fresh, spirv.StorageClassFunction, s.zero, before).IsApplicable(m, ctx))
	// No Workgroup pointer to int.
	require.False(t, NewPushIDThroughVariable(s.sum, fresh, fresh+1, spirv.StorageClassWorkgroup, s.zero, before).IsApplicable(m, ctx))
	// Initializer of the wrong type.
	require.False(t, NewPushIDThroughVariable(s.sum, fresh, fresh+1, spirv.StorageClassFunction, s.trueConst, before).IsApplicable(m, ctx))
	// Pointers cannot be pushed.
	require.False(t, NewPushIDThroughVariable(s.variable, fresh, fresh+1, spirv.StorageClassFunction, s.zero, before).IsApplicable(m, ctx))
	// The value must be available.
	early := MakeInstructionDescriptor(s.sum, spirv.OpIAdd, 0)
	require.False(t, NewPushIDThroughVariable(s.sum, fresh, fresh+1, spirv.StorageClassFunction, s.zero, early).IsApplicable(m, ctx))
}

type orderingBlock struct {
	*shader
	fn, entry                 uint32
	loaded, sum, product, sub uint32
}

// buildOrdering builds an entry block mixing memory accesses, barriers and a
// selection header:
//
//	%variable = OpVariable Function
//	%loaded   = OpLoad %variable
//	OpControlBarrier %scope %scope %semantics
//	%sum      = OpIAdd %one %two
//	OpMemoryBarrier %scope %semantics
//	OpStore %variable %one
//	%product  = OpIMul %two %two
//	%sub      = OpISub %one %one
//	OpSelectionMerge %merge None
//	OpBranchConditional %true %then %merge
func buildOrdering(t *testing.T) (*ir.Module, orderingBlock) {
	t.Helper()
	s := orderingBlock{shader: newShader()}
	b := s.b
	scope := b.AddConstant(s.uintType, 2)
	semantics := b.AddConstant(s.uintType, 0x108)
	s.fn = b.AddFunction(s.voidFn, s.void, spirv.FunctionControlNone)
	s.entry = b.AddLabel()
	then, merge := b.AllocID(), b.AllocID()
	variable := b.AddLocalVariable(s.ptrFunctionInt)
	s.loaded = b.AddLoad(s.intType, variable)
	b.AddStatement(spirv.OpControlBarrier, scope, scope, semantics)
	s.sum = b.AddBinaryOp(spirv.OpIAdd, s.intType, s.one, s.two)
	b.AddStatement(spirv.OpMemoryBarrier, scope, semantics)
	b.AddStore(variable, s.one)
	s.product = b.AddBinaryOp(spirv.OpIMul, s.intType, s.two, s.two)
	s.sub = b.AddBinaryOp(spirv.OpISub, s.intType, s.one, s.one)
	b.AddSelectionMerge(merge, spirv.SelectionControlNone)
	b.AddBranchConditional(s.trueConst, then, merge)
	b.AddLabelWithID(then)
	b.AddBranch(merge)
	b.AddLabelWithID(merge)
	b.AddReturn()
	b.AddFunctionEnd()
	s.entryPoint(s.fn)
	return s.build(t), s
}

func TestMoveInstructionDown_Ordering(t *testing.T) {
	tests := []struct {
		name       string
		descriptor func(s orderingBlock) InstructionDescriptor
		applicable bool
	}{
		{
			name:       "load before barrier",
			descriptor: func(s orderingBlock) InstructionDescriptor { return MakeInstructionDescriptor(s.loaded, spirv.OpLoad, 0) },
		},
		{
			name: "barrier before arithmetic",
			descriptor: func(s orderingBlock) InstructionDescriptor {
				return MakeInstructionDescriptor(s.loaded, spirv.OpControlBarrier, 0)
			},
			applicable: true,
		},
		{
			name:       "arithmetic before barrier",
			descriptor: func(s orderingBlock) InstructionDescriptor { return MakeInstructionDescriptor(s.sum, spirv.OpIAdd, 0) },
			applicable: true,
		},
		{
			name: "barrier before store",
			descriptor: func(s orderingBlock) InstructionDescriptor {
				return MakeInstructionDescriptor(s.sum, spirv.OpMemoryBarrier, 0)
			},
		},
		{
			name:       "store before arithmetic",
			descriptor: func(s orderingBlock) InstructionDescriptor { return MakeInstructionDescriptor(s.sum, spirv.OpStore, 0) },
			applicable: true,
		},
		{
			name:       "arithmetic before arithmetic",
			descriptor: func(s orderingBlock) InstructionDescriptor { return MakeInstructionDescriptor(s.product, spirv.OpIMul, 0) },
			applicable: true,
		},
		{
			name:       "into a merge instruction and its terminator",
			descriptor: func(s orderingBlock) InstructionDescriptor { return MakeInstructionDescriptor(s.sub, spirv.OpISub, 0) },
		},
		{
			name: "merge instruction",
			descriptor: func(s orderingBlock) InstructionDescriptor {
				return MakeInstructionDescriptor(s.sub, spirv.OpSelectionMerge, 0)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s := buildOrdering(t)
			ctx := newContext()
			tr := NewMoveInstructionDown(tt.descriptor(s))
			if !tt.applicable {
				require.False(t, tr.IsApplicable(m, ctx))
				return
			}
			entry := m.Function(s.fn).Entry()
			block, idx := FindInstruction(m, tt.descriptor(s))
			require.Same(t, entry, block)
			moved, next := entry.Insts[idx], entry.Insts[idx+1]

			requireApply(t, tr, m, ctx)
			require.Same(t, next, entry.Insts[idx])
			require.Same(t, moved, entry.Insts[idx+1])
		})
	}
}

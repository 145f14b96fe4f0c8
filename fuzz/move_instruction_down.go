package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// MoveInstructionDown swaps an instruction with the one that follows it in
// its block.
type MoveInstructionDown struct {
	Instruction InstructionDescriptor `msgpack:"instruction"`
}

// NewMoveInstructionDown creates a MoveInstructionDown transformation.
func NewMoveInstructionDown(inst InstructionDescriptor) *MoveInstructionDown {
	return &MoveInstructionDown{Instruction: inst}
}

// instructionClass classifies opcodes by their interaction with memory.
type instructionClass uint8

const (
	classUnsupported instructionClass = iota
	// classSimple instructions neither access memory nor synchronize.
	classSimple
	// classMemory instructions read or write through a pointer operand.
	classMemory
	// classBarrier instructions order memory accesses.
	classBarrier
)

// memoryAccess describes which operand is read through and which is
// written through. -1 means no access.
type memoryAccess struct {
	read, write int
}

var simpleOpcodes = []spirv.OpCode{
	spirv.OpNop, spirv.OpUndef, spirv.OpAccessChain, spirv.OpInBoundsAccessChain,
	spirv.OpArrayLength, spirv.OpVectorExtractDynamic, spirv.OpVectorInsertDynamic,
	spirv.OpVectorShuffle, spirv.OpCompositeConstruct, spirv.OpCompositeExtract,
	spirv.OpCompositeInsert, spirv.OpCopyObject, spirv.OpTranspose,
	spirv.OpConvertFToU, spirv.OpConvertFToS, spirv.OpConvertSToF, spirv.OpConvertUToF,
	spirv.OpUConvert, spirv.OpSConvert, spirv.OpFConvert, spirv.OpQuantizeToF16,
	spirv.OpBitcast, spirv.OpSNegate, spirv.OpFNegate, spirv.OpIAdd, spirv.OpFAdd,
	spirv.OpISub, spirv.OpFSub, spirv.OpIMul, spirv.OpFMul, spirv.OpUDiv, spirv.OpSDiv,
	spirv.OpFDiv, spirv.OpUMod, spirv.OpSRem, spirv.OpSMod, spirv.OpFRem, spirv.OpFMod,
	spirv.OpVectorTimesScalar, spirv.OpMatrixTimesScalar, spirv.OpVectorTimesMatrix,
	spirv.OpMatrixTimesVector, spirv.OpMatrixTimesMatrix, spirv.OpOuterProduct,
	spirv.OpDot, spirv.OpIAddCarry, spirv.OpISubBorrow, spirv.OpUMulExtended,
	spirv.OpSMulExtended, spirv.OpAny, spirv.OpAll, spirv.OpIsNan, spirv.OpIsInf,
	spirv.OpIsFinite, spirv.OpIsNormal, spirv.OpSignBitSet, spirv.OpLessOrGreater,
	spirv.OpOrdered, spirv.OpUnordered, spirv.OpLogicalEqual, spirv.OpLogicalNotEqual,
	spirv.OpLogicalOr, spirv.OpLogicalAnd, spirv.OpLogicalNot, spirv.OpSelect,
	spirv.OpIEqual, spirv.OpINotEqual, spirv.OpUGreaterThan, spirv.OpSGreaterThan,
	spirv.OpUGreaterThanEqual, spirv.OpSGreaterThanEqual, spirv.OpULessThan,
	spirv.OpSLessThan, spirv.OpULessThanEqual, spirv.OpSLessThanEqual,
	spirv.OpFOrdEqual, spirv.OpFUnordEqual, spirv.OpFOrdNotEqual, spirv.OpFUnordNotEqual,
	spirv.OpFOrdLessThan, spirv.OpFUnordLessThan, spirv.OpFOrdGreaterThan,
	spirv.OpFUnordGreaterThan, spirv.OpFOrdLessThanEqual, spirv.OpFUnordLessThanEqual,
	spirv.OpFOrdGreaterThanEqual, spirv.OpFUnordGreaterThanEqual,
	spirv.OpShiftRightLogical, spirv.OpShiftRightArithmetic, spirv.OpShiftLeftLogical,
	spirv.OpBitwiseOr, spirv.OpBitwiseXor, spirv.OpBitwiseAnd, spirv.OpNot,
	spirv.OpBitFieldInsert, spirv.OpBitFieldSExtract, spirv.OpBitFieldUExtract,
	spirv.OpBitReverse, spirv.OpBitCount, spirv.OpCopyLogical,
}

var memoryOpcodes = map[spirv.OpCode]memoryAccess{
	spirv.OpLoad:                  {read: 0, write: -1},
	spirv.OpStore:                 {read: -1, write: 0},
	spirv.OpCopyMemory:            {read: 1, write: 0},
	spirv.OpCopyMemorySized:       {read: 1, write: 0},
	spirv.OpAtomicLoad:            {read: 0, write: -1},
	spirv.OpAtomicStore:           {read: -1, write: 0},
	spirv.OpAtomicExchange:        {read: 0, write: 0},
	spirv.OpAtomicCompareExchange: {read: 0, write: 0},
	spirv.OpAtomicIIncrement:      {read: 0, write: 0},
	spirv.OpAtomicIDecrement:      {read: 0, write: 0},
	spirv.OpAtomicIAdd:            {read: 0, write: 0},
	spirv.OpAtomicISub:            {read: 0, write: 0},
	spirv.OpAtomicSMin:            {read: 0, write: 0},
	spirv.OpAtomicUMin:            {read: 0, write: 0},
	spirv.OpAtomicSMax:            {read: 0, write: 0},
	spirv.OpAtomicUMax:            {read: 0, write: 0},
	spirv.OpAtomicAnd:             {read: 0, write: 0},
	spirv.OpAtomicOr:              {read: 0, write: 0},
	spirv.OpAtomicXor:             {read: 0, write: 0},
}

var barrierOpcodes = []spirv.OpCode{spirv.OpMemoryBarrier, spirv.OpControlBarrier}

var opcodeClass = func() map[spirv.OpCode]instructionClass {
	classes := make(map[spirv.OpCode]instructionClass)
	for _, op := range simpleOpcodes {
		classes[op] = classSimple
	}
	for op := range memoryOpcodes {
		classes[op] = classMemory
	}
	for _, op := range barrierOpcodes {
		classes[op] = classBarrier
	}
	return classes
}()

func classify(inst *ir.Instruction) instructionClass {
	return opcodeClass[inst.Opcode]
}

// readTarget returns the pointer inst reads through, or 0.
func readTarget(inst *ir.Instruction) uint32 {
	if a, ok := memoryOpcodes[inst.Opcode]; ok && a.read >= 0 {
		return inst.IDOperand(a.read)
	}
	return 0
}

// writeTarget returns the pointer inst writes through, or 0.
func writeTarget(inst *ir.Instruction) uint32 {
	if a, ok := memoryOpcodes[inst.Opcode]; ok && a.write >= 0 {
		return inst.IDOperand(a.write)
	}
	return 0
}

func (t *MoveInstructionDown) IsApplicable(m *ir.Module, ctx *TransformationContext) bool {
	block, idx := FindInstruction(m, t.Instruction)
	if block == nil {
		return false
	}
	inst := block.Insts[idx]
	if classify(inst) == classUnsupported {
		return false
	}
	// The instruction must have a successor that is not the last instruction
	// of the block.
	if idx+2 >= len(block.Insts) {
		return false
	}
	successor := block.Insts[idx+1]
	successorClass := classify(successor)
	// Memory instructions are only swapped with instructions we understand.
	if classify(inst) != classSimple && successorClass == classUnsupported {
		return false
	}
	if successorClass != classUnsupported && !canSafelySwap(inst, successor, ctx) {
		return false
	}
	if !fuzzerutil.CanInsertOpcodeBeforeInstruction(inst.Opcode, block, idx+2) {
		return false
	}
	return inst.ResultID == 0 || (!successor.UsesID(inst.ResultID) && successor.TypeID != inst.ResultID)
}

// canSafelySwap reports whether the order of a and b is unobservable.
//
// Two pointers that are not known to be synonymous may still address the same
// memory, so a read and a write, or two writes, are only swapped when one of
// the pointees is irrelevant.
func canSafelySwap(a, b *ir.Instruction, ctx *TransformationContext) bool {
	ca, cb := classify(a), classify(b)
	if ca == classSimple || cb == classSimple {
		return true
	}
	if ca == classBarrier || cb == classBarrier {
		return false
	}
	wa, wb := writeTarget(a), writeTarget(b)
	if wa == 0 && wb == 0 {
		return true
	}
	f := ctx.Facts()
	for _, w := range []uint32{wa, wb} {
		if w != 0 && f.PointeeValueIsIrrelevant(w) {
			return true
		}
	}
	for _, pair := range [][2]*ir.Instruction{{a, b}, {b, a}} {
		reader, writer := pair[0], pair[1]
		r := readTarget(reader)
		if r != 0 && writeTarget(writer) != 0 && f.PointeeValueIsIrrelevant(r) {
			return true
		}
	}
	return false
}

func (t *MoveInstructionDown) Apply(m *ir.Module, _ *TransformationContext) {
	block, idx := mustFind(m, t.Instruction)
	block.Insts[idx], block.Insts[idx+1] = block.Insts[idx+1], block.Insts[idx]
	m.InvalidateAnalyses()
}

func (t *MoveInstructionDown) FreshIDs() []uint32 { return nil }

func (t *MoveInstructionDown) ToMessage() Message { return newMessage(KindMoveInstructionDown, t) }

package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/facts"
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// AddBitInstructionSynonym recomputes the result of a scalar bitwise
// instruction one bit at a time and records the recomputed value as a synonym
// of the original.
//
// For an instruction with k operands of width w, every operand bit is
// extracted (k*w ids), the operation is applied per bit (w ids) and the bits
// are inserted back into one value (w-1 ids).
type AddBitInstructionSynonym struct {
	InstructionResultID uint32   `msgpack:"instruction_result_id"`
	Fresh               []uint32 `msgpack:"fresh_ids"`
}

// NewAddBitInstructionSynonym creates an AddBitInstructionSynonym
// transformation.
func NewAddBitInstructionSynonym(resultID uint32, freshIDs []uint32) *AddBitInstructionSynonym {
	return &AddBitInstructionSynonym{InstructionResultID: resultID, Fresh: freshIDs}
}

var bitwiseOpcodes = map[spirv.OpCode]bool{
	spirv.OpBitwiseOr:  true,
	spirv.OpBitwiseXor: true,
	spirv.OpBitwiseAnd: true,
	spirv.OpNot:        true,
}

// RequiredFreshIDsForBitInstruction returns the number of fresh ids needed to
// recompute the instruction resultID bit by bit, or 0 if it is not supported.
func RequiredFreshIDsForBitInstruction(m *ir.Module, resultID uint32) int {
	inst := m.DefUse().GetDef(resultID)
	if inst == nil || !bitwiseOpcodes[inst.Opcode] {
		return 0
	}
	width := bitWidth(m, inst.TypeID)
	if width == 0 {
		return 0
	}
	k := len(inst.Operands)
	return (k+1)*int(width) + int(width) - 1
}

// bitWidth returns the width of a scalar integer type, or 0.
func bitWidth(m *ir.Module, typeID uint32) uint32 {
	def := m.DefUse().GetDef(typeID)
	if def == nil || def.Opcode != spirv.OpTypeInt {
		return 0
	}
	return def.Word(0)
}

func (t *AddBitInstructionSynonym) IsApplicable(m *ir.Module, ctx *TransformationContext) bool {
	du := m.DefUse()
	inst := du.GetDef(t.InstructionResultID)
	if inst == nil || !bitwiseOpcodes[inst.Opcode] || du.Block(inst) == nil {
		return false
	}
	if ctx.Facts().IDIsIrrelevant(t.InstructionResultID) {
		return false
	}
	width := bitWidth(m, inst.TypeID)
	if width == 0 {
		return false
	}
	for _, operand := range inst.InIDs() {
		if fuzzerutil.GetTypeID(m, operand) != inst.TypeID {
			return false
		}
	}
	if len(t.Fresh) != RequiredFreshIDsForBitInstruction(m, t.InstructionResultID) {
		return false
	}
	if !freshIDsOK(m, t.Fresh...) {
		return false
	}
	for i := uint32(0); i < width; i++ {
		if fuzzerutil.MaybeGetIntegerConstant(m, ctx.Facts(), []uint32{i}, 32, false, false) == 0 {
			return false
		}
	}
	if fuzzerutil.MaybeGetIntegerConstant(m, ctx.Facts(), []uint32{1}, 32, false, false) == 0 {
		return false
	}
	block := du.Block(inst)
	return fuzzerutil.CanInsertOpcodeBeforeInstruction(spirv.OpBitFieldUExtract, block, block.IndexOf(inst))
}

func (t *AddBitInstructionSynonym) Apply(m *ir.Module, ctx *TransformationContext) {
	du := m.DefUse()
	inst := du.GetDef(t.InstructionResultID)
	block := du.Block(inst)
	width := bitWidth(m, inst.TypeID)
	f := ctx.Facts()

	constant := func(v uint32) uint32 {
		id := fuzzerutil.MaybeGetIntegerConstant(m, f, []uint32{v}, 32, false, false)
		if id == 0 {
			panic("missing 32-bit unsigned constant for bit offset")
		}
		return id
	}
	count := constant(1)
	offsets := make([]uint32, width)
	for i := range offsets {
		offsets[i] = constant(fuzzerutil.U32(i))
	}

	fresh := t.Fresh
	next := func() uint32 {
		id := fresh[0]
		fresh = fresh[1:]
		fuzzerutil.UpdateModuleIDBound(m, id)
		return id
	}

	var added []*ir.Instruction
	operands := inst.InIDs()
	extracted := make([]uint32, 0, len(operands)*int(width))
	for _, operand := range operands {
		for i := uint32(0); i < width; i++ {
			id := next()
			added = append(added, ir.NewInstruction(spirv.OpBitFieldUExtract, inst.TypeID, id,
				ir.IDs(operand, offsets[i], count)...))
			extracted = append(extracted, id)
		}
	}
	perBit := make([]uint32, width)
	for i := uint32(0); i < width; i++ {
		args := make([]uint32, len(operands))
		for j := range operands {
			args[j] = extracted[fuzzerutil.U32(j)*width+i]
		}
		perBit[i] = next()
		added = append(added, ir.NewInstruction(inst.Opcode, inst.TypeID, perBit[i], ir.IDs(args...)...))
	}
	result := perBit[0]
	for i := uint32(1); i < width; i++ {
		id := next()
		added = append(added, ir.NewInstruction(spirv.OpBitFieldInsert, inst.TypeID, id,
			ir.IDs(result, perBit[i], offsets[i], count)...))
		result = id
	}

	block.InsertBefore(block.IndexOf(inst), added...)
	m.InvalidateAnalyses()
	f.AddFactDataSynonym(facts.MakeDataDescriptor(result), facts.MakeDataDescriptor(t.InstructionResultID))
}

func (t *AddBitInstructionSynonym) FreshIDs() []uint32 { return t.Fresh }

func (t *AddBitInstructionSynonym) ToMessage() Message {
	return newMessage(KindAddBitInstructionSynonym, t)
}

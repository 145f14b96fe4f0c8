package ir

import (
	"github.com/gogpu/spvfuzz/spirv"
)

// OperandTypeID is the operand index reported for a use of an id in the
// result type position of an instruction.
const OperandTypeID = -1

// Instruction is a single SPIR-V instruction.
//
// TypeID and ResultID are zero when the opcode does not carry them. Operands
// holds the remaining ("in") operands in order.
type Instruction struct {
	Opcode   spirv.OpCode
	TypeID   uint32
	ResultID uint32
	Operands []spirv.Operand
}

// NewInstruction creates an instruction.
func NewInstruction(opcode spirv.OpCode, typeID, resultID uint32, operands ...spirv.Operand) *Instruction {
	return &Instruction{
		Opcode:   opcode,
		TypeID:   typeID,
		ResultID: resultID,
		Operands: operands,
	}
}

// IDs converts ids into id operands.
func IDs(ids ...uint32) []spirv.Operand {
	ops := make([]spirv.Operand, len(ids))
	for i, id := range ids {
		ops[i] = spirv.IDOperand(id)
	}
	return ops
}

// Literals converts words into single-word literal operands.
func Literals(words ...uint32) []spirv.Operand {
	ops := make([]spirv.Operand, len(words))
	for i, w := range words {
		ops[i] = spirv.LiteralOperand(w)
	}
	return ops
}

// NumOperands returns the number of in operands.
func (i *Instruction) NumOperands() int {
	return len(i.Operands)
}

// Word returns the first word of operand idx.
func (i *Instruction) Word(idx int) uint32 {
	return i.Operands[idx].Word()
}

// IDOperand returns the id held by operand idx. It panics if the operand is
// not an id.
func (i *Instruction) IDOperand(idx int) uint32 {
	if i.Operands[idx].Kind != spirv.OperandID {
		panic("ir: operand is not an id")
	}
	return i.Operands[idx].Word()
}

// SetOperand replaces operand idx.
func (i *Instruction) SetOperand(idx int, op spirv.Operand) {
	i.Operands[idx] = op
}

// AddOperand appends an operand.
func (i *Instruction) AddOperand(op spirv.Operand) {
	i.Operands = append(i.Operands, op)
}

// RemoveOperand deletes operand idx.
func (i *Instruction) RemoveOperand(idx int) {
	i.Operands = append(i.Operands[:idx], i.Operands[idx+1:]...)
}

// ForEachInID calls fn with a pointer to every id held by the in operands.
// The pointed-to id may be rewritten.
func (i *Instruction) ForEachInID(fn func(id *uint32)) {
	for k := range i.Operands {
		if i.Operands[k].Kind == spirv.OperandID {
			fn(&i.Operands[k].Words[0])
		}
	}
}

// ForEachID is ForEachInID extended to the result type id.
func (i *Instruction) ForEachID(fn func(id *uint32)) {
	if i.TypeID != 0 {
		fn(&i.TypeID)
	}
	i.ForEachInID(fn)
}

// InIDs returns the ids referenced by the in operands.
func (i *Instruction) InIDs() []uint32 {
	var ids []uint32
	i.ForEachInID(func(id *uint32) { ids = append(ids, *id) })
	return ids
}

// UsesID reports whether id appears among the in operands.
func (i *Instruction) UsesID(id uint32) bool {
	for _, op := range i.Operands {
		if op.Kind == spirv.OperandID && op.Word() == id {
			return true
		}
	}
	return false
}

// ReplaceID rewrites every in-operand occurrence of from with to and reports
// whether anything changed.
func (i *Instruction) ReplaceID(from, to uint32) bool {
	changed := false
	i.ForEachInID(func(id *uint32) {
		if *id == from {
			*id = to
			changed = true
		}
	})
	return changed
}

// Clone returns a deep copy of the instruction.
func (i *Instruction) Clone() *Instruction {
	ops := make([]spirv.Operand, len(i.Operands))
	for k, op := range i.Operands {
		ops[k] = op.Clone()
	}
	return &Instruction{Opcode: i.Opcode, TypeID: i.TypeID, ResultID: i.ResultID, Operands: ops}
}

// Words returns the encoding of the instruction without the opcode word.
func (i *Instruction) Words() []uint32 {
	words := make([]uint32, 0, 2+len(i.Operands))
	if i.Opcode.HasResultType() {
		words = append(words, i.TypeID)
	}
	if i.Opcode.HasResult() {
		words = append(words, i.ResultID)
	}
	for _, op := range i.Operands {
		words = append(words, op.Words...)
	}
	return words
}

// PhiPairs returns the (value, predecessor) pairs of an OpPhi.
func (i *Instruction) PhiPairs() [][2]uint32 {
	pairs := make([][2]uint32, 0, len(i.Operands)/2)
	for k := 0; k+1 < len(i.Operands); k += 2 {
		pairs = append(pairs, [2]uint32{i.Operands[k].Word(), i.Operands[k+1].Word()})
	}
	return pairs
}

// PhiValueFor returns the value an OpPhi takes along the edge from pred, or 0.
func (i *Instruction) PhiValueFor(pred uint32) uint32 {
	for _, p := range i.PhiPairs() {
		if p[1] == pred {
			return p[0]
		}
	}
	return 0
}

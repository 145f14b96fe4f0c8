package fuzzerutil

import (
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// CanInsertOpcodeBeforeInstruction reports whether an instruction with the
// given opcode may be placed immediately before position idx of block.
//
//   - Nothing goes between a merge annotation and the terminator.
//   - Only an OpPhi may precede an OpPhi, and an OpPhi may not follow
//     anything else.
//   - Only an OpVariable may precede an OpVariable, and an OpVariable may only
//     be added within the leading variable cluster of an entry block.
func CanInsertOpcodeBeforeInstruction(opcode spirv.OpCode, block *ir.BasicBlock, idx int) bool {
	if idx < 0 || idx >= len(block.Insts) {
		return false
	}
	next := block.Insts[idx]
	if idx > 0 && block.Insts[idx-1].Opcode.IsMerge() {
		return false
	}
	if opcode == spirv.OpPhi {
		return idx == 0 || block.Insts[idx-1].Opcode == spirv.OpPhi
	}
	if next.Opcode == spirv.OpPhi {
		return false
	}
	if opcode == spirv.OpVariable {
		if block.Function == nil || block != block.Function.Entry() {
			return false
		}
		return idx == 0 || block.Insts[idx-1].Opcode == spirv.OpVariable
	}
	return next.Opcode != spirv.OpVariable
}

// IDIsAvailableBeforeInstruction reports whether the value id may be used by
// an instruction placed immediately before position idx of block. Module-scope
// values are always available, parameters are available within their own
// function, and other values must be defined in a reachable block that
// dominates the insertion point.
func IDIsAvailableBeforeInstruction(m *ir.Module, block *ir.BasicBlock, idx int, id uint32) bool {
	du := m.DefUse()
	def := du.GetDef(id)
	if def == nil || def.Opcode == spirv.OpLabel {
		return false
	}
	if def.Opcode == spirv.OpFunctionParameter {
		return InstructionIsFunctionParameter(def, block.Function)
	}
	if def.Opcode == spirv.OpFunction {
		return true
	}
	defBlock := du.Block(def)
	if defBlock == nil {
		return true
	}
	if defBlock.Function != block.Function {
		return false
	}
	dom := m.Dominators(block.Function)
	if !dom.Reachable(block.ID()) || !dom.Reachable(defBlock.ID()) {
		return false
	}
	if defBlock == block {
		return block.IndexOf(def) < idx
	}
	return dom.Dominates(defBlock.ID(), block.ID())
}

// IDIsAvailableAtEndOfBlock reports whether id may be used by the terminator
// of block.
func IDIsAvailableAtEndOfBlock(m *ir.Module, block *ir.BasicBlock, id uint32) bool {
	return IDIsAvailableBeforeInstruction(m, block, len(block.Insts)-1, id)
}

// IDIsAvailableAtUse reports whether id may be used by the instruction user.
// For an OpPhi operand, availability is checked at the end of the
// corresponding predecessor.
func IDIsAvailableAtUse(m *ir.Module, user *ir.Instruction, operand int, id uint32) bool {
	block := m.DefUse().Block(user)
	if block == nil {
		return false
	}
	if user.Opcode == spirv.OpPhi {
		pred := MaybeFindBlock(m, user.IDOperand(operand+1))
		return pred != nil && IDIsAvailableAtEndOfBlock(m, pred, id)
	}
	return IDIsAvailableBeforeInstruction(m, block, block.IndexOf(user), id)
}

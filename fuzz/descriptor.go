package fuzz

import (
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// InstructionDescriptor locates an instruction that may not have a result id.
//
// The base is either a block label or the result id of an instruction. The
// target is the instruction with opcode TargetInstructionOpcode found at or
// after the base in the same block, after skipping NumOpcodesToIgnore earlier
// instructions with that opcode.
type InstructionDescriptor struct {
	BaseInstructionResultID uint32       `msgpack:"base_instruction_result_id"`
	TargetInstructionOpcode spirv.OpCode `msgpack:"target_instruction_opcode"`
	NumOpcodesToIgnore      uint32       `msgpack:"num_opcodes_to_ignore"`
}

// MakeInstructionDescriptor returns a descriptor.
func MakeInstructionDescriptor(base uint32, opcode spirv.OpCode, skip uint32) InstructionDescriptor {
	return InstructionDescriptor{
		BaseInstructionResultID: base,
		TargetInstructionOpcode: opcode,
		NumOpcodesToIgnore:      skip,
	}
}

// FindInstruction resolves d to a block and an index within it. It returns
// (nil, -1) if no instruction matches.
func FindInstruction(m *ir.Module, d InstructionDescriptor) (*ir.BasicBlock, int) {
	for _, fn := range m.Functions {
		for _, b := range fn.Blocks {
			foundBase := b.ID() == d.BaseInstructionResultID
			var ignored uint32
			for k, inst := range b.Insts {
				if inst.ResultID != 0 && inst.ResultID == d.BaseInstructionResultID {
					foundBase = true
				}
				if foundBase && inst.Opcode == d.TargetInstructionOpcode {
					if ignored == d.NumOpcodesToIgnore {
						return b, k
					}
					ignored++
				}
			}
			if foundBase {
				return nil, -1
			}
		}
	}
	return nil, -1
}

// DescribeInstruction returns a descriptor for the instruction at position
// idx of block: the base is the closest preceding instruction with a result
// id, or the block label.
func DescribeInstruction(block *ir.BasicBlock, idx int) InstructionDescriptor {
	opcode := block.Insts[idx].Opcode
	base := block.ID()
	start := 0
	for k := idx; k >= 0; k-- {
		if block.Insts[k].ResultID != 0 {
			base = block.Insts[k].ResultID
			start = k
			break
		}
	}
	var skip uint32
	for k := start; k < idx; k++ {
		if block.Insts[k].Opcode == opcode {
			skip++
		}
	}
	return MakeInstructionDescriptor(base, opcode, skip)
}

package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// Load inserts an OpLoad through an existing pointer.
type Load struct {
	FreshID                   uint32                `msgpack:"fresh_id"`
	PointerID                 uint32                `msgpack:"pointer_id"`
	InstructionToInsertBefore InstructionDescriptor `msgpack:"instruction_to_insert_before"`
}

// NewLoad creates a Load transformation.
func NewLoad(freshID, pointerID uint32, before InstructionDescriptor) *Load {
	return &Load{FreshID: freshID, PointerID: pointerID, InstructionToInsertBefore: before}
}

func (t *Load) IsApplicable(m *ir.Module, _ *TransformationContext) bool {
	if !fuzzerutil.IsFreshID(m, t.FreshID) {
		return false
	}
	du := m.DefUse()
	ptr := du.GetDef(t.PointerID)
	if ptr == nil || ptr.TypeID == 0 || !fuzzerutil.IsPointerType(m, ptr.TypeID) {
		return false
	}
	// Loading through a null or undefined pointer is undefined behaviour.
	if ptr.Opcode == spirv.OpConstantNull || ptr.Opcode == spirv.OpUndef {
		return false
	}
	block, idx := FindInstruction(m, t.InstructionToInsertBefore)
	if block == nil {
		return false
	}
	if !fuzzerutil.CanInsertOpcodeBeforeInstruction(spirv.OpLoad, block, idx) {
		return false
	}
	return fuzzerutil.IDIsAvailableBeforeInstruction(m, block, idx, t.PointerID)
}

func (t *Load) Apply(m *ir.Module, _ *TransformationContext) {
	block, idx := mustFind(m, t.InstructionToInsertBefore)
	pointee := fuzzerutil.GetPointeeTypeIDFromPointerType(m, fuzzerutil.GetTypeID(m, t.PointerID))
	block.InsertBefore(idx, ir.NewInstruction(spirv.OpLoad, pointee, t.FreshID, spirv.IDOperand(t.PointerID)))
	fuzzerutil.UpdateModuleIDBound(m, t.FreshID)
	m.InvalidateAnalyses()
}

func (t *Load) FreshIDs() []uint32 { return []uint32{t.FreshID} }

func (t *Load) ToMessage() Message { return newMessage(KindLoad, t) }

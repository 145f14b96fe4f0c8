package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/facts"
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// PushIDThroughVariable stores a value into a new variable and immediately
// loads it back, yielding a synonym of the value.
type PushIDThroughVariable struct {
	ValueID               uint32                `msgpack:"value_id"`
	ValueSynonymID        uint32                `msgpack:"value_synonym_id"`
	VariableID            uint32                `msgpack:"variable_id"`
	VariableStorageClass  spirv.StorageClass    `msgpack:"variable_storage_class"`
	InitializerID         uint32                `msgpack:"initializer_id"`
	InstructionDescriptor InstructionDescriptor `msgpack:"instruction_descriptor"`
}

// NewPushIDThroughVariable creates a PushIDThroughVariable transformation.
func NewPushIDThroughVariable(valueID, synonymID, variableID uint32, storageClass spirv.StorageClass,
	initializerID uint32, before InstructionDescriptor) *PushIDThroughVariable {
	return &PushIDThroughVariable{
		ValueID:               valueID,
		ValueSynonymID:        synonymID,
		VariableID:            variableID,
		VariableStorageClass:  storageClass,
		InitializerID:         initializerID,
		InstructionDescriptor: before,
	}
}

func (t *PushIDThroughVariable) IsApplicable(m *ir.Module, _ *TransformationContext) bool {
	if !freshIDsOK(m, t.ValueSynonymID, t.VariableID) {
		return false
	}
	block, idx := FindInstruction(m, t.InstructionDescriptor)
	if block == nil {
		return false
	}
	if !fuzzerutil.CanInsertOpcodeBeforeInstruction(spirv.OpStore, block, idx) ||
		!fuzzerutil.CanInsertOpcodeBeforeInstruction(spirv.OpLoad, block, idx) {
		return false
	}
	if t.VariableStorageClass != spirv.StorageClassFunction && t.VariableStorageClass != spirv.StorageClassPrivate {
		return false
	}

	value := m.DefUse().GetDef(t.ValueID)
	if value == nil || value.TypeID == 0 {
		return false
	}
	valueType := m.DefUse().GetDef(value.TypeID)
	if valueType == nil || valueType.Opcode == spirv.OpTypeVoid || valueType.Opcode == spirv.OpTypePointer {
		return false
	}
	if fuzzerutil.MaybeGetPointerType(m, t.VariableStorageClass, value.TypeID) == 0 {
		return false
	}
	if !isConstant(m, t.InitializerID) || fuzzerutil.GetTypeID(m, t.InitializerID) != value.TypeID {
		return false
	}
	return fuzzerutil.IDIsAvailableBeforeInstruction(m, block, idx, t.ValueID)
}

func (t *PushIDThroughVariable) Apply(m *ir.Module, ctx *TransformationContext) {
	block, idx := mustFind(m, t.InstructionDescriptor)
	valueType := fuzzerutil.GetTypeID(m, t.ValueID)
	ptrType := fuzzerutil.MaybeGetPointerType(m, t.VariableStorageClass, valueType)
	if ptrType == 0 {
		panic("pointer type for the pushed value is missing")
	}

	block.InsertBefore(idx,
		ir.NewInstruction(spirv.OpStore, 0, 0, ir.IDs(t.VariableID, t.ValueID)...),
		ir.NewInstruction(spirv.OpLoad, valueType, t.ValueSynonymID, spirv.IDOperand(t.VariableID)),
	)

	variable := ir.NewInstruction(spirv.OpVariable, ptrType, t.VariableID,
		spirv.LiteralOperand(uint32(t.VariableStorageClass)), spirv.IDOperand(t.InitializerID))
	if t.VariableStorageClass == spirv.StorageClassPrivate {
		m.AddGlobal(variable)
		addVariableToEntryPointInterfaces(m, t.VariableID)
	} else {
		block.Function.Entry().InsertBefore(0, variable)
	}
	fuzzerutil.UpdateModuleIDBound(m, t.VariableID)
	fuzzerutil.UpdateModuleIDBound(m, t.ValueSynonymID)
	m.InvalidateAnalyses()

	f := ctx.Facts()
	if !f.IDIsIrrelevant(t.ValueID) {
		f.AddFactDataSynonym(facts.MakeDataDescriptor(t.ValueSynonymID), facts.MakeDataDescriptor(t.ValueID))
	}
}

func (t *PushIDThroughVariable) FreshIDs() []uint32 {
	return []uint32{t.ValueSynonymID, t.VariableID}
}

func (t *PushIDThroughVariable) ToMessage() Message { return newMessage(KindPushIDThroughVariable, t) }

package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// AddGlobalVariable declares a Private or Workgroup global variable.
type AddGlobalVariable struct {
	FreshID           uint32             `msgpack:"fresh_id"`
	TypeID            uint32             `msgpack:"type_id"`
	StorageClass      spirv.StorageClass `msgpack:"storage_class"`
	InitializerID     uint32             `msgpack:"initializer_id"`
	ValueIsIrrelevant bool               `msgpack:"value_is_irrelevant"`
}

// NewAddGlobalVariable creates an AddGlobalVariable transformation.
// initializerID may be 0.
func NewAddGlobalVariable(freshID, typeID uint32, storageClass spirv.StorageClass, initializerID uint32, irrelevant bool) *AddGlobalVariable {
	return &AddGlobalVariable{
		FreshID:           freshID,
		TypeID:            typeID,
		StorageClass:      storageClass,
		InitializerID:     initializerID,
		ValueIsIrrelevant: irrelevant,
	}
}

func (t *AddGlobalVariable) IsApplicable(m *ir.Module, _ *TransformationContext) bool {
	if !fuzzerutil.IsFreshID(m, t.FreshID) || !fuzzerutil.IsPointerType(m, t.TypeID) {
		return false
	}
	if t.StorageClass != spirv.StorageClassPrivate && t.StorageClass != spirv.StorageClassWorkgroup {
		return false
	}
	if fuzzerutil.GetStorageClassFromPointerType(m, t.TypeID) != t.StorageClass {
		return false
	}
	if t.InitializerID == 0 {
		return true
	}
	if t.StorageClass == spirv.StorageClassWorkgroup {
		return false
	}
	return isConstant(m, t.InitializerID) &&
		fuzzerutil.GetTypeID(m, t.InitializerID) == fuzzerutil.GetPointeeTypeIDFromPointerType(m, t.TypeID)
}

func (t *AddGlobalVariable) Apply(m *ir.Module, ctx *TransformationContext) {
	operands := []spirv.Operand{spirv.LiteralOperand(uint32(t.StorageClass))}
	if t.InitializerID != 0 {
		operands = append(operands, spirv.IDOperand(t.InitializerID))
	}
	defineGlobal(m, ir.NewInstruction(spirv.OpVariable, t.TypeID, t.FreshID, operands...))
	addVariableToEntryPointInterfaces(m, t.FreshID)
	if t.ValueIsIrrelevant {
		ctx.Facts().AddFactValueOfPointeeIsIrrelevant(t.FreshID)
	}
}

func (t *AddGlobalVariable) FreshIDs() []uint32 { return []uint32{t.FreshID} }

func (t *AddGlobalVariable) ToMessage() Message { return newMessage(KindAddGlobalVariable, t) }

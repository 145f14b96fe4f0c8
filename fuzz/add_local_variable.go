package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// AddLocalVariable declares an initialized Function variable at the start of
// a function's entry block.
type AddLocalVariable struct {
	FreshID           uint32 `msgpack:"fresh_id"`
	TypeID            uint32 `msgpack:"type_id"`
	FunctionID        uint32 `msgpack:"function_id"`
	InitializerID     uint32 `msgpack:"initializer_id"`
	ValueIsIrrelevant bool   `msgpack:"value_is_irrelevant"`
}

// NewAddLocalVariable creates an AddLocalVariable transformation.
func NewAddLocalVariable(freshID, typeID, functionID, initializerID uint32, irrelevant bool) *AddLocalVariable {
	return &AddLocalVariable{
		FreshID:           freshID,
		TypeID:            typeID,
		FunctionID:        functionID,
		InitializerID:     initializerID,
		ValueIsIrrelevant: irrelevant,
	}
}

func (t *AddLocalVariable) IsApplicable(m *ir.Module, _ *TransformationContext) bool {
	if !fuzzerutil.IsFreshID(m, t.FreshID) || !fuzzerutil.IsPointerType(m, t.TypeID) {
		return false
	}
	if fuzzerutil.GetStorageClassFromPointerType(m, t.TypeID) != spirv.StorageClassFunction {
		return false
	}
	if !isConstant(m, t.InitializerID) ||
		fuzzerutil.GetTypeID(m, t.InitializerID) != fuzzerutil.GetPointeeTypeIDFromPointerType(m, t.TypeID) {
		return false
	}
	fn := m.Function(t.FunctionID)
	return fn != nil && fn.Entry() != nil
}

func (t *AddLocalVariable) Apply(m *ir.Module, ctx *TransformationContext) {
	entry := m.Function(t.FunctionID).Entry()
	entry.InsertBefore(0, ir.NewInstruction(spirv.OpVariable, t.TypeID, t.FreshID,
		spirv.LiteralOperand(uint32(spirv.StorageClassFunction)), spirv.IDOperand(t.InitializerID)))
	fuzzerutil.UpdateModuleIDBound(m, t.FreshID)
	m.InvalidateAnalyses()
	if t.ValueIsIrrelevant {
		ctx.Facts().AddFactValueOfPointeeIsIrrelevant(t.FreshID)
	}
}

func (t *AddLocalVariable) FreshIDs() []uint32 { return []uint32{t.FreshID} }

func (t *AddLocalVariable) ToMessage() Message { return newMessage(KindAddLocalVariable, t) }

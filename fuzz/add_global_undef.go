package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// AddGlobalUndef declares a module-scope OpUndef of a given type.
type AddGlobalUndef struct {
	FreshID uint32 `msgpack:"fresh_id"`
	TypeID  uint32 `msgpack:"type_id"`
}

// NewAddGlobalUndef creates an AddGlobalUndef transformation.
func NewAddGlobalUndef(freshID, typeID uint32) *AddGlobalUndef {
	return &AddGlobalUndef{FreshID: freshID, TypeID: typeID}
}

func (t *AddGlobalUndef) IsApplicable(m *ir.Module, _ *TransformationContext) bool {
	if !fuzzerutil.IsFreshID(m, t.FreshID) || !fuzzerutil.IsNonFunctionTypeID(m, t.TypeID) {
		return false
	}
	return m.DefUse().GetDef(t.TypeID).Opcode != spirv.OpTypeVoid
}

func (t *AddGlobalUndef) Apply(m *ir.Module, _ *TransformationContext) {
	defineGlobal(m, ir.NewInstruction(spirv.OpUndef, t.TypeID, t.FreshID))
}

func (t *AddGlobalUndef) FreshIDs() []uint32 { return []uint32{t.FreshID} }

func (t *AddGlobalUndef) ToMessage() Message { return newMessage(KindAddGlobalUndef, t) }

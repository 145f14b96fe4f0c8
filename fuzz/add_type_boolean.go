package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// AddTypeBoolean declares OpTypeBool when the module has none.
type AddTypeBoolean struct {
	FreshID uint32 `msgpack:"fresh_id"`
}

// NewAddTypeBoolean creates an AddTypeBoolean transformation.
func NewAddTypeBoolean(freshID uint32) *AddTypeBoolean {
	return &AddTypeBoolean{FreshID: freshID}
}

func (t *AddTypeBoolean) IsApplicable(m *ir.Module, _ *TransformationContext) bool {
	return fuzzerutil.IsFreshID(m, t.FreshID) && fuzzerutil.MaybeGetBoolType(m) == 0
}

func (t *AddTypeBoolean) Apply(m *ir.Module, _ *TransformationContext) {
	defineGlobal(m, ir.NewInstruction(spirv.OpTypeBool, 0, t.FreshID))
}

func (t *AddTypeBoolean) FreshIDs() []uint32 { return []uint32{t.FreshID} }

func (t *AddTypeBoolean) ToMessage() Message { return newMessage(KindAddTypeBoolean, t) }

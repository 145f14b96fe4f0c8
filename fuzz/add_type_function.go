package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// AddTypeFunction declares an OpTypeFunction.
type AddTypeFunction struct {
	FreshID         uint32   `msgpack:"fresh_id"`
	ReturnTypeID    uint32   `msgpack:"return_type_id"`
	ArgumentTypeIDs []uint32 `msgpack:"argument_type_ids"`
}

// NewAddTypeFunction creates an AddTypeFunction transformation.
func NewAddTypeFunction(freshID, returnType uint32, argumentTypes ...uint32) *AddTypeFunction {
	return &AddTypeFunction{FreshID: freshID, ReturnTypeID: returnType, ArgumentTypeIDs: argumentTypes}
}

func (t *AddTypeFunction) IsApplicable(m *ir.Module, _ *TransformationContext) bool {
	if !fuzzerutil.IsFreshID(m, t.FreshID) || !fuzzerutil.IsNonFunctionTypeID(m, t.ReturnTypeID) {
		return false
	}
	du := m.DefUse()
	for _, arg := range t.ArgumentTypeIDs {
		if !fuzzerutil.IsNonFunctionTypeID(m, arg) || du.GetDef(arg).Opcode == spirv.OpTypeVoid {
			return false
		}
	}
	// Two function types with the same signature are invalid.
	return fuzzerutil.FindFunctionType(m, t.ReturnTypeID, t.ArgumentTypeIDs) == 0
}

func (t *AddTypeFunction) Apply(m *ir.Module, _ *TransformationContext) {
	fuzzerutil.AddFunctionType(m, t.FreshID, t.ReturnTypeID, t.ArgumentTypeIDs)
	m.InvalidateAnalyses()
}

func (t *AddTypeFunction) FreshIDs() []uint32 { return []uint32{t.FreshID} }

func (t *AddTypeFunction) ToMessage() Message { return newMessage(KindAddTypeFunction, t) }

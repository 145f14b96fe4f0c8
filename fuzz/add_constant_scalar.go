package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// AddConstantScalar declares an integer or floating-point OpConstant.
type AddConstantScalar struct {
	FreshID      uint32   `msgpack:"fresh_id"`
	TypeID       uint32   `msgpack:"type_id"`
	Words        []uint32 `msgpack:"words"`
	IsIrrelevant bool     `msgpack:"is_irrelevant"`
}

// NewAddConstantScalar creates an AddConstantScalar transformation.
func NewAddConstantScalar(freshID, typeID uint32, words []uint32, isIrrelevant bool) *AddConstantScalar {
	return &AddConstantScalar{FreshID: freshID, TypeID: typeID, Words: words, IsIrrelevant: isIrrelevant}
}

func (t *AddConstantScalar) IsApplicable(m *ir.Module, _ *TransformationContext) bool {
	if !fuzzerutil.IsFreshID(m, t.FreshID) {
		return false
	}
	def := m.DefUse().GetDef(t.TypeID)
	if def == nil || (def.Opcode != spirv.OpTypeInt && def.Opcode != spirv.OpTypeFloat) {
		return false
	}
	width := def.Word(0)
	return fuzzerutil.U32(len(t.Words)) == (width+31)/32
}

func (t *AddConstantScalar) Apply(m *ir.Module, ctx *TransformationContext) {
	defineGlobal(m, ir.NewInstruction(spirv.OpConstant, t.TypeID, t.FreshID, spirv.LiteralOperand(t.Words...)))
	if t.IsIrrelevant {
		ctx.Facts().AddFactIDIsIrrelevant(t.FreshID)
	}
}

func (t *AddConstantScalar) FreshIDs() []uint32 { return []uint32{t.FreshID} }

func (t *AddConstantScalar) ToMessage() Message { return newMessage(KindAddConstantScalar, t) }

package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// AddConstantBoolean declares OpConstantTrue or OpConstantFalse.
type AddConstantBoolean struct {
	FreshID      uint32 `msgpack:"fresh_id"`
	IsTrue       bool   `msgpack:"is_true"`
	IsIrrelevant bool   `msgpack:"is_irrelevant"`
}

// NewAddConstantBoolean creates an AddConstantBoolean transformation.
func NewAddConstantBoolean(freshID uint32, isTrue, isIrrelevant bool) *AddConstantBoolean {
	return &AddConstantBoolean{FreshID: freshID, IsTrue: isTrue, IsIrrelevant: isIrrelevant}
}

func (t *AddConstantBoolean) IsApplicable(m *ir.Module, _ *TransformationContext) bool {
	return fuzzerutil.IsFreshID(m, t.FreshID) && fuzzerutil.MaybeGetBoolType(m) != 0
}

func (t *AddConstantBoolean) Apply(m *ir.Module, ctx *TransformationContext) {
	opcode := spirv.OpConstantFalse
	if t.IsTrue {
		opcode = spirv.OpConstantTrue
	}
	defineGlobal(m, ir.NewInstruction(opcode, fuzzerutil.MaybeGetBoolType(m), t.FreshID))
	if t.IsIrrelevant {
		ctx.Facts().AddFactIDIsIrrelevant(t.FreshID)
	}
}

func (t *AddConstantBoolean) FreshIDs() []uint32 { return []uint32{t.FreshID} }

func (t *AddConstantBoolean) ToMessage() Message { return newMessage(KindAddConstantBoolean, t) }

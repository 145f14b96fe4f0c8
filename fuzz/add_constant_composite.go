package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/facts"
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// AddConstantComposite declares an OpConstantComposite of an array, vector,
// matrix or struct type from existing constants.
type AddConstantComposite struct {
	FreshID        uint32   `msgpack:"fresh_id"`
	TypeID         uint32   `msgpack:"type_id"`
	ConstituentIDs []uint32 `msgpack:"constituent_ids"`
	IsIrrelevant   bool     `msgpack:"is_irrelevant"`
}

// NewAddConstantComposite creates an AddConstantComposite transformation.
func NewAddConstantComposite(freshID, typeID uint32, constituents []uint32, isIrrelevant bool) *AddConstantComposite {
	return &AddConstantComposite{FreshID: freshID, TypeID: typeID, ConstituentIDs: constituents, IsIrrelevant: isIrrelevant}
}

func (t *AddConstantComposite) IsApplicable(m *ir.Module, _ *TransformationContext) bool {
	if !fuzzerutil.IsFreshID(m, t.FreshID) || !fuzzerutil.IsCompositeType(m, t.TypeID) {
		return false
	}
	if !fuzzerutil.CanCreateConstant(m, t.TypeID) {
		return false
	}
	// Arrays and vectors repeat their element type once per component.
	if fuzzerutil.GetBoundsForCompositeType(m, t.TypeID) != fuzzerutil.U32(len(t.ConstituentIDs)) {
		return false
	}
	for k, c := range t.ConstituentIDs {
		if !isConstant(m, c) || fuzzerutil.GetTypeID(m, c) != fuzzerutil.CompositeComponentType(m, t.TypeID, fuzzerutil.U32(k)) {
			return false
		}
	}
	return true
}

func (t *AddConstantComposite) Apply(m *ir.Module, ctx *TransformationContext) {
	defineGlobal(m, ir.NewInstruction(spirv.OpConstantComposite, t.TypeID, t.FreshID, ir.IDs(t.ConstituentIDs...)...))
	f := ctx.Facts()
	if t.IsIrrelevant {
		f.AddFactIDIsIrrelevant(t.FreshID)
		return
	}
	for k, c := range t.ConstituentIDs {
		if !f.IDIsIrrelevant(c) {
			f.AddFactDataSynonym(facts.MakeDataDescriptor(c), facts.MakeDataDescriptor(t.FreshID, fuzzerutil.U32(k)))
		}
	}
}

func (t *AddConstantComposite) FreshIDs() []uint32 { return []uint32{t.FreshID} }

func (t *AddConstantComposite) ToMessage() Message { return newMessage(KindAddConstantComposite, t) }

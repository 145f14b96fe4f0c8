package fuzzerutil

import (
	"github.com/gogpu/spvfuzz/fuzz/facts"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// relevanceMatches reports whether the irrelevance of id is as requested.
func relevanceMatches(f *facts.Manager, id uint32, irrelevant bool) bool {
	return f.IDIsIrrelevant(id) == irrelevant
}

// MaybeGetBoolConstant returns the id of an OpConstantTrue/OpConstantFalse
// with the requested value and irrelevance, or 0.
func MaybeGetBoolConstant(m *ir.Module, f *facts.Manager, value, irrelevant bool) uint32 {
	boolType := MaybeGetBoolType(m)
	if boolType == 0 {
		return 0
	}
	opcode := spirv.OpConstantFalse
	if value {
		opcode = spirv.OpConstantTrue
	}
	for _, inst := range m.TypesValues {
		if inst.Opcode == opcode && inst.TypeID == boolType && relevanceMatches(f, inst.ResultID, irrelevant) {
			return inst.ResultID
		}
	}
	return 0
}

// MaybeGetScalarConstant returns the id of an OpConstant of typeID holding
// exactly words, or 0.
func MaybeGetScalarConstant(m *ir.Module, f *facts.Manager, words []uint32, typeID uint32, irrelevant bool) uint32 {
	for _, inst := range m.TypesValues {
		if inst.Opcode == spirv.OpConstant && inst.TypeID == typeID &&
			equalIDs(inst.Operands[0].Words, words) && relevanceMatches(f, inst.ResultID, irrelevant) {
			return inst.ResultID
		}
	}
	return 0
}

// MaybeGetIntegerConstant returns the id of an integer constant of the given
// width and signedness holding words, or 0.
func MaybeGetIntegerConstant(m *ir.Module, f *facts.Manager, words []uint32, width uint32, signed, irrelevant bool) uint32 {
	typeID := MaybeGetIntegerType(m, width, signed)
	if typeID == 0 {
		return 0
	}
	return MaybeGetScalarConstant(m, f, words, typeID, irrelevant)
}

// MaybeGetCompositeConstant returns the id of an OpConstantComposite of typeID
// with exactly the given constituents, or 0.
func MaybeGetCompositeConstant(m *ir.Module, f *facts.Manager, constituents []uint32, typeID uint32, irrelevant bool) uint32 {
	for _, inst := range m.TypesValues {
		if inst.Opcode == spirv.OpConstantComposite && inst.TypeID == typeID &&
			equalIDs(inst.InIDs(), constituents) && relevanceMatches(f, inst.ResultID, irrelevant) {
			return inst.ResultID
		}
	}
	return 0
}

// MaybeGetZeroConstant returns the id of a constant of typeID whose value is
// zero (false for booleans, all-zero components for composites), or 0.
func MaybeGetZeroConstant(m *ir.Module, f *facts.Manager, typeID uint32, irrelevant bool) uint32 {
	def := m.DefUse().GetDef(typeID)
	if def == nil {
		return 0
	}
	switch def.Opcode {
	case spirv.OpTypeBool:
		return MaybeGetBoolConstant(m, f, false, irrelevant)
	case spirv.OpTypeInt, spirv.OpTypeFloat:
		words := make([]uint32, (def.Word(0)+31)/32)
		return MaybeGetScalarConstant(m, f, words, typeID, irrelevant)
	}
	for _, inst := range m.TypesValues {
		if inst.Opcode == spirv.OpConstantNull && inst.TypeID == typeID && relevanceMatches(f, inst.ResultID, irrelevant) {
			return inst.ResultID
		}
	}
	n := GetBoundsForCompositeType(m, typeID)
	if n == 0 {
		return 0
	}
	if def.Opcode == spirv.OpTypeStruct {
		constituents := make([]uint32, n)
		for k := range constituents {
			constituents[k] = MaybeGetZeroConstant(m, f, CompositeComponentType(m, typeID, U32(k)), irrelevant)
			if constituents[k] == 0 {
				return 0
			}
		}
		return MaybeGetCompositeConstant(m, f, constituents, typeID, irrelevant)
	}
	// Arrays, vectors and matrices repeat one element; its zero is looked up
	// once and the constituent list is never materialized.
	elem := MaybeGetZeroConstant(m, f, def.IDOperand(0), irrelevant)
	if elem == 0 {
		return 0
	}
	for _, inst := range m.TypesValues {
		if inst.Opcode == spirv.OpConstantComposite && inst.TypeID == typeID &&
			U32(len(inst.Operands)) == n && allOperandsAre(inst, elem) && relevanceMatches(f, inst.ResultID, irrelevant) {
			return inst.ResultID
		}
	}
	return 0
}

func allOperandsAre(inst *ir.Instruction, id uint32) bool {
	for k := range inst.Operands {
		if inst.IDOperand(k) != id {
			return false
		}
	}
	return true
}

// IsConstantOrUndef reports whether id is a module-scope constant or OpUndef.
func IsConstantOrUndef(m *ir.Module, id uint32) bool {
	def := m.DefUse().GetDef(id)
	return def != nil && (def.Opcode.IsConstant() || def.Opcode == spirv.OpUndef) && m.DefUse().Block(def) == nil
}

// IsNullConstantOrUndef reports whether id is an OpConstantNull or OpUndef.
func IsNullConstantOrUndef(m *ir.Module, id uint32) bool {
	def := m.DefUse().GetDef(id)
	return def != nil && (def.Opcode == spirv.OpConstantNull || def.Opcode == spirv.OpUndef)
}

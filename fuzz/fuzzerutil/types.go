package fuzzerutil

import (
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// findType returns the first type declaration with the given opcode whose
// in operands satisfy match.
func findType(m *ir.Module, opcode spirv.OpCode, match func(inst *ir.Instruction) bool) uint32 {
	for _, inst := range m.TypesValues {
		if inst.Opcode == opcode && match(inst) {
			return inst.ResultID
		}
	}
	return 0
}

func always(*ir.Instruction) bool { return true }

// MaybeGetVoidType returns the id of OpTypeVoid, or 0.
func MaybeGetVoidType(m *ir.Module) uint32 {
	return findType(m, spirv.OpTypeVoid, always)
}

// MaybeGetBoolType returns the id of OpTypeBool, or 0.
func MaybeGetBoolType(m *ir.Module) uint32 {
	return findType(m, spirv.OpTypeBool, always)
}

// MaybeGetIntegerType returns the id of the integer type with the given width
// and signedness, or 0.
func MaybeGetIntegerType(m *ir.Module, width uint32, signed bool) uint32 {
	signedness := uint32(0)
	if signed {
		signedness = 1
	}
	return findType(m, spirv.OpTypeInt, func(inst *ir.Instruction) bool {
		return inst.Word(0) == width && inst.Word(1) == signedness
	})
}

// MaybeGetFloatType returns the id of the float type with the given width, or 0.
func MaybeGetFloatType(m *ir.Module, width uint32) uint32 {
	return findType(m, spirv.OpTypeFloat, func(inst *ir.Instruction) bool {
		return inst.Word(0) == width
	})
}

// MaybeGetVectorType returns the id of the vector type, or 0.
func MaybeGetVectorType(m *ir.Module, component, count uint32) uint32 {
	return findType(m, spirv.OpTypeVector, func(inst *ir.Instruction) bool {
		return inst.IDOperand(0) == component && inst.Word(1) == count
	})
}

// MaybeGetPointerType returns the id of the pointer type, or 0.
func MaybeGetPointerType(m *ir.Module, storageClass spirv.StorageClass, pointee uint32) uint32 {
	return findType(m, spirv.OpTypePointer, func(inst *ir.Instruction) bool {
		return spirv.StorageClass(inst.Word(0)) == storageClass && inst.IDOperand(1) == pointee
	})
}

// MaybeGetStructType returns the id of a struct type with exactly the given
// member types, or 0.
func MaybeGetStructType(m *ir.Module, members []uint32) uint32 {
	return findType(m, spirv.OpTypeStruct, func(inst *ir.Instruction) bool {
		return equalIDs(inst.InIDs(), members)
	})
}

// FindFunctionType returns the id of the OpTypeFunction with exactly the given
// return and parameter type ids, or 0. Types are compared by id.
func FindFunctionType(m *ir.Module, returnType uint32, params []uint32) uint32 {
	want := append([]uint32{returnType}, params...)
	return findType(m, spirv.OpTypeFunction, func(inst *ir.Instruction) bool {
		return equalIDs(inst.InIDs(), want)
	})
}

func equalIDs(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if a[k] != b[k] {
			return false
		}
	}
	return true
}

// AddFunctionType declares a new OpTypeFunction with result id id.
func AddFunctionType(m *ir.Module, id, returnType uint32, params []uint32) {
	m.AddGlobal(ir.NewInstruction(spirv.OpTypeFunction, 0, id, ir.IDs(append([]uint32{returnType}, params...)...)...))
	UpdateModuleIDBound(m, id)
}

// FindOrCreateFunctionType returns an existing matching function type or
// declares one with the given fresh id.
func FindOrCreateFunctionType(m *ir.Module, freshID, returnType uint32, params []uint32) uint32 {
	if existing := FindFunctionType(m, returnType, params); existing != 0 {
		return existing
	}
	AddFunctionType(m, freshID, returnType, params)
	return freshID
}

// GetFunctionType returns the OpTypeFunction of fn.
func GetFunctionType(m *ir.Module, fn *ir.Function) *ir.Instruction {
	return m.DefUse().GetDef(fn.TypeID())
}

// UpdateFunctionType gives the function fnID the signature (returnType,
// params). An existing matching OpTypeFunction is reused, otherwise one is
// declared with freshID. The previous type is removed when nothing else uses
// it. Analyses are invalidated.
func UpdateFunctionType(m *ir.Module, fnID, freshID, returnType uint32, params []uint32) uint32 {
	fn := m.Function(fnID)
	old := fn.TypeID()
	typeID := FindOrCreateFunctionType(m, freshID, returnType, params)
	fn.SetTypeID(typeID)
	m.InvalidateAnalyses()
	if old != typeID && !m.DefUse().IsUsed(old) {
		m.RemoveGlobal(old)
		m.InvalidateAnalyses()
	}
	return typeID
}

// IsNonFunctionTypeID reports whether id declares a type other than a
// function type.
func IsNonFunctionTypeID(m *ir.Module, id uint32) bool {
	def := m.DefUse().GetDef(id)
	return def != nil && def.Opcode.IsType() && def.Opcode != spirv.OpTypeFunction
}

// IsType reports whether id declares a type.
func IsType(m *ir.Module, id uint32) bool {
	def := m.DefUse().GetDef(id)
	return def != nil && def.Opcode.IsType()
}

// GetPointeeTypeIDFromPointerType returns the pointee type of a pointer type,
// or 0 if ptrType is not a pointer type.
func GetPointeeTypeIDFromPointerType(m *ir.Module, ptrType uint32) uint32 {
	def := m.DefUse().GetDef(ptrType)
	if def == nil || def.Opcode != spirv.OpTypePointer {
		return 0
	}
	return def.IDOperand(1)
}

// GetStorageClassFromPointerType returns the storage class of a pointer type.
func GetStorageClassFromPointerType(m *ir.Module, ptrType uint32) spirv.StorageClass {
	return spirv.StorageClass(m.DefUse().GetDef(ptrType).Word(0))
}

// IsPointerType reports whether id declares a pointer type.
func IsPointerType(m *ir.Module, id uint32) bool {
	def := m.DefUse().GetDef(id)
	return def != nil && def.Opcode == spirv.OpTypePointer
}

// GetArraySize returns the length of an array type when it is a constant of
// at most 32 bits, or 0.
func GetArraySize(m *ir.Module, arrayType uint32) uint32 {
	def := m.DefUse().GetDef(arrayType)
	if def == nil || def.Opcode != spirv.OpTypeArray {
		return 0
	}
	length := m.DefUse().GetDef(def.IDOperand(1))
	if length == nil || length.Opcode != spirv.OpConstant || len(length.Operands[0].Words) != 1 {
		return 0
	}
	return length.Word(0)
}

// CompositeComponentType returns the type of component index of a composite
// type, or 0 if typeID is not a composite or index is out of bounds.
func CompositeComponentType(m *ir.Module, typeID, index uint32) uint32 {
	def := m.DefUse().GetDef(typeID)
	if def == nil || index >= GetBoundsForCompositeType(m, typeID) {
		return 0
	}
	if def.Opcode == spirv.OpTypeStruct {
		return def.IDOperand(int(index))
	}
	return def.IDOperand(0)
}

// GetBoundsForCompositeType returns the number of components of a composite
// type, or 0.
func GetBoundsForCompositeType(m *ir.Module, typeID uint32) uint32 {
	def := m.DefUse().GetDef(typeID)
	if def == nil {
		return 0
	}
	switch def.Opcode {
	case spirv.OpTypeStruct:
		return U32(len(def.Operands))
	case spirv.OpTypeVector, spirv.OpTypeMatrix:
		return def.Word(1)
	case spirv.OpTypeArray:
		return GetArraySize(m, typeID)
	}
	return 0
}

// IsCompositeType reports whether id declares a struct, array, vector or
// matrix type.
func IsCompositeType(m *ir.Module, id uint32) bool {
	def := m.DefUse().GetDef(id)
	if def == nil {
		return false
	}
	switch def.Opcode {
	case spirv.OpTypeStruct, spirv.OpTypeArray, spirv.OpTypeVector, spirv.OpTypeMatrix:
		return true
	}
	return false
}

// MembersHaveBuiltInDecoration reports whether any member of the struct type
// id carries a BuiltIn decoration.
func MembersHaveBuiltInDecoration(m *ir.Module, structID uint32) bool {
	for _, inst := range m.Annotations {
		if inst.Opcode == spirv.OpMemberDecorate && inst.IDOperand(0) == structID &&
			spirv.Decoration(inst.Word(2)) == spirv.DecorationBuiltIn {
			return true
		}
	}
	return false
}

// HasDecoration reports whether id carries decoration.
func HasDecoration(m *ir.Module, id uint32, decoration spirv.Decoration) bool {
	for _, inst := range m.Annotations {
		if inst.Opcode == spirv.OpDecorate && inst.IDOperand(0) == id && spirv.Decoration(inst.Word(1)) == decoration {
			return true
		}
	}
	return false
}

// HasBlockOrBufferBlockDecoration reports whether id is decorated Block or
// BufferBlock.
func HasBlockOrBufferBlockDecoration(m *ir.Module, id uint32) bool {
	return HasDecoration(m, id, spirv.DecorationBlock) || HasDecoration(m, id, spirv.DecorationBufferBlock)
}

// CanCreateConstant reports whether a constant of typeID can be declared:
// scalars, and vectors, matrices, fixed-size arrays and plain structs built
// from such types.
func CanCreateConstant(m *ir.Module, typeID uint32) bool {
	def := m.DefUse().GetDef(typeID)
	if def == nil {
		return false
	}
	switch def.Opcode {
	case spirv.OpTypeBool, spirv.OpTypeInt, spirv.OpTypeFloat, spirv.OpTypeVector, spirv.OpTypeMatrix:
		return true
	case spirv.OpTypeArray:
		return GetArraySize(m, typeID) != 0 && CanCreateConstant(m, def.IDOperand(0))
	case spirv.OpTypeStruct:
		if MembersHaveBuiltInDecoration(m, typeID) || HasBlockOrBufferBlockDecoration(m, typeID) {
			return false
		}
		for _, member := range def.InIDs() {
			if !CanCreateConstant(m, member) {
				return false
			}
		}
		return true
	}
	return false
}

// IsParameterTypeSupported reports whether a value of typeID can be moved
// between a parameter and a struct member or a Private variable: scalars and
// composites built only from them.
func IsParameterTypeSupported(m *ir.Module, typeID uint32) bool {
	def := m.DefUse().GetDef(typeID)
	if def == nil {
		return false
	}
	switch def.Opcode {
	case spirv.OpTypeBool, spirv.OpTypeInt, spirv.OpTypeFloat, spirv.OpTypeVector, spirv.OpTypeMatrix:
		return true
	case spirv.OpTypeArray:
		return IsParameterTypeSupported(m, def.IDOperand(0))
	case spirv.OpTypeStruct:
		if MembersHaveBuiltInDecoration(m, typeID) || HasBlockOrBufferBlockDecoration(m, typeID) {
			return false
		}
		for _, member := range def.InIDs() {
			if !IsParameterTypeSupported(m, member) {
				return false
			}
		}
		return true
	}
	return false
}

// FirstNonVariableIndex returns the position in the entry block of fn just
// past its leading OpVariable cluster.
func FirstNonVariableIndex(fn *ir.Function) int {
	entry := fn.Entry()
	k := 0
	for k < len(entry.Insts) && entry.Insts[k].Opcode == spirv.OpVariable {
		k++
	}
	return k
}

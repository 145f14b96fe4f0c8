package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// AddTypeStruct declares a struct type with the given member types.
type AddTypeStruct struct {
	FreshID       uint32   `msgpack:"fresh_id"`
	MemberTypeIDs []uint32 `msgpack:"member_type_ids"`
}

// NewAddTypeStruct creates an AddTypeStruct transformation.
func NewAddTypeStruct(freshID uint32, memberTypes ...uint32) *AddTypeStruct {
	return &AddTypeStruct{FreshID: freshID, MemberTypeIDs: memberTypes}
}

func (t *AddTypeStruct) IsApplicable(m *ir.Module, _ *TransformationContext) bool {
	if !fuzzerutil.IsFreshID(m, t.FreshID) {
		return false
	}
	for _, member := range t.MemberTypeIDs {
		if !structMemberTypeIsSupported(m, member) {
			return false
		}
	}
	return true
}

// structMemberTypeIsSupported reports whether typeID may be used as the type
// of a member of a new struct.
func structMemberTypeIsSupported(m *ir.Module, typeID uint32) bool {
	if !fuzzerutil.IsNonFunctionTypeID(m, typeID) {
		return false
	}
	switch m.DefUse().GetDef(typeID).Opcode {
	case spirv.OpTypeVoid, spirv.OpTypeRuntimeArray:
		return false
	case spirv.OpTypeStruct:
		// Built-in blocks and interface blocks may not be nested.
		return !fuzzerutil.MembersHaveBuiltInDecoration(m, typeID) &&
			!fuzzerutil.HasBlockOrBufferBlockDecoration(m, typeID)
	}
	return true
}

func (t *AddTypeStruct) Apply(m *ir.Module, _ *TransformationContext) {
	defineGlobal(m, ir.NewInstruction(spirv.OpTypeStruct, 0, t.FreshID, ir.IDs(t.MemberTypeIDs...)...))
}

func (t *AddTypeStruct) FreshIDs() []uint32 { return []uint32{t.FreshID} }

func (t *AddTypeStruct) ToMessage() Message { return newMessage(KindAddTypeStruct, t) }

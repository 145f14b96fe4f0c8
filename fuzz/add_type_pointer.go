package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// AddTypePointer declares a pointer type.
type AddTypePointer struct {
	FreshID      uint32             `msgpack:"fresh_id"`
	StorageClass spirv.StorageClass `msgpack:"storage_class"`
	BaseType     uint32             `msgpack:"base_type"`
}

// NewAddTypePointer creates an AddTypePointer transformation.
func NewAddTypePointer(freshID uint32, storageClass spirv.StorageClass, baseType uint32) *AddTypePointer {
	return &AddTypePointer{FreshID: freshID, StorageClass: storageClass, BaseType: baseType}
}

func (t *AddTypePointer) IsApplicable(m *ir.Module, _ *TransformationContext) bool {
	return fuzzerutil.IsFreshID(m, t.FreshID) && fuzzerutil.IsType(m, t.BaseType)
}

func (t *AddTypePointer) Apply(m *ir.Module, _ *TransformationContext) {
	defineGlobal(m, ir.NewInstruction(spirv.OpTypePointer, 0, t.FreshID,
		spirv.LiteralOperand(uint32(t.StorageClass)), spirv.IDOperand(t.BaseType)))
}

func (t *AddTypePointer) FreshIDs() []uint32 { return []uint32{t.FreshID} }

func (t *AddTypePointer) ToMessage() Message { return newMessage(KindAddTypePointer, t) }

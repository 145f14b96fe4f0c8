package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// AddTypeFloat declares a floating-point type of the given width.
type AddTypeFloat struct {
	FreshID uint32 `msgpack:"fresh_id"`
	Width   uint32 `msgpack:"width"`
}

// NewAddTypeFloat creates an AddTypeFloat transformation.
func NewAddTypeFloat(freshID, width uint32) *AddTypeFloat {
	return &AddTypeFloat{FreshID: freshID, Width: width}
}

var floatWidthCapability = map[uint32]spirv.Capability{
	16: spirv.CapabilityFloat16,
	64: spirv.CapabilityFloat64,
}

func (t *AddTypeFloat) IsApplicable(m *ir.Module, _ *TransformationContext) bool {
	if !fuzzerutil.IsFreshID(m, t.FreshID) {
		return false
	}
	if t.Width != 32 {
		capability, ok := floatWidthCapability[t.Width]
		if !ok || !hasCapability(m, capability) {
			return false
		}
	}
	return fuzzerutil.MaybeGetFloatType(m, t.Width) == 0
}

func (t *AddTypeFloat) Apply(m *ir.Module, _ *TransformationContext) {
	defineGlobal(m, ir.NewInstruction(spirv.OpTypeFloat, 0, t.FreshID, ir.Literals(t.Width)...))
}

func (t *AddTypeFloat) FreshIDs() []uint32 { return []uint32{t.FreshID} }

func (t *AddTypeFloat) ToMessage() Message { return newMessage(KindAddTypeFloat, t) }

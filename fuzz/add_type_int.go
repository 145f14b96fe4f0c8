package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// AddTypeInt declares an integer type of the given width and signedness.
type AddTypeInt struct {
	FreshID  uint32 `msgpack:"fresh_id"`
	Width    uint32 `msgpack:"width"`
	IsSigned bool   `msgpack:"is_signed"`
}

// NewAddTypeInt creates an AddTypeInt transformation.
func NewAddTypeInt(freshID, width uint32, signed bool) *AddTypeInt {
	return &AddTypeInt{FreshID: freshID, Width: width, IsSigned: signed}
}

var intWidthCapability = map[uint32]spirv.Capability{
	8:  spirv.CapabilityInt8,
	16: spirv.CapabilityInt16,
	64: spirv.CapabilityInt64,
}

func (t *AddTypeInt) IsApplicable(m *ir.Module, _ *TransformationContext) bool {
	if !fuzzerutil.IsFreshID(m, t.FreshID) {
		return false
	}
	if t.Width != 32 {
		capability, ok := intWidthCapability[t.Width]
		if !ok || !hasCapability(m, capability) {
			return false
		}
	}
	// Duplicate non-aggregate types are invalid.
	return fuzzerutil.MaybeGetIntegerType(m, t.Width, t.IsSigned) == 0
}

func (t *AddTypeInt) Apply(m *ir.Module, _ *TransformationContext) {
	var signedness uint32
	if t.IsSigned {
		signedness = 1
	}
	defineGlobal(m, ir.NewInstruction(spirv.OpTypeInt, 0, t.FreshID, ir.Literals(t.Width, signedness)...))
}

func (t *AddTypeInt) FreshIDs() []uint32 { return []uint32{t.FreshID} }

func (t *AddTypeInt) ToMessage() Message { return newMessage(KindAddTypeInt, t) }

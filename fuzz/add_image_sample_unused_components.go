package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// AddImageSampleUnusedComponents makes an image sample instruction use a
// coordinate vector with extra trailing components. Sampling ignores
// components beyond those the image dimensionality needs.
type AddImageSampleUnusedComponents struct {
	CoordinateWithUnusedComponentsID uint32                `msgpack:"coordinate_with_unused_components_id"`
	InstructionDescriptor            InstructionDescriptor `msgpack:"instruction_descriptor"`
}

// NewAddImageSampleUnusedComponents creates an AddImageSampleUnusedComponents
// transformation.
func NewAddImageSampleUnusedComponents(coordinateID uint32, sample InstructionDescriptor) *AddImageSampleUnusedComponents {
	return &AddImageSampleUnusedComponents{CoordinateWithUnusedComponentsID: coordinateID, InstructionDescriptor: sample}
}

// IsImageSample reports whether opcode samples an image through a coordinate
// held by its second operand.
func IsImageSample(opcode spirv.OpCode) bool {
	switch opcode {
	case spirv.OpImageSampleImplicitLod, spirv.OpImageSampleExplicitLod,
		spirv.OpImageSampleDrefImplicitLod, spirv.OpImageSampleDrefExplicitLod,
		spirv.OpImageSampleProjImplicitLod, spirv.OpImageSampleProjExplicitLod,
		spirv.OpImageSampleProjDrefImplicitLod, spirv.OpImageSampleProjDrefExplicitLod:
		return true
	}
	return false
}

// vectorShape returns the component type and count of a vector type, or of a
// scalar type viewed as a one-component vector.
func vectorShape(m *ir.Module, typeID uint32) (component, count uint32) {
	def := m.DefUse().GetDef(typeID)
	if def == nil {
		return 0, 0
	}
	if def.Opcode == spirv.OpTypeVector {
		return def.IDOperand(0), def.Word(1)
	}
	return typeID, 1
}

func (t *AddImageSampleUnusedComponents) IsApplicable(m *ir.Module, _ *TransformationContext) bool {
	block, idx := FindInstruction(m, t.InstructionDescriptor)
	if block == nil {
		return false
	}
	sample := block.Insts[idx]
	if !IsImageSample(sample.Opcode) {
		return false
	}
	coordinate := sample.IDOperand(1)
	component, count := vectorShape(m, fuzzerutil.GetTypeID(m, coordinate))
	if component == 0 || count == 4 {
		return false
	}

	extended := m.DefUse().GetDef(t.CoordinateWithUnusedComponentsID)
	if extended == nil || extended.Opcode != spirv.OpCompositeConstruct {
		return false
	}
	if extended.IDOperand(0) != coordinate {
		return false
	}
	extDef := m.DefUse().GetDef(extended.TypeID)
	if extDef == nil || extDef.Opcode != spirv.OpTypeVector {
		return false
	}
	if extDef.IDOperand(0) != component || extDef.Word(1) <= count {
		return false
	}
	return fuzzerutil.IDIsAvailableBeforeInstruction(m, block, idx, t.CoordinateWithUnusedComponentsID)
}

func (t *AddImageSampleUnusedComponents) Apply(m *ir.Module, _ *TransformationContext) {
	block, idx := mustFind(m, t.InstructionDescriptor)
	block.Insts[idx].SetOperand(1, spirv.IDOperand(t.CoordinateWithUnusedComponentsID))
	m.InvalidateAnalyses()
}

func (t *AddImageSampleUnusedComponents) FreshIDs() []uint32 { return nil }

func (t *AddImageSampleUnusedComponents) ToMessage() Message {
	return newMessage(KindAddImageSampleUnusedComponents, t)
}

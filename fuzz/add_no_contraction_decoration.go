package fuzz

import (
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// AddNoContractionDecoration decorates an arithmetic instruction with
// NoContraction.
type AddNoContractionDecoration struct {
	ResultID uint32 `msgpack:"result_id"`
}

// NewAddNoContractionDecoration creates an AddNoContractionDecoration
// transformation.
func NewAddNoContractionDecoration(resultID uint32) *AddNoContractionDecoration {
	return &AddNoContractionDecoration{ResultID: resultID}
}

var arithmeticOpcodes = map[spirv.OpCode]bool{
	spirv.OpSNegate:           true,
	spirv.OpFNegate:           true,
	spirv.OpIAdd:              true,
	spirv.OpFAdd:              true,
	spirv.OpISub:              true,
	spirv.OpFSub:              true,
	spirv.OpIMul:              true,
	spirv.OpFMul:              true,
	spirv.OpUDiv:              true,
	spirv.OpSDiv:              true,
	spirv.OpFDiv:              true,
	spirv.OpUMod:              true,
	spirv.OpSRem:              true,
	spirv.OpSMod:              true,
	spirv.OpFRem:              true,
	spirv.OpFMod:              true,
	spirv.OpVectorTimesScalar: true,
	spirv.OpMatrixTimesScalar: true,
	spirv.OpVectorTimesMatrix: true,
	spirv.OpMatrixTimesVector: true,
	spirv.OpMatrixTimesMatrix: true,
	spirv.OpOuterProduct:      true,
	spirv.OpDot:               true,
	spirv.OpIAddCarry:         true,
	spirv.OpISubBorrow:        true,
	spirv.OpUMulExtended:      true,
	spirv.OpSMulExtended:      true,
}

// IsArithmetic reports whether NoContraction may decorate the result of opcode.
func IsArithmetic(opcode spirv.OpCode) bool {
	return arithmeticOpcodes[opcode]
}

func (t *AddNoContractionDecoration) IsApplicable(m *ir.Module, _ *TransformationContext) bool {
	def := m.DefUse().GetDef(t.ResultID)
	return def != nil && IsArithmetic(def.Opcode)
}

func (t *AddNoContractionDecoration) Apply(m *ir.Module, _ *TransformationContext) {
	m.AddAnnotation(ir.NewInstruction(spirv.OpDecorate, 0, 0,
		spirv.IDOperand(t.ResultID), spirv.LiteralOperand(uint32(spirv.DecorationNoContraction))))
	m.InvalidateAnalyses()
}

func (t *AddNoContractionDecoration) FreshIDs() []uint32 { return nil }

func (t *AddNoContractionDecoration) ToMessage() Message {
	return newMessage(KindAddNoContractionDecoration, t)
}

package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// InvertComparisonOperator replaces a comparison by the logical negation of
// its inverse:
//
//	%a = OpSLessThan %bool %x %y
//
// becomes
//
//	%fresh = OpSGreaterThanEqual %bool %x %y
//	%a = OpLogicalNot %bool %fresh
type InvertComparisonOperator struct {
	OperatorID uint32 `msgpack:"operator_id"`
	FreshID    uint32 `msgpack:"fresh_id"`
}

// NewInvertComparisonOperator creates an InvertComparisonOperator transformation.
func NewInvertComparisonOperator(operatorID, freshID uint32) *InvertComparisonOperator {
	return &InvertComparisonOperator{OperatorID: operatorID, FreshID: freshID}
}

// invertedComparison maps each comparison to the comparison that is true
// exactly when it is false. Ordered float comparisons are false when an
// operand is NaN, so they invert to unordered ones and vice versa.
var invertedComparison = map[spirv.OpCode]spirv.OpCode{
	spirv.OpULessThan:              spirv.OpUGreaterThanEqual,
	spirv.OpUGreaterThanEqual:      spirv.OpULessThan,
	spirv.OpUGreaterThan:           spirv.OpULessThanEqual,
	spirv.OpULessThanEqual:         spirv.OpUGreaterThan,
	spirv.OpSLessThan:              spirv.OpSGreaterThanEqual,
	spirv.OpSGreaterThanEqual:      spirv.OpSLessThan,
	spirv.OpSGreaterThan:           spirv.OpSLessThanEqual,
	spirv.OpSLessThanEqual:         spirv.OpSGreaterThan,
	spirv.OpIEqual:                 spirv.OpINotEqual,
	spirv.OpINotEqual:              spirv.OpIEqual,
	spirv.OpFOrdEqual:              spirv.OpFUnordNotEqual,
	spirv.OpFUnordNotEqual:         spirv.OpFOrdEqual,
	spirv.OpFUnordEqual:            spirv.OpFOrdNotEqual,
	spirv.OpFOrdNotEqual:           spirv.OpFUnordEqual,
	spirv.OpFOrdLessThan:           spirv.OpFUnordGreaterThanEqual,
	spirv.OpFUnordGreaterThanEqual: spirv.OpFOrdLessThan,
	spirv.OpFUnordLessThan:         spirv.OpFOrdGreaterThanEqual,
	spirv.OpFOrdGreaterThanEqual:   spirv.OpFUnordLessThan,
	spirv.OpFOrdGreaterThan:        spirv.OpFUnordLessThanEqual,
	spirv.OpFUnordLessThanEqual:    spirv.OpFOrdGreaterThan,
	spirv.OpFUnordGreaterThan:      spirv.OpFOrdLessThanEqual,
	spirv.OpFOrdLessThanEqual:      spirv.OpFUnordGreaterThan,
}

// InvertedComparison returns the inverse of a comparison opcode.
func InvertedComparison(opcode spirv.OpCode) (spirv.OpCode, bool) {
	inv, ok := invertedComparison[opcode]
	return inv, ok
}

func (t *InvertComparisonOperator) IsApplicable(m *ir.Module, _ *TransformationContext) bool {
	du := m.DefUse()
	inst := du.GetDef(t.OperatorID)
	if inst == nil {
		return false
	}
	if _, ok := invertedComparison[inst.Opcode]; !ok {
		return false
	}
	block := du.Block(inst)
	if block == nil {
		return false
	}
	idx := block.IndexOf(inst)
	return fuzzerutil.CanInsertOpcodeBeforeInstruction(spirv.OpLogicalNot, block, idx+1) &&
		fuzzerutil.IsFreshID(m, t.FreshID)
}

func (t *InvertComparisonOperator) Apply(m *ir.Module, _ *TransformationContext) {
	du := m.DefUse()
	inst := du.GetDef(t.OperatorID)
	block := du.Block(inst)
	inverse, ok := invertedComparison[inst.Opcode]
	if !ok {
		panic("unsupported comparison " + inst.Opcode.String())
	}
	inst.Opcode = inverse
	inst.ResultID = t.FreshID
	block.InsertBefore(block.IndexOf(inst)+1,
		ir.NewInstruction(spirv.OpLogicalNot, inst.TypeID, t.OperatorID, spirv.IDOperand(t.FreshID)))
	fuzzerutil.UpdateModuleIDBound(m, t.FreshID)
	m.InvalidateAnalyses()
}

func (t *InvertComparisonOperator) FreshIDs() []uint32 { return []uint32{t.FreshID} }

func (t *InvertComparisonOperator) ToMessage() Message {
	return newMessage(KindInvertComparisonOperator, t)
}

package fuzz

import (
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// SwapFunctionVariables exchanges the positions of two local variables of the
// same function.
type SwapFunctionVariables struct {
	ResultID1 uint32 `msgpack:"result_id1"`
	ResultID2 uint32 `msgpack:"result_id2"`
}

// NewSwapFunctionVariables creates a SwapFunctionVariables transformation.
func NewSwapFunctionVariables(id1, id2 uint32) *SwapFunctionVariables {
	return &SwapFunctionVariables{ResultID1: id1, ResultID2: id2}
}

func (t *SwapFunctionVariables) IsApplicable(m *ir.Module, _ *TransformationContext) bool {
	if t.ResultID1 == t.ResultID2 {
		return false
	}
	du := m.DefUse()
	v1, v2 := du.GetDef(t.ResultID1), du.GetDef(t.ResultID2)
	if v1 == nil || v2 == nil || v1.Opcode != spirv.OpVariable || v2.Opcode != spirv.OpVariable {
		return false
	}
	b1, b2 := du.Block(v1), du.Block(v2)
	return b1 != nil && b1 == b2
}

func (t *SwapFunctionVariables) Apply(m *ir.Module, _ *TransformationContext) {
	du := m.DefUse()
	v1, v2 := du.GetDef(t.ResultID1), du.GetDef(t.ResultID2)
	block := du.Block(v1)
	i, j := block.IndexOf(v1), block.IndexOf(v2)
	block.Insts[i], block.Insts[j] = block.Insts[j], block.Insts[i]
	m.InvalidateAnalyses()
}

func (t *SwapFunctionVariables) FreshIDs() []uint32 { return nil }

func (t *SwapFunctionVariables) ToMessage() Message { return newMessage(KindSwapFunctionVariables, t) }

package fuzz

import (
	"github.com/gogpu/spvfuzz/ir"
)

// SwapTwoFunctions exchanges the positions of two functions in the module.
type SwapTwoFunctions struct {
	FunctionID1 uint32 `msgpack:"function_id1"`
	FunctionID2 uint32 `msgpack:"function_id2"`
}

// NewSwapTwoFunctions creates a SwapTwoFunctions transformation.
func NewSwapTwoFunctions(id1, id2 uint32) *SwapTwoFunctions {
	return &SwapTwoFunctions{FunctionID1: id1, FunctionID2: id2}
}

func functionIndex(m *ir.Module, id uint32) int {
	for k, fn := range m.Functions {
		if fn.ID() == id {
			return k
		}
	}
	return -1
}

func (t *SwapTwoFunctions) IsApplicable(m *ir.Module, _ *TransformationContext) bool {
	return t.FunctionID1 != t.FunctionID2 &&
		functionIndex(m, t.FunctionID1) >= 0 && functionIndex(m, t.FunctionID2) >= 0
}

func (t *SwapTwoFunctions) Apply(m *ir.Module, _ *TransformationContext) {
	i, j := functionIndex(m, t.FunctionID1), functionIndex(m, t.FunctionID2)
	if i < 0 || j < 0 {
		panic("function to swap does not exist")
	}
	m.Functions[i], m.Functions[j] = m.Functions[j], m.Functions[i]
	m.InvalidateAnalyses()
}

func (t *SwapTwoFunctions) FreshIDs() []uint32 { return nil }

func (t *SwapTwoFunctions) ToMessage() Message { return newMessage(KindSwapTwoFunctions, t) }

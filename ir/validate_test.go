package ir

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gogpu/spvfuzz/spirv"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	m, _, _ := buildDiamond(t)
	errs, err := Validate(m)
	require.NoError(t, err)
	require.Empty(t, errs)
}

func TestValidate_NilModule(t *testing.T) {
	_, err := Validate(nil)
	require.Error(t, err)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Module, ids diamondIDs)
		want   string
	}{
		{
			name: "duplicate id",
			mutate: func(m *Module, ids diamondIDs) {
				m.AddGlobal(NewInstruction(spirv.OpTypeBool, 0, ids.boolType))
			},
			want: "defined more than once",
		},
		{
			name: "id above bound",
			mutate: func(m *Module, ids diamondIDs) {
				m.SetIDBound(ids.phi)
			},
			want: "not below the id bound",
		},
		{
			name: "missing terminator",
			mutate: func(m *Module, ids diamondIDs) {
				left := m.Functions[0].Block(ids.left)
				left.Remove(len(left.Insts) - 1)
			},
			want: "does not end with a terminator",
		},
		{
			name: "phi predecessor mismatch",
			mutate: func(m *Module, ids diamondIDs) {
				phi := m.Functions[0].Block(ids.merge).Insts[0]
				phi.Operands = phi.Operands[:2]
			},
			want: "incoming values",
		},
		{
			name: "definition does not dominate use",
			mutate: func(m *Module, ids diamondIDs) {
				right := m.Functions[0].Block(ids.right)
				use := NewInstruction(spirv.OpIAdd, ids.intType, ids.phi+1, IDs(ids.sum, ids.one)...)
				right.InsertBefore(0, use)
				m.SetIDBound(ids.phi + 2)
			},
			want: "does not dominate",
		},
		{
			name: "undefined operand",
			mutate: func(m *Module, ids diamondIDs) {
				left := m.Functions[0].Block(ids.left)
				left.Insts[0].SetOperand(0, spirv.IDOperand(500))
			},
			want: "is not defined",
		},
		{
			name: "return value in void function",
			mutate: func(m *Module, ids diamondIDs) {
				merge := m.Functions[0].Block(ids.merge)
				merge.Insts[len(merge.Insts)-1] = NewInstruction(spirv.OpReturnValue, 0, 0, IDs(ids.phi)...)
			},
			want: "returning void",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ids, _ := buildDiamond(t)
			tt.mutate(m, ids)
			m.InvalidateAnalyses()
			errs, err := Validate(m)
			require.NoError(t, err)
			require.NotEmpty(t, errs)
			found := false
			for _, e := range errs {
				if strings.Contains(e.Error(), tt.want) {
					found = true
				}
			}
			require.Truef(t, found, "no error containing %q in %v", tt.want, errs)
		})
	}
}

func TestDisassemble(t *testing.T) {
	m, ids, _ := buildDiamond(t)
	text := Disassemble(m)

	require.Contains(t, text, "; Version: 1.3")
	require.Contains(t, text, "OpCapability Shader")
	require.Contains(t, text, "OpMemoryModel Logical GLSL450")
	require.Contains(t, text, `OpEntryPoint GLCompute %`+fmt.Sprint(ids.fn)+` "main"`)
	require.Contains(t, text, "%"+fmt.Sprint(ids.sum)+" = OpIAdd %"+fmt.Sprint(ids.intType)+" %"+fmt.Sprint(ids.one)+" %"+fmt.Sprint(ids.one))
	require.Contains(t, text, "OpBranchConditional %"+fmt.Sprint(ids.trueConst))
	require.Contains(t, text, "OpFunctionEnd")
}

package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// ReplaceParameterWithGlobal removes a parameter from a function. Every
// caller stores the argument into a new Private global before the call and
// the callee loads the global at entry under the parameter's id.
type ReplaceParameterWithGlobal struct {
	FunctionTypeFreshID   uint32 `msgpack:"function_type_fresh_id"`
	ParameterID           uint32 `msgpack:"parameter_id"`
	GlobalVariableFreshID uint32 `msgpack:"global_variable_fresh_id"`
}

// NewReplaceParameterWithGlobal creates a ReplaceParameterWithGlobal
// transformation.
func NewReplaceParameterWithGlobal(functionTypeFreshID, parameterID, globalFreshID uint32) *ReplaceParameterWithGlobal {
	return &ReplaceParameterWithGlobal{
		FunctionTypeFreshID:   functionTypeFreshID,
		ParameterID:           parameterID,
		GlobalVariableFreshID: globalFreshID,
	}
}

// parameterFunction returns the function declaring the parameter id and the
// parameter's position, or (nil, -1).
func parameterFunction(m *ir.Module, id uint32) (*ir.Function, int) {
	def := m.DefUse().GetDef(id)
	if def == nil || def.Opcode != spirv.OpFunctionParameter {
		return nil, -1
	}
	fn := m.DefUse().Function(def)
	if fn == nil {
		return nil, -1
	}
	for k, p := range fn.Params {
		if p == def {
			return fn, k
		}
	}
	return nil, -1
}

func (t *ReplaceParameterWithGlobal) IsApplicable(m *ir.Module, ctx *TransformationContext) bool {
	fn, _ := parameterFunction(m, t.ParameterID)
	if fn == nil || fn.Entry() == nil || fuzzerutil.FunctionIsEntryPoint(m, fn.ID()) {
		return false
	}
	paramType := fuzzerutil.GetTypeID(m, t.ParameterID)
	if !fuzzerutil.IsParameterTypeSupported(m, paramType) {
		return false
	}
	if fuzzerutil.MaybeGetPointerType(m, spirv.StorageClassPrivate, paramType) == 0 {
		return false
	}
	if fuzzerutil.MaybeGetZeroConstant(m, ctx.Facts(), paramType, false) == 0 {
		return false
	}
	return freshIDsOK(m, t.FunctionTypeFreshID, t.GlobalVariableFreshID)
}

func (t *ReplaceParameterWithGlobal) Apply(m *ir.Module, ctx *TransformationContext) {
	fn, index := parameterFunction(m, t.ParameterID)
	param := fn.Params[index]
	paramType := param.TypeID
	ptrType := fuzzerutil.MaybeGetPointerType(m, spirv.StorageClassPrivate, paramType)
	zero := fuzzerutil.MaybeGetZeroConstant(m, ctx.Facts(), paramType, false)
	calls := fuzzerutil.CallSites(m, fn.ID())
	du := m.DefUse()

	m.AddGlobal(ir.NewInstruction(spirv.OpVariable, ptrType, t.GlobalVariableFreshID,
		spirv.LiteralOperand(uint32(spirv.StorageClassPrivate)), spirv.IDOperand(zero)))
	fuzzerutil.UpdateModuleIDBound(m, t.GlobalVariableFreshID)
	addVariableToEntryPointInterfaces(m, t.GlobalVariableFreshID)

	for _, call := range calls {
		block := du.Block(call)
		arg := call.IDOperand(index + 1)
		block.InsertBefore(block.IndexOf(call), ir.NewInstruction(spirv.OpStore, 0, 0, ir.IDs(t.GlobalVariableFreshID, arg)...))
		call.RemoveOperand(index + 1)
	}

	entry := fn.Entry()
	entry.InsertBefore(fuzzerutil.FirstNonVariableIndex(fn),
		ir.NewInstruction(spirv.OpLoad, paramType, t.ParameterID, spirv.IDOperand(t.GlobalVariableFreshID)))
	fn.Params = append(fn.Params[:index], fn.Params[index+1:]...)
	m.InvalidateAnalyses()

	params := make([]uint32, len(fn.Params))
	for k, p := range fn.Params {
		params[k] = p.TypeID
	}
	fuzzerutil.UpdateFunctionType(m, fn.ID(), t.FunctionTypeFreshID, fn.ReturnType(), params)

	if ctx.Facts().IDIsIrrelevant(t.ParameterID) {
		ctx.Facts().AddFactValueOfPointeeIsIrrelevant(t.GlobalVariableFreshID)
	}
}

func (t *ReplaceParameterWithGlobal) FreshIDs() []uint32 {
	return []uint32{t.FunctionTypeFreshID, t.GlobalVariableFreshID}
}

func (t *ReplaceParameterWithGlobal) ToMessage() Message {
	return newMessage(KindReplaceParameterWithGlobal, t)
}

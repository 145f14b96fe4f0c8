package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/facts"
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// ReplaceParamsWithStruct replaces some parameters of a function with a
// single struct parameter. Each call site packs the arguments with
// OpCompositeConstruct and the callee unpacks them at entry under the old
// parameter ids.
//
// CallerIDToFreshCompositeID maps the result id of each OpFunctionCall to the
// id of the composite built before it. Calls missing from the map take an
// overflow id.
type ReplaceParamsWithStruct struct {
	ParameterIDs               []uint32     `msgpack:"parameter_ids"`
	FreshFunctionTypeID        uint32       `msgpack:"fresh_function_type_id"`
	FreshParameterID           uint32       `msgpack:"fresh_parameter_id"`
	CallerIDToFreshCompositeID []UInt32Pair `msgpack:"caller_id_to_fresh_composite_id"`
}

// NewReplaceParamsWithStruct creates a ReplaceParamsWithStruct transformation.
func NewReplaceParamsWithStruct(parameterIDs []uint32, freshFunctionTypeID, freshParameterID uint32,
	callerIDToFreshCompositeID map[uint32]uint32) *ReplaceParamsWithStruct {
	return &ReplaceParamsWithStruct{
		ParameterIDs:               parameterIDs,
		FreshFunctionTypeID:        freshFunctionTypeID,
		FreshParameterID:           freshParameterID,
		CallerIDToFreshCompositeID: pairsFromMap(callerIDToFreshCompositeID),
	}
}

// replacedIndices returns the positions of the replaced parameters in the
// function's parameter list, in the order of t.ParameterIDs.
func (t *ReplaceParamsWithStruct) replacedIndices(m *ir.Module) (*ir.Function, []int) {
	var fn *ir.Function
	indices := make([]int, 0, len(t.ParameterIDs))
	for _, id := range t.ParameterIDs {
		f, k := parameterFunction(m, id)
		if f == nil || (fn != nil && f != fn) {
			return nil, nil
		}
		fn = f
		indices = append(indices, k)
	}
	return fn, indices
}

// structMemberTypes returns the types of the replaced parameters.
func (t *ReplaceParamsWithStruct) structMemberTypes(m *ir.Module) []uint32 {
	types := make([]uint32, len(t.ParameterIDs))
	for k, id := range t.ParameterIDs {
		types[k] = fuzzerutil.GetTypeID(m, id)
	}
	return types
}

func (t *ReplaceParamsWithStruct) IsApplicable(m *ir.Module, ctx *TransformationContext) bool {
	if len(t.ParameterIDs) == 0 || !idsAreDistinct(t.ParameterIDs...) {
		return false
	}
	fn, _ := t.replacedIndices(m)
	if fn == nil || fn.Entry() == nil || fuzzerutil.FunctionIsEntryPoint(m, fn.ID()) {
		return false
	}
	members := t.structMemberTypes(m)
	for _, typeID := range members {
		if !fuzzerutil.IsParameterTypeSupported(m, typeID) {
			return false
		}
	}
	if fuzzerutil.MaybeGetStructType(m, members) == 0 {
		return false
	}

	composites := mapFromPairs(t.CallerIDToFreshCompositeID)
	fresh := []uint32{t.FreshFunctionTypeID, t.FreshParameterID}
	for _, call := range fuzzerutil.CallSites(m, fn.ID()) {
		id, ok := composites[call.ResultID]
		if !ok {
			if !ctx.HasOverflowIDs() {
				return false
			}
			continue
		}
		fresh = append(fresh, id)
	}
	return freshIDsOK(m, fresh...)
}

func (t *ReplaceParamsWithStruct) Apply(m *ir.Module, ctx *TransformationContext) {
	fn, indices := t.replacedIndices(m)
	if fn == nil {
		panic("parameters to replace do not belong to one function")
	}
	members := t.structMemberTypes(m)
	structType := fuzzerutil.MaybeGetStructType(m, members)
	composites := mapFromPairs(t.CallerIDToFreshCompositeID)
	du := m.DefUse()
	f := ctx.Facts()

	replaced := make(map[int]bool, len(indices))
	for _, k := range indices {
		replaced[k] = true
	}

	for _, call := range fuzzerutil.CallSites(m, fn.ID()) {
		composite, ok := composites[call.ResultID]
		if !ok {
			composite = ctx.GetFreshID()
		}
		args := make([]uint32, len(indices))
		for k, idx := range indices {
			args[k] = call.IDOperand(idx + 1)
		}
		block := du.Block(call)
		block.InsertBefore(block.IndexOf(call), ir.NewInstruction(spirv.OpCompositeConstruct, structType, composite, ir.IDs(args...)...))
		fuzzerutil.UpdateModuleIDBound(m, composite)

		kept := []spirv.Operand{call.Operands[0]}
		for k, op := range call.Operands[1:] {
			if !replaced[k] {
				kept = append(kept, op)
			}
		}
		call.Operands = append(kept, spirv.IDOperand(composite))

		for k, arg := range args {
			if !f.IDIsIrrelevant(arg) {
				f.AddFactDataSynonym(facts.MakeDataDescriptor(arg), facts.MakeDataDescriptor(composite, fuzzerutil.U32(k)))
			}
		}
	}

	extracts := make([]*ir.Instruction, len(t.ParameterIDs))
	for k, id := range t.ParameterIDs {
		extracts[k] = ir.NewInstruction(spirv.OpCompositeExtract, members[k], id,
			spirv.IDOperand(t.FreshParameterID), spirv.LiteralOperand(fuzzerutil.U32(k)))
	}
	fn.Entry().InsertBefore(fuzzerutil.FirstNonVariableIndex(fn), extracts...)

	var params []*ir.Instruction
	for k, p := range fn.Params {
		if !replaced[k] {
			params = append(params, p)
		}
	}
	params = append(params, ir.NewInstruction(spirv.OpFunctionParameter, structType, t.FreshParameterID))
	fn.Params = params
	fuzzerutil.UpdateModuleIDBound(m, t.FreshParameterID)
	m.InvalidateAnalyses()

	paramTypes := make([]uint32, len(params))
	for k, p := range params {
		paramTypes[k] = p.TypeID
	}
	fuzzerutil.UpdateFunctionType(m, fn.ID(), t.FreshFunctionTypeID, fn.ReturnType(), paramTypes)
}

func (t *ReplaceParamsWithStruct) FreshIDs() []uint32 {
	ids := []uint32{t.FreshFunctionTypeID, t.FreshParameterID}
	for _, p := range t.CallerIDToFreshCompositeID {
		ids = append(ids, p.Second)
	}
	return ids
}

func (t *ReplaceParamsWithStruct) ToMessage() Message {
	return newMessage(KindReplaceParamsWithStruct, t)
}

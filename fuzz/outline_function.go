package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// OutlineFunction moves a single-entry single-exit region of a function into
// a new function and replaces the region with a call.
//
// Ids defined before the region and used inside it become parameters of the
// new function. Ids defined inside the region and used after it are returned
// in a struct and extracted again in the caller. The caller keeps the merge
// annotation and terminator of the exit block.
//
// InputIDToFreshID and OutputIDToFreshID entries that are missing take
// overflow ids.
type OutlineFunction struct {
	EntryBlock                    uint32       `msgpack:"entry_block"`
	ExitBlock                     uint32       `msgpack:"exit_block"`
	NewFunctionStructReturnTypeID uint32       `msgpack:"new_function_struct_return_type_id"`
	NewFunctionTypeID             uint32       `msgpack:"new_function_type_id"`
	NewFunctionID                 uint32       `msgpack:"new_function_id"`
	NewFunctionRegionEntryBlock   uint32       `msgpack:"new_function_region_entry_block"`
	NewCallerResultID             uint32       `msgpack:"new_caller_result_id"`
	NewCalleeResultID             uint32       `msgpack:"new_callee_result_id"`
	InputIDToFreshID              []UInt32Pair `msgpack:"input_id_to_fresh_id"`
	OutputIDToFreshID             []UInt32Pair `msgpack:"output_id_to_fresh_id"`
}

// NewOutlineFunction creates an OutlineFunction transformation.
func NewOutlineFunction(entryBlock, exitBlock, structReturnTypeID, functionTypeID, functionID,
	regionEntryBlock, callerResultID, calleeResultID uint32,
	inputIDToFreshID, outputIDToFreshID map[uint32]uint32) *OutlineFunction {
	return &OutlineFunction{
		EntryBlock:                    entryBlock,
		ExitBlock:                     exitBlock,
		NewFunctionStructReturnTypeID: structReturnTypeID,
		NewFunctionTypeID:             functionTypeID,
		NewFunctionID:                 functionID,
		NewFunctionRegionEntryBlock:   regionEntryBlock,
		NewCallerResultID:             callerResultID,
		NewCalleeResultID:             calleeResultID,
		InputIDToFreshID:              pairsFromMap(inputIDToFreshID),
		OutputIDToFreshID:             pairsFromMap(outputIDToFreshID),
	}
}

// RegionBlocks returns the blocks of the function containing entry that entry
// dominates and exit post-dominates.
func RegionBlocks(m *ir.Module, entry, exit *ir.BasicBlock) map[*ir.BasicBlock]bool {
	fn := entry.Function
	dom := m.Dominators(fn)
	postDom := m.PostDominators(fn)
	region := make(map[*ir.BasicBlock]bool)
	for _, b := range fn.Blocks {
		if dom.Dominates(entry.ID(), b.ID()) && postDom.Dominates(exit.ID(), b.ID()) {
			region[b] = true
		}
	}
	return region
}

// staysInCaller reports whether inst is the merge annotation or terminator of
// the exit block, which remain in the original function after outlining.
func staysInCaller(inst *ir.Instruction, block, exit *ir.BasicBlock) bool {
	return block == exit && (inst.Opcode.IsTerminator() || inst.Opcode.IsMerge())
}

// RegionInputIDs returns the ids defined in the function outside the region
// and used inside it, excluding uses by the exit block's merge annotation and
// terminator. Parameters come first, then instructions in layout order.
func RegionInputIDs(m *ir.Module, region map[*ir.BasicBlock]bool, exit *ir.BasicBlock) []uint32 {
	du := m.DefUse()
	usedInRegion := func(id uint32) bool {
		for _, use := range du.Uses(id) {
			b := du.Block(use.Inst)
			if b != nil && region[b] && !staysInCaller(use.Inst, b, exit) {
				return true
			}
		}
		return false
	}
	var ids []uint32
	fn := exit.Function
	for _, p := range fn.Params {
		if usedInRegion(p.ResultID) {
			ids = append(ids, p.ResultID)
		}
	}
	for _, b := range fn.Blocks {
		if region[b] {
			continue
		}
		for _, inst := range b.Insts {
			if inst.ResultID != 0 && usedInRegion(inst.ResultID) {
				ids = append(ids, inst.ResultID)
			}
		}
	}
	return ids
}

// RegionOutputIDs returns the ids defined inside the region and used outside
// it or by the exit block's merge annotation or terminator, in layout order.
func RegionOutputIDs(m *ir.Module, region map[*ir.BasicBlock]bool, exit *ir.BasicBlock) []uint32 {
	du := m.DefUse()
	var ids []uint32
	for _, b := range exit.Function.Blocks {
		if !region[b] {
			continue
		}
		for _, inst := range b.Insts {
			if inst.ResultID == 0 {
				continue
			}
			for _, use := range du.Uses(inst.ResultID) {
				ub := du.Block(use.Inst)
				if ub == nil {
					continue
				}
				if !region[ub] || staysInCaller(use.Inst, ub, exit) {
					ids = append(ids, inst.ResultID)
					break
				}
			}
		}
	}
	return ids
}

// regionIsSingleEntrySingleExit checks that control only enters the region
// through entry and only leaves it through exit, and that structured
// constructs lie wholly inside or outside the region.
//
//nolint:gocognit,gocyclo,cyclop // one check per structural rule
func regionIsSingleEntrySingleExit(m *ir.Module, region map[*ir.BasicBlock]bool, entry, exit *ir.BasicBlock) bool {
	fn := entry.Function
	dom := m.Dominators(fn)
	for _, b := range fn.Blocks {
		if b == exit {
			// The exit may head a selection, whose header becomes the call
			// block, but not a loop.
			if b.IsLoopHeader() {
				return false
			}
			continue
		}
		if region[b] {
			for _, pred := range m.Predecessors(b.ID()) {
				if !dom.Reachable(pred) {
					return false
				}
			}
		}
		for _, s := range b.Successors() {
			sb := fn.Block(s)
			if region[sb] && !region[b] && sb != entry {
				return false
			}
			if region[b] && !region[sb] {
				return false
			}
		}
		if merge := b.MergeInst(); merge != nil {
			for _, target := range merge.InIDs() {
				if region[fn.Block(target)] != region[b] {
					return false
				}
			}
		}
	}
	return true
}

//nolint:gocognit,gocyclo,cyclop // one check per precondition
func (t *OutlineFunction) IsApplicable(m *ir.Module, ctx *TransformationContext) bool {
	fresh := []uint32{
		t.NewFunctionStructReturnTypeID, t.NewFunctionTypeID, t.NewFunctionID,
		t.NewFunctionRegionEntryBlock, t.NewCallerResultID, t.NewCalleeResultID,
	}
	for _, p := range t.InputIDToFreshID {
		fresh = append(fresh, p.Second)
	}
	for _, p := range t.OutputIDToFreshID {
		fresh = append(fresh, p.Second)
	}
	if !freshIDsOK(m, fresh...) {
		return false
	}
	if fuzzerutil.MaybeGetVoidType(m) == 0 {
		return false
	}

	entry := fuzzerutil.MaybeFindBlock(m, t.EntryBlock)
	exit := fuzzerutil.MaybeFindBlock(m, t.ExitBlock)
	if entry == nil || exit == nil || entry.Function != exit.Function {
		return false
	}
	if first := entry.Insts[0].Opcode; first == spirv.OpVariable || first == spirv.OpPhi {
		return false
	}
	if entry.IsLoopHeader() || fuzzerutil.IsMergeOrContinue(m, exit.ID()) {
		return false
	}
	fn := entry.Function
	if !m.Dominators(fn).Dominates(entry.ID(), exit.ID()) || !m.PostDominators(fn).Dominates(exit.ID(), entry.ID()) {
		return false
	}

	region := RegionBlocks(m, entry, exit)
	if !regionIsSingleEntrySingleExit(m, region, entry, exit) {
		return false
	}

	inputs := mapFromPairs(t.InputIDToFreshID)
	for _, id := range RegionInputIDs(m, region, exit) {
		if _, ok := inputs[id]; !ok && !ctx.HasOverflowIDs() {
			return false
		}
		// Only variables and parameters may be passed as pointer arguments.
		if fuzzerutil.IsPointerType(m, fuzzerutil.GetTypeID(m, id)) {
			switch m.DefUse().GetDef(id).Opcode {
			case spirv.OpVariable, spirv.OpFunctionParameter:
			default:
				return false
			}
		}
	}
	outputs := mapFromPairs(t.OutputIDToFreshID)
	for _, id := range RegionOutputIDs(m, region, exit) {
		if _, ok := outputs[id]; !ok && !ctx.HasOverflowIDs() {
			return false
		}
		typeID := fuzzerutil.GetTypeID(m, id)
		if typeID == 0 || fuzzerutil.IsPointerType(m, typeID) || typeID == fuzzerutil.MaybeGetVoidType(m) {
			return false
		}
	}
	return true
}

//nolint:funlen // the region is cloned, remapped and collapsed in one pass
func (t *OutlineFunction) Apply(m *ir.Module, ctx *TransformationContext) {
	entry := fuzzerutil.MaybeFindBlock(m, t.EntryBlock)
	exit := fuzzerutil.MaybeFindBlock(m, t.ExitBlock)
	if entry == nil || exit == nil {
		panic("region entry or exit block does not exist")
	}
	fn := entry.Function
	region := RegionBlocks(m, entry, exit)
	inputIDs := RegionInputIDs(m, region, exit)
	outputIDs := RegionOutputIDs(m, region, exit)
	f := ctx.Facts()

	inputs := mapFromPairs(t.InputIDToFreshID)
	for _, id := range inputIDs {
		if _, ok := inputs[id]; !ok {
			inputs[id] = ctx.GetFreshID()
		}
	}
	outputs := mapFromPairs(t.OutputIDToFreshID)
	outputTypes := make([]uint32, len(outputIDs))
	for k, id := range outputIDs {
		if _, ok := outputs[id]; !ok {
			outputs[id] = ctx.GetFreshID()
		}
		outputTypes[k] = fuzzerutil.GetTypeID(m, id)
	}
	inputTypes := make([]uint32, len(inputIDs))
	for k, id := range inputIDs {
		inputTypes[k] = fuzzerutil.GetTypeID(m, id)
	}

	// Prototype.
	returnType := fuzzerutil.MaybeGetVoidType(m)
	functionType := uint32(0)
	if len(outputIDs) == 0 {
		functionType = fuzzerutil.FindFunctionType(m, returnType, inputTypes)
	} else {
		returnType = t.NewFunctionStructReturnTypeID
		defineGlobal(m, ir.NewInstruction(spirv.OpTypeStruct, 0, returnType, ir.IDs(outputTypes...)...))
	}
	if functionType == 0 {
		functionType = t.NewFunctionTypeID
		fuzzerutil.AddFunctionType(m, functionType, returnType, inputTypes)
	}
	outlined := ir.NewFunction(ir.NewInstruction(spirv.OpFunction, returnType, t.NewFunctionID,
		spirv.LiteralOperand(uint32(spirv.FunctionControlNone)), spirv.IDOperand(functionType)))
	for k, id := range inputIDs {
		outlined.Params = append(outlined.Params, ir.NewInstruction(spirv.OpFunctionParameter, inputTypes[k], inputs[id]))
		fuzzerutil.UpdateModuleIDBound(m, inputs[id])
	}

	// Clone the region into the new function, entry first, remapping inputs
	// to parameters and outputs to their fresh ids.
	var clones []*ir.BasicBlock
	var exitClone *ir.BasicBlock
	for _, b := range append([]*ir.BasicBlock{entry}, fn.Blocks...) {
		if !region[b] || (b == entry && len(clones) > 0) {
			continue
		}
		insts := make([]*ir.Instruction, 0, len(b.Insts))
		for _, inst := range b.Insts {
			if staysInCaller(inst, b, exit) {
				continue
			}
			clone := inst.Clone()
			for _, id := range inputIDs {
				clone.ReplaceID(id, inputs[id])
			}
			for _, id := range outputIDs {
				clone.ReplaceID(id, outputs[id])
				if clone.ResultID == id {
					clone.ResultID = outputs[id]
				}
			}
			if clone.Opcode == spirv.OpPhi {
				clone.ReplaceID(entry.ID(), t.NewFunctionRegionEntryBlock)
			}
			insts = append(insts, clone)
		}
		label := b.ID()
		if b == entry {
			label = t.NewFunctionRegionEntryBlock
		}
		clone := ir.NewBasicBlock(label, insts...)
		clones = append(clones, clone)
		if b == exit {
			exitClone = clone
		}
	}

	if len(outputIDs) == 0 {
		exitClone.Insts = append(exitClone.Insts, ir.NewInstruction(spirv.OpReturn, 0, 0))
	} else {
		results := make([]uint32, len(outputIDs))
		for k, id := range outputIDs {
			results[k] = outputs[id]
			fuzzerutil.UpdateModuleIDBound(m, outputs[id])
		}
		exitClone.Insts = append(exitClone.Insts,
			ir.NewInstruction(spirv.OpCompositeConstruct, returnType, t.NewCalleeResultID, ir.IDs(results...)...),
			ir.NewInstruction(spirv.OpReturnValue, 0, 0, spirv.IDOperand(t.NewCalleeResultID)))
		fuzzerutil.UpdateModuleIDBound(m, t.NewCalleeResultID)
	}
	for _, clone := range clones {
		outlined.AddBlock(clone)
	}

	// Collapse the region in the caller into its entry block.
	var tail []*ir.Instruction
	for _, inst := range exit.Insts {
		if staysInCaller(inst, exit, exit) {
			tail = append(tail, inst)
		}
	}
	for b := range region {
		if b != entry {
			fn.RemoveBlock(b.ID())
		}
	}
	call := ir.NewInstruction(spirv.OpFunctionCall, returnType, t.NewCallerResultID,
		ir.IDs(append([]uint32{t.NewFunctionID}, inputIDs...)...)...)
	entry.Insts = []*ir.Instruction{call}
	for k, id := range outputIDs {
		entry.Insts = append(entry.Insts, ir.NewInstruction(spirv.OpCompositeExtract, outputTypes[k], id,
			spirv.IDOperand(t.NewCallerResultID), spirv.LiteralOperand(fuzzerutil.U32(k))))
	}
	entry.Insts = append(entry.Insts, tail...)
	if exit != entry {
		for _, s := range entry.Successors() {
			for _, phi := range fn.Block(s).Phis() {
				phi.ReplaceID(exit.ID(), entry.ID())
			}
		}
	}

	m.Functions = append(m.Functions, outlined)
	// Fresh ids the outlined function did not need are still reserved.
	for _, id := range t.FreshIDs() {
		fuzzerutil.UpdateModuleIDBound(m, id)
	}
	m.InvalidateAnalyses()

	if f.FunctionIsLivesafe(fn.ID()) {
		f.AddFactFunctionIsLivesafe(t.NewFunctionID)
	}
	if f.BlockIsDead(entry.ID()) {
		f.AddFactBlockIsDead(t.NewFunctionRegionEntryBlock)
	}
	for _, id := range inputIDs {
		if f.PointeeValueIsIrrelevant(id) {
			f.AddFactValueOfPointeeIsIrrelevant(inputs[id])
		}
		if f.IDIsIrrelevant(id) {
			f.AddFactIDIsIrrelevant(inputs[id])
		}
	}
	for _, id := range outputIDs {
		if f.IDIsIrrelevant(id) {
			f.AddFactIDIsIrrelevant(outputs[id])
		}
	}
}

func (t *OutlineFunction) FreshIDs() []uint32 {
	ids := []uint32{
		t.NewFunctionStructReturnTypeID, t.NewFunctionTypeID, t.NewFunctionID,
		t.NewFunctionRegionEntryBlock, t.NewCallerResultID, t.NewCalleeResultID,
	}
	for _, p := range t.InputIDToFreshID {
		ids = append(ids, p.Second)
	}
	for _, p := range t.OutputIDToFreshID {
		ids = append(ids, p.Second)
	}
	return ids
}

func (t *OutlineFunction) ToMessage() Message {
	return newMessage(KindOutlineFunction, t)
}

package fuzz

import (
	"slices"

	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// ReturnMergingInfo supplies the ids needed at the merge block of a loop that
// contains a return: the is-returning phi, the maybe-return-value phi (for
// non-void functions) and, for each existing phi of the merge block, the id
// to use on the new returning edges.
type ReturnMergingInfo struct {
	MergeBlockID      uint32       `msgpack:"merge_block_id"`
	IsReturningID     uint32       `msgpack:"is_returning_id"`
	MaybeReturnValID  uint32       `msgpack:"maybe_return_val_id"`
	OpPhiToSuitableID []UInt32Pair `msgpack:"opphi_to_suitable_id"`
}

// MergeFunctionReturns gives a function a single return block. The body is
// wrapped in a loop that runs once, every return becomes a branch to the
// merge of its innermost loop (or to the new return block), and every loop
// merge on a return path gains phis carrying whether the function is
// returning and the value being returned, and a conditional break to the
// next enclosing merge.
//
// Merge blocks absent from ReturnMergingInfo take overflow ids.
type MergeFunctionReturns struct {
	FunctionID            uint32              `msgpack:"function_id"`
	OuterHeaderID         uint32              `msgpack:"outer_header_id"`
	UnreachableContinueID uint32              `msgpack:"unreachable_continue_id"`
	OuterReturnID         uint32              `msgpack:"outer_return_id"`
	ReturnValID           uint32              `msgpack:"return_val_id"`
	AnyReturnableValID    uint32              `msgpack:"any_returnable_val_id"`
	ReturnMergingInfo     []ReturnMergingInfo `msgpack:"return_merging_info"`
}

// NewMergeFunctionReturns creates a MergeFunctionReturns transformation.
func NewMergeFunctionReturns(functionID, outerHeaderID, unreachableContinueID, outerReturnID,
	returnValID, anyReturnableValID uint32, info []ReturnMergingInfo) *MergeFunctionReturns {
	return &MergeFunctionReturns{
		FunctionID:            functionID,
		OuterHeaderID:         outerHeaderID,
		UnreachableContinueID: unreachableContinueID,
		OuterReturnID:         outerReturnID,
		ReturnValID:           returnValID,
		AnyReturnableValID:    anyReturnableValID,
		ReturnMergingInfo:     info,
	}
}

// returnPaths maps each loop merge block lying on the path from a reachable
// return to the function exit onto the blocks that will branch to it while
// the function is returning.
type returnPaths struct {
	returns    []*ir.BasicBlock
	merges     []uint32
	returnPred map[uint32][]uint32
}

func (t *MergeFunctionReturns) returnPaths(m *ir.Module, fn *ir.Function) *returnPaths {
	rp := &returnPaths{
		returns:    fuzzerutil.ReachableReturnBlocks(m, fn),
		returnPred: make(map[uint32][]uint32),
	}
	for _, b := range rp.returns {
		block := b.ID()
		for merge := fuzzerutil.LoopMergeBlock(m, block); merge != 0; merge = fuzzerutil.LoopMergeBlock(m, merge) {
			_, seen := rp.returnPred[merge]
			rp.returnPred[merge] = append(rp.returnPred[merge], block)
			if seen {
				break
			}
			block = merge
		}
	}
	for merge, preds := range rp.returnPred {
		slices.Sort(preds)
		rp.merges = append(rp.merges, merge)
	}
	sortIDs(rp.merges)
	return rp
}

// target returns the block a returning path leaves block for.
func (t *MergeFunctionReturns) target(m *ir.Module, block uint32) uint32 {
	if merge := fuzzerutil.LoopMergeBlock(m, block); merge != 0 {
		return merge
	}
	return t.OuterReturnID
}

func (t *MergeFunctionReturns) infoMap() map[uint32]ReturnMergingInfo {
	infos := make(map[uint32]ReturnMergingInfo, len(t.ReturnMergingInfo))
	for _, info := range t.ReturnMergingInfo {
		infos[info.MergeBlockID] = info
	}
	return infos
}

// availableAfterEntry maps each non-pointer type to the first id of that type
// usable at the end of the entry block of fn: module constants, then the
// parameters, then results computed in the entry block.
func availableAfterEntry(m *ir.Module, fn *ir.Function) map[uint32]uint32 {
	available := make(map[uint32]uint32)
	add := func(inst *ir.Instruction) {
		if inst.TypeID == 0 || inst.ResultID == 0 || fuzzerutil.IsPointerType(m, inst.TypeID) {
			return
		}
		if _, ok := available[inst.TypeID]; !ok {
			available[inst.TypeID] = inst.ResultID
		}
	}
	for _, inst := range m.TypesValues {
		if inst.Opcode != spirv.OpVariable {
			add(inst)
		}
	}
	for _, p := range fn.Params {
		add(p)
	}
	for _, inst := range fn.Entry().Insts {
		add(inst)
	}
	return available
}

func (t *MergeFunctionReturns) isVoid(m *ir.Module, fn *ir.Function) bool {
	ret := m.DefUse().GetDef(fn.ReturnType())
	return ret != nil && ret.Opcode == spirv.OpTypeVoid
}

//nolint:gocognit,gocyclo,cyclop // one check per precondition
func (t *MergeFunctionReturns) IsApplicable(m *ir.Module, ctx *TransformationContext) bool {
	fn := m.Function(t.FunctionID)
	if fn == nil || fn.Entry() == nil {
		return false
	}
	entry := fn.Entry()
	if entry.Terminator().Opcode != spirv.OpBranch {
		return false
	}
	f := ctx.Facts()
	if fuzzerutil.MaybeGetBoolConstant(m, f, true, false) == 0 || fuzzerutil.MaybeGetBoolConstant(m, f, false, false) == 0 {
		return false
	}
	void := t.isVoid(m, fn)

	fresh := []uint32{t.OuterHeaderID, t.UnreachableContinueID, t.OuterReturnID}
	if !void {
		fresh = append(fresh, t.ReturnValID)
	}

	rp := t.returnPaths(m, fn)
	if len(rp.returns) == 0 {
		return false
	}
	for _, b := range rp.returns {
		if fuzzerutil.BlockIsInLoopContinueConstruct(m, b.ID()) {
			return false
		}
	}

	available := availableAfterEntry(m, fn)
	infos := t.infoMap()
	for _, merge := range rp.merges {
		block := fuzzerutil.MaybeFindBlock(m, merge)
		for _, inst := range block.Insts {
			if inst.Opcode != spirv.OpPhi && inst.Opcode != spirv.OpBranch {
				return false
			}
		}
		info, ok := infos[merge]
		if !ok {
			if !ctx.HasOverflowIDs() {
				return false
			}
		} else {
			fresh = append(fresh, info.IsReturningID)
			if !void {
				fresh = append(fresh, info.MaybeReturnValID)
			}
		}
		suitable := mapFromPairs(info.OpPhiToSuitableID)
		for _, phi := range block.Phis() {
			id, given := suitable[phi.ResultID]
			if !given {
				if _, ok := available[phi.TypeID]; !ok {
					return false
				}
				continue
			}
			if fuzzerutil.GetTypeID(m, id) != phi.TypeID || !fuzzerutil.IDIsAvailableAtEndOfBlock(m, entry, id) {
				return false
			}
		}
	}
	if !freshIDsOK(m, fresh...) {
		return false
	}

	if !void && len(rp.merges) > 0 {
		if t.AnyReturnableValID == 0 {
			if _, ok := available[fn.ReturnType()]; !ok {
				return false
			}
		} else if fuzzerutil.GetTypeID(m, t.AnyReturnableValID) != fn.ReturnType() ||
			!fuzzerutil.IDIsAvailableAtEndOfBlock(m, entry, t.AnyReturnableValID) {
			return false
		}
	}

	return t.definitionsStillDominateUses(m, fn, rp)
}

// definitionsStillDominateUses recomputes dominance over the control flow
// graph the transformation would produce and checks every existing use.
func (t *MergeFunctionReturns) definitionsStillDominateUses(m *ir.Module, fn *ir.Function, rp *returnPaths) bool {
	succ := make(map[uint32][]uint32, len(fn.Blocks)+2)
	for _, b := range fn.Blocks {
		succ[b.ID()] = b.Successors()
	}
	for _, b := range rp.returns {
		succ[b.ID()] = []uint32{t.target(m, b.ID())}
	}
	for _, merge := range rp.merges {
		succ[merge] = append(slices.Clone(succ[merge]), t.target(m, merge))
	}
	entry := fn.Entry().ID()
	succ[t.OuterHeaderID] = succ[entry]
	succ[entry] = []uint32{t.OuterHeaderID}
	dom := ir.BuildDominatorTree(entry, func(id uint32) []uint32 { return succ[id] })

	du := m.DefUse()
	definedIn := func(id uint32) *ir.BasicBlock {
		def := du.GetDef(id)
		if def == nil || def.Opcode == spirv.OpLabel {
			return nil
		}
		b := du.Block(def)
		if b == nil || b.Function != fn {
			return nil
		}
		return b
	}
	for _, b := range fn.Blocks {
		if !dom.Reachable(b.ID()) {
			continue
		}
		for _, inst := range b.Insts {
			if inst.Opcode == spirv.OpPhi {
				for _, p := range inst.PhiPairs() {
					if d := definedIn(p[0]); d != nil && dom.Reachable(p[1]) && !dom.Dominates(d.ID(), p[1]) {
						return false
					}
				}
				continue
			}
			for _, id := range inst.InIDs() {
				if d := definedIn(id); d != nil && d != b && !dom.Dominates(d.ID(), b.ID()) {
					return false
				}
			}
		}
	}
	return true
}

//nolint:gocognit,gocyclo,cyclop,funlen // rewrites every return path in one pass
func (t *MergeFunctionReturns) Apply(m *ir.Module, ctx *TransformationContext) {
	fn := m.Function(t.FunctionID)
	if fn == nil {
		panic("function to merge returns of does not exist")
	}
	f := ctx.Facts()
	constTrue := fuzzerutil.MaybeGetBoolConstant(m, f, true, false)
	constFalse := fuzzerutil.MaybeGetBoolConstant(m, f, false, false)
	boolType := fuzzerutil.MaybeGetBoolType(m)
	void := t.isVoid(m, fn)
	entry := fn.Entry()

	// Gather everything from the current analyses before mutating.
	rp := t.returnPaths(m, fn)
	available := availableAfterEntry(m, fn)
	anyReturnable := t.AnyReturnableValID
	if anyReturnable == 0 {
		anyReturnable = available[fn.ReturnType()]
	}
	infos := t.infoMap()
	isReturning := make(map[uint32]uint32, len(rp.merges))
	maybeReturnVal := make(map[uint32]uint32, len(rp.merges))
	for _, merge := range rp.merges {
		info, ok := infos[merge]
		if ok {
			isReturning[merge] = info.IsReturningID
			maybeReturnVal[merge] = info.MaybeReturnValID
		} else {
			isReturning[merge] = ctx.GetFreshID()
			if !void {
				maybeReturnVal[merge] = ctx.GetFreshID()
			}
		}
	}
	returnValue := make(map[uint32]uint32, len(rp.returns))
	for _, b := range rp.returns {
		if term := b.Terminator(); term.Opcode == spirv.OpReturnValue {
			returnValue[b.ID()] = term.IDOperand(0)
		}
	}
	targets := make(map[uint32]uint32)
	for _, b := range rp.returns {
		targets[b.ID()] = t.target(m, b.ID())
	}
	for _, merge := range rp.merges {
		targets[merge] = t.target(m, merge)
	}
	originalPreds := make(map[uint32][]uint32, len(rp.merges))
	for _, merge := range rp.merges {
		originalPreds[merge] = slices.Clone(m.Predecessors(merge))
	}

	// flag and value give the is-returning and return value carried along the
	// edge from pred.
	flag := func(pred uint32) uint32 {
		if id, ok := isReturning[pred]; ok {
			return id
		}
		if _, ok := returnValue[pred]; ok || targets[pred] != 0 {
			return constTrue
		}
		return constFalse
	}
	value := func(pred uint32) uint32 {
		if id, ok := maybeReturnVal[pred]; ok {
			return id
		}
		if id, ok := returnValue[pred]; ok {
			return id
		}
		return anyReturnable
	}

	for _, merge := range rp.merges {
		block := fn.Block(merge)
		preds := originalPreds[merge]
		var added []uint32
		for _, p := range rp.returnPred[merge] {
			if !slices.Contains(preds, p) {
				added = append(added, p)
			}
		}

		suitable := mapFromPairs(infos[merge].OpPhiToSuitableID)
		for _, phi := range block.Phis() {
			id, ok := suitable[phi.ResultID]
			if !ok {
				id = available[phi.TypeID]
			}
			for _, p := range added {
				phi.AddOperand(spirv.IDOperand(id))
				phi.AddOperand(spirv.IDOperand(p))
			}
		}

		all := append(slices.Clone(preds), added...)
		flagPhi := ir.NewInstruction(spirv.OpPhi, boolType, isReturning[merge])
		for _, p := range all {
			flagPhi.Operands = append(flagPhi.Operands, ir.IDs(flag(p), p)...)
		}
		newPhis := []*ir.Instruction{flagPhi}
		fuzzerutil.UpdateModuleIDBound(m, isReturning[merge])
		if !void {
			valuePhi := ir.NewInstruction(spirv.OpPhi, fn.ReturnType(), maybeReturnVal[merge])
			for _, p := range all {
				valuePhi.Operands = append(valuePhi.Operands, ir.IDs(value(p), p)...)
			}
			newPhis = append(newPhis, valuePhi)
			fuzzerutil.UpdateModuleIDBound(m, maybeReturnVal[merge])
		}
		block.InsertBefore(0, newPhis...)

		term := block.Terminator()
		next := term.IDOperand(0)
		term.Opcode = spirv.OpBranchConditional
		term.Operands = ir.IDs(isReturning[merge], targets[merge], next)
	}

	var outerPreds []uint32
	for _, b := range rp.returns {
		term := b.Terminator()
		term.Opcode = spirv.OpBranch
		term.Operands = ir.IDs(targets[b.ID()])
		if targets[b.ID()] == t.OuterReturnID {
			outerPreds = append(outerPreds, b.ID())
		}
	}
	for _, merge := range rp.merges {
		if targets[merge] == t.OuterReturnID {
			outerPreds = append(outerPreds, merge)
		}
	}

	// The entry block now branches to a loop header that runs the original
	// body once.
	branch := entry.Terminator()
	body := branch.IDOperand(0)
	branch.SetOperand(0, spirv.IDOperand(t.OuterHeaderID))
	for _, phi := range fn.Block(body).Phis() {
		phi.ReplaceID(entry.ID(), t.OuterHeaderID)
	}
	header := ir.NewBasicBlock(t.OuterHeaderID,
		ir.NewInstruction(spirv.OpLoopMerge, 0, 0,
			spirv.IDOperand(t.OuterReturnID), spirv.IDOperand(t.UnreachableContinueID),
			spirv.LiteralOperand(uint32(spirv.LoopControlNone))),
		ir.NewInstruction(spirv.OpBranch, 0, 0, spirv.IDOperand(body)))
	fn.InsertBlockAfter(entry.ID(), header)

	continueBlock := ir.NewBasicBlock(t.UnreachableContinueID,
		ir.NewInstruction(spirv.OpBranch, 0, 0, spirv.IDOperand(t.OuterHeaderID)))
	fn.AddBlock(continueBlock)

	var returnBlock *ir.BasicBlock
	if void {
		returnBlock = ir.NewBasicBlock(t.OuterReturnID, ir.NewInstruction(spirv.OpReturn, 0, 0))
	} else {
		phi := ir.NewInstruction(spirv.OpPhi, fn.ReturnType(), t.ReturnValID)
		for _, p := range outerPreds {
			phi.Operands = append(phi.Operands, ir.IDs(value(p), p)...)
		}
		returnBlock = ir.NewBasicBlock(t.OuterReturnID, phi,
			ir.NewInstruction(spirv.OpReturnValue, 0, 0, spirv.IDOperand(t.ReturnValID)))
		fuzzerutil.UpdateModuleIDBound(m, t.ReturnValID)
	}
	fn.AddBlock(returnBlock)

	for _, id := range []uint32{t.OuterHeaderID, t.UnreachableContinueID, t.OuterReturnID} {
		fuzzerutil.UpdateModuleIDBound(m, id)
	}
	m.InvalidateAnalyses()
}

func (t *MergeFunctionReturns) FreshIDs() []uint32 {
	ids := []uint32{t.OuterHeaderID, t.UnreachableContinueID, t.OuterReturnID}
	if t.ReturnValID != 0 {
		ids = append(ids, t.ReturnValID)
	}
	for _, info := range t.ReturnMergingInfo {
		ids = append(ids, info.IsReturningID)
		if info.MaybeReturnValID != 0 {
			ids = append(ids, info.MaybeReturnValID)
		}
	}
	return ids
}

func (t *MergeFunctionReturns) ToMessage() Message {
	return newMessage(KindMergeFunctionReturns, t)
}

package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// WrapRegionInSelection turns the region between two blocks into a selection
// construct. The entry block gains an OpSelectionMerge naming the exit block
// and its unconditional branch becomes a conditional branch on a boolean
// constant whose two arms both lead to the original successor.
type WrapRegionInSelection struct {
	RegionEntryBlockID uint32 `msgpack:"region_entry_block_id"`
	RegionExitBlockID  uint32 `msgpack:"region_exit_block_id"`
	BranchCondition    bool   `msgpack:"branch_condition"`
}

// NewWrapRegionInSelection creates a WrapRegionInSelection transformation.
func NewWrapRegionInSelection(entry, exit uint32, condition bool) *WrapRegionInSelection {
	return &WrapRegionInSelection{
		RegionEntryBlockID: entry,
		RegionExitBlockID:  exit,
		BranchCondition:    condition,
	}
}

func (t *WrapRegionInSelection) IsApplicable(m *ir.Module, ctx *TransformationContext) bool {
	if fuzzerutil.MaybeGetBoolConstant(m, ctx.Facts(), t.BranchCondition, false) == 0 {
		return false
	}
	return IsApplicableToBlockRange(m, t.RegionEntryBlockID, t.RegionExitBlockID)
}

// IsApplicableToBlockRange reports whether the blocks header and merge can
// become the header and merge block of a new selection construct.
func IsApplicableToBlockRange(m *ir.Module, header, merge uint32) bool {
	headerBlock := fuzzerutil.MaybeFindBlock(m, header)
	mergeBlock := fuzzerutil.MaybeFindBlock(m, merge)
	if headerBlock == nil || mergeBlock == nil || headerBlock.Function != mergeBlock.Function {
		return false
	}
	fn := headerBlock.Function

	// A block heads at most one construct.
	if headerBlock.MergeInst() != nil {
		return false
	}
	if term := headerBlock.Terminator(); term == nil || term.Opcode != spirv.OpBranch {
		return false
	}
	if fuzzerutil.BlockIsInLoopContinueConstruct(m, header) {
		return false
	}
	if !m.Dominators(fn).StrictlyDominates(header, merge) ||
		!m.PostDominators(fn).StrictlyDominates(merge, header) {
		return false
	}
	// A block is the merge block of at most one construct.
	if fuzzerutil.IsMergeOrContinue(m, merge) {
		return false
	}
	return fuzzerutil.ContainingConstruct(m, header) == fuzzerutil.ContainingConstruct(m, merge)
}

func (t *WrapRegionInSelection) Apply(m *ir.Module, ctx *TransformationContext) {
	block := fuzzerutil.MaybeFindBlock(m, t.RegionEntryBlockID)
	cond := fuzzerutil.MaybeGetBoolConstant(m, ctx.Facts(), t.BranchCondition, false)
	if block == nil || cond == 0 {
		panic("region entry block or branch condition is missing")
	}
	term := block.Terminator()
	succ := term.IDOperand(0)

	term.Opcode = spirv.OpBranchConditional
	term.Operands = ir.IDs(cond, succ, succ)
	block.InsertBefore(len(block.Insts)-1, ir.NewInstruction(spirv.OpSelectionMerge, 0, 0,
		spirv.IDOperand(t.RegionExitBlockID), spirv.LiteralOperand(uint32(spirv.SelectionControlNone))))
	m.InvalidateAnalyses()
}

func (t *WrapRegionInSelection) FreshIDs() []uint32 { return nil }

func (t *WrapRegionInSelection) ToMessage() Message {
	return newMessage(KindWrapRegionInSelection, t)
}

package fuzzerutil

import (
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// IsMergeOrContinue reports whether the block id is the merge block or the
// continue target of some header in its function.
func IsMergeOrContinue(m *ir.Module, id uint32) bool {
	for _, use := range m.DefUse().Uses(id) {
		switch use.Inst.Opcode {
		case spirv.OpSelectionMerge:
			return true
		case spirv.OpLoopMerge:
			if use.Operand <= 1 {
				return true
			}
		}
	}
	return false
}

// IsMergeBlock reports whether the block id is the merge block of a header.
func IsMergeBlock(m *ir.Module, id uint32) bool {
	return MergeBlockHeader(m, id) != 0
}

// MergeBlockHeader returns the header whose merge block is id, or 0.
func MergeBlockHeader(m *ir.Module, id uint32) uint32 {
	du := m.DefUse()
	for _, use := range du.Uses(id) {
		if use.Inst.Opcode.IsMerge() && use.Operand == 0 {
			return du.Block(use.Inst).ID()
		}
	}
	return 0
}

// IsContinueTarget reports whether the block id is the continue target of a loop.
func IsContinueTarget(m *ir.Module, id uint32) bool {
	for _, use := range m.DefUse().Uses(id) {
		if use.Inst.Opcode == spirv.OpLoopMerge && use.Operand == 1 {
			return true
		}
	}
	return false
}

// BlockIsReachableInItsFunction reports whether block can be reached from the
// entry block of its function.
func BlockIsReachableInItsFunction(m *ir.Module, block *ir.BasicBlock) bool {
	return m.Dominators(block.Function).Reachable(block.ID())
}

// ContainingConstruct returns the header of the innermost structured construct
// containing the block id, not counting the construct the block itself
// heads, or 0 when the block is at function level.
func ContainingConstruct(m *ir.Module, id uint32) uint32 {
	block := MaybeFindBlock(m, id)
	if block == nil {
		return 0
	}
	dom := m.Dominators(block.Function)
	chain := dom.Chain(id)
	// Walk dominators from the closest one outward.
	for k := len(chain) - 2; k >= 0; k-- {
		header := block.Function.Block(chain[k])
		merge := header.MergeBlock()
		if merge == 0 {
			continue
		}
		if !dom.Dominates(merge, id) {
			return header.ID()
		}
	}
	return 0
}

// EnclosingLoopHeader returns the header of the innermost loop containing the
// block id, or 0.
func EnclosingLoopHeader(m *ir.Module, id uint32) uint32 {
	for h := ContainingConstruct(m, id); h != 0; h = ContainingConstruct(m, h) {
		if MaybeFindBlock(m, h).IsLoopHeader() {
			return h
		}
	}
	return 0
}

// BlockIsInLoopContinueConstruct reports whether the block id belongs to the
// continue construct of some loop: it is dominated by the loop's continue
// target and not by the loop's merge block.
func BlockIsInLoopContinueConstruct(m *ir.Module, id uint32) bool {
	block := MaybeFindBlock(m, id)
	if block == nil {
		return false
	}
	dom := m.Dominators(block.Function)
	for _, header := range block.Function.Blocks {
		if !header.IsLoopHeader() {
			continue
		}
		cont := header.ContinueBlock()
		if cont == id {
			return true
		}
		if dom.Dominates(cont, id) && !dom.Dominates(header.MergeBlock(), id) {
			return true
		}
	}
	return false
}

// BlockIsBackEdge reports whether the block id branches back to the loop
// header loopHeader from within its continue construct.
func BlockIsBackEdge(m *ir.Module, id, loopHeader uint32) bool {
	header := MaybeFindBlock(m, loopHeader)
	block := MaybeFindBlock(m, id)
	if header == nil || block == nil || !header.IsLoopHeader() {
		return false
	}
	branchesToHeader := false
	for _, s := range block.Successors() {
		if s == loopHeader {
			branchesToHeader = true
		}
	}
	if !branchesToHeader {
		return false
	}
	dom := m.Dominators(block.Function)
	return dom.Dominates(header.ContinueBlock(), id)
}

// LoopMergeBlock returns the merge block of the innermost loop containing
// the block id, or 0.
func LoopMergeBlock(m *ir.Module, id uint32) uint32 {
	header := EnclosingLoopHeader(m, id)
	if header == 0 {
		return 0
	}
	return MaybeFindBlock(m, header).MergeBlock()
}

// ReachableReturnBlocks returns the reachable blocks of fn ending in OpReturn
// or OpReturnValue, in layout order.
func ReachableReturnBlocks(m *ir.Module, fn *ir.Function) []*ir.BasicBlock {
	dom := m.Dominators(fn)
	var blocks []*ir.BasicBlock
	for _, b := range fn.Blocks {
		term := b.Terminator()
		if term == nil || !dom.Reachable(b.ID()) {
			continue
		}
		if term.Opcode == spirv.OpReturn || term.Opcode == spirv.OpReturnValue {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

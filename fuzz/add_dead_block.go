package fuzz

import (
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// AddDeadBlock turns a block ending in OpBranch into a selection header whose
// condition is a boolean constant, so that one arm is a new block that is
// never executed.
type AddDeadBlock struct {
	FreshID        uint32 `msgpack:"fresh_id"`
	ExistingBlock  uint32 `msgpack:"existing_block"`
	ConditionValue bool   `msgpack:"condition_value"`
}

// NewAddDeadBlock creates an AddDeadBlock transformation.
func NewAddDeadBlock(freshID, existingBlock uint32, conditionValue bool) *AddDeadBlock {
	return &AddDeadBlock{FreshID: freshID, ExistingBlock: existingBlock, ConditionValue: conditionValue}
}

func (t *AddDeadBlock) IsApplicable(m *ir.Module, ctx *TransformationContext) bool {
	if !fuzzerutil.IsFreshID(m, t.FreshID) {
		return false
	}
	if fuzzerutil.MaybeGetBoolConstant(m, ctx.Facts(), t.ConditionValue, false) == 0 {
		return false
	}
	block := fuzzerutil.MaybeFindBlock(m, t.ExistingBlock)
	if block == nil || block.IsLoopHeader() {
		return false
	}
	term := block.Terminator()
	if term.Opcode != spirv.OpBranch {
		return false
	}
	successor := term.IDOperand(0)
	if fuzzerutil.IsMergeOrContinue(m, successor) {
		return false
	}
	// A successor that heads a loop makes the existing block a back edge.
	if fuzzerutil.MaybeFindBlock(m, successor).IsLoopHeader() {
		return false
	}
	if !fuzzerutil.BlockIsReachableInItsFunction(m, block) {
		return false
	}
	if fuzzerutil.BlockIsInLoopContinueConstruct(m, t.ExistingBlock) {
		return false
	}
	// The successor becomes the merge block of the new selection, so every
	// path to it must pass through the header.
	return m.Dominators(block.Function).Dominates(t.ExistingBlock, successor)
}

func (t *AddDeadBlock) Apply(m *ir.Module, ctx *TransformationContext) {
	block := fuzzerutil.MaybeFindBlock(m, t.ExistingBlock)
	successorID := block.Terminator().IDOperand(0)
	successor := fuzzerutil.MaybeFindBlock(m, successorID)
	condition := fuzzerutil.MaybeGetBoolConstant(m, ctx.Facts(), t.ConditionValue, false)
	if condition == 0 {
		panic("boolean constant for the dead block condition is missing")
	}

	for _, phi := range successor.Phis() {
		value := phi.PhiValueFor(t.ExistingBlock)
		phi.AddOperand(spirv.IDOperand(value))
		phi.AddOperand(spirv.IDOperand(t.FreshID))
	}

	trueTarget, falseTarget := successorID, t.FreshID
	if !t.ConditionValue {
		trueTarget, falseTarget = t.FreshID, successorID
	}
	block.Insts = block.Insts[:len(block.Insts)-1]
	block.Insts = append(block.Insts,
		ir.NewInstruction(spirv.OpSelectionMerge, 0, 0,
			spirv.IDOperand(successorID), spirv.LiteralOperand(uint32(spirv.SelectionControlNone))),
		ir.NewInstruction(spirv.OpBranchConditional, 0, 0, ir.IDs(condition, trueTarget, falseTarget)...),
	)

	dead := ir.NewBasicBlock(t.FreshID, ir.NewInstruction(spirv.OpBranch, 0, 0, spirv.IDOperand(successorID)))
	block.Function.InsertBlockAfter(t.ExistingBlock, dead)
	fuzzerutil.UpdateModuleIDBound(m, t.FreshID)
	m.InvalidateAnalyses()
	ctx.Facts().AddFactBlockIsDead(t.FreshID)
}

func (t *AddDeadBlock) FreshIDs() []uint32 { return []uint32{t.FreshID} }

func (t *AddDeadBlock) ToMessage() Message { return newMessage(KindAddDeadBlock, t) }

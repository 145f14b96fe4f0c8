// Package available answers which instructions are in scope at a point of a
// module: the module-level values, the parameters of the enclosing function
// and the results computed by dominating instructions.
package available

import (
	"fmt"

	"github.com/gogpu/spvfuzz/ir"
)

// Predicate selects the instructions a query is interested in.
type Predicate func(m *ir.Module, inst *ir.Instruction) bool

// Instructions answers availability queries over a module for the
// instructions satisfying a predicate. It must be recreated after the module
// is mutated.
type Instructions struct {
	module     *ir.Module
	generation uint64
	predicate  Predicate
	globals    []*ir.Instruction
	params     map[*ir.Function][]*ir.Instruction
	blocks     map[*ir.BasicBlock][]*ir.Instruction
}

// New returns the availability index of m restricted to instructions
// satisfying predicate. A nil predicate accepts every instruction with a
// result type.
func New(m *ir.Module, predicate Predicate) *Instructions {
	if predicate == nil {
		predicate = func(*ir.Module, *ir.Instruction) bool { return true }
	}
	a := &Instructions{
		module:     m,
		generation: m.Generation(),
		predicate:  predicate,
		params:     make(map[*ir.Function][]*ir.Instruction),
		blocks:     make(map[*ir.BasicBlock][]*ir.Instruction),
	}
	for _, inst := range m.TypesValues {
		if a.accept(inst) {
			a.globals = append(a.globals, inst)
		}
	}
	for _, fn := range m.Functions {
		for _, p := range fn.Params {
			if a.accept(p) {
				a.params[fn] = append(a.params[fn], p)
			}
		}
		for _, b := range fn.Blocks {
			for _, inst := range b.Insts {
				if a.accept(inst) {
					a.blocks[b] = append(a.blocks[b], inst)
				}
			}
		}
	}
	return a
}

func (a *Instructions) accept(inst *ir.Instruction) bool {
	return inst.TypeID != 0 && inst.ResultID != 0 && a.predicate(a.module, inst)
}

// Globals returns the accepted module-level values in declaration order.
func (a *Instructions) Globals() []*ir.Instruction { return a.globals }

// Before returns the accepted instructions available immediately before
// position index of block: module-level values, then the parameters of the
// function, then the instructions of the dominating blocks from the entry
// block down, then the earlier instructions of block itself.
//
// Before panics if block is unreachable or the module changed since New.
func (a *Instructions) Before(block *ir.BasicBlock, index int) []*ir.Instruction {
	if a.module.Generation() != a.generation {
		panic("available instructions queried after the module changed")
	}
	dom := a.module.Dominators(block.Function)
	if !dom.Reachable(block.ID()) {
		panic(fmt.Sprintf("available instructions queried in unreachable block %%%d", block.ID()))
	}

	result := make([]*ir.Instruction, 0, len(a.globals))
	result = append(result, a.globals...)
	result = append(result, a.params[block.Function]...)
	chain := dom.Chain(block.ID())
	for _, id := range chain[:len(chain)-1] {
		result = append(result, a.blocks[block.Function.Block(id)]...)
	}
	for _, inst := range a.blocks[block] {
		if block.IndexOf(inst) >= index {
			break
		}
		result = append(result, inst)
	}
	return result
}

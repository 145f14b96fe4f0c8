package ir

import (
	"fmt"

	"github.com/gogpu/spvfuzz/spirv"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Optional context
	Function uint32
	Block    uint32
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Function != 0 {
		if e.Block != 0 {
			return fmt.Sprintf("in function %%%d, block %%%d: %s", e.Function, e.Block, e.Message)
		}
		return fmt.Sprintf("in function %%%d: %s", e.Function, e.Message)
	}
	return e.Message
}

// Validator checks the structural rules transformations rely on.
type Validator struct {
	module *Module
	du     *DefUse
	errors []ValidationError

	function *Function
	block    *BasicBlock
}

// Validate checks the module for structural correctness.
// Returns validation errors if any, or nil if the module is valid.
func Validate(module *Module) ([]ValidationError, error) {
	if module == nil {
		return nil, fmt.Errorf("module is nil")
	}

	v := &Validator{module: module}
	v.ValidateModule()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

// ValidateModule validates the complete module.
func (v *Validator) ValidateModule() {
	v.validateIDs()
	if len(v.errors) > 0 {
		// Later checks index ids and would report the same problem again.
		return
	}
	v.du = v.module.DefUse()

	v.validateReferences()
	v.validateTypesValues()
	v.validateFunctions()
	v.validateEntryPoints()
}

// validateIDs checks that result ids are unique, non-zero and below the bound.
func (v *Validator) validateIDs() {
	seen := make(map[uint32]bool)
	v.module.ForEachInst(func(inst *Instruction) {
		if !inst.Opcode.HasResult() {
			return
		}
		switch {
		case inst.ResultID == 0:
			v.addError(fmt.Sprintf("%s has result id 0", inst.Opcode))
		case inst.ResultID >= v.module.IDBound():
			v.addError(fmt.Sprintf("id %%%d is not below the id bound %d", inst.ResultID, v.module.IDBound()))
		case seen[inst.ResultID]:
			v.addError(fmt.Sprintf("id %%%d is defined more than once", inst.ResultID))
		}
		seen[inst.ResultID] = true
	})
}

// validateReferences checks that every referenced id is defined and every
// result type is a type.
func (v *Validator) validateReferences() {
	v.module.ForEachInst(func(inst *Instruction) {
		if inst.TypeID != 0 {
			def := v.du.GetDef(inst.TypeID)
			if def == nil || !def.Opcode.IsType() {
				v.addError(fmt.Sprintf("%s %%%d: result type %%%d is not a type", inst.Opcode, inst.ResultID, inst.TypeID))
			}
		}
		for _, ref := range inst.InIDs() {
			if v.du.GetDef(ref) == nil {
				v.addError(fmt.Sprintf("%s %%%d: id %%%d is not defined", inst.Opcode, inst.ResultID, ref))
			}
		}
	})
}

// validateTypesValues checks module-scope declarations.
func (v *Validator) validateTypesValues() {
	defined := make(map[uint32]bool)
	for _, inst := range v.module.TypesValues {
		switch {
		case inst.Opcode == spirv.OpVariable:
			if spirv.StorageClass(inst.Word(0)) == spirv.StorageClassFunction {
				v.addError(fmt.Sprintf("global variable %%%d has Function storage class", inst.ResultID))
			}
		case inst.Opcode == spirv.OpTypeFunction, inst.Opcode == spirv.OpTypeStruct,
			inst.Opcode == spirv.OpConstantComposite:
			for _, ref := range inst.InIDs() {
				if !defined[ref] {
					v.addError(fmt.Sprintf("%s %%%d: %%%d is used before its declaration", inst.Opcode, inst.ResultID, ref))
				}
			}
		}
		if inst.ResultID != 0 {
			defined[inst.ResultID] = true
		}
	}
}

// validateFunctions checks all function definitions.
func (v *Validator) validateFunctions() {
	for _, fn := range v.module.Functions {
		v.function = fn
		v.validateFunction(fn)
		v.function = nil
	}
}

// validateFunction validates a single function.
func (v *Validator) validateFunction(fn *Function) {
	fnType := v.du.GetDef(fn.TypeID())
	switch {
	case fnType == nil || fnType.Opcode != spirv.OpTypeFunction:
		v.addErrorInFunction("function type is not an OpTypeFunction")
	case fnType.IDOperand(0) != fn.ReturnType():
		v.addErrorInFunction("return type does not match the function type")
	case fnType.NumOperands()-1 != len(fn.Params):
		v.addErrorInFunction(fmt.Sprintf("function type has %d parameters, function has %d", fnType.NumOperands()-1, len(fn.Params)))
	default:
		for k, p := range fn.Params {
			if p.TypeID != fnType.IDOperand(k+1) {
				v.addErrorInFunction(fmt.Sprintf("parameter %%%d does not match the function type", p.ResultID))
			}
		}
	}

	if len(fn.Blocks) == 0 {
		// Declaration of an imported function.
		return
	}

	mergeTargets := make(map[uint32]uint32)
	for _, b := range fn.Blocks {
		v.block = b
		v.validateBlock(fn, b)
		if merge := b.MergeInst(); merge != nil {
			target := merge.IDOperand(0)
			if other, ok := mergeTargets[target]; ok {
				v.addErrorInBlock(fmt.Sprintf("block %%%d is the merge block of both %%%d and %%%d", target, other, b.ID()))
			}
			mergeTargets[target] = b.ID()
		}
		v.block = nil
	}
	v.validateDominance(fn)
}

// validateBlock checks the instruction layout of a block.
//
//nolint:gocognit,gocyclo,cyclop // one case per layout rule
func (v *Validator) validateBlock(fn *Function, b *BasicBlock) {
	term := b.Terminator()
	if term == nil || !term.Opcode.IsTerminator() {
		v.addErrorInBlock("block does not end with a terminator")
		return
	}

	leadingPhis := true
	leadingVars := b == fn.Entry()
	for k, inst := range b.Insts {
		if inst.Opcode != spirv.OpPhi {
			leadingPhis = false
		}
		if inst.Opcode != spirv.OpVariable {
			leadingVars = false
		}
		switch {
		case inst.Opcode == spirv.OpPhi && !leadingPhis:
			v.addErrorInBlock(fmt.Sprintf("OpPhi %%%d is not at the start of the block", inst.ResultID))
		case inst.Opcode == spirv.OpVariable && !leadingVars:
			v.addErrorInBlock(fmt.Sprintf("OpVariable %%%d is not at the start of the entry block", inst.ResultID))
		case inst.Opcode.IsTerminator() && k != len(b.Insts)-1:
			v.addErrorInBlock(fmt.Sprintf("%s in the middle of the block", inst.Opcode))
		case inst.Opcode.IsMerge() && k != len(b.Insts)-2:
			v.addErrorInBlock(fmt.Sprintf("%s is not immediately before the terminator", inst.Opcode))
		case inst.Opcode == spirv.OpVariable && spirv.StorageClass(inst.Word(0)) != spirv.StorageClassFunction:
			v.addErrorInBlock(fmt.Sprintf("local variable %%%d does not have Function storage class", inst.ResultID))
		}
	}

	switch term.Opcode {
	case spirv.OpReturn:
		if ret := v.du.GetDef(fn.ReturnType()); ret != nil && ret.Opcode != spirv.OpTypeVoid {
			v.addErrorInBlock("OpReturn in a function with a non-void return type")
		}
	case spirv.OpReturnValue:
		if ret := v.du.GetDef(fn.ReturnType()); ret != nil && ret.Opcode == spirv.OpTypeVoid {
			v.addErrorInBlock("OpReturnValue in a function returning void")
		}
		if value := v.du.GetDef(term.IDOperand(0)); value != nil && value.TypeID != fn.ReturnType() {
			v.addErrorInBlock("returned value does not have the return type")
		}
	case spirv.OpBranchConditional:
		if t := v.du.Type(term.IDOperand(0)); t == nil || t.Opcode != spirv.OpTypeBool {
			v.addErrorInBlock("branch condition is not a boolean")
		}
	}

	for _, s := range b.Successors() {
		if fn.Block(s) == nil {
			v.addErrorInBlock(fmt.Sprintf("branch target %%%d is not a block of the function", s))
		}
	}
	if merge := b.MergeInst(); merge != nil {
		for _, target := range merge.InIDs() {
			if fn.Block(target) == nil {
				v.addErrorInBlock(fmt.Sprintf("merge target %%%d is not a block of the function", target))
			}
		}
	}

	preds := v.module.Predecessors(b.ID())
	for _, phi := range b.Phis() {
		pairs := phi.PhiPairs()
		if len(pairs) != len(preds) {
			v.addErrorInBlock(fmt.Sprintf("OpPhi %%%d has %d incoming values for %d predecessors", phi.ResultID, len(pairs), len(preds)))
			continue
		}
		seen := make(map[uint32]bool)
		for _, p := range pairs {
			if seen[p[1]] || !containsID(preds, p[1]) {
				v.addErrorInBlock(fmt.Sprintf("OpPhi %%%d names %%%d which is not a distinct predecessor", phi.ResultID, p[1]))
			}
			seen[p[1]] = true
			if def := v.du.GetDef(p[0]); def != nil && def.TypeID != phi.TypeID {
				v.addErrorInBlock(fmt.Sprintf("OpPhi %%%d: incoming value %%%d has the wrong type", phi.ResultID, p[0]))
			}
		}
	}
}

// validateDominance checks that every definition inside the function
// dominates its uses in reachable blocks.
func (v *Validator) validateDominance(fn *Function) {
	dom := v.module.Dominators(fn)
	position := make(map[*Instruction]int)
	for _, b := range fn.Blocks {
		for k, inst := range b.Insts {
			position[inst] = k
		}
	}
	for _, b := range fn.Blocks {
		if !dom.Reachable(b.ID()) {
			continue
		}
		v.block = b
		for k, inst := range b.Insts {
			if inst.Opcode == spirv.OpPhi {
				for _, p := range inst.PhiPairs() {
					defBlock := v.du.Block(v.du.GetDef(p[0]))
					if defBlock != nil && defBlock.Function == fn && dom.Reachable(p[1]) && !dom.Dominates(defBlock.ID(), p[1]) {
						v.addErrorInBlock(fmt.Sprintf("OpPhi %%%d: %%%d does not dominate predecessor %%%d", inst.ResultID, p[0], p[1]))
					}
				}
				continue
			}
			for _, ref := range inst.InIDs() {
				def := v.du.GetDef(ref)
				if def == nil || def.Opcode == spirv.OpLabel {
					continue
				}
				defBlock := v.du.Block(def)
				if defBlock == nil {
					continue
				}
				if defBlock.Function != fn {
					v.addErrorInBlock(fmt.Sprintf("%%%d is defined in another function", ref))
					continue
				}
				if defBlock == b {
					if position[def] >= k {
						v.addErrorInBlock(fmt.Sprintf("%%%d is used before it is defined", ref))
					}
					continue
				}
				if !dom.Dominates(defBlock.ID(), b.ID()) {
					v.addErrorInBlock(fmt.Sprintf("definition of %%%d does not dominate its use in %s", ref, inst.Opcode))
				}
			}
		}
		v.block = nil
	}
}

// validateEntryPoints checks entry points name void functions without parameters.
func (v *Validator) validateEntryPoints() {
	for _, ep := range v.module.EntryPoints {
		fn := v.module.Function(ep.IDOperand(1))
		if fn == nil {
			v.addError(fmt.Sprintf("entry point %q does not name a function", ep.Operands[2].Text()))
			continue
		}
		if len(fn.Params) != 0 {
			v.addError(fmt.Sprintf("entry point %q has parameters", ep.Operands[2].Text()))
		}
		if ret := v.du.GetDef(fn.ReturnType()); ret == nil || ret.Opcode != spirv.OpTypeVoid {
			v.addError(fmt.Sprintf("entry point %q does not return void", ep.Operands[2].Text()))
		}
	}
}

func containsID(ids []uint32, id uint32) bool {
	for _, other := range ids {
		if other == id {
			return true
		}
	}
	return false
}

// addError adds a module-level validation error.
func (v *Validator) addError(msg string) {
	v.errors = append(v.errors, ValidationError{Message: msg})
}

// addErrorInFunction adds a validation error with function context.
func (v *Validator) addErrorInFunction(msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:  msg,
		Function: v.function.ID(),
	})
}

// addErrorInBlock adds a validation error with block context.
func (v *Validator) addErrorInBlock(msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:  msg,
		Function: v.function.ID(),
		Block:    v.block.ID(),
	})
}

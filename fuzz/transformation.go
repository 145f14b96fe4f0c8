// Package fuzz implements semantics-preserving transformations of SPIR-V
// modules together with the context they run in and the machinery to record
// and replay them.
//
// A transformation is applied in two steps. IsApplicable checks every
// precondition against the current module and context without changing
// either. Apply then performs the rewrite; it assumes IsApplicable has just
// returned true for the same state and panics when an invariant does not hold.
//
//	ctx := fuzz.NewTransformationContext(facts.NewManager(), nil)
//	t := fuzz.NewAddDeadBlock(freshID, blockID, true)
//	if t.IsApplicable(m, ctx) {
//		t.Apply(m, ctx)
//	}
package fuzz

import (
	"slices"

	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// Transformation is a reversible-intent rewrite of a module.
type Transformation interface {
	// IsApplicable reports whether the transformation can be applied to m.
	// It must not modify m or ctx.
	IsApplicable(m *ir.Module, ctx *TransformationContext) bool
	// Apply performs the transformation and invalidates the analyses of m.
	Apply(m *ir.Module, ctx *TransformationContext)
	// FreshIDs returns every id the transformation will define.
	FreshIDs() []uint32
	// ToMessage returns the serialized form of the transformation.
	ToMessage() Message
}

// ApplyIfApplicable applies t when it is applicable and reports whether it did.
func ApplyIfApplicable(t Transformation, m *ir.Module, ctx *TransformationContext) bool {
	if !t.IsApplicable(m, ctx) {
		return false
	}
	t.Apply(m, ctx)
	return true
}

// freshIDsOK reports whether every id is fresh in m and distinct from the others.
func freshIDsOK(m *ir.Module, ids ...uint32) bool {
	return fuzzerutil.AllFreshAndDistinct(m, ids...)
}

// idsAreDistinct reports whether no id appears twice.
func idsAreDistinct(ids ...uint32) bool {
	seen := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}

// mustFind resolves an instruction descriptor inside Apply.
func mustFind(m *ir.Module, d InstructionDescriptor) (*ir.BasicBlock, int) {
	b, idx := FindInstruction(m, d)
	if b == nil {
		panic("instruction descriptor does not resolve")
	}
	return b, idx
}

func sortIDs(ids []uint32) {
	slices.Sort(ids)
}

// defineGlobal appends a types/values declaration and raises the id bound.
func defineGlobal(m *ir.Module, inst *ir.Instruction) {
	m.AddGlobal(inst)
	fuzzerutil.UpdateModuleIDBound(m, inst.ResultID)
	m.InvalidateAnalyses()
}

// hasCapability reports whether m declares capability.
func hasCapability(m *ir.Module, capability spirv.Capability) bool {
	for _, inst := range m.Capabilities {
		if spirv.Capability(inst.Word(0)) == capability {
			return true
		}
	}
	return false
}

// isConstant reports whether id is a module-scope constant.
func isConstant(m *ir.Module, id uint32) bool {
	def := m.DefUse().GetDef(id)
	return def != nil && def.Opcode.IsConstant()
}

// addVariableToEntryPointInterfaces lists a new global variable in every
// entry point interface. From SPIR-V 1.4 on, interfaces name every global the
// entry point may reference.
func addVariableToEntryPointInterfaces(m *ir.Module, id uint32) {
	if m.Version.Major == 1 && m.Version.Minor < 4 {
		return
	}
	for _, ep := range m.EntryPoints {
		ep.AddOperand(spirv.IDOperand(id))
	}
}

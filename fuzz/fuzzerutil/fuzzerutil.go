// Package fuzzerutil contains queries over an ir.Module shared by the
// transformations: id freshness, lookup of existing types and constants,
// insertion-point legality and structured control flow membership.
//
// The Maybe* lookups never create anything; they return 0 when no matching
// entity exists.
package fuzzerutil

import (
	"fmt"

	"fortio.org/safecast"

	"github.com/gogpu/spvfuzz/ir"
	"github.com/gogpu/spvfuzz/spirv"
)

// U32 converts a non-negative length or index to uint32.
func U32(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("uint32 overflow: %w", err))
	}
	return v
}

// IsFreshID reports whether id is non-zero and not defined anywhere in m.
func IsFreshID(m *ir.Module, id uint32) bool {
	return id != 0 && m.DefUse().GetDef(id) == nil
}

// AllFreshAndDistinct reports whether every id is fresh and no id appears
// twice.
func AllFreshAndDistinct(m *ir.Module, ids ...uint32) bool {
	seen := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		if seen[id] || !IsFreshID(m, id) {
			return false
		}
		seen[id] = true
	}
	return true
}

// UpdateModuleIDBound raises the id bound of m so that id is below it.
func UpdateModuleIDBound(m *ir.Module, id uint32) {
	if id >= m.IDBound() {
		m.SetIDBound(id + 1)
	}
}

// MaybeFindBlock returns the block labelled id, or nil.
func MaybeFindBlock(m *ir.Module, id uint32) *ir.BasicBlock {
	return m.DefUse().BlockByID(id)
}

// GetTypeID returns the result type of the value id, or 0.
func GetTypeID(m *ir.Module, id uint32) uint32 {
	if def := m.DefUse().GetDef(id); def != nil {
		return def.TypeID
	}
	return 0
}

// InstructionIsFunctionParameter reports whether inst is a parameter of fn.
func InstructionIsFunctionParameter(inst *ir.Instruction, fn *ir.Function) bool {
	for _, p := range fn.Params {
		if p == inst {
			return true
		}
	}
	return false
}

// FunctionIsEntryPoint reports whether the function id is named by an
// OpEntryPoint.
func FunctionIsEntryPoint(m *ir.Module, id uint32) bool {
	for _, ep := range m.EntryPoints {
		if ep.IDOperand(1) == id {
			return true
		}
	}
	return false
}

// FunctionContainingBlock returns the function that owns the block labelled
// id, or nil.
func FunctionContainingBlock(m *ir.Module, id uint32) *ir.Function {
	if b := MaybeFindBlock(m, id); b != nil {
		return b.Function
	}
	return nil
}

// CallSites returns every OpFunctionCall of the function id.
func CallSites(m *ir.Module, id uint32) []*ir.Instruction {
	var calls []*ir.Instruction
	for _, use := range m.DefUse().Uses(id) {
		if use.Inst.Opcode == spirv.OpFunctionCall && use.Operand == 0 {
			calls = append(calls, use.Inst)
		}
	}
	return calls
}

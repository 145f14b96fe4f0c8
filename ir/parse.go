package ir

import (
	"fmt"

	"github.com/gogpu/spvfuzz/spirv"
)

// Parse decodes a SPIR-V binary into a Module.
func Parse(data []byte) (*Module, error) {
	header, raw, err := spirv.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	m := &Module{
		Version:   header.Version,
		Generator: header.Generator,
		Schema:    header.Schema,
		idBound:   header.Bound,
	}

	var fn *Function
	var block *BasicBlock
	for k, r := range raw {
		typeID, resultID, operands, err := spirv.SplitOperands(r.Opcode, r.Words)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", k, err)
		}
		inst := NewInstruction(r.Opcode, typeID, resultID, operands...)

		switch {
		case inst.Opcode == spirv.OpFunction:
			if fn != nil {
				return nil, fmt.Errorf("instruction %d: nested OpFunction", k)
			}
			fn = NewFunction(inst)
		case inst.Opcode == spirv.OpFunctionParameter:
			if fn == nil || len(fn.Blocks) > 0 {
				return nil, fmt.Errorf("instruction %d: misplaced OpFunctionParameter", k)
			}
			fn.Params = append(fn.Params, inst)
		case inst.Opcode == spirv.OpLabel:
			if fn == nil || block != nil {
				return nil, fmt.Errorf("instruction %d: misplaced OpLabel", k)
			}
			block = &BasicBlock{Label: inst}
			fn.AddBlock(block)
		case inst.Opcode == spirv.OpFunctionEnd:
			if fn == nil || block != nil {
				return nil, fmt.Errorf("instruction %d: misplaced OpFunctionEnd", k)
			}
			fn.End = inst
			m.Functions = append(m.Functions, fn)
			fn = nil
		case fn != nil:
			if block == nil {
				return nil, fmt.Errorf("instruction %d: %s outside of a block", k, inst.Opcode)
			}
			block.Insts = append(block.Insts, inst)
			if inst.Opcode.IsTerminator() {
				block = nil
			}
		default:
			if err := m.addModuleInst(inst); err != nil {
				return nil, fmt.Errorf("instruction %d: %w", k, err)
			}
		}
	}
	if fn != nil {
		return nil, fmt.Errorf("function %d is missing OpFunctionEnd", fn.ID())
	}
	return m, nil
}

func (m *Module) addModuleInst(inst *Instruction) error {
	switch inst.Opcode {
	case spirv.OpCapability:
		m.Capabilities = append(m.Capabilities, inst)
	case spirv.OpExtension:
		m.Extensions = append(m.Extensions, inst)
	case spirv.OpExtInstImport:
		m.ExtInstImports = append(m.ExtInstImports, inst)
	case spirv.OpMemoryModel:
		if m.MemoryModel != nil {
			return fmt.Errorf("duplicate OpMemoryModel")
		}
		m.MemoryModel = inst
	case spirv.OpEntryPoint:
		m.EntryPoints = append(m.EntryPoints, inst)
	case spirv.OpExecutionMode:
		m.ExecutionModes = append(m.ExecutionModes, inst)
	case spirv.OpString, spirv.OpSource, spirv.OpSourceContinued, spirv.OpSourceExtension,
		spirv.OpName, spirv.OpMemberName, spirv.OpModuleProcessed:
		m.Debugs = append(m.Debugs, inst)
	case spirv.OpDecorate, spirv.OpMemberDecorate, spirv.OpDecorationGroup, spirv.OpGroupDecorate:
		m.Annotations = append(m.Annotations, inst)
	default:
		if inst.Opcode.IsTerminator() || inst.Opcode.IsMerge() {
			return fmt.Errorf("%s at module scope", inst.Opcode)
		}
		m.TypesValues = append(m.TypesValues, inst)
	}
	return nil
}

// Encode serializes the module to a SPIR-V binary.
func (m *Module) Encode() []byte {
	var insts []spirv.Instruction
	m.ForEachInst(func(inst *Instruction) {
		insts = append(insts, spirv.Instruction{Opcode: inst.Opcode, Words: inst.Words()})
	})
	return spirv.Encode(spirv.Header{
		Version:   m.Version,
		Generator: m.Generator,
		Bound:     m.idBound,
		Schema:    m.Schema,
	}, insts)
}

// Clone returns a deep copy of the module without cached analyses.
func (m *Module) Clone() *Module {
	c, err := Parse(m.Encode())
	if err != nil {
		panic(fmt.Sprintf("ir: re-parsing an encoded module failed: %v", err))
	}
	return c
}

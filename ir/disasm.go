package ir

import (
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/spvfuzz/spirv"
)

// Disassemble renders the module as SPIR-V assembly text with ids printed as
// %N.
func Disassemble(m *Module) string {
	var sb strings.Builder
	_ = WriteDisassembly(&sb, m)
	return sb.String()
}

// WriteDisassembly writes the assembly text of the module to w.
func WriteDisassembly(w io.Writer, m *Module) error {
	if _, err := fmt.Fprintf(w, "; SPIR-V\n; Version: %s\n; Generator: 0x%08X\n; Bound: %d\n; Schema: %d\n",
		m.Version, m.Generator, m.idBound, m.Schema); err != nil {
		return err
	}
	var err error
	m.ForEachInst(func(inst *Instruction) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintln(w, FormatInstruction(inst))
	})
	return err
}

func id(n uint32) string {
	return fmt.Sprintf("%%%d", n)
}

// FormatInstruction renders one instruction in assembly syntax.
func FormatInstruction(inst *Instruction) string {
	var sb strings.Builder
	if inst.ResultID != 0 {
		fmt.Fprintf(&sb, "%*s = ", 10, id(inst.ResultID))
	} else {
		sb.WriteString(strings.Repeat(" ", 13))
	}
	sb.WriteString(inst.Opcode.String())
	if inst.TypeID != 0 {
		sb.WriteString(" ")
		sb.WriteString(id(inst.TypeID))
	}
	for k, op := range inst.Operands {
		sb.WriteString(" ")
		sb.WriteString(formatOperand(inst.Opcode, k, op))
	}
	return sb.String()
}

func formatOperand(opcode spirv.OpCode, idx int, op spirv.Operand) string {
	switch op.Kind {
	case spirv.OperandID:
		return id(op.Word())
	case spirv.OperandString:
		return fmt.Sprintf("%q", op.Text())
	}
	if name := enumerantName(opcode, idx, op.Word()); name != "" {
		return name
	}
	words := make([]string, len(op.Words))
	for k, w := range op.Words {
		words[k] = fmt.Sprintf("%d", w)
	}
	return strings.Join(words, " ")
}

func enumerantName(opcode spirv.OpCode, idx int, v uint32) string {
	switch {
	case opcode == spirv.OpCapability:
		return spirv.CapabilityName(v)
	case opcode == spirv.OpMemoryModel && idx == 0:
		return spirv.AddressingModelName(v)
	case opcode == spirv.OpMemoryModel && idx == 1:
		return spirv.MemoryModelName(v)
	case opcode == spirv.OpEntryPoint && idx == 0:
		return spirv.ExecutionModelName(v)
	case opcode == spirv.OpExecutionMode && idx == 1:
		return spirv.ExecutionModeName(v)
	case opcode == spirv.OpDecorate && idx == 1, opcode == spirv.OpMemberDecorate && idx == 2:
		return spirv.DecorationName(v)
	case opcode == spirv.OpTypePointer && idx == 0, opcode == spirv.OpVariable && idx == 0:
		return spirv.StorageClassName(v)
	case opcode == spirv.OpTypeImage && idx == 1:
		return spirv.DimName(v)
	}
	return ""
}

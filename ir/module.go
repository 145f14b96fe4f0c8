package ir

import (
	"github.com/gogpu/spvfuzz/spirv"
)

// Module is a SPIR-V module in the logical layout order.
type Module struct {
	Version   spirv.Version
	Generator uint32
	Schema    uint32

	Capabilities   []*Instruction
	Extensions     []*Instruction
	ExtInstImports []*Instruction
	MemoryModel    *Instruction
	EntryPoints    []*Instruction
	ExecutionModes []*Instruction
	Debugs         []*Instruction // OpString, OpSource*, OpName, OpMemberName, OpModuleProcessed
	Annotations    []*Instruction // decorations
	TypesValues    []*Instruction // types, constants, global variables, OpUndef
	Functions      []*Function

	idBound uint32

	generation uint64
	cache      *analysisCache
}

// IDBound returns the module id bound: every result id is below it.
func (m *Module) IDBound() uint32 {
	return m.idBound
}

// SetIDBound sets the module id bound.
func (m *Module) SetIDBound(bound uint32) {
	m.idBound = bound
}

// Function returns the function with the given result id, or nil.
func (m *Module) Function(id uint32) *Function {
	for _, fn := range m.Functions {
		if fn.ID() == id {
			return fn
		}
	}
	return nil
}

// AddGlobal appends an instruction to the types/values section.
func (m *Module) AddGlobal(inst *Instruction) {
	m.TypesValues = append(m.TypesValues, inst)
}

// AddAnnotation appends an instruction to the annotations section.
func (m *Module) AddAnnotation(inst *Instruction) {
	m.Annotations = append(m.Annotations, inst)
}

// RemoveGlobal removes the types/values instruction defining id.
func (m *Module) RemoveGlobal(id uint32) {
	for k, inst := range m.TypesValues {
		if inst.ResultID == id {
			m.TypesValues = append(m.TypesValues[:k], m.TypesValues[k+1:]...)
			return
		}
	}
}

// ForEachInst calls fn for every instruction of the module in layout order,
// including labels and function delimiters.
func (m *Module) ForEachInst(fn func(inst *Instruction)) {
	sections := [][]*Instruction{m.Capabilities, m.Extensions, m.ExtInstImports}
	for _, s := range sections {
		for _, inst := range s {
			fn(inst)
		}
	}
	if m.MemoryModel != nil {
		fn(m.MemoryModel)
	}
	sections = [][]*Instruction{m.EntryPoints, m.ExecutionModes, m.Debugs, m.Annotations, m.TypesValues}
	for _, s := range sections {
		for _, inst := range s {
			fn(inst)
		}
	}
	for _, f := range m.Functions {
		f.ForEachInst(fn, true)
	}
}

// Function is a SPIR-V function definition.
type Function struct {
	Def    *Instruction // OpFunction
	Params []*Instruction
	Blocks []*BasicBlock
	End    *Instruction // OpFunctionEnd
}

// NewFunction creates an empty function from its OpFunction instruction.
func NewFunction(def *Instruction) *Function {
	return &Function{
		Def: def,
		End: NewInstruction(spirv.OpFunctionEnd, 0, 0),
	}
}

// ID returns the result id of the function.
func (f *Function) ID() uint32 { return f.Def.ResultID }

// ReturnType returns the return type id.
func (f *Function) ReturnType() uint32 { return f.Def.TypeID }

// TypeID returns the id of the OpTypeFunction of the function.
func (f *Function) TypeID() uint32 { return f.Def.IDOperand(1) }

// SetTypeID changes the OpTypeFunction of the function.
func (f *Function) SetTypeID(id uint32) { f.Def.SetOperand(1, spirv.IDOperand(id)) }

// Entry returns the entry block.
func (f *Function) Entry() *BasicBlock {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// Block returns the block with the given label id, or nil.
func (f *Function) Block(id uint32) *BasicBlock {
	for _, b := range f.Blocks {
		if b.ID() == id {
			return b
		}
	}
	return nil
}

// BlockIndex returns the position of the block with label id, or -1.
func (f *Function) BlockIndex(id uint32) int {
	for k, b := range f.Blocks {
		if b.ID() == id {
			return k
		}
	}
	return -1
}

// AddBlock appends a block.
func (f *Function) AddBlock(b *BasicBlock) {
	b.Function = f
	f.Blocks = append(f.Blocks, b)
}

// InsertBlock inserts b at position idx.
func (f *Function) InsertBlock(idx int, b *BasicBlock) {
	b.Function = f
	f.Blocks = append(f.Blocks, nil)
	copy(f.Blocks[idx+1:], f.Blocks[idx:])
	f.Blocks[idx] = b
}

// InsertBlockAfter inserts b immediately after the block with label id.
func (f *Function) InsertBlockAfter(id uint32, b *BasicBlock) {
	f.InsertBlock(f.BlockIndex(id)+1, b)
}

// RemoveBlock removes the block with label id.
func (f *Function) RemoveBlock(id uint32) {
	if k := f.BlockIndex(id); k >= 0 {
		f.Blocks = append(f.Blocks[:k], f.Blocks[k+1:]...)
	}
}

// ForEachInst calls fn for every instruction of the function. Labels and the
// OpFunction/OpFunctionEnd delimiters are included when delimiters is set.
func (f *Function) ForEachInst(fn func(inst *Instruction), delimiters bool) {
	if delimiters {
		fn(f.Def)
	}
	for _, p := range f.Params {
		fn(p)
	}
	for _, b := range f.Blocks {
		if delimiters {
			fn(b.Label)
		}
		for _, inst := range b.Insts {
			fn(inst)
		}
	}
	if delimiters {
		fn(f.End)
	}
}

// BasicBlock is a labelled sequence of instructions ending in a terminator.
type BasicBlock struct {
	Label    *Instruction
	Insts    []*Instruction
	Function *Function
}

// NewBasicBlock creates a block labelled id.
func NewBasicBlock(id uint32, insts ...*Instruction) *BasicBlock {
	return &BasicBlock{
		Label: NewInstruction(spirv.OpLabel, 0, id),
		Insts: insts,
	}
}

// ID returns the label id of the block.
func (b *BasicBlock) ID() uint32 { return b.Label.ResultID }

// Terminator returns the last instruction of the block, or nil if empty.
func (b *BasicBlock) Terminator() *Instruction {
	if len(b.Insts) == 0 {
		return nil
	}
	return b.Insts[len(b.Insts)-1]
}

// MergeInst returns the OpSelectionMerge or OpLoopMerge of a header block.
func (b *BasicBlock) MergeInst() *Instruction {
	if len(b.Insts) < 2 {
		return nil
	}
	inst := b.Insts[len(b.Insts)-2]
	if inst.Opcode.IsMerge() {
		return inst
	}
	return nil
}

// MergeBlock returns the merge block id of a header block, or 0.
func (b *BasicBlock) MergeBlock() uint32 {
	if m := b.MergeInst(); m != nil {
		return m.IDOperand(0)
	}
	return 0
}

// ContinueBlock returns the continue target of a loop header, or 0.
func (b *BasicBlock) ContinueBlock() uint32 {
	if m := b.MergeInst(); m != nil && m.Opcode == spirv.OpLoopMerge {
		return m.IDOperand(1)
	}
	return 0
}

// IsLoopHeader reports whether the block declares a loop.
func (b *BasicBlock) IsLoopHeader() bool {
	m := b.MergeInst()
	return m != nil && m.Opcode == spirv.OpLoopMerge
}

// Successors returns the distinct branch targets of the block in operand order.
func (b *BasicBlock) Successors() []uint32 {
	term := b.Terminator()
	if term == nil {
		return nil
	}
	var succ []uint32
	add := func(id uint32) {
		for _, s := range succ {
			if s == id {
				return
			}
		}
		succ = append(succ, id)
	}
	switch term.Opcode {
	case spirv.OpBranch:
		add(term.IDOperand(0))
	case spirv.OpBranchConditional:
		add(term.IDOperand(1))
		add(term.IDOperand(2))
	case spirv.OpSwitch:
		add(term.IDOperand(1))
		for k := 3; k < len(term.Operands); k += 2 {
			add(term.IDOperand(k))
		}
	}
	return succ
}

// FirstNonPhi returns the index of the first instruction that is not an OpPhi.
func (b *BasicBlock) FirstNonPhi() int {
	k := 0
	for k < len(b.Insts) && b.Insts[k].Opcode == spirv.OpPhi {
		k++
	}
	return k
}

// Phis returns the leading OpPhi cluster.
func (b *BasicBlock) Phis() []*Instruction {
	return b.Insts[:b.FirstNonPhi()]
}

// IndexOf returns the position of inst in the block, or -1.
func (b *BasicBlock) IndexOf(inst *Instruction) int {
	for k, other := range b.Insts {
		if other == inst {
			return k
		}
	}
	return -1
}

// InsertBefore inserts insts before position idx.
func (b *BasicBlock) InsertBefore(idx int, insts ...*Instruction) {
	tail := append([]*Instruction(nil), b.Insts[idx:]...)
	b.Insts = append(append(b.Insts[:idx], insts...), tail...)
}

// Remove deletes the instruction at idx.
func (b *BasicBlock) Remove(idx int) {
	b.Insts = append(b.Insts[:idx], b.Insts[idx+1:]...)
}

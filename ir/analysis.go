package ir

import (
	"github.com/gogpu/spvfuzz/spirv"
)

// analysisCache holds derived data valid for one module generation.
type analysisCache struct {
	generation uint64
	defUse     *DefUse
	preds      map[uint32][]uint32
	dom        map[*Function]*DominatorTree
	postDom    map[*Function]*DominatorTree
}

func (m *Module) analyses() *analysisCache {
	if m.cache == nil || m.cache.generation != m.generation {
		m.cache = &analysisCache{
			generation: m.generation,
			dom:        make(map[*Function]*DominatorTree),
			postDom:    make(map[*Function]*DominatorTree),
		}
	}
	return m.cache
}

// InvalidateAnalyses marks every cached analysis stale.
func (m *Module) InvalidateAnalyses() {
	m.generation++
}

// Generation returns the mutation generation of the module.
func (m *Module) Generation() uint64 {
	return m.generation
}

// Use is an occurrence of an id as an operand of an instruction.
type Use struct {
	Inst    *Instruction
	Operand int // index into Inst.Operands, or OperandTypeID
}

// DefUse indexes definitions and uses of every id in a module.
type DefUse struct {
	defs   map[uint32]*Instruction
	uses   map[uint32][]Use
	blocks map[*Instruction]*BasicBlock
	funcs  map[*Instruction]*Function
}

// DefUse returns the def-use index of the module.
func (m *Module) DefUse() *DefUse {
	c := m.analyses()
	if c.defUse == nil {
		c.defUse = buildDefUse(m)
	}
	return c.defUse
}

func buildDefUse(m *Module) *DefUse {
	du := &DefUse{
		defs:   make(map[uint32]*Instruction),
		uses:   make(map[uint32][]Use),
		blocks: make(map[*Instruction]*BasicBlock),
		funcs:  make(map[*Instruction]*Function),
	}
	record := func(inst *Instruction) {
		if inst.ResultID != 0 {
			du.defs[inst.ResultID] = inst
		}
		if inst.TypeID != 0 {
			du.uses[inst.TypeID] = append(du.uses[inst.TypeID], Use{Inst: inst, Operand: OperandTypeID})
		}
		for k, op := range inst.Operands {
			if op.Kind == spirv.OperandID {
				du.uses[op.Word()] = append(du.uses[op.Word()], Use{Inst: inst, Operand: k})
			}
		}
	}
	m.ForEachInst(record)
	for _, fn := range m.Functions {
		du.funcs[fn.Def] = fn
		du.funcs[fn.End] = fn
		for _, p := range fn.Params {
			du.funcs[p] = fn
		}
		for _, b := range fn.Blocks {
			du.blocks[b.Label] = b
			du.funcs[b.Label] = fn
			for _, inst := range b.Insts {
				du.blocks[inst] = b
				du.funcs[inst] = fn
			}
		}
	}
	return du
}

// GetDef returns the instruction defining id, or nil.
func (du *DefUse) GetDef(id uint32) *Instruction {
	return du.defs[id]
}

// Uses returns every use of id in layout order.
func (du *DefUse) Uses(id uint32) []Use {
	return du.uses[id]
}

// IsUsed reports whether id has any use.
func (du *DefUse) IsUsed(id uint32) bool {
	return len(du.uses[id]) > 0
}

// Block returns the block containing inst (a label maps to its own block),
// or nil for instructions outside blocks.
func (du *DefUse) Block(inst *Instruction) *BasicBlock {
	return du.blocks[inst]
}

// Function returns the function containing inst, or nil for module-scope
// instructions.
func (du *DefUse) Function(inst *Instruction) *Function {
	return du.funcs[inst]
}

// BlockByID returns the block labelled id, or nil.
func (du *DefUse) BlockByID(id uint32) *BasicBlock {
	def := du.defs[id]
	if def == nil || def.Opcode != spirv.OpLabel {
		return nil
	}
	return du.blocks[def]
}

// Type returns the type instruction of the value id, or nil.
func (du *DefUse) Type(id uint32) *Instruction {
	def := du.defs[id]
	if def == nil || def.TypeID == 0 {
		return nil
	}
	return du.defs[def.TypeID]
}

// Predecessors returns the predecessor labels of the block labelled id, in
// layout order.
func (m *Module) Predecessors(id uint32) []uint32 {
	c := m.analyses()
	if c.preds == nil {
		c.preds = make(map[uint32][]uint32)
		for _, fn := range m.Functions {
			for _, b := range fn.Blocks {
				for _, s := range b.Successors() {
					c.preds[s] = append(c.preds[s], b.ID())
				}
			}
		}
	}
	return c.preds[id]
}

// Dominators returns the dominator tree of fn rooted at its entry block.
func (m *Module) Dominators(fn *Function) *DominatorTree {
	c := m.analyses()
	if t, ok := c.dom[fn]; ok {
		return t
	}
	succ := make(map[uint32][]uint32, len(fn.Blocks))
	for _, b := range fn.Blocks {
		succ[b.ID()] = b.Successors()
	}
	var root uint32
	if entry := fn.Entry(); entry != nil {
		root = entry.ID()
	}
	t := BuildDominatorTree(root, func(id uint32) []uint32 { return succ[id] })
	c.dom[fn] = t
	return t
}

// PostDominators returns the post-dominator tree of fn. The tree is rooted at
// a virtual exit (id 0) whose predecessors are the blocks without successors.
// Blocks that cannot reach an exit are absent from the tree.
func (m *Module) PostDominators(fn *Function) *DominatorTree {
	c := m.analyses()
	if t, ok := c.postDom[fn]; ok {
		return t
	}
	reverse := make(map[uint32][]uint32, len(fn.Blocks)+1)
	for _, b := range fn.Blocks {
		succ := b.Successors()
		if len(succ) == 0 {
			reverse[0] = append(reverse[0], b.ID())
		}
		for _, s := range succ {
			reverse[s] = append(reverse[s], b.ID())
		}
	}
	t := BuildDominatorTree(0, func(id uint32) []uint32 { return reverse[id] })
	c.postDom[fn] = t
	return t
}

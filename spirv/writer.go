package spirv

import (
	"encoding/binary"
	"math"
)

// Instruction represents a SPIR-V instruction.
type Instruction struct {
	Opcode OpCode
	Words  []uint32 // result type ID, result ID, operands
}

// InstructionBuilder builds SPIR-V instructions.
type InstructionBuilder struct {
	words []uint32
}

// NewInstructionBuilder creates a new instruction builder.
func NewInstructionBuilder() *InstructionBuilder {
	return &InstructionBuilder{
		words: make([]uint32, 0, 8),
	}
}

// AddWord adds a word to the instruction.
func (b *InstructionBuilder) AddWord(word uint32) {
	b.words = append(b.words, word)
}

// AddWords adds several words to the instruction.
func (b *InstructionBuilder) AddWords(words ...uint32) {
	b.words = append(b.words, words...)
}

// AddString adds a null-terminated UTF-8 string.
func (b *InstructionBuilder) AddString(s string) {
	bytes := []byte(s)
	// Add null terminator if not present
	if len(bytes) == 0 || bytes[len(bytes)-1] != 0 {
		bytes = append(bytes, 0)
	}

	// Pad to word boundary
	for len(bytes)%4 != 0 {
		bytes = append(bytes, 0)
	}

	for i := 0; i < len(bytes); i += 4 {
		b.words = append(b.words, binary.LittleEndian.Uint32(bytes[i:]))
	}
}

// Build builds the instruction with the given opcode.
func (b *InstructionBuilder) Build(opcode OpCode) Instruction {
	return Instruction{
		Opcode: opcode,
		Words:  b.words,
	}
}

// Encode encodes the instruction to binary.
func (i Instruction) Encode() []uint32 {
	wordCount := uint32(len(i.Words) + 1) // +1 for opcode word
	result := make([]uint32, 0, wordCount)
	result = append(result, (wordCount<<16)|uint32(i.Opcode))
	result = append(result, i.Words...)
	return result
}

// ModuleBuilder builds complete SPIR-V modules.
//
// Ids are handed out sequentially. Forward references (branch targets, phi
// operands, loop merges) are expressed by reserving an id with AllocID and
// passing it to the *WithID variants later.
type ModuleBuilder struct {
	// Header
	version   Version
	generator uint32
	bound     uint32 // max ID + 1
	schema    uint32

	// Sections (ordered per SPIR-V spec)
	capabilities   []Instruction
	extensions     []Instruction
	extInstImports []Instruction
	memoryModel    *Instruction
	entryPoints    []Instruction
	executionModes []Instruction
	debugStrings   []Instruction // OpString
	debugNames     []Instruction // OpName, OpMemberName
	annotations    []Instruction // OpDecorate, OpMemberDecorate
	types          []Instruction // OpType*, OpConstant*, global OpVariable, OpUndef
	functions      []Instruction // OpFunction...OpFunctionEnd

	// ID allocation
	nextID uint32
}

// NewModuleBuilder creates a new SPIR-V module builder.
func NewModuleBuilder(version Version) *ModuleBuilder {
	return &ModuleBuilder{
		version:   version,
		generator: GeneratorID,
		nextID:    1,
	}
}

// AllocID allocates a new SPIR-V ID.
func (b *ModuleBuilder) AllocID() uint32 {
	id := b.nextID
	b.nextID++
	return id
}

// emit appends an instruction made of raw words to a section.
func emit(section *[]Instruction, opcode OpCode, words ...uint32) {
	builder := NewInstructionBuilder()
	builder.AddWords(words...)
	*section = append(*section, builder.Build(opcode))
}

// AddCapability adds a capability.
func (b *ModuleBuilder) AddCapability(capability Capability) {
	emit(&b.capabilities, OpCapability, uint32(capability))
}

// AddExtension adds an extension.
func (b *ModuleBuilder) AddExtension(name string) {
	emit(&b.extensions, OpExtension, EncodeString(name)...)
}

// AddExtInstImport imports an extended instruction set.
func (b *ModuleBuilder) AddExtInstImport(name string) uint32 {
	id := b.AllocID()
	emit(&b.extInstImports, OpExtInstImport, append([]uint32{id}, EncodeString(name)...)...)
	return id
}

// SetMemoryModel sets the memory model.
func (b *ModuleBuilder) SetMemoryModel(addressing AddressingModel, memory MemoryModel) {
	var section []Instruction
	emit(&section, OpMemoryModel, uint32(addressing), uint32(memory))
	b.memoryModel = &section[0]
}

// AddEntryPoint adds an entry point.
func (b *ModuleBuilder) AddEntryPoint(execModel ExecutionModel, funcID uint32, name string, interfaces []uint32) {
	words := []uint32{uint32(execModel), funcID}
	words = append(words, EncodeString(name)...)
	words = append(words, interfaces...)
	emit(&b.entryPoints, OpEntryPoint, words...)
}

// AddExecutionMode adds an execution mode.
func (b *ModuleBuilder) AddExecutionMode(entryPoint uint32, mode ExecutionMode, params ...uint32) {
	emit(&b.executionModes, OpExecutionMode, append([]uint32{entryPoint, uint32(mode)}, params...)...)
}

// AddString adds a debug string.
func (b *ModuleBuilder) AddString(text string) uint32 {
	id := b.AllocID()
	emit(&b.debugStrings, OpString, append([]uint32{id}, EncodeString(text)...)...)
	return id
}

// AddName adds a debug name.
func (b *ModuleBuilder) AddName(id uint32, name string) {
	emit(&b.debugNames, OpName, append([]uint32{id}, EncodeString(name)...)...)
}

// AddMemberName adds a debug member name.
func (b *ModuleBuilder) AddMemberName(structID, member uint32, name string) {
	emit(&b.debugNames, OpMemberName, append([]uint32{structID, member}, EncodeString(name)...)...)
}

// AddDecorate adds a decoration.
func (b *ModuleBuilder) AddDecorate(id uint32, decoration Decoration, params ...uint32) {
	emit(&b.annotations, OpDecorate, append([]uint32{id, uint32(decoration)}, params...)...)
}

// AddMemberDecorate adds a member decoration.
func (b *ModuleBuilder) AddMemberDecorate(structID, member uint32, decoration Decoration, params ...uint32) {
	emit(&b.annotations, OpMemberDecorate, append([]uint32{structID, member, uint32(decoration)}, params...)...)
}

// addType appends a type declaration and returns its id.
func (b *ModuleBuilder) addType(opcode OpCode, operands ...uint32) uint32 {
	id := b.AllocID()
	emit(&b.types, opcode, append([]uint32{id}, operands...)...)
	return id
}

// addValue appends a typed global value and returns its id.
func (b *ModuleBuilder) addValue(opcode OpCode, typeID uint32, operands ...uint32) uint32 {
	id := b.AllocID()
	emit(&b.types, opcode, append([]uint32{typeID, id}, operands...)...)
	return id
}

// AddTypeVoid adds OpTypeVoid.
func (b *ModuleBuilder) AddTypeVoid() uint32 { return b.addType(OpTypeVoid) }

// AddTypeBool adds OpTypeBool.
func (b *ModuleBuilder) AddTypeBool() uint32 { return b.addType(OpTypeBool) }

// AddTypeFloat adds OpTypeFloat.
func (b *ModuleBuilder) AddTypeFloat(width uint32) uint32 { return b.addType(OpTypeFloat, width) }

// AddTypeInt adds OpTypeInt.
func (b *ModuleBuilder) AddTypeInt(width uint32, signed bool) uint32 {
	signedness := uint32(0)
	if signed {
		signedness = 1
	}
	return b.addType(OpTypeInt, width, signedness)
}

// AddTypeVector adds OpTypeVector.
func (b *ModuleBuilder) AddTypeVector(componentType uint32, count uint32) uint32 {
	return b.addType(OpTypeVector, componentType, count)
}

// AddTypeMatrix adds OpTypeMatrix.
func (b *ModuleBuilder) AddTypeMatrix(columnType uint32, columnCount uint32) uint32 {
	return b.addType(OpTypeMatrix, columnType, columnCount)
}

// AddTypeArray adds OpTypeArray. The length is the id of an integer constant.
func (b *ModuleBuilder) AddTypeArray(elementType uint32, length uint32) uint32 {
	return b.addType(OpTypeArray, elementType, length)
}

// AddTypeRuntimeArray adds OpTypeRuntimeArray.
func (b *ModuleBuilder) AddTypeRuntimeArray(elementType uint32) uint32 {
	return b.addType(OpTypeRuntimeArray, elementType)
}

// AddTypePointer adds OpTypePointer.
func (b *ModuleBuilder) AddTypePointer(storageClass StorageClass, baseType uint32) uint32 {
	return b.addType(OpTypePointer, uint32(storageClass), baseType)
}

// AddTypeFunction adds OpTypeFunction.
func (b *ModuleBuilder) AddTypeFunction(returnType uint32, paramTypes ...uint32) uint32 {
	return b.addType(OpTypeFunction, append([]uint32{returnType}, paramTypes...)...)
}

// AddTypeStruct adds OpTypeStruct.
func (b *ModuleBuilder) AddTypeStruct(memberTypes ...uint32) uint32 {
	return b.addType(OpTypeStruct, memberTypes...)
}

// AddTypeImage adds a sampled OpTypeImage with unknown format.
func (b *ModuleBuilder) AddTypeImage(sampledType uint32, dim Dim, depth, arrayed, multisampled, sampled uint32) uint32 {
	const formatUnknown = 0
	return b.addType(OpTypeImage, sampledType, uint32(dim), depth, arrayed, multisampled, sampled, formatUnknown)
}

// AddTypeSampledImage adds OpTypeSampledImage.
func (b *ModuleBuilder) AddTypeSampledImage(imageType uint32) uint32 {
	return b.addType(OpTypeSampledImage, imageType)
}

// AddConstant adds OpConstant.
func (b *ModuleBuilder) AddConstant(typeID uint32, values ...uint32) uint32 {
	return b.addValue(OpConstant, typeID, values...)
}

// AddConstantTrue adds OpConstantTrue.
func (b *ModuleBuilder) AddConstantTrue(boolType uint32) uint32 {
	return b.addValue(OpConstantTrue, boolType)
}

// AddConstantFalse adds OpConstantFalse.
func (b *ModuleBuilder) AddConstantFalse(boolType uint32) uint32 {
	return b.addValue(OpConstantFalse, boolType)
}

// AddConstantNull adds OpConstantNull.
func (b *ModuleBuilder) AddConstantNull(typeID uint32) uint32 {
	return b.addValue(OpConstantNull, typeID)
}

// AddUndef adds a module-scope OpUndef.
func (b *ModuleBuilder) AddUndef(typeID uint32) uint32 {
	return b.addValue(OpUndef, typeID)
}

// AddConstantFloat32 adds a 32-bit float constant.
func (b *ModuleBuilder) AddConstantFloat32(typeID uint32, value float32) uint32 {
	return b.AddConstant(typeID, math.Float32bits(value))
}

// AddConstantFloat64 adds a 64-bit float constant.
func (b *ModuleBuilder) AddConstantFloat64(typeID uint32, value float64) uint32 {
	bits := math.Float64bits(value)
	return b.AddConstant(typeID, uint32(bits&0xFFFFFFFF), uint32(bits>>32))
}

// AddConstantComposite adds OpConstantComposite.
func (b *ModuleBuilder) AddConstantComposite(typeID uint32, constituents ...uint32) uint32 {
	return b.addValue(OpConstantComposite, typeID, constituents...)
}

// AddVariable adds a module-scope OpVariable.
func (b *ModuleBuilder) AddVariable(pointerType uint32, storageClass StorageClass) uint32 {
	return b.addValue(OpVariable, pointerType, uint32(storageClass))
}

// AddVariableWithInit adds a module-scope OpVariable with initializer.
func (b *ModuleBuilder) AddVariableWithInit(pointerType uint32, storageClass StorageClass, initID uint32) uint32 {
	return b.addValue(OpVariable, pointerType, uint32(storageClass), initID)
}

// AddFunction adds a function definition.
func (b *ModuleBuilder) AddFunction(funcType uint32, returnType uint32, control FunctionControl) uint32 {
	return b.AddFunctionWithID(b.AllocID(), funcType, returnType, control)
}

// AddFunctionWithID adds a function definition using a reserved id.
func (b *ModuleBuilder) AddFunctionWithID(id, funcType, returnType uint32, control FunctionControl) uint32 {
	emit(&b.functions, OpFunction, returnType, id, uint32(control), funcType)
	return id
}

// AddFunctionParameter adds a function parameter.
func (b *ModuleBuilder) AddFunctionParameter(typeID uint32) uint32 {
	return b.AddResult(OpFunctionParameter, typeID)
}

// AddLocalVariable adds a Function-storage OpVariable to the current block.
func (b *ModuleBuilder) AddLocalVariable(pointerType uint32, initID ...uint32) uint32 {
	return b.AddResult(OpVariable, pointerType, append([]uint32{uint32(StorageClassFunction)}, initID...)...)
}

// AddLabel adds a label.
func (b *ModuleBuilder) AddLabel() uint32 {
	return b.AddLabelWithID(b.AllocID())
}

// AddLabelWithID adds a label using a reserved id.
func (b *ModuleBuilder) AddLabelWithID(id uint32) uint32 {
	emit(&b.functions, OpLabel, id)
	return id
}

// AddResult appends a function-body instruction with a result type and a
// freshly allocated result id.
func (b *ModuleBuilder) AddResult(opcode OpCode, resultType uint32, operands ...uint32) uint32 {
	return b.AddResultWithID(b.AllocID(), opcode, resultType, operands...)
}

// AddResultWithID appends a function-body instruction defining a reserved id.
func (b *ModuleBuilder) AddResultWithID(id uint32, opcode OpCode, resultType uint32, operands ...uint32) uint32 {
	emit(&b.functions, opcode, append([]uint32{resultType, id}, operands...)...)
	return id
}

// AddStatement appends a function-body instruction without result.
func (b *ModuleBuilder) AddStatement(opcode OpCode, operands ...uint32) {
	emit(&b.functions, opcode, operands...)
}

// AddReturn adds OpReturn.
func (b *ModuleBuilder) AddReturn() { b.AddStatement(OpReturn) }

// AddReturnValue adds OpReturnValue.
func (b *ModuleBuilder) AddReturnValue(valueID uint32) { b.AddStatement(OpReturnValue, valueID) }

// AddFunctionEnd adds OpFunctionEnd.
func (b *ModuleBuilder) AddFunctionEnd() { b.AddStatement(OpFunctionEnd) }

// AddBranch adds OpBranch.
func (b *ModuleBuilder) AddBranch(target uint32) { b.AddStatement(OpBranch, target) }

// AddBranchConditional adds OpBranchConditional.
func (b *ModuleBuilder) AddBranchConditional(condition uint32, trueLabel uint32, falseLabel uint32) {
	b.AddStatement(OpBranchConditional, condition, trueLabel, falseLabel)
}

// AddSelectionMerge adds OpSelectionMerge.
func (b *ModuleBuilder) AddSelectionMerge(mergeLabel uint32, control SelectionControl) {
	b.AddStatement(OpSelectionMerge, mergeLabel, uint32(control))
}

// AddLoopMerge adds OpLoopMerge.
func (b *ModuleBuilder) AddLoopMerge(mergeLabel uint32, continueLabel uint32, control LoopControl) {
	b.AddStatement(OpLoopMerge, mergeLabel, continueLabel, uint32(control))
}

// AddKill adds OpKill (fragment shader discard).
func (b *ModuleBuilder) AddKill() { b.AddStatement(OpKill) }

// AddUnreachable adds OpUnreachable.
func (b *ModuleBuilder) AddUnreachable() { b.AddStatement(OpUnreachable) }

// AddBinaryOp adds a binary operation instruction.
func (b *ModuleBuilder) AddBinaryOp(opcode OpCode, resultType uint32, left uint32, right uint32) uint32 {
	return b.AddResult(opcode, resultType, left, right)
}

// AddUnaryOp adds a unary operation instruction.
func (b *ModuleBuilder) AddUnaryOp(opcode OpCode, resultType uint32, operand uint32) uint32 {
	return b.AddResult(opcode, resultType, operand)
}

// AddLoad adds OpLoad.
func (b *ModuleBuilder) AddLoad(resultType uint32, pointer uint32) uint32 {
	return b.AddResult(OpLoad, resultType, pointer)
}

// AddStore adds OpStore.
func (b *ModuleBuilder) AddStore(pointer uint32, value uint32) { b.AddStatement(OpStore, pointer, value) }

// AddAccessChain adds OpAccessChain.
func (b *ModuleBuilder) AddAccessChain(resultType uint32, base uint32, indices ...uint32) uint32 {
	return b.AddResult(OpAccessChain, resultType, append([]uint32{base}, indices...)...)
}

// AddCompositeConstruct adds OpCompositeConstruct.
func (b *ModuleBuilder) AddCompositeConstruct(resultType uint32, constituents ...uint32) uint32 {
	return b.AddResult(OpCompositeConstruct, resultType, constituents...)
}

// AddCompositeExtract adds OpCompositeExtract.
func (b *ModuleBuilder) AddCompositeExtract(resultType uint32, composite uint32, indices ...uint32) uint32 {
	return b.AddResult(OpCompositeExtract, resultType, append([]uint32{composite}, indices...)...)
}

// AddFunctionCall adds OpFunctionCall.
func (b *ModuleBuilder) AddFunctionCall(resultType uint32, function uint32, args ...uint32) uint32 {
	return b.AddResult(OpFunctionCall, resultType, append([]uint32{function}, args...)...)
}

// AddPhi adds OpPhi. pairs alternates value id and predecessor label id.
func (b *ModuleBuilder) AddPhi(resultType uint32, pairs ...uint32) uint32 {
	return b.AddResult(OpPhi, resultType, pairs...)
}

// AddSelect adds OpSelect.
func (b *ModuleBuilder) AddSelect(resultType uint32, condition uint32, accept uint32, reject uint32) uint32 {
	return b.AddResult(OpSelect, resultType, condition, accept, reject)
}

// AddExtInst adds OpExtInst (extended instruction).
func (b *ModuleBuilder) AddExtInst(resultType uint32, extSet uint32, instruction uint32, operands ...uint32) uint32 {
	return b.AddResult(OpExtInst, resultType, append([]uint32{extSet, instruction}, operands...)...)
}

// Build generates the final SPIR-V binary.
func (b *ModuleBuilder) Build() []byte {
	b.bound = b.nextID

	var all []Instruction
	all = append(all, b.capabilities...)
	all = append(all, b.extensions...)
	all = append(all, b.extInstImports...)
	if b.memoryModel != nil {
		all = append(all, *b.memoryModel)
	}
	all = append(all, b.entryPoints...)
	all = append(all, b.executionModes...)
	all = append(all, b.debugStrings...)
	all = append(all, b.debugNames...)
	all = append(all, b.annotations...)
	all = append(all, b.types...)
	all = append(all, b.functions...)

	return Encode(Header{
		Version:   b.version,
		Generator: b.generator,
		Bound:     b.bound,
		Schema:    b.schema,
	}, all)
}

// countWords counts total words in instructions.
func countWords(instructions []Instruction) int {
	count := 0
	for _, inst := range instructions {
		count += len(inst.Words) + 1
	}
	return count
}

// writeInstructions writes instructions to buffer.
func writeInstructions(buffer []byte, offset int, instructions []Instruction) int {
	for _, inst := range instructions {
		offset = writeInstruction(buffer, offset, inst)
	}
	return offset
}

// writeInstruction writes a single instruction to buffer.
func writeInstruction(buffer []byte, offset int, inst Instruction) int {
	words := inst.Encode()
	for _, word := range words {
		binary.LittleEndian.PutUint32(buffer[offset:], word)
		offset += 4
	}
	return offset
}

// versionToWord converts Version to SPIR-V word format.
func versionToWord(v Version) uint32 {
	return (uint32(v.Major) << 16) | (uint32(v.Minor) << 8)
}

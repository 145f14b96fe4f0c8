// Package spirv provides the SPIR-V binary vocabulary used by spvfuzz.
//
// SPIR-V is the standard intermediate language for GPU shaders,
// used by Vulkan, OpenCL, and other APIs.
//
// # Binary Reader
//
// Decode splits a binary module into its header and raw instruction stream;
// SplitOperands uses the opcode grammar table to separate the result type,
// the result id and the tagged operands of each instruction:
//
//	header, insts, err := spirv.Decode(data)
//	if err != nil {
//		return err
//	}
//	for _, inst := range insts {
//		typeID, resultID, operands, err := spirv.SplitOperands(inst.Opcode, inst.Words)
//		...
//	}
//
// # Binary Writer
//
// ModuleBuilder constructs SPIR-V modules programmatically. It is mostly used
// by tests to build the input modules for transformations:
//
//	builder := spirv.NewModuleBuilder(spirv.Version1_3)
//	builder.AddCapability(spirv.CapabilityShader)
//	builder.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
//
//	voidType := builder.AddTypeVoid()
//	fnType := builder.AddTypeFunction(voidType)
//	builder.AddFunction(fnType, voidType, spirv.FunctionControlNone)
//	builder.AddLabel()
//	builder.AddReturn()
//	builder.AddFunctionEnd()
//
//	binary := builder.Build()
//
// Branch targets that are emitted later are reserved with AllocID and passed
// to AddLabelWithID when the block is reached.
//
// # SPIR-V Structure
//
// SPIR-V modules consist of:
//   - Header (magic, version, generator, bound, schema)
//   - Capabilities (required features)
//   - Extensions (optional extensions)
//   - Extended instruction imports (GLSL.std.450, etc.)
//   - Memory model (addressing and memory model)
//   - Entry points (shader entry functions)
//   - Execution modes (shader configuration)
//   - Debug information (names, source info)
//   - Annotations (decorations)
//   - Types, constants and global variables
//   - Functions (code)
//
// # References
//
//   - SPIR-V Specification: https://registry.khronos.org/SPIR-V/specs/unified1/SPIRV.html
package spirv

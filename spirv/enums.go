package spirv

import "fmt"

// Capability represents a SPIR-V capability.
type Capability uint32

// Common capabilities
const (
	CapabilityMatrix    Capability = 0
	CapabilityShader    Capability = 1
	CapabilityLinkage   Capability = 5
	CapabilityKernel    Capability = 6
	CapabilityFloat16   Capability = 9
	CapabilityFloat64   Capability = 10
	CapabilityInt64     Capability = 11
	CapabilityInt16     Capability = 22
	CapabilityInt8      Capability = 39
	CapabilitySampled1D Capability = 43
)

// AddressingModel is the operand of OpMemoryModel selecting pointer semantics.
type AddressingModel uint32

const (
	AddressingModelLogical    AddressingModel = 0
	AddressingModelPhysical32 AddressingModel = 1
	AddressingModelPhysical64 AddressingModel = 2
)

// MemoryModel is the operand of OpMemoryModel selecting the memory model.
type MemoryModel uint32

const (
	MemoryModelSimple  MemoryModel = 0
	MemoryModelGLSL450 MemoryModel = 1
	MemoryModelOpenCL  MemoryModel = 2
	MemoryModelVulkan  MemoryModel = 3
)

// ExecutionModel identifies the pipeline stage of an entry point.
type ExecutionModel uint32

const (
	ExecutionModelVertex    ExecutionModel = 0
	ExecutionModelFragment  ExecutionModel = 4
	ExecutionModelGLCompute ExecutionModel = 5
	ExecutionModelKernel    ExecutionModel = 6
)

// ExecutionMode configures an entry point.
type ExecutionMode uint32

const (
	ExecutionModeOriginUpperLeft ExecutionMode = 7
	ExecutionModeLocalSize       ExecutionMode = 17
)

// StorageClass is the storage class of a pointer or variable.
type StorageClass uint32

const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassInput           StorageClass = 1
	StorageClassUniform         StorageClass = 2
	StorageClassOutput          StorageClass = 3
	StorageClassWorkgroup       StorageClass = 4
	StorageClassCrossWorkgroup  StorageClass = 5
	StorageClassPrivate         StorageClass = 6
	StorageClassFunction        StorageClass = 7
	StorageClassGeneric         StorageClass = 8
	StorageClassPushConstant    StorageClass = 9
	StorageClassAtomicCounter   StorageClass = 10
	StorageClassImage           StorageClass = 11
	StorageClassStorageBuffer   StorageClass = 12
)

// Decoration represents a SPIR-V decoration.
type Decoration uint32

// Common decorations
const (
	DecorationRelaxedPrecision Decoration = 0
	DecorationBlock            Decoration = 2
	DecorationBufferBlock      Decoration = 3
	DecorationRowMajor         Decoration = 4
	DecorationColMajor         Decoration = 5
	DecorationArrayStride      Decoration = 6
	DecorationMatrixStride     Decoration = 7
	DecorationBuiltIn          Decoration = 11
	DecorationLocation         Decoration = 30
	DecorationBinding          Decoration = 33
	DecorationDescriptorSet    Decoration = 34
	DecorationOffset           Decoration = 35
	DecorationNoContraction    Decoration = 42
)

// BuiltIn identifies a built-in variable.
type BuiltIn uint32

const (
	BuiltInPosition           BuiltIn = 0
	BuiltInFragCoord          BuiltIn = 15
	BuiltInGlobalInvocationID BuiltIn = 28
)

// FunctionControl is the control mask of OpFunction.
type FunctionControl uint32

const (
	FunctionControlNone       FunctionControl = 0
	FunctionControlInline     FunctionControl = 1
	FunctionControlDontInline FunctionControl = 2
	FunctionControlPure       FunctionControl = 4
	FunctionControlConst      FunctionControl = 8
)

// SelectionControl is the control mask of OpSelectionMerge.
type SelectionControl uint32

const (
	SelectionControlNone        SelectionControl = 0
	SelectionControlFlatten     SelectionControl = 1
	SelectionControlDontFlatten SelectionControl = 2
)

// LoopControl is the control mask of OpLoopMerge.
type LoopControl uint32

const (
	LoopControlNone       LoopControl = 0
	LoopControlUnroll     LoopControl = 1
	LoopControlDontUnroll LoopControl = 2
)

// Dim is the dimensionality of an image type.
type Dim uint32

const (
	Dim1D   Dim = 0
	Dim2D   Dim = 1
	Dim3D   Dim = 2
	DimCube Dim = 3
)

var capabilityNames = map[uint32]string{
	0: "Matrix", 1: "Shader", 2: "Geometry", 3: "Tessellation",
	4: "Addresses", 5: "Linkage", 6: "Kernel", 7: "Vector16",
	8: "Float16Buffer", 9: "Float16", 10: "Float64", 11: "Int64",
	12: "Int64Atomics", 13: "ImageBasic", 14: "ImageReadWrite", 15: "ImageMipmap",
	17: "Pipes", 18: "Groups", 19: "DeviceEnqueue", 20: "LiteralSampler",
	21: "AtomicStorage", 22: "Int16", 23: "TessellationPointSize",
	24: "GeometryPointSize", 25: "ImageGatherExtended", 27: "UniformBufferArrayDynamicIndexing",
	31: "ClipDistance", 32: "CullDistance", 33: "ImageCubeArray",
	34: "SampleRateShading", 38: "GenericPointer", 39: "Int8",
	40: "InputAttachment", 43: "Sampled1D", 44: "Image1D",
	49: "ImageQuery", 50: "DerivativeControl", 56: "MultiViewport",
	61: "GroupNonUniform", 4427: "DrawParameters", 4446: "VariablePointers",
}

var storageClassNames = map[uint32]string{
	0: "UniformConstant", 1: "Input", 2: "Uniform", 3: "Output",
	4: "Workgroup", 5: "CrossWorkgroup", 6: "Private", 7: "Function",
	8: "Generic", 9: "PushConstant", 10: "AtomicCounter", 11: "Image",
	12: "StorageBuffer",
}

var decorationNames = map[uint32]string{
	0: "RelaxedPrecision", 1: "SpecId", 2: "Block", 3: "BufferBlock",
	4: "RowMajor", 5: "ColMajor", 6: "ArrayStride", 7: "MatrixStride",
	8: "GLSLShared", 9: "GLSLPacked", 10: "CPacked", 11: "BuiltIn",
	13: "NoPerspective", 14: "Flat", 15: "Patch", 16: "Centroid",
	17: "Sample", 18: "Invariant", 19: "Restrict", 20: "Aliased",
	21: "Volatile", 22: "Constant", 23: "Coherent", 24: "NonWritable",
	25: "NonReadable", 26: "Uniform", 28: "SaturatedConversion",
	29: "Stream", 30: "Location", 31: "Component", 32: "Index",
	33: "Binding", 34: "DescriptorSet", 35: "Offset", 36: "XfbBuffer",
	37: "XfbStride", 38: "FuncParamAttr", 39: "FPRoundingMode",
	40: "FPFastMathMode", 41: "LinkageAttributes", 42: "NoContraction",
	43: "InputAttachmentIndex", 44: "Alignment",
}

var builtInNames = map[uint32]string{
	0: "Position", 1: "PointSize", 3: "CullDistance", 4: "VertexId",
	5: "InstanceId", 6: "PrimitiveId", 7: "InvocationId", 8: "Layer",
	9: "ViewportIndex", 14: "FragCoord", 15: "PointCoord", 16: "FrontFacing",
	17: "SampleId", 18: "SamplePosition", 19: "SampleMask", 22: "FragDepth",
	23: "HelperInvocation", 24: "NumWorkgroups", 25: "WorkgroupSize",
	26: "WorkgroupId", 27: "LocalInvocationId", 28: "GlobalInvocationId",
	29: "LocalInvocationIndex", 42: "VertexIndex", 43: "InstanceIndex",
}

var executionModelNames = map[uint32]string{
	0: "Vertex", 1: "TessellationControl", 2: "TessellationEvaluation",
	3: "Geometry", 4: "Fragment", 5: "GLCompute", 6: "Kernel",
}

var executionModeNames = map[uint32]string{
	0: "Invocations", 1: "SpacingEqual", 4: "VertexOrderCw", 5: "VertexOrderCcw",
	6: "PixelCenterInteger", 7: "OriginUpperLeft", 8: "OriginLowerLeft",
	9: "EarlyFragmentTests", 12: "DepthReplacing", 17: "LocalSize",
	18: "LocalSizeHint", 31: "ContractionOff",
}

var addressingModelNames = map[uint32]string{0: "Logical", 1: "Physical32", 2: "Physical64", 5348: "PhysicalStorageBuffer64"}

var memoryModelNames = map[uint32]string{0: "Simple", 1: "GLSL450", 2: "OpenCL", 3: "Vulkan"}

var dimNames = map[uint32]string{
	0: "1D", 1: "2D", 2: "3D", 3: "Cube", 4: "Rect", 5: "Buffer", 6: "SubpassData",
}

func lookupName(m map[uint32]string, v uint32) string {
	if s, ok := m[v]; ok {
		return s
	}
	return fmt.Sprintf("%d", v)
}

// CapabilityName returns the enumerant name of a capability operand.
func CapabilityName(v uint32) string { return lookupName(capabilityNames, v) }

// StorageClassName returns the enumerant name of a storage class operand.
func StorageClassName(v uint32) string { return lookupName(storageClassNames, v) }

// DecorationName returns the enumerant name of a decoration operand.
func DecorationName(v uint32) string { return lookupName(decorationNames, v) }

// BuiltInName returns the enumerant name of a built-in operand.
func BuiltInName(v uint32) string { return lookupName(builtInNames, v) }

// ExecutionModelName returns the enumerant name of an execution model operand.
func ExecutionModelName(v uint32) string { return lookupName(executionModelNames, v) }

// ExecutionModeName returns the enumerant name of an execution mode operand.
func ExecutionModeName(v uint32) string { return lookupName(executionModeNames, v) }

// AddressingModelName returns the enumerant name of an addressing model operand.
func AddressingModelName(v uint32) string { return lookupName(addressingModelNames, v) }

// MemoryModelName returns the enumerant name of a memory model operand.
func MemoryModelName(v uint32) string { return lookupName(memoryModelNames, v) }

// DimName returns the enumerant name of an image dimensionality operand.
func DimName(v uint32) string { return lookupName(dimNames, v) }

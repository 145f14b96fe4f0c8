package spirv

import "fmt"

// OpCode represents a SPIR-V opcode.
type OpCode uint16

// Opcodes understood by the decoder and the transformations.
const (
	OpNop                            OpCode = 0
	OpUndef                          OpCode = 1
	OpSourceContinued                OpCode = 2
	OpSource                         OpCode = 3
	OpSourceExtension                OpCode = 4
	OpName                           OpCode = 5
	OpMemberName                     OpCode = 6
	OpString                         OpCode = 7
	OpLine                           OpCode = 8
	OpExtension                      OpCode = 10
	OpExtInstImport                  OpCode = 11
	OpExtInst                        OpCode = 12
	OpMemoryModel                    OpCode = 14
	OpEntryPoint                     OpCode = 15
	OpExecutionMode                  OpCode = 16
	OpCapability                     OpCode = 17
	OpTypeVoid                       OpCode = 19
	OpTypeBool                       OpCode = 20
	OpTypeInt                        OpCode = 21
	OpTypeFloat                      OpCode = 22
	OpTypeVector                     OpCode = 23
	OpTypeMatrix                     OpCode = 24
	OpTypeImage                      OpCode = 25
	OpTypeSampler                    OpCode = 26
	OpTypeSampledImage               OpCode = 27
	OpTypeArray                      OpCode = 28
	OpTypeRuntimeArray               OpCode = 29
	OpTypeStruct                     OpCode = 30
	OpTypeOpaque                     OpCode = 31
	OpTypePointer                    OpCode = 32
	OpTypeFunction                   OpCode = 33
	OpConstantTrue                   OpCode = 41
	OpConstantFalse                  OpCode = 42
	OpConstant                       OpCode = 43
	OpConstantComposite              OpCode = 44
	OpConstantSampler                OpCode = 45
	OpConstantNull                   OpCode = 46
	OpSpecConstantTrue               OpCode = 48
	OpSpecConstantFalse              OpCode = 49
	OpSpecConstant                   OpCode = 50
	OpSpecConstantComposite          OpCode = 51
	OpFunction                       OpCode = 54
	OpFunctionParameter              OpCode = 55
	OpFunctionEnd                    OpCode = 56
	OpFunctionCall                   OpCode = 57
	OpVariable                       OpCode = 59
	OpImageTexelPointer              OpCode = 60
	OpLoad                           OpCode = 61
	OpStore                          OpCode = 62
	OpCopyMemory                     OpCode = 63
	OpCopyMemorySized                OpCode = 64
	OpAccessChain                    OpCode = 65
	OpInBoundsAccessChain            OpCode = 66
	OpPtrAccessChain                 OpCode = 67
	OpArrayLength                    OpCode = 68
	OpInBoundsPtrAccessChain         OpCode = 70
	OpDecorate                       OpCode = 71
	OpMemberDecorate                 OpCode = 72
	OpDecorationGroup                OpCode = 73
	OpGroupDecorate                  OpCode = 74
	OpVectorExtractDynamic           OpCode = 77
	OpVectorInsertDynamic            OpCode = 78
	OpVectorShuffle                  OpCode = 79
	OpCompositeConstruct             OpCode = 80
	OpCompositeExtract               OpCode = 81
	OpCompositeInsert                OpCode = 82
	OpCopyObject                     OpCode = 83
	OpTranspose                      OpCode = 84
	OpSampledImage                   OpCode = 86
	OpImageSampleImplicitLod         OpCode = 87
	OpImageSampleExplicitLod         OpCode = 88
	OpImageSampleDrefImplicitLod     OpCode = 89
	OpImageSampleDrefExplicitLod     OpCode = 90
	OpImageSampleProjImplicitLod     OpCode = 91
	OpImageSampleProjExplicitLod     OpCode = 92
	OpImageSampleProjDrefImplicitLod OpCode = 93
	OpImageSampleProjDrefExplicitLod OpCode = 94
	OpImageFetch                     OpCode = 95
	OpImageGather                    OpCode = 96
	OpImageDrefGather                OpCode = 97
	OpImageRead                      OpCode = 98
	OpImageWrite                     OpCode = 99
	OpImage                          OpCode = 100
	OpImageQuerySizeLod              OpCode = 103
	OpImageQuerySize                 OpCode = 104
	OpImageQueryLod                  OpCode = 105
	OpImageQueryLevels               OpCode = 106
	OpImageQuerySamples              OpCode = 107
	OpConvertFToU                    OpCode = 109
	OpConvertFToS                    OpCode = 110
	OpConvertSToF                    OpCode = 111
	OpConvertUToF                    OpCode = 112
	OpUConvert                       OpCode = 113
	OpSConvert                       OpCode = 114
	OpFConvert                       OpCode = 115
	OpQuantizeToF16                  OpCode = 116
	OpBitcast                        OpCode = 124
	OpSNegate                        OpCode = 126
	OpFNegate                        OpCode = 127
	OpIAdd                           OpCode = 128
	OpFAdd                           OpCode = 129
	OpISub                           OpCode = 130
	OpFSub                           OpCode = 131
	OpIMul                           OpCode = 132
	OpFMul                           OpCode = 133
	OpUDiv                           OpCode = 134
	OpSDiv                           OpCode = 135
	OpFDiv                           OpCode = 136
	OpUMod                           OpCode = 137
	OpSRem                           OpCode = 138
	OpSMod                           OpCode = 139
	OpFRem                           OpCode = 140
	OpFMod                           OpCode = 141
	OpVectorTimesScalar              OpCode = 142
	OpMatrixTimesScalar              OpCode = 143
	OpVectorTimesMatrix              OpCode = 144
	OpMatrixTimesVector              OpCode = 145
	OpMatrixTimesMatrix              OpCode = 146
	OpOuterProduct                   OpCode = 147
	OpDot                            OpCode = 148
	OpIAddCarry                      OpCode = 149
	OpISubBorrow                     OpCode = 150
	OpUMulExtended                   OpCode = 151
	OpSMulExtended                   OpCode = 152
	OpAny                            OpCode = 154
	OpAll                            OpCode = 155
	OpIsNan                          OpCode = 156
	OpIsInf                          OpCode = 157
	OpIsFinite                       OpCode = 158
	OpIsNormal                       OpCode = 159
	OpSignBitSet                     OpCode = 160
	OpLessOrGreater                  OpCode = 161
	OpOrdered                        OpCode = 162
	OpUnordered                      OpCode = 163
	OpLogicalEqual                   OpCode = 164
	OpLogicalNotEqual                OpCode = 165
	OpLogicalOr                      OpCode = 166
	OpLogicalAnd                     OpCode = 167
	OpLogicalNot                     OpCode = 168
	OpSelect                         OpCode = 169
	OpIEqual                         OpCode = 170
	OpINotEqual                      OpCode = 171
	OpUGreaterThan                   OpCode = 172
	OpSGreaterThan                   OpCode = 173
	OpUGreaterThanEqual              OpCode = 174
	OpSGreaterThanEqual              OpCode = 175
	OpULessThan                      OpCode = 176
	OpSLessThan                      OpCode = 177
	OpULessThanEqual                 OpCode = 178
	OpSLessThanEqual                 OpCode = 179
	OpFOrdEqual                      OpCode = 180
	OpFUnordEqual                    OpCode = 181
	OpFOrdNotEqual                   OpCode = 182
	OpFUnordNotEqual                 OpCode = 183
	OpFOrdLessThan                   OpCode = 184
	OpFUnordLessThan                 OpCode = 185
	OpFOrdGreaterThan                OpCode = 186
	OpFUnordGreaterThan              OpCode = 187
	OpFOrdLessThanEqual              OpCode = 188
	OpFUnordLessThanEqual            OpCode = 189
	OpFOrdGreaterThanEqual           OpCode = 190
	OpFUnordGreaterThanEqual         OpCode = 191
	OpShiftRightLogical              OpCode = 194
	OpShiftRightArithmetic           OpCode = 195
	OpShiftLeftLogical               OpCode = 196
	OpBitwiseOr                      OpCode = 197
	OpBitwiseXor                     OpCode = 198
	OpBitwiseAnd                     OpCode = 199
	OpNot                            OpCode = 200
	OpBitFieldInsert                 OpCode = 201
	OpBitFieldSExtract               OpCode = 202
	OpBitFieldUExtract               OpCode = 203
	OpBitReverse                     OpCode = 204
	OpBitCount                       OpCode = 205
	OpDPdx                           OpCode = 207
	OpDPdy                           OpCode = 208
	OpFwidth                         OpCode = 209
	OpControlBarrier                 OpCode = 224
	OpMemoryBarrier                  OpCode = 225
	OpAtomicLoad                     OpCode = 227
	OpAtomicStore                    OpCode = 228
	OpAtomicExchange                 OpCode = 229
	OpAtomicCompareExchange          OpCode = 230
	OpAtomicIIncrement               OpCode = 232
	OpAtomicIDecrement               OpCode = 233
	OpAtomicIAdd                     OpCode = 234
	OpAtomicISub                     OpCode = 235
	OpAtomicSMin                     OpCode = 236
	OpAtomicUMin                     OpCode = 237
	OpAtomicSMax                     OpCode = 238
	OpAtomicUMax                     OpCode = 239
	OpAtomicAnd                      OpCode = 240
	OpAtomicOr                       OpCode = 241
	OpAtomicXor                      OpCode = 242
	OpPhi                            OpCode = 245
	OpLoopMerge                      OpCode = 246
	OpSelectionMerge                 OpCode = 247
	OpLabel                          OpCode = 248
	OpBranch                         OpCode = 249
	OpBranchConditional              OpCode = 250
	OpSwitch                         OpCode = 251
	OpKill                           OpCode = 252
	OpReturn                         OpCode = 253
	OpReturnValue                    OpCode = 254
	OpUnreachable                    OpCode = 255
	OpLifetimeStart                  OpCode = 256
	OpLifetimeStop                   OpCode = 257
	OpNoLine                         OpCode = 317
	OpModuleProcessed                OpCode = 330
	OpCopyLogical                    OpCode = 400
	OpTerminateInvocation            OpCode = 4416
)

// opInfo describes the shape of an instruction.
//
// The operand grammar covers the words following the optional result type and
// result id:
//
//	I  id
//	L  single literal word
//	W  all remaining words as one literal (constant values)
//	S  null-terminated string
//	P  (literal, id) pair, used by OpSwitch targets
//
// A token followed by '?' is optional; a token followed by '*' repeats until
// the words run out.
type opInfo struct {
	name      string
	hasType   bool
	hasResult bool
	operands  string
}

var opcodeInfo = map[OpCode]opInfo{
	OpNop:                            {"OpNop", false, false, ""},
	OpUndef:                          {"OpUndef", true, true, ""},
	OpSourceContinued:                {"OpSourceContinued", false, false, "S"},
	OpSource:                         {"OpSource", false, false, "LLI?S?"},
	OpSourceExtension:                {"OpSourceExtension", false, false, "S"},
	OpName:                           {"OpName", false, false, "IS"},
	OpMemberName:                     {"OpMemberName", false, false, "ILS"},
	OpString:                         {"OpString", false, true, "S"},
	OpLine:                           {"OpLine", false, false, "ILL"},
	OpExtension:                      {"OpExtension", false, false, "S"},
	OpExtInstImport:                  {"OpExtInstImport", false, true, "S"},
	OpExtInst:                        {"OpExtInst", true, true, "ILI*"},
	OpMemoryModel:                    {"OpMemoryModel", false, false, "LL"},
	OpEntryPoint:                     {"OpEntryPoint", false, false, "LISI*"},
	OpExecutionMode:                  {"OpExecutionMode", false, false, "IL*"},
	OpCapability:                     {"OpCapability", false, false, "L"},
	OpTypeVoid:                       {"OpTypeVoid", false, true, ""},
	OpTypeBool:                       {"OpTypeBool", false, true, ""},
	OpTypeInt:                        {"OpTypeInt", false, true, "LL"},
	OpTypeFloat:                      {"OpTypeFloat", false, true, "L"},
	OpTypeVector:                     {"OpTypeVector", false, true, "IL"},
	OpTypeMatrix:                     {"OpTypeMatrix", false, true, "IL"},
	OpTypeImage:                      {"OpTypeImage", false, true, "ILLLLLLL?"},
	OpTypeSampler:                    {"OpTypeSampler", false, true, ""},
	OpTypeSampledImage:               {"OpTypeSampledImage", false, true, "I"},
	OpTypeArray:                      {"OpTypeArray", false, true, "II"},
	OpTypeRuntimeArray:               {"OpTypeRuntimeArray", false, true, "I"},
	OpTypeStruct:                     {"OpTypeStruct", false, true, "I*"},
	OpTypeOpaque:                     {"OpTypeOpaque", false, true, "S"},
	OpTypePointer:                    {"OpTypePointer", false, true, "LI"},
	OpTypeFunction:                   {"OpTypeFunction", false, true, "II*"},
	OpConstantTrue:                   {"OpConstantTrue", true, true, ""},
	OpConstantFalse:                  {"OpConstantFalse", true, true, ""},
	OpConstant:                       {"OpConstant", true, true, "W"},
	OpConstantComposite:              {"OpConstantComposite", true, true, "I*"},
	OpConstantSampler:                {"OpConstantSampler", true, true, "LLL"},
	OpConstantNull:                   {"OpConstantNull", true, true, ""},
	OpSpecConstantTrue:               {"OpSpecConstantTrue", true, true, ""},
	OpSpecConstantFalse:              {"OpSpecConstantFalse", true, true, ""},
	OpSpecConstant:                   {"OpSpecConstant", true, true, "W"},
	OpSpecConstantComposite:          {"OpSpecConstantComposite", true, true, "I*"},
	OpFunction:                       {"OpFunction", true, true, "LI"},
	OpFunctionParameter:              {"OpFunctionParameter", true, true, ""},
	OpFunctionEnd:                    {"OpFunctionEnd", false, false, ""},
	OpFunctionCall:                   {"OpFunctionCall", true, true, "II*"},
	OpVariable:                       {"OpVariable", true, true, "LI?"},
	OpImageTexelPointer:              {"OpImageTexelPointer", true, true, "III"},
	OpLoad:                           {"OpLoad", true, true, "IL*"},
	OpStore:                          {"OpStore", false, false, "IIL*"},
	OpCopyMemory:                     {"OpCopyMemory", false, false, "IIL*"},
	OpCopyMemorySized:                {"OpCopyMemorySized", false, false, "IIIL*"},
	OpAccessChain:                    {"OpAccessChain", true, true, "II*"},
	OpInBoundsAccessChain:            {"OpInBoundsAccessChain", true, true, "II*"},
	OpPtrAccessChain:                 {"OpPtrAccessChain", true, true, "III*"},
	OpArrayLength:                    {"OpArrayLength", true, true, "IL"},
	OpInBoundsPtrAccessChain:         {"OpInBoundsPtrAccessChain", true, true, "III*"},
	OpDecorate:                       {"OpDecorate", false, false, "IL*"},
	OpMemberDecorate:                 {"OpMemberDecorate", false, false, "ILL*"},
	OpDecorationGroup:                {"OpDecorationGroup", false, true, ""},
	OpGroupDecorate:                  {"OpGroupDecorate", false, false, "I*"},
	OpVectorExtractDynamic:           {"OpVectorExtractDynamic", true, true, "II"},
	OpVectorInsertDynamic:            {"OpVectorInsertDynamic", true, true, "III"},
	OpVectorShuffle:                  {"OpVectorShuffle", true, true, "IIL*"},
	OpCompositeConstruct:             {"OpCompositeConstruct", true, true, "I*"},
	OpCompositeExtract:               {"OpCompositeExtract", true, true, "IL*"},
	OpCompositeInsert:                {"OpCompositeInsert", true, true, "IIL*"},
	OpCopyObject:                     {"OpCopyObject", true, true, "I"},
	OpTranspose:                      {"OpTranspose", true, true, "I"},
	OpSampledImage:                   {"OpSampledImage", true, true, "II"},
	OpImageSampleImplicitLod:         {"OpImageSampleImplicitLod", true, true, "IIL?I*"},
	OpImageSampleExplicitLod:         {"OpImageSampleExplicitLod", true, true, "IILI*"},
	OpImageSampleDrefImplicitLod:     {"OpImageSampleDrefImplicitLod", true, true, "IIIL?I*"},
	OpImageSampleDrefExplicitLod:     {"OpImageSampleDrefExplicitLod", true, true, "IIILI*"},
	OpImageSampleProjImplicitLod:     {"OpImageSampleProjImplicitLod", true, true, "IIL?I*"},
	OpImageSampleProjExplicitLod:     {"OpImageSampleProjExplicitLod", true, true, "IILI*"},
	OpImageSampleProjDrefImplicitLod: {"OpImageSampleProjDrefImplicitLod", true, true, "IIIL?I*"},
	OpImageSampleProjDrefExplicitLod: {"OpImageSampleProjDrefExplicitLod", true, true, "IIILI*"},
	OpImageFetch:                     {"OpImageFetch", true, true, "IIL?I*"},
	OpImageGather:                    {"OpImageGather", true, true, "IIIL?I*"},
	OpImageDrefGather:                {"OpImageDrefGather", true, true, "IIIL?I*"},
	OpImageRead:                      {"OpImageRead", true, true, "IIL?I*"},
	OpImageWrite:                     {"OpImageWrite", false, false, "IIIL?I*"},
	OpImage:                          {"OpImage", true, true, "I"},
	OpImageQuerySizeLod:              {"OpImageQuerySizeLod", true, true, "II"},
	OpImageQuerySize:                 {"OpImageQuerySize", true, true, "I"},
	OpImageQueryLod:                  {"OpImageQueryLod", true, true, "II"},
	OpImageQueryLevels:               {"OpImageQueryLevels", true, true, "I"},
	OpImageQuerySamples:              {"OpImageQuerySamples", true, true, "I"},
	OpConvertFToU:                    {"OpConvertFToU", true, true, "I"},
	OpConvertFToS:                    {"OpConvertFToS", true, true, "I"},
	OpConvertSToF:                    {"OpConvertSToF", true, true, "I"},
	OpConvertUToF:                    {"OpConvertUToF", true, true, "I"},
	OpUConvert:                       {"OpUConvert", true, true, "I"},
	OpSConvert:                       {"OpSConvert", true, true, "I"},
	OpFConvert:                       {"OpFConvert", true, true, "I"},
	OpQuantizeToF16:                  {"OpQuantizeToF16", true, true, "I"},
	OpBitcast:                        {"OpBitcast", true, true, "I"},
	OpSNegate:                        {"OpSNegate", true, true, "I"},
	OpFNegate:                        {"OpFNegate", true, true, "I"},
	OpIAdd:                           {"OpIAdd", true, true, "II"},
	OpFAdd:                           {"OpFAdd", true, true, "II"},
	OpISub:                           {"OpISub", true, true, "II"},
	OpFSub:                           {"OpFSub", true, true, "II"},
	OpIMul:                           {"OpIMul", true, true, "II"},
	OpFMul:                           {"OpFMul", true, true, "II"},
	OpUDiv:                           {"OpUDiv", true, true, "II"},
	OpSDiv:                           {"OpSDiv", true, true, "II"},
	OpFDiv:                           {"OpFDiv", true, true, "II"},
	OpUMod:                           {"OpUMod", true, true, "II"},
	OpSRem:                           {"OpSRem", true, true, "II"},
	OpSMod:                           {"OpSMod", true, true, "II"},
	OpFRem:                           {"OpFRem", true, true, "II"},
	OpFMod:                           {"OpFMod", true, true, "II"},
	OpVectorTimesScalar:              {"OpVectorTimesScalar", true, true, "II"},
	OpMatrixTimesScalar:              {"OpMatrixTimesScalar", true, true, "II"},
	OpVectorTimesMatrix:              {"OpVectorTimesMatrix", true, true, "II"},
	OpMatrixTimesVector:              {"OpMatrixTimesVector", true, true, "II"},
	OpMatrixTimesMatrix:              {"OpMatrixTimesMatrix", true, true, "II"},
	OpOuterProduct:                   {"OpOuterProduct", true, true, "II"},
	OpDot:                            {"OpDot", true, true, "II"},
	OpIAddCarry:                      {"OpIAddCarry", true, true, "II"},
	OpISubBorrow:                     {"OpISubBorrow", true, true, "II"},
	OpUMulExtended:                   {"OpUMulExtended", true, true, "II"},
	OpSMulExtended:                   {"OpSMulExtended", true, true, "II"},
	OpAny:                            {"OpAny", true, true, "I"},
	OpAll:                            {"OpAll", true, true, "I"},
	OpIsNan:                          {"OpIsNan", true, true, "I"},
	OpIsInf:                          {"OpIsInf", true, true, "I"},
	OpIsFinite:                       {"OpIsFinite", true, true, "I"},
	OpIsNormal:                       {"OpIsNormal", true, true, "I"},
	OpSignBitSet:                     {"OpSignBitSet", true, true, "I"},
	OpLessOrGreater:                  {"OpLessOrGreater", true, true, "II"},
	OpOrdered:                        {"OpOrdered", true, true, "II"},
	OpUnordered:                      {"OpUnordered", true, true, "II"},
	OpLogicalEqual:                   {"OpLogicalEqual", true, true, "II"},
	OpLogicalNotEqual:                {"OpLogicalNotEqual", true, true, "II"},
	OpLogicalOr:                      {"OpLogicalOr", true, true, "II"},
	OpLogicalAnd:                     {"OpLogicalAnd", true, true, "II"},
	OpLogicalNot:                     {"OpLogicalNot", true, true, "I"},
	OpSelect:                         {"OpSelect", true, true, "III"},
	OpIEqual:                         {"OpIEqual", true, true, "II"},
	OpINotEqual:                      {"OpINotEqual", true, true, "II"},
	OpUGreaterThan:                   {"OpUGreaterThan", true, true, "II"},
	OpSGreaterThan:                   {"OpSGreaterThan", true, true, "II"},
	OpUGreaterThanEqual:              {"OpUGreaterThanEqual", true, true, "II"},
	OpSGreaterThanEqual:              {"OpSGreaterThanEqual", true, true, "II"},
	OpULessThan:                      {"OpULessThan", true, true, "II"},
	OpSLessThan:                      {"OpSLessThan", true, true, "II"},
	OpULessThanEqual:                 {"OpULessThanEqual", true, true, "II"},
	OpSLessThanEqual:                 {"OpSLessThanEqual", true, true, "II"},
	OpFOrdEqual:                      {"OpFOrdEqual", true, true, "II"},
	OpFUnordEqual:                    {"OpFUnordEqual", true, true, "II"},
	OpFOrdNotEqual:                   {"OpFOrdNotEqual", true, true, "II"},
	OpFUnordNotEqual:                 {"OpFUnordNotEqual", true, true, "II"},
	OpFOrdLessThan:                   {"OpFOrdLessThan", true, true, "II"},
	OpFUnordLessThan:                 {"OpFUnordLessThan", true, true, "II"},
	OpFOrdGreaterThan:                {"OpFOrdGreaterThan", true, true, "II"},
	OpFUnordGreaterThan:              {"OpFUnordGreaterThan", true, true, "II"},
	OpFOrdLessThanEqual:              {"OpFOrdLessThanEqual", true, true, "II"},
	OpFUnordLessThanEqual:            {"OpFUnordLessThanEqual", true, true, "II"},
	OpFOrdGreaterThanEqual:           {"OpFOrdGreaterThanEqual", true, true, "II"},
	OpFUnordGreaterThanEqual:         {"OpFUnordGreaterThanEqual", true, true, "II"},
	OpShiftRightLogical:              {"OpShiftRightLogical", true, true, "II"},
	OpShiftRightArithmetic:           {"OpShiftRightArithmetic", true, true, "II"},
	OpShiftLeftLogical:               {"OpShiftLeftLogical", true, true, "II"},
	OpBitwiseOr:                      {"OpBitwiseOr", true, true, "II"},
	OpBitwiseXor:                     {"OpBitwiseXor", true, true, "II"},
	OpBitwiseAnd:                     {"OpBitwiseAnd", true, true, "II"},
	OpNot:                            {"OpNot", true, true, "I"},
	OpBitFieldInsert:                 {"OpBitFieldInsert", true, true, "IIII"},
	OpBitFieldSExtract:               {"OpBitFieldSExtract", true, true, "III"},
	OpBitFieldUExtract:               {"OpBitFieldUExtract", true, true, "III"},
	OpBitReverse:                     {"OpBitReverse", true, true, "I"},
	OpBitCount:                       {"OpBitCount", true, true, "I"},
	OpDPdx:                           {"OpDPdx", true, true, "I"},
	OpDPdy:                           {"OpDPdy", true, true, "I"},
	OpFwidth:                         {"OpFwidth", true, true, "I"},
	OpControlBarrier:                 {"OpControlBarrier", false, false, "III"},
	OpMemoryBarrier:                  {"OpMemoryBarrier", false, false, "II"},
	OpAtomicLoad:                     {"OpAtomicLoad", true, true, "III"},
	OpAtomicStore:                    {"OpAtomicStore", false, false, "IIII"},
	OpAtomicExchange:                 {"OpAtomicExchange", true, true, "IIII"},
	OpAtomicCompareExchange:          {"OpAtomicCompareExchange", true, true, "IIIIII"},
	OpAtomicIIncrement:               {"OpAtomicIIncrement", true, true, "III"},
	OpAtomicIDecrement:               {"OpAtomicIDecrement", true, true, "III"},
	OpAtomicIAdd:                     {"OpAtomicIAdd", true, true, "IIII"},
	OpAtomicISub:                     {"OpAtomicISub", true, true, "IIII"},
	OpAtomicSMin:                     {"OpAtomicSMin", true, true, "IIII"},
	OpAtomicUMin:                     {"OpAtomicUMin", true, true, "IIII"},
	OpAtomicSMax:                     {"OpAtomicSMax", true, true, "IIII"},
	OpAtomicUMax:                     {"OpAtomicUMax", true, true, "IIII"},
	OpAtomicAnd:                      {"OpAtomicAnd", true, true, "IIII"},
	OpAtomicOr:                       {"OpAtomicOr", true, true, "IIII"},
	OpAtomicXor:                      {"OpAtomicXor", true, true, "IIII"},
	OpPhi:                            {"OpPhi", true, true, "I*"},
	OpLoopMerge:                      {"OpLoopMerge", false, false, "IIL*"},
	OpSelectionMerge:                 {"OpSelectionMerge", false, false, "IL"},
	OpLabel:                          {"OpLabel", false, true, ""},
	OpBranch:                         {"OpBranch", false, false, "I"},
	OpBranchConditional:              {"OpBranchConditional", false, false, "IIIL*"},
	OpSwitch:                         {"OpSwitch", false, false, "IIP*"},
	OpKill:                           {"OpKill", false, false, ""},
	OpReturn:                         {"OpReturn", false, false, ""},
	OpReturnValue:                    {"OpReturnValue", false, false, "I"},
	OpUnreachable:                    {"OpUnreachable", false, false, ""},
	OpLifetimeStart:                  {"OpLifetimeStart", false, false, "IL"},
	OpLifetimeStop:                   {"OpLifetimeStop", false, false, "IL"},
	OpNoLine:                         {"OpNoLine", false, false, ""},
	OpModuleProcessed:                {"OpModuleProcessed", false, false, "S"},
	OpCopyLogical:                    {"OpCopyLogical", true, true, "I"},
	OpTerminateInvocation:            {"OpTerminateInvocation", false, false, ""},
}

// String returns the SPIR-V name of the opcode, e.g. "OpIAdd".
func (op OpCode) String() string {
	if info, ok := opcodeInfo[op]; ok {
		return info.name
	}
	return fmt.Sprintf("Op%d", uint16(op))
}

// Known reports whether the opcode is described by the grammar table.
func (op OpCode) Known() bool {
	_, ok := opcodeInfo[op]
	return ok
}

// HasResultType reports whether instructions with this opcode carry a result type id.
func (op OpCode) HasResultType() bool {
	return opcodeInfo[op].hasType
}

// HasResult reports whether instructions with this opcode define a result id.
func (op OpCode) HasResult() bool {
	return opcodeInfo[op].hasResult
}

// IsTerminator reports whether the opcode ends a basic block.
func (op OpCode) IsTerminator() bool {
	switch op {
	case OpBranch, OpBranchConditional, OpSwitch, OpReturn, OpReturnValue,
		OpUnreachable, OpKill, OpTerminateInvocation:
		return true
	}
	return false
}

// IsReturn reports whether the opcode returns from the current function.
func (op OpCode) IsReturn() bool {
	return op == OpReturn || op == OpReturnValue
}

// IsBranch reports whether the opcode transfers control to other blocks of the function.
func (op OpCode) IsBranch() bool {
	return op == OpBranch || op == OpBranchConditional || op == OpSwitch
}

// IsMerge reports whether the opcode is a structured merge annotation.
func (op OpCode) IsMerge() bool {
	return op == OpSelectionMerge || op == OpLoopMerge
}

// IsType reports whether the opcode declares a type.
func (op OpCode) IsType() bool {
	return op >= OpTypeVoid && op <= OpTypeFunction
}

// IsConstant reports whether the opcode declares a constant.
func (op OpCode) IsConstant() bool {
	switch op {
	case OpConstantTrue, OpConstantFalse, OpConstant, OpConstantComposite,
		OpConstantSampler, OpConstantNull, OpSpecConstantTrue, OpSpecConstantFalse,
		OpSpecConstant, OpSpecConstantComposite:
		return true
	}
	return false
}

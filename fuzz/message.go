package fuzz

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Message is the serialized form of a transformation: its kind and its
// constructor arguments encoded with msgpack.
type Message struct {
	Kind    string             `msgpack:"kind"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

// UInt32Pair is a serializable map entry.
type UInt32Pair struct {
	First  uint32 `msgpack:"first"`
	Second uint32 `msgpack:"second"`
}

// Transformation kinds.
const (
	KindAddBitInstructionSynonym       = "AddBitInstructionSynonym"
	KindAddConstantBoolean             = "AddConstantBoolean"
	KindAddConstantComposite           = "AddConstantComposite"
	KindAddConstantScalar              = "AddConstantScalar"
	KindAddDeadBlock                   = "AddDeadBlock"
	KindAddGlobalUndef                 = "AddGlobalUndef"
	KindAddGlobalVariable              = "AddGlobalVariable"
	KindAddImageSampleUnusedComponents = "AddImageSampleUnusedComponents"
	KindAddLocalVariable               = "AddLocalVariable"
	KindAddNoContractionDecoration     = "AddNoContractionDecoration"
	KindAddTypeBoolean                 = "AddTypeBoolean"
	KindAddTypeFloat                   = "AddTypeFloat"
	KindAddTypeFunction                = "AddTypeFunction"
	KindAddTypeInt                     = "AddTypeInt"
	KindAddTypePointer                 = "AddTypePointer"
	KindAddTypeStruct                  = "AddTypeStruct"
	KindInvertComparisonOperator       = "InvertComparisonOperator"
	KindLoad                           = "Load"
	KindMergeFunctionReturns           = "MergeFunctionReturns"
	KindMoveInstructionDown            = "MoveInstructionDown"
	KindOutlineFunction                = "OutlineFunction"
	KindPushIDThroughVariable          = "PushIdThroughVariable"
	KindReplaceParameterWithGlobal     = "ReplaceParameterWithGlobal"
	KindReplaceParamsWithStruct        = "ReplaceParamsWithStruct"
	KindSwapFunctionVariables          = "SwapFunctionVariables"
	KindSwapTwoFunctions               = "SwapTwoFunctions"
	KindWrapRegionInSelection          = "WrapRegionInSelection"
)

var registry = map[string]func() Transformation{
	KindAddBitInstructionSynonym:       func() Transformation { return new(AddBitInstructionSynonym) },
	KindAddConstantBoolean:             func() Transformation { return new(AddConstantBoolean) },
	KindAddConstantComposite:           func() Transformation { return new(AddConstantComposite) },
	KindAddConstantScalar:              func() Transformation { return new(AddConstantScalar) },
	KindAddDeadBlock:                   func() Transformation { return new(AddDeadBlock) },
	KindAddGlobalUndef:                 func() Transformation { return new(AddGlobalUndef) },
	KindAddGlobalVariable:              func() Transformation { return new(AddGlobalVariable) },
	KindAddImageSampleUnusedComponents: func() Transformation { return new(AddImageSampleUnusedComponents) },
	KindAddLocalVariable:               func() Transformation { return new(AddLocalVariable) },
	KindAddNoContractionDecoration:     func() Transformation { return new(AddNoContractionDecoration) },
	KindAddTypeBoolean:                 func() Transformation { return new(AddTypeBoolean) },
	KindAddTypeFloat:                   func() Transformation { return new(AddTypeFloat) },
	KindAddTypeFunction:                func() Transformation { return new(AddTypeFunction) },
	KindAddTypeInt:                     func() Transformation { return new(AddTypeInt) },
	KindAddTypePointer:                 func() Transformation { return new(AddTypePointer) },
	KindAddTypeStruct:                  func() Transformation { return new(AddTypeStruct) },
	KindInvertComparisonOperator:       func() Transformation { return new(InvertComparisonOperator) },
	KindLoad:                           func() Transformation { return new(Load) },
	KindMergeFunctionReturns:           func() Transformation { return new(MergeFunctionReturns) },
	KindMoveInstructionDown:            func() Transformation { return new(MoveInstructionDown) },
	KindOutlineFunction:                func() Transformation { return new(OutlineFunction) },
	KindPushIDThroughVariable:          func() Transformation { return new(PushIDThroughVariable) },
	KindReplaceParameterWithGlobal:     func() Transformation { return new(ReplaceParameterWithGlobal) },
	KindReplaceParamsWithStruct:        func() Transformation { return new(ReplaceParamsWithStruct) },
	KindSwapFunctionVariables:          func() Transformation { return new(SwapFunctionVariables) },
	KindSwapTwoFunctions:               func() Transformation { return new(SwapTwoFunctions) },
	KindWrapRegionInSelection:          func() Transformation { return new(WrapRegionInSelection) },
}

// newMessage encodes the arguments of t.
func newMessage(kind string, t Transformation) Message {
	payload, err := msgpack.Marshal(t)
	if err != nil {
		panic(fmt.Errorf("encode %s: %w", kind, err))
	}
	return Message{Kind: kind, Payload: payload}
}

// FromMessage reconstructs the transformation recorded in msg.
func FromMessage(msg Message) (Transformation, error) {
	ctor, ok := registry[msg.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown transformation kind %q", msg.Kind)
	}
	t := ctor()
	if err := msgpack.Unmarshal(msg.Payload, t); err != nil {
		return nil, fmt.Errorf("decode %s: %w", msg.Kind, err)
	}
	return t, nil
}

func pairsFromMap(m map[uint32]uint32) []UInt32Pair {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sortIDs(keys)
	pairs := make([]UInt32Pair, len(keys))
	for i, k := range keys {
		pairs[i] = UInt32Pair{First: k, Second: m[k]}
	}
	return pairs
}

func mapFromPairs(pairs []UInt32Pair) map[uint32]uint32 {
	m := make(map[uint32]uint32, len(pairs))
	for _, p := range pairs {
		m[p.First] = p.Second
	}
	return m
}

package facts

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Kind identifies the predicate of a Fact.
type Kind string

// Fact kinds.
const (
	KindBlockIsDead                Kind = "BlockIsDead"
	KindPointeeValueIsIrrelevant   Kind = "PointeeValueIsIrrelevant"
	KindIDIsIrrelevant             Kind = "IdIsIrrelevant"
	KindFunctionIsLivesafe         Kind = "FunctionIsLivesafe"
	KindValueOfVariableIsArbitrary Kind = "ValueOfVariableIsArbitrary"
	KindDataSynonym                Kind = "DataSynonym"
)

// Fact is the serialized form of one fact. ID is used by every kind except
// DataSynonym, which uses A and B.
type Fact struct {
	Kind Kind           `msgpack:"kind"`
	ID   uint32         `msgpack:"id,omitempty"`
	A    DataDescriptor `msgpack:"a"`
	B    DataDescriptor `msgpack:"b"`
}

// Add records f.
func (m *Manager) Add(f Fact) error {
	switch f.Kind {
	case KindBlockIsDead:
		m.AddFactBlockIsDead(f.ID)
	case KindPointeeValueIsIrrelevant:
		m.AddFactValueOfPointeeIsIrrelevant(f.ID)
	case KindIDIsIrrelevant:
		m.AddFactIDIsIrrelevant(f.ID)
	case KindFunctionIsLivesafe:
		m.AddFactFunctionIsLivesafe(f.ID)
	case KindValueOfVariableIsArbitrary:
		m.AddFactValueOfVariableIsArbitrary(f.ID)
	case KindDataSynonym:
		m.AddFactDataSynonym(f.A, f.B)
	default:
		return fmt.Errorf("unknown fact kind %q", f.Kind)
	}
	return nil
}

// EncodeFacts serializes facts with msgpack.
func EncodeFacts(facts []Fact) ([]byte, error) {
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(facts); err != nil {
		return nil, fmt.Errorf("encode facts: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeFacts parses facts serialized by EncodeFacts.
func DecodeFacts(data []byte) ([]Fact, error) {
	var facts []Fact
	if err := msgpack.NewDecoder(bytes.NewReader(data)).Decode(&facts); err != nil {
		return nil, fmt.Errorf("decode facts: %w", err)
	}
	return facts, nil
}

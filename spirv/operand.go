package spirv

import (
	"fmt"
	"strings"
)

// OperandKind tags the words of an operand.
type OperandKind uint8

const (
	// OperandID is a reference to a result id.
	OperandID OperandKind = iota
	// OperandLiteral is one or more literal words.
	OperandLiteral
	// OperandString is a null-terminated, word-padded UTF-8 string.
	OperandString
)

// Operand is a single logical operand of an instruction.
type Operand struct {
	Kind  OperandKind
	Words []uint32
}

// IDOperand returns an operand referencing id.
func IDOperand(id uint32) Operand {
	return Operand{Kind: OperandID, Words: []uint32{id}}
}

// LiteralOperand returns a literal operand made of the given words.
func LiteralOperand(words ...uint32) Operand {
	return Operand{Kind: OperandLiteral, Words: append([]uint32(nil), words...)}
}

// StringOperand returns a literal string operand.
func StringOperand(s string) Operand {
	return Operand{Kind: OperandString, Words: EncodeString(s)}
}

// Word returns the first word of the operand. Id operands hold exactly one word.
func (o Operand) Word() uint32 {
	return o.Words[0]
}

// Text decodes a string operand.
func (o Operand) Text() string {
	s, _ := DecodeString(o.Words)
	return s
}

// Clone returns a deep copy of the operand.
func (o Operand) Clone() Operand {
	return Operand{Kind: o.Kind, Words: append([]uint32(nil), o.Words...)}
}

// EncodeString encodes s as a null-terminated, word-padded string.
func EncodeString(s string) []uint32 {
	b := NewInstructionBuilder()
	b.AddString(s)
	return b.words
}

// DecodeString decodes a null-terminated string from words and reports how
// many words it occupied. A string without terminator consumes every word.
func DecodeString(words []uint32) (string, int) {
	var sb strings.Builder
	for i, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			c := byte(w >> shift)
			if c == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(c)
		}
	}
	return sb.String(), len(words)
}

// SplitOperands separates the words following the opcode word into the
// optional result type, the optional result id and the tagged operand list.
func SplitOperands(op OpCode, words []uint32) (typeID, resultID uint32, operands []Operand, err error) {
	info, ok := opcodeInfo[op]
	if !ok {
		return 0, 0, nil, fmt.Errorf("unsupported opcode %d", uint16(op))
	}
	pos := 0
	if info.hasType {
		if pos >= len(words) {
			return 0, 0, nil, fmt.Errorf("%s: missing result type", info.name)
		}
		typeID = words[pos]
		pos++
	}
	if info.hasResult {
		if pos >= len(words) {
			return 0, 0, nil, fmt.Errorf("%s: missing result id", info.name)
		}
		resultID = words[pos]
		pos++
	}

	grammar := info.operands
	for i := 0; i < len(grammar); i++ {
		token := grammar[i]
		modifier := byte(0)
		if i+1 < len(grammar) && (grammar[i+1] == '?' || grammar[i+1] == '*') {
			modifier = grammar[i+1]
			i++
		}
		for {
			if pos >= len(words) {
				if modifier == 0 {
					return 0, 0, nil, fmt.Errorf("%s: missing operand", info.name)
				}
				break
			}
			var consumed []Operand
			consumed, pos, err = consumeOperand(token, words, pos)
			if err != nil {
				return 0, 0, nil, fmt.Errorf("%s: %w", info.name, err)
			}
			operands = append(operands, consumed...)
			if modifier != '*' {
				break
			}
		}
	}
	// Trailing words the grammar does not describe are kept as literals so
	// that encoding reproduces the input.
	for ; pos < len(words); pos++ {
		operands = append(operands, LiteralOperand(words[pos]))
	}
	return typeID, resultID, operands, nil
}

func consumeOperand(token byte, words []uint32, pos int) ([]Operand, int, error) {
	switch token {
	case 'I':
		return []Operand{IDOperand(words[pos])}, pos + 1, nil
	case 'L':
		return []Operand{LiteralOperand(words[pos])}, pos + 1, nil
	case 'W':
		return []Operand{LiteralOperand(words[pos:]...)}, len(words), nil
	case 'S':
		_, n := DecodeString(words[pos:])
		return []Operand{{Kind: OperandString, Words: append([]uint32(nil), words[pos:pos+n]...)}}, pos + n, nil
	case 'P':
		if pos+1 >= len(words) {
			return nil, pos, fmt.Errorf("truncated literal/label pair")
		}
		return []Operand{LiteralOperand(words[pos]), IDOperand(words[pos+1])}, pos + 2, nil
	default:
		panic(fmt.Sprintf("unknown grammar token %q", token))
	}
}

package spirv

import (
	"encoding/binary"
	"fmt"
)

// Decode splits a SPIR-V binary into its header and instruction stream.
//
// Only little-endian modules are accepted; every instruction is returned with
// its opcode and the words following the opcode word.
func Decode(data []byte) (Header, []Instruction, error) {
	if len(data) < HeaderWords*4 {
		return Header{}, nil, fmt.Errorf("module too small: %d bytes", len(data))
	}
	if len(data)%4 != 0 {
		return Header{}, nil, fmt.Errorf("module size %d is not a multiple of 4", len(data))
	}

	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	if words[0] != MagicNumber {
		return Header{}, nil, fmt.Errorf("invalid SPIR-V magic: 0x%08X", words[0])
	}

	header := Header{
		Version:   VersionFromWord(words[1]),
		Generator: words[2],
		Bound:     words[3],
		Schema:    words[4],
	}

	var instructions []Instruction
	offset := HeaderWords
	for offset < len(words) {
		wordCount := int(words[offset] >> 16)
		opcode := OpCode(words[offset] & 0xFFFF)
		if wordCount == 0 || offset+wordCount > len(words) {
			return Header{}, nil, fmt.Errorf("invalid word count %d at word offset %d", wordCount, offset)
		}
		instructions = append(instructions, Instruction{
			Opcode: opcode,
			Words:  append([]uint32(nil), words[offset+1:offset+wordCount]...),
		})
		offset += wordCount
	}
	return header, instructions, nil
}

// Encode serializes a header and instruction stream to a SPIR-V binary.
func Encode(header Header, instructions []Instruction) []byte {
	totalWords := HeaderWords + countWords(instructions)
	buffer := make([]byte, totalWords*4)
	offset := 0

	binary.LittleEndian.PutUint32(buffer[offset:], MagicNumber)
	offset += 4
	binary.LittleEndian.PutUint32(buffer[offset:], versionToWord(header.Version))
	offset += 4
	binary.LittleEndian.PutUint32(buffer[offset:], header.Generator)
	offset += 4
	binary.LittleEndian.PutUint32(buffer[offset:], header.Bound)
	offset += 4
	binary.LittleEndian.PutUint32(buffer[offset:], header.Schema)
	offset += 4

	_ = writeInstructions(buffer, offset, instructions)
	return buffer
}

package fuzz

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// Sequence is an ordered transformation log.
type Sequence struct {
	Transformations []Message `msgpack:"transformations"`
}

// Append records t at the end of the sequence.
func (s *Sequence) Append(t Transformation) {
	s.Transformations = append(s.Transformations, t.ToMessage())
}

// Len returns the number of recorded transformations.
func (s *Sequence) Len() int {
	return len(s.Transformations)
}

// Encode writes the sequence to w.
func (s *Sequence) Encode(w io.Writer) error {
	if err := msgpack.NewEncoder(w).Encode(s); err != nil {
		return fmt.Errorf("encode transformation sequence: %w", err)
	}
	return nil
}

// DecodeSequence reads a sequence written by Encode.
func DecodeSequence(r io.Reader) (*Sequence, error) {
	var s Sequence
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode transformation sequence: %w", err)
	}
	return &s, nil
}

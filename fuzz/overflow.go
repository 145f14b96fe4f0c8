package fuzz

// OverflowIDSource supplies fresh ids to transformations whose own fresh id
// arguments do not cover every id they end up needing.
type OverflowIDSource interface {
	// HasOverflowIDs reports whether ids can be requested.
	HasOverflowIDs() bool
	// NextOverflowID returns an id that has not been issued before.
	NextOverflowID() uint32
	// IssuedOverflowIDs returns every id issued so far, in issue order.
	IssuedOverflowIDs() []uint32
}

// CounterOverflowIDSource issues consecutive ids starting from a fixed value.
// The starting value must be above every id the module and the pending
// transformations will ever use.
type CounterOverflowIDSource struct {
	next   uint32
	issued []uint32
}

// NewCounterOverflowIDSource returns a source whose first id is start.
func NewCounterOverflowIDSource(start uint32) *CounterOverflowIDSource {
	return &CounterOverflowIDSource{next: start}
}

// HasOverflowIDs always reports true.
func (s *CounterOverflowIDSource) HasOverflowIDs() bool { return true }

// NextOverflowID returns the next id of the sequence.
func (s *CounterOverflowIDSource) NextOverflowID() uint32 {
	id := s.next
	s.next++
	s.issued = append(s.issued, id)
	return id
}

// IssuedOverflowIDs returns the ids issued so far.
func (s *CounterOverflowIDSource) IssuedOverflowIDs() []uint32 {
	return append([]uint32(nil), s.issued...)
}

// Package facts records knowledge about a module that cannot be recovered by
// inspecting the module alone: blocks that are never executed, values that
// may be changed arbitrarily, functions that are safe to call from dead code,
// and ids known to hold equal values.
//
// Facts only accumulate. A transformation may add facts but never retracts
// one.
package facts

import (
	"fmt"
	"sort"
)

// Manager stores the facts of one fuzzing session.
type Manager struct {
	deadBlocks         map[uint32]struct{}
	irrelevantPointees map[uint32]struct{}
	irrelevantIDs      map[uint32]struct{}
	livesafeFunctions  map[uint32]struct{}
	arbitraryValues    map[uint32]struct{}
	synonyms           *equivalence
}

// NewManager creates an empty fact manager.
func NewManager() *Manager {
	return &Manager{
		deadBlocks:         make(map[uint32]struct{}),
		irrelevantPointees: make(map[uint32]struct{}),
		irrelevantIDs:      make(map[uint32]struct{}),
		livesafeFunctions:  make(map[uint32]struct{}),
		arbitraryValues:    make(map[uint32]struct{}),
		synonyms:           newEquivalence(),
	}
}

// AddFactBlockIsDead records that the block labelled id is never executed.
func (m *Manager) AddFactBlockIsDead(id uint32) { m.deadBlocks[id] = struct{}{} }

// BlockIsDead reports whether the block labelled id is known to be dead.
func (m *Manager) BlockIsDead(id uint32) bool { return has(m.deadBlocks, id) }

// AddFactValueOfPointeeIsIrrelevant records that the value pointed to by the
// pointer id may be overwritten arbitrarily.
func (m *Manager) AddFactValueOfPointeeIsIrrelevant(id uint32) { m.irrelevantPointees[id] = struct{}{} }

// PointeeValueIsIrrelevant reports whether the pointee of id is irrelevant.
func (m *Manager) PointeeValueIsIrrelevant(id uint32) bool { return has(m.irrelevantPointees, id) }

// AddFactIDIsIrrelevant records that the value of id does not influence the
// result of the module. It panics if id already takes part in a synonym.
func (m *Manager) AddFactIDIsIrrelevant(id uint32) {
	if len(m.synonyms.class(MakeDataDescriptor(id))) > 1 {
		panic(fmt.Sprintf("facts: id %d is synonymous with other data and cannot be irrelevant", id))
	}
	m.irrelevantIDs[id] = struct{}{}
}

// IDIsIrrelevant reports whether id is irrelevant.
func (m *Manager) IDIsIrrelevant(id uint32) bool { return has(m.irrelevantIDs, id) }

// AddFactFunctionIsLivesafe records that calling the function id terminates
// without undefined behaviour for any arguments.
func (m *Manager) AddFactFunctionIsLivesafe(id uint32) { m.livesafeFunctions[id] = struct{}{} }

// FunctionIsLivesafe reports whether the function id is livesafe.
func (m *Manager) FunctionIsLivesafe(id uint32) bool { return has(m.livesafeFunctions, id) }

// AddFactValueOfVariableIsArbitrary records that the variable or parameter id
// may hold an arbitrary value.
func (m *Manager) AddFactValueOfVariableIsArbitrary(id uint32) { m.arbitraryValues[id] = struct{}{} }

// VariableValueIsArbitrary reports whether id may hold an arbitrary value.
func (m *Manager) VariableValueIsArbitrary(id uint32) bool { return has(m.arbitraryValues, id) }

// AddFactDataSynonym records that a and b hold the same value. It panics if
// either object is irrelevant.
func (m *Manager) AddFactDataSynonym(a, b DataDescriptor) {
	if m.IDIsIrrelevant(a.Object) || m.IDIsIrrelevant(b.Object) {
		panic(fmt.Sprintf("facts: synonym %s = %s involves an irrelevant id", a, b))
	}
	m.synonyms.union(a, b)
}

// IsSynonymous reports whether a and b are known to hold the same value.
//
// Recorded synonyms are closed under reflexivity, symmetry and transitivity.
// In addition, if (x, p) and (y, q) are synonymous then so are (x, p·i) and
// (y, q·i) for every index i.
func (m *Manager) IsSynonymous(a, b DataDescriptor) bool {
	if m.synonyms.same(a, b) {
		return true
	}
	pa, ia, okA := a.Parent()
	pb, ib, okB := b.Parent()
	if !okA || !okB || ia != ib {
		return false
	}
	return m.IsSynonymous(pa, pb)
}

// SynonymsOf returns the recorded descriptors known to be synonymous with d,
// d itself excluded, in a deterministic order.
func (m *Manager) SynonymsOf(d DataDescriptor) []DataDescriptor {
	var out []DataDescriptor
	for _, other := range m.synonyms.class(d) {
		if !other.Equal(d) {
			out = append(out, other)
		}
	}
	return out
}

// DeadBlocks returns the dead block ids in ascending order.
func (m *Manager) DeadBlocks() []uint32 { return sortedKeys(m.deadBlocks) }

// LivesafeFunctions returns the livesafe function ids in ascending order.
func (m *Manager) LivesafeFunctions() []uint32 { return sortedKeys(m.livesafeFunctions) }

// IrrelevantPointees returns the pointers with irrelevant pointees in ascending order.
func (m *Manager) IrrelevantPointees() []uint32 { return sortedKeys(m.irrelevantPointees) }

// IrrelevantIDs returns the irrelevant ids in ascending order.
func (m *Manager) IrrelevantIDs() []uint32 { return sortedKeys(m.irrelevantIDs) }

func has(set map[uint32]struct{}, id uint32) bool {
	_, ok := set[id]
	return ok
}

func sortedKeys(set map[uint32]struct{}) []uint32 {
	keys := make([]uint32, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

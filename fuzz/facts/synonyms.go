package facts

import "sort"

// equivalence is a union-find over data descriptors.
type equivalence struct {
	parent  map[string]string
	members map[string][]DataDescriptor // keyed by class representative
	known   map[string]DataDescriptor
}

func newEquivalence() *equivalence {
	return &equivalence{
		parent:  make(map[string]string),
		members: make(map[string][]DataDescriptor),
		known:   make(map[string]DataDescriptor),
	}
}

func (e *equivalence) register(d DataDescriptor) string {
	key := d.String()
	if _, ok := e.parent[key]; !ok {
		e.parent[key] = key
		e.members[key] = []DataDescriptor{d}
		e.known[key] = d
	}
	return key
}

func (e *equivalence) find(key string) string {
	root := key
	for e.parent[root] != root {
		root = e.parent[root]
	}
	// Path compression.
	for key != root {
		next := e.parent[key]
		e.parent[key] = root
		key = next
	}
	return root
}

func (e *equivalence) union(a, b DataDescriptor) {
	ra := e.find(e.register(a))
	rb := e.find(e.register(b))
	if ra == rb {
		return
	}
	if len(e.members[ra]) < len(e.members[rb]) {
		ra, rb = rb, ra
	}
	e.parent[rb] = ra
	e.members[ra] = append(e.members[ra], e.members[rb]...)
	delete(e.members, rb)
}

func (e *equivalence) same(a, b DataDescriptor) bool {
	ka, kb := a.String(), b.String()
	if ka == kb {
		return true
	}
	if _, ok := e.parent[ka]; !ok {
		return false
	}
	if _, ok := e.parent[kb]; !ok {
		return false
	}
	return e.find(ka) == e.find(kb)
}

// class returns the recorded members of the class of d, sorted by key.
func (e *equivalence) class(d DataDescriptor) []DataDescriptor {
	key := d.String()
	if _, ok := e.parent[key]; !ok {
		return nil
	}
	members := append([]DataDescriptor(nil), e.members[e.find(key)]...)
	sort.Slice(members, func(i, j int) bool { return members[i].String() < members[j].String() })
	return members
}

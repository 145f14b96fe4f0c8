package ir

// DominatorTree is the (post-)dominator tree of a control flow graph over
// block ids.
type DominatorTree struct {
	root      uint32
	idom      map[uint32]uint32
	postorder map[uint32]int
}

// BuildDominatorTree computes immediate dominators of every node reachable from
// root following succ, using the iterative algorithm of Cooper, Harvey and
// Kennedy.
func BuildDominatorTree(root uint32, succ func(uint32) []uint32) *DominatorTree {
	t := &DominatorTree{
		root:      root,
		idom:      make(map[uint32]uint32),
		postorder: make(map[uint32]int),
	}

	// Iterative depth-first search computing the postorder and the reachable
	// predecessors of every node.
	preds := make(map[uint32][]uint32)
	visited := map[uint32]bool{root: true}
	type frame struct {
		id   uint32
		next int
	}
	var order []uint32
	stack := []frame{{id: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		s := succ(top.id)
		if top.next < len(s) {
			child := s[top.next]
			top.next++
			preds[child] = append(preds[child], top.id)
			if !visited[child] {
				visited[child] = true
				stack = append(stack, frame{id: child})
			}
			continue
		}
		t.postorder[top.id] = len(order)
		order = append(order, top.id)
		stack = stack[:len(stack)-1]
	}

	t.idom[root] = root
	for changed := true; changed; {
		changed = false
		// Reverse postorder, skipping the root.
		for k := len(order) - 2; k >= 0; k-- {
			b := order[k]
			var newIdom uint32
			found := false
			for _, p := range preds[b] {
				if _, ok := t.idom[p]; !ok {
					continue
				}
				if !found {
					newIdom, found = p, true
					continue
				}
				newIdom = t.intersect(p, newIdom)
			}
			if cur, ok := t.idom[b]; !ok || cur != newIdom {
				t.idom[b] = newIdom
				changed = true
			}
		}
	}
	return t
}

func (t *DominatorTree) intersect(a, b uint32) uint32 {
	for a != b {
		for t.postorder[a] < t.postorder[b] {
			a = t.idom[a]
		}
		for t.postorder[b] < t.postorder[a] {
			b = t.idom[b]
		}
	}
	return a
}

// Root returns the root of the tree.
func (t *DominatorTree) Root() uint32 { return t.root }

// Reachable reports whether id is in the tree.
func (t *DominatorTree) Reachable(id uint32) bool {
	_, ok := t.idom[id]
	return ok
}

// ImmediateDominator returns the immediate dominator of id. ok is false for
// the root and for nodes outside the tree.
func (t *DominatorTree) ImmediateDominator(id uint32) (idom uint32, ok bool) {
	if id == t.root {
		return 0, false
	}
	idom, ok = t.idom[id]
	return idom, ok
}

// Dominates reports whether a dominates b. Every node dominates itself; nodes
// outside the tree dominate nothing and are dominated by nothing.
func (t *DominatorTree) Dominates(a, b uint32) bool {
	if !t.Reachable(a) || !t.Reachable(b) {
		return false
	}
	for {
		if a == b {
			return true
		}
		if b == t.root {
			return false
		}
		b = t.idom[b]
	}
}

// StrictlyDominates reports whether a dominates b and a != b.
func (t *DominatorTree) StrictlyDominates(a, b uint32) bool {
	return a != b && t.Dominates(a, b)
}

// Chain returns the dominators of id from the root down to id itself.
func (t *DominatorTree) Chain(id uint32) []uint32 {
	if !t.Reachable(id) {
		return nil
	}
	var chain []uint32
	for {
		chain = append(chain, id)
		if id == t.root {
			break
		}
		id = t.idom[id]
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

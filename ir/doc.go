// Package ir defines the mutable in-memory representation of a SPIR-V module
// that spvfuzz transformations operate on.
//
// # Structure
//
// A Module holds the module-level sections of the SPIR-V logical layout
// (capabilities, extensions, imports, memory model, entry points, execution
// modes, debug instructions, annotations, and types/constants/global
// variables) plus an ordered list of Functions. A Function owns its parameters
// and an ordered list of BasicBlocks; the first block is the entry block. A
// BasicBlock owns its instructions, the last of which is a terminator.
//
// Instructions reference each other by result id only. Ids are resolved
// through the def-use index returned by Module.DefUse.
//
// # Analyses
//
// Def-use chains, predecessor lists and (post-)dominator trees are derived
// data cached on the Module. Any code that mutates the module must call
// Module.InvalidateAnalyses afterwards; accessors recompute lazily when the
// module generation moved past the one the cache was built for.
//
// # Loading
//
//	m, err := ir.Parse(data)
//	if err != nil {
//		return err
//	}
//	...
//	out := m.Encode()
//
// Validate performs the structural checks spvfuzz relies on (unique ids, id
// bound, block termination, phi predecessors, dominance of definitions over
// uses). It is not a replacement for the Khronos validator.
package ir

package fuzz

import (
	"go.uber.org/zap"

	"github.com/gogpu/spvfuzz/fuzz/facts"
)

// TransformationContext carries the session state a transformation needs in
// addition to the module: the fact manager and the optional overflow id source.
type TransformationContext struct {
	facts    *facts.Manager
	overflow OverflowIDSource
	logger   *zap.Logger
}

// NewTransformationContext creates a context. overflow may be nil, in which
// case transformations that need overflow ids are not applicable.
func NewTransformationContext(f *facts.Manager, overflow OverflowIDSource) *TransformationContext {
	if f == nil {
		f = facts.NewManager()
	}
	return &TransformationContext{
		facts:    f,
		overflow: overflow,
		logger:   Logger(),
	}
}

// WithLogger returns a copy of the context that logs to l.
func (c *TransformationContext) WithLogger(l *zap.Logger) *TransformationContext {
	cp := *c
	cp.logger = l
	return &cp
}

// Facts returns the fact manager.
func (c *TransformationContext) Facts() *facts.Manager { return c.facts }

// Logger returns the logger of the context.
func (c *TransformationContext) Logger() *zap.Logger { return c.logger }

// HasOverflowIDs reports whether overflow ids can be requested.
func (c *TransformationContext) HasOverflowIDs() bool {
	return c.overflow != nil && c.overflow.HasOverflowIDs()
}

// OverflowIDSource returns the overflow id source, or nil.
func (c *TransformationContext) OverflowIDSource() OverflowIDSource { return c.overflow }

// GetFreshID returns the next overflow id. It panics when the context has no
// overflow source: a transformation asked for an id it was never promised.
func (c *TransformationContext) GetFreshID() uint32 {
	if !c.HasOverflowIDs() {
		panic("bad attempt to query overflow id")
	}
	return c.overflow.NextOverflowID()
}

package fuzz

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gogpu/spvfuzz/fuzz/facts"
	"github.com/gogpu/spvfuzz/fuzz/fuzzerutil"
	"github.com/gogpu/spvfuzz/ir"
)

// ReplayOptions configures a Replayer.
type ReplayOptions struct {
	// InitialFacts are recorded before the first transformation.
	InitialFacts []facts.Fact
	// Overflow supplies ids to transformations that need more than they were
	// given. Nil disables overflow ids.
	Overflow OverflowIDSource
	// ValidateEachStep checks the module after every applied transformation
	// and stops at the first invalid result.
	ValidateEachStep bool
	// Logger receives per-step debug records. Defaults to Logger().
	Logger *zap.Logger
}

// ReplayResult describes the outcome of a replay.
type ReplayResult struct {
	// Applied lists the transformations that were applicable, in order.
	Applied Sequence
	// Skipped counts the transformations that were not applicable.
	Skipped int
	// Context is the context after the last transformation.
	Context *TransformationContext
}

// Replayer re-applies a recorded transformation sequence to a module.
type Replayer struct {
	opts   ReplayOptions
	logger *zap.Logger
}

// NewReplayer creates a replayer.
func NewReplayer(opts ReplayOptions) *Replayer {
	logger := opts.Logger
	if logger == nil {
		logger = Logger()
	}
	return &Replayer{opts: opts, logger: logger}
}

// Replay applies every applicable transformation of seq to m in order. m is
// modified in place.
func (r *Replayer) Replay(m *ir.Module, seq *Sequence) (*ReplayResult, error) {
	f := facts.NewManager()
	for _, fact := range r.opts.InitialFacts {
		if err := f.Add(fact); err != nil {
			return nil, fmt.Errorf("initial facts: %w", err)
		}
	}
	ctx := NewTransformationContext(f, r.opts.Overflow).WithLogger(r.logger)
	result := &ReplayResult{Context: ctx}

	for i, msg := range seq.Transformations {
		t, err := FromMessage(msg)
		if err != nil {
			return result, fmt.Errorf("transformation %d: %w", i, err)
		}
		if !t.IsApplicable(m, ctx) {
			result.Skipped++
			r.logger.Debug("transformation not applicable",
				zap.Int("index", i),
				zap.String("kind", msg.Kind),
			)
			continue
		}
		t.Apply(m, ctx)
		result.Applied.Transformations = append(result.Applied.Transformations, msg)
		r.logger.Debug("transformation applied",
			zap.Int("index", i),
			zap.String("kind", msg.Kind),
			zap.Uint32s("fresh_ids", t.FreshIDs()),
			zap.Uint32("id_bound", m.IDBound()),
		)
		if r.opts.ValidateEachStep && !fuzzerutil.IsValidAndWellFormed(m, r.logger) {
			return result, fmt.Errorf("transformation %d (%s) produced an invalid module", i, msg.Kind)
		}
	}
	return result, nil
}

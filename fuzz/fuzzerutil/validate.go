package fuzzerutil

import (
	"go.uber.org/zap"

	"github.com/gogpu/spvfuzz/ir"
)

// IsValidAndWellFormed runs the structural validator over m and logs every
// violation at warn level. A nil logger discards the messages.
func IsValidAndWellFormed(m *ir.Module, logger *zap.Logger) bool {
	if logger == nil {
		logger = zap.NewNop()
	}
	errs, err := ir.Validate(m)
	if err != nil {
		logger.Warn("validation failed", zap.Error(err))
		return false
	}
	for _, e := range errs {
		logger.Warn("invalid module",
			zap.String("message", e.Message),
			zap.Uint32("function", e.Function),
			zap.Uint32("block", e.Block))
	}
	return len(errs) == 0
}

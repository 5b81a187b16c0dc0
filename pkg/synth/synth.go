// Package synth turns a group of faces into an output shape.
package synth

import (
	"log/slog"

	"github.com/chazu/splinter/pkg/kernel"
)

// DefaultPrecision is the sewing tolerance used when none is given.
const DefaultPrecision = 1e-6

// Synthesizer builds shells and solids from face groups. It never fails:
// a group that cannot be closed comes back as a shell instead of a solid.
type Synthesizer struct {
	adapter   *kernel.Adapter
	precision float64
	logger    *slog.Logger
}

// New returns a Synthesizer sewing at precision (DefaultPrecision if <= 0).
func New(a *kernel.Adapter, precision float64, logger *slog.Logger) *Synthesizer {
	if precision <= 0 {
		precision = DefaultPrecision
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{adapter: a, precision: precision, logger: logger}
}

// Build returns a solid made of faces when they close into one, otherwise
// the shell (or, if no shell could be made, a compound) holding them.
func (s *Synthesizer) Build(faces []kernel.Shape) kernel.Shape {
	shell, err := s.adapter.CloseShell(faces, s.precision)
	if err != nil {
		s.logger.Debug("shell left open", "faces", len(faces), "error", err)
		return shell
	}
	solid, err := s.adapter.MakeSolid(shell)
	if err != nil || solid == nil {
		s.logger.Debug("solid construction failed", "faces", len(faces), "error", err)
		return shell
	}
	return solid
}

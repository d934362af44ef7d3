package compiler

import (
	"context"
	"errors"

	"github.com/Mohsinsiddi/chainsim/internal/contract"
	"github.com/Mohsinsiddi/chainsim/internal/metrics"
)

// Result is a successful compilation.
type Result struct {
	Artifact *contract.Artifact
	Warnings []Diagnostic
	Output   *Output
}

// Build compiles source with c and selects the contract called name (or
// the default one when name is empty).
func Build(ctx context.Context, c Compiler, source, name string) (*Result, error) {
	timer := metrics.NewTimer(metrics.CompileDuration)
	out, err := c.Compile(ctx, source)
	timer.Stop()
	if err != nil {
		metrics.Compilations.WithLabelValues("failure").Inc()
		return nil, err
	}
	if err := out.Check(); err != nil {
		metrics.Compilations.WithLabelValues("error").Inc()
		return nil, err
	}
	art, err := out.Select(name)
	if err != nil {
		metrics.Compilations.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.Compilations.WithLabelValues("ok").Inc()
	return &Result{Artifact: art, Warnings: out.Warnings(), Output: out}, nil
}

// IsCompileError reports whether err carries compiler diagnostics.
func IsCompileError(err error) bool {
	var e *Errors
	return errors.As(err, &e)
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vbonduro/homeinv/internal/domain"
)

// step is one sub-step of a multi-table procedure. run reports the number of
// rows it touched.
type step struct {
	name string
	run  func(ctx context.Context) (int64, error)
}

// single adapts a one-row store call into a step.
func single(name string, fn func(ctx context.Context) error) step {
	return step{name: name, run: func(ctx context.Context) (int64, error) {
		if err := fn(ctx); err != nil {
			return 0, err
		}
		return 1, nil
	}}
}

// runSteps executes steps in order and stops at the first failure. Steps that
// already ran are not undone.
func runSteps(ctx context.Context, logger *slog.Logger, procedure string, attrs []any, steps []step) error {
	logger.Info(procedure+" started", attrs...)
	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", procedure, err)
		}
		n, err := st.run(ctx)
		if err != nil {
			logger.Error(procedure+" step failed", append(attrs, "step", st.name, "error", err)...)
			return fmt.Errorf("%s: %s: %w", procedure, st.name, err)
		}
		logger.Debug(procedure+" step complete", append(attrs, "step", st.name, "rows", n)...)
	}
	logger.Info(procedure+" complete", attrs...)
	return nil
}

func requireName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s name is empty: %w", kind, domain.ErrInvalid)
	}
	return nil
}

func notFound(kind, name string) error {
	return fmt.Errorf("%s %q: %w", kind, name, domain.ErrNotFound)
}

func conflict(kind, name string) error {
	return fmt.Errorf("%s %q already exists: %w", kind, name, domain.ErrConflict)
}

package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hyceate/moody-sub000/internal/pkg/metrics"
)

// step is one write of a multi-step mutation. undo, when set, reverts a
// completed do.
type step struct {
	name string
	do   func(ctx context.Context) error
	undo func(ctx context.Context) error
}

// saga runs steps in order. When a step fails, the undo of every completed
// step runs in reverse order and the first failure is returned.
type saga struct {
	name  string
	steps []step
	log   zerolog.Logger
}

func newSaga(name string, log zerolog.Logger) *saga {
	return &saga{name: name, log: log}
}

func (s *saga) add(name string, do, undo func(ctx context.Context) error) {
	s.steps = append(s.steps, step{name: name, do: do, undo: undo})
}

func (s *saga) run(ctx context.Context) error {
	for i, st := range s.steps {
		if err := st.do(ctx); err != nil {
			s.compensate(ctx, i)
			return fmt.Errorf("%s: %s: %w", s.name, st.name, err)
		}
	}
	return nil
}

// compensate reverts steps [0, failed). A compensation that fails is logged
// and the remaining ones still run.
func (s *saga) compensate(ctx context.Context, failed int) {
	if failed == 0 {
		return
	}
	result := "ok"
	for i := failed - 1; i >= 0; i-- {
		st := s.steps[i]
		if st.undo == nil {
			continue
		}
		if err := st.undo(context.WithoutCancel(ctx)); err != nil {
			result = "failed"
			s.log.Error().Err(err).
				Str("saga", s.name).
				Str("step", st.name).
				Msg("compensation failed, pin/board references may be inconsistent")
		}
	}
	metrics.SagaCompensationsTotal.WithLabelValues(s.name, result).Inc()
	s.log.Warn().Str("saga", s.name).Str("result", result).Msg("saga compensated")
}

// addWhen appends a step whose do only runs when cond holds at execution time.
// Its undo only runs when do ran.
func (s *saga) addWhen(name string, cond func() bool, do, undo func(ctx context.Context) error) {
	var ran bool
	s.add(name,
		func(ctx context.Context) error {
			if !cond() {
				return nil
			}
			ran = true
			return do(ctx)
		},
		func(ctx context.Context) error {
			if !ran || undo == nil {
				return nil
			}
			return undo(ctx)
		},
	)
}

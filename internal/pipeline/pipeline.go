// Package pipeline provides the generic step composition mechanism the
// orchestrators are built from. Steps are plain functions threaded
// through a shared per-run context; combinators never swallow errors,
// partial-failure policy belongs to the business steps.
package pipeline

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// Step is a named async transformation from In to Out.
type Step[In, Out any] struct {
	Name string
	Run  func(ctx context.Context, pc *Context, in In) (Out, error)
}

// New creates a named step.
func New[In, Out any](name string, run func(ctx context.Context, pc *Context, in In) (Out, error)) Step[In, Out] {
	return Step[In, Out]{Name: name, Run: run}
}

// exec runs the step with entry/exit logging through the context logger.
func (s Step[In, Out]) exec(ctx context.Context, pc *Context, in In) (Out, error) {
	log := pc.StepLogger(s.Name)
	log.Debug("step started")

	out, err := s.Run(ctx, pc, in)
	if err != nil {
		log.WithError(err).Debug("step failed")
		return out, err
	}

	log.Debug("step finished")
	return out, nil
}

// Pipe composes two steps sequentially; the first step's output feeds
// the second. Compose repeatedly for longer chains.
func Pipe[A, B, C any](first Step[A, B], second Step[B, C]) Step[A, C] {
	return Step[A, C]{
		Name: first.Name + "|" + second.Name,
		Run: func(ctx context.Context, pc *Context, in A) (C, error) {
			mid, err := first.exec(ctx, pc, in)
			if err != nil {
				var zero C
				return zero, err
			}
			return second.exec(ctx, pc, mid)
		},
	}
}

// Map lifts a step over a slice, running the per-element invocations
// concurrently with the same context. Concurrency is bounded by the
// context's worker count; results come back in input order. An element
// failure does not cancel its siblings, which run to completion.
func Map[In, Out any](s Step[In, Out]) Step[[]In, []Out] {
	return Step[[]In, []Out]{
		Name: "map(" + s.Name + ")",
		Run: func(ctx context.Context, pc *Context, ins []In) ([]Out, error) {
			outs := make([]Out, len(ins))

			var g errgroup.Group
			g.SetLimit(pc.workerLimit())
			for i, in := range ins {
				i, in := i, in
				g.Go(func() error {
					out, err := s.exec(ctx, pc, in)
					if err != nil {
						return err
					}
					outs[i] = out
					return nil
				})
			}

			if err := g.Wait(); err != nil {
				return nil, err
			}
			return outs, nil
		},
	}
}

// Pair holds the joined outputs of two parallel branches.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple holds the joined outputs of three parallel branches.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// Parallel2 runs both branches concurrently against the same input and
// context, waits for both (join, not race) and returns their outputs.
// A branch failure never cancels the other branch.
func Parallel2[In, A, B any](first Step[In, A], second Step[In, B]) Step[In, Pair[A, B]] {
	return Step[In, Pair[A, B]]{
		Name: "parallel(" + first.Name + "," + second.Name + ")",
		Run: func(ctx context.Context, pc *Context, in In) (Pair[A, B], error) {
			var out Pair[A, B]
			var errFirst, errSecond error

			done := make(chan struct{}, 2)
			go func() {
				out.First, errFirst = first.exec(ctx, pc, in)
				done <- struct{}{}
			}()
			go func() {
				out.Second, errSecond = second.exec(ctx, pc, in)
				done <- struct{}{}
			}()
			<-done
			<-done

			return out, errors.Join(errFirst, errSecond)
		},
	}
}

// Parallel3 is Parallel2 for three branches.
func Parallel3[In, A, B, C any](first Step[In, A], second Step[In, B], third Step[In, C]) Step[In, Triple[A, B, C]] {
	return Step[In, Triple[A, B, C]]{
		Name: "parallel(" + first.Name + "," + second.Name + "," + third.Name + ")",
		Run: func(ctx context.Context, pc *Context, in In) (Triple[A, B, C], error) {
			var out Triple[A, B, C]
			var errFirst, errSecond, errThird error

			done := make(chan struct{}, 3)
			go func() {
				out.First, errFirst = first.exec(ctx, pc, in)
				done <- struct{}{}
			}()
			go func() {
				out.Second, errSecond = second.exec(ctx, pc, in)
				done <- struct{}{}
			}()
			go func() {
				out.Third, errThird = third.exec(ctx, pc, in)
				done <- struct{}{}
			}()
			<-done
			<-done
			<-done

			return out, errors.Join(errFirst, errSecond, errThird)
		},
	}
}

// Run executes a composed pipeline from its entrypoint. Any error
// escaping the composition is logged here and returned to the caller;
// nothing below this boundary swallows it.
func Run[In, Out any](ctx context.Context, pc *Context, s Step[In, Out], in In) (Out, error) {
	log := pc.StepLogger(s.Name)
	log.Info("pipeline started")

	out, err := s.exec(ctx, pc, in)
	if err != nil {
		log.WithError(err).Error("pipeline failed")
		return out, err
	}

	log.Info("pipeline finished")
	return out, nil
}

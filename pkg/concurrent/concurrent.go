package concurrent

import (
	"context"
	"iter"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers returns n when it is positive and GOMAXPROCS otherwise.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// Map applies fn to every element of in on at most workers goroutines and
// returns the results in input order. The first error cancels the context
// passed to the remaining calls and is returned.
func Map[T any, R any](ctx context.Context, in []T, workers int, fn func(context.Context, T) (R, error)) ([]R, error) {
	out := make([]R, len(in))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(Workers(workers))

	for idx, val := range in {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := fn(ctx, val)
			if err != nil {
				return err
			}
			out[idx] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Each runs action for every element of seq on at most workers goroutines.
// It waits for all of them and returns the first error encountered.
func Each[T any](ctx context.Context, seq iter.Seq[T], workers int, action func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(Workers(workers))

	for value := range seq {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return action(gctx, value)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

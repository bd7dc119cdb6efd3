// ABOUTME: Bounded fan-out of independent jobs over an errgroup
// ABOUTME: Each job owns its own input; one failure does not cancel the others

package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result pairs an item with the error its job returned.
type Result[T any] struct {
	Item T
	Err  error
}

// Run calls fn for every item with at most workers concurrent calls and
// returns results in item order. Items not yet started when ctx is done
// report ctx.Err().
func Run[T any](ctx context.Context, items []T, workers int, fn func(context.Context, T) error) []Result[T] {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result[T], len(items))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, item := range items {
		results[i].Item = item
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Err = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Failed returns the results that carry an error.
func Failed[T any](results []Result[T]) []Result[T] {
	var out []Result[T]
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

package scenario

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Batch evaluates every input with eval using up to workers goroutines.
// out[i] always holds the result for inputs[i]. Evaluations are independent,
// so the order in which they run carries no meaning.
func Batch[I, O any](ctx context.Context, eval Evaluator[I, O], inputs []I, workers int) ([]O, error) {
	out := make([]O, len(inputs))
	if len(inputs) == 0 {
		return out, nil
	}

	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range inputs {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = eval.Evaluate(inputs[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

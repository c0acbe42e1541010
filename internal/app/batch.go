package app

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/cotizador/internal/brief"
	"github.com/hyperifyio/cotizador/internal/classify"
)

// BatchResult is the classification of one file in a batch. Error is set
// instead of the weights when the file could not be read.
type BatchResult struct {
	Path    string                     `json:"path"`
	Weights classify.Weights           `json:"weights,omitempty"`
	Levels  map[classify.Module]string `json:"levels,omitempty"`
	Reasons []string                   `json:"reasons,omitempty"`
	Error   string                     `json:"error,omitempty"`
}

// ClassifyBatch classifies every path concurrently and returns results in
// input order. Per-file failures are reported in the result; only context
// cancellation aborts the batch.
func (a *App) ClassifyBatch(ctx context.Context, paths []string, concurrency int) ([]BatchResult, error) {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	out := make([]BatchResult, len(paths))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for i, p := range paths {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			res := BatchResult{Path: p}
			b, err := brief.Load(p)
			if err != nil {
				res.Error = err.Error()
				out[i] = res
				return nil
			}
			c := a.Classify(b.Text)
			res.Weights = c.Weights
			res.Levels = c.Weights.Levels()
			res.Reasons = c.Reasons
			out[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Package batch fans a list of independent items out over a bounded worker
// pool and collects one result per input index.
//
// Items are isolated from each other: a failing or panicking item is
// reported at its own index and never affects its siblings. Admission to
// the shared execution slots is the job of the per-item function.
package batch

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/ironsheep/image-edit-mcp/internal/apperrors"
)

// ItemResult is the outcome of one batch element.
type ItemResult struct {
	Index   int    `json:"index"`
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Report holds the results of a batch, ordered by input index.
type Report struct {
	Results   []ItemResult `json:"results"`
	Succeeded int          `json:"successful"`
	Failed    int          `json:"failed"`
}

// Func processes item i.
type Func func(ctx context.Context, i int) (any, error)

// Coordinator runs batches with at most Workers items in flight.
type Coordinator struct {
	workers int
}

// New creates a coordinator. A non-positive workers runs one item at a
// time.
func New(workers int) *Coordinator {
	if workers <= 0 {
		workers = 1
	}
	return &Coordinator{workers: workers}
}

// Run calls fn for every index in [0, n) and waits for all of them. The
// returned error is non-nil only when n is zero; per-item failures are
// reported in the Report.
func (c *Coordinator) Run(ctx context.Context, n int, fn Func) (*Report, error) {
	if n <= 0 {
		return nil, apperrors.ValidationWrap("image_sources", apperrors.ErrEmptyBatch)
	}

	results := make([]ItemResult, n)
	p := pool.New().WithMaxGoroutines(c.workers)
	for i := 0; i < n; i++ {
		p.Go(func() {
			// Each goroutine writes only its own slot.
			results[i] = runItem(ctx, i, fn)
		})
	}
	p.Wait()

	report := &Report{Results: results}
	for _, r := range results {
		if r.Success {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	return report, nil
}

func runItem(ctx context.Context, i int, fn Func) (res ItemResult) {
	res.Index = i
	defer func() {
		if r := recover(); r != nil {
			res = ItemResult{Index: i, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		return res
	}
	out, err := fn(ctx, i)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Success = true
	res.Result = out
	return res
}

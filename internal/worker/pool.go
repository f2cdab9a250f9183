package worker

import (
	"context"
	"sync"

	"github.com/dmarchante/relvet/internal/model"
)

// VerifyFunc checks one record against the verification service. It
// must not return a Go error: transport failures map to an outcome with
// the error verdict.
type VerifyFunc func(ctx context.Context, rec model.Record) model.Outcome

// Pool runs the verification calls for one batch concurrently. Workers
// only compute outcomes; the caller consumes the result slice on its
// own goroutine, so checkpoint mutation stays single-writer.
type Pool struct {
	workers int
}

// NewPool creates a pool with the given number of workers.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Run verifies every record in the batch and returns outcomes in input
// order. Cancellation is cooperative: jobs already dispatched run to
// completion (the verify function sees the cancelled context and
// returns an error outcome quickly), so the batch always resolves.
func (p *Pool) Run(ctx context.Context, batch []model.Record, verify VerifyFunc) []model.Outcome {
	if len(batch) == 0 {
		return []model.Outcome{}
	}

	workers := p.workers
	if workers > len(batch) {
		workers = len(batch)
	}

	outcomes := make([]model.Outcome, len(batch))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				outcomes[idx] = verify(ctx, batch[idx])
			}
		}()
	}

	for i := range batch {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

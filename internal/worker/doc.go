// Package worker provides a goroutine pool for running independent
// Monte Carlo iterations concurrently.
//
// Each job receives the pool's context. Wait blocks until every submitted
// job has finished, which lets a caller fan out a fixed batch of
// iterations and then collect their results.
//
// # Basic Usage
//
//	pool := worker.NewPool(4)
//	pool.Start(ctx)
//	defer pool.Stop()
//
//	for i := range iterations {
//	    pool.Submit(func(ctx context.Context) {
//	        results[i] = runIteration(ctx, seeds[i])
//	    })
//	}
//	pool.Wait()
//
// # Cancellation
//
// Cancelling the context passed to Start stops workers after their current
// job. Jobs still queued are discarded and Wait returns.
package worker

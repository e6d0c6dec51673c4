// Package worker runs recognition requests with bounded parallelism: a pool
// of goroutines drains a task channel, so at most Size requests are ever in
// flight. A failed file yields a Result carrying the error, never a stalled
// pipeline.
package worker

import (
	"context"
	"sync"

	"github.com/andresmejia3/facebatch/internal/logging"
	"github.com/andresmejia3/facebatch/internal/types"
)

// Recognizer is the one call the pool makes per file.
type Recognizer interface {
	Recognize(ctx context.Context, filePath string) (*types.RecognitionResponse, error)
}

// Pool dispatches files to a Recognizer with a fixed concurrency bound.
type Pool struct {
	rec  Recognizer
	size int
}

// NewPool builds a pool of size workers. Size below 1 is clamped to 1.
func NewPool(rec Recognizer, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{rec: rec, size: size}
}

// Size returns the concurrency bound.
func (p *Pool) Size() int {
	return p.size
}

// Run processes files and streams per-file Results on the returned channel,
// which is closed once every dispatched task has completed. Cancelling ctx
// stops dispatching new files and aborts in-flight requests; files that were
// never dispatched produce no Result at all.
func (p *Pool) Run(ctx context.Context, files []string) <-chan types.Result {
	tasks := make(chan types.Task)
	results := make(chan types.Result, p.size)

	var wg sync.WaitGroup
	for i := 0; i < p.size; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for task := range tasks {
				resp, err := p.rec.Recognize(ctx, task.FilePath)
				if err != nil {
					logging.Debugf("worker %d: %s failed: %v", workerID, task.FilePath, err)
				}
				results <- types.Result{FilePath: task.FilePath, Resp: resp, Err: err}
			}
		}(i)
	}

	// Feeder: stops on cancellation so the drain phase only waits on
	// requests that are already in flight.
	go func() {
		defer close(tasks)
		for _, f := range files {
			select {
			case tasks <- types.Task{FilePath: f}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

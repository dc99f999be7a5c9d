package util

import (
	"context"
	"sync"
)

// Parallel runs fn over inputs with at most workerLimit concurrent calls,
// stopping early on the first error or when ctx is cancelled. The first
// error encountered is returned.
func Parallel[T any](ctx context.Context, inputs []T, workerLimit int, fn func(context.Context, T) error) error {
	if len(inputs) == 0 {
		return nil
	}
	if workerLimit <= 0 {
		workerLimit = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, workerLimit)
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for _, item := range inputs {
		select {
		case <-ctx.Done():
		case sem <- struct{}{}:
			wg.Add(1)
			go func(item T) {
				defer wg.Done()
				defer func() { <-sem }()

				if err := fn(ctx, item); err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
				}
			}(item)
		}
		if ctx.Err() != nil {
			break
		}
	}

	wg.Wait()
	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

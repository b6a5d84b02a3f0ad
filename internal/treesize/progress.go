package treesize

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// progress counts files and bytes recorded across all units.
// It is observability only and never feeds back into the result.
type progress struct {
	files atomic.Int64
	bytes atomic.Int64
}

// add records one file of the given size. A nil progress is a no-op.
func (p *progress) add(size int64) {
	if p == nil {
		return
	}

	p.files.Add(1)
	p.bytes.Add(size)
}

// startProgressReporter invokes hook(files, bytes) on each tick until the
// returned stop function is called or ctx is done. Stop waits for the
// reporter to exit and then calls hook once more with the final counts, so
// no hook call happens after stop returns. Stop is safe to call repeatedly.
func startProgressReporter(ctx context.Context, p *progress, hook func(int64, int64), interval time.Duration) (stop func()) {
	if hook == nil {
		return func() {}
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)
	quit := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(p.files.Load(), p.bytes.Load())
			case <-quit:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	var once sync.Once

	return func() {
		once.Do(func() {
			close(quit)
			<-done

			hook(p.files.Load(), p.bytes.Load())
		})
	}
}

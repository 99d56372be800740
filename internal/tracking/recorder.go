package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nyumba-homes/marketplace/internal/logger"
)

const recordTimeout = 10 * time.Second

// Recorder runs best-effort tracking work off the request path. Failures are
// logged and dropped.
type Recorder struct {
	log   *logger.Logger
	wg    sync.WaitGroup
	delay time.Duration

	mu     sync.Mutex
	closed bool
}

// NewRecorder creates a Recorder that waits delay before each job.
func NewRecorder(delay time.Duration, log *logger.Logger) *Recorder {
	return &Recorder{log: log.Component("tracking"), delay: delay}
}

// Go schedules fn. The job keeps the values of ctx but not its cancellation,
// so it survives the request that scheduled it. Jobs scheduled after Wait
// has been called are dropped.
func (r *Recorder) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.log.Debug("Tracking job dropped after shutdown", map[string]interface{}{"job": name})
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	jobCtx := context.WithoutCancel(ctx)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error("Tracking job panicked", fmt.Errorf("%v", rec), map[string]interface{}{"job": name})
			}
		}()

		if r.delay > 0 {
			time.Sleep(r.delay)
		}

		ctx, cancel := context.WithTimeout(jobCtx, recordTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			r.log.Warn("Tracking failed", map[string]interface{}{
				"job":   name,
				"error": err.Error(),
			})
		}
	}()
}

// Wait stops accepting jobs and blocks until every scheduled job has
// finished.
func (r *Recorder) Wait() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.wg.Wait()
}

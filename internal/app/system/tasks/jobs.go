// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrShuttingDown is returned by Go once Shutdown has begun.
var ErrShuttingDown = errors.New("background jobs are shutting down")

// Job is one unit of background work started on behalf of a request, such as
// waiting for a transaction to be mined after the response has been sent.
type Job struct {
	Name    string
	Timeout time.Duration // zero means no deadline beyond shutdown
	Run     func(ctx context.Context) error
}

// Tracker runs jobs in their own goroutines and lets shutdown wait for them.
type Tracker struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger

	mu     sync.Mutex
	closed bool
	active int
	wg     sync.WaitGroup
}

// NewTracker creates a Tracker. Job contexts are detached from request
// contexts and canceled only by Shutdown.
func NewTracker(logger *zap.Logger) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Tracker{ctx: ctx, cancel: cancel, log: logger}
}

// Go starts job. It fails with ErrShuttingDown after Shutdown was called.
func (t *Tracker) Go(job Job) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrShuttingDown
	}
	t.active++
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer func() {
			t.mu.Lock()
			t.active--
			t.mu.Unlock()
			t.wg.Done()
		}()

		ctx := t.ctx
		if job.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, job.Timeout)
			defer cancel()
		}

		start := time.Now()
		if err := job.Run(ctx); err != nil {
			t.log.Warn("background job failed",
				zap.String("job", job.Name),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
			return
		}
		t.log.Debug("background job done",
			zap.String("job", job.Name),
			zap.Duration("elapsed", time.Since(start)))
	}()
	return nil
}

// Active returns the number of running jobs.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Shutdown stops accepting jobs and waits for running ones. If ctx expires
// first, running jobs are canceled and ctx's error is returned.
func (t *Tracker) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.cancel()
		return nil
	case <-ctx.Done():
		t.cancel()
		<-done
		return ctx.Err()
	}
}

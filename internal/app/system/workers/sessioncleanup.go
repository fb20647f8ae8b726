// internal/app/system/workers/sessioncleanup.go
package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Evicter drops sessions that have been idle too long.
type Evicter interface {
	EvictIdle(maxIdle time.Duration) int
}

// SessionCleanup is a background worker that evicts idle dashboard sessions,
// closing their controllers and forgetting any in-memory keys.
type SessionCleanup struct {
	sessions    Evicter
	log         *zap.Logger
	interval    time.Duration
	idleTimeout time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewSessionCleanup creates a new session cleanup worker.
//
// Parameters:
//   - sessions: the session registry
//   - logger: zap logger for logging
//   - interval: how often to run cleanup (e.g., 1 minute)
//   - idleTimeout: how long a session may go unseen before eviction (e.g., 30 minutes)
func NewSessionCleanup(sessions Evicter, logger *zap.Logger, interval, idleTimeout time.Duration) *SessionCleanup {
	return &SessionCleanup{
		sessions:    sessions,
		log:         logger,
		interval:    interval,
		idleTimeout: idleTimeout,
		stopCh:      make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *SessionCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("session cleanup worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("idle_timeout", w.idleTimeout))
}

// Stop signals the worker to stop and waits for it to finish. It is safe to
// call more than once.
func (w *SessionCleanup) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("session cleanup worker stopped")
	})
}

func (w *SessionCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *SessionCleanup) cleanup() {
	if n := w.sessions.EvictIdle(w.idleTimeout); n > 0 {
		w.log.Info("evicted idle sessions", zap.Int("count", n))
	}
}

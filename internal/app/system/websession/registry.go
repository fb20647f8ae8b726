// internal/app/system/websession/registry.go
package websession

import (
	"sync"
	"time"

	"github.com/dalemusser/tokenvote/internal/app/system/controller"
	"github.com/dalemusser/tokenvote/internal/app/system/metrics"
	"go.uber.org/zap"
)

// Factory builds the controller for a new session.
type Factory func(sessionID string) *controller.Controller

type entry struct {
	ctrl     *controller.Controller
	lastSeen time.Time
}

// Registry maps session ids to live controllers. Signing keys held by a
// controller never leave process memory and are dropped on eviction.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	factory Factory
	now     func() time.Time
	log     *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(factory Factory, logger *zap.Logger) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		factory: factory,
		now:     time.Now,
		log:     logger,
	}
}

// Get returns the controller for id, creating it on first use, and marks the
// session active.
func (r *Registry) Get(id string) *controller.Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		e = &entry{ctrl: r.factory(id)}
		r.entries[id] = e
		metrics.SetLiveSessions(len(r.entries))
		r.log.Debug("session controller created", zap.String("session", id))
	}
	e.lastSeen = r.now()
	return e.ctrl
}

// Lookup returns the controller for id without creating one.
func (r *Registry) Lookup(id string) (*controller.Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.ctrl, true
}

// Touch marks id active. It reports whether the session exists.
func (r *Registry) Touch(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if ok {
		e.lastSeen = r.now()
	}
	return ok
}

// EvictIdle closes and removes controllers not seen for maxIdle. It returns
// the number evicted.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var idle []*controller.Controller
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			idle = append(idle, e.ctrl)
			delete(r.entries, id)
		}
	}
	metrics.SetLiveSessions(len(r.entries))
	r.mu.Unlock()

	for _, c := range idle {
		c.Close()
	}
	return len(idle)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close closes every controller.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.entries
	r.entries = make(map[string]*entry)
	metrics.SetLiveSessions(0)
	r.mu.Unlock()

	for _, e := range all {
		e.ctrl.Close()
	}
}

// internal/app/system/display/store.go
package display

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Ticket orders writes to one field. Tickets are issued before the external
// call that produces the value, so a response is compared against the
// request order rather than the arrival order.
type Ticket struct {
	field Field
	seq   uint64
}

type update struct {
	ticket Ticket
	apply  func(*Snapshot)
	err    error
	done   chan bool
}

// Store owns the current Snapshot. All writes go through one queue drained
// by a single goroutine; each write copies the snapshot, mutates the copy
// and publishes it atomically. Reads never block.
type Store struct {
	cur     atomic.Pointer[Snapshot]
	seq     atomic.Uint64
	queue   chan update
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
	now     func() time.Time
	log     *zap.Logger
}

// NewStore starts a Store with an empty snapshot.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		queue:   make(chan update),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
		now:     time.Now,
		log:     logger,
	}
	s.cur.Store(&Snapshot{applied: make(map[Field]uint64)})
	go s.run()
	return s
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.cur.Load()
}

// Begin issues a ticket for a write to f. Call it before starting the
// request whose result will be written.
func (s *Store) Begin(f Field) Ticket {
	return Ticket{field: f, seq: s.seq.Add(1)}
}

// Apply runs fn against a copy of the current snapshot and publishes it,
// unless a newer ticket has already written t's field. It returns false
// when the write was discarded as stale or the store is closed.
// A successful Apply clears the field's recorded error.
func (s *Store) Apply(t Ticket, fn func(*Snapshot)) bool {
	return s.submit(update{ticket: t, apply: fn})
}

// Fail records err against t's field, with the same staleness rule as
// Apply.
func (s *Store) Fail(t Ticket, err error) bool {
	if err == nil {
		return false
	}
	return s.submit(update{ticket: t, err: err})
}

// Set is Apply with a fresh ticket, for writes that must always win.
func (s *Store) Set(f Field, fn func(*Snapshot)) bool {
	return s.Apply(s.Begin(f), fn)
}

// Close stops the update goroutine. Later writes are dropped.
func (s *Store) Close() {
	s.once.Do(func() {
		close(s.stop)
		<-s.stopped
	})
}

func (s *Store) submit(u update) bool {
	u.done = make(chan bool, 1)
	select {
	case s.queue <- u:
	case <-s.stop:
		return false
	}
	return <-u.done
}

func (s *Store) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.stop:
			return
		case u := <-s.queue:
			u.done <- s.apply(u)
		}
	}
}

func (s *Store) apply(u update) bool {
	cur := s.cur.Load()
	f := u.ticket.field
	if last := cur.applied[f]; u.ticket.seq < last {
		s.log.Debug("dropping stale display update",
			zap.String("field", string(f)),
			zap.Uint64("ticket", u.ticket.seq),
			zap.Uint64("applied", last))
		return false
	}

	next := cur.clone()
	if u.err != nil {
		next.setError(f, u.err.Error())
	} else {
		next.clearError(f)
		if u.apply != nil {
			u.apply(next)
		}
	}
	next.applied[f] = u.ticket.seq
	next.Version = cur.Version + 1
	next.UpdatedAt = s.now().UTC()
	s.cur.Store(next)
	return true
}

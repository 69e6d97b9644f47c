package profile

import (
	"context"
	"log"
	"sync"
	"time"
)

// Saver debounces profile writes: each Mark replaces the user's pending
// blob and re-arms a quiet-period timer, so a burst of rapid mutations
// coalesces into one store write (last write wins). Write failures are
// logged and never retried or surfaced; the in-memory state stays the
// source of truth for the session and the next Mark reconciles durably.
type Saver struct {
	store Store
	delay time.Duration
	log   *log.Logger

	mu       sync.Mutex
	pending  map[string][]byte
	timers   map[string]*time.Timer
	inflight map[string]bool
	closed   bool

	wg sync.WaitGroup

	// observed counts store writes per user; used for snapshot cadence
	// and tests.
	observed func(userID string, writes int)
	writes   map[string]int
}

func NewSaver(store Store, delay time.Duration, logger *log.Logger) *Saver {
	return &Saver{
		store:    store,
		delay:    delay,
		log:      logger,
		pending:  map[string][]byte{},
		timers:   map[string]*time.Timer{},
		inflight: map[string]bool{},
		writes:   map[string]int{},
	}
}

// OnWrite registers a callback invoked after each successful store write
// with the user's cumulative write count. Used for snapshot export
// cadence. Must be set before the first Mark.
func (s *Saver) OnWrite(fn func(userID string, writes int)) {
	s.observed = fn
}

// Mark schedules blob for writing after the quiet period. Safe for
// concurrent use; callers hand over ownership of blob.
func (s *Saver) Mark(userID string, blob []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.pending[userID] = blob

	// Replace any armed timer instead of resetting it: every AfterFunc
	// fires at most once, so each wg.Add pairs with exactly one Done
	// (here on a successful Stop, otherwise in the callback).
	if t, ok := s.timers[userID]; ok {
		if t.Stop() {
			s.wg.Done()
		}
	}
	s.wg.Add(1)
	s.timers[userID] = time.AfterFunc(s.delay, func() {
		defer s.wg.Done()
		s.flush(userID)
	})
}

// flush writes the user's pending blob. Writes for one user are strictly
// serialized: if a write is already in flight (a slow store outliving the
// quiet period), this flush leaves the blob pending and the in-flight
// drain loop picks it up afterwards, so an older blob can never land in
// the store after a newer one.
func (s *Saver) flush(userID string) {
	s.mu.Lock()
	if s.inflight[userID] {
		delete(s.timers, userID)
		s.mu.Unlock()
		return
	}
	blob, ok := s.pending[userID]
	delete(s.pending, userID)
	delete(s.timers, userID)
	if !ok {
		s.mu.Unlock()
		return
	}
	s.inflight[userID] = true
	s.mu.Unlock()

	for {
		s.write(userID, blob)
		s.mu.Lock()
		next, ok := s.pending[userID]
		if !ok {
			delete(s.inflight, userID)
			s.mu.Unlock()
			return
		}
		delete(s.pending, userID)
		blob = next
		s.mu.Unlock()
	}
}

func (s *Saver) write(userID string, blob []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.Save(ctx, userID, blob); err != nil {
		s.log.Printf("save profile %s: %v", userID, err)
		return
	}

	s.mu.Lock()
	s.writes[userID]++
	n := s.writes[userID]
	fn := s.observed
	s.mu.Unlock()
	if fn != nil {
		fn(userID, n)
	}
}

// Close stops the timers and writes everything still pending. After Close,
// Mark is a no-op.
func (s *Saver) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true

	remaining := make(map[string][]byte, len(s.pending))
	for id, blob := range s.pending {
		remaining[id] = blob
	}
	s.pending = map[string][]byte{}
	for id, t := range s.timers {
		if t.Stop() {
			// Timer never fired; its wg slot is ours to release.
			s.wg.Done()
		}
		delete(s.timers, id)
	}
	s.mu.Unlock()

	// Let any timer that already fired drain first, then write the rest.
	s.wg.Wait()
	for id, blob := range remaining {
		s.write(id, blob)
	}
	return nil
}

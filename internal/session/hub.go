package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"oratoria.app/internal/catalog"
	"oratoria.app/internal/persistence/profile"
	"oratoria.app/internal/progress"
)

// Hub hands out at most one Session per user id. The first Get for a user
// loads the stored profile and starts the loop; later Gets, including ones
// from other connections of the same user, share it.
type Hub struct {
	cat   *catalog.Catalog
	store profile.Store
	saver *profile.Saver
	log   *log.Logger
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

func NewHub(cat *catalog.Catalog, store profile.Store, saver *profile.Saver, logger *log.Logger) *Hub {
	return &Hub{
		cat:      cat,
		store:    store,
		saver:    saver,
		log:      logger,
		now:      time.Now,
		sessions: map[string]*Session{},
	}
}

// Get returns the user's session, loading the profile first when none is
// running. A store read failure means no session: without knowing whether
// a profile exists, starting blank could overwrite it. A blob that fails
// to decode falls back to defaults, same as any unreadable save.
func (h *Hub) Get(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, fmt.Errorf("empty user id")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrClosed
	}
	if s, ok := h.sessions[userID]; ok {
		return s, nil
	}

	state, err := h.loadState(ctx, userID)
	if err != nil {
		return nil, err
	}

	s := newSession(userID, h.cat, state, h.saver, h.log, h.now)
	h.sessions[userID] = s
	go s.run()
	return s, nil
}

func (h *Hub) loadState(ctx context.Context, userID string) (*progress.State, error) {
	blob, err := h.store.Load(ctx, userID)
	if errors.Is(err, profile.ErrNotFound) {
		return progress.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}
	state, err := progress.Decode(blob)
	if err != nil {
		h.log.Printf("decode profile %s: %v; starting from defaults", userID, err)
		return progress.New(), nil
	}
	return state, nil
}

// Close stops every session loop and waits for them to drain. Pending
// saves are the Saver's responsibility.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		close(s.stop)
	}
	for _, s := range sessions {
		<-s.done
	}
}

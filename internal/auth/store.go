package auth

import (
	"sync"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/events"
)

// Provider gives read access to the current session.
type Provider interface {
	Current() *Session
	IsAuthenticated() bool
}

// Store is the process-wide session holder. Writers replace the whole
// snapshot; readers get copies.
type Store struct {
	mu      sync.RWMutex
	current *Session
	bus     *events.EventBus
}

// NewStore creates an empty store. bus may be nil.
func NewStore(bus *events.EventBus) *Store {
	return &Store{bus: bus}
}

// Set replaces the session and publishes a session event.
func (st *Store) Set(s *Session) {
	snap := s.Clone()

	st.mu.Lock()
	st.current = snap
	st.mu.Unlock()

	st.publish(snap)
}

// Clear drops the session (logout).
func (st *Store) Clear() {
	st.mu.Lock()
	st.current = nil
	st.mu.Unlock()

	st.publish(nil)
}

// Current returns a copy of the session, or nil when signed out.
func (st *Store) Current() *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current.Clone()
}

// IsAuthenticated reports whether a user is signed in.
func (st *Store) IsAuthenticated() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current.Authenticated()
}

func (st *Store) publish(s *Session) {
	if st.bus == nil {
		return
	}
	ev := &events.SessionEvent{
		BaseEvent:     events.NewBaseEvent(events.EventSessionChanged),
		Authenticated: s.Authenticated(),
	}
	if s.Authenticated() {
		ev.UserID = s.User.ID
	}
	st.bus.Publish(ev)
}

// internal/session/store.go
package session

import (
	"sync"

	"go.uber.org/zap"
)

// Store is the shared map of per-user sessions. The outer RWMutex guards the
// map itself; each entry carries its own lock so mutations are serialized per
// user and users never block each other.
type Store struct {
	mutex    sync.RWMutex
	sessions map[int64]*entry
	logger   *zap.Logger
}

type entry struct {
	mu      sync.Mutex
	session Session
}

// NewStore creates an empty session store.
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		sessions: make(map[int64]*entry),
		logger:   logger.Named("session_store"),
	}
}

func (s *Store) getOrCreateEntry(userID int64) *entry {
	s.mutex.RLock()
	e, ok := s.sessions[userID]
	s.mutex.RUnlock()
	if ok {
		return e
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	if e, ok = s.sessions[userID]; ok {
		return e
	}
	e = &entry{session: Session{UserID: userID}}
	s.sessions[userID] = e
	s.logger.Debug("Session created", zap.Int64("user_id", userID))
	return e
}

// GetOrCreate returns a snapshot of the user's session, creating an idle
// empty one first if needed. Creation never fails.
func (s *Store) GetOrCreate(userID int64) Session {
	e := s.getOrCreateEntry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.clone()
}

// Mutate applies fn to exactly one user's session as an atomic
// read-modify-write. The session is created first when absent. Nothing blocks
// longer than fn itself.
func (s *Store) Mutate(userID int64, fn func(*Session)) {
	e := s.getOrCreateEntry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.session)
}

// AllSubscriptions returns a point-in-time snapshot of every user with both
// a pair and an alert threshold set. Each entry lock is held only long enough
// to read that one session, never across the whole scan.
func (s *Store) AllSubscriptions() []Subscription {
	s.mutex.RLock()
	entries := make([]*entry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	s.mutex.RUnlock()

	subs := make([]Subscription, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if e.session.HasAlert && e.session.SelectedPair != "" {
			subs = append(subs, Subscription{
				UserID:    e.session.UserID,
				PairID:    e.session.SelectedPair,
				Threshold: e.session.AlertThreshold,
			})
		}
		e.mu.Unlock()
	}
	return subs
}

// Count returns the number of known sessions.
func (s *Store) Count() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.sessions)
}

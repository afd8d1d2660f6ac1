package importers

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("import session not found")

// Session is one in-flight import owned by a user.
type Session struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"user_id"`
	FileName  string    `json:"file_name,omitempty"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionStore keeps import sessions in memory for the HTTP API.
// Sessions idle longer than the TTL are dropped by Prune.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates a store; ttl <= 0 defaults to one hour.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new session at the upload step.
func (s *SessionStore) Create(kind Kind, userID uint, fileName string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		FileName:  fileName,
		State:     NewState(kind),
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[sess.ID] = sess
	return *sess
}

// Get returns a copy of the session.
func (s *SessionStore) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return *sess, nil
}

// Apply runs an event against the stored state and saves the result.
func (s *SessionStore) Apply(id string, ev Event) (Session, error) {
	return s.Update(id, func(st State) State {
		return Transition(st, ev)
	})
}

// Update replaces the session state with fn(state) while holding the lock.
// fn must not block.
func (s *SessionStore) Update(id string, fn func(State) State) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	sess.State = fn(sess.State)
	sess.UpdatedAt = s.now()
	return *sess, nil
}

// Delete removes a session.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Prune drops closed sessions and sessions idle longer than the TTL.
// Returns the number removed.
func (s *SessionStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, sess := range s.sessions {
		if sess.State.Step == StepClosed || sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// SetFileName records the name of the uploaded file.
func (s *SessionStore) SetFileName(id, fileName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	sess.FileName = fileName
	sess.UpdatedAt = s.now()
	return nil
}

package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vancomm/tents-server/internal/tents"
)

var ErrNotFound = errors.New("session not found")

// Session is one live game. State and the timestamps are guarded by the
// session lock; use Do.
type Session struct {
	ID        uuid.UUID
	PlayerID  *int64
	StartedAt time.Time
	EndedAt   *time.Time
	State     *tents.GameState

	mu       sync.Mutex
	lastSeen atomic.Int64 /* unix nanos */
}

// Do runs fn with the session locked.
func (s *Session) Do(fn func(*Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// Finish stamps the end time once the game is over. It reports true only on
// the call that stamped it, so the caller can record the result exactly
// once. Must be called under the session lock.
func (s *Session) Finish(now time.Time) bool {
	if s.EndedAt != nil || !s.State.Status.Over() {
		return false
	}
	t := now.UTC()
	s.EndedAt = &t
	return true
}

type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	ttl      time.Duration
	now      func() time.Time
	log      logrus.FieldLogger
}

// NewStore creates a store that forgets sessions idle for longer than ttl.
// A zero ttl keeps sessions forever.
func NewStore(log logrus.FieldLogger, ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*Session),
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

func (s *Store) Create(state *tents.GameState, playerID *int64) *Session {
	now := s.now()
	session := &Session{
		ID:        uuid.New(),
		PlayerID:  playerID,
		StartedAt: now.UTC(),
		State:     state,
	}
	session.lastSeen.Store(now.UnixNano())
	session.Finish(now)

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

func (s *Store) Get(id uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	session.lastSeen.Store(s.now().UnixNano())
	return session, nil
}

// Touch keeps a session alive while it is used without Get, e.g. over a
// websocket.
func (s *Store) Touch(session *Session) {
	session.lastSeen.Store(s.now().UnixNano())
}

// Lookup parses id and fetches the session.
func (s *Store) Lookup(id string) (*Session, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.Get(parsed)
}

func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops idle sessions and returns how many were dropped.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	deadline := s.now().Add(-s.ttl).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, session := range s.sessions {
		if session.lastSeen.Load() < deadline {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.log.WithField("evicted", n).Debug("swept idle sessions")
			}
		}
	}
}

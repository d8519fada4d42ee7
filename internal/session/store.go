// Package session holds per-conversation state: turn history plus the
// anti-repetition queues consulted by mode selection and rendering.
package session

import (
	"sync"

	"github.com/patrickmn/go-cache"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// maxRecent bounds lastModes and lastOpeners; oldest entries are evicted first.
	maxRecent = 5
)

// Turn is one user or assistant contribution. Immutable once appended.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is the per-conversation state. All fields are guarded by the
// session mutex; the orchestrator holds the lock for the whole mutation
// phase of a turn so that two connections sharing a session id serialize
// instead of racing.
type Session struct {
	mu sync.Mutex

	History     []Turn
	LastModes   []string
	LastOpeners []string
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// ContextWindow returns a copy of the most recent n turns in original order.
// Caller must hold the session lock.
func (s *Session) ContextWindow(n int) []Turn {
	h := s.History
	if len(h) > n {
		h = h[len(h)-n:]
	}
	out := make([]Turn, len(h))
	copy(out, h)
	return out
}

// UserTurnCount reports how many user turns are recorded.
// Caller must hold the session lock.
func (s *Session) UserTurnCount() int {
	n := 0
	for _, t := range s.History {
		if t.Role == RoleUser {
			n++
		}
	}
	return n
}

// Append records a turn at the end of the history.
// Caller must hold the session lock.
func (s *Session) Append(role, content string) {
	s.History = append(s.History, Turn{Role: role, Content: content})
}

// PushMode records a selected mode, keeping only the last maxRecent.
// Caller must hold the session lock.
func (s *Session) PushMode(mode string) {
	s.LastModes = append(s.LastModes, mode)
	if len(s.LastModes) > maxRecent {
		s.LastModes = s.LastModes[len(s.LastModes)-maxRecent:]
	}
}

// Store is the process-wide session registry. Sessions are never evicted;
// they live until process restart (a deliberate limitation, keyed by
// client-supplied ids).
type Store struct {
	mu sync.Mutex
	c  *cache.Cache
}

func NewStore() *Store {
	// NoExpiration and no janitor: the registry only ever grows.
	return &Store{c: cache.New(cache.NoExpiration, 0)}
}

// GetOrCreate returns the session for id, creating it on first reference.
// A value stored in the legacy shape (a bare turn list) is normalized into a
// full session with empty anti-repetition queues.
func (s *Store) GetOrCreate(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if x, found := s.c.Get(id); found {
		switch v := x.(type) {
		case *Session:
			return v
		case []Turn:
			sess := &Session{History: v, LastModes: []string{}, LastOpeners: []string{}}
			s.c.Set(id, sess, cache.NoExpiration)
			return sess
		}
	}
	sess := &Session{History: []Turn{}, LastModes: []string{}, LastOpeners: []string{}}
	s.c.Set(id, sess, cache.NoExpiration)
	return sess
}

// Put installs a raw value for id. Used to seed legacy-shaped entries.
func (s *Store) Put(id string, v interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Set(id, v, cache.NoExpiration)
}

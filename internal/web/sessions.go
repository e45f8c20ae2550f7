package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/PizzaHomicide/rotv/internal/log"
	"github.com/PizzaHomicide/rotv/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCookie carries the id of a browser's view state
const SessionCookie = "rotv_session"

type sessionEntry struct {
	state    *session.Session
	lastSeen time.Time
}

// SessionStore keeps one view state per browser in memory.  Entries idle for longer than ttl are dropped, and once
// maxEntries exist the least recently seen one makes room for a new browser.
type SessionStore struct {
	ttl        time.Duration
	maxEntries int
	now        func() time.Time

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

// NewSessionStore creates an empty store.  maxEntries <= 0 means unbounded.
func NewSessionStore(ttl time.Duration, maxEntries int) *SessionStore {
	return &SessionStore{
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		entries:    make(map[string]*sessionEntry),
	}
}

// Lookup returns the session for the request's cookie, or nil when the browser has none.  Browsers without a
// session are on the grid, so read-only pages never allocate one.
func (s *SessionStore) Lookup(c *gin.Context) *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)

	if entry := s.entryLocked(c); entry != nil {
		entry.lastSeen = now
		return entry.state
	}
	return nil
}

// Get returns the session for the request's cookie, creating one (and setting the cookie) when the browser has none
// or its session has expired
func (s *SessionStore) Get(c *gin.Context) *session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneLocked(now)

	if entry := s.entryLocked(c); entry != nil {
		entry.lastSeen = now
		return entry.state
	}

	if s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.evictOldestLocked()
	}

	id := uuid.NewString()
	entry := &sessionEntry{state: session.New(), lastSeen: now}
	s.entries[id] = entry
	log.Debug("Created browser session", "id", id, "active", len(s.entries))

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, int(s.ttl.Seconds()), "/", "", false, true)
	return entry.state
}

func (s *SessionStore) entryLocked(c *gin.Context) *sessionEntry {
	id, err := c.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	return s.entries[id]
}

func (s *SessionStore) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, entry := range s.entries {
		if oldestID == "" || entry.lastSeen.Before(oldest) {
			oldestID, oldest = id, entry.lastSeen
		}
	}
	if oldestID != "" {
		delete(s.entries, oldestID)
		log.Debug("Evicted browser session", "id", oldestID)
	}
}

// Len reports how many sessions are live
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *SessionStore) pruneLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, entry := range s.entries {
		if now.Sub(entry.lastSeen) > s.ttl {
			delete(s.entries, id)
		}
	}
}

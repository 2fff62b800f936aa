package services

import (
	"log"
	"sync"
	"time"

	"alfredoptarigan/recruitment-assistant/internal/models"
)

// SessionStore keeps the per-session CandidateState for the life of a
// candidate interaction. State is best-effort and in-memory only.
//
// Two concurrent stage invocations for the same session would race on the
// shared record, so callers run stages through WithLock which serializes per
// session id. Distinct sessions do not contend.
type SessionStore interface {
	Get(sessionID string) (*models.CandidateState, bool)
	Put(sessionID string, state *models.CandidateState)
	Evict(sessionID string)
	WithLock(sessionID string, fn func())
	StartJanitor()
	Stop()
}

type sessionEntry struct {
	state    *models.CandidateState
	lastSeen time.Time
}

type sessionStore struct {
	mu       sync.Mutex
	entries  map[string]*sessionEntry
	locks    map[string]*sync.Mutex
	ttl      time.Duration
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewSessionStore(ttl time.Duration) SessionStore {
	return &sessionStore{
		entries:  make(map[string]*sessionEntry),
		locks:    make(map[string]*sync.Mutex),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
}

// Get implements SessionStore.
func (s *sessionStore) Get(sessionID string) (*models.CandidateState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[sessionID]
	if !ok {
		return nil, false
	}
	entry.lastSeen = time.Now()
	return entry.state, true
}

// Put implements SessionStore.
func (s *sessionStore) Put(sessionID string, state *models.CandidateState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[sessionID] = &sessionEntry{state: state, lastSeen: time.Now()}
}

// Evict implements SessionStore.
func (s *sessionStore) Evict(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sessionID)
	delete(s.locks, sessionID)
}

// WithLock runs fn while holding the mutex for sessionID, so stage
// invocations against one session never interleave writes.
func (s *sessionStore) WithLock(sessionID string, fn func()) {
	s.mu.Lock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	fn()
}

// StartJanitor begins periodic eviction of sessions idle past the TTL.
func (s *sessionStore) StartJanitor() {
	if s.ttl <= 0 {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.ttl / 4)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.evictExpired()
			}
		}
	}()
}

// Stop implements SessionStore.
func (s *sessionStore) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

func (s *sessionStore) evictExpired() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, entry := range s.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(s.entries, id)
			delete(s.locks, id)
			evicted++
		}
	}

	if evicted > 0 {
		log.Printf("🧹 Evicted %d expired sessions\n", evicted)
	}
}

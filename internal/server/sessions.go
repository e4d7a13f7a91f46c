package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/profile-architect/internal/workflow"
)

// sessionEntry tracks a session and when it was last used.
type sessionEntry struct {
	session  *workflow.Session
	lastSeen time.Time
}

// sessionRegistry holds the in-memory sessions keyed by UUID.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*sessionEntry
	newFn    func() *workflow.Session
}

func newSessionRegistry(newFn func() *workflow.Session) *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[uuid.UUID]*sessionEntry),
		newFn:    newFn,
	}
}

// create starts a new session and returns its ID.
func (r *sessionRegistry) create() (uuid.UUID, *workflow.Session) {
	id := uuid.New()
	sess := r.newFn()

	r.mu.Lock()
	r.sessions[id] = &sessionEntry{session: sess, lastSeen: time.Now()}
	r.mu.Unlock()
	return id, sess
}

// get looks up a session by its string ID.
func (r *sessionRegistry) get(idStr string) (uuid.UUID, *workflow.Session, error) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, nil, &ErrSessionNotFound{ID: idStr}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[id]
	if !ok {
		return uuid.Nil, nil, &ErrSessionNotFound{ID: idStr}
	}
	entry.lastSeen = time.Now()
	return id, entry.session, nil
}

// remove deletes a session. It reports whether the session existed.
func (r *sessionRegistry) remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// expire drops sessions idle since before cutoff that have no request in flight.
func (r *sessionRegistry) expire(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, entry := range r.sessions {
		if entry.lastSeen.Before(cutoff) && !entry.session.Orchestrator().InFlight() {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *sessionRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

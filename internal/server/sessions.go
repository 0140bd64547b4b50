package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/uconn-ofc/sv-browser/internal/locus"
)

// Sessions is the in-process registry of viewer sessions.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*locus.Session
	ttl      time.Duration
	gauge    prometheus.Gauge
}

// NewSessions creates a registry. Sessions idle for longer than ttl are
// removed by Sweep; a zero ttl keeps them until deleted.
func NewSessions(ttl time.Duration, gauge prometheus.Gauge) *Sessions {
	return &Sessions{
		sessions: make(map[string]*locus.Session),
		ttl:      ttl,
		gauge:    gauge,
	}
}

// Create starts a new empty session.
func (r *Sessions) Create() *locus.Session {
	s := locus.NewSession(uuid.NewString())
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.update()
	r.mu.Unlock()
	return s
}

// Get returns the session with the given id.
func (r *Sessions) Get(id string) (*locus.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Delete ends a session. It returns false for an unknown id.
func (r *Sessions) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	r.update()
	return true
}

// Len returns the number of open sessions.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes sessions idle since before now-ttl and returns how many were removed.
func (r *Sessions) Sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, s := range r.sessions {
		if s.IdleSince().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		r.update()
	}
	return removed
}

// update must be called with mu held.
func (r *Sessions) update() {
	if r.gauge != nil {
		r.gauge.Set(float64(len(r.sessions)))
	}
}

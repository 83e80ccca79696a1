// Package session tracks connection-scoped conversational state. Lookups for
// unknown or inactive sessions return false rather than an error: losing a
// session to idle expiry while a late message is in flight is an expected
// condition, not an exceptional one.
package session

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultIdleTimeout = time.Hour
	defaultPurgeGrace  = 10 * time.Minute
)

// Session is one logical conversational context, independent of the physical
// connection. Active transitions only true to false.
type Session struct {
	ID             string    `json:"id"`
	Owner          string    `json:"owner,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	Active         bool      `json:"active"`
	CommandCount   int       `json:"command_count"`
}

// Stats is a point-in-time aggregate over all known sessions.
type Stats struct {
	Total                 int     `json:"total"`
	Active                int     `json:"active"`
	TotalCommands         int     `json:"total_commands"`
	AvgCommandsPerSession float64 `json:"avg_commands_per_session"`
}

// Registry owns all session state behind one mutex. It is constructed once at
// process start and shared by reference; the lock is never held across a
// blocking call.
type Registry struct {
	logger      *log.Logger
	idleTimeout time.Duration
	purgeGrace  time.Duration

	mu       sync.Mutex
	sessions map[string]*Session

	now func() time.Time // test hook
}

func NewRegistry(logger *log.Logger, idleTimeout, purgeGrace time.Duration) *Registry {
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleTimeout
	}
	if purgeGrace <= 0 {
		purgeGrace = defaultPurgeGrace
	}
	return &Registry{
		logger:      logger,
		idleTimeout: idleTimeout,
		purgeGrace:  purgeGrace,
		sessions:    make(map[string]*Session),
		now:         time.Now,
	}
}

// Create allocates a fresh session and returns its id. It never fails. Each
// create also runs an opportunistic idle sweep so expiry does not depend
// solely on the timer.
func (r *Registry) Create(owner string) string {
	now := r.now()
	s := &Session{
		ID:             uuid.NewString(),
		Owner:          owner,
		CreatedAt:      now,
		LastActivityAt: now,
		Active:         true,
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	expired := r.expireIdleLocked(now)
	r.mu.Unlock()

	if expired > 0 {
		r.logger.Printf("sessions expired on create count=%d", expired)
	}
	r.logger.Printf("session created session_id=%s", s.ID)
	return s.ID
}

// Touch refreshes the activity timestamp of an active session.
func (r *Registry) Touch(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || !s.Active {
		return false
	}
	r.touchLocked(s)
	return true
}

// IncrementCommands bumps the command counter and refreshes activity in one
// step.
func (r *Registry) IncrementCommands(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || !s.Active {
		return false
	}
	s.CommandCount++
	r.touchLocked(s)
	return true
}

// Terminate marks the session inactive. Terminating an already inactive or
// unknown session returns false, never an error.
func (r *Registry) Terminate(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok || !s.Active {
		r.mu.Unlock()
		return false
	}
	s.Active = false
	count := s.CommandCount
	r.mu.Unlock()

	r.logger.Printf("session terminated session_id=%s commands=%d", id, count)
	return true
}

// Get returns a copy of the session, active or not.
func (r *Registry) Get(id string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// ListActive returns a snapshot of all active sessions.
func (r *Registry) ListActive() []Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.Active {
			out = append(out, *s)
		}
	}
	return out
}

// Stats computes aggregates from a snapshot. No sessions yields zeroes, not a
// division error.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{Total: len(r.sessions)}
	for _, s := range r.sessions {
		if s.Active {
			stats.Active++
		}
		stats.TotalCommands += s.CommandCount
	}
	if stats.Total > 0 {
		stats.AvgCommandsPerSession = float64(stats.TotalCommands) / float64(stats.Total)
	}
	return stats
}

// ExpireIdle terminates every active session idle beyond the configured
// timeout and returns how many were terminated.
func (r *Registry) ExpireIdle() int {
	r.mu.Lock()
	expired := r.expireIdleLocked(r.now())
	r.mu.Unlock()
	return expired
}

// PurgeExpired removes inactive sessions whose idle time exceeds the timeout
// plus a grace period, so terminated sessions do not accumulate for the
// process lifetime. Returns how many were removed.
func (r *Registry) PurgeExpired() int {
	cutoff := r.now().Add(-(r.idleTimeout + r.purgeGrace))

	r.mu.Lock()
	defer r.mu.Unlock()

	purged := 0
	for id, s := range r.sessions {
		if !s.Active && s.LastActivityAt.Before(cutoff) {
			delete(r.sessions, id)
			purged++
		}
	}
	return purged
}

func (r *Registry) expireIdleLocked(now time.Time) int {
	cutoff := now.Add(-r.idleTimeout)
	expired := 0
	for _, s := range r.sessions {
		if s.Active && s.LastActivityAt.Before(cutoff) {
			s.Active = false
			expired++
		}
	}
	return expired
}

// touchLocked keeps LastActivityAt monotonically non-decreasing even when the
// clock steps backwards.
func (r *Registry) touchLocked(s *Session) {
	now := r.now()
	if now.After(s.LastActivityAt) {
		s.LastActivityAt = now
	}
}

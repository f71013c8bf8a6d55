package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zatekoja/wayfinder/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/wayfinder/pkg/errors"
)

// SessionFactory builds the collaborators for a new session id
type SessionFactory func(sessionID string) MapSessionDeps

// SessionRegistry holds the open map sessions and expires idle ones.
type SessionRegistry struct {
	factory SessionFactory
	metrics *observability.Metrics
	idleTTL time.Duration

	mu       sync.RWMutex
	sessions map[string]*MapSession
}

// NewSessionRegistry creates a registry. A zero idleTTL disables expiry.
func NewSessionRegistry(factory SessionFactory, metrics *observability.Metrics, idleTTL time.Duration) *SessionRegistry {
	return &SessionRegistry{
		factory:  factory,
		metrics:  metrics,
		idleTTL:  idleTTL,
		sessions: make(map[string]*MapSession),
	}
}

// Create opens a new session.
func (r *SessionRegistry) Create(ctx context.Context) *MapSession {
	id := uuid.NewString()
	session := NewMapSession(id, r.factory(id))

	r.mu.Lock()
	r.sessions[id] = session
	r.mu.Unlock()

	observability.RecordSessionDelta(ctx, r.metrics, 1)
	observability.LoggerFromContext(ctx).Info().Str("session_id", id).Msg("Map session opened")
	return session
}

// Get returns an open session.
func (r *SessionRegistry) Get(id string) (*MapSession, error) {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewNotFoundError("session not found: " + id)
	}
	return session, nil
}

// Close closes and forgets a session.
func (r *SessionRegistry) Close(ctx context.Context, id string) error {
	r.mu.Lock()
	session, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return apperrors.NewNotFoundError("session not found: " + id)
	}

	session.Close()
	observability.RecordSessionDelta(ctx, r.metrics, -1)
	observability.LoggerFromContext(ctx).Info().Str("session_id", id).Msg("Map session closed")
	return nil
}

// Len returns the number of open sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ExpireIdle closes sessions idle since before now-idleTTL and returns how many.
func (r *SessionRegistry) ExpireIdle(ctx context.Context, now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-r.idleTTL)

	r.mu.RLock()
	var idle []string
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	r.mu.RUnlock()

	closed := 0
	for _, id := range idle {
		if err := r.Close(ctx, id); err == nil {
			closed++
		}
	}
	return closed
}

// Run expires idle sessions every interval until ctx is done, then closes all.
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case now := <-ticker.C:
			if n := r.ExpireIdle(ctx, now); n > 0 {
				observability.LoggerFromContext(ctx).Info().Int("count", n).Msg("Expired idle map sessions")
			}
		}
	}
}

func (r *SessionRegistry) closeAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*MapSession)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

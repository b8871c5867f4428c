package main

import (
	"time"

	"go-identity-verifier/verification"

	gocache "github.com/patrickmn/go-cache"
)

// SessionRegistry holds live verification sessions in memory with a TTL.
// Abandoned sessions (user closed the flow) simply expire; nothing is
// persisted by the engine, so no compensating action is needed.
type SessionRegistry struct {
	sessions *gocache.Cache
}

func NewSessionRegistry(ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		sessions: gocache.New(ttl, ttl/2),
	}
}

func (r *SessionRegistry) Put(s *verification.Session) {
	r.sessions.SetDefault(s.ID, s)
}

func (r *SessionRegistry) Get(sessionId string) (*verification.Session, bool) {
	v, found := r.sessions.Get(sessionId)
	if !found {
		return nil, false
	}
	return v.(*verification.Session), true
}

// Remove discards a session once it reached a terminal state and the
// verdict has been handed off.
func (r *SessionRegistry) Remove(sessionId string) {
	r.sessions.Delete(sessionId)
}

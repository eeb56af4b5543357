package gateway

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session holds the bearer credential for one authenticated client. It is
// the only shared mutable state in the client; writes are serialized here
// and callers are expected to serialize auth calls themselves (last write
// wins otherwise).
type Session struct {
	mu    sync.RWMutex
	token string
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// SetToken replaces the stored credential.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// ClearToken drops the stored credential.
func (s *Session) ClearToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

// Token returns the stored credential, empty when unauthenticated.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated reports whether a credential is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// ExpiresWithin reports whether the stored token carries an exp claim that
// falls inside the next d. Tokens without a parseable expiry report false;
// the service remains the authority and will answer 401 when it disagrees.
func (s *Session) ExpiresWithin(d time.Duration) bool {
	token := s.Token()
	if token == "" {
		return false
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) <= d
}

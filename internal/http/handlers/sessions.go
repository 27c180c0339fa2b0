package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loftgolf/booking-platform/internal/uschedule"
)

// SessionHeader carries the platform session id on authenticated calls.
const SessionHeader = "X-Session-ID"

// AuthSession binds a platform session id to the vendor session and the
// authenticated user. The id doubles as the booking-session key.
type AuthSession struct {
	ID        uuid.UUID
	Vendor    *uschedule.Session
	User      *uschedule.UserDetails
	CreatedAt time.Time
}

// SessionRegistry is the in-memory index of authenticated sessions.
type SessionRegistry struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*AuthSession
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{byID: make(map[uuid.UUID]*AuthSession)}
}

// Add registers a session.
func (r *SessionRegistry) Add(sess *AuthSession) {
	r.mu.Lock()
	r.byID[sess.ID] = sess
	r.mu.Unlock()
}

// Get looks a session up by id.
func (r *SessionRegistry) Get(id uuid.UUID) (*AuthSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.byID[id]
	return sess, ok
}

// Delete removes a session.
func (r *SessionRegistry) Delete(id uuid.UUID) {
	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()
}

// Len reports the number of authenticated sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

type sessionCtxKey struct{}

// Require rejects requests without a valid session header and stores the
// resolved session in the request context.
func (r *SessionRegistry) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		raw := req.Header.Get(SessionHeader)
		if raw == "" {
			jsonError(w, "missing "+SessionHeader+" header", http.StatusUnauthorized)
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			jsonError(w, "malformed session id", http.StatusUnauthorized)
			return
		}
		sess, ok := r.Get(id)
		if !ok {
			jsonError(w, "session not found or expired", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(req.Context(), sessionCtxKey{}, sess)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// SessionFrom returns the session stored by Require, or nil.
func SessionFrom(ctx context.Context) *AuthSession {
	sess, _ := ctx.Value(sessionCtxKey{}).(*AuthSession)
	return sess
}

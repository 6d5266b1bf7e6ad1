package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	domainAccount "chitfund/internal/domain/account"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const (
	sessionContextKey contextKey = "session"
	tokenContextKey   contextKey = "session_token"
)

// SessionCookieName holds the session token.
const SessionCookieName = "chitfund_session"

// SessionTTL bounds the life of a session.
const SessionTTL = 24 * time.Hour

// AccessDeniedMessage is shown on the login page after a guarded redirect.
const AccessDeniedMessage = "Access denied. Please log in as Admin."

// SecureCookies marks session cookies Secure. Set in production.
var SecureCookies = false

// Session represents an authenticated session.
type Session struct {
	Username  string
	Role      string
	CreatedAt time.Time
}

// IsAdmin reports whether the session holds the admin role.
// INVARIANT: Session fields are not mutated
func (s Session) IsAdmin() bool {
	return s.Role == domainAccount.RoleAdmin
}

// SessionStore is an in-memory session store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
	onExpire func(token string)
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// WithClock replaces the clock used for expiry.
func (ss *SessionStore) WithClock(now func() time.Time) *SessionStore {
	ss.now = now
	return ss
}

// OnExpire registers fn to run with the token of every session dropped for
// age, whether found by Get or by Sweep. Logout goes through Delete and does
// not trigger it.
func (ss *SessionStore) OnExpire(fn func(token string)) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.onExpire = fn
}

// Create stores a new session and returns the token.
// PRE: username and role are non-empty
// POST: Session is stored, token is returned
func (ss *SessionStore) Create(username, role string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[token] = Session{
		Username:  username,
		Role:      role,
		CreatedAt: ss.now(),
	}
	return token, nil
}

// Get retrieves a session by token.
// POST: Returns session if valid and not expired; expired sessions are dropped
func (ss *SessionStore) Get(token string) (Session, bool) {
	ss.mu.RLock()
	session, ok := ss.sessions[token]
	ss.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if ss.expired(session) {
		ss.expire([]string{token})
		return Session{}, false
	}
	return session, true
}

func (ss *SessionStore) expired(s Session) bool {
	return ss.now().Sub(s.CreatedAt) > SessionTTL
}

// expire deletes tokens and then runs the expiry hook outside the lock.
func (ss *SessionStore) expire(tokens []string) int {
	ss.mu.Lock()
	var dropped []string
	for _, t := range tokens {
		if s, ok := ss.sessions[t]; ok && ss.expired(s) {
			delete(ss.sessions, t)
			dropped = append(dropped, t)
		}
	}
	hook := ss.onExpire
	ss.mu.Unlock()

	for _, t := range dropped {
		slog.Debug("session_expired")
		if hook != nil {
			hook(t)
		}
	}
	return len(dropped)
}

// Sweep drops every expired session and returns how many went.
func (ss *SessionStore) Sweep() int {
	ss.mu.RLock()
	var stale []string
	for t, s := range ss.sessions {
		if ss.expired(s) {
			stale = append(stale, t)
		}
	}
	ss.mu.RUnlock()
	if len(stale) == 0 {
		return 0
	}
	return ss.expire(stale)
}

// SweepEvery runs Sweep on a ticker until the returned stop is called.
// stop is safe to call more than once.
func (ss *SessionStore) SweepEvery(every time.Duration) (stop func()) {
	done := make(chan struct{})
	var once sync.Once
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if n := ss.Sweep(); n > 0 {
					slog.Info("sessions_swept", "count", n)
				}
			}
		}
	}()
	return func() { once.Do(func() { close(done) }) }
}

// Delete removes a session by token.
// POST: Session with given token is removed
func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
}

// Len returns the number of stored sessions, expired ones included.
func (ss *SessionStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// Auth returns middleware that extracts the session from the cookie and sets it in context.
// It does NOT block unauthenticated requests; use RequireAdmin for that.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err == nil && cookie.Value != "" {
				if session, ok := sessions.Get(cookie.Value); ok {
					ctx := context.WithValue(r.Context(), sessionContextKey, session)
					ctx = context.WithValue(ctx, tokenContextKey, cookie.Value)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin guards admin pages. Non-admin requests are sent to the login
// page with the access-denied notice; JSON callers get 401 or 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := GetSessionFromContext(r.Context())
		if ok && session.IsAdmin() {
			next.ServeHTTP(w, r)
			return
		}
		slog.Warn("auth_denied", "path", r.URL.Path, "role", session.Role, "required", domainAccount.RoleAdmin)
		if wantsJSON(r) {
			if !ok {
				http.Error(w, "not authenticated", http.StatusUnauthorized)
				return
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		http.Redirect(w, r, LoginURL(true), http.StatusSeeOther)
	})
}

// LoginURL returns the login page path, flagged when access was denied.
func LoginURL(denied bool) string {
	if !denied {
		return "/login"
	}
	return "/login?" + url.Values{"denied": {"1"}}.Encode()
}

func wantsJSON(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(Session)
	return session, ok
}

// GetTokenFromContext returns the session token the request authenticated with.
func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok && token != ""
}

// ContextWithSession returns a context with the given session and token set.
// Intended for use in tests.
func ContextWithSession(ctx context.Context, sess Session, token string) context.Context {
	ctx = context.WithValue(ctx, sessionContextKey, sess)
	return context.WithValue(ctx, tokenContextKey, token)
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// Package web serves the admin console: the login gate, the module shell,
// the modal overlay and a small read-only JSON API.
package web

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"chitfund/internal/adapters/archive"
	"chitfund/internal/adapters/email"
	"chitfund/internal/adapters/http/middleware"
	"chitfund/internal/adapters/http/perf"
	"chitfund/internal/adapters/metrics"
	listStore "chitfund/internal/adapters/storage/list"
	memberStore "chitfund/internal/adapters/storage/member"
	"chitfund/internal/application/console"
	"chitfund/internal/application/orchestrators"
)

// DefaultRateLimit is the per-IP request budget per second.
const DefaultRateLimit = 10

// sessionSweepInterval is how often expired sessions and their consoles
// are dropped.
const sessionSweepInterval = 10 * time.Minute

// Deps holds everything the handlers call into.
type Deps struct {
	Members memberStore.Store
	Lists   listStore.Store
	// Consoles hands out per-session console state. Its factory decides
	// which scheme cache each console gets.
	Consoles      *console.Registry
	Sessions      *middleware.SessionStore
	Authenticator orchestrators.Authenticator
	LoginDelay    orchestrators.LoginDelay
	// SignOut is the optional remote sign-out hook run on logout.
	SignOut func(ctx context.Context) error

	Sender     email.Sender
	ReportFrom string
	ReportTo   []string
	Archiver   orchestrators.ReportArchiver

	Metrics   *metrics.Metrics
	Collector *perf.Collector
	// Ping backs /healthz. nil always reports healthy.
	Ping func(ctx context.Context) error

	// Location formats list timestamps; nil means time.Local.
	Location *time.Location
	Now      func() time.Time
}

// Options configures the middleware chain.
type Options struct {
	CSRFKey []byte
	// Secure turns on Secure cookies and the strict CSRF Referer check.
	Secure         bool
	TrustedOrigins []string
	// RateLimit is requests per second per IP; zero uses DefaultRateLimit.
	RateLimit   int
	SlowRequest time.Duration
}

// ErrNoConsoles is returned by NewServer when Deps.Consoles is nil.
var ErrNoConsoles = errors.New("web: console registry is required")

// Server owns the handlers and their middleware.
type Server struct {
	deps      Deps
	opts      Options
	pages     *pageSet
	limiter   *middleware.RateLimiter
	stopSweep func()
}

// NewServer parses the templates and prepares the rate limiter. A nil
// Sender or Archiver falls back to the logging no-op, and an empty CSRF key
// is replaced with a random per-process one.
// An expired session releases its console.
// POST: Close must be called to stop the limiter and session sweeper goroutines
func NewServer(deps Deps, opts Options) (*Server, error) {
	if deps.Consoles == nil {
		return nil, ErrNoConsoles
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	if deps.Sender == nil {
		deps.Sender = email.NewNoopSender()
	}
	if deps.Archiver == nil {
		deps.Archiver = archive.NoopArchiver{}
	}
	if deps.Sessions == nil {
		deps.Sessions = middleware.NewSessionStore()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if len(opts.CSRFKey) == 0 {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate csrf key: %w", err)
		}
		opts.CSRFKey = key
		slog.Warn("csrf_key_generated", "note", "tokens will not survive a restart")
	}
	rate := opts.RateLimit
	if rate <= 0 {
		rate = DefaultRateLimit
	}
	middleware.SecureCookies = opts.Secure
	deps.Sessions.OnExpire(deps.Consoles.Release)
	return &Server{
		deps:      deps,
		opts:      opts,
		pages:     pages,
		limiter:   middleware.NewRateLimiter(rate, time.Second),
		stopSweep: deps.Sessions.SweepEvery(sessionSweepInterval),
	}, nil
}

// Close releases background resources.
func (s *Server) Close() {
	s.limiter.Close()
	s.stopSweep()
}

// Handler returns the routed, fully wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	var observe middleware.RequestObserver
	if s.deps.Metrics != nil {
		observe = s.deps.Metrics.ObserveRequest
	}

	// Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(middleware.CaptureRoute(mux),
		middleware.SecurityHeaders,
		middleware.CSRF(middleware.CSRFOptions{
			Key:            s.opts.CSRFKey,
			Secure:         s.opts.Secure,
			TrustedOrigins: s.opts.TrustedOrigins,
		}),
		middleware.Auth(s.deps.Sessions),
		middleware.RateLimit(s.limiter),
		middleware.Timing(s.deps.Collector, s.opts.SlowRequest, observe),
	)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	admin := func(h http.HandlerFunc) http.Handler { return middleware.RequireAdmin(h) }

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("GET /member", s.handleMemberPage)

	mux.Handle("GET /admin", admin(s.handleAdmin))
	mux.Handle("POST /admin/members/new", admin(s.handleNewMember))
	mux.Handle("POST /admin/members/actions", admin(s.handleMemberAction))
	mux.Handle("POST /admin/lists/new", admin(s.handleNewList))
	mux.Handle("POST /admin/lists/actions", admin(s.handleListAction))
	mux.Handle("POST /admin/modal/save", admin(s.handleModalSave))
	mux.Handle("POST /admin/modal/cancel", admin(s.handleModalCancel))
	mux.Handle("POST /admin/reports/send", admin(s.handleSendReport))
	mux.Handle("POST /admin/reports/archive", admin(s.handleArchiveReport))

	mux.Handle("GET /api/members", admin(s.handleAPIMembers))
	mux.Handle("GET /api/lists", admin(s.handleAPILists))
	mux.Handle("GET /api/lists/{id}/members", admin(s.handleAPIListMembers))
	mux.Handle("GET /api/schemes", admin(s.handleAPISchemes))
	mux.Handle("GET /api/perf", admin(s.handleAPIPerf))

	if s.deps.Metrics != nil {
		mux.Handle("GET /metrics", s.deps.Metrics.Handler())
	}
	mux.HandleFunc("GET /healthz", s.handleHealthz)
}

// console returns the caller's console, creating it on the first guarded
// request of the session. A new console preloads its scheme cache.
// PRE: the request passed RequireAdmin
func (s *Server) console(r *http.Request) *console.Console {
	token, _ := middleware.GetTokenFromContext(r.Context())
	c, created := s.deps.Consoles.Get(token)
	if created {
		c.Schemes.Load(r.Context())
	}
	return c
}

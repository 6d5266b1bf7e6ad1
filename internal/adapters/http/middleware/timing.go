package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"chitfund/internal/adapters/http/perf"
)

// DefaultSlowRequest is the threshold used when Timing is given zero.
const DefaultSlowRequest = 200 * time.Millisecond

// RequestObserver receives one call per timed request. route is the mux
// pattern that served the request, or "unmatched".
type RequestObserver func(method, route string, status int, elapsed time.Duration)

// requestIDCounter is an atomic counter for request IDs.
var requestIDCounter uint64

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the underlying ResponseWriter.
// PRE: code is a valid HTTP status code
// POST: status stored, header written to underlying ResponseWriter
func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Flush lets streaming handlers keep working behind the wrapper.
func (sw *statusWriter) Flush() {
	if f, ok := sw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// statusWriterPool reduces allocations on the hot path.
var statusWriterPool = sync.Pool{
	New: func() any {
		return &statusWriter{}
	},
}

// Timing returns middleware that logs request duration.
// Requests to /static/ are excluded.
// Normal requests log at DEBUG; requests at or above threshold log at WARN.
// collector and observe may be nil.
func Timing(collector *perf.Collector, threshold time.Duration, observe RequestObserver) func(http.Handler) http.Handler {
	if threshold <= 0 {
		threshold = DefaultSlowRequest
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			// Skip static assets
			if strings.HasPrefix(path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			reqID := atomic.AddUint64(&requestIDCounter, 1)
			route := new(string)
			r = r.WithContext(context.WithValue(r.Context(), routeContextKey, route))

			sw := statusWriterPool.Get().(*statusWriter)
			sw.ResponseWriter = w
			sw.status = http.StatusOK
			defer func() {
				elapsed := time.Since(start)
				durationMs := float64(elapsed.Microseconds()) / 1000.0

				attrs := []any{
					"request_id", reqID,
					"method", r.Method,
					"path", path,
					"status", sw.status,
					"duration_ms", durationMs,
				}
				if elapsed >= threshold {
					slog.Warn("slow_request", attrs...)
				} else {
					slog.Debug("request", attrs...)
				}

				if collector != nil {
					label := path
					if *route != "" {
						label = routeOf(*route, r)
					}
					collector.Record(perf.Sample{
						Kind:    perf.KindRequest,
						Label:   r.Method + " " + label,
						Status:  sw.status,
						Elapsed: elapsed,
						At:      start,
					})
				}
				if observe != nil {
					observe(r.Method, routeOf(*route, r), sw.status, elapsed)
				}

				sw.ResponseWriter = nil
				statusWriterPool.Put(sw)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}

const routeContextKey contextKey = "route"

// CaptureRoute wraps a ServeMux so Timing learns the matched pattern even
// when middleware between them replaced the request.
func CaptureRoute(mux http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		if route, ok := r.Context().Value(routeContextKey).(*string); ok {
			*route = r.Pattern
		}
	})
}

// routeOf returns the mux pattern without its method prefix.
func routeOf(captured string, r *http.Request) string {
	p := captured
	if p == "" {
		p = r.Pattern
	}
	if p == "" {
		return "unmatched"
	}
	if i := strings.IndexByte(p, ' '); i >= 0 {
		p = p[i+1:]
	}
	return p
}

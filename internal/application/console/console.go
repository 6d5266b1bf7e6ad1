// Package console holds the per-session state of the admin console: the
// scheme label cache, the modal, and notices waiting to be shown.
package console

import (
	"context"
	"sync"

	"chitfund/internal/application/modal"
	domain "chitfund/internal/domain/scheme"
)

// SchemeCache is the scheme lookup a console resolves labels through.
type SchemeCache interface {
	Load(ctx context.Context) domain.Lookup
	Loaded() bool
	Name(id string) string
}

// Console is the state of one signed-in admin session.
type Console struct {
	Schemes SchemeCache
	Modal   *modal.Controller

	mu      sync.Mutex
	notices []string
}

// New creates a console around the given scheme cache.
func New(schemes SchemeCache) *Console {
	return &Console{Schemes: schemes, Modal: modal.New()}
}

// Notify queues a blocking notice for the next rendered page.
func (c *Console) Notify(msg string) {
	if msg == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, msg)
}

// TakeNotices returns and clears the queued notices.
func (c *Console) TakeNotices() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	return out
}

// Registry maps session tokens to consoles.
type Registry struct {
	newConsole func() *Console

	mu       sync.Mutex
	consoles map[string]*Console
}

// NewRegistry creates a registry that builds consoles with newConsole.
func NewRegistry(newConsole func() *Console) *Registry {
	return &Registry{newConsole: newConsole, consoles: make(map[string]*Console)}
}

// Get returns the console for token, creating it on first use. created
// reports whether this call built it.
func (r *Registry) Get(token string) (c *Console, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.consoles[token]; ok {
		return c, false
	}
	c = r.newConsole()
	r.consoles[token] = c
	return c, true
}

// Release drops the console for token. Unknown tokens are ignored.
func (r *Registry) Release(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.consoles, token)
}

// Len returns the number of live consoles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.consoles)
}

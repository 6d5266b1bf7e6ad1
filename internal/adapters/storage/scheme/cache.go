package scheme

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"chitfund/internal/adapters/docstore"
	"chitfund/internal/adapters/storage"
	domain "chitfund/internal/domain/scheme"
)

// Collection is the read-only document collection holding schemes.
const Collection = "schemes"

// Cache is a single-shot lookup of scheme labels. The first Load fetches the
// collection; every later call returns the same mapping. There is no refresh.
type Cache struct {
	client docstore.Client
	obs    storage.Observer
	group  singleflight.Group

	mu     sync.RWMutex
	loaded bool
	lookup domain.Lookup
}

// NewCache creates an empty cache. recorder may be nil.
func NewCache(client docstore.Client, recorder storage.OpRecorder) *Cache {
	return &Cache{client: client, obs: storage.NewObserver(Collection, recorder)}
}

// Load populates the cache on first use and returns the mapping. A failed
// fetch caches an empty mapping. Concurrent first calls share one fetch.
// POST: Returns a non-nil Lookup
func (c *Cache) Load(ctx context.Context) domain.Lookup {
	c.mu.RLock()
	if c.loaded {
		l := c.lookup
		c.mu.RUnlock()
		return l
	}
	c.mu.RUnlock()

	v, _, _ := c.group.Do(Collection, func() (any, error) {
		c.mu.RLock()
		if c.loaded {
			l := c.lookup
			c.mu.RUnlock()
			return l, nil
		}
		c.mu.RUnlock()

		l := c.fetch(ctx)
		c.mu.Lock()
		c.lookup, c.loaded = l, true
		c.mu.Unlock()
		return l, nil
	})
	return v.(domain.Lookup)
}

func (c *Cache) fetch(ctx context.Context) domain.Lookup {
	lookup := domain.Lookup{}
	if c.client == nil {
		c.obs.Unavailable("list")
		return lookup
	}
	docs, err := c.client.List(ctx, Collection, docstore.Query{})
	if !c.obs.Done("list", "", err) {
		return lookup
	}
	for _, d := range docs {
		lookup[d.ID] = domain.FromFields(d.ID, d.Fields)
	}
	return lookup
}

// Loaded reports whether Load has completed.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Name resolves a scheme label from whatever is cached, without fetching.
// Before Load, or for an unknown id, it returns the placeholder.
func (c *Cache) Name(id string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lookup.Label(id)
}

// Seed writes schemes with their own ids, replacing existing documents.
// It is used by the seeding command, never by the console.
func Seed(ctx context.Context, client docstore.Client, schemes []domain.Scheme) error {
	for _, s := range schemes {
		if s.ID == "" {
			return fmt.Errorf("seed schemes: %w", docstore.ErrEmptyID)
		}
		if err := client.Set(ctx, Collection, s.ID, s.Fields()); err != nil {
			return fmt.Errorf("seed scheme %s: %w", s.ID, err)
		}
	}
	return nil
}

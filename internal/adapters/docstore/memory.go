package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Compile-time check that *MemoryClient satisfies Client.
var _ Client = (*MemoryClient)(nil)

type memoryDoc struct {
	seq    int64
	fields Fields
}

// MemoryClient keeps documents in process memory. Stored fields are
// round-tripped through JSON so callers see the same types the SQL
// backends return.
type MemoryClient struct {
	mu          sync.RWMutex
	collections map[string]map[string]memoryDoc
	seq         int64
	newID       func() string
}

// NewMemoryClient creates an empty in-memory store.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		collections: make(map[string]map[string]memoryDoc),
		newID:       uuid.NewString,
	}
}

func cloneFields(f Fields) (Fields, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	out := Fields{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return out, nil
}

// List returns the collection's documents in query order.
func (m *MemoryClient) List(ctx context.Context, collection string, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if q.OrderBy != "" {
		if err := ValidateField(q.OrderBy); err != nil {
			return nil, err
		}
	}

	m.mu.RLock()
	type entry struct {
		seq int64
		doc Document
	}
	entries := make([]entry, 0, len(m.collections[collection]))
	for id, d := range m.collections[collection] {
		if q.OrderBy != "" {
			if v, ok := d.fields[q.OrderBy]; !ok || v == nil {
				continue
			}
		}
		fields, err := cloneFields(d.fields)
		if err != nil {
			m.mu.RUnlock()
			return nil, err
		}
		entries = append(entries, entry{seq: d.seq, doc: Document{ID: id, Fields: fields}})
	}
	m.mu.RUnlock()

	if q.OrderBy == "" {
		sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	}
	docs := make([]Document, len(entries))
	for i, e := range entries {
		docs[i] = e.doc
	}
	if q.OrderBy != "" {
		sortDocuments(docs, q)
	}
	return docs, nil
}

// Get returns a copy of the document or ErrNotFound.
func (m *MemoryClient) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	m.mu.RLock()
	d, ok := m.collections[collection][id]
	m.mu.RUnlock()
	if !ok {
		return Document{}, ErrNotFound
	}
	fields, err := cloneFields(d.fields)
	if err != nil {
		return Document{}, err
	}
	return Document{ID: id, Fields: fields}, nil
}

// Add stores fields under a new random id.
func (m *MemoryClient) Add(ctx context.Context, collection string, fields Fields) (string, error) {
	id := m.newID()
	if err := m.Set(ctx, collection, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

// Set creates or replaces a document.
func (m *MemoryClient) Set(ctx context.Context, collection, id string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return ErrEmptyID
	}
	if err := validateCollection(collection); err != nil {
		return err
	}
	stored, err := cloneFields(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string]memoryDoc)
		m.collections[collection] = docs
	}
	seq := m.seq
	if existing, ok := docs[id]; ok {
		seq = existing.seq
	} else {
		m.seq++
	}
	docs[id] = memoryDoc{seq: seq, fields: stored}
	return nil
}

// Update merges fields into an existing document.
func (m *MemoryClient) Update(ctx context.Context, collection, id string, fields Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	patch, err := cloneFields(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	d.fields = merge(d.fields, patch)
	m.collections[collection][id] = d
	return nil
}

// Delete removes a document.
func (m *MemoryClient) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.collections[collection], id)
	return nil
}

// Len returns the number of documents in a collection.
func (m *MemoryClient) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}

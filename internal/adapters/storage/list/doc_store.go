package list

import (
	"context"
	"time"

	"chitfund/internal/adapters/docstore"
	"chitfund/internal/adapters/storage"
	domain "chitfund/internal/domain/list"
)

// Collection is the document collection holding lists.
const Collection = "lists"

// Compile-time check that *DocStore satisfies Store.
var _ Store = (*DocStore)(nil)

// DocStore implements Store on a document store client.
type DocStore struct {
	client docstore.Client
	obs    storage.Observer
	now    func() time.Time
}

// NewDocStore creates a list store. recorder may be nil.
func NewDocStore(client docstore.Client, recorder storage.OpRecorder) *DocStore {
	return &DocStore{
		client: client,
		obs:    storage.NewObserver(Collection, recorder),
		now:    time.Now,
	}
}

// WithClock replaces the clock used to stamp createdAt.
func (s *DocStore) WithClock(now func() time.Time) *DocStore {
	s.now = now
	return s
}

func (s *DocStore) available(op string) bool {
	if s == nil || s.client == nil {
		if s != nil {
			s.obs.Unavailable(op)
		}
		return false
	}
	return true
}

// List returns all lists, newest first.
// POST: Returns an empty, non-nil slice on failure
func (s *DocStore) List(ctx context.Context) []domain.List {
	if !s.available("list") {
		return []domain.List{}
	}
	docs, err := s.client.List(ctx, Collection, docstore.Query{OrderBy: domain.FieldCreatedAt, Desc: true})
	if !s.obs.Done("list", "", err) {
		return []domain.List{}
	}
	out := make([]domain.List, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.FromFields(d.ID, d.Fields))
	}
	return out
}

// GetByID retrieves a List. Not-found and failure both report false.
func (s *DocStore) GetByID(ctx context.Context, id string) (domain.List, bool) {
	if !s.available("get") {
		return domain.List{}, false
	}
	doc, err := s.client.Get(ctx, Collection, id)
	if !s.obs.Done("get", id, err) {
		return domain.List{}, false
	}
	return domain.FromFields(doc.ID, doc.Fields), true
}

// Add stores a new list stamped with the current time.
// PRE: value has passed Validate
func (s *DocStore) Add(ctx context.Context, value domain.List) bool {
	if !s.available("add") {
		return false
	}
	id, err := s.client.Add(ctx, Collection, value.CreateFields(s.now()))
	return s.obs.Done("add", id, err)
}

// Update overwrites title and description; createdAt is never touched.
func (s *DocStore) Update(ctx context.Context, id string, value domain.List) bool {
	if !s.available("update") {
		return false
	}
	err := s.client.Update(ctx, Collection, id, value.EditableFields())
	return s.obs.Done("update", id, err)
}

// Delete removes a list. Members that referenced it are left untouched.
func (s *DocStore) Delete(ctx context.Context, id string) bool {
	if !s.available("delete") {
		return false
	}
	err := s.client.Delete(ctx, Collection, id)
	return s.obs.Done("delete", id, err)
}

package member

import (
	"context"

	"chitfund/internal/adapters/docstore"
	"chitfund/internal/adapters/storage"
	domain "chitfund/internal/domain/member"
)

// Collection is the document collection holding members.
const Collection = "members"

// Compile-time check that *DocStore satisfies Store.
var _ Store = (*DocStore)(nil)

// DocStore implements Store on a document store client.
type DocStore struct {
	client docstore.Client
	obs    storage.Observer
}

// NewDocStore creates a member store. A nil client yields a store whose
// every call fails softly; recorder may be nil.
func NewDocStore(client docstore.Client, recorder storage.OpRecorder) *DocStore {
	return &DocStore{client: client, obs: storage.NewObserver(Collection, recorder)}
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

// List returns all members ordered by name ascending.
// POST: Returns an empty, non-nil slice on failure
func (s *DocStore) List(ctx context.Context) []domain.Member {
	if !s.available("list") {
		return []domain.Member{}
	}
	docs, err := s.client.List(ctx, Collection, docstore.Query{OrderBy: domain.FieldName})
	if !s.obs.Done("list", "", err) {
		return []domain.Member{}
	}
	out := make([]domain.Member, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.FromFields(d.ID, d.Fields))
	}
	return out
}

// GetByID retrieves a Member. Not-found and failure both report false.
func (s *DocStore) GetByID(ctx context.Context, id string) (domain.Member, bool) {
	if !s.available("get") {
		return domain.Member{}, false
	}
	doc, err := s.client.Get(ctx, Collection, id)
	if !s.obs.Done("get", id, err) {
		return domain.Member{}, false
	}
	return domain.FromFields(doc.ID, doc.Fields), true
}

// Add stores a new member under a store-assigned id.
// PRE: value has passed Validate
func (s *DocStore) Add(ctx context.Context, value domain.Member) bool {
	if !s.available("add") {
		return false
	}
	id, err := s.client.Add(ctx, Collection, value.Fields())
	return s.obs.Done("add", id, err)
}

// Update overwrites every member field of an existing document.
func (s *DocStore) Update(ctx context.Context, id string, value domain.Member) bool {
	if !s.available("update") {
		return false
	}
	err := s.client.Update(ctx, Collection, id, value.Fields())
	return s.obs.Done("update", id, err)
}

// Delete removes a member. Deleting a missing id reports false.
func (s *DocStore) Delete(ctx context.Context, id string) bool {
	if !s.available("delete") {
		return false
	}
	err := s.client.Delete(ctx, Collection, id)
	return s.obs.Done("delete", id, err)
}

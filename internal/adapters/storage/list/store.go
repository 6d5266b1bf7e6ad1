package list

import (
	"context"

	domain "chitfund/internal/domain/list"
)

// Store persists List state with the same soft-failure contract as the
// member store.
type Store interface {
	List(ctx context.Context) []domain.List
	GetByID(ctx context.Context, id string) (domain.List, bool)
	Add(ctx context.Context, value domain.List) bool
	Update(ctx context.Context, id string, value domain.List) bool
	Delete(ctx context.Context, id string) bool
}

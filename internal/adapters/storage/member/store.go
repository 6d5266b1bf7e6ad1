package member

import (
	"context"

	domain "chitfund/internal/domain/member"
)

// Store persists Member state. Every operation swallows failures: List
// returns an empty slice, GetByID reports absence, mutations report false.
type Store interface {
	List(ctx context.Context) []domain.Member
	GetByID(ctx context.Context, id string) (domain.Member, bool)
	Add(ctx context.Context, value domain.Member) bool
	Update(ctx context.Context, id string, value domain.Member) bool
	Delete(ctx context.Context, id string) bool
}

package projections

import (
	"context"

	domainList "chitfund/internal/domain/list"
	domainMember "chitfund/internal/domain/member"
)

// MemberStore is the read side of the member adapter. Failures arrive as an
// empty slice or absence, never as errors.
type MemberStore interface {
	List(ctx context.Context) []domainMember.Member
	GetByID(ctx context.Context, id string) (domainMember.Member, bool)
}

// ListStore is the read side of the list adapter.
type ListStore interface {
	List(ctx context.Context) []domainList.List
	GetByID(ctx context.Context, id string) (domainList.List, bool)
}

// SchemeNamer resolves scheme labels.
type SchemeNamer interface {
	Name(id string) string
}

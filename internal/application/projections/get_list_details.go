package projections

import (
	"context"
	"errors"

	domainScheme "chitfund/internal/domain/scheme"
)

// NoListMembers is shown when no member references the list.
const NoListMembers = "No members assigned to this list."

// ErrListNotFound is returned when the list cannot be fetched.
var ErrListNotFound = errors.New("list not found")

// GetListDetailsQuery carries query parameters.
type GetListDetailsQuery struct {
	ListID string
}

// GetListDetailsResult carries the query result.
type GetListDetailsResult struct {
	ID          string
	Title       string
	Description string
	Members     []MemberRow
	// Empty is the placeholder text when Members is empty.
	Empty string
}

// GetListDetailsDeps holds dependencies for GetListDetails.
type GetListDetailsDeps struct {
	ListStore   ListStore
	MemberStore MemberStore
	// Schemes labels each member's scheme the same way the member table
	// does. nil labels every row with the placeholder.
	Schemes SchemeNamer
}

// QueryGetListDetails loads a list and the members bucketed under it.
// PRE: ListID is non-empty
// POST: Members are those whose scheme id equals the list id, recomputed on every call
func QueryGetListDetails(ctx context.Context, query GetListDetailsQuery, deps GetListDetailsDeps) (GetListDetailsResult, error) {
	l, ok := deps.ListStore.GetByID(ctx, query.ListID)
	if !ok {
		return GetListDetailsResult{}, ErrListNotFound
	}

	result := GetListDetailsResult{
		ID:          l.ID,
		Title:       l.DisplayTitle(),
		Description: l.Description,
		Members:     []MemberRow{},
	}
	for _, m := range deps.MemberStore.List(ctx) {
		if m.BelongsTo(l.ID) {
			result.Members = append(result.Members, memberRow(m, schemeName(deps.Schemes, m.SchemeID), nil))
		}
	}
	if len(result.Members) == 0 {
		result.Empty = NoListMembers
	}
	return result, nil
}

func schemeName(schemes SchemeNamer, id string) string {
	if schemes == nil {
		return domainScheme.Placeholder
	}
	return schemes.Name(id)
}

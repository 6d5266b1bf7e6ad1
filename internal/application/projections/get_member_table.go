package projections

import (
	"context"

	"chitfund/internal/application/actions"
)

// GetMemberTableQuery carries query parameters.
type GetMemberTableQuery struct{}

// GetMemberTableResult carries the query result.
type GetMemberTableResult struct {
	Rows []MemberRow
}

// GetMemberTableDeps holds dependencies for GetMemberTable.
type GetMemberTableDeps struct {
	MemberStore MemberStore
	Schemes     SchemeNamer
}

// QueryGetMemberTable fetches every member and maps it to a row.
// PRE: the scheme cache has been loaded for labels to resolve
// POST: Rows keep the store order (name ascending); a failed fetch yields no rows
func QueryGetMemberTable(ctx context.Context, _ GetMemberTableQuery, deps GetMemberTableDeps) (GetMemberTableResult, error) {
	members := deps.MemberStore.List(ctx)
	rows := make([]MemberRow, 0, len(members))
	for _, m := range members {
		rows = append(rows, memberRow(m, deps.Schemes.Name(m.SchemeID), []actions.Action{actions.Edit, actions.Delete}))
	}
	return GetMemberTableResult{Rows: rows}, nil
}

package projections

import (
	"context"
	"time"
)

// GetListTableQuery carries query parameters.
type GetListTableQuery struct {
	// Location renders CreatedAt; nil means time.Local.
	Location *time.Location
}

// GetListTableResult carries the query result.
type GetListTableResult struct {
	Rows []ListRow
}

// GetListTableDeps holds dependencies for GetListTable.
type GetListTableDeps struct {
	ListStore ListStore
}

// QueryGetListTable fetches every list, newest first, and maps it to a row.
// POST: untitled lists show a dash; lists without a creation time show a blank date
func QueryGetListTable(ctx context.Context, query GetListTableQuery, deps GetListTableDeps) (GetListTableResult, error) {
	lists := deps.ListStore.List(ctx)
	rows := make([]ListRow, 0, len(lists))
	for _, l := range lists {
		rows = append(rows, listRow(l, query.Location))
	}
	return GetListTableResult{Rows: rows}, nil
}

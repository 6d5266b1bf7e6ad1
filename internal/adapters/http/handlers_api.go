package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"chitfund/internal/adapters/http/perf"
	"chitfund/internal/application/listutil"
	"chitfund/internal/application/projections"
)

// defaultPerfWindow is the /api/perf window when none is given.
const defaultPerfWindow = 15 * time.Minute

type memberJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	SchemeID  string `json:"schemeId"`
	Scheme    string `json:"scheme"`
	HasPrized bool   `json:"hasPrized"`
	Status    string `json:"status"`
}

type listJSON struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Created     string `json:"created"`
}

type schemeJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toMemberJSON(rows []projections.MemberRow) []memberJSON {
	out := make([]memberJSON, 0, len(rows))
	for _, r := range rows {
		out = append(out, memberJSON{
			ID:        r.ID,
			Name:      r.Name,
			Phone:     r.Phone,
			SchemeID:  r.SchemeID,
			Scheme:    r.SchemeLabel,
			HasPrized: r.HasPrized,
			Status:    r.Status,
		})
	}
	return out
}

func memberText(m memberJSON) []string { return []string{m.Name, m.Phone, m.Scheme} }

func listText(l listJSON) []string { return []string{l.Title, l.Description} }

// writePage filters rows by ?q= and cuts the ?page= window. The match count
// goes out in X-Total-Count so clients can page without a wrapper object.
func writePage[T any](w http.ResponseWriter, r *http.Request, rows []T, text func(T) []string) {
	page, info := listutil.Apply(rows, listutil.Parse(r.URL.Query()), text)
	w.Header().Set("X-Total-Count", strconv.Itoa(info.Total))
	w.Header().Set("X-Total-Pages", strconv.Itoa(info.TotalPages))
	writeJSON(w, http.StatusOK, page)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json_encode_failed", "error", err)
	}
}

// handleAPIMembers handles GET /api/members?q=&page=&per_page=
func (s *Server) handleAPIMembers(w http.ResponseWriter, r *http.Request) {
	c := s.console(r)
	res, err := projections.QueryGetMemberTable(r.Context(), projections.GetMemberTableQuery{},
		projections.GetMemberTableDeps{MemberStore: s.deps.Members, Schemes: c.Schemes})
	if err != nil {
		internalError(w, err)
		return
	}
	writePage(w, r, toMemberJSON(res.Rows), memberText)
}

// handleAPILists handles GET /api/lists?q=&page=&per_page=
func (s *Server) handleAPILists(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetListTable(r.Context(), projections.GetListTableQuery{Location: s.deps.Location},
		projections.GetListTableDeps{ListStore: s.deps.Lists})
	if err != nil {
		internalError(w, err)
		return
	}
	out := make([]listJSON, 0, len(res.Rows))
	for _, row := range res.Rows {
		out = append(out, listJSON{ID: row.ID, Title: row.Title, Description: row.Description, Created: row.Created})
	}
	writePage(w, r, out, listText)
}

// handleAPIListMembers handles GET /api/lists/{id}/members
func (s *Server) handleAPIListMembers(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetListDetails(r.Context(), projections.GetListDetailsQuery{ListID: r.PathValue("id")},
		projections.GetListDetailsDeps{ListStore: s.deps.Lists, MemberStore: s.deps.Members, Schemes: s.console(r).Schemes})
	if errors.Is(err, projections.ErrListNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writePage(w, r, toMemberJSON(res.Members), memberText)
}

// handleAPISchemes handles GET /api/schemes
func (s *Server) handleAPISchemes(w http.ResponseWriter, r *http.Request) {
	schemes := s.console(r).Schemes.Load(r.Context()).Sorted()
	out := make([]schemeJSON, 0, len(schemes))
	for _, sc := range schemes {
		out = append(out, schemeJSON{ID: sc.ID, Name: sc.DisplayName()})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleAPIPerf handles GET /api/perf?window=15m
func (s *Server) handleAPIPerf(w http.ResponseWriter, r *http.Request) {
	if s.deps.Collector == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	window := defaultPerfWindow
	if raw := r.URL.Query().Get("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			http.Error(w, "window must be a positive duration", http.StatusBadRequest)
			return
		}
		window = d
	}
	writeJSON(w, http.StatusOK, s.deps.Collector.Snapshot(s.deps.Now().Add(-window), perf.DefaultTopN))
}

// handleHealthz handles GET /healthz
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ping(ctx); err != nil {
			slog.Error("health_check_failed", "error", err)
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

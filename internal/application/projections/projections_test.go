package projections

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"chitfund/internal/application/actions"
	domainList "chitfund/internal/domain/list"
	domainMember "chitfund/internal/domain/member"
	domainScheme "chitfund/internal/domain/scheme"
)

type fakeMemberStore struct{ members []domainMember.Member }

func (f *fakeMemberStore) List(context.Context) []domainMember.Member { return f.members }
func (f *fakeMemberStore) GetByID(_ context.Context, id string) (domainMember.Member, bool) {
	for _, m := range f.members {
		if m.ID == id {
			return m, true
		}
	}
	return domainMember.Member{}, false
}

type fakeListStore struct{ lists []domainList.List }

func (f *fakeListStore) List(context.Context) []domainList.List { return f.lists }
func (f *fakeListStore) GetByID(_ context.Context, id string) (domainList.List, bool) {
	for _, l := range f.lists {
		if l.ID == id {
			return l, true
		}
	}
	return domainList.List{}, false
}

// TestIDPreview covers long, short and multibyte ids.
func TestIDPreview(t *testing.T) {
	tests := map[string]string{
		"abcdef123456": "abcdef...",
		"abc":          "abc...",
		"":             "...",
		"ééééééé":      "éééééé...",
	}
	for in, want := range tests {
		if got := IDPreview(in); got != want {
			t.Errorf("IDPreview(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestQueryGetMemberTable verifies the Asha/S1 scenario with and without a known scheme.
func TestQueryGetMemberTable(t *testing.T) {
	members := &fakeMemberStore{members: []domainMember.Member{
		{ID: "m1aaaaaa", Name: "Asha", SchemeID: "S1"},
		{ID: "m2bbbbbb", Name: "Ravi", Phone: "555", SchemeID: "S9", HasPrized: true},
	}}
	schemes := domainScheme.Lookup{"S1": {ID: "S1", Name: "Gold 20"}}

	got, err := QueryGetMemberTable(context.Background(), GetMemberTableQuery{}, GetMemberTableDeps{
		MemberStore: members,
		Schemes:     lookupNamer(schemes),
	})
	if err != nil {
		t.Fatalf("QueryGetMemberTable() error = %v", err)
	}

	rowActions := []actions.Action{actions.Edit, actions.Delete}
	want := []MemberRow{
		{ID: "m1aaaaaa", IDPreview: "m1aaaa...", Name: "Asha", SchemeID: "S1", SchemeLabel: "Gold 20",
			Status: "Active", StatusClass: "status-active", Actions: rowActions},
		{ID: "m2bbbbbb", IDPreview: "m2bbbb...", Name: "Ravi", Phone: "555", SchemeID: "S9", SchemeLabel: "—",
			HasPrized: true, Status: "Prized", StatusClass: "status-prized", Actions: rowActions},
	}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

// TestQueryGetMemberTable_Empty verifies a failed fetch renders an empty, non-nil table.
func TestQueryGetMemberTable_Empty(t *testing.T) {
	got, _ := QueryGetMemberTable(context.Background(), GetMemberTableQuery{}, GetMemberTableDeps{
		MemberStore: &fakeMemberStore{},
		Schemes:     lookupNamer(nil),
	})
	if got.Rows == nil || len(got.Rows) != 0 {
		t.Errorf("Rows = %#v, want empty slice", got.Rows)
	}
}

// TestQueryGetListTable verifies title fallback, blank dates and the local-time rendering.
func TestQueryGetListTable(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	created := time.Date(2025, 3, 1, 4, 30, 0, 0, time.UTC)
	lists := &fakeListStore{lists: []domainList.List{
		{ID: "l2zzzzzz", Title: "March", Description: "monthly", CreatedAt: created},
		{ID: "l1yyyyyy"},
	}}

	got, err := QueryGetListTable(context.Background(), GetListTableQuery{Location: loc}, GetListTableDeps{ListStore: lists})
	if err != nil {
		t.Fatal(err)
	}
	rowActions := []actions.Action{actions.View, actions.Edit, actions.Delete}
	want := []ListRow{
		{ID: "l2zzzzzz", IDPreview: "l2zzzz...", Title: "March", Description: "monthly", Created: "01 Mar 2025, 10:00", Actions: rowActions},
		{ID: "l1yyyyyy", IDPreview: "l1yyyy...", Title: "—", Created: "", Actions: rowActions},
	}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

// TestQueryGetListDetails covers derived membership as members move in and out.
func TestQueryGetListDetails(t *testing.T) {
	ctx := context.Background()
	lists := &fakeListStore{lists: []domainList.List{{ID: "L1", Title: "Gold"}}}
	members := &fakeMemberStore{}
	deps := GetListDetailsDeps{ListStore: lists, MemberStore: members}

	got, err := QueryGetListDetails(ctx, GetListDetailsQuery{ListID: "L1"}, deps)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Members) != 0 || got.Empty != NoListMembers {
		t.Errorf("empty list: %+v", got)
	}

	members.members = []domainMember.Member{
		{ID: "m1", Name: "Asha", SchemeID: "L1"},
		{ID: "m2", Name: "Ravi", SchemeID: "L2"},
		{ID: "m3", Name: "Sita", SchemeID: "L1", HasPrized: true},
	}
	got, _ = QueryGetListDetails(ctx, GetListDetailsQuery{ListID: "L1"}, deps)
	names := []string{}
	for _, m := range got.Members {
		names = append(names, m.Name+"/"+m.Status)
	}
	if diff := cmp.Diff([]string{"Asha/Active", "Sita/Prized"}, names); diff != "" {
		t.Errorf("members mismatch (-want +got):\n%s", diff)
	}
	if got.Empty != "" {
		t.Errorf("Empty = %q, want blank when members exist", got.Empty)
	}

	// Moving Asha out is reflected on the next view; nothing is cached.
	members.members[0].SchemeID = "L2"
	got, _ = QueryGetListDetails(ctx, GetListDetailsQuery{ListID: "L1"}, deps)
	if len(got.Members) != 1 || got.Members[0].Name != "Sita" {
		t.Errorf("after move: %+v", got.Members)
	}

	if _, err := QueryGetListDetails(ctx, GetListDetailsQuery{ListID: "nope"}, deps); !errors.Is(err, ErrListNotFound) {
		t.Errorf("missing list error = %v, want ErrListNotFound", err)
	}
}

// TestQueryGetListDetails_SchemeLabels verifies details rows label schemes
// exactly as the member table does.
func TestQueryGetListDetails_SchemeLabels(t *testing.T) {
	ctx := context.Background()
	lists := &fakeListStore{lists: []domainList.List{{ID: "L1", Title: "Gold"}}}
	members := &fakeMemberStore{members: []domainMember.Member{{ID: "m1", Name: "Asha", SchemeID: "L1"}}}
	schemes := lookupNamer{"S1": {ID: "S1", Name: "Gold 20"}}

	details, err := QueryGetListDetails(ctx, GetListDetailsQuery{ListID: "L1"},
		GetListDetailsDeps{ListStore: lists, MemberStore: members, Schemes: schemes})
	if err != nil {
		t.Fatal(err)
	}
	table, err := QueryGetMemberTable(ctx, GetMemberTableQuery{}, GetMemberTableDeps{MemberStore: members, Schemes: schemes})
	if err != nil {
		t.Fatal(err)
	}
	if len(details.Members) != 1 || details.Members[0].SchemeLabel != table.Rows[0].SchemeLabel {
		t.Errorf("details label = %+v, table label = %q", details.Members, table.Rows[0].SchemeLabel)
	}
	if details.Members[0].SchemeLabel == "Gold" {
		t.Error("the list title must not stand in for the scheme label")
	}

	details, _ = QueryGetListDetails(ctx, GetListDetailsQuery{ListID: "L1"},
		GetListDetailsDeps{ListStore: lists, MemberStore: members})
	if details.Members[0].SchemeLabel != domainScheme.Placeholder {
		t.Errorf("label without schemes = %q, want the placeholder", details.Members[0].SchemeLabel)
	}
}

// TestQueryGetReportSummary verifies tallies, the unassigned bucket and the rendered HTML.
func TestQueryGetReportSummary(t *testing.T) {
	lists := &fakeListStore{lists: []domainList.List{
		{ID: "L2", Title: "Silver | B"},
		{ID: "L1", Title: "Gold"},
	}}
	members := &fakeMemberStore{members: []domainMember.Member{
		{ID: "m1", Name: "Asha", SchemeID: "L1"},
		{ID: "m2", Name: "Ravi", SchemeID: "L1", HasPrized: true},
		{ID: "m3", Name: "Sita", SchemeID: "L2"},
		{ID: "m4", Name: "Uma"},
	}}

	got, err := QueryGetReportSummary(context.Background(), GetReportSummaryQuery{
		GeneratedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
		Location:    time.UTC,
	}, GetReportSummaryDeps{ListStore: lists, MemberStore: members})
	if err != nil {
		t.Fatalf("QueryGetReportSummary() error = %v", err)
	}

	if got.Lists != 2 || got.Members != 4 || got.Active != 3 || got.Prized != 1 {
		t.Errorf("totals = %d/%d/%d/%d", got.Lists, got.Members, got.Active, got.Prized)
	}
	want := []ListCount{
		{ListID: "L2", Title: "Silver | B", Members: 1},
		{ListID: "L1", Title: "Gold", Members: 2, Prized: 1},
		{Title: UnassignedLabel, Members: 1},
	}
	if diff := cmp.Diff(want, got.PerList); diff != "" {
		t.Errorf("PerList mismatch (-want +got):\n%s", diff)
	}

	for _, s := range []string{"# Chit fund summary", "Generated 01 Jun 2025, 09:00", `Silver \| B`} {
		if !strings.Contains(got.Markdown, s) {
			t.Errorf("Markdown missing %q:\n%s", s, got.Markdown)
		}
	}
	for _, s := range []string{"<h1>Chit fund summary</h1>", "<table>", "<td>Silver | B</td>"} {
		if !strings.Contains(got.HTML, s) {
			t.Errorf("HTML missing %q:\n%s", s, got.HTML)
		}
	}
}

// TestQueryGetReportSummary_Empty verifies an empty store still renders.
func TestQueryGetReportSummary_Empty(t *testing.T) {
	got, err := QueryGetReportSummary(context.Background(), GetReportSummaryQuery{}, GetReportSummaryDeps{
		ListStore: &fakeListStore{}, MemberStore: &fakeMemberStore{},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got.Markdown, "No lists yet.") || strings.Contains(got.Markdown, "Generated") {
		t.Errorf("Markdown = %q", got.Markdown)
	}
}

// TestRenderMarkdown_EscapesHTML verifies raw HTML never passes through.
func TestRenderMarkdown_EscapesHTML(t *testing.T) {
	got, err := RenderMarkdown("hello <script>alert(1)</script>")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("RenderMarkdown() leaked raw HTML: %s", got)
	}
}

type lookupNamer domainScheme.Lookup

func (l lookupNamer) Name(id string) string { return domainScheme.Lookup(l).Label(id) }

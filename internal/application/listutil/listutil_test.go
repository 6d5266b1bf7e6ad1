package listutil

import (
	"net/url"
	"testing"
)

// TestParse covers defaults, clamping and the per_page allow-list.
func TestParse(t *testing.T) {
	tests := []struct {
		name string
		q    url.Values
		want Params
	}{
		{"empty", url.Values{}, Params{PerPage: DefaultPerPage}},
		{"search trimmed", url.Values{"q": {"  asha "}}, Params{Search: "asha", PerPage: DefaultPerPage}},
		{"page and size", url.Values{"page": {"3"}, "per_page": {"50"}}, Params{Page: 3, PerPage: 50}},
		{"negative page", url.Values{"page": {"-1"}}, Params{Page: 1, PerPage: DefaultPerPage}},
		{"garbage page", url.Values{"page": {"x"}}, Params{PerPage: DefaultPerPage}},
		{"disallowed size", url.Values{"page": {"1"}, "per_page": {"25"}}, Params{Page: 1, PerPage: DefaultPerPage}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.q); got != tt.want {
				t.Errorf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// TestNewPageInfo verifies page clamping and the total page count.
func TestNewPageInfo(t *testing.T) {
	tests := []struct {
		page, perPage, total int
		wantPage, wantPages  int
		wantOffset, wantEnd  int
	}{
		{1, 10, 0, 1, 1, 0, 0},
		{1, 10, 25, 1, 3, 0, 10},
		{3, 10, 25, 3, 3, 20, 25},
		{9, 10, 25, 3, 3, 20, 25},
		{0, 0, 5, 1, 1, 0, 5},
	}
	for _, tt := range tests {
		p := NewPageInfo(tt.page, tt.perPage, tt.total)
		if p.Page != tt.wantPage || p.TotalPages != tt.wantPages {
			t.Errorf("NewPageInfo(%d,%d,%d) = %+v", tt.page, tt.perPage, tt.total, p)
		}
		if p.Offset() != tt.wantOffset || p.End() != tt.wantEnd {
			t.Errorf("NewPageInfo(%d,%d,%d) window = [%d,%d), want [%d,%d)",
				tt.page, tt.perPage, tt.total, p.Offset(), p.End(), tt.wantOffset, tt.wantEnd)
		}
	}
}

// TestMatches verifies case-insensitive substring matching.
func TestMatches(t *testing.T) {
	if !Matches("", "anything") {
		t.Error("empty search should match")
	}
	if !Matches("GOLD", "Silver", "gold 100k") {
		t.Error("search should match any field ignoring case")
	}
	if Matches("bronze", "Silver", "Gold") {
		t.Error("unexpected match")
	}
}

// TestApply covers search then paging.
func TestApply(t *testing.T) {
	rows := []string{"Asha", "Ravi", "Anil", "Arun", "Meena"}
	text := func(s string) []string { return []string{s} }

	got, info := Apply(rows, Params{Search: "a"}, text)
	if len(got) != 5 || info.Total != 5 || info.TotalPages != 1 {
		t.Errorf("unpaged = %v %+v", got, info)
	}

	got, info = Apply(rows, Params{Search: "an", Page: 1, PerPage: 10}, text)
	if len(got) != 1 || got[0] != "Anil" {
		t.Errorf("search = %v", got)
	}

	got, info = Apply(rows, Params{Page: 2, PerPage: 2}, text)
	if len(got) != 2 || got[0] != "Anil" || info.Total != 5 || info.TotalPages != 3 {
		t.Errorf("page 2 = %v %+v", got, info)
	}

	got, _ = Apply(rows, Params{Search: "zzz", Page: 1, PerPage: 10}, text)
	if len(got) != 0 {
		t.Errorf("no match = %v", got)
	}
}

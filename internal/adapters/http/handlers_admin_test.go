package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"chitfund/internal/application/modal"
	"chitfund/internal/application/orchestrators"
	"chitfund/internal/application/projections"
	domainList "chitfund/internal/domain/list"
	domainMember "chitfund/internal/domain/member"
	domainScheme "chitfund/internal/domain/scheme"
)

// adminBody renders GET /admin?module=m for the test admin.
func (f *fixture) adminBody(t *testing.T, m string) string {
	t.Helper()
	rr := httptest.NewRecorder()
	f.srv.handleAdmin(rr, f.adminRequest("GET", "/admin?module="+m, nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /admin?module=%s status = %d", m, rr.Code)
	}
	return rr.Body.String()
}

func (f *fixture) post(t *testing.T, h http.HandlerFunc, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h(rr, f.adminRequest("POST", target, form))
	return rr
}

// TestAdmin_FirstLoadPreloadsSchemes verifies the console is created once
// with its scheme cache filled.
func TestAdmin_FirstLoadPreloadsSchemes(t *testing.T) {
	f := newFixture(t, nil)
	f.seedSchemes(t, domainScheme.Scheme{ID: "S1", Name: "Gold 100k"})

	f.adminBody(t, "dashboard")
	c, created := f.consoles.Get("admin-token")
	if created {
		t.Fatal("console should exist after the first page load")
	}
	if !c.Schemes.Loaded() {
		t.Error("scheme cache not preloaded")
	}
}

// TestAdmin_NavigationActiveClass verifies exactly the selected module is marked.
func TestAdmin_NavigationActiveClass(t *testing.T) {
	f := newFixture(t, nil)
	body := f.adminBody(t, "members")

	if !strings.Contains(body, `<a href="/admin?module=members" class="active">Members</a>`) {
		t.Error("members nav link not active")
	}
	if strings.Count(body, `class="active"`) != 1 {
		t.Errorf("active links = %d, want 1", strings.Count(body, `class="active"`))
	}
}

// TestAdmin_Modules verifies each module's content and the fallback card.
func TestAdmin_Modules(t *testing.T) {
	f := newFixture(t, nil)
	tests := []struct {
		module string
		want   []string
	}{
		{"", []string{"Add List", `id="lists-table"`}},
		{"overview", []string{"Auction setup and collection tracking.", "Review and process pending dues."}},
		{"auction", []string{"Auction &amp; Collection", "Auction setup and collection tracking."}},
		{"pending", []string{"Pending Dues &amp; Interest"}},
		{"reports", []string{"Chit fund summary", "Send report", "owner@example.com"}},
		{"nonsense", []string{fallbackTitle, fallbackDescription}},
	}
	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			body := f.adminBody(t, tt.module)
			for _, w := range tt.want {
				if !strings.Contains(body, w) {
					t.Errorf("module %q missing %q", tt.module, w)
				}
			}
		})
	}
}

// TestAdmin_AddMemberFlow walks the add member modal from open to success.
func TestAdmin_AddMemberFlow(t *testing.T) {
	f := newFixture(t, nil)
	f.seedSchemes(t, domainScheme.Scheme{ID: "S1", Name: "Gold 100k"})

	rr := f.post(t, f.srv.handleNewMember, "/admin/members/new", url.Values{})
	assertRedirect(t, rr, "/admin?module=members")

	body := f.adminBody(t, "members")
	if !strings.Contains(body, `<h3 id="modal-title">Add Member</h3>`) || !strings.Contains(body, `<option value="S1">Gold 100k</option>`) {
		t.Fatal("add member modal not rendered with scheme options")
	}

	rr = f.post(t, f.srv.handleModalSave, "/admin/modal/save", url.Values{
		"module": {"members"}, "name": {"Asha"}, "phone": {"98400"}, "schemeId": {"S1"}, "hasPrized": {"false"},
	})
	assertRedirect(t, rr, "/admin?module=members")

	got := f.members.List(context.Background())
	if len(got) != 1 || got[0].Name != "Asha" || got[0].SchemeID != "S1" {
		t.Fatalf("stored members = %+v", got)
	}

	body = f.adminBody(t, "members")
	for _, want := range []string{
		"Success! Member Asha has been added to the cloud database.",
		"Gold 100k",
		`<td class="status-active">Active</td>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("members page missing %q", want)
		}
	}
	if strings.Contains(body, `id="modal"`) {
		t.Error("modal should be closed after a successful save")
	}
	if strings.Contains(f.adminBody(t, "members"), "Success!") {
		t.Error("notice should be shown once")
	}
}

// TestAdmin_AddMemberSchemeRequired verifies the modal stays open with the
// validation message and the typed values.
func TestAdmin_AddMemberSchemeRequired(t *testing.T) {
	f := newFixture(t, nil)
	f.post(t, f.srv.handleNewMember, "/admin/members/new", url.Values{})

	f.post(t, f.srv.handleModalSave, "/admin/modal/save", url.Values{
		"module": {"members"}, "name": {"Asha"}, "schemeId": {""},
	})

	body := f.adminBody(t, "members")
	if !strings.Contains(body, orchestrators.MsgSchemeRequired) {
		t.Error("scheme required message missing")
	}
	if !strings.Contains(body, `value="Asha"`) {
		t.Error("typed name should be kept")
	}
	if len(f.members.List(context.Background())) != 0 {
		t.Error("nothing should be stored")
	}
}

// TestAdmin_EditMemberToPrized verifies the edit form saves and the status flips.
func TestAdmin_EditMemberToPrized(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.members.Add(ctx, domainMember.Member{Name: "Asha", SchemeID: "S1"})
	id := f.members.List(ctx)[0].ID

	rr := f.post(t, f.srv.handleMemberAction, "/admin/members/actions", url.Values{"action": {"edit"}, "id": {id}})
	assertRedirect(t, rr, "/admin?module=members")
	if !strings.Contains(f.adminBody(t, "members"), "Edit Member") {
		t.Fatal("edit modal not shown")
	}

	f.post(t, f.srv.handleModalSave, "/admin/modal/save", url.Values{
		"module": {"members"}, "name": {"Asha"}, "schemeId": {"S1"}, "hasPrized": {"true"},
	})
	if !strings.Contains(f.adminBody(t, "members"), `<td class="status-prized">Prized</td>`) {
		t.Error("member not shown as prized")
	}
}

var schemeInput = regexp.MustCompile(`id="m-scheme" name="schemeId" value="([^"]*)"`)

// TestAdmin_EditMemberKeepsListScheme verifies a member assigned to a list
// keeps that assignment through an edit while schemes are seeded.
func TestAdmin_EditMemberKeepsListScheme(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.seedSchemes(t, domainScheme.Scheme{ID: "S1", Name: "Gold 100k"})
	f.lists.Add(ctx, domainList.List{Title: "March batch"})
	listID := f.lists.List(ctx)[0].ID
	f.members.Add(ctx, domainMember.Member{Name: "Asha", Phone: "98400", SchemeID: listID})
	id := f.members.List(ctx)[0].ID

	f.post(t, f.srv.handleMemberAction, "/admin/members/actions", url.Values{"action": {"edit"}, "id": {id}})
	body := f.adminBody(t, "members")

	m := schemeInput.FindStringSubmatch(body)
	if m == nil {
		t.Fatal("scheme id input missing from the edit form")
	}
	if m[1] != listID {
		t.Fatalf("scheme id input = %q, want the list id %q", m[1], listID)
	}
	for _, want := range []string{
		`<option value="S1">Gold 100k</option>`,
		`<option value="` + listID + `">List: March batch</option>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scheme suggestions missing %q", want)
		}
	}

	f.post(t, f.srv.handleModalSave, "/admin/modal/save", url.Values{
		"module": {"members"}, "name": {"Asha"}, "phone": {"98400"}, "schemeId": {m[1]}, "hasPrized": {"true"},
	})
	got, ok := f.members.GetByID(ctx, id)
	if !ok || got.SchemeID != listID || !got.HasPrized {
		t.Errorf("member after edit = %+v, want schemeId %q and prized", got, listID)
	}
}

// TestAdmin_EditMemberUnknownScheme verifies an id that is neither a scheme
// nor a list is shown as is.
func TestAdmin_EditMemberUnknownScheme(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.seedSchemes(t, domainScheme.Scheme{ID: "S1", Name: "Gold 100k"})
	f.members.Add(ctx, domainMember.Member{Name: "Ravi", SchemeID: "legacy-9"})
	id := f.members.List(ctx)[0].ID

	f.post(t, f.srv.handleMemberAction, "/admin/members/actions", url.Values{"action": {"edit"}, "id": {id}})
	m := schemeInput.FindStringSubmatch(f.adminBody(t, "members"))
	if m == nil || m[1] != "legacy-9" {
		t.Errorf("scheme id input = %v, want legacy-9", m)
	}
}

// TestAdmin_MemberActions covers delete, missing rows and bad actions.
func TestAdmin_MemberActions(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.members.Add(ctx, domainMember.Member{Name: "Asha"})
	id := f.members.List(ctx)[0].ID

	rr := f.post(t, f.srv.handleMemberAction, "/admin/members/actions", url.Values{"action": {"delete"}, "id": {id}})
	assertRedirect(t, rr, "/admin?module=members")
	if len(f.members.List(ctx)) != 0 {
		t.Error("member not deleted")
	}

	rr = f.post(t, f.srv.handleMemberAction, "/admin/members/actions", url.Values{"action": {"delete"}, "id": {id}})
	if rr.Code != http.StatusNoContent {
		t.Errorf("second delete status = %d, want 204", rr.Code)
	}
	if body := f.adminBody(t, "members"); !strings.Contains(body, msgNothingDeleted) {
		t.Error("missed delete should leave a notice for the next page")
	}

	rr = f.post(t, f.srv.handleMemberAction, "/admin/members/actions", url.Values{"action": {"view"}, "id": {id}})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("view on members status = %d, want 400", rr.Code)
	}

	rr = f.post(t, f.srv.handleMemberAction, "/admin/members/actions", url.Values{"action": {"edit"}})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing id status = %d, want 400", rr.Code)
	}

	rr = f.post(t, f.srv.handleMemberAction, "/admin/members/actions", url.Values{"action": {"edit"}, "id": {"ghost"}})
	assertRedirect(t, rr, "/admin?module=members")
	if !strings.Contains(f.adminBody(t, "members"), orchestrators.MsgMemberNotFound) {
		t.Error("not found notice missing")
	}
}

// TestAdmin_ListFlow covers add, view details with derived members and cancel.
func TestAdmin_ListFlow(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.post(t, f.srv.handleNewList, "/admin/lists/new", url.Values{})
	rr := f.post(t, f.srv.handleModalSave, "/admin/modal/save", url.Values{
		"module": {"dashboard"}, "title": {"March batch"}, "description": {"Monthly <b>draw</b>"},
	})
	assertRedirect(t, rr, "/admin?module=dashboard")

	lists := f.lists.List(ctx)
	if len(lists) != 1 {
		t.Fatalf("lists = %+v", lists)
	}
	body := f.adminBody(t, "dashboard")
	if !strings.Contains(body, "March batch") || !strings.Contains(body, "Monthly &lt;b&gt;draw&lt;/b&gt;") {
		t.Error("list row missing or unescaped")
	}
	if !strings.Contains(body, lists[0].CreatedAt.In(time.UTC).Format(projections.DateTimeLayout)) {
		t.Error("created date missing")
	}

	f.post(t, f.srv.handleListAction, "/admin/lists/actions", url.Values{"action": {"view"}, "id": {lists[0].ID}})
	if !strings.Contains(f.adminBody(t, "dashboard"), "No members assigned to this list.") {
		t.Error("empty details message missing")
	}

	f.members.Add(ctx, domainMember.Member{Name: "Ravi", SchemeID: lists[0].ID})
	f.post(t, f.srv.handleListAction, "/admin/lists/actions", url.Values{"action": {"view"}, "id": {lists[0].ID}})
	if !strings.Contains(f.adminBody(t, "dashboard"), "<td>Ravi</td>") {
		t.Error("derived member missing from details")
	}

	rr = f.post(t, f.srv.handleModalCancel, "/admin/modal/cancel", url.Values{"module": {"dashboard"}})
	assertRedirect(t, rr, "/admin?module=dashboard")
	c, _ := f.consoles.Get("admin-token")
	if c.Modal.State() != modal.Hidden {
		t.Error("cancel should hide the modal")
	}
}

// TestAdmin_DeleteListKeepsMembers verifies members are untouched when their list goes.
func TestAdmin_DeleteListKeepsMembers(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.lists.Add(ctx, domainList.List{Title: "Gold"})
	id := f.lists.List(ctx)[0].ID
	f.members.Add(ctx, domainMember.Member{Name: "Asha", SchemeID: id})

	rr := f.post(t, f.srv.handleListAction, "/admin/lists/actions", url.Values{"action": {"Delete"}, "id": {id}})
	assertRedirect(t, rr, "/admin?module=dashboard")
	if len(f.lists.List(ctx)) != 0 || len(f.members.List(ctx)) != 1 {
		t.Error("list delete should leave members in place")
	}
}

// TestModalSave_Hidden verifies saving with no open modal changes nothing.
func TestModalSave_Hidden(t *testing.T) {
	f := newFixture(t, nil)
	rr := f.post(t, f.srv.handleModalSave, "/admin/modal/save", url.Values{"module": {"../evil"}, "name": {"x"}})
	assertRedirect(t, rr, "/admin?module=dashboard")
	if len(f.members.List(context.Background())) != 0 {
		t.Error("hidden modal save stored something")
	}
}

// TestReports_Send verifies the email goes out and a notice follows.
func TestReports_Send(t *testing.T) {
	f := newFixture(t, nil)
	f.members.Add(context.Background(), domainMember.Member{Name: "Asha"})

	rr := f.post(t, f.srv.handleSendReport, "/admin/reports/send", url.Values{})
	assertRedirect(t, rr, "/admin?module=reports")

	if len(f.sender.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(f.sender.sent))
	}
	if got := f.sender.sent[0].Subject; got != "Chit fund summary 2025-03-01" {
		t.Errorf("subject = %q", got)
	}
	if !strings.Contains(f.adminBody(t, "reports"), "Report sent to 1 recipient(s).") {
		t.Error("sent notice missing")
	}
}

// TestReports_Failures verifies each failure gets its own notice.
func TestReports_Failures(t *testing.T) {
	t.Run("no recipients", func(t *testing.T) {
		f := newFixture(t, func(d *Deps) { d.ReportTo = nil })
		f.post(t, f.srv.handleSendReport, "/admin/reports/send", url.Values{})
		if !strings.Contains(f.adminBody(t, "reports"), msgNoRecipients) {
			t.Error("no recipients notice missing")
		}
	})
	t.Run("provider error", func(t *testing.T) {
		f := newFixture(t, nil)
		f.sender.err = errors.New("rate limited")
		f.post(t, f.srv.handleSendReport, "/admin/reports/send", url.Values{})
		if !strings.Contains(f.adminBody(t, "reports"), msgReportFailed) {
			t.Error("send failure notice missing")
		}
	})
	t.Run("archive disabled", func(t *testing.T) {
		f := newFixture(t, nil)
		f.post(t, f.srv.handleArchiveReport, "/admin/reports/archive", url.Values{})
		if !strings.Contains(f.adminBody(t, "reports"), msgArchiveDisabled) {
			t.Error("archive disabled notice missing")
		}
	})
}

// fakeArchiver stores one report in memory.
type fakeArchiver struct{ keys []string }

func (a *fakeArchiver) Archive(_ context.Context, key string, _ []byte, _ string) (string, error) {
	a.keys = append(a.keys, key)
	return "s3://reports/" + key, nil
}

func (a *fakeArchiver) Enabled() bool { return true }

// TestReports_Archive verifies the archive location is reported back.
func TestReports_Archive(t *testing.T) {
	arch := &fakeArchiver{}
	f := newFixture(t, func(d *Deps) { d.Archiver = arch })

	f.post(t, f.srv.handleArchiveReport, "/admin/reports/archive", url.Values{})
	if len(arch.keys) != 1 {
		t.Fatalf("archived = %d", len(arch.keys))
	}
	if !strings.Contains(f.adminBody(t, "reports"), "Report archived to s3://reports/"+arch.keys[0]) {
		t.Error("archive notice missing")
	}
}

package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"chitfund/internal/application/actions"
	"chitfund/internal/application/console"
	"chitfund/internal/application/modal"
	"chitfund/internal/application/orchestrators"
	"chitfund/internal/application/projections"
	"chitfund/internal/domain/module"
)

// Report notices
const (
	msgReportSent       = "Report sent to %d recipient(s)."
	msgReportFailed     = "Failed to send report. Check console for details."
	msgNoRecipients     = "No report recipients configured."
	msgReportArchived   = "Report archived to %s."
	msgArchiveFailed    = "Failed to archive report. Check console for details."
	msgArchiveDisabled  = "Report archive is not configured."
	msgNothingDeleted   = "Record not found. Nothing was deleted."
	fallbackTitle       = "Dashboard"
	fallbackDescription = "Summary cards and charts go here."
)

// errNothingDeleted marks a delete of an id the store did not have.
var errNothingDeleted = errors.New("nothing deleted")

// schemeChoice is one suggestion for the member form's scheme id. Members
// belong to a list when their scheme id is the list id, so lists are offered
// alongside seeded schemes.
type schemeChoice struct {
	ID    string
	Label string
}

type navItem struct {
	Module module.Module
	Title  string
	Active bool
}

// adminPage is the view model of the console shell.
type adminPage struct {
	Active  module.Module
	Title   string
	Known   bool
	Nav     []navItem
	Cards   []module.Card
	Notices []string
	Modal   modal.View
	Choices []schemeChoice

	Members []projections.MemberRow
	Lists   []projections.ListRow

	Report         projections.GetReportSummaryResult
	ReportHTML     template.HTML
	ReportTo       []string
	ArchiveEnabled bool

	FallbackTitle       string
	FallbackDescription string
}

func adminURL(m module.Module) string {
	return "/admin?" + url.Values{"module": {string(m)}}.Encode()
}

// returnModule reads the module a form wants to come back to.
func returnModule(r *http.Request, fallback module.Module) module.Module {
	m := module.Parse(r.PostFormValue("module"))
	if r.PostFormValue("module") == "" || !m.Known() {
		return fallback
	}
	return m
}

// handleAdmin handles GET /admin?module=<name>
func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c := s.console(r)
	active := module.Parse(r.URL.Query().Get("module"))

	page := adminPage{
		Active:              active,
		Title:               active.Title(),
		Known:               active.Known(),
		Cards:               module.Cards,
		Notices:             c.TakeNotices(),
		Modal:               c.Modal.View(),
		FallbackTitle:       fallbackTitle,
		FallbackDescription: fallbackDescription,
	}
	for _, m := range module.Nav {
		page.Nav = append(page.Nav, navItem{Module: m, Title: m.Title(), Active: m == active})
	}
	if page.Modal.Visible && page.Modal.Body.Template == orchestrators.MemberFormBody {
		page.Choices = s.schemeChoices(ctx, c)
	}

	switch active {
	case module.Members:
		res, err := projections.QueryGetMemberTable(ctx, projections.GetMemberTableQuery{},
			projections.GetMemberTableDeps{MemberStore: s.deps.Members, Schemes: c.Schemes})
		if err != nil {
			internalError(w, err)
			return
		}
		page.Members = res.Rows
	case module.Dashboard:
		res, err := projections.QueryGetListTable(ctx, projections.GetListTableQuery{Location: s.deps.Location},
			projections.GetListTableDeps{ListStore: s.deps.Lists})
		if err != nil {
			internalError(w, err)
			return
		}
		page.Lists = res.Rows
	case module.Reports:
		res, err := projections.QueryGetReportSummary(ctx,
			projections.GetReportSummaryQuery{GeneratedAt: s.deps.Now(), Location: s.deps.Location},
			projections.GetReportSummaryDeps{ListStore: s.deps.Lists, MemberStore: s.deps.Members})
		if err != nil {
			internalError(w, err)
			return
		}
		page.Report = res
		// goldmark output with raw HTML omitted
		page.ReportHTML = template.HTML(res.HTML)
		page.ReportTo = s.deps.ReportTo
		page.ArchiveEnabled = s.deps.Archiver != nil && s.deps.Archiver.Enabled()
	}

	s.render(w, r, http.StatusOK, "admin.html", page)
}

// schemeChoices lists the seeded schemes then the lists.
func (s *Server) schemeChoices(ctx context.Context, c *console.Console) []schemeChoice {
	schemes := c.Schemes.Load(ctx).Sorted()
	lists := s.deps.Lists.List(ctx)
	out := make([]schemeChoice, 0, len(schemes)+len(lists))
	for _, sc := range schemes {
		out = append(out, schemeChoice{ID: sc.ID, Label: sc.DisplayName()})
	}
	for _, l := range lists {
		out = append(out, schemeChoice{ID: l.ID, Label: "List: " + l.DisplayTitle()})
	}
	return out
}

func (s *Server) memberDeps(c *console.Console) orchestrators.MemberDeps {
	return orchestrators.MemberDeps{MemberStore: s.deps.Members, Modal: c.Modal, Notices: c}
}

func (s *Server) listDeps(c *console.Console) orchestrators.ListDeps {
	return orchestrators.ListDeps{ListStore: s.deps.Lists, MemberStore: s.deps.Members, Schemes: c.Schemes, Modal: c.Modal, Notices: c}
}

// handleNewMember handles POST /admin/members/new by opening the add form.
func (s *Server) handleNewMember(w http.ResponseWriter, r *http.Request) {
	c := s.console(r)
	orchestrators.ExecuteOpenMemberForm(r.Context(), "", s.memberDeps(c))
	http.Redirect(w, r, adminURL(module.Members), http.StatusSeeOther)
}

// handleMemberAction handles POST /admin/members/actions
func (s *Server) handleMemberAction(w http.ResponseWriter, r *http.Request) {
	c := s.console(r)
	deps := s.memberDeps(c)
	table := actions.Table{
		actions.Edit: func(ctx context.Context, id string) error {
			orchestrators.ExecuteOpenMemberForm(ctx, id, deps)
			return nil
		},
		actions.Delete: func(ctx context.Context, id string) error {
			if !orchestrators.ExecuteDeleteMember(ctx, id, deps) {
				return errNothingDeleted
			}
			return nil
		},
	}
	s.dispatch(w, r, table, module.Members)
}

// handleNewList handles POST /admin/lists/new by opening the add form.
func (s *Server) handleNewList(w http.ResponseWriter, r *http.Request) {
	c := s.console(r)
	orchestrators.ExecuteOpenListForm(r.Context(), "", s.listDeps(c))
	http.Redirect(w, r, adminURL(module.Dashboard), http.StatusSeeOther)
}

// handleListAction handles POST /admin/lists/actions
func (s *Server) handleListAction(w http.ResponseWriter, r *http.Request) {
	c := s.console(r)
	deps := s.listDeps(c)
	table := actions.Table{
		actions.View: func(ctx context.Context, id string) error {
			orchestrators.ExecuteViewListDetails(ctx, id, deps)
			return nil
		},
		actions.Edit: func(ctx context.Context, id string) error {
			orchestrators.ExecuteOpenListForm(ctx, id, deps)
			return nil
		},
		actions.Delete: func(ctx context.Context, id string) error {
			if !orchestrators.ExecuteDeleteList(ctx, id, deps) {
				return errNothingDeleted
			}
			return nil
		},
	}
	s.dispatch(w, r, table, module.Dashboard)
}

// dispatch runs the row action named in the form and redirects back to the
// table. A delete that removed nothing answers 204 so the page stays as is
// and queues a notice for the next render.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, table actions.Table, back module.Module) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	err := table.Dispatch(r.Context(), r.PostFormValue("action"), r.PostFormValue("id"))
	switch {
	case err == nil:
		http.Redirect(w, r, adminURL(back), http.StatusSeeOther)
	case errors.Is(err, errNothingDeleted):
		slog.Warn("delete_missed", "module", back, "id", r.PostFormValue("id"))
		s.console(r).Notify(msgNothingDeleted)
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, actions.ErrUnknownAction), errors.Is(err, actions.ErrMissingID):
		http.Error(w, "Bad Request", http.StatusBadRequest)
	default:
		internalError(w, err)
	}
}

// handleModalSave handles POST /admin/modal/save. A failed save leaves the
// modal open with its message.
func (s *Server) handleModalSave(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	c := s.console(r)
	// The error is already logged and held by the modal for display.
	_ = c.Modal.Save(r.Context(), r.PostForm)
	http.Redirect(w, r, adminURL(returnModule(r, module.Dashboard)), http.StatusSeeOther)
}

// handleModalCancel handles POST /admin/modal/cancel
func (s *Server) handleModalCancel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	s.console(r).Modal.Cancel()
	http.Redirect(w, r, adminURL(returnModule(r, module.Dashboard)), http.StatusSeeOther)
}

func (s *Server) reportInput() orchestrators.ReportInput {
	return orchestrators.ReportInput{GeneratedAt: s.deps.Now(), Location: s.deps.Location}
}

// handleSendReport handles POST /admin/reports/send
func (s *Server) handleSendReport(w http.ResponseWriter, r *http.Request) {
	c := s.console(r)
	deps := orchestrators.SendReportDeps{
		ListStore:   s.deps.Lists,
		MemberStore: s.deps.Members,
		Sender:      s.deps.Sender,
		From:        s.deps.ReportFrom,
		To:          s.deps.ReportTo,
	}
	if s.deps.Metrics != nil {
		deps.Recorder = s.deps.Metrics
	}

	res, err := orchestrators.ExecuteSendReport(r.Context(), s.reportInput(), deps)
	switch {
	case err == nil:
		c.Notify(fmt.Sprintf(msgReportSent, res.Recipients))
	case errors.Is(err, orchestrators.ErrNoReportRecipients):
		c.Notify(msgNoRecipients)
	default:
		c.Notify(msgReportFailed)
	}
	http.Redirect(w, r, adminURL(module.Reports), http.StatusSeeOther)
}

// handleArchiveReport handles POST /admin/reports/archive
func (s *Server) handleArchiveReport(w http.ResponseWriter, r *http.Request) {
	c := s.console(r)
	deps := orchestrators.ArchiveReportDeps{
		ListStore:   s.deps.Lists,
		MemberStore: s.deps.Members,
		Archiver:    s.deps.Archiver,
	}
	if s.deps.Metrics != nil {
		deps.Recorder = s.deps.Metrics
	}

	res, err := orchestrators.ExecuteArchiveReport(r.Context(), s.reportInput(), deps)
	switch {
	case err == nil:
		c.Notify(fmt.Sprintf(msgReportArchived, res.Location))
	case errors.Is(err, orchestrators.ErrArchiveDisabled):
		c.Notify(msgArchiveDisabled)
	default:
		c.Notify(msgArchiveFailed)
	}
	http.Redirect(w, r, adminURL(module.Reports), http.StatusSeeOther)
}

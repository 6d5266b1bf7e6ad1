package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"chitfund/internal/application/modal"
	"chitfund/internal/domain/member"
)

// Member notices
const (
	MsgSchemeRequired  = "Please select a valid scheme."
	MsgAddMemberFailed = "Failed to add member. Check console for details."
	MsgEditMemberFail  = "Failed to update member. Check console for details."
	MsgMemberNotFound  = "Member not found"
)

// MemberStore is the member adapter used by the member orchestrators.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (member.Member, bool)
	Add(ctx context.Context, value member.Member) bool
	Update(ctx context.Context, id string, value member.Member) bool
	Delete(ctx context.Context, id string) bool
}

// MemberForm is the data bound to the member modal.
type MemberForm struct {
	ID        string
	Name      string
	Phone     string
	SchemeID  string
	HasPrized bool
}

// ParseMemberForm reads a submitted member form. hasPrized is true only for "true".
func ParseMemberForm(form url.Values) MemberForm {
	return MemberForm{
		Name:      strings.TrimSpace(form.Get("name")),
		Phone:     strings.TrimSpace(form.Get("phone")),
		SchemeID:  strings.TrimSpace(form.Get("schemeId")),
		HasPrized: form.Get("hasPrized") == "true",
	}
}

func (f MemberForm) member() member.Member {
	return member.Member{ID: f.ID, Name: f.Name, Phone: f.Phone, SchemeID: f.SchemeID, HasPrized: f.HasPrized}
}

// MemberDeps holds dependencies for the member orchestrators.
type MemberDeps struct {
	MemberStore MemberStore
	Modal       Modal
	Notices     Notifier
}

// ExecuteAddMember validates and stores a new member.
// PRE: input comes from the add-member form
// POST: Returns a modal.UserError describing any failure; on success a
// confirmation notice is queued
// INVARIANT: a scheme selection is required
func ExecuteAddMember(ctx context.Context, input MemberForm, deps MemberDeps) error {
	if input.SchemeID == "" {
		return modal.Userf(MsgSchemeRequired)
	}
	m := input.member()
	m.ID = ""
	if err := m.Validate(); err != nil {
		return &modal.UserError{Message: capitalize(err.Error()) + ".", Err: err}
	}
	if !deps.MemberStore.Add(ctx, m) {
		return modal.Userf(MsgAddMemberFailed)
	}
	slog.Info("member_event", "event", "added", "scheme_id", m.SchemeID)
	deps.Notices.Notify(fmt.Sprintf("Success! Member %s has been added to the cloud database.", m.Name))
	return nil
}

// ExecuteEditMember overwrites every member field.
// PRE: input.ID names an existing member
// POST: Returns a modal.UserError when the store rejects the update
func ExecuteEditMember(ctx context.Context, input MemberForm, deps MemberDeps) error {
	m := input.member()
	if err := m.Validate(); err != nil {
		return &modal.UserError{Message: capitalize(err.Error()) + ".", Err: err}
	}
	if !deps.MemberStore.Update(ctx, input.ID, m) {
		return modal.Userf(MsgEditMemberFail)
	}
	slog.Info("member_event", "event", "updated", "member_id", input.ID)
	return nil
}

// ExecuteDeleteMember removes a member.
// POST: Returns false when nothing was deleted; callers then skip the re-render
func ExecuteDeleteMember(ctx context.Context, id string, deps MemberDeps) bool {
	ok := deps.MemberStore.Delete(ctx, id)
	if ok {
		slog.Info("member_event", "event", "deleted", "member_id", id)
	}
	return ok
}

// ExecuteOpenMemberForm opens the add form for an empty id, otherwise the
// edit form prefilled from the store.
// POST: a missing member queues a notice, closes the modal and returns false
func ExecuteOpenMemberForm(ctx context.Context, id string, deps MemberDeps) bool {
	if id == "" {
		deps.Modal.Show("Add Member", modal.Body{Template: MemberFormBody, Data: MemberForm{}},
			func(ctx context.Context, form url.Values) error {
				return ExecuteAddMember(ctx, ParseMemberForm(form), deps)
			})
		return true
	}

	m, ok := deps.MemberStore.GetByID(ctx, id)
	if !ok {
		deps.Notices.Notify(MsgMemberNotFound)
		deps.Modal.Cancel()
		return false
	}
	current := MemberForm{ID: m.ID, Name: m.Name, Phone: m.Phone, SchemeID: m.SchemeID, HasPrized: m.HasPrized}
	deps.Modal.Show("Edit Member", modal.Body{Template: MemberFormBody, Data: current},
		func(ctx context.Context, form url.Values) error {
			in := ParseMemberForm(form)
			in.ID = id
			return ExecuteEditMember(ctx, in, deps)
		})
	return true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

package orchestrators

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"chitfund/internal/application/modal"
	"chitfund/internal/application/projections"
	"chitfund/internal/domain/list"
)

// List notices
const (
	MsgAddListFailed  = "Failed to add list. Check console for details."
	MsgEditListFailed = "Failed to update list. Check console for details."
	MsgListNotFound   = "List not found"
)

// ListStore is the list adapter used by the list orchestrators.
type ListStore interface {
	List(ctx context.Context) []list.List
	GetByID(ctx context.Context, id string) (list.List, bool)
	Add(ctx context.Context, value list.List) bool
	Update(ctx context.Context, id string, value list.List) bool
	Delete(ctx context.Context, id string) bool
}

// ListForm is the data bound to the list modal.
type ListForm struct {
	ID          string
	Title       string
	Description string
}

// ParseListForm reads a submitted list form.
func ParseListForm(form url.Values) ListForm {
	return ListForm{
		Title:       strings.TrimSpace(form.Get("title")),
		Description: strings.TrimSpace(form.Get("description")),
	}
}

// ListDeps holds dependencies for the list orchestrators.
type ListDeps struct {
	ListStore ListStore
	// MemberStore feeds the details view.
	MemberStore projections.MemberStore
	Schemes     projections.SchemeNamer
	Modal       Modal
	Notices     Notifier
}

func (f ListForm) validate() (list.List, error) {
	l := list.List{Title: f.Title, Description: f.Description}
	if err := l.Validate(); err != nil {
		return l, &modal.UserError{Message: capitalize(err.Error()) + ".", Err: err}
	}
	return l, nil
}

// ExecuteAddList stores a new list; the adapter stamps its creation time.
// POST: Returns a modal.UserError describing any failure
func ExecuteAddList(ctx context.Context, input ListForm, deps ListDeps) error {
	l, err := input.validate()
	if err != nil {
		return err
	}
	if !deps.ListStore.Add(ctx, l) {
		return modal.Userf(MsgAddListFailed)
	}
	slog.Info("list_event", "event", "added")
	return nil
}

// ExecuteEditList overwrites title and description.
// PRE: input.ID names an existing list
func ExecuteEditList(ctx context.Context, input ListForm, deps ListDeps) error {
	l, err := input.validate()
	if err != nil {
		return err
	}
	if !deps.ListStore.Update(ctx, input.ID, l) {
		return modal.Userf(MsgEditListFailed)
	}
	slog.Info("list_event", "event", "updated", "list_id", input.ID)
	return nil
}

// ExecuteDeleteList removes a list. Members pointing at it are left as they are.
// POST: Returns false when nothing was deleted
func ExecuteDeleteList(ctx context.Context, id string, deps ListDeps) bool {
	ok := deps.ListStore.Delete(ctx, id)
	if ok {
		slog.Info("list_event", "event", "deleted", "list_id", id)
	}
	return ok
}

// ExecuteOpenListForm opens the add form for an empty id, otherwise the
// edit form prefilled from the store.
func ExecuteOpenListForm(ctx context.Context, id string, deps ListDeps) bool {
	if id == "" {
		deps.Modal.Show("Add List", modal.Body{Template: ListFormBody, Data: ListForm{}},
			func(ctx context.Context, form url.Values) error {
				return ExecuteAddList(ctx, ParseListForm(form), deps)
			})
		return true
	}

	l, ok := deps.ListStore.GetByID(ctx, id)
	if !ok {
		deps.Notices.Notify(MsgListNotFound)
		deps.Modal.Cancel()
		return false
	}
	current := ListForm{ID: l.ID, Title: l.Title, Description: l.Description}
	deps.Modal.Show("Edit List", modal.Body{Template: ListFormBody, Data: current},
		func(ctx context.Context, form url.Values) error {
			in := ParseListForm(form)
			in.ID = id
			return ExecuteEditList(ctx, in, deps)
		})
	return true
}

// ExecuteViewListDetails opens the read-only details of a list with its
// derived members. Saving the details view just closes it.
func ExecuteViewListDetails(ctx context.Context, id string, deps ListDeps) bool {
	details, err := projections.QueryGetListDetails(ctx, projections.GetListDetailsQuery{ListID: id},
		projections.GetListDetailsDeps{ListStore: deps.ListStore, MemberStore: deps.MemberStore, Schemes: deps.Schemes})
	if err != nil {
		deps.Notices.Notify(MsgListNotFound)
		return false
	}
	deps.Modal.Show("List Details", modal.Body{Template: ListDetailsBody, Data: details},
		func(context.Context, url.Values) error { return nil })
	return true
}

package projections

import (
	"time"

	"chitfund/internal/application/actions"
	domainList "chitfund/internal/domain/list"
	domainMember "chitfund/internal/domain/member"
)

// DateTimeLayout renders list creation times.
const DateTimeLayout = "02 Jan 2006, 15:04"

// IDPreview shortens a store id for display: the first six characters and
// an ellipsis.
func IDPreview(id string) string {
	r := []rune(id)
	if len(r) > 6 {
		r = r[:6]
	}
	return string(r) + "..."
}

// MemberRow is one rendered member.
type MemberRow struct {
	ID          string
	IDPreview   string
	Name        string
	Phone       string
	SchemeID    string
	SchemeLabel string
	HasPrized   bool
	Status      string
	StatusClass string
	Actions     []actions.Action
}

func memberRow(m domainMember.Member, schemeLabel string, acts []actions.Action) MemberRow {
	return MemberRow{
		ID:          m.ID,
		IDPreview:   IDPreview(m.ID),
		Name:        m.Name,
		Phone:       m.Phone,
		SchemeID:    m.SchemeID,
		SchemeLabel: schemeLabel,
		HasPrized:   m.HasPrized,
		Status:      m.StatusLabel(),
		StatusClass: m.StatusClass(),
		Actions:     acts,
	}
}

// ListRow is one rendered list.
type ListRow struct {
	ID          string
	IDPreview   string
	Title       string
	Description string
	Created     string
	Actions     []actions.Action
}

func listRow(l domainList.List, loc *time.Location) ListRow {
	return ListRow{
		ID:          l.ID,
		IDPreview:   IDPreview(l.ID),
		Title:       l.DisplayTitle(),
		Description: l.Description,
		Created:     formatCreated(l.CreatedAt, loc),
		Actions:     []actions.Action{actions.View, actions.Edit, actions.Delete},
	}
}

// formatCreated renders t in loc, or blank for the zero time.
func formatCreated(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateTimeLayout)
}

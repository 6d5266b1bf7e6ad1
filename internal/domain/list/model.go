package list

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength       = 120
	MaxDescriptionLength = 2000
)

// Document field names in the lists collection.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCreatedAt   = "createdAt"
)

// TimestampLayout is fixed width so stored timestamps sort lexically.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

// Domain errors
var (
	ErrEmptyTitle         = errors.New("list title cannot be empty")
	ErrTitleTooLong       = errors.New("list title cannot exceed 120 characters")
	ErrDescriptionTooLong = errors.New("list description cannot exceed 2000 characters")
)

// List is a named grouping that members are bucketed under.
type List struct {
	ID          string
	Title       string
	Description string
	CreatedAt   time.Time
}

// Validate checks if the List has valid data.
// PRE: List struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (l *List) Validate() error {
	if strings.TrimSpace(l.Title) == "" {
		return ErrEmptyTitle
	}
	if len(l.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if len(l.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

// EditableFields returns the fields an edit may overwrite.
// CreatedAt is deliberately absent: it is set once at creation.
func (l List) EditableFields() map[string]any {
	return map[string]any{
		FieldTitle:       l.Title,
		FieldDescription: l.Description,
	}
}

// CreateFields returns the full payload for a new document stamped at createdAt.
func (l List) CreateFields(createdAt time.Time) map[string]any {
	fields := l.EditableFields()
	fields[FieldCreatedAt] = FormatTimestamp(createdAt)
	return fields
}

// DisplayTitle falls back to a dash for untitled lists.
func (l List) DisplayTitle() string {
	if l.Title == "" {
		return "—"
	}
	return l.Title
}

// FromFields builds a List from a stored document.
func FromFields(id string, fields map[string]any) List {
	l := List{ID: id}
	if s, ok := fields[FieldTitle].(string); ok {
		l.Title = s
	}
	if s, ok := fields[FieldDescription].(string); ok {
		l.Description = s
	}
	if s, ok := fields[FieldCreatedAt].(string); ok {
		l.CreatedAt = ParseTimestamp(s)
	}
	return l
}

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts TimestampLayout or RFC 3339; anything else is the zero time.
func ParseTimestamp(s string) time.Time {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	return time.Time{}
}

package list_test

import (
	"strings"
	"testing"
	"time"

	"chitfund/internal/domain/list"
)

// TestListValidation tests validation of List.
func TestListValidation(t *testing.T) {
	tests := []struct {
		name    string
		list    list.List
		wantErr error
	}{
		{name: "valid list", list: list.List{Title: "March 2026 group", Description: "20 members"}},
		{name: "empty title", list: list.List{Title: " "}, wantErr: list.ErrEmptyTitle},
		{name: "title too long", list: list.List{Title: strings.Repeat("t", list.MaxTitleLength+1)}, wantErr: list.ErrTitleTooLong},
		{name: "description too long", list: list.List{Title: "ok", Description: strings.Repeat("d", list.MaxDescriptionLength+1)}, wantErr: list.ErrDescriptionTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.list.Validate(); err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestEditableFields_OmitCreatedAt verifies edits never carry the creation timestamp.
func TestEditableFields_OmitCreatedAt(t *testing.T) {
	l := list.List{Title: "A", Description: "B", CreatedAt: time.Now()}
	fields := l.EditableFields()
	if _, ok := fields[list.FieldCreatedAt]; ok {
		t.Error("EditableFields must not include createdAt")
	}
	if fields[list.FieldTitle] != "A" || fields[list.FieldDescription] != "B" {
		t.Errorf("EditableFields = %v", fields)
	}
}

// TestTimestampOrdering verifies formatted timestamps sort in time order.
func TestTimestampOrdering(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	earlier := list.FormatTimestamp(base)
	later := list.FormatTimestamp(base.Add(10 * time.Millisecond))
	if !(earlier < later) {
		t.Errorf("expected %q < %q", earlier, later)
	}
	if len(earlier) != len(later) {
		t.Errorf("timestamps must be fixed width: %q vs %q", earlier, later)
	}
}

// TestFromFields verifies documents decode with their creation time.
func TestFromFields(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l := list.FromFields("L1", list.List{Title: "Group A"}.CreateFields(created))
	if l.ID != "L1" || l.Title != "Group A" {
		t.Errorf("FromFields = %+v", l)
	}
	if !l.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", l.CreatedAt, created)
	}

	legacy := list.FromFields("L2", map[string]any{"createdAt": "2025-01-02T03:04:05Z"})
	if legacy.CreatedAt.IsZero() {
		t.Error("RFC 3339 timestamps should parse")
	}
	if got := legacy.DisplayTitle(); got != "—" {
		t.Errorf("DisplayTitle() = %q, want dash", got)
	}
}

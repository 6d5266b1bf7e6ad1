package member

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength  = 100
	MaxPhoneLength = 32
)

// Status labels and their styling variants.
const (
	StatusActive      = "Active"
	StatusPrized      = "Prized"
	StatusClassActive = "status-active"
	StatusClassPrized = "status-prized"
)

// Document field names in the members collection.
const (
	FieldName      = "name"
	FieldPhone     = "phone"
	FieldSchemeID  = "schemeId"
	FieldHasPrized = "hasPrized"
)

// Domain errors
var (
	ErrEmptyName    = errors.New("member name cannot be empty")
	ErrNameTooLong  = errors.New("member name cannot exceed 100 characters")
	ErrPhoneTooLong = errors.New("member phone cannot exceed 32 characters")
)

// Member holds state for the concept.
type Member struct {
	ID        string
	Name      string
	Phone     string
	SchemeID  string
	HasPrized bool
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Name must not be empty
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if len(m.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(m.Phone) > MaxPhoneLength {
		return ErrPhoneTooLong
	}
	return nil
}

// StatusLabel returns "Prized" once the member has taken the pot, else "Active".
func (m Member) StatusLabel() string {
	if m.HasPrized {
		return StatusPrized
	}
	return StatusActive
}

// StatusClass returns the styling variant matching StatusLabel.
func (m Member) StatusClass() string {
	if m.HasPrized {
		return StatusClassPrized
	}
	return StatusClassActive
}

// BelongsTo reports whether the member is bucketed under the given list.
func (m Member) BelongsTo(listID string) bool {
	return m.SchemeID == listID
}

// Fields returns every editable field as a document payload.
// Updates are merges, so callers that want to keep a field must send it.
func (m Member) Fields() map[string]any {
	return map[string]any{
		FieldName:      m.Name,
		FieldPhone:     m.Phone,
		FieldSchemeID:  m.SchemeID,
		FieldHasPrized: m.HasPrized,
	}
}

// FromFields builds a Member from a stored document.
// Missing or mistyped fields decode to their zero value.
func FromFields(id string, fields map[string]any) Member {
	return Member{
		ID:        id,
		Name:      stringField(fields, FieldName),
		Phone:     stringField(fields, FieldPhone),
		SchemeID:  stringField(fields, FieldSchemeID),
		HasPrized: boolField(fields, FieldHasPrized),
	}
}

func stringField(fields map[string]any, key string) string {
	if s, ok := fields[key].(string); ok {
		return s
	}
	return ""
}

// boolField accepts both JSON booleans and the "true"/"false" strings older
// form submissions stored.
func boolField(fields map[string]any, key string) bool {
	switch v := fields[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

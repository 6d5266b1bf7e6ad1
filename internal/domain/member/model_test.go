package member_test

import (
	"strings"
	"testing"

	"chitfund/internal/domain/member"
)

// TestMemberValidation tests validation of Member.
func TestMemberValidation(t *testing.T) {
	tests := []struct {
		name    string
		member  member.Member
		wantErr error
	}{
		{
			name:   "valid member",
			member: member.Member{ID: "m1", Name: "Asha", Phone: "9876543210", SchemeID: "S1"},
		},
		{
			name:   "name only",
			member: member.Member{Name: "Ravi"},
		},
		{
			name:    "empty name",
			member:  member.Member{Name: "   "},
			wantErr: member.ErrEmptyName,
		},
		{
			name:    "name too long",
			member:  member.Member{Name: strings.Repeat("a", member.MaxNameLength+1)},
			wantErr: member.ErrNameTooLong,
		},
		{
			name:    "phone too long",
			member:  member.Member{Name: "Asha", Phone: strings.Repeat("9", member.MaxPhoneLength+1)},
			wantErr: member.ErrPhoneTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.member.Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestMemberStatus verifies the derived status label and styling variant.
func TestMemberStatus(t *testing.T) {
	active := member.Member{Name: "Asha"}
	if active.StatusLabel() != member.StatusActive || active.StatusClass() != member.StatusClassActive {
		t.Errorf("active member: got %q/%q", active.StatusLabel(), active.StatusClass())
	}

	prized := member.Member{Name: "Asha", HasPrized: true}
	if prized.StatusLabel() != member.StatusPrized || prized.StatusClass() != member.StatusClassPrized {
		t.Errorf("prized member: got %q/%q", prized.StatusLabel(), prized.StatusClass())
	}
}

// TestFromFields verifies decoding tolerates legacy string booleans and missing fields.
func TestFromFields(t *testing.T) {
	m := member.FromFields("abc", map[string]any{
		"name":      "Asha",
		"schemeId":  "S1",
		"hasPrized": "true",
	})
	if m.ID != "abc" || m.Name != "Asha" || m.SchemeID != "S1" || !m.HasPrized {
		t.Errorf("FromFields = %+v", m)
	}
	if m.Phone != "" {
		t.Errorf("Phone = %q, want empty", m.Phone)
	}

	empty := member.FromFields("x", nil)
	if empty.Name != "" || empty.HasPrized {
		t.Errorf("FromFields(nil) = %+v, want zero fields", empty)
	}
}

// TestFieldsRoundTrip verifies Fields carries every editable field.
func TestFieldsRoundTrip(t *testing.T) {
	in := member.Member{ID: "id1", Name: "Asha", Phone: "123", SchemeID: "S1", HasPrized: true}
	out := member.FromFields(in.ID, in.Fields())
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

// TestBelongsTo verifies the derived list membership check.
func TestBelongsTo(t *testing.T) {
	m := member.Member{SchemeID: "L1"}
	if !m.BelongsTo("L1") {
		t.Error("expected member to belong to L1")
	}
	if m.BelongsTo("L2") {
		t.Error("member should not belong to L2")
	}
}

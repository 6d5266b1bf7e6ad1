package account

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Role constants
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleUser}

// HashCost is the bcrypt cost used when hashing plaintext passwords.
var HashCost = bcrypt.DefaultCost

// Domain errors
var (
	ErrEmptyUsername      = errors.New("username cannot be empty")
	ErrInvalidRole        = errors.New("role must be one of: admin, user")
	ErrEmptyPassword      = errors.New("password cannot be empty")
	ErrInvalidCredentials = errors.New("invalid credentials or role selected")
	ErrDuplicateUsername  = errors.New("username already present in credential table")
)

// Credential is a single login entry. Only the bcrypt hash is kept in memory.
type Credential struct {
	Username     string
	PasswordHash string
	Role         string
}

// Validate checks if the Credential has valid data.
// PRE: Credential struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Credential) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return ErrEmptyUsername
	}
	if !isValidRole(c.Role) {
		return ErrInvalidRole
	}
	if c.PasswordHash == "" {
		return ErrEmptyPassword
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt.
// PRE: plaintext is non-empty
// POST: PasswordHash is set to bcrypt hash
func (c *Credential) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), HashCost)
	if err != nil {
		return err
	}
	c.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// INVARIANT: Credential fields are not mutated
func (c *Credential) CheckPassword(plaintext string) bool {
	if c.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(plaintext)) == nil
}

// IsAdmin returns true if the credential has admin role.
func (c *Credential) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// CredentialTable is a fixed in-memory credential lookup. It is demo-grade
// by nature: no lockout, no persistence, no rotation.
type CredentialTable struct {
	byUsername map[string]Credential
}

// NewCredentialTable validates and indexes the given credentials.
// PRE: usernames are unique
// POST: Returns a table or the first validation error
func NewCredentialTable(creds ...Credential) (*CredentialTable, error) {
	t := &CredentialTable{byUsername: make(map[string]Credential, len(creds))}
	for _, c := range creds {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := t.byUsername[c.Username]; dup {
			return nil, ErrDuplicateUsername
		}
		t.byUsername[c.Username] = c
	}
	return t, nil
}

// Authenticate matches username and selected role first, then the password.
// Every mismatch collapses into ErrInvalidCredentials.
// INVARIANT: table is not mutated
func (t *CredentialTable) Authenticate(username, password, role string) (Credential, error) {
	c, ok := t.byUsername[username]
	if !ok || c.Role != role {
		return Credential{}, ErrInvalidCredentials
	}
	if !c.CheckPassword(password) {
		return Credential{}, ErrInvalidCredentials
	}
	return c, nil
}

// Len returns the number of credentials in the table.
func (t *CredentialTable) Len() int {
	return len(t.byUsername)
}

func isValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

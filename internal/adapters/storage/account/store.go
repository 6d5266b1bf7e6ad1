package account

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	domain "chitfund/internal/domain/account"
)

// ErrNoCredentials is returned when a credentials file lists nobody.
var ErrNoCredentials = errors.New("credentials file has no entries")

// entry is one credential as written in a credentials file. Exactly one of
// Password or PasswordHash must be set.
type entry struct {
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"password_hash"`
	Role         string `yaml:"role"`
}

type file struct {
	Credentials []entry `yaml:"credentials"`
}

// LoadFile reads a YAML credentials file into a CredentialTable.
// PRE: path names a readable file
// POST: Returns a validated table or an error naming the file
func LoadFile(path string) (*domain.CredentialTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials %s: %w", path, err)
	}
	table, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("credentials %s: %w", path, err)
	}
	return table, nil
}

// Parse decodes YAML of the form
//
//	credentials:
//	  - username: admin
//	    password_hash: $2a$10$...
//	    role: admin
//
// Plaintext passwords are hashed on load and never kept.
func Parse(data []byte) (*domain.CredentialTable, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(f.Credentials) == 0 {
		return nil, ErrNoCredentials
	}
	creds := make([]domain.Credential, 0, len(f.Credentials))
	for i, e := range f.Credentials {
		c, err := e.credential()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		creds = append(creds, c)
	}
	return domain.NewCredentialTable(creds...)
}

func (e entry) credential() (domain.Credential, error) {
	c := domain.Credential{Username: e.Username, Role: e.Role, PasswordHash: e.PasswordHash}
	switch {
	case e.Password != "" && e.PasswordHash != "":
		return c, errors.New("set password or password_hash, not both")
	case e.Password != "":
		if err := c.SetPassword(e.Password); err != nil {
			return c, err
		}
	}
	return c, nil
}

// Default returns the built-in demo table: admin/password as admin and
// user1/user1 as user.
func Default() (*domain.CredentialTable, error) {
	admin := domain.Credential{Username: "admin", Role: domain.RoleAdmin}
	if err := admin.SetPassword("password"); err != nil {
		return nil, err
	}
	user := domain.Credential{Username: "user1", Role: domain.RoleUser}
	if err := user.SetPassword("user1"); err != nil {
		return nil, err
	}
	return domain.NewCredentialTable(admin, user)
}

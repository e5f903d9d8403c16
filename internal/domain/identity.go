package domain

import (
	"encoding/json"
	"strings"
)

// Identity is the authenticated user's profile. Values are never mutated after
// construction; a new login produces a new Identity.
type Identity struct {
	ID        string `json:"id,omitempty"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
}

// FullName joins first and last name
func (i Identity) FullName() string {
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// SameEmail compares emails case-insensitively
func (i Identity) SameEmail(email string) bool {
	return email != "" && strings.EqualFold(strings.TrimSpace(i.Email), strings.TrimSpace(email))
}

// UnmarshalJSON normalizes the role so legacy spellings ("admin") load as the canonical value
func (i *Identity) UnmarshalJSON(data []byte) error {
	type raw Identity
	var r struct {
		raw
		Role string `json:"role"`
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*i = Identity(r.raw)
	i.Role, _ = ParseRole(r.Role)
	return nil
}

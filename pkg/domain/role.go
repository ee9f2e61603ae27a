package domain

import dErrors "github.com/MandalaChain/E-Certificate/pkg/domain-errors"

// Role gates mutating ledger operations. Administrators govern categories and
// role membership; Issuers mint and redeem certificates.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleIssuer        Role = "issuer"
)

var validRoles = map[Role]bool{
	RoleAdministrator: true,
	RoleIssuer:        true,
}

// ParseRole constructs a Role from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !validRoles[r] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

func (r Role) String() string {
	return string(r)
}

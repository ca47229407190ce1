package auth

import (
	"time"

	"heli-training/logbook/internal/constants"
)

// UserClaims identifies the caller of a request.
type UserClaims struct {
	Username  string
	Name      string
	RoleValue constants.Role
	TokenID   string
	ExpiresAt time.Time
	SourceVal constants.RequestSource
}

func (c *UserClaims) UserID() string {
	if c == nil {
		return ""
	}
	return c.Username
}

func (c *UserClaims) Role() constants.Role {
	if c == nil {
		return ""
	}
	return c.RoleValue
}

func (c *UserClaims) Source() constants.RequestSource {
	if c == nil {
		return ""
	}
	return c.SourceVal
}

func (c *UserClaims) IsAdmin() bool { return c != nil && c.RoleValue == constants.RoleAdmin }

// CanValidate reports whether the caller may validate or reject flights.
func (c *UserClaims) CanValidate() bool { return c != nil && c.RoleValue.CanValidate() }

// HasRole reports whether the caller holds one of roles.
func (c *UserClaims) HasRole(roles ...constants.Role) bool {
	if c == nil {
		return false
	}
	for _, r := range roles {
		if c.RoleValue == r {
			return true
		}
	}
	return false
}

// CLIClaims are the claims of a local operator using the command line tool.
// They carry admin rights.
func CLIClaims(username string) *UserClaims {
	return &UserClaims{
		Username:  username,
		Name:      username,
		RoleValue: constants.RoleAdmin,
		SourceVal: constants.RequestSourceCLI,
	}
}

package constants

import (
	"database/sql/driver"
	"fmt"
)

// Role is the access level of a logbook user.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
)

func (r Role) String() string { return string(r) }

// CanValidate reports whether the role may validate or reject flights.
func (r Role) CanValidate() bool { return r == RoleAdmin || r == RoleInstructor }

// Scan implements the sql.Scanner interface
func (r *Role) Scan(src interface{}) error {
	if src == nil {
		*r = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*r = Role(v)
	case []byte:
		*r = Role(v)
	default:
		return fmt.Errorf("Role: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (r Role) Value() (driver.Value, error) { return string(r), nil }

package models

import "time"

// UserRole represents the available roles for the RBAC system.
//
// The canonical set is user < operator < supervisor < manager < admin,
// ordered loosely by privilege. Role checks are membership tests, not
// hierarchy walks: an endpoint lists every role it admits.
type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleOperator   UserRole = "operator"
	RoleSupervisor UserRole = "supervisor"
	RoleManager    UserRole = "manager"
	RoleAdmin      UserRole = "admin"
)

// AllRoles lists every recognised role.
var AllRoles = []UserRole{RoleUser, RoleOperator, RoleSupervisor, RoleManager, RoleAdmin}

// Valid reports whether the role belongs to the canonical set.
func (r UserRole) Valid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// In reports whether the role is a member of the given set.
func (r UserRole) In(roles ...UserRole) bool {
	for _, role := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// User represents an application user stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FirstName    string     `db:"first_name" json:"firstName"`
	LastName     string     `db:"last_name" json:"lastName"`
	Role         UserRole   `db:"role" json:"role"`
	Department   *string    `db:"department" json:"department,omitempty"`
	PhoneNumber  *string    `db:"phone_number" json:"phoneNumber,omitempty"`
	Picture      *string    `db:"picture" json:"picture,omitempty"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

package models

import "time"

// Role is the access level of a user. Every user has exactly one role,
// fixed at creation.
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	return r == RoleCitizen || r == RoleStaff || r == RoleAdmin
}

// Profile holds the optional address details of a user.
type Profile struct {
	Address string `json:"address"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
}

// User is an account in the identity store. Users live in a store separate
// from complaints; identity is a cross-cutting concern not owned by any
// complaint category.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Role         Role       `json:"role"`
	StaffID      string     `json:"staff_id,omitempty"`
	IsActive     bool       `json:"is_active"`
	Profile      Profile    `json:"profile"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// IsStaffOrAdmin reports whether the user may view complaints they do not own.
func (u *User) IsStaffOrAdmin() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}

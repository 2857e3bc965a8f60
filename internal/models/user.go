package models

import "time"

// UserRole is a capability granted to a user through the user_roles relation.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "enseignant"
	RoleStudent UserRole = "etudiant"
)

// User represents an application user stored in the users table.
type User struct {
	ID        int64      `db:"id" json:"id"`
	Email     string     `db:"email" json:"email"`
	FullName  string     `db:"full_name" json:"full_name"`
	Active    bool       `db:"active" json:"active"`
	Roles     []UserRole `db:"-" json:"roles"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// HasRole reports whether the user holds the given capability.
func (u *User) HasRole(role UserRole) bool {
	if u == nil {
		return false
	}
	return containsRole(u.Roles, role)
}

func containsRole(roles []UserRole, role UserRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

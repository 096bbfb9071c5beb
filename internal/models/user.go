package models

import (
	"github.com/uptrace/bun"
)

// Role is the closed set of access tiers. Anything outside these three
// values matches no gate.
type Role string

const (
	RoleCustomer  Role = "Customer"
	RoleOrganizer Role = "Organizer"
	RoleAdmin     Role = "Admin"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	UserID   int64  `bun:"user_id,pk,autoincrement" json:"userId"`
	Name     string `bun:"user_name,notnull" json:"userName"`
	Email    string `bun:"user_email,unique,notnull" json:"userEmail"`
	Phone    string `bun:"user_phone,nullzero" json:"userPhone,omitempty"`
	Role     Role   `bun:"user_role,notnull" json:"userRole"`
	Password string `bun:"user_password,notnull" json:"-"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateUserRequest struct {
	Name     string `json:"userName"`
	Email    string `json:"userEmail"`
	Phone    string `json:"userPhone"`
	Role     Role   `json:"userRole"`
	Password string `json:"userPassword"`
}

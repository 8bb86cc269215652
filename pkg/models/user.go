package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                      string     `bun:",pk" json:"id"`
	CreatedAt               time.Time  `json:"createdAt"`
	UpdatedAt               time.Time  `json:"updatedAt"`
	Fullname                string     `json:"fullname"`
	Email                   string     `json:"email"`
	Username                string     `json:"username"`
	PasswordHash            *string    `json:"-"` // Never expose password hash
	Role                    string     `json:"role"`
	LoginType               string     `json:"loginType"`
	IsEmailVerified         bool       `json:"isEmailVerified"`
	EmailVerificationToken  *string    `json:"-"`
	EmailVerificationExpiry *time.Time `json:"-"`
	RefreshToken            *string    `json:"-"`
	ProfilePicture          *Image     `bun:",nullzero" json:"profilePicture"`
}

// HasRole reports whether the user holds any of the given roles.
func (u *User) HasRole(roles ...string) bool {
	return contains(roles, u.Role)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

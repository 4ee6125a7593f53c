package models

import (
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleUser     Role = "user"
	RoleExecutor Role = "executor"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleExecutor:
		return true
	}
	return false
}

type User struct {
	ID           string    `gorm:"primaryKey;size:36"          json:"id"`
	Name         string    `gorm:"size:30;not null"            json:"name"`
	Surname      string    `gorm:"size:30;not null"            json:"surname"`
	Login        string    `gorm:"size:30;uniqueIndex;not null" json:"login"`
	Email        string    `gorm:"size:50;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null"                    json:"-"`
	Role         Role      `gorm:"size:16;index;not null"      json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// RefreshToken is an outstanding refresh token. Its JTI matches the jti claim
// of the signed token; the row existing is what makes the token usable.
type RefreshToken struct {
	JTI       string    `gorm:"primaryKey;size:36"   json:"jti"`
	UserID    string    `gorm:"size:36;index;not null" json:"user_id"`
	Device    string    `gorm:"size:100;not null"    json:"device"`
	CreatedAt time.Time `json:"created_at"`
}

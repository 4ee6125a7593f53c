package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/auth_service/internal/models"
)

// Type is carried in the JWT header (typeHeader), outside the claims, so an
// access token can never be accepted where a refresh token is expected.
type Type string

const (
	Access  Type = "acc"
	Refresh Type = "ref"

	typeHeader = "tkt"
)

// Subject is what a token is issued for.
type Subject struct {
	UserID string
	Role   models.Role
	Device string
}

type Claims struct {
	Role   models.Role `json:"role"`
	Device string      `json:"device"`
	jwt.RegisteredClaims
}

func (c *Claims) AsSubject() Subject {
	return Subject{UserID: c.RegisteredClaims.Subject, Role: c.Role, Device: c.Device}
}

type Issued struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

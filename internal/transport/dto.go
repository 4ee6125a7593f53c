package transport

import (
	"time"

	"github.com/Skotchmaster/auth_service/internal/models"
)

type RegisterRequest struct {
	Name      string `json:"name"       form:"name"`
	Surname   string `json:"surname"    form:"surname"`
	Login     string `json:"login"      form:"login"`
	Email     string `json:"email"      form:"email"`
	Pwd       string `json:"pwd"        form:"pwd"`
	Role      string `json:"role"       form:"role"`
	UserAgent string `json:"user_agent" form:"user_agent"`
}

type LoginRequest struct {
	LoginOrEmail string `json:"login_or_email" form:"login_or_email"`
	Pwd          string `json:"pwd"            form:"pwd"`
	UserAgent    string `json:"user_agent"     form:"user_agent"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
	UserAgent    string `json:"user_agent"    form:"user_agent"`
}

type LogoutRequest struct {
	UserAgent string `json:"user_agent" form:"user_agent"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func NewTokenPairResponse(access, refresh string) TokenPairResponse {
	return TokenPairResponse{AccessToken: access, RefreshToken: refresh, TokenType: "Bearer"}
}

type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Surname   string      `json:"surname"`
	Login     string      `json:"login"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

func UserFromModel(u models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Surname:   u.Surname,
		Login:     u.Login,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func UsersFromModels(us []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(us))
	for _, u := range us {
		out = append(out, UserFromModel(u))
	}
	return out
}

type ErrorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

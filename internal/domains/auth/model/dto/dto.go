package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"crm/infras/jwt"
	userModel "crm/internal/domains/user/model"
	"crm/shared/constant"
	gModel "crm/shared/model"
)

// RegisterRequest is the self sign up form. New accounts always get the
// user role; admins are promoted through the users endpoints.
type RegisterRequest struct {
	Email    string  `json:"email"               validate:"required,email,max=255"`
	Password string  `json:"password"            validate:"required,min=8,max=72"`
	FullName string  `json:"full_name"           validate:"required,max=100"`
	JobTitle *string `json:"job_title,omitempty" validate:"omitempty,max=100"`
	Phone    *string `json:"phone,omitempty"     validate:"omitempty,max=30"`
}

func (r *RegisterRequest) ToUserModel(actor, hashedPassword string, now time.Time) userModel.User {
	return userModel.User{
		ID:       uuid.NewString(),
		Email:    NormalizeEmail(r.Email),
		Password: hashedPassword,
		Role:     constant.RoleUser,
		FullName: strings.TrimSpace(r.FullName),
		JobTitle: r.JobTitle,
		Phone:    r.Phone,
		Active:   true,
		Metadata: gModel.NewMetadata(actor, now),
	}
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

// TokenResponse is returned by login and refresh. ExpiresIn counts seconds
// until the access token expires.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func NewTokenResponse(pair *jwt.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}
}

// Column updates applied through shared.TransformFields.
type (
	lastLoginUpdate struct {
		LastLogin time.Time `db:"last_login"`
	}
	passwordUpdate struct {
		Password string `db:"password"`
	}
)

func LastLogin(at time.Time) any { return lastLoginUpdate{LastLogin: at} }

func Password(hash string) any { return passwordUpdate{Password: hash} }

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

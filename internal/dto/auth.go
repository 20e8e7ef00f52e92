package dto

import "github.com/GregMSThompson/imihigo-backend/internal/models"

const MinPasswordLength = 8

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Name      string `json:"name" validate:"required,notblank,max=200"`
	FirstName string `json:"firstName,omitempty" validate:"max=100"`
	LastName  string `json:"lastName,omitempty" validate:"max=100"`
	Role      string `json:"role" validate:"required,notblank,max=200"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Role        string `json:"role" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=72"`
}

type LoginResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type VerifyUserResponse struct {
	Verified bool   `json:"verified"`
	UserName string `json:"userName"`
}

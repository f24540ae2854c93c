package dto

import "github.com/aarondl/null/v8"

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponseDTO struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	User        UserPublicDTO `json:"user"`
}

type UserPublicDTO struct {
	ID          int64   `json:"id"`
	Email       string  `json:"email"`
	FullName    *string `json:"full_name,omitempty"`
	IsActive    bool    `json:"is_active"`
	IsSuperuser bool    `json:"is_superuser"`
}

type CreateUserDTO struct {
	Email       string      `json:"email" validate:"required,email"`
	Password    string      `json:"password" validate:"required,min=6"`
	FullName    null.String `json:"full_name" validate:"omitempty,max=255"`
	IsSuperuser bool        `json:"is_superuser"`
}

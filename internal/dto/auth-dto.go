package dto

import "paper-system/internal/entities"

type LoginDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LogoutDTO struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordDTO struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72,nefield=OldPassword"`
}

type ResetPasswordDTO struct {
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

type AuthResponseDTO struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	ExpiresIn    int64          `json:"expiresIn"`
	User         *entities.User `json:"user"`
}

type UsernameCheckDTO struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}

package dto

import "github.com/aarondl/null/v8"

type CreateUserDTO struct {
	Username     string  `json:"username" validate:"required,username"`
	Password     string  `json:"password" validate:"required,min=6,max=72"`
	Name         string  `json:"name" validate:"required,max=50"`
	Role         string  `json:"role" validate:"required,role"`
	DepartmentID *uint64 `json:"department_id" validate:"omitempty,gt=0"`
	Email        string  `json:"email" validate:"omitempty,email,max=100"`
	Phone        string  `json:"phone" validate:"omitempty,max=20"`
	Status       string  `json:"status" validate:"omitempty,user_status"`
}

// UpdateUserDTO - частичное обновление: отсутствующее поле не трогаем, department_id = 0 снимает с департамента.
type UpdateUserDTO struct {
	Name         null.String `json:"name" validate:"omitempty,min=1,max=50"`
	Role         null.String `json:"role" validate:"omitempty,role"`
	DepartmentID null.Uint64 `json:"department_id"`
	Email        null.String `json:"email" validate:"omitempty,email,max=100"`
	Phone        null.String `json:"phone" validate:"omitempty,max=20"`
	Status       null.String `json:"status" validate:"omitempty,user_status"`
}

type BatchUserStatusDTO struct {
	IDs    []uint64 `json:"ids" validate:"required,min=1,max=100,dive,gt=0"`
	Status string   `json:"status" validate:"required,user_status"`
}

type BatchResultDTO struct {
	Affected int64 `json:"affected"`
}

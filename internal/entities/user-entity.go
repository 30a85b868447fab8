package entities

import (
	"time"

	"paper-system/pkg/types"
)

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

type User struct {
	ID       uint64 `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Password string `json:"-" db:"password"`
	Name     string `json:"name" db:"name"`
	Role     string `json:"role" db:"role"`

	DepartmentID   *uint64 `json:"department_id" db:"department_id"`
	DepartmentName *string `json:"department_name,omitempty" db:"department_name"`

	Email     string     `json:"email" db:"email"`
	Phone     string     `json:"phone" db:"phone"`
	Status    string     `json:"status" db:"status"`
	LastLogin *time.Time `json:"last_login" db:"last_login"`

	PaperCount         int `json:"paper_count" db:"paper_count"`
	ApprovedPaperCount int `json:"approved_paper_count" db:"approved_paper_count"`

	types.BaseEntity
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

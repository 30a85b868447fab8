package entities

import "paper-system/pkg/types"

type Department struct {
	ID          uint64 `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	UserCount   int    `json:"user_count" db:"user_count"`

	types.BaseEntity
}

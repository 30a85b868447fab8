package entities

import "time"

type OperationLog struct {
	ID           uint64    `json:"id" db:"id"`
	UserID       *uint64   `json:"user_id" db:"user_id"`
	Username     *string   `json:"username,omitempty" db:"username"`
	Action       string    `json:"action" db:"action"`
	ResourceType string    `json:"resource_type" db:"resource_type"`
	ResourceID   *uint64   `json:"resource_id" db:"resource_id"`
	Description  string    `json:"description" db:"description"`
	IP           string    `json:"ip" db:"ip"`
	UserAgent    string    `json:"user_agent" db:"user_agent"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

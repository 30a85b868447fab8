package dto

import "github.com/aarondl/null/v8"

type CreateNotificationDTO struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
	Type    string `json:"type" validate:"required,notification_type"`
	Status  string `json:"status" validate:"omitempty,notification_status"`
}

type UpdateNotificationDTO struct {
	Title   null.String `json:"title" validate:"omitempty,min=1,max=200"`
	Content null.String `json:"content" validate:"omitempty,min=1"`
	Type    null.String `json:"type" validate:"omitempty,notification_type"`
}

type UnreadCountDTO struct {
	Count uint64 `json:"count"`
}

type ReadAllDTO struct {
	Marked int64 `json:"marked"`
}

package entities

import "paper-system/pkg/types"

const (
	NotificationStatusDraft     = "draft"
	NotificationStatusPublished = "published"

	NotificationTypeSystem       = "system"
	NotificationTypeAnnouncement = "announcement"
	NotificationTypeReminder     = "reminder"
)

type Notification struct {
	ID             uint64  `json:"id" db:"id"`
	Title          string  `json:"title" db:"title"`
	Content        string  `json:"content" db:"content"`
	Type           string  `json:"type" db:"type"`
	Status         string  `json:"status" db:"status"`
	AuthorID       uint64  `json:"author_id" db:"author_id"`
	AuthorName     *string `json:"author_name,omitempty" db:"author_name"`
	AuthorUsername *string `json:"author_username,omitempty" db:"author_username"`
	ReadCount      int     `json:"read_count" db:"read_count"`
	IsRead         bool    `json:"is_read_by_current_user" db:"is_read"`

	types.BaseEntity
}

func (n *Notification) IsPublished() bool {
	return n.Status == NotificationStatusPublished
}

type NotificationStats struct {
	Total             int                       `json:"total_notifications"`
	Published         int                       `json:"published_count"`
	Draft             int                       `json:"draft_count"`
	System            int                       `json:"system_count"`
	Announcement      int                       `json:"announcement_count"`
	Reminder          int                       `json:"reminder_count"`
	AvgReadCount      float64                   `json:"avg_read_count"`
	RecentReadSummary []NotificationReadSummary `json:"recent_reads"`
}

type NotificationReadSummary struct {
	ID        uint64 `json:"id"`
	Title     string `json:"title"`
	ReadCount int    `json:"read_count"`
}

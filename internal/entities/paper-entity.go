package entities

import (
	"time"

	"paper-system/pkg/types"
)

const (
	PaperStatusDraft    = "draft"
	PaperStatusPending  = "pending"
	PaperStatusApproved = "approved"
	PaperStatusRejected = "rejected"
)

const (
	PaperTypeJournal    = "journal"
	PaperTypeConference = "conference"
	PaperTypeDegree     = "degree"
)

type Author struct {
	Name        string `json:"name" validate:"required,max=100"`
	Institution string `json:"institution" validate:"max=200"`
	Email       string `json:"email" validate:"omitempty,email,max=100"`
}

type Paper struct {
	ID                  uint64     `json:"id" db:"id"`
	Title               string     `json:"title" db:"title"`
	Authors             []Author   `json:"authors" db:"authors"`
	FirstAuthor         string     `json:"first_author" db:"first_author"`
	CorrespondingAuthor *string    `json:"corresponding_author" db:"corresponding_author"`
	JournalName         string     `json:"journal_name" db:"journal_name"`
	JournalID           *string    `json:"journal_id" db:"journal_id"`
	PartitionInfo       *string    `json:"partition_info" db:"partition_info"`
	PublishYear         *int       `json:"publish_year" db:"publish_year"`
	PublishDate         *time.Time `json:"publish_date" db:"publish_date"`
	Volume              *string    `json:"volume" db:"volume"`
	Issue               *string    `json:"issue" db:"issue"`
	Pages               *string    `json:"pages" db:"pages"`
	DOI                 *string    `json:"doi" db:"doi"`
	Abstract            *string    `json:"abstract" db:"abstract"`
	Keywords            *string    `json:"keywords" db:"keywords"`
	Type                string     `json:"type" db:"type"`
	Status              string     `json:"status" db:"status"`

	UserID       uint64     `json:"user_id" db:"user_id"`
	AuditorID    *uint64    `json:"auditor_id" db:"auditor_id"`
	AuditTime    *time.Time `json:"audit_time" db:"audit_time"`
	AuditComment *string    `json:"audit_comment" db:"audit_comment"`

	FilePath *string `json:"file_path" db:"file_path"`
	FileName *string `json:"file_name" db:"file_name"`
	FileSize *int64  `json:"file_size" db:"file_size"`

	// Поля из JOIN с users/departments
	OwnerName      *string `json:"user_name,omitempty" db:"user_name"`
	OwnerUsername  *string `json:"username,omitempty" db:"username"`
	DepartmentID   *uint64 `json:"department_id,omitempty" db:"department_id"`
	DepartmentName *string `json:"department_name,omitempty" db:"department_name"`
	AuditorName    *string `json:"auditor_name,omitempty" db:"auditor_name"`

	types.BaseEntity
}

// IsEditable - правка разрешена только в статусах draft/pending.
func (p *Paper) IsEditable() bool {
	return p.Status == PaperStatusDraft || p.Status == PaperStatusPending
}

func (p *Paper) IsDeletable() bool {
	return p.Status != PaperStatusApproved
}

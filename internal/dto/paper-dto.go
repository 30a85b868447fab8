package dto

import (
	"github.com/aarondl/null/v8"

	"paper-system/internal/entities"
)

type CreatePaperDTO struct {
	Title               string            `json:"title" validate:"required,max=500"`
	Authors             []entities.Author `json:"authors" validate:"required,min=1,dive"`
	FirstAuthor         string            `json:"first_author" validate:"required,max=100"`
	CorrespondingAuthor *string           `json:"corresponding_author" validate:"omitempty,max=100"`
	JournalName         string            `json:"journal_name" validate:"required,max=200"`
	JournalID           *string           `json:"journal_id" validate:"omitempty,max=50"`
	PartitionInfo       *string           `json:"partition_info" validate:"omitempty,max=50"`
	PublishYear         *int              `json:"publish_year" validate:"omitempty,publish_year"`
	PublishDate         *string           `json:"publish_date" validate:"omitempty,datetime=2006-01-02"`
	Volume              *string           `json:"volume" validate:"omitempty,max=20"`
	Issue               *string           `json:"issue" validate:"omitempty,max=20"`
	Pages               *string           `json:"pages" validate:"omitempty,max=20"`
	DOI                 *string           `json:"doi" validate:"omitempty,max=100"`
	Abstract            *string           `json:"abstract"`
	Keywords            *string           `json:"keywords" validate:"omitempty,max=500"`
	Type                string            `json:"type" validate:"required,paper_type"`
	Status              string            `json:"status" validate:"omitempty,paper_status_initial"`
}

// UpdatePaperDTO - статус через правку не меняется; пустая строка очищает необязательное поле.
type UpdatePaperDTO struct {
	Title               null.String       `json:"title" validate:"omitempty,min=1,max=500"`
	Authors             []entities.Author `json:"authors" validate:"omitempty,min=1,dive"`
	FirstAuthor         null.String       `json:"first_author" validate:"omitempty,min=1,max=100"`
	CorrespondingAuthor null.String       `json:"corresponding_author" validate:"omitempty,max=100"`
	JournalName         null.String       `json:"journal_name" validate:"omitempty,min=1,max=200"`
	JournalID           null.String       `json:"journal_id" validate:"omitempty,max=50"`
	PartitionInfo       null.String       `json:"partition_info" validate:"omitempty,max=50"`
	PublishYear         null.Int          `json:"publish_year" validate:"omitempty,publish_year"`
	PublishDate         null.String       `json:"publish_date" validate:"omitempty,datetime=2006-01-02"`
	Volume              null.String       `json:"volume" validate:"omitempty,max=20"`
	Issue               null.String       `json:"issue" validate:"omitempty,max=20"`
	Pages               null.String       `json:"pages" validate:"omitempty,max=20"`
	DOI                 null.String       `json:"doi" validate:"omitempty,max=100"`
	Abstract            null.String       `json:"abstract"`
	Keywords            null.String       `json:"keywords" validate:"omitempty,max=500"`
	Type                null.String       `json:"type" validate:"omitempty,paper_type"`
}

type AuditPaperDTO struct {
	Status  string `json:"status" validate:"required,audit_status"`
	Comment string `json:"comment" validate:"max=1000"`
}

type BatchAuditDTO struct {
	IDs     []uint64 `json:"ids" validate:"required,min=1,max=100,dive,gt=0"`
	Status  string   `json:"status" validate:"required,audit_status"`
	Comment string   `json:"comment" validate:"max=1000"`
}

type MyPapersDTO struct {
	List   []entities.Paper     `json:"list"`
	Total  uint64               `json:"total"`
	Counts entities.PaperCounts `json:"counts"`
}

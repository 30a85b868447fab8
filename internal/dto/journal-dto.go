package dto

import (
	"paper-system/internal/entities"
	"paper-system/pkg/api"
)

type JournalSearchDTO struct {
	Keyword  string `json:"keyword" query:"keyword"`
	Year     string `json:"year" query:"year"`
	Page     int    `json:"page" query:"page" validate:"omitempty,min=1"`
	PageSize int    `json:"pageSize" query:"pageSize" validate:"omitempty,min=1"`
}

// JournalSearchResultDTO - Provenance: live, fallback или mock.
type JournalSearchResultDTO struct {
	Journals   []entities.Journal  `json:"journals"`
	Pagination *api.PaginationMeta `json:"pagination"`
	Provenance string              `json:"provenance"`
}

type JournalYearsDTO struct {
	Years   []string `json:"years"`
	Current string   `json:"current"`
}

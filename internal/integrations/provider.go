package integrations

import (
	"context"

	"paper-system/internal/entities"
)

// JournalQuery - параметры поиска во внешнем каталоге журналов.
type JournalQuery struct {
	Keyword  string
	Year     string
	Page     int
	PageSize int
}

type JournalPage struct {
	Journals []entities.Journal
	Total    uint64
}

type JournalProvider interface {
	Name() string
	Search(ctx context.Context, q JournalQuery) (*JournalPage, error)
	Detail(ctx context.Context, journalID, year string) (*entities.Journal, error)
}

package mock

import (
	"context"
	"strings"

	"paper-system/internal/entities"
	"paper-system/internal/integrations"
	apperrors "paper-system/pkg/errors"
)

// placeholderJournals отдаются, когда ни внешний каталог, ни локальная таблица ничего не нашли.
var placeholderJournals = []entities.Journal{
	{
		JournalID: "nature-001", Name: "Nature", ISSN: "0028-0836", EISSN: "1476-4687",
		Publisher: "Nature Publishing Group", SubjectCategories: "Multidisciplinary Sciences",
		Partition2023: "Q1", ImpactFactor: float64Ptr(64.8),
	},
	{
		JournalID: "science-001", Name: "Science", ISSN: "0036-8075", EISSN: "1095-9203",
		Publisher: "American Association for the Advancement of Science", SubjectCategories: "Multidisciplinary Sciences",
		Partition2023: "Q1", ImpactFactor: float64Ptr(56.9),
	},
	{
		JournalID: "cell-001", Name: "Cell", ISSN: "0092-8674", EISSN: "1097-4172",
		Publisher: "Elsevier", SubjectCategories: "Cell Biology",
		Partition2023: "Q1", ImpactFactor: float64Ptr(64.5),
	},
}

func float64Ptr(v float64) *float64 { return &v }

type MockProvider struct {
	ShouldFail bool
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Name() string {
	return "mock"
}

// Search фильтрует заглушки по названию или ISSN без учёта регистра.
func (m *MockProvider) Search(ctx context.Context, q integrations.JournalQuery) (*integrations.JournalPage, error) {
	if m.ShouldFail {
		return nil, apperrors.ErrNotFound
	}

	keyword := strings.ToLower(strings.TrimSpace(q.Keyword))
	journals := make([]entities.Journal, 0, len(placeholderJournals))
	for _, j := range placeholderJournals {
		if strings.Contains(strings.ToLower(j.Name), keyword) || strings.Contains(j.ISSN, keyword) {
			j.FillPartition()
			journals = append(journals, j)
		}
	}
	return &integrations.JournalPage{Journals: journals, Total: uint64(len(journals))}, nil
}

func (m *MockProvider) Detail(ctx context.Context, journalID, year string) (*entities.Journal, error) {
	if m.ShouldFail {
		return nil, apperrors.ErrNotFound
	}
	for _, j := range placeholderJournals {
		if j.JournalID == journalID {
			j.FillPartition()
			return &j, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

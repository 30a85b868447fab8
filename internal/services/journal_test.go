package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"paper-system/internal/dto"
	"paper-system/internal/entities"
	"paper-system/internal/integrations"
	"paper-system/internal/integrations/mock"
	"paper-system/pkg/config"
	apperrors "paper-system/pkg/errors"
)

type fakeJournalRepo struct {
	mu       sync.Mutex
	local    []entities.Journal
	upserted []entities.Journal
}

func (r *fakeJournalRepo) Search(context.Context, string, int, int) ([]entities.Journal, uint64, error) {
	return append([]entities.Journal(nil), r.local...), uint64(len(r.local)), nil
}

func (r *fakeJournalRepo) FindByJournalID(_ context.Context, id string) (*entities.Journal, error) {
	for _, j := range r.local {
		if j.JournalID == id {
			cp := j
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeJournalRepo) Upsert(_ context.Context, journals []entities.Journal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserted = append(r.upserted, journals...)
	return nil
}

func (r *fakeJournalRepo) Categories(context.Context) ([]string, error) {
	return []string{"Physics"}, nil
}

func (r *fakeJournalRepo) Count(context.Context) (uint64, error) { return uint64(len(r.local)), nil }

func (r *fakeJournalRepo) upsertedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.upserted)
}

type stubProvider struct {
	page *integrations.JournalPage
	err  error
	last integrations.JournalQuery
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Search(_ context.Context, q integrations.JournalQuery) (*integrations.JournalPage, error) {
	p.last = q
	return p.page, p.err
}

func (p *stubProvider) Detail(context.Context, string, string) (*entities.Journal, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &p.page.Journals[0], nil
}

func newJournalService(t *testing.T, live *stubProvider, repo *fakeJournalRepo) JournalServiceInterface {
	t.Helper()
	registry := integrations.NewRegistry()
	require.NoError(t, registry.Register(mock.NewMockProvider()))
	if live != nil {
		require.NoError(t, registry.Register(live))
		require.NoError(t, registry.SetActive(live.Name()))
	}
	cfg := config.JournalAPIConfig{CurrentYear: "2023", Timeout: time.Second}
	return NewJournalService(newBase(newFakeCache()), registry, repo, cfg, zap.NewNop())
}

func TestJournalSearchLive(t *testing.T) {
	live := &stubProvider{page: &integrations.JournalPage{
		Journals: []entities.Journal{{JournalID: "j1", Name: "Physical Review", Partition2023: "Q1"}},
		Total:    1,
	}}
	repo := &fakeJournalRepo{}
	svc := newJournalService(t, live, repo)

	res, err := svc.Search(context.Background(), dto.JournalSearchDTO{Keyword: " physical ", PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, ProvenanceLive, res.Provenance)
	assert.Len(t, res.Journals, 1)
	assert.Equal(t, "physical", live.last.Keyword)
	assert.Equal(t, "2023", live.last.Year)
	assert.Equal(t, 100, live.last.PageSize)
	assert.Eventually(t, func() bool { return repo.upsertedCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestJournalSearchFallsBackToLocal(t *testing.T) {
	live := &stubProvider{err: errors.New("timeout")}
	repo := &fakeJournalRepo{local: []entities.Journal{{JournalID: "j2", Name: "Physics Letters", Partition2023: "Q2"}}}
	svc := newJournalService(t, live, repo)

	res, err := svc.Search(context.Background(), dto.JournalSearchDTO{Keyword: "physics"})
	require.NoError(t, err)
	assert.Equal(t, ProvenanceFallback, res.Provenance)
	require.Len(t, res.Journals, 1)
	assert.Equal(t, 2, res.Journals[0].PartitionLevel)
}

func TestJournalSearchFallsBackToPlaceholders(t *testing.T) {
	svc := newJournalService(t, nil, &fakeJournalRepo{})

	res, err := svc.Search(context.Background(), dto.JournalSearchDTO{Keyword: "nature"})
	require.NoError(t, err)
	assert.Equal(t, ProvenanceMock, res.Provenance)
	require.Len(t, res.Journals, 1)
	assert.Equal(t, "Nature", res.Journals[0].Name)

	res, err = svc.Search(context.Background(), dto.JournalSearchDTO{Keyword: "zzzz"})
	require.NoError(t, err)
	assert.Equal(t, ProvenanceMock, res.Provenance)
	assert.Empty(t, res.Journals)
}

func TestJournalSearchRejectsShortKeyword(t *testing.T) {
	svc := newJournalService(t, nil, &fakeJournalRepo{})

	_, err := svc.Search(context.Background(), dto.JournalSearchDTO{Keyword: " a "})
	_, code, _ := apperrors.Classify(err)
	assert.Equal(t, apperrors.CodeValidation, code)
}

func TestJournalDetailPrefersLocal(t *testing.T) {
	live := &stubProvider{err: errors.New("down")}
	repo := &fakeJournalRepo{local: []entities.Journal{{JournalID: "j3", Name: "Local"}}}
	svc := newJournalService(t, live, repo)

	j, err := svc.Detail(context.Background(), "j3", "")
	require.NoError(t, err)
	assert.Equal(t, entities.PartitionUnknown, j.PartitionInfo)

	_, err = svc.Detail(context.Background(), "missing", "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	j, err = svc.Detail(context.Background(), "nature-001", "")
	require.NoError(t, err)
	assert.Equal(t, "Nature", j.Name)
}

func TestJournalYears(t *testing.T) {
	svc := newJournalService(t, nil, &fakeJournalRepo{})
	years := svc.Years()
	assert.Equal(t, []string{"2023", "2022", "2021"}, years.Years)
	assert.Equal(t, "2023", years.Current)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"paper-system/internal/dto"
	"paper-system/internal/entities"
	"paper-system/internal/integrations"
	"paper-system/internal/repositories"
	"paper-system/pkg/api"
	"paper-system/pkg/config"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/utils"
)

const (
	ProvenanceLive     = "live"
	ProvenanceFallback = "fallback"
	ProvenanceMock     = "mock"

	mockProviderName = "mock"

	journalDetailTTL     = 30 * time.Minute
	journalCategoriesTTL = 2 * time.Hour
	journalYearsCount    = 3
	minKeywordLength     = 2
)

type JournalServiceInterface interface {
	Search(ctx context.Context, q dto.JournalSearchDTO) (*dto.JournalSearchResultDTO, error)
	Detail(ctx context.Context, journalID, year string) (*entities.Journal, error)
	Years() dto.JournalYearsDTO
	Categories(ctx context.Context) ([]string, error)
}

type JournalService struct {
	*BaseService
	registry integrations.RegistryInterface
	repo     repositories.JournalRepositoryInterface
	cfg      config.JournalAPIConfig
	logger   *zap.Logger
}

func NewJournalService(
	base *BaseService,
	registry integrations.RegistryInterface,
	repo repositories.JournalRepositoryInterface,
	cfg config.JournalAPIConfig,
	logger *zap.Logger,
) JournalServiceInterface {
	return &JournalService{
		BaseService: base,
		registry:    registry,
		repo:        repo,
		cfg:         cfg,
		logger:      logger,
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize < 1:
		pageSize = utils.DefaultPageSize
	case pageSize > utils.MaxPageSize:
		pageSize = utils.MaxPageSize
	}
	return page, pageSize
}

// Search никогда не падает из-за каталога: live -> локальная таблица -> заглушки.
func (s *JournalService) Search(ctx context.Context, q dto.JournalSearchDTO) (*dto.JournalSearchResultDTO, error) {
	keyword := strings.TrimSpace(q.Keyword)
	if len([]rune(keyword)) < minKeywordLength {
		return nil, apperrors.NewValidationError("Слишком короткий запрос",
			map[string]interface{}{"keyword": fmt.Sprintf("Минимальная длина: %d", minKeywordLength)})
	}
	page, pageSize := normalizePage(q.Page, q.PageSize)
	year := q.Year
	if year == "" {
		year = s.cfg.CurrentYear
	}
	query := integrations.JournalQuery{Keyword: keyword, Year: year, Page: page, PageSize: pageSize}
	logger := s.logger.With(zap.String("keyword", keyword))

	live, err := s.searchLive(ctx, query)
	if err == nil {
		s.storeAsync(live.Journals)
		return s.result(live.Journals, live.Total, page, pageSize, ProvenanceLive), nil
	}
	if !errors.Is(err, integrations.ErrNoActiveProvider) {
		logger.Warn("Внешний каталог журналов недоступен, ищем локально", zap.Error(err))
	}

	journals, total, err := s.repo.Search(ctx, keyword, page, pageSize)
	if err != nil {
		logger.Error("Ошибка локального поиска журналов", zap.Error(err))
	}
	if err == nil && len(journals) > 0 {
		for i := range journals {
			journals[i].FillPartition()
		}
		return s.result(journals, total, page, pageSize, ProvenanceFallback), nil
	}

	placeholders := []entities.Journal{}
	var placeholderTotal uint64
	if mock, err := s.registry.Get(mockProviderName); err == nil {
		if res, err := mock.Search(ctx, query); err == nil {
			placeholders, placeholderTotal = res.Journals, res.Total
		}
	}
	return s.result(placeholders, placeholderTotal, page, pageSize, ProvenanceMock), nil
}

func (s *JournalService) searchLive(ctx context.Context, q integrations.JournalQuery) (*integrations.JournalPage, error) {
	provider, err := s.registry.GetActive()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	return provider.Search(ctx, q)
}

func (s *JournalService) result(journals []entities.Journal, total uint64, page, pageSize int, provenance string) *dto.JournalSearchResultDTO {
	if journals == nil {
		journals = []entities.Journal{}
	}
	return &dto.JournalSearchResultDTO{
		Journals:   journals,
		Pagination: api.NewPaginationMeta(total, page, pageSize),
		Provenance: provenance,
	}
}

// storeAsync сохраняет ответ каталога в локальную таблицу для будущего fallback.
func (s *JournalService) storeAsync(journals []entities.Journal) {
	if len(journals) == 0 {
		return
	}
	batch := append([]entities.Journal(nil), journals...)
	go func() {
		ctx, cancel := utils.Detached(backgroundTimeout)
		defer cancel()
		if err := s.repo.Upsert(ctx, batch); err != nil {
			s.logger.Warn("Не удалось сохранить журналы локально", zap.Int("count", len(batch)), zap.Error(err))
		}
	}()
}

// Detail: кэш -> локальная таблица -> внешний каталог -> заглушки.
func (s *JournalService) Detail(ctx context.Context, journalID, year string) (*entities.Journal, error) {
	if year == "" {
		year = s.cfg.CurrentYear
	}
	key := fmt.Sprintf("journal:detail:%s:%s", journalID, year)

	var journal entities.Journal
	if s.CacheGet(ctx, key, &journal) {
		return &journal, nil
	}

	local, err := s.repo.FindByJournalID(ctx, journalID)
	switch {
	case err == nil:
		local.FillPartition()
		s.CacheSet(key, local, journalDetailTTL)
		return local, nil
	case !errors.Is(err, apperrors.ErrNotFound):
		s.logger.Warn("Ошибка чтения журнала из локальной таблицы", zap.String("journalID", journalID), zap.Error(err))
	}

	if provider, err := s.registry.GetActive(); err == nil {
		liveCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		live, err := provider.Detail(liveCtx, journalID, year)
		cancel()
		if err == nil {
			s.storeAsync([]entities.Journal{*live})
			s.CacheSet(key, live, journalDetailTTL)
			return live, nil
		}
		s.logger.Warn("Внешний каталог не вернул журнал", zap.String("journalID", journalID), zap.Error(err))
	}

	if mock, err := s.registry.Get(mockProviderName); err == nil {
		if placeholder, err := mock.Detail(ctx, journalID, year); err == nil {
			return placeholder, nil
		}
	}
	return nil, apperrors.NewNotFoundError("Журнал не найден")
}

// Years - текущий год каталога и предыдущие, по убыванию.
func (s *JournalService) Years() dto.JournalYearsDTO {
	current, err := strconv.Atoi(s.cfg.CurrentYear)
	if err != nil {
		return dto.JournalYearsDTO{Years: []string{s.cfg.CurrentYear}, Current: s.cfg.CurrentYear}
	}
	years := make([]string, 0, journalYearsCount)
	for i := 0; i < journalYearsCount; i++ {
		years = append(years, strconv.Itoa(current-i))
	}
	return dto.JournalYearsDTO{Years: years, Current: s.cfg.CurrentYear}
}

func (s *JournalService) Categories(ctx context.Context) ([]string, error) {
	const key = "journal:categories"
	var categories []string
	if s.CacheGet(ctx, key, &categories) {
		return categories, nil
	}
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	s.CacheSet(key, categories, journalCategoriesTTL)
	return categories, nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"paper-system/internal/authz"
	"paper-system/internal/dto"
	"paper-system/internal/entities"
	"paper-system/internal/repositories"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/utils"
)

const (
	ExportOverview   = "overview"
	ExportDepartment = "department"
	ExportPersonal   = "personal"

	ExportJSON = "json"
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"
)

const defaultRankingLimit = 10

type StatisticsServiceInterface interface {
	Overview(ctx context.Context, q dto.StatsQueryDTO) (*entities.OverviewStats, error)
	Trends(ctx context.Context, q dto.StatsQueryDTO) ([]entities.TrendPoint, error)
	ByDepartment(ctx context.Context, q dto.StatsQueryDTO) ([]entities.DepartmentStats, error)
	Personal(ctx context.Context, q dto.StatsQueryDTO) (*entities.PersonalStats, error)
	Rankings(ctx context.Context, q dto.StatsQueryDTO) ([]entities.RankingEntry, error)
	Export(ctx context.Context, q dto.StatsQueryDTO) (*dto.ExportFile, error)
}

type StatisticsService struct {
	*BaseService
	repo     repositories.StatisticsRepositoryInterface
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewStatisticsService(
	base *BaseService,
	repo repositories.StatisticsRepositoryInterface,
	cacheTTL time.Duration,
	logger *zap.Logger,
) StatisticsServiceInterface {
	return &StatisticsService{
		BaseService: base,
		repo:        repo,
		cacheTTL:    cacheTTL,
		logger:      logger,
		now:         time.Now,
	}
}

// toFilter: даты включительные, конец периода - последний момент дня.
func toFilter(q dto.StatsQueryDTO) (repositories.StatsFilter, error) {
	f := repositories.StatsFilter{Year: q.Year, DepartmentID: q.DepartmentID}
	if q.StartDate != "" {
		start, err := time.Parse(dateLayout, q.StartDate)
		if err != nil {
			return f, apperrors.NewValidationError("Неверная дата", map[string]interface{}{"startDate": "Ожидается формат ГГГГ-ММ-ДД"})
		}
		f.StartDate = &start
	}
	if q.EndDate != "" {
		end, err := time.Parse(dateLayout, q.EndDate)
		if err != nil {
			return f, apperrors.NewValidationError("Неверная дата", map[string]interface{}{"endDate": "Ожидается формат ГГГГ-ММ-ДД"})
		}
		end = end.Add(24*time.Hour - time.Nanosecond)
		f.EndDate = &end
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return f, apperrors.NewValidationError("Неверный период", map[string]interface{}{"endDate": "Конец периода раньше начала"})
	}
	return f, nil
}

func statsCacheKey(principalID uint64, endpoint string, q dto.StatsQueryDTO) string {
	return fmt.Sprintf("stats:%d:%s:%d:%d:%s:%s:%s:%s:%d:%d",
		principalID, endpoint, q.Year, q.DepartmentID, q.StartDate, q.EndDate, q.Dimension, q.Type, q.Limit, q.UserID)
}

// cached - read-through кэш отчёта в рамках принципала; load вызывается при промахе.
func cached[T any](ctx context.Context, s *StatisticsService, endpoint string, q dto.StatsQueryDTO,
	load func(p *authz.Principal, f repositories.StatsFilter) (T, error)) (T, error) {
	var zero T
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return zero, err
	}
	filter, err := toFilter(q)
	if err != nil {
		return zero, err
	}

	key := statsCacheKey(principal.ID, endpoint, q)
	var result T
	if s.CacheGet(ctx, key, &result) {
		return result, nil
	}

	result, err = load(principal, filter)
	if err != nil {
		return zero, err
	}
	s.CacheSet(key, result, s.cacheTTL)
	return result, nil
}

func (s *StatisticsService) Overview(ctx context.Context, q dto.StatsQueryDTO) (*entities.OverviewStats, error) {
	return cached(ctx, s, "overview", q, func(p *authz.Principal, f repositories.StatsFilter) (*entities.OverviewStats, error) {
		return s.repo.Overview(ctx, authz.ScopeFor(p), f)
	})
}

func (s *StatisticsService) Trends(ctx context.Context, q dto.StatsQueryDTO) ([]entities.TrendPoint, error) {
	if q.Dimension == "" {
		q.Dimension = repositories.DimensionMonth
	}
	return cached(ctx, s, "trends", q, func(p *authz.Principal, f repositories.StatsFilter) ([]entities.TrendPoint, error) {
		return s.repo.Trends(ctx, authz.ScopeFor(p), f, q.Dimension)
	})
}

func (s *StatisticsService) ByDepartment(ctx context.Context, q dto.StatsQueryDTO) ([]entities.DepartmentStats, error) {
	return cached(ctx, s, "departments", q, func(p *authz.Principal, f repositories.StatsFilter) ([]entities.DepartmentStats, error) {
		return s.repo.ByDepartment(ctx, authz.ScopeFor(p), f)
	})
}

// Personal - статистика текущего пользователя или q.UserID, если он доступен принципалу.
func (s *StatisticsService) Personal(ctx context.Context, q dto.StatsQueryDTO) (*entities.PersonalStats, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if q.UserID == principal.ID {
		q.UserID = 0
	}
	if q.UserID != 0 && principal.Role == authz.RoleUser {
		return nil, apperrors.ErrForbidden
	}
	stats, err := cached(ctx, s, "personal", q, func(p *authz.Principal, f repositories.StatsFilter) (*entities.PersonalStats, error) {
		target := p.ID
		if q.UserID != 0 {
			target = q.UserID
		}
		return s.repo.Personal(ctx, target, f)
	})
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessInstance(principal, stats.User.ID, stats.User.DepartmentID) {
		return nil, apperrors.ErrForbidden
	}
	return stats, nil
}

func (s *StatisticsService) Rankings(ctx context.Context, q dto.StatsQueryDTO) ([]entities.RankingEntry, error) {
	if q.Type == "" {
		q.Type = repositories.RankByTotal
	}
	switch q.Type {
	case repositories.RankByTotal, repositories.RankByApproved, repositories.RankByQ1, repositories.RankByQ2:
	default:
		return nil, apperrors.NewValidationError("Неверный тип рейтинга",
			map[string]interface{}{"type": "Допустимые значения: total approved q1 q2"})
	}
	if q.Limit == 0 {
		q.Limit = defaultRankingLimit
	}
	return cached(ctx, s, "rankings", q, func(p *authz.Principal, f repositories.StatsFilter) ([]entities.RankingEntry, error) {
		return s.repo.Rankings(ctx, authz.ScopeFor(p), f, q.Type, q.Limit)
	})
}

// Export не кэшируется: выгрузка всегда по текущим данным.
func (s *StatisticsService) Export(ctx context.Context, q dto.StatsQueryDTO) (*dto.ExportFile, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	filter, err := toFilter(q)
	if err != nil {
		return nil, err
	}
	if q.Type == "" {
		q.Type = ExportOverview
	}
	if q.Format == "" {
		q.Format = ExportJSON
	}

	var (
		table *exportTable
		data  interface{}
	)
	switch q.Type {
	case ExportOverview:
		papers, err := s.repo.ExportPapers(ctx, authz.ScopeFor(principal), filter)
		if err != nil {
			return nil, err
		}
		table, data = paperTable(papers), papers
	case ExportPersonal:
		papers, err := s.repo.ExportPapers(ctx, authz.Scope{Kind: authz.ScopeOwn, UserID: principal.ID}, filter)
		if err != nil {
			return nil, err
		}
		table, data = paperTable(papers), papers
	case ExportDepartment:
		rows, err := s.repo.ByDepartment(ctx, authz.ScopeFor(principal), filter)
		if err != nil {
			return nil, err
		}
		table, data = departmentTable(rows), rows
	default:
		return nil, apperrors.NewValidationError("Неверный тип выгрузки",
			map[string]interface{}{"type": "Допустимые значения: overview department personal"})
	}

	baseName := fmt.Sprintf("statistics_%s_%s", q.Type, s.now().Format("20060102_150405"))
	file := &dto.ExportFile{FileName: baseName + "." + q.Format}
	switch q.Format {
	case ExportCSV:
		file.ContentType = "text/csv; charset=utf-8"
		file.Content, err = table.csv()
	case ExportXLSX:
		file.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		file.Content, err = table.xlsx()
	default:
		file.ContentType = "application/json; charset=utf-8"
		file.Content, err = json.MarshalIndent(data, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось сформировать выгрузку: %w", err)
	}

	s.logger.Info("Выгрузка статистики",
		zap.Uint64("userID", principal.ID),
		zap.String("type", q.Type),
		zap.String("format", q.Format),
		zap.Int("rows", len(table.rows)),
	)
	return file, nil
}

package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"paper-system/internal/authz"
	"paper-system/internal/entities"
)

const (
	DimensionDay   = "day"
	DimensionMonth = "month"
	DimensionYear  = "year"
)

var trendFormats = map[string]string{
	DimensionDay:   "YYYY-MM-DD",
	DimensionMonth: "YYYY-MM",
	DimensionYear:  "YYYY",
}

const (
	RankByTotal    = "total"
	RankByApproved = "approved"
	RankByQ1       = "q1"
	RankByQ2       = "q2"
)

var rankingOrder = map[string]string{
	RankByTotal:    "total DESC",
	RankByApproved: "approved DESC",
	RankByQ1:       "q1 DESC",
	RankByQ2:       "q2 DESC",
}

const (
	approvedQ1 = "COUNT(p.id) FILTER (WHERE p.status = 'approved' AND p.partition_info ILIKE '%Q1%')"
	approvedQ2 = "COUNT(p.id) FILTER (WHERE p.status = 'approved' AND p.partition_info ILIKE '%Q2%')"
)

// exportLimit - верхняя граница строк выгрузки.
const exportLimit = 10000

// StatsFilter - общие параметры отчётов.
type StatsFilter struct {
	Year         int
	DepartmentID uint64
	StartDate    *time.Time
	EndDate      *time.Time
}

func (f StatsFilter) conditions() []sq.Sqlizer {
	conds := make([]sq.Sqlizer, 0, 4)
	if f.Year > 0 {
		conds = append(conds, sq.Eq{"p.publish_year": f.Year})
	}
	if f.DepartmentID > 0 {
		conds = append(conds, sq.Eq{"u.department_id": f.DepartmentID})
	}
	if f.StartDate != nil {
		conds = append(conds, sq.GtOrEq{"p.created_at": *f.StartDate})
	}
	if f.EndDate != nil {
		conds = append(conds, sq.LtOrEq{"p.created_at": *f.EndDate})
	}
	return conds
}

type StatisticsRepositoryInterface interface {
	Overview(ctx context.Context, scope authz.Scope, f StatsFilter) (*entities.OverviewStats, error)
	Trends(ctx context.Context, scope authz.Scope, f StatsFilter, dimension string) ([]entities.TrendPoint, error)
	ByDepartment(ctx context.Context, scope authz.Scope, f StatsFilter) ([]entities.DepartmentStats, error)
	Personal(ctx context.Context, userID uint64, f StatsFilter) (*entities.PersonalStats, error)
	Rankings(ctx context.Context, scope authz.Scope, f StatsFilter, metric string, limit int) ([]entities.RankingEntry, error)
	ExportPapers(ctx context.Context, scope authz.Scope, f StatsFilter) ([]entities.Paper, error)
}

type StatisticsRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewStatisticsRepository(storage *pgxpool.Pool, logger *zap.Logger) StatisticsRepositoryInterface {
	return &StatisticsRepository{storage: storage, logger: logger}
}

func (r *StatisticsRepository) Overview(ctx context.Context, scope authz.Scope, f StatsFilter) (*entities.OverviewStats, error) {
	where := scope.Apply(authz.PaperScopeColumns, f.conditions()...)

	counts, err := queryPaperCounts(ctx, r.storage, where)
	if err != nil {
		return nil, err
	}
	stats := &entities.OverviewStats{Counts: counts}
	if counts.Total > 0 {
		stats.ApprovalRate = float64(counts.ByStatus[entities.PaperStatusApproved]) / float64(counts.Total)
	}

	authorQuery, authorArgs, err := psql.Select("COUNT(DISTINCT p.user_id)").From(paperCountFrom).Where(where).ToSql()
	if err != nil {
		return nil, err
	}
	if err := r.storage.QueryRow(ctx, authorQuery, authorArgs...).Scan(&stats.AuthorCount); err != nil {
		return nil, fmt.Errorf("ошибка подсчета авторов: %w", err)
	}

	stats.TopAuthors, err = r.Rankings(ctx, scope, f, RankByApproved, 10)
	if err != nil {
		return nil, err
	}

	stats.RecentPapers, err = r.papers(ctx, where, 10)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Trends - одна строка на период, в котором есть статьи; пустые периоды не добавляются.
func (r *StatisticsRepository) Trends(ctx context.Context, scope authz.Scope, f StatsFilter, dimension string) ([]entities.TrendPoint, error) {
	format, ok := trendFormats[dimension]
	if !ok {
		format = trendFormats[DimensionMonth]
	}
	period := fmt.Sprintf("to_char(p.created_at, '%s')", format)

	query, args, err := psql.Select(
		period+" AS period",
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE p.status = 'approved')",
		"COUNT(*) FILTER (WHERE p.status = 'pending')",
		"COUNT(*) FILTER (WHERE p.status = 'rejected')",
		approvedQ1,
		approvedQ2,
	).From(paperCountFrom).
		Where(scope.Apply(authz.PaperScopeColumns, f.conditions()...)).
		GroupBy("period").OrderBy("period").
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.trendRows(ctx, query, args...)
}

func (r *StatisticsRepository) trendRows(ctx context.Context, query string, args ...interface{}) ([]entities.TrendPoint, error) {
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения динамики: %w", err)
	}
	defer rows.Close()

	points := make([]entities.TrendPoint, 0)
	for rows.Next() {
		var t entities.TrendPoint
		if err := rows.Scan(&t.Period, &t.Total, &t.Approved, &t.Pending, &t.Rejected, &t.Q1, &t.Q2); err != nil {
			return nil, err
		}
		points = append(points, t)
	}
	return points, rows.Err()
}

// ByDepartment - фильтры по статьям уходят в условие JOIN, чтобы департаменты без статей
// оставались в отчёте с нулями.
func (r *StatisticsRepository) ByDepartment(ctx context.Context, scope authz.Scope, f StatsFilter) ([]entities.DepartmentStats, error) {
	paperJoin := sq.And{sq.Expr("p.user_id = u.id")}
	if f.Year > 0 {
		paperJoin = append(paperJoin, sq.Eq{"p.publish_year": f.Year})
	}
	if f.StartDate != nil {
		paperJoin = append(paperJoin, sq.GtOrEq{"p.created_at": *f.StartDate})
	}
	if f.EndDate != nil {
		paperJoin = append(paperJoin, sq.LtOrEq{"p.created_at": *f.EndDate})
	}
	joinSQL, joinArgs, err := paperJoin.ToSql()
	if err != nil {
		return nil, err
	}

	cols := authz.ScopeColumns{Owner: "u.id", Department: "d.id"}
	var extra []sq.Sqlizer
	if f.DepartmentID > 0 {
		extra = append(extra, sq.Eq{"d.id": f.DepartmentID})
	}

	query, args, err := psql.Select(
		"d.id", "d.name",
		"COUNT(p.id)",
		"COUNT(p.id) FILTER (WHERE p.status = 'approved')",
		"COUNT(p.id) FILTER (WHERE p.status = 'pending')",
		"COUNT(p.id) FILTER (WHERE p.status = 'rejected')",
		"COUNT(p.id) FILTER (WHERE p.type = 'journal')",
		"COUNT(p.id) FILTER (WHERE p.type = 'conference')",
		approvedQ1,
		approvedQ2,
		"COUNT(DISTINCT p.user_id)",
		"COUNT(DISTINCT u.id)",
	).From("departments d").
		LeftJoin("users u ON u.department_id = d.id").
		LeftJoin("papers p ON "+joinSQL, joinArgs...).
		Where(scope.Apply(cols, extra...)).
		GroupBy("d.id", "d.name").
		OrderBy("4 DESC", "d.name").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка статистики по департаментам: %w", err)
	}
	defer rows.Close()

	list := make([]entities.DepartmentStats, 0)
	for rows.Next() {
		var s entities.DepartmentStats
		if err := rows.Scan(&s.DepartmentID, &s.DepartmentName, &s.Total, &s.Approved, &s.Pending, &s.Rejected,
			&s.Journal, &s.Conference, &s.Q1, &s.Q2, &s.ActiveUsers, &s.TotalUsers); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Personal - сводка по одному автору с помесячной динамикой за последние 12 периодов.
func (r *StatisticsRepository) Personal(ctx context.Context, userID uint64, f StatsFilter) (*entities.PersonalStats, error) {
	var stats entities.PersonalStats
	err := r.storage.QueryRow(ctx, `
		SELECT u.id, u.name, u.username, u.department_id, d.name, u.created_at
		FROM users u LEFT JOIN departments d ON d.id = u.department_id
		WHERE u.id = $1`, userID,
	).Scan(&stats.User.ID, &stats.User.Name, &stats.User.Username, &stats.User.DepartmentID, &stats.User.DepartmentName, &stats.User.JoinDate)
	if err != nil {
		return nil, translateError(err)
	}

	f.DepartmentID = 0
	where := append(sq.And{sq.Eq{"p.user_id": userID}}, f.conditions()...)

	stats.Counts, err = queryPaperCounts(ctx, r.storage, where)
	if err != nil {
		return nil, err
	}

	inner, args, err := psql.Select(
		"to_char(p.created_at, 'YYYY-MM') AS period",
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE p.status = 'approved')",
		"COUNT(*) FILTER (WHERE p.status = 'pending')",
		"COUNT(*) FILTER (WHERE p.status = 'rejected')",
		approvedQ1,
		approvedQ2,
	).From(paperCountFrom).Where(where).
		GroupBy("period").OrderBy("period DESC").Limit(12).
		ToSql()
	if err != nil {
		return nil, err
	}
	stats.MonthlyTrends, err = r.trendRows(ctx, "SELECT * FROM ("+inner+") t ORDER BY period", args...)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Rankings - авторы с хотя бы одной статьёй, упорядоченные по выбранной метрике.
func (r *StatisticsRepository) Rankings(ctx context.Context, scope authz.Scope, f StatsFilter, metric string, limit int) ([]entities.RankingEntry, error) {
	order, ok := rankingOrder[metric]
	if !ok {
		order = rankingOrder[RankByTotal]
	}

	paperJoin := sq.And{sq.Expr("p.user_id = u.id")}
	if f.Year > 0 {
		paperJoin = append(paperJoin, sq.Eq{"p.publish_year": f.Year})
	}
	joinSQL, joinArgs, err := paperJoin.ToSql()
	if err != nil {
		return nil, err
	}
	var extra []sq.Sqlizer
	if f.DepartmentID > 0 {
		extra = append(extra, sq.Eq{"u.department_id": f.DepartmentID})
	}

	query, args, err := psql.Select(
		"u.id", "u.name", "u.username", "d.name",
		"COUNT(p.id) AS total",
		"COUNT(p.id) FILTER (WHERE p.status = 'approved') AS approved",
		approvedQ1+" AS q1",
		approvedQ2+" AS q2",
	).From("users u").
		LeftJoin("departments d ON d.id = u.department_id").
		LeftJoin("papers p ON "+joinSQL, joinArgs...).
		Where(scope.Apply(authz.UserScopeColumns, extra...)).
		GroupBy("u.id", "u.name", "u.username", "d.name").
		Having("COUNT(p.id) > 0").
		OrderBy(order, "total DESC", "u.id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения рейтинга: %w", err)
	}
	defer rows.Close()

	list := make([]entities.RankingEntry, 0, limit)
	for rows.Next() {
		e := entities.RankingEntry{Rank: len(list) + 1}
		if err := rows.Scan(&e.UserID, &e.Name, &e.Username, &e.DepartmentName,
			&e.Total, &e.Approved, &e.Q1, &e.Q2); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *StatisticsRepository) ExportPapers(ctx context.Context, scope authz.Scope, f StatsFilter) ([]entities.Paper, error) {
	return r.papers(ctx, scope.Apply(authz.PaperScopeColumns, f.conditions()...), exportLimit)
}

func (r *StatisticsRepository) papers(ctx context.Context, where sq.Sqlizer, limit uint64) ([]entities.Paper, error) {
	query, args, err := psql.Select(paperSelectFields).From(paperFromClause).Where(where).
		OrderBy("p.created_at DESC", "p.id DESC").Limit(limit).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	papers := make([]entities.Paper, 0)
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, *p)
	}
	return papers, rows.Err()
}

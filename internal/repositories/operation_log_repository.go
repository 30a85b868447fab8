package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"paper-system/internal/entities"
	"paper-system/pkg/types"
)

var OperationLogListSpec = listSpec{
	Filters: map[string]filterFunc{
		"action":        eqFilter("l.action"),
		"resource_type": eqFilter("l.resource_type"),
		"user_id":       idFilter("l.user_id"),
	},
	SearchColumns: []string{"l.description", "u.username"},
	SortColumns: map[string]string{
		"created_at": "l.created_at",
		"action":     "l.action",
	},
	DefaultSort: "l.created_at",
}

type OperationLogRepositoryInterface interface {
	Create(ctx context.Context, log *entities.OperationLog) error
	GetLogs(ctx context.Context, filter types.Filter) ([]entities.OperationLog, uint64, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
	Count(ctx context.Context) (uint64, error)
}

type OperationLogRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewOperationLogRepository(storage *pgxpool.Pool, logger *zap.Logger) OperationLogRepositoryInterface {
	return &OperationLogRepository{storage: storage, logger: logger}
}

func (r *OperationLogRepository) Create(ctx context.Context, l *entities.OperationLog) error {
	_, err := r.storage.Exec(ctx, `
		INSERT INTO operation_logs (user_id, action, resource_type, resource_id, description, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.UserID, l.Action, l.ResourceType, l.ResourceID, l.Description, l.IP, l.UserAgent)
	return translateError(err)
}

func (r *OperationLogRepository) GetLogs(ctx context.Context, filter types.Filter) ([]entities.OperationLog, uint64, error) {
	conds, err := OperationLogListSpec.conditions(filter)
	if err != nil {
		return nil, 0, err
	}
	where := sq.And(conds)
	from := "operation_logs l LEFT JOIN users u ON u.id = l.user_id"

	countQuery, countArgs, err := psql.Select("COUNT(*)").From(from).Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета журнала операций: %w", err)
	}
	if total == 0 {
		return []entities.OperationLog{}, 0, nil
	}

	query, args, err := psql.Select(
		"l.id", "l.user_id", "u.username", "l.action", "l.resource_type", "l.resource_id",
		"l.description", "l.ip_address", "l.user_agent", "l.created_at",
	).From(from).Where(where).
		OrderBy(OperationLogListSpec.orderBy(filter), "l.id DESC").
		Limit(filter.Limit()).Offset(filter.Offset()).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	logs := make([]entities.OperationLog, 0, filter.PageSize)
	for rows.Next() {
		var l entities.OperationLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Username, &l.Action, &l.ResourceType, &l.ResourceID,
			&l.Description, &l.IP, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, 0, err
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}

func (r *OperationLogRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.storage.Exec(ctx, `DELETE FROM operation_logs WHERE created_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *OperationLogRepository) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.storage.QueryRow(ctx, "SELECT COUNT(*) FROM operation_logs").Scan(&n)
	return n, err
}

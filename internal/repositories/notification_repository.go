package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"paper-system/internal/entities"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/types"
)

// viewer подставляется первым аргументом для is_read.
const notificationSelectFields = `n.id, n.title, n.content, n.type, n.status, n.author_id,
	u.name, u.username, n.read_count,
	EXISTS (SELECT 1 FROM notification_reads nr WHERE nr.notification_id = n.id AND nr.user_id = ?),
	n.created_at, n.updated_at`

const notificationFromClause = "notifications n LEFT JOIN users u ON u.id = n.author_id"

var NotificationListSpec = listSpec{
	Filters: map[string]filterFunc{
		"type":   eqFilter("n.type"),
		"status": eqFilter("n.status"),
	},
	SearchColumns: []string{"n.title", "n.content"},
	SortColumns: map[string]string{
		"created_at": "n.created_at",
		"updated_at": "n.updated_at",
		"title":      "n.title",
		"read_count": "n.read_count",
	},
	DefaultSort: "n.created_at",
}

type NotificationUpdate struct {
	Title   null.String
	Content null.String
	Type    null.String
}

type NotificationRepositoryInterface interface {
	GetNotifications(ctx context.Context, viewerID uint64, publishedOnly bool, filter types.Filter) ([]entities.Notification, uint64, error)
	FindByID(ctx context.Context, id, viewerID uint64) (*entities.Notification, error)
	Create(ctx context.Context, n *entities.Notification) (*entities.Notification, error)
	Update(ctx context.Context, id uint64, cmd NotificationUpdate) error
	SetStatus(ctx context.Context, id uint64, status string) error
	Delete(ctx context.Context, id uint64) error
	MarkRead(ctx context.Context, id, userID uint64) (bool, error)
	MarkAllRead(ctx context.Context, userID uint64) (int64, error)
	UnreadCount(ctx context.Context, userID uint64) (uint64, error)
	Stats(ctx context.Context, authorID *uint64) (*entities.NotificationStats, error)
}

type NotificationRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewNotificationRepository(storage *pgxpool.Pool, logger *zap.Logger) NotificationRepositoryInterface {
	return &NotificationRepository{storage: storage, logger: logger}
}

func scanNotification(row pgx.Row) (*entities.Notification, error) {
	var n entities.Notification
	err := row.Scan(
		&n.ID, &n.Title, &n.Content, &n.Type, &n.Status, &n.AuthorID,
		&n.AuthorName, &n.AuthorUsername, &n.ReadCount, &n.IsRead,
		&n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &n, nil
}

func (r *NotificationRepository) GetNotifications(ctx context.Context, viewerID uint64, publishedOnly bool, filter types.Filter) ([]entities.Notification, uint64, error) {
	conds, err := NotificationListSpec.conditions(filter)
	if err != nil {
		return nil, 0, err
	}
	where := sq.And(conds)
	if publishedOnly {
		where = append(where, sq.Eq{"n.status": entities.NotificationStatusPublished})
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("notifications n").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета уведомлений: %w", err)
	}
	if total == 0 {
		return []entities.Notification{}, 0, nil
	}

	query, args, err := psql.Select().Column(notificationSelectFields, viewerID).
		From(notificationFromClause).Where(where).
		OrderBy(NotificationListSpec.orderBy(filter), "n.id DESC").
		Limit(filter.Limit()).Offset(filter.Offset()).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения уведомлений: %w", err)
	}
	defer rows.Close()

	list := make([]entities.Notification, 0, filter.PageSize)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *n)
	}
	return list, total, rows.Err()
}

func (r *NotificationRepository) FindByID(ctx context.Context, id, viewerID uint64) (*entities.Notification, error) {
	query, args, err := psql.Select().Column(notificationSelectFields, viewerID).
		From(notificationFromClause).Where(sq.Eq{"n.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanNotification(r.storage.QueryRow(ctx, query, args...))
}

func (r *NotificationRepository) Create(ctx context.Context, n *entities.Notification) (*entities.Notification, error) {
	var id uint64
	err := r.storage.QueryRow(ctx, `
		INSERT INTO notifications (title, content, type, status, author_id)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		n.Title, n.Content, n.Type, n.Status, n.AuthorID,
	).Scan(&id)
	if err != nil {
		return nil, translateError(err)
	}
	return r.FindByID(ctx, id, n.AuthorID)
}

func (r *NotificationRepository) Update(ctx context.Context, id uint64, cmd NotificationUpdate) error {
	builder := psql.Update("notifications").Set("updated_at", sq.Expr("NOW()")).Where(sq.Eq{"id": id})
	if cmd.Title.Valid {
		builder = builder.Set("title", cmd.Title.String)
	}
	if cmd.Content.Valid {
		builder = builder.Set("content", cmd.Content.String)
	}
	if cmd.Type.Valid {
		builder = builder.Set("type", cmd.Type.String)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	return r.execOne(ctx, query, args...)
}

func (r *NotificationRepository) SetStatus(ctx context.Context, id uint64, status string) error {
	return r.execOne(ctx, `UPDATE notifications SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
}

func (r *NotificationRepository) Delete(ctx context.Context, id uint64) error {
	return r.execOne(ctx, `DELETE FROM notifications WHERE id = $1`, id)
}

func (r *NotificationRepository) execOne(ctx context.Context, query string, args ...interface{}) error {
	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkRead - вставка отметки и инкремент read_count одним выражением;
// повторное прочтение счётчик не меняет.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID uint64) (bool, error) {
	tag, err := r.storage.Exec(ctx, `
		WITH ins AS (
			INSERT INTO notification_reads (notification_id, user_id)
			SELECT n.id, $2 FROM notifications n WHERE n.id = $1 AND n.status = 'published'
			ON CONFLICT (notification_id, user_id) DO NOTHING
			RETURNING notification_id
		)
		UPDATE notifications SET read_count = read_count + 1
		WHERE id IN (SELECT notification_id FROM ins)`, id, userID)
	if err != nil {
		return false, translateError(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	tag, err := r.storage.Exec(ctx, `
		WITH ins AS (
			INSERT INTO notification_reads (notification_id, user_id)
			SELECT n.id, $1 FROM notifications n WHERE n.status = 'published'
			ON CONFLICT (notification_id, user_id) DO NOTHING
			RETURNING notification_id
		)
		UPDATE notifications SET read_count = read_count + 1
		WHERE id IN (SELECT notification_id FROM ins)`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID uint64) (uint64, error) {
	var count uint64
	err := r.storage.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications n
		WHERE n.status = 'published'
		AND NOT EXISTS (SELECT 1 FROM notification_reads nr WHERE nr.notification_id = n.id AND nr.user_id = $1)`,
		userID).Scan(&count)
	return count, err
}

// Stats - при authorID != nil только уведомления этого автора.
func (r *NotificationRepository) Stats(ctx context.Context, authorID *uint64) (*entities.NotificationStats, error) {
	where := sq.And{}
	if authorID != nil {
		where = append(where, sq.Eq{"n.author_id": *authorID})
	}

	query, args, err := psql.Select(
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE n.status = 'published')",
		"COUNT(*) FILTER (WHERE n.status = 'draft')",
		"COUNT(*) FILTER (WHERE n.type = 'system')",
		"COUNT(*) FILTER (WHERE n.type = 'announcement')",
		"COUNT(*) FILTER (WHERE n.type = 'reminder')",
		"COALESCE(AVG(n.read_count), 0)::float8",
	).From("notifications n").Where(where).ToSql()
	if err != nil {
		return nil, err
	}

	var s entities.NotificationStats
	if err := r.storage.QueryRow(ctx, query, args...).Scan(
		&s.Total, &s.Published, &s.Draft, &s.System, &s.Announcement, &s.Reminder, &s.AvgReadCount,
	); err != nil {
		return nil, err
	}

	recentQuery, recentArgs, err := psql.Select("n.id", "n.title", "n.read_count").
		From("notifications n").
		Where(append(where, sq.Eq{"n.status": entities.NotificationStatusPublished})).
		OrderBy("n.created_at DESC").Limit(10).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, recentQuery, recentArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	s.RecentReadSummary = make([]entities.NotificationReadSummary, 0)
	for rows.Next() {
		var item entities.NotificationReadSummary
		if err := rows.Scan(&item.ID, &item.Title, &item.ReadCount); err != nil {
			return nil, err
		}
		s.RecentReadSummary = append(s.RecentReadSummary, item)
	}
	return &s, rows.Err()
}

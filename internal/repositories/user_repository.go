package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"paper-system/internal/authz"
	"paper-system/internal/entities"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/types"
)

const userSelectFields = `u.id, u.username, u.password, u.name, u.role, u.department_id, d.name,
	u.email, u.phone, u.status, u.last_login,
	(SELECT COUNT(*) FROM papers pc WHERE pc.user_id = u.id),
	(SELECT COUNT(*) FROM papers pa WHERE pa.user_id = u.id AND pa.status = 'approved'),
	u.created_at, u.updated_at`

const userFromClause = "users u LEFT JOIN departments d ON d.id = u.department_id"

var UserListSpec = listSpec{
	Filters: map[string]filterFunc{
		"role":          eqFilter("u.role"),
		"status":        eqFilter("u.status"),
		"department_id": idFilter("u.department_id"),
	},
	SearchColumns: []string{"u.username", "u.name", "u.email"},
	SortColumns: map[string]string{
		"id":         "u.id",
		"username":   "u.username",
		"name":       "u.name",
		"role":       "u.role",
		"last_login": "u.last_login",
		"created_at": "u.created_at",
	},
	DefaultSort: "u.created_at",
}

// UserUpdate - команда частичного обновления. Невалидные поля не трогаются,
// DepartmentID со значением 0 снимает пользователя с департамента.
type UserUpdate struct {
	Name         null.String
	Email        null.String
	Phone        null.String
	Role         null.String
	Status       null.String
	DepartmentID null.Uint64
}

func (c UserUpdate) setMap() map[string]interface{} {
	set := make(map[string]interface{})
	if c.Name.Valid {
		set["name"] = c.Name.String
	}
	if c.Email.Valid {
		set["email"] = c.Email.String
	}
	if c.Phone.Valid {
		set["phone"] = c.Phone.String
	}
	if c.Role.Valid {
		set["role"] = c.Role.String
	}
	if c.Status.Valid {
		set["status"] = c.Status.String
	}
	if c.DepartmentID.Valid {
		if c.DepartmentID.Uint64 == 0 {
			set["department_id"] = nil
		} else {
			set["department_id"] = c.DepartmentID.Uint64
		}
	}
	return set
}

type UserRepositoryInterface interface {
	GetUsers(ctx context.Context, scope authz.Scope, filter types.Filter) ([]entities.User, uint64, error)
	FindByID(ctx context.Context, id uint64) (*entities.User, error)
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, user *entities.User) (*entities.User, error)
	Update(ctx context.Context, id uint64, cmd UserUpdate) (*entities.User, error)
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
	TouchLastLogin(ctx context.Context, id uint64, at time.Time) error
	Delete(ctx context.Context, id uint64) error
	BatchUpdateStatus(ctx context.Context, ids []uint64, status string) (int64, error)
	CountByStatus(ctx context.Context) (map[string]uint64, error)
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Password, &user.Name, &user.Role,
		&user.DepartmentID, &user.DepartmentName,
		&user.Email, &user.Phone, &user.Status, &user.LastLogin,
		&user.PaperCount, &user.ApprovedPaperCount,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *UserRepository) GetUsers(ctx context.Context, scope authz.Scope, filter types.Filter) ([]entities.User, uint64, error) {
	conds, err := UserListSpec.conditions(filter)
	if err != nil {
		return nil, 0, err
	}
	where := scope.Apply(authz.UserScopeColumns, conds...)

	countQuery, countArgs, err := psql.Select("COUNT(*)").From(userFromClause).Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	r.logger.Debug("Подсчёт пользователей", zap.String("query", countQuery), zap.Any("args", countArgs))

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета пользователей: %w", err)
	}
	if total == 0 {
		return []entities.User{}, 0, nil
	}

	query, args, err := psql.Select(userSelectFields).From(userFromClause).Where(where).
		OrderBy(UserListSpec.orderBy(filter)).
		Limit(filter.Limit()).Offset(filter.Offset()).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения пользователей: %w", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0, filter.PageSize)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) FindByID(ctx context.Context, id uint64) (*entities.User, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE u.id = $1", userSelectFields, userFromClause)
	return scanUser(r.storage.QueryRow(ctx, query, id))
}

// FindByUsername - точное совпадение логина.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE u.username = $1", userSelectFields, userFromClause)
	return scanUser(r.storage.QueryRow(ctx, query, username))
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.storage.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)", username).Scan(&exists)
	return exists, err
}

func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	query := fmt.Sprintf(`
		WITH ins AS (
			INSERT INTO users (username, password, name, role, department_id, email, phone, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING *
		)
		SELECT %s FROM ins u LEFT JOIN departments d ON d.id = u.department_id`, userSelectFields)

	created, err := scanUser(r.storage.QueryRow(ctx, query,
		user.Username, user.Password, user.Name, user.Role, user.DepartmentID,
		user.Email, user.Phone, user.Status,
	))
	if err != nil {
		return nil, translateError(err)
	}
	return created, nil
}

func (r *UserRepository) Update(ctx context.Context, id uint64, cmd UserUpdate) (*entities.User, error) {
	set := cmd.setMap()
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}
	set["updated_at"] = sq.Expr("NOW()")

	query, args, err := psql.Update("users").SetMap(set).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	result, err := r.storage.Exec(ctx, `UPDATE users SET password = $1, updated_at = NOW() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.storage.Exec(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at, id)
	return err
}

// Delete - пользователь с публикациями не удаляется (нарушение FK -> Conflict).
func (r *UserRepository) Delete(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) BatchUpdateStatus(ctx context.Context, ids []uint64, status string) (int64, error) {
	query, args, err := psql.Update("users").
		Set("status", status).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *UserRepository) CountByStatus(ctx context.Context) (map[string]uint64, error) {
	rows, err := r.storage.Query(ctx, `SELECT status, COUNT(*) FROM users GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]uint64{entities.UserStatusActive: 0, entities.UserStatusInactive: 0}
	for rows.Next() {
		var status string
		var n uint64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

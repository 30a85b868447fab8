package repositories

import (
	"context"
	"net/http"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"paper-system/internal/entities"
	apperrors "paper-system/pkg/errors"
)

const departmentSelectFields = `d.id, d.name, d.description,
	(SELECT COUNT(*) FROM users u WHERE u.department_id = d.id),
	d.created_at, d.updated_at`

type DepartmentRepositoryInterface interface {
	GetDepartments(ctx context.Context) ([]entities.Department, error)
	FindByID(ctx context.Context, id uint64) (*entities.Department, error)
	Create(ctx context.Context, name, description string) (*entities.Department, error)
	Update(ctx context.Context, id uint64, name, description *string) (*entities.Department, error)
	Delete(ctx context.Context, id uint64) error
}

type DepartmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDepartmentRepository(storage *pgxpool.Pool, logger *zap.Logger) DepartmentRepositoryInterface {
	return &DepartmentRepository{storage: storage, logger: logger}
}

func scanDepartment(row pgx.Row) (*entities.Department, error) {
	var d entities.Department
	if err := row.Scan(&d.ID, &d.Name, &d.Description, &d.UserCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, translateError(err)
	}
	return &d, nil
}

func (r *DepartmentRepository) GetDepartments(ctx context.Context) ([]entities.Department, error) {
	rows, err := r.storage.Query(ctx, "SELECT "+departmentSelectFields+" FROM departments d ORDER BY d.name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	departments := make([]entities.Department, 0)
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, *d)
	}
	return departments, rows.Err()
}

func (r *DepartmentRepository) FindByID(ctx context.Context, id uint64) (*entities.Department, error) {
	return scanDepartment(r.storage.QueryRow(ctx, "SELECT "+departmentSelectFields+" FROM departments d WHERE d.id = $1", id))
}

func (r *DepartmentRepository) Create(ctx context.Context, name, description string) (*entities.Department, error) {
	var id uint64
	err := r.storage.QueryRow(ctx,
		`INSERT INTO departments (name, description) VALUES ($1, $2) RETURNING id`, name, description,
	).Scan(&id)
	if err != nil {
		return nil, translateError(err)
	}
	return r.FindByID(ctx, id)
}

func (r *DepartmentRepository) Update(ctx context.Context, id uint64, name, description *string) (*entities.Department, error) {
	builder := psql.Update("departments").Set("updated_at", sq.Expr("NOW()")).Where(sq.Eq{"id": id})
	if name != nil {
		builder = builder.Set("name", *name)
	}
	if description != nil {
		builder = builder.Set("description", *description)
	}
	query, args, err := builder.ToSql()
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

// Delete удаляет департамент только без пользователей; иначе Conflict.
func (r *DepartmentRepository) Delete(ctx context.Context, id uint64) error {
	tag, err := r.storage.Exec(ctx, `
		DELETE FROM departments d
		WHERE d.id = $1 AND NOT EXISTS (SELECT 1 FROM users u WHERE u.department_id = d.id)`, id)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.storage.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM departments WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return apperrors.ErrNotFound
	}
	return apperrors.NewHttpError(http.StatusConflict, "В департаменте есть пользователи", apperrors.ErrConflict, nil)
}

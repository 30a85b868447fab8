package repositories

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/types"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translateError приводит ошибки драйвера к ошибкам приложения.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", apperrors.ErrConflict, pgErr.ConstraintName)
		}
	}
	return err
}

// filterFunc строит условие для значения фильтра из query.
type filterFunc func(value string) (sq.Sqlizer, error)

func eqFilter(column string) filterFunc {
	return func(value string) (sq.Sqlizer, error) {
		return sq.Eq{column: value}, nil
	}
}

func idFilter(column string) filterFunc {
	return func(value string) (sq.Sqlizer, error) {
		id, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return nil, apperrors.NewInvalidInputError("неверное значение фильтра %s", column)
		}
		return sq.Eq{column: id}, nil
	}
}

func intFilter(column string) filterFunc {
	return func(value string) (sq.Sqlizer, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, apperrors.NewInvalidInputError("неверное значение фильтра %s", column)
		}
		return sq.Eq{column: n}, nil
	}
}

func likeFilter(column string) filterFunc {
	return func(value string) (sq.Sqlizer, error) {
		return sq.ILike{column: likePattern(value)}, nil
	}
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// listSpec - разрешённые фильтры, поля поиска и сортировки списка.
type listSpec struct {
	Filters       map[string]filterFunc
	SearchColumns []string
	SortColumns   map[string]string
	DefaultSort   string
}

// FilterKeys - ключи query, которые спецификация списка понимает.
func (s listSpec) FilterKeys() []string {
	keys := make([]string, 0, len(s.Filters))
	for k := range s.Filters {
		keys = append(keys, k)
	}
	return keys
}

func (s listSpec) conditions(filter types.Filter) ([]sq.Sqlizer, error) {
	conds := make([]sq.Sqlizer, 0, len(filter.Filter)+1)
	for key, value := range filter.Filter {
		build, ok := s.Filters[key]
		if !ok || value == "" {
			continue
		}
		cond, err := build(value)
		if err != nil {
			return nil, err
		}
		conds = append(conds, cond)
	}

	if filter.Search != "" && len(s.SearchColumns) > 0 {
		pattern := likePattern(filter.Search)
		search := make(sq.Or, 0, len(s.SearchColumns))
		for _, col := range s.SearchColumns {
			search = append(search, sq.ILike{col: pattern})
		}
		conds = append(conds, search)
	}
	return conds, nil
}

// orderBy: неизвестное поле сортировки заменяется на DefaultSort.
func (s listSpec) orderBy(filter types.Filter) string {
	column, ok := s.SortColumns[filter.SortBy]
	if !ok {
		column = s.DefaultSort
	}
	direction := "DESC"
	if filter.SortOrder == "asc" {
		direction = "ASC"
	}
	return fmt.Sprintf("%s %s", column, direction)
}

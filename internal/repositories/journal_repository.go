package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"paper-system/internal/entities"
)

const journalSelectFields = `journal_id, name, COALESCE(issn, ''), COALESCE(eissn, ''), COALESCE(publisher, ''),
	COALESCE(subject_categories, ''), COALESCE(partition_2023, ''), COALESCE(partition_2022, ''),
	COALESCE(partition_2021, ''), impact_factor::float8, updated_at`

type JournalRepositoryInterface interface {
	Search(ctx context.Context, keyword string, page, pageSize int) ([]entities.Journal, uint64, error)
	FindByJournalID(ctx context.Context, journalID string) (*entities.Journal, error)
	Upsert(ctx context.Context, journals []entities.Journal) error
	Categories(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (uint64, error)
}

type JournalRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewJournalRepository(storage *pgxpool.Pool, logger *zap.Logger) JournalRepositoryInterface {
	return &JournalRepository{storage: storage, logger: logger}
}

func scanJournal(row pgx.Row) (*entities.Journal, error) {
	var j entities.Journal
	err := row.Scan(
		&j.JournalID, &j.Name, &j.ISSN, &j.EISSN, &j.Publisher,
		&j.SubjectCategories, &j.Partition2023, &j.Partition2022,
		&j.Partition2021, &j.ImpactFactor, &j.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	j.FillPartition()
	return &j, nil
}

func journalSearchCondition(keyword string) sq.Sqlizer {
	pattern := likePattern(keyword)
	return sq.Or{
		sq.ILike{"name": pattern},
		sq.ILike{"publisher": pattern},
		sq.ILike{"subject_categories": pattern},
	}
}

// Search - локальный поиск по названию, издателю и рубрикам.
func (r *JournalRepository) Search(ctx context.Context, keyword string, page, pageSize int) ([]entities.Journal, uint64, error) {
	where := journalSearchCondition(keyword)

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("journals").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета журналов: %w", err)
	}
	if total == 0 {
		return []entities.Journal{}, 0, nil
	}

	offset := 0
	if page > 1 {
		offset = (page - 1) * pageSize
	}
	query, args, err := psql.Select(journalSelectFields).From("journals").Where(where).
		OrderBy("name").
		Limit(uint64(pageSize)).Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка поиска журналов: %w", err)
	}
	defer rows.Close()

	journals := make([]entities.Journal, 0, pageSize)
	for rows.Next() {
		j, err := scanJournal(rows)
		if err != nil {
			return nil, 0, err
		}
		journals = append(journals, *j)
	}
	return journals, total, rows.Err()
}

func (r *JournalRepository) FindByJournalID(ctx context.Context, journalID string) (*entities.Journal, error) {
	query := fmt.Sprintf("SELECT %s FROM journals WHERE journal_id = $1", journalSelectFields)
	return scanJournal(r.storage.QueryRow(ctx, query, journalID))
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// Upsert сохраняет журналы пачкой; записи без journal_id пропускаются.
func (r *JournalRepository) Upsert(ctx context.Context, journals []entities.Journal) error {
	batch := &pgx.Batch{}
	for _, j := range journals {
		if j.JournalID == "" || j.Name == "" {
			continue
		}
		batch.Queue(`
			INSERT INTO journals (journal_id, name, issn, eissn, publisher, subject_categories,
				partition_2023, partition_2022, partition_2021, impact_factor)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (journal_id) DO UPDATE SET
				name = EXCLUDED.name,
				issn = EXCLUDED.issn,
				eissn = EXCLUDED.eissn,
				publisher = EXCLUDED.publisher,
				subject_categories = EXCLUDED.subject_categories,
				partition_2023 = EXCLUDED.partition_2023,
				partition_2022 = EXCLUDED.partition_2022,
				partition_2021 = EXCLUDED.partition_2021,
				impact_factor = EXCLUDED.impact_factor,
				updated_at = NOW()`,
			j.JournalID, j.Name, nullIfEmpty(j.ISSN), nullIfEmpty(j.EISSN), nullIfEmpty(j.Publisher),
			nullIfEmpty(j.SubjectCategories), nullIfEmpty(j.Partition2023), nullIfEmpty(j.Partition2022),
			nullIfEmpty(j.Partition2021), j.ImpactFactor,
		)
	}
	if batch.Len() == 0 {
		return nil
	}
	return r.storage.SendBatch(ctx, batch).Close()
}

// Categories - уникальные рубрики, разложенные по запятой и отсортированные.
func (r *JournalRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT DISTINCT subject_categories FROM journals
		WHERE subject_categories IS NOT NULL AND subject_categories <> ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				set[c] = struct{}{}
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	categories := make([]string, 0, len(set))
	for c := range set {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}

func (r *JournalRepository) Count(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.storage.QueryRow(ctx, "SELECT COUNT(*) FROM journals").Scan(&n)
	return n, err
}

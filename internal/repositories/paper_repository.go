package repositories

import (
	"context"
	"encoding/json"
	"errors"
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

const paperSelectFields = `p.id, p.title, p.authors, p.first_author, p.corresponding_author,
	p.journal_name, p.journal_id, p.partition_info, p.publish_year, p.publish_date,
	p.volume, p.issue, p.pages, p.doi, p.abstract, p.keywords, p.type, p.status,
	p.user_id, p.auditor_id, p.audit_time, p.audit_comment,
	p.file_path, p.file_name, p.file_size,
	u.name, u.username, u.department_id, d.name, a.name,
	p.created_at, p.updated_at`

const paperFromClause = `papers p
	LEFT JOIN users u ON u.id = p.user_id
	LEFT JOIN departments d ON d.id = u.department_id
	LEFT JOIN users a ON a.id = p.auditor_id`

// paperCountFrom - для COUNT и агрегатов достаточно владельца.
const paperCountFrom = "papers p LEFT JOIN users u ON u.id = p.user_id"

const partitionBucket = `CASE
	WHEN p.partition_info ILIKE '%Q1%' THEN 'Q1'
	WHEN p.partition_info ILIKE '%Q2%' THEN 'Q2'
	WHEN p.partition_info ILIKE '%Q3%' THEN 'Q3'
	WHEN p.partition_info ILIKE '%Q4%' THEN 'Q4'
	ELSE 'none' END`

var PaperListSpec = listSpec{
	Filters: map[string]filterFunc{
		"type":          eqFilter("p.type"),
		"status":        eqFilter("p.status"),
		"partition":     likeFilter("p.partition_info"),
		"year":          intFilter("p.publish_year"),
		"department_id": idFilter("u.department_id"),
		"user_id":       idFilter("p.user_id"),
	},
	SearchColumns: []string{"p.title", "p.first_author", "p.journal_name", "p.keywords"},
	SortColumns: map[string]string{
		"id":           "p.id",
		"title":        "p.title",
		"journal_name": "p.journal_name",
		"publish_year": "p.publish_year",
		"status":       "p.status",
		"type":         "p.type",
		"audit_time":   "p.audit_time",
		"created_at":   "p.created_at",
		"updated_at":   "p.updated_at",
	},
	DefaultSort: "p.created_at",
}

// PaperUpdate - команда правки статьи. Статус правкой не меняется.
// Пустая строка в необязательном поле очищает его.
type PaperUpdate struct {
	Title               null.String
	Authors             []entities.Author
	FirstAuthor         null.String
	CorrespondingAuthor null.String
	JournalName         null.String
	JournalID           null.String
	PartitionInfo       null.String
	PublishYear         null.Int
	PublishDate         null.Time
	ClearPublishDate    bool
	Volume              null.String
	Issue               null.String
	Pages               null.String
	DOI                 null.String
	Abstract            null.String
	Keywords            null.String
	Type                null.String
}

func nullableText(set map[string]interface{}, column string, v null.String) {
	if !v.Valid {
		return
	}
	if v.String == "" {
		set[column] = nil
		return
	}
	set[column] = v.String
}

func (c PaperUpdate) setMap() (map[string]interface{}, error) {
	set := make(map[string]interface{})
	if c.Title.Valid {
		set["title"] = c.Title.String
	}
	if c.FirstAuthor.Valid {
		set["first_author"] = c.FirstAuthor.String
	}
	if c.JournalName.Valid {
		set["journal_name"] = c.JournalName.String
	}
	if c.Type.Valid {
		set["type"] = c.Type.String
	}
	nullableText(set, "corresponding_author", c.CorrespondingAuthor)
	nullableText(set, "journal_id", c.JournalID)
	nullableText(set, "partition_info", c.PartitionInfo)
	nullableText(set, "volume", c.Volume)
	nullableText(set, "issue", c.Issue)
	nullableText(set, "pages", c.Pages)
	nullableText(set, "doi", c.DOI)
	nullableText(set, "abstract", c.Abstract)
	nullableText(set, "keywords", c.Keywords)
	if c.PublishYear.Valid {
		set["publish_year"] = c.PublishYear.Int
	}
	if c.ClearPublishDate {
		set["publish_date"] = nil
	} else if c.PublishDate.Valid {
		set["publish_date"] = c.PublishDate.Time
	}
	if c.Authors != nil {
		raw, err := json.Marshal(c.Authors)
		if err != nil {
			return nil, err
		}
		set["authors"] = sq.Expr("?::jsonb", string(raw))
	}
	return set, nil
}

// AuditCommand - решение проверяющего.
type AuditCommand struct {
	Status    string
	AuditorID uint64
	Comment   string
	At        time.Time
}

type PaperRepositoryInterface interface {
	GetPapers(ctx context.Context, scope authz.Scope, filter types.Filter) ([]entities.Paper, uint64, error)
	CountPapers(ctx context.Context, scope authz.Scope, filter types.Filter) (entities.PaperCounts, error)
	FindByID(ctx context.Context, id uint64) (*entities.Paper, error)
	Create(ctx context.Context, paper *entities.Paper) (*entities.Paper, error)
	Update(ctx context.Context, id uint64, cmd PaperUpdate) (*entities.Paper, error)
	Submit(ctx context.Context, id, ownerID uint64) (*entities.Paper, error)
	Audit(ctx context.Context, id uint64, cmd AuditCommand) (*entities.Paper, error)
	BatchAuditInTx(ctx context.Context, tx pgx.Tx, ids []uint64, cmd AuditCommand) (int64, error)
	AttachFile(ctx context.Context, id uint64, path, name string, size int64) (previousPath *string, err error)
	Delete(ctx context.Context, id uint64) (filePath *string, err error)
}

type PaperRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewPaperRepository(storage *pgxpool.Pool, logger *zap.Logger) PaperRepositoryInterface {
	return &PaperRepository{storage: storage, logger: logger}
}

func scanPaper(row pgx.Row) (*entities.Paper, error) {
	var p entities.Paper
	var authors []byte
	err := row.Scan(
		&p.ID, &p.Title, &authors, &p.FirstAuthor, &p.CorrespondingAuthor,
		&p.JournalName, &p.JournalID, &p.PartitionInfo, &p.PublishYear, &p.PublishDate,
		&p.Volume, &p.Issue, &p.Pages, &p.DOI, &p.Abstract, &p.Keywords, &p.Type, &p.Status,
		&p.UserID, &p.AuditorID, &p.AuditTime, &p.AuditComment,
		&p.FilePath, &p.FileName, &p.FileSize,
		&p.OwnerName, &p.OwnerUsername, &p.DepartmentID, &p.DepartmentName, &p.AuditorName,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(err)
	}
	p.Authors = make([]entities.Author, 0)
	if len(authors) > 0 {
		if err := json.Unmarshal(authors, &p.Authors); err != nil {
			return nil, fmt.Errorf("не удалось разобрать authors статьи %d: %w", p.ID, err)
		}
	}
	return &p, nil
}

func (r *PaperRepository) where(scope authz.Scope, filter types.Filter) (sq.And, error) {
	conds, err := PaperListSpec.conditions(filter)
	if err != nil {
		return nil, err
	}
	return scope.Apply(authz.PaperScopeColumns, conds...), nil
}

// GetPapers - count и страница строятся из одного и того же условия scope AND фильтры.
func (r *PaperRepository) GetPapers(ctx context.Context, scope authz.Scope, filter types.Filter) ([]entities.Paper, uint64, error) {
	where, err := r.where(scope, filter)
	if err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From(paperCountFrom).Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	r.logger.Debug("Подсчёт статей", zap.String("query", countQuery), zap.Any("args", countArgs))

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета статей: %w", err)
	}
	if total == 0 {
		return []entities.Paper{}, 0, nil
	}

	query, args, err := psql.Select(paperSelectFields).From(paperFromClause).Where(where).
		OrderBy(PaperListSpec.orderBy(filter), "p.id DESC").
		Limit(filter.Limit()).Offset(filter.Offset()).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения статей: %w", err)
	}
	defer rows.Close()

	papers := make([]entities.Paper, 0, filter.PageSize)
	for rows.Next() {
		paper, err := scanPaper(rows)
		if err != nil {
			return nil, 0, err
		}
		papers = append(papers, *paper)
	}
	return papers, total, rows.Err()
}

func (r *PaperRepository) CountPapers(ctx context.Context, scope authz.Scope, filter types.Filter) (entities.PaperCounts, error) {
	where, err := r.where(scope, filter)
	if err != nil {
		return entities.PaperCounts{}, err
	}
	return queryPaperCounts(ctx, r.storage, where)
}

// queryPaperCounts - одна агрегация по статусу, типу и разделу.
func queryPaperCounts(ctx context.Context, q querier, where sq.Sqlizer) (entities.PaperCounts, error) {
	counts := entities.NewPaperCounts()

	query, args, err := psql.Select("p.status", "p.type", partitionBucket+" AS bucket", "COUNT(*)").
		From(paperCountFrom).Where(where).
		GroupBy("p.status", "p.type", "bucket").
		ToSql()
	if err != nil {
		return counts, err
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return counts, fmt.Errorf("ошибка агрегации статей: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status, paperType, bucket string
		var n uint64
		if err := rows.Scan(&status, &paperType, &bucket, &n); err != nil {
			return counts, err
		}
		counts.Add(status, paperType, bucket, n)
	}
	return counts, rows.Err()
}

func (r *PaperRepository) FindByID(ctx context.Context, id uint64) (*entities.Paper, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE p.id = $1", paperSelectFields, paperFromClause)
	return scanPaper(r.storage.QueryRow(ctx, query, id))
}

func (r *PaperRepository) Create(ctx context.Context, paper *entities.Paper) (*entities.Paper, error) {
	authors := paper.Authors
	if authors == nil {
		authors = []entities.Author{}
	}
	raw, err := json.Marshal(authors)
	if err != nil {
		return nil, err
	}

	var id uint64
	err = r.storage.QueryRow(ctx, `
		INSERT INTO papers (title, authors, first_author, corresponding_author, journal_name, journal_id,
			partition_info, publish_year, publish_date, volume, issue, pages, doi, abstract, keywords,
			type, status, user_id)
		VALUES ($1, $2::jsonb, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id`,
		paper.Title, string(raw), paper.FirstAuthor, paper.CorrespondingAuthor, paper.JournalName, paper.JournalID,
		paper.PartitionInfo, paper.PublishYear, paper.PublishDate, paper.Volume, paper.Issue, paper.Pages,
		paper.DOI, paper.Abstract, paper.Keywords, paper.Type, paper.Status, paper.UserID,
	).Scan(&id)
	if err != nil {
		return nil, translateError(err)
	}
	return r.FindByID(ctx, id)
}

// resolveMiss объясняет, почему условное обновление не затронуло строку:
// статьи нет (NotFound) или она в неподходящем статусе (InvalidState).
func (r *PaperRepository) resolveMiss(ctx context.Context, q querier, id uint64) error {
	var status string
	err := q.QueryRow(ctx, `SELECT status FROM papers WHERE id = $1`, id).Scan(&status)
	if err != nil {
		return translateError(err)
	}
	return apperrors.NewInvalidStateError(fmt.Sprintf("Операция недопустима для статьи в статусе %s", status))
}

// Update правит статью только в статусах draft/pending.
func (r *PaperRepository) Update(ctx context.Context, id uint64, cmd PaperUpdate) (*entities.Paper, error) {
	set, err := cmd.setMap()
	if err != nil {
		return nil, err
	}
	set["updated_at"] = sq.Expr("NOW()")

	query, args, err := psql.Update("papers").SetMap(set).
		Where(sq.Eq{"id": id, "status": []string{entities.PaperStatusDraft, entities.PaperStatusPending}}).
		ToSql()
	if err != nil {
		return nil, err
	}
	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return nil, r.resolveMiss(ctx, r.storage, id)
	}
	return r.FindByID(ctx, id)
}

// Submit переводит черновик владельца в pending.
func (r *PaperRepository) Submit(ctx context.Context, id, ownerID uint64) (*entities.Paper, error) {
	tag, err := r.storage.Exec(ctx, `
		UPDATE papers SET status = 'pending', updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status = 'draft'`, id, ownerID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, r.resolveMiss(ctx, r.storage, id)
	}
	return r.FindByID(ctx, id)
}

// Audit - единственный условный UPDATE pending -> approved|rejected.
func (r *PaperRepository) Audit(ctx context.Context, id uint64, cmd AuditCommand) (*entities.Paper, error) {
	tag, err := r.storage.Exec(ctx, `
		UPDATE papers
		SET status = $2, auditor_id = $3, audit_time = $4, audit_comment = $5, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`,
		id, cmd.Status, cmd.AuditorID, cmd.At, cmd.Comment)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, r.resolveMiss(ctx, r.storage, id)
	}
	return r.FindByID(ctx, id)
}

// BatchAuditInTx блокирует все строки, проверяет что каждая существует и в pending,
// затем обновляет их одним запросом. Любая ошибка откатывает транзакцию целиком.
func (r *PaperRepository) BatchAuditInTx(ctx context.Context, tx pgx.Tx, ids []uint64, cmd AuditCommand) (int64, error) {
	query, args, err := psql.Select("id", "status").From("papers").
		Where(sq.Eq{"id": ids}).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return 0, err
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	statuses := make(map[uint64]string, len(ids))
	for rows.Next() {
		var id uint64
		var status string
		if err := rows.Scan(&id, &status); err != nil {
			rows.Close()
			return 0, err
		}
		statuses[id] = status
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range ids {
		status, ok := statuses[id]
		if !ok {
			return 0, apperrors.NewNotFoundError(fmt.Sprintf("Статья %d не найдена", id))
		}
		if status != entities.PaperStatusPending {
			return 0, apperrors.NewInvalidStateError(fmt.Sprintf("Статья %d в статусе %s, ожидался pending", id, status))
		}
	}

	update, updArgs, err := psql.Update("papers").
		Set("status", cmd.Status).
		Set("auditor_id", cmd.AuditorID).
		Set("audit_time", cmd.At).
		Set("audit_comment", cmd.Comment).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": ids, "status": entities.PaperStatusPending}).
		ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, update, updArgs...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PaperRepository) AttachFile(ctx context.Context, id uint64, path, name string, size int64) (*string, error) {
	var previous *string
	err := r.storage.QueryRow(ctx, `
		UPDATE papers p SET file_path = $2, file_name = $3, file_size = $4, updated_at = NOW()
		FROM (SELECT id, file_path FROM papers WHERE id = $1 FOR UPDATE) old
		WHERE p.id = old.id AND p.status IN ('draft', 'pending')
		RETURNING old.file_path`, id, path, name, size).Scan(&previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.resolveMiss(ctx, r.storage, id)
		}
		return nil, err
	}
	return previous, nil
}

// Delete удаляет статью, если она не одобрена; возвращает путь файла для очистки.
func (r *PaperRepository) Delete(ctx context.Context, id uint64) (*string, error) {
	var filePath *string
	err := r.storage.QueryRow(ctx,
		`DELETE FROM papers WHERE id = $1 AND status <> 'approved' RETURNING file_path`, id,
	).Scan(&filePath)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.resolveMiss(ctx, r.storage, id)
		}
		return nil, translateError(err)
	}
	return filePath, nil
}

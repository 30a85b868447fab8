package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"paper-system/config"
	"paper-system/internal/authz"
	"paper-system/internal/dto"
	"paper-system/internal/entities"
	"paper-system/internal/events"
	"paper-system/internal/repositories"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/filestorage"
	"paper-system/pkg/types"
	"paper-system/pkg/utils"
)

const dateLayout = "2006-01-02"

type PaperServiceInterface interface {
	GetPapers(ctx context.Context, filter types.Filter) ([]entities.Paper, uint64, error)
	GetMyPapers(ctx context.Context, filter types.Filter) (*dto.MyPapersDTO, error)
	GetByStatus(ctx context.Context, status string, filter types.Filter) ([]entities.Paper, uint64, error)
	GetStats(ctx context.Context, filter types.Filter) (entities.PaperCounts, error)
	FindPaper(ctx context.Context, id uint64) (*entities.Paper, error)
	CreatePaper(ctx context.Context, payload dto.CreatePaperDTO) (*entities.Paper, error)
	UpdatePaper(ctx context.Context, id uint64, payload dto.UpdatePaperDTO) (*entities.Paper, error)
	SubmitPaper(ctx context.Context, id uint64) (*entities.Paper, error)
	AuditPaper(ctx context.Context, id uint64, payload dto.AuditPaperDTO) (*entities.Paper, error)
	BatchAudit(ctx context.Context, payload dto.BatchAuditDTO) (int64, error)
	DeletePaper(ctx context.Context, id uint64) error
	UploadFile(ctx context.Context, id uint64, fileHeader *multipart.FileHeader) (*entities.Paper, error)
	OpenFile(ctx context.Context, id uint64) (*entities.Paper, *os.File, error)
}

type PaperService struct {
	*BaseService
	paperRepo   repositories.PaperRepositoryInterface
	txManager   repositories.TxManagerInterface
	fileStorage filestorage.FileStorageInterface
	logger      *zap.Logger
	now         func() time.Time
}

func NewPaperService(
	base *BaseService,
	paperRepo repositories.PaperRepositoryInterface,
	txManager repositories.TxManagerInterface,
	fileStorage filestorage.FileStorageInterface,
	logger *zap.Logger,
) PaperServiceInterface {
	return &PaperService{
		BaseService: base,
		paperRepo:   paperRepo,
		txManager:   txManager,
		fileStorage: fileStorage,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *PaperService) GetPapers(ctx context.Context, filter types.Filter) ([]entities.Paper, uint64, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return nil, 0, err
	}
	return s.paperRepo.GetPapers(ctx, authz.ScopeFor(principal), filter)
}

// GetMyPapers - только собственные статьи, независимо от роли, со сводкой по статусам.
func (s *PaperService) GetMyPapers(ctx context.Context, filter types.Filter) (*dto.MyPapersDTO, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	own := authz.Scope{Kind: authz.ScopeOwn, UserID: principal.ID}

	list, total, err := s.paperRepo.GetPapers(ctx, own, filter)
	if err != nil {
		return nil, err
	}
	counts, err := s.paperRepo.CountPapers(ctx, own, types.Filter{})
	if err != nil {
		return nil, err
	}
	return &dto.MyPapersDTO{List: list, Total: total, Counts: counts}, nil
}

// GetByStatus перекрывает пользовательский фильтр статуса.
func (s *PaperService) GetByStatus(ctx context.Context, status string, filter types.Filter) ([]entities.Paper, uint64, error) {
	if filter.Filter == nil {
		filter.Filter = make(map[string]string)
	}
	filter.Filter["status"] = status
	return s.GetPapers(ctx, filter)
}

func (s *PaperService) GetStats(ctx context.Context, filter types.Filter) (entities.PaperCounts, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return entities.PaperCounts{}, err
	}
	return s.paperRepo.CountPapers(ctx, authz.ScopeFor(principal), filter)
}

// load достаёт статью и проверяет право permission на неё.
func (s *PaperService) load(ctx context.Context, id uint64, permission string) (*authz.Principal, *entities.Paper, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return nil, nil, err
	}
	paper, err := s.paperRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !authz.CanDo(permission, authz.Context{Actor: principal, Target: paper}) {
		s.logger.Warn("Отказано в доступе к статье",
			zap.Uint64("userID", principal.ID),
			zap.Uint64("paperID", id),
			zap.String("permission", permission),
		)
		return nil, nil, apperrors.ErrForbidden
	}
	return principal, paper, nil
}

func (s *PaperService) FindPaper(ctx context.Context, id uint64) (*entities.Paper, error) {
	_, paper, err := s.load(ctx, id, authz.PapersRead)
	return paper, err
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *value)
	if err != nil {
		return nil, apperrors.NewValidationError("Неверная дата публикации",
			map[string]interface{}{"publish_date": "Ожидается формат ГГГГ-ММ-ДД"})
	}
	return &t, nil
}

func (s *PaperService) CreatePaper(ctx context.Context, payload dto.CreatePaperDTO) (*entities.Paper, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	publishDate, err := parseDate(payload.PublishDate)
	if err != nil {
		return nil, err
	}
	status := payload.Status
	if status == "" {
		status = entities.PaperStatusPending
	}

	paper, err := s.paperRepo.Create(ctx, &entities.Paper{
		Title:               payload.Title,
		Authors:             payload.Authors,
		FirstAuthor:         payload.FirstAuthor,
		CorrespondingAuthor: payload.CorrespondingAuthor,
		JournalName:         payload.JournalName,
		JournalID:           payload.JournalID,
		PartitionInfo:       payload.PartitionInfo,
		PublishYear:         payload.PublishYear,
		PublishDate:         publishDate,
		Volume:              payload.Volume,
		Issue:               payload.Issue,
		Pages:               payload.Pages,
		DOI:                 payload.DOI,
		Abstract:            payload.Abstract,
		Keywords:            payload.Keywords,
		Type:                payload.Type,
		Status:              status,
		UserID:              principal.ID,
	})
	if err != nil {
		return nil, err
	}

	s.Record(ctx, events.ActionCreate, events.ResourcePaper, &paper.ID, fmt.Sprintf("Создана статья «%s»", paper.Title))
	s.logger.Info("Статья создана", zap.Uint64("paperID", paper.ID), zap.Uint64("userID", principal.ID), zap.String("status", status))
	return paper, nil
}

func (s *PaperService) UpdatePaper(ctx context.Context, id uint64, payload dto.UpdatePaperDTO) (*entities.Paper, error) {
	_, paper, err := s.load(ctx, id, authz.PapersUpdate)
	if err != nil {
		return nil, err
	}
	if !paper.IsEditable() {
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("Статью в статусе %s нельзя изменить", paper.Status))
	}

	cmd := repositories.PaperUpdate{
		Title:               payload.Title,
		Authors:             payload.Authors,
		FirstAuthor:         payload.FirstAuthor,
		CorrespondingAuthor: payload.CorrespondingAuthor,
		JournalName:         payload.JournalName,
		JournalID:           payload.JournalID,
		PartitionInfo:       payload.PartitionInfo,
		PublishYear:         payload.PublishYear,
		Volume:              payload.Volume,
		Issue:               payload.Issue,
		Pages:               payload.Pages,
		DOI:                 payload.DOI,
		Abstract:            payload.Abstract,
		Keywords:            payload.Keywords,
		Type:                payload.Type,
	}
	if payload.PublishDate.Valid {
		date, err := parseDate(&payload.PublishDate.String)
		if err != nil {
			return nil, err
		}
		if date != nil {
			cmd.PublishDate = null.TimeFrom(*date)
		} else {
			cmd.ClearPublishDate = true
		}
	}

	updated, err := s.paperRepo.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}
	s.Record(ctx, events.ActionUpdate, events.ResourcePaper, &id, fmt.Sprintf("Изменена статья «%s»", updated.Title))
	return updated, nil
}

// SubmitPaper - draft -> pending, только владелец.
func (s *PaperService) SubmitPaper(ctx context.Context, id uint64) (*entities.Paper, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	paper, err := s.paperRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if paper.UserID != principal.ID {
		return nil, apperrors.ErrForbidden
	}

	submitted, err := s.paperRepo.Submit(ctx, id, principal.ID)
	if err != nil {
		return nil, err
	}
	s.Record(ctx, events.ActionSubmit, events.ResourcePaper, &id, "Статья отправлена на проверку")
	return submitted, nil
}

func (s *PaperService) auditCommand(principal *authz.Principal, status, comment string) repositories.AuditCommand {
	return repositories.AuditCommand{
		Status:    status,
		AuditorID: principal.ID,
		Comment:   comment,
		At:        s.now(),
	}
}

func (s *PaperService) AuditPaper(ctx context.Context, id uint64, payload dto.AuditPaperDTO) (*entities.Paper, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !principal.Can(authz.ResourcePapers, authz.ActionAudit) {
		return nil, apperrors.ErrForbidden
	}

	paper, err := s.paperRepo.Audit(ctx, id, s.auditCommand(principal, payload.Status, payload.Comment))
	if err != nil {
		return nil, err
	}
	s.Record(ctx, events.ActionAudit, events.ResourcePaper, &id,
		fmt.Sprintf("Статья «%s» проверена: %s", paper.Title, payload.Status))
	s.Publish(ctx, events.PaperAuditedEvent{PaperIDs: []uint64{id}, Status: payload.Status, Comment: payload.Comment})
	s.logger.Info("Статья проверена",
		zap.Uint64("paperID", id), zap.Uint64("auditorID", principal.ID), zap.String("status", payload.Status))
	return paper, nil
}

// BatchAudit - всё или ничего в одной транзакции.
func (s *PaperService) BatchAudit(ctx context.Context, payload dto.BatchAuditDTO) (int64, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return 0, err
	}
	if !principal.Can(authz.ResourcePapers, authz.ActionAudit) {
		return 0, apperrors.ErrForbidden
	}

	ids := uniqueIDs(payload.IDs)
	cmd := s.auditCommand(principal, payload.Status, payload.Comment)

	var affected int64
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		n, err := s.paperRepo.BatchAuditInTx(ctx, tx, ids, cmd)
		affected = n
		return err
	})
	if err != nil {
		s.logger.Warn("Пакетная проверка отменена", zap.Int("count", len(ids)), zap.Error(err))
		return 0, err
	}

	s.Record(ctx, events.ActionAudit, events.ResourcePaper, nil,
		fmt.Sprintf("Пакетная проверка %d статей: %s", affected, payload.Status))
	s.Publish(ctx, events.PaperAuditedEvent{PaperIDs: ids, Status: payload.Status, Comment: payload.Comment})
	return affected, nil
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// DeletePaper: сначала видимость, затем статус, затем право на удаление.
func (s *PaperService) DeletePaper(ctx context.Context, id uint64) error {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return err
	}
	paper, err := s.paperRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !authz.CanAccessInstance(principal, paper.UserID, paper.DepartmentID) {
		return apperrors.ErrForbidden
	}
	if !paper.IsDeletable() {
		return apperrors.NewInvalidStateError("Одобренную статью нельзя удалить")
	}
	if !authz.CanDo(authz.PapersDelete, authz.Context{Actor: principal, Target: paper}) {
		return apperrors.ErrForbidden
	}

	filePath, err := s.paperRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if filePath != nil {
		s.removeFile(*filePath)
	}

	s.Record(ctx, events.ActionDelete, events.ResourcePaper, &id, fmt.Sprintf("Удалена статья «%s»", paper.Title))
	return nil
}

func (s *PaperService) removeFile(path string) {
	go func() {
		if err := s.fileStorage.Delete(path); err != nil {
			s.logger.Warn("Не удалось удалить файл статьи", zap.String("path", path), zap.Error(err))
		}
	}()
}

func (s *PaperService) UploadFile(ctx context.Context, id uint64, fileHeader *multipart.FileHeader) (*entities.Paper, error) {
	_, paper, err := s.load(ctx, id, authz.PapersUpdate)
	if err != nil {
		return nil, err
	}
	if !paper.IsEditable() {
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("К статье в статусе %s нельзя прикрепить файл", paper.Status))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть загруженный файл: %w", err)
	}
	defer src.Close()

	if err := utils.ValidateFile(fileHeader, src, config.PaperUploadContext); err != nil {
		return nil, err
	}

	rules := config.UploadContexts[config.PaperUploadContext]
	path, size, err := s.fileStorage.Save(src, fileHeader.Filename, rules.PathPrefix)
	if err != nil {
		return nil, fmt.Errorf("не удалось сохранить файл: %w", err)
	}

	previous, err := s.paperRepo.AttachFile(ctx, id, path, fileHeader.Filename, size)
	if err != nil {
		s.removeFile(path)
		return nil, err
	}
	if previous != nil && *previous != path {
		s.removeFile(*previous)
	}

	s.Record(ctx, events.ActionUpload, events.ResourcePaper, &id, fmt.Sprintf("Загружен файл %s", fileHeader.Filename))
	return s.paperRepo.FindByID(ctx, id)
}

// OpenFile - вызывающий закрывает файл.
func (s *PaperService) OpenFile(ctx context.Context, id uint64) (*entities.Paper, *os.File, error) {
	_, paper, err := s.load(ctx, id, authz.PapersRead)
	if err != nil {
		return nil, nil, err
	}
	if paper.FilePath == nil || *paper.FilePath == "" {
		return nil, nil, apperrors.NewNotFoundError("У статьи нет загруженного файла")
	}
	file, err := s.fileStorage.Open(*paper.FilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, apperrors.NewNotFoundError("Файл статьи не найден")
		}
		return nil, nil, err
	}
	return paper, file, nil
}

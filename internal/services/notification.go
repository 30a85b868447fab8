package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"paper-system/internal/authz"
	"paper-system/internal/dto"
	"paper-system/internal/entities"
	"paper-system/internal/events"
	"paper-system/internal/repositories"
	apperrors "paper-system/pkg/errors"
	"paper-system/pkg/types"
	"paper-system/pkg/utils"
)

type NotificationServiceInterface interface {
	GetNotifications(ctx context.Context, filter types.Filter) ([]entities.Notification, uint64, error)
	FindNotification(ctx context.Context, id uint64) (*entities.Notification, error)
	CreateNotification(ctx context.Context, payload dto.CreateNotificationDTO) (*entities.Notification, error)
	UpdateNotification(ctx context.Context, id uint64, payload dto.UpdateNotificationDTO) (*entities.Notification, error)
	DeleteNotification(ctx context.Context, id uint64) error
	SetPublished(ctx context.Context, id uint64, published bool) (*entities.Notification, error)
	MarkRead(ctx context.Context, id uint64) error
	MarkAllRead(ctx context.Context) (int64, error)
	UnreadCount(ctx context.Context) (uint64, error)
	Stats(ctx context.Context) (*entities.NotificationStats, error)
}

type NotificationService struct {
	*BaseService
	repo   repositories.NotificationRepositoryInterface
	logger *zap.Logger
}

func NewNotificationService(base *BaseService, repo repositories.NotificationRepositoryInterface, logger *zap.Logger) NotificationServiceInterface {
	return &NotificationService{BaseService: base, repo: repo, logger: logger}
}

// seesDrafts - черновики в списке видят только admin и secretary.
func seesDrafts(p *authz.Principal) bool {
	return p.IsAdmin() || p.Role == authz.RoleSecretary
}

func (s *NotificationService) GetNotifications(ctx context.Context, filter types.Filter) ([]entities.Notification, uint64, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.GetNotifications(ctx, principal.ID, !seesDrafts(principal), filter)
}

// load - недоступное уведомление выглядит как отсутствующее.
func (s *NotificationService) load(ctx context.Context, id uint64, permission string) (*authz.Principal, *entities.Notification, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return nil, nil, err
	}
	n, err := s.repo.FindByID(ctx, id, principal.ID)
	if err != nil {
		return nil, nil, err
	}
	if !authz.CanDo(permission, authz.Context{Actor: principal, Target: n}) {
		if permission == authz.NotificationsRead {
			return nil, nil, apperrors.NewNotFoundError("Уведомление не найдено")
		}
		return nil, nil, apperrors.ErrForbidden
	}
	return principal, n, nil
}

// FindNotification отмечает опубликованное уведомление прочитанным.
func (s *NotificationService) FindNotification(ctx context.Context, id uint64) (*entities.Notification, error) {
	principal, n, err := s.load(ctx, id, authz.NotificationsRead)
	if err != nil {
		return nil, err
	}
	if n.IsPublished() && !n.IsRead {
		marked, err := s.repo.MarkRead(ctx, id, principal.ID)
		if err != nil {
			s.logger.Warn("Не удалось отметить уведомление прочитанным", zap.Uint64("id", id), zap.Error(err))
		} else {
			n.IsRead = true
			if marked {
				n.ReadCount++
			}
		}
	}
	return n, nil
}

func (s *NotificationService) CreateNotification(ctx context.Context, payload dto.CreateNotificationDTO) (*entities.Notification, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	status := payload.Status
	if status == "" {
		status = entities.NotificationStatusDraft
	}
	n, err := s.repo.Create(ctx, &entities.Notification{
		Title:    payload.Title,
		Content:  payload.Content,
		Type:     payload.Type,
		Status:   status,
		AuthorID: principal.ID,
	})
	if err != nil {
		return nil, err
	}
	s.Record(ctx, events.ActionCreate, events.ResourceNotification, &n.ID, fmt.Sprintf("Создано уведомление «%s»", n.Title))
	if n.IsPublished() {
		s.announce(ctx, n)
	}
	return n, nil
}

func (s *NotificationService) UpdateNotification(ctx context.Context, id uint64, payload dto.UpdateNotificationDTO) (*entities.Notification, error) {
	principal, _, err := s.load(ctx, id, authz.NotificationsUpdate)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, repositories.NotificationUpdate{
		Title:   payload.Title,
		Content: payload.Content,
		Type:    payload.Type,
	}); err != nil {
		return nil, err
	}
	s.Record(ctx, events.ActionUpdate, events.ResourceNotification, &id, "Изменено уведомление")
	return s.repo.FindByID(ctx, id, principal.ID)
}

func (s *NotificationService) DeleteNotification(ctx context.Context, id uint64) error {
	if _, _, err := s.load(ctx, id, authz.NotificationsDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.Record(ctx, events.ActionDelete, events.ResourceNotification, &id, "Удалено уведомление")
	return nil
}

func (s *NotificationService) SetPublished(ctx context.Context, id uint64, published bool) (*entities.Notification, error) {
	principal, _, err := s.load(ctx, id, authz.NotificationsUpdate)
	if err != nil {
		return nil, err
	}
	status := entities.NotificationStatusDraft
	description := "Уведомление снято с публикации"
	if published {
		status = entities.NotificationStatusPublished
		description = "Уведомление опубликовано"
	}
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.Record(ctx, events.ActionPublish, events.ResourceNotification, &id, description)
	n, err := s.repo.FindByID(ctx, id, principal.ID)
	if err != nil {
		return nil, err
	}
	if published {
		s.announce(ctx, n)
	}
	return n, nil
}

func (s *NotificationService) announce(ctx context.Context, n *entities.Notification) {
	s.Publish(ctx, events.NotificationPublishedEvent{NotificationID: n.ID, Title: n.Title, Type: n.Type})
}

func (s *NotificationService) MarkRead(ctx context.Context, id uint64) error {
	principal, n, err := s.load(ctx, id, authz.NotificationsRead)
	if err != nil {
		return err
	}
	if !n.IsPublished() {
		return apperrors.NewInvalidStateError("Черновик нельзя отметить прочитанным")
	}
	_, err = s.repo.MarkRead(ctx, id, principal.ID)
	return err
}

func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return 0, err
	}
	return s.repo.MarkAllRead(ctx, principal.ID)
}

func (s *NotificationService) UnreadCount(ctx context.Context) (uint64, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return 0, err
	}
	return s.repo.UnreadCount(ctx, principal.ID)
}

// Stats - admin видит всё, secretary только свои уведомления.
func (s *NotificationService) Stats(ctx context.Context) (*entities.NotificationStats, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	switch principal.Role {
	case authz.RoleAdmin:
		return s.repo.Stats(ctx, nil)
	case authz.RoleSecretary:
		return s.repo.Stats(ctx, &principal.ID)
	}
	return nil, apperrors.ErrForbidden
}

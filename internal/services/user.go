package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

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

type UserServiceInterface interface {
	GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error)
	FindUser(ctx context.Context, id uint64) (*entities.User, error)
	CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*entities.User, error)
	UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*entities.User, error)
	DeleteUser(ctx context.Context, id uint64) error
	BatchUpdateStatus(ctx context.Context, payload dto.BatchUserStatusDTO) (int64, error)
}

type UserService struct {
	*BaseService
	userRepo       repositories.UserRepositoryInterface
	departmentRepo repositories.DepartmentRepositoryInterface
	logger         *zap.Logger
}

func NewUserService(
	base *BaseService,
	userRepo repositories.UserRepositoryInterface,
	departmentRepo repositories.DepartmentRepositoryInterface,
	logger *zap.Logger,
) UserServiceInterface {
	return &UserService{
		BaseService:    base,
		userRepo:       userRepo,
		departmentRepo: departmentRepo,
		logger:         logger,
	}
}

func (s *UserService) GetUsers(ctx context.Context, filter types.Filter) ([]entities.User, uint64, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return nil, 0, err
	}
	return s.userRepo.GetUsers(ctx, authz.ScopeFor(principal), filter)
}

func (s *UserService) FindUser(ctx context.Context, id uint64) (*entities.User, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanDo(authz.UsersRead, authz.Context{Actor: principal, Target: user}) {
		s.logger.Warn("Попытка просмотра чужого пользователя",
			zap.Uint64("actorID", principal.ID), zap.Uint64("targetID", id))
		return nil, apperrors.ErrForbidden
	}
	return user, nil
}

func (s *UserService) ensureDepartment(ctx context.Context, id uint64) error {
	if _, err := s.departmentRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationError("Департамент не найден",
				map[string]interface{}{"department_id": "Департамент не найден"})
		}
		return err
	}
	return nil
}

func (s *UserService) CreateUser(ctx context.Context, payload dto.CreateUserDTO) (*entities.User, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, payload.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.NewHttpError(http.StatusConflict, "Имя пользователя уже занято", apperrors.ErrConflict,
			map[string]interface{}{"username": "Имя пользователя уже занято"})
	}
	if payload.DepartmentID != nil {
		if err := s.ensureDepartment(ctx, *payload.DepartmentID); err != nil {
			return nil, err
		}
	}

	hash, err := utils.HashPassword(payload.Password)
	if err != nil {
		return nil, err
	}
	status := payload.Status
	if status == "" {
		status = entities.UserStatusActive
	}

	user, err := s.userRepo.Create(ctx, &entities.User{
		Username:     payload.Username,
		Password:     hash,
		Name:         payload.Name,
		Role:         payload.Role,
		DepartmentID: payload.DepartmentID,
		Email:        payload.Email,
		Phone:        payload.Phone,
		Status:       status,
	})
	if err != nil {
		return nil, err
	}

	s.Record(ctx, events.ActionCreate, events.ResourceUser, &user.ID, fmt.Sprintf("Создан пользователь %s", user.Username))
	s.logger.Info("Пользователь создан", zap.Uint64("userID", user.ID), zap.String("role", user.Role))
	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*entities.User, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	target, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanDo(authz.UsersUpdate, authz.Context{Actor: principal, Target: target}) {
		s.logger.Warn("Попытка изменить чужого пользователя",
			zap.Uint64("actorID", principal.ID), zap.Uint64("targetID", id))
		return nil, apperrors.ErrForbidden
	}
	if !principal.IsAdmin() {
		if err := selfEditableOnly(payload); err != nil {
			return nil, err
		}
	}
	if principal.ID == id && payload.Status.Valid && payload.Status.String != entities.UserStatusActive {
		return nil, apperrors.NewBadRequestError("Нельзя отключить собственную учётную запись")
	}
	if payload.DepartmentID.Valid && payload.DepartmentID.Uint64 != 0 {
		if err := s.ensureDepartment(ctx, payload.DepartmentID.Uint64); err != nil {
			return nil, err
		}
	}

	user, err := s.userRepo.Update(ctx, id, repositories.UserUpdate{
		Name:         payload.Name,
		Email:        payload.Email,
		Phone:        payload.Phone,
		Role:         payload.Role,
		Status:       payload.Status,
		DepartmentID: payload.DepartmentID,
	})
	if err != nil {
		return nil, err
	}

	s.Record(ctx, events.ActionUpdate, events.ResourceUser, &id, fmt.Sprintf("Изменён пользователь %s", user.Username))
	return user, nil
}

// selfEditableOnly - без прав admin меняются только имя и контакты.
func selfEditableOnly(payload dto.UpdateUserDTO) error {
	fields := map[string]interface{}{}
	if payload.Role.Valid {
		fields["role"] = "Роль меняет только администратор"
	}
	if payload.Status.Valid {
		fields["status"] = "Статус меняет только администратор"
	}
	if payload.DepartmentID.Valid {
		fields["department_id"] = "Департамент меняет только администратор"
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("Недопустимые поля при изменении своей учётной записи", fields)
	}
	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint64) error {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return err
	}
	if principal.ID == id {
		return apperrors.NewBadRequestError("Нельзя удалить собственную учётную запись")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.Record(ctx, events.ActionDelete, events.ResourceUser, &id, "Удалён пользователь")
	return nil
}

func (s *UserService) BatchUpdateStatus(ctx context.Context, payload dto.BatchUserStatusDTO) (int64, error) {
	principal, err := utils.PrincipalFromCtx(ctx)
	if err != nil {
		return 0, err
	}
	if payload.Status != entities.UserStatusActive {
		for _, id := range payload.IDs {
			if id == principal.ID {
				return 0, apperrors.NewBadRequestError("Нельзя отключить собственную учётную запись")
			}
		}
	}

	affected, err := s.userRepo.BatchUpdateStatus(ctx, payload.IDs, payload.Status)
	if err != nil {
		return 0, err
	}
	s.Record(ctx, events.ActionUpdate, events.ResourceUser, nil,
		fmt.Sprintf("Статус %s установлен для %d пользователей", payload.Status, affected))
	return affected, nil
}

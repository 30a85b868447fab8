package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"paper-system/internal/dto"
	"paper-system/internal/entities"
	"paper-system/internal/events"
	"paper-system/internal/repositories"
)

type DepartmentServiceInterface interface {
	GetDepartments(ctx context.Context) ([]entities.Department, error)
	FindDepartment(ctx context.Context, id uint64) (*entities.Department, error)
	CreateDepartment(ctx context.Context, payload dto.CreateDepartmentDTO) (*entities.Department, error)
	UpdateDepartment(ctx context.Context, id uint64, payload dto.UpdateDepartmentDTO) (*entities.Department, error)
	DeleteDepartment(ctx context.Context, id uint64) error
}

type DepartmentService struct {
	*BaseService
	repo   repositories.DepartmentRepositoryInterface
	logger *zap.Logger
}

func NewDepartmentService(base *BaseService, repo repositories.DepartmentRepositoryInterface, logger *zap.Logger) DepartmentServiceInterface {
	return &DepartmentService{BaseService: base, repo: repo, logger: logger}
}

func (s *DepartmentService) GetDepartments(ctx context.Context) ([]entities.Department, error) {
	return s.repo.GetDepartments(ctx)
}

func (s *DepartmentService) FindDepartment(ctx context.Context, id uint64) (*entities.Department, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *DepartmentService) CreateDepartment(ctx context.Context, payload dto.CreateDepartmentDTO) (*entities.Department, error) {
	d, err := s.repo.Create(ctx, payload.Name, payload.Description)
	if err != nil {
		return nil, err
	}
	s.Record(ctx, events.ActionCreate, events.ResourceDepartment, &d.ID, fmt.Sprintf("Создан департамент %s", d.Name))
	return d, nil
}

func (s *DepartmentService) UpdateDepartment(ctx context.Context, id uint64, payload dto.UpdateDepartmentDTO) (*entities.Department, error) {
	d, err := s.repo.Update(ctx, id, payload.Name, payload.Description)
	if err != nil {
		return nil, err
	}
	s.Record(ctx, events.ActionUpdate, events.ResourceDepartment, &id, fmt.Sprintf("Изменён департамент %s", d.Name))
	return d, nil
}

// DeleteDepartment - департамент с пользователями не удаляется (Conflict из репозитория).
func (s *DepartmentService) DeleteDepartment(ctx context.Context, id uint64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.Record(ctx, events.ActionDelete, events.ResourceDepartment, &id, "Удалён департамент")
	return nil
}

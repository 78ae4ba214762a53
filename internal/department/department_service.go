package department

import (
	"context"
	"errors"
	"net/http"

	"hris/internal/shared/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDepartmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"department not found",
		http.StatusNotFound,
	)
	ErrDepartmentInUse = apperror.New(
		apperror.CodeConflict,
		"department is still assigned to employees",
		http.StatusConflict,
	)
	ErrDepartmentNameTaken = apperror.New(
		apperror.CodeConflict,
		"department name already exists",
		http.StatusConflict,
	)
)

//go:generate mockgen -source=department_service.go -destination=mock/department_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateDepartmentRequest) (DepartmentResponse, error)
	GetAll(ctx context.Context) ([]DepartmentResponse, error)
	GetByID(ctx context.Context, id string) (DepartmentResponse, error)
	Update(ctx context.Context, id string, req UpdateDepartmentRequest) (DepartmentResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateDepartmentRequest) (DepartmentResponse, error) {
	dept := &Department{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
	}

	if err := s.repo.Create(ctx, dept); err != nil {
		if isUniqueViolation(err) {
			return DepartmentResponse{}, ErrDepartmentNameTaken
		}
		return DepartmentResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to create department", http.StatusInternalServerError)
	}

	return mapToResponse(*dept), nil
}

func (s *service) GetAll(ctx context.Context) ([]DepartmentResponse, error) {
	depts, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to list departments", http.StatusInternalServerError)
	}

	res := make([]DepartmentResponse, len(depts))
	for i, d := range depts {
		res[i] = mapToResponse(d)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (DepartmentResponse, error) {
	dept, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DepartmentResponse{}, ErrDepartmentNotFound
		}
		return DepartmentResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load department", http.StatusInternalServerError)
	}
	return mapToResponse(*dept), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateDepartmentRequest) (DepartmentResponse, error) {
	dept, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DepartmentResponse{}, ErrDepartmentNotFound
		}
		return DepartmentResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load department", http.StatusInternalServerError)
	}

	dept.Name = req.Name
	dept.Description = req.Description

	if err := s.repo.Update(ctx, dept); err != nil {
		if isUniqueViolation(err) {
			return DepartmentResponse{}, ErrDepartmentNameTaken
		}
		return DepartmentResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to update department", http.StatusInternalServerError)
	}
	return mapToResponse(*dept), nil
}

// Delete refuses while any employee still references the department.
func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDepartmentNotFound
		}
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to load department", http.StatusInternalServerError)
	}

	count, err := s.repo.CountEmployees(ctx, id)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to check department usage", http.StatusInternalServerError)
	}
	if count > 0 {
		return ErrDepartmentInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to delete department", http.StatusInternalServerError)
	}
	return nil
}

package position

import (
	"context"
	"errors"
	"net/http"

	"hris/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrPositionNotFound = apperror.New(
		apperror.CodeNotFound,
		"position not found",
		http.StatusNotFound,
	)
	ErrPositionInUse = apperror.New(
		apperror.CodeConflict,
		"position is still assigned to employees",
		http.StatusConflict,
	)
	ErrPositionNameTaken = apperror.New(
		apperror.CodeConflict,
		"position name already exists in this department",
		http.StatusConflict,
	)
)

//go:generate mockgen -source=position_service.go -destination=mock/position_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreatePositionRequest) (PositionResponse, error)
	GetAll(ctx context.Context) ([]PositionResponse, error)
	GetByID(ctx context.Context, id string) (PositionResponse, error)
	Update(ctx context.Context, id string, req UpdatePositionRequest) (PositionResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreatePositionRequest) (PositionResponse, error) {
	p := &Position{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
	}
	if req.DepartmentID != nil {
		deptID, err := uuid.Parse(*req.DepartmentID)
		if err != nil {
			return PositionResponse{}, apperror.InvalidField("Department Id")
		}
		p.DepartmentID = &deptID
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if isUniqueViolation(err) {
			return PositionResponse{}, ErrPositionNameTaken
		}
		return PositionResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to create position", http.StatusInternalServerError)
	}
	return mapToResponse(*p), nil
}

func (s *service) GetAll(ctx context.Context) ([]PositionResponse, error) {
	positions, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to list positions", http.StatusInternalServerError)
	}

	res := make([]PositionResponse, len(positions))
	for i, p := range positions {
		res[i] = mapToResponse(p)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (PositionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PositionResponse{}, ErrPositionNotFound
		}
		return PositionResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load position", http.StatusInternalServerError)
	}
	return mapToResponse(*p), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdatePositionRequest) (PositionResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PositionResponse{}, ErrPositionNotFound
		}
		return PositionResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load position", http.StatusInternalServerError)
	}

	p.Name = req.Name
	p.Description = req.Description
	p.DepartmentID = nil
	if req.DepartmentID != nil {
		deptID, parseErr := uuid.Parse(*req.DepartmentID)
		if parseErr != nil {
			return PositionResponse{}, apperror.InvalidField("Department Id")
		}
		p.DepartmentID = &deptID
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if isUniqueViolation(err) {
			return PositionResponse{}, ErrPositionNameTaken
		}
		return PositionResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to update position", http.StatusInternalServerError)
	}
	return mapToResponse(*p), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPositionNotFound
		}
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to load position", http.StatusInternalServerError)
	}

	count, err := s.repo.CountEmployees(ctx, id)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to check position usage", http.StatusInternalServerError)
	}
	if count > 0 {
		return ErrPositionInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to delete position", http.StatusInternalServerError)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

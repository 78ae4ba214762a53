package master

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"hris/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrGradeNotFound = apperror.New(
		apperror.CodeNotFound,
		"grade not found",
		http.StatusNotFound,
	)
	ErrGradeInUse = apperror.New(
		apperror.CodeConflict,
		"grade is still assigned to employees",
		http.StatusConflict,
	)
	ErrEmploymentStatusNotFound = apperror.New(
		apperror.CodeNotFound,
		"employment status not found",
		http.StatusNotFound,
	)
	ErrEmploymentStatusInUse = apperror.New(
		apperror.CodeConflict,
		"employment status is still assigned to employees",
		http.StatusConflict,
	)
	ErrMasterDataTaken = apperror.New(
		apperror.CodeConflict,
		"a record with this name or code already exists",
		http.StatusConflict,
	)
)

//go:generate mockgen -source=master_service.go -destination=mock/master_service_mock.go -package=mock
type Service interface {
	CreateGrade(ctx context.Context, req GradeRequest) (GradeResponse, error)
	GetAllGrades(ctx context.Context) ([]GradeResponse, error)
	UpdateGrade(ctx context.Context, id string, req GradeRequest) (GradeResponse, error)
	DeleteGrade(ctx context.Context, id string) error

	CreateEmploymentStatus(ctx context.Context, req EmploymentStatusRequest) (EmploymentStatusResponse, error)
	GetAllEmploymentStatuses(ctx context.Context) ([]EmploymentStatusResponse, error)
	UpdateEmploymentStatus(ctx context.Context, id string, req EmploymentStatusRequest) (EmploymentStatusResponse, error)
	DeleteEmploymentStatus(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateGrade(ctx context.Context, req GradeRequest) (GradeResponse, error) {
	g := &Grade{ID: uuid.New(), Name: req.Name, Level: req.Level}

	if err := s.repo.CreateGrade(ctx, g); err != nil {
		if isUniqueViolation(err) {
			return GradeResponse{}, ErrMasterDataTaken
		}
		return GradeResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to create grade", http.StatusInternalServerError)
	}
	return mapGrade(*g), nil
}

func (s *service) GetAllGrades(ctx context.Context) ([]GradeResponse, error) {
	grades, err := s.repo.FindAllGrades(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to list grades", http.StatusInternalServerError)
	}

	res := make([]GradeResponse, len(grades))
	for i, g := range grades {
		res[i] = mapGrade(g)
	}
	return res, nil
}

func (s *service) UpdateGrade(ctx context.Context, id string, req GradeRequest) (GradeResponse, error) {
	g, err := s.repo.FindGradeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GradeResponse{}, ErrGradeNotFound
		}
		return GradeResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load grade", http.StatusInternalServerError)
	}

	g.Name = req.Name
	g.Level = req.Level

	if err := s.repo.UpdateGrade(ctx, g); err != nil {
		if isUniqueViolation(err) {
			return GradeResponse{}, ErrMasterDataTaken
		}
		return GradeResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to update grade", http.StatusInternalServerError)
	}
	return mapGrade(*g), nil
}

func (s *service) DeleteGrade(ctx context.Context, id string) error {
	if _, err := s.repo.FindGradeByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGradeNotFound
		}
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to load grade", http.StatusInternalServerError)
	}

	count, err := s.repo.CountGradeEmployees(ctx, id)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to check grade usage", http.StatusInternalServerError)
	}
	if count > 0 {
		return ErrGradeInUse
	}

	if err := s.repo.DeleteGrade(ctx, id); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to delete grade", http.StatusInternalServerError)
	}
	return nil
}

func (s *service) CreateEmploymentStatus(ctx context.Context, req EmploymentStatusRequest) (EmploymentStatusResponse, error) {
	e := &EmploymentStatus{
		ID:   uuid.New(),
		Name: req.Name,
		Code: strings.ToUpper(strings.TrimSpace(req.Code)),
	}

	if err := s.repo.CreateEmploymentStatus(ctx, e); err != nil {
		if isUniqueViolation(err) {
			return EmploymentStatusResponse{}, ErrMasterDataTaken
		}
		return EmploymentStatusResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to create employment status", http.StatusInternalServerError)
	}
	return mapEmploymentStatus(*e), nil
}

func (s *service) GetAllEmploymentStatuses(ctx context.Context) ([]EmploymentStatusResponse, error) {
	statuses, err := s.repo.FindAllEmploymentStatuses(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to list employment statuses", http.StatusInternalServerError)
	}

	res := make([]EmploymentStatusResponse, len(statuses))
	for i, e := range statuses {
		res[i] = mapEmploymentStatus(e)
	}
	return res, nil
}

func (s *service) UpdateEmploymentStatus(ctx context.Context, id string, req EmploymentStatusRequest) (EmploymentStatusResponse, error) {
	e, err := s.repo.FindEmploymentStatusByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmploymentStatusResponse{}, ErrEmploymentStatusNotFound
		}
		return EmploymentStatusResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load employment status", http.StatusInternalServerError)
	}

	e.Name = req.Name
	e.Code = strings.ToUpper(strings.TrimSpace(req.Code))

	if err := s.repo.UpdateEmploymentStatus(ctx, e); err != nil {
		if isUniqueViolation(err) {
			return EmploymentStatusResponse{}, ErrMasterDataTaken
		}
		return EmploymentStatusResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to update employment status", http.StatusInternalServerError)
	}
	return mapEmploymentStatus(*e), nil
}

func (s *service) DeleteEmploymentStatus(ctx context.Context, id string) error {
	if _, err := s.repo.FindEmploymentStatusByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEmploymentStatusNotFound
		}
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to load employment status", http.StatusInternalServerError)
	}

	count, err := s.repo.CountEmploymentStatusEmployees(ctx, id)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to check employment status usage", http.StatusInternalServerError)
	}
	if count > 0 {
		return ErrEmploymentStatusInUse
	}

	if err := s.repo.DeleteEmploymentStatus(ctx, id); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to delete employment status", http.StatusInternalServerError)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

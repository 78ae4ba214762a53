package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	employeeerrors "hris/internal/employee/errors"
	"hris/internal/events"
	"hris/internal/messaging/kafka"
	"hris/internal/shared/apperror"
	"hris/internal/shared/contextutil"
	"hris/internal/shared/sequence"
	"hris/internal/user"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	defaultRoleName = "Employee"

	optionsCacheKey = "employees:options"
	optionsCacheTTL = time.Hour
)

// RoleDirectory is the slice of the rbac service the creation flow needs.
type RoleDirectory interface {
	FindRoleIDByName(ctx context.Context, name string) (uuid.UUID, error)
	Invalidate(ctx context.Context)
}

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	GetByUserID(ctx context.Context, userID string) (EmployeeResponse, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, id string) error
	GetOptions(ctx context.Context) ([]EmployeeOptionResponse, error)
	WarmOptionsCache(ctx context.Context) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	users  user.Repository
	seq    sequence.EmployeeNumberGenerator
	outbox kafka.OutboxRepository
	roles  RoleDirectory
	rdb    *redis.Client
	group  singleflight.Group
	nowFn  func() time.Time
	logger *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	users user.Repository,
	seq sequence.EmployeeNumberGenerator,
	outbox kafka.OutboxRepository,
	roles RoleDirectory,
	rdb *redis.Client,
) Service {
	return &service{
		db:     db,
		repo:   repo,
		users:  users,
		seq:    seq,
		outbox: outbox,
		roles:  roles,
		rdb:    rdb,
		nowFn:  time.Now,
		logger: zap.L().Named("employee.service"),
	}
}

// Create provisions the login user, the employee profile, the year-scoped
// employee number, the default role link and the lifecycle event in a single
// transaction. A lost race on the number column is retried once with a fresh
// number; the second failure surfaces as a conflict.
func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return EmployeeResponse{}, employeeerrors.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return EmployeeResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to check email", http.StatusInternalServerError)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return EmployeeResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to hash password", http.StatusInternalServerError)
	}

	var created *Employee
	for attempt := 0; ; attempt++ {
		created, err = s.createOnce(ctx, req, email, string(hash))
		if err == nil {
			break
		}
		if isEmployeeNumberCollision(err) && attempt == 0 {
			logger.Warn("employee number collision, retrying with fresh number",
				zap.String("email", email))
			continue
		}
		if isEmployeeNumberCollision(err) {
			return EmployeeResponse{}, employeeerrors.ErrEmployeeNumberTaken
		}
		if isUniqueViolation(err) {
			return EmployeeResponse{}, employeeerrors.ErrEmailTaken
		}
		if isForeignKeyViolation(err) {
			return EmployeeResponse{}, apperror.New(apperror.CodeInvalidInput, "referenced record does not exist", http.StatusBadRequest)
		}
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return EmployeeResponse{}, err
		}
		return EmployeeResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to create employee", http.StatusInternalServerError)
	}

	s.roles.Invalidate(ctx)
	s.dropOptionsCache(ctx)

	logger.Info("employee created",
		zap.String("employee_id", created.ID.String()),
		zap.String("employee_number", created.EmployeeNumber))

	full, err := s.repo.FindByID(ctx, created.ID.String())
	if err != nil {
		// Row is committed; serve the unpreloaded shape rather than fail.
		return toEmployeeResponse(*created), nil
	}
	return toEmployeeResponse(*full), nil
}

func (s *service) createOnce(ctx context.Context, req CreateEmployeeRequest, email, passwordHash string) (*Employee, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	number, err := s.seq.WithTx(tx).Next(ctx, s.nowFn())
	if err != nil {
		return nil, err
	}

	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		EmployeeCode: &number,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Password:     passwordHash,
		IsActive:     true,
	}
	if err := s.users.WithTx(tx).Create(ctx, u); err != nil {
		return nil, err
	}

	e, err := buildEmployee(req, u.ID, number)
	if err != nil {
		return nil, err
	}
	qRepo := s.repo.WithTx(tx)
	if err := qRepo.Create(ctx, e); err != nil {
		return nil, err
	}

	roleID, err := s.roles.FindRoleIDByName(ctx, defaultRoleName)
	if err != nil {
		return nil, employeeerrors.ErrDefaultRoleMissing
	}
	if err := qRepo.AssignRole(ctx, u.ID, roleID); err != nil {
		return nil, err
	}

	err = kafka.StageEvent(ctx, s.outbox, tx, kafka.OutboxEvent{
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "employee",
		AggregateID:   e.ID.String(),
		EventType:     "employee_created",
		Topic:         events.EmployeeCreatedTopic,
	}, events.EmployeeCreatedEvent{
		EventType:      "employee_created",
		RequestID:      contextutil.GetRequestID(ctx),
		EmployeeID:     e.ID.String(),
		UserID:         u.ID.String(),
		EmployeeNumber: number,
		FullName:       u.FullName,
		Email:          u.Email,
		OccurredAt:     s.nowFn().UTC(),
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return e, nil
}

func buildEmployee(req CreateEmployeeRequest, userID uuid.UUID, number string) (*Employee, error) {
	joinDate, err := time.Parse(dateLayout, req.JoinDate)
	if err != nil {
		return nil, apperror.InvalidField("Join Date")
	}
	birthDate, err := parseDatePtr(req.BirthDate, "Birth Date")
	if err != nil {
		return nil, err
	}

	e := &Employee{
		ID:             uuid.New(),
		UserID:         userID,
		EmployeeNumber: number,
		NIK:            req.NIK,
		Address:        req.Address,
		BirthDate:      birthDate,
		Gender:         req.Gender,
		JoinDate:       joinDate,
		IsActive:       true,
	}

	if e.DepartmentID, err = parseUUIDPtr(req.DepartmentID, "Department Id"); err != nil {
		return nil, err
	}
	if e.PositionID, err = parseUUIDPtr(req.PositionID, "Position Id"); err != nil {
		return nil, err
	}
	if e.GradeID, err = parseUUIDPtr(req.GradeID, "Grade Id"); err != nil {
		return nil, err
	}
	if e.EmploymentStatusID, err = parseUUIDPtr(req.EmploymentStatusID, "Employment Status Id"); err != nil {
		return nil, err
	}
	if e.ManagerID, err = parseUUIDPtr(req.ManagerID, "Manager Id"); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	list, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to list employees", http.StatusInternalServerError)
	}

	res := make([]EmployeeResponse, len(list))
	for i, e := range list {
		res[i] = toEmployeeResponse(e)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return EmployeeResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load employee", http.StatusInternalServerError)
	}
	return toEmployeeResponse(*e), nil
}

func (s *service) GetByUserID(ctx context.Context, userID string) (EmployeeResponse, error) {
	e, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return EmployeeResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load employee", http.StatusInternalServerError)
	}
	return toEmployeeResponse(*e), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return EmployeeResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load employee", http.StatusInternalServerError)
	}

	if err := applyProfileUpdate(e, req); err != nil {
		return EmployeeResponse{}, err
	}

	if err := s.repo.Update(ctx, e); err != nil {
		if isForeignKeyViolation(err) {
			return EmployeeResponse{}, apperror.New(apperror.CodeInvalidInput, "referenced record does not exist", http.StatusBadRequest)
		}
		return EmployeeResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to update employee", http.StatusInternalServerError)
	}

	s.dropOptionsCache(ctx)

	full, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return toEmployeeResponse(*e), nil
	}
	return toEmployeeResponse(*full), nil
}

func applyProfileUpdate(e *Employee, req UpdateEmployeeRequest) error {
	birthDate, err := parseDatePtr(req.BirthDate, "Birth Date")
	if err != nil {
		return err
	}
	resignDate, err := parseDatePtr(req.ResignDate, "Resign Date")
	if err != nil {
		return err
	}

	e.NIK = req.NIK
	e.Gender = req.Gender
	e.BirthDate = birthDate
	e.Address = req.Address
	e.ResignDate = resignDate

	if e.DepartmentID, err = parseUUIDPtr(req.DepartmentID, "Department Id"); err != nil {
		return err
	}
	if e.PositionID, err = parseUUIDPtr(req.PositionID, "Position Id"); err != nil {
		return err
	}
	if e.GradeID, err = parseUUIDPtr(req.GradeID, "Grade Id"); err != nil {
		return err
	}
	if e.EmploymentStatusID, err = parseUUIDPtr(req.EmploymentStatusID, "Employment Status Id"); err != nil {
		return err
	}
	if e.ManagerID, err = parseUUIDPtr(req.ManagerID, "Manager Id"); err != nil {
		return err
	}
	if req.IsActive != nil {
		e.IsActive = *req.IsActive
	}

	// Preloaded refs may no longer match the new ids.
	e.Department, e.Position, e.Grade, e.EmploymentStatus, e.Manager = nil, nil, nil, nil, nil

	return nil
}

// Delete removes the profile and soft-deletes the login user in one
// transaction so a half-deleted employee can never log in.
func (s *service) Delete(ctx context.Context, id string) error {
	logger := contextutil.GetLogger(ctx, s.logger)

	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return employeeerrors.ErrEmployeeNotFound
		}
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to load employee", http.StatusInternalServerError)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to start transaction", http.StatusInternalServerError)
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Delete(ctx, id); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to delete employee", http.StatusInternalServerError)
	}
	if err := s.users.WithTx(tx).Delete(ctx, e.UserID.String()); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to delete user", http.StatusInternalServerError)
	}
	if err := tx.Commit(); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to commit", http.StatusInternalServerError)
	}

	s.roles.Invalidate(ctx)
	s.dropOptionsCache(ctx)

	logger.Info("employee deleted", zap.String("employee_id", id))
	return nil
}

func (s *service) GetOptions(ctx context.Context) ([]EmployeeOptionResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)

	if cached, err := s.rdb.Get(ctx, optionsCacheKey).Bytes(); err == nil {
		var res []EmployeeOptionResponse
		if decodeErr := json.Unmarshal(cached, &res); decodeErr != nil {
			logger.Warn("ignoring undecodable options cache entry", zap.Error(decodeErr))
		} else {
			return res, nil
		}
	}

	v, err, _ := s.group.Do(optionsCacheKey, func() (any, error) {
		opts, err := s.repo.FindOptions(ctx)
		if err != nil {
			return nil, err
		}

		res := make([]EmployeeOptionResponse, len(opts))
		for i, o := range opts {
			res[i] = toOptionResponse(o)
		}

		if payload, err := json.Marshal(res); err == nil {
			if err := s.rdb.Set(ctx, optionsCacheKey, payload, optionsCacheTTL).Err(); err != nil {
				logger.Warn("failed to cache employee options", zap.Error(err))
			}
		}
		return res, nil
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load employee options", http.StatusInternalServerError)
	}
	return v.([]EmployeeOptionResponse), nil
}

// WarmOptionsCache rebuilds the cached options payload from scratch.
func (s *service) WarmOptionsCache(ctx context.Context) error {
	s.dropOptionsCache(ctx)
	_, err := s.GetOptions(ctx)
	return err
}

func (s *service) dropOptionsCache(ctx context.Context) {
	if err := s.rdb.Del(ctx, optionsCacheKey).Err(); err != nil {
		contextutil.GetLogger(ctx, s.logger).
			Warn("failed to drop employee options cache", zap.Error(err))
	}
}

func parseUUIDPtr(v *string, field string) (*uuid.UUID, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*v)
	if err != nil {
		return nil, apperror.InvalidField(field)
	}
	return &id, nil
}

func parseDatePtr(v *string, field string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, *v)
	if err != nil {
		return nil, apperror.InvalidField(field)
	}
	return &d, nil
}

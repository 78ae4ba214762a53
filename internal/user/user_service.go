package user

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"hris/internal/shared/apperror"
	"hris/internal/shared/contextutil"
	usererrors "hris/internal/user/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	GetAll(ctx context.Context) ([]UserResponse, error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	Update(ctx context.Context, id string, req UpdateUserRequest) (UserResponse, error)
	Delete(ctx context.Context, id string) error
	ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error
	ResetPassword(ctx context.Context, userID string, req ResetPasswordRequest) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository) Service {
	return &service{
		repo:   repo,
		logger: zap.L().Named("user.service"),
	}
}

func (s *service) GetAll(ctx context.Context) ([]UserResponse, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to list users", http.StatusInternalServerError)
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapToResponse(u)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (UserResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, usererrors.ErrUserNotFound
		}
		return UserResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load user", http.StatusInternalServerError)
	}
	return mapToResponse(*u), nil
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (UserResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return UserResponse{}, usererrors.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return UserResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to create user", http.StatusInternalServerError)
	}

	if req.EmployeeCode != nil {
		if _, err := s.repo.FindByEmployeeCode(ctx, *req.EmployeeCode); err == nil {
			return UserResponse{}, usererrors.ErrEmployeeCodeTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to create user", http.StatusInternalServerError)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error("failed to hash password", zap.Error(err))
		return UserResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to create user", http.StatusInternalServerError)
	}

	u := &User{
		ID:           uuid.New(),
		Email:        email,
		EmployeeCode: req.EmployeeCode,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Password:     string(hashed),
		IsActive:     true,
		IsStaff:      req.IsStaff,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		l.Error("failed to create user", zap.Error(err))
		return UserResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to create user", http.StatusInternalServerError)
	}

	l.Info("user created", zap.String("user_id", u.ID.String()), zap.String("email", u.Email))
	return mapToResponse(*u), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateUserRequest) (UserResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, usererrors.ErrUserNotFound
		}
		return UserResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load user", http.StatusInternalServerError)
	}

	u.FullName = req.FullName
	u.Phone = req.Phone
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}
	if req.IsStaff != nil {
		u.IsStaff = *req.IsStaff
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return UserResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to update user", http.StatusInternalServerError)
	}
	return mapToResponse(*u), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	l := contextutil.GetLogger(ctx, s.logger)

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usererrors.ErrUserNotFound
		}
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to load user", http.StatusInternalServerError)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		l.Error("failed to delete user", zap.Error(err))
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to delete user", http.StatusInternalServerError)
	}

	l.Info("user deleted", zap.String("user_id", id))
	return nil
}

func (s *service) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usererrors.ErrUserNotFound
		}
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to load user", http.StatusInternalServerError)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.CurrentPassword)); err != nil {
		return usererrors.ErrInvalidCurrentPassword
	}

	return s.setPassword(ctx, u, req.NewPassword)
}

func (s *service) ResetPassword(ctx context.Context, userID string, req ResetPasswordRequest) error {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usererrors.ErrUserNotFound
		}
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to load user", http.StatusInternalServerError)
	}

	return s.setPassword(ctx, u, req.NewPassword)
}

func (s *service) setPassword(ctx context.Context, u *User, plain string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to update password", http.StatusInternalServerError)
	}

	u.Password = string(hashed)
	if err := s.repo.Update(ctx, u); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to update password", http.StatusInternalServerError)
	}

	contextutil.GetLogger(ctx, s.logger).Info("password updated", zap.String("user_id", u.ID.String()))
	return nil
}

package auth

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	autherrors "hris/internal/auth/errors"
	"hris/internal/rbac"
	"hris/internal/shared/contextutil"
	"hris/internal/user"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 30 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, identifier, password string) (accessToken, refreshToken string, resp AuthResponse, err error)
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, resp AuthResponse, err error)
	GetMe(ctx context.Context, userID string) (*MeResponse, error)
}

// PermissionSource is the slice of the rbac service /auth/me needs.
type PermissionSource interface {
	RolesForUser(ctx context.Context, userID string) ([]rbac.RoleResponse, error)
	EffectivePermissions(ctx context.Context, userID string) ([]string, error)
}

type service struct {
	users  user.Repository
	rbac   PermissionSource
	logger *zap.Logger
}

func NewService(users user.Repository, rbacService PermissionSource) Service {
	return &service{
		users:  users,
		rbac:   rbacService,
		logger: zap.L().Named("auth.service"),
	}
}

func (s *service) Login(ctx context.Context, identifier, password string) (string, string, AuthResponse, error) {
	l := contextutil.GetLogger(ctx, s.logger)

	u, err := s.findByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		// Identical failure for unknown identifier and wrong password.
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if !u.IsActive {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		l.Warn("login rejected", zap.String("subject_id", u.ID.String()))
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	accessToken, err := s.generateToken(u.ID.String(), accessTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	refreshToken, err := s.generateToken(u.ID.String(), refreshTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	l.Info("login succeeded", zap.String("subject_id", u.ID.String()))
	return accessToken, refreshToken, mapToAuthResponse(u), nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, string, AuthResponse, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}

	u, err := s.users.FindByID(ctx, userID)
	if err != nil || !u.IsActive {
		return "", "", AuthResponse{}, autherrors.ErrUserNotFound
	}

	newAccess, err := s.generateToken(u.ID.String(), accessTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	newRefresh, err := s.generateToken(u.ID.String(), refreshTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return newAccess, newRefresh, mapToAuthResponse(u), nil
}

func (s *service) GetMe(ctx context.Context, userID string) (*MeResponse, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, autherrors.ErrUserNotFound
		}
		return nil, err
	}

	roles, err := s.rbac.RolesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	perms, err := s.rbac.EffectivePermissions(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &MeResponse{
		AuthResponse:       mapToAuthResponse(u),
		Roles:              roles,
		Permissions:        perms,
		PermissionsGrouped: groupByModule(perms),
	}, nil
}

// findByIdentifier treats anything with an "@" as an email, otherwise as an
// employee number.
func (s *service) findByIdentifier(ctx context.Context, identifier string) (*user.User, error) {
	if strings.Contains(identifier, "@") {
		return s.users.FindByEmail(ctx, identifier)
	}
	return s.users.FindByEmployeeCode(ctx, identifier)
}

func (s *service) generateToken(userID string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(expiry).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func mapToAuthResponse(u *user.User) AuthResponse {
	return AuthResponse{
		ID:           u.ID.String(),
		Email:        u.Email,
		EmployeeCode: u.EmployeeCode,
		FullName:     u.FullName,
		IsStaff:      u.IsStaff,
	}
}

func groupByModule(codes []string) map[string][]string {
	grouped := make(map[string][]string)
	for _, code := range codes {
		module, _, found := strings.Cut(code, ".")
		if !found {
			module = code
		}
		grouped[module] = append(grouped[module], code)
	}
	return grouped
}

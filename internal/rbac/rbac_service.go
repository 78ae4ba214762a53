package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	rbacerrors "hris/internal/rbac/errors"
	"hris/internal/shared/apperror"
	"hris/internal/shared/contextutil"

	"github.com/casbin/casbin/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	// cacheGenKey is bumped on every RBAC mutation. Cached permission sets
	// embed the generation, so a bump orphans every stale entry at once.
	cacheGenKey = "rbac:gen"
	cacheTTL    = 5 * time.Minute
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	// Evaluation
	EffectivePermissions(ctx context.Context, userID string) ([]string, error)
	HasPermission(ctx context.Context, userID, code string) (bool, error)
	Authorize(ctx context.Context, userID string, required ...string) error
	RolesForUser(ctx context.Context, userID string) ([]RoleResponse, error)
	FindRoleIDByName(ctx context.Context, name string) (uuid.UUID, error)
	Invalidate(ctx context.Context)

	// Role management
	ListRoles(ctx context.Context) ([]RoleResponse, error)
	GetRole(ctx context.Context, id string) (*RoleDetailResponse, error)
	CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error)
	UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (*RoleResponse, error)
	DeleteRole(ctx context.Context, id string) error

	// Permission management
	ListPermissions(ctx context.Context) ([]PermissionResponse, error)
	CreatePermission(ctx context.Context, req CreatePermissionRequest) (*PermissionResponse, error)
	UpdatePermission(ctx context.Context, id string, req UpdatePermissionRequest) (*PermissionResponse, error)
	DeletePermission(ctx context.Context, id string) error

	// Grants
	AssignPermissions(ctx context.Context, roleID string, req AssignPermissionsRequest) (*AssignPermissionsResponse, error)
	RemovePermissions(ctx context.Context, roleID string, req RemovePermissionsRequest) (*RemovePermissionsResponse, error)
	ListUsers(ctx context.Context) ([]UserSummaryResponse, error)
	GetUserRoles(ctx context.Context, userID string) (*UserRolesResponse, error)
	AssignRoles(ctx context.Context, userID string, req AssignRolesRequest) (*AssignRolesResponse, error)
	RemoveRoles(ctx context.Context, userID string, req RemoveRolesRequest) (*RemoveRolesResponse, error)
}

type service struct {
	repo     Repository
	enforcer *casbin.Enforcer
	redis    *redis.Client
	group    singleflight.Group
	mu       sync.Mutex
	logger   *zap.Logger
}

func NewService(repo Repository, enforcer *casbin.Enforcer, redisClient *redis.Client) Service {
	return &service{
		repo:     repo,
		enforcer: enforcer,
		redis:    redisClient,
		logger:   zap.L().Named("rbac.service"),
	}
}

// =========================================
// Evaluation
// =========================================

func (s *service) EffectivePermissions(ctx context.Context, userID string) ([]string, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	key, err := s.cacheKey(ctx, userID)
	if err == nil {
		raw, getErr := s.redis.Get(ctx, key).Result()
		if getErr == nil {
			var codes []string
			if json.Unmarshal([]byte(raw), &codes) == nil {
				return codes, nil
			}
		}
	} else {
		log.Warn("rbac cache unavailable, evaluating directly", zap.Error(err))
		key = "rbac:perms:nocache:" + userID
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		codes, computeErr := s.computePermissions(ctx, userID)
		if computeErr != nil {
			return nil, computeErr
		}
		if raw, marshalErr := json.Marshal(codes); marshalErr == nil {
			if setErr := s.redis.Set(ctx, key, raw, cacheTTL).Err(); setErr != nil {
				log.Warn("failed to cache permission set", zap.Error(setErr))
			}
		}
		return codes, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func (s *service) HasPermission(ctx context.Context, userID, code string) (bool, error) {
	codes, err := s.EffectivePermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, c := range codes {
		if c == code {
			return true, nil
		}
	}
	return false, nil
}

// Authorize checks that the user is active and holds ALL required permission
// codes. An empty requirement list means authenticated is enough.
func (s *service) Authorize(ctx context.Context, userID string, required ...string) error {
	log := contextutil.GetLogger(ctx, s.logger)

	if userID == "" {
		return apperror.ErrUnauthorized
	}

	active, err := s.repo.UserIsActive(ctx, userID)
	if err != nil {
		log.Error("failed to check user status", zap.Error(err))
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to authorize request", http.StatusInternalServerError)
	}
	if !active {
		return apperror.ErrUnauthorized
	}

	if len(required) == 0 {
		return nil
	}

	codes, err := s.EffectivePermissions(ctx, userID)
	if err != nil {
		log.Error("failed to evaluate permissions", zap.Error(err))
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to authorize request", http.StatusInternalServerError)
	}

	held := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		held[c] = struct{}{}
	}
	for _, want := range required {
		if _, ok := held[want]; !ok {
			log.Warn("authorization denied",
				zap.String("subject_id", userID),
				zap.String("missing_permission", want),
			)
			return apperror.ErrForbidden
		}
	}
	return nil
}

func (s *service) RolesForUser(ctx context.Context, userID string) ([]RoleResponse, error) {
	roles, err := s.repo.ActiveRolesForUser(ctx, userID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load roles", http.StatusInternalServerError)
	}
	out := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRoleResponse(r))
	}
	return out, nil
}

func (s *service) FindRoleIDByName(ctx context.Context, name string) (uuid.UUID, error) {
	role, err := s.repo.FindRoleByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, rbacerrors.ErrRoleNotFound
		}
		return uuid.Nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load role", http.StatusInternalServerError)
	}
	return role.ID, nil
}

// Invalidate bumps the cache generation. Stale entries expire via TTL, so a
// redis failure here degrades to eventual consistency rather than an error.
func (s *service) Invalidate(ctx context.Context) {
	if err := s.redis.Incr(ctx, cacheGenKey).Err(); err != nil {
		contextutil.GetLogger(ctx, s.logger).Warn("failed to bump rbac cache generation", zap.Error(err))
	}
}

func (s *service) cacheKey(ctx context.Context, userID string) (string, error) {
	gen, err := s.redis.Get(ctx, cacheGenKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			gen = 0
		} else {
			return "", err
		}
	}
	return fmt.Sprintf("rbac:perms:%d:%s", gen, userID), nil
}

func (s *service) computePermissions(ctx context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.reloadPolicyUnlocked(ctx); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load authorization policy", http.StatusInternalServerError)
	}

	perms, err := s.enforcer.GetImplicitPermissionsForUser(userID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to evaluate permissions", http.StatusInternalServerError)
	}

	seen := make(map[string]struct{}, len(perms))
	codes := make([]string, 0, len(perms))
	for _, p := range perms {
		// p = [roleID, module, action]
		if len(p) != 3 {
			continue
		}
		code := PermissionCode(p[1], p[2])
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

func (s *service) reloadPolicyUnlocked(ctx context.Context) error {
	s.enforcer.ClearPolicy()

	userRoles, err := s.repo.ActiveUserRoles(ctx)
	if err != nil {
		return err
	}
	for _, ur := range userRoles {
		if _, err := s.enforcer.AddGroupingPolicy(ur.UserID, ur.RoleID); err != nil {
			return err
		}
	}

	rolePerms, err := s.repo.ActiveRolePermissions(ctx)
	if err != nil {
		return err
	}
	for _, rp := range rolePerms {
		if _, err := s.enforcer.AddPolicy(rp.RoleID, rp.Module, rp.Action); err != nil {
			return err
		}
	}

	contextutil.GetLogger(ctx, s.logger).Debug("rbac policy reloaded",
		zap.Int("user_roles", len(userRoles)),
		zap.Int("role_permissions", len(rolePerms)),
	)
	return nil
}

// =========================================
// Role management
// =========================================

func (s *service) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to list roles", http.StatusInternalServerError)
	}
	out := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRoleResponse(r))
	}
	return out, nil
}

func (s *service) GetRole(ctx context.Context, id string) (*RoleDetailResponse, error) {
	role, err := s.repo.FindRoleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rbacerrors.ErrRoleNotFound
		}
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load role", http.StatusInternalServerError)
	}

	perms, err := s.repo.PermissionsByRoleID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load role permissions", http.StatusInternalServerError)
	}

	detail := RoleDetailResponse{
		RoleResponse: toRoleResponse(*role),
		Permissions:  make([]PermissionResponse, 0, len(perms)),
	}
	for _, p := range perms {
		detail.Permissions = append(detail.Permissions, toPermissionResponse(p))
	}
	return &detail, nil
}

func (s *service) CreateRole(ctx context.Context, req CreateRoleRequest) (*RoleResponse, error) {
	role := NewRole(req.Name, req.Code, req.Description)

	if _, err := s.repo.FindRoleByName(ctx, role.Name); err == nil {
		return nil, rbacerrors.ErrRoleNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to create role", http.StatusInternalServerError)
	}

	if err := s.repo.CreateRole(ctx, role); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to create role", http.StatusInternalServerError)
	}

	s.Invalidate(ctx)
	contextutil.GetLogger(ctx, s.logger).Info("role created",
		zap.String("role_id", role.ID.String()),
		zap.String("code", role.Code),
	)

	resp := toRoleResponse(*role)
	return &resp, nil
}

func (s *service) UpdateRole(ctx context.Context, id string, req UpdateRoleRequest) (*RoleResponse, error) {
	role, err := s.repo.FindRoleByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rbacerrors.ErrRoleNotFound
		}
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load role", http.StatusInternalServerError)
	}

	// The code is a stable identifier referenced from route policies, so a
	// rename never regenerates it.
	role.Name = req.Name
	role.Description = req.Description
	if req.IsActive != nil {
		role.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateRole(ctx, role); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to update role", http.StatusInternalServerError)
	}

	s.Invalidate(ctx)
	resp := toRoleResponse(*role)
	return &resp, nil
}

func (s *service) DeleteRole(ctx context.Context, id string) error {
	if _, err := s.repo.FindRoleByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rbacerrors.ErrRoleNotFound
		}
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to load role", http.StatusInternalServerError)
	}

	if err := s.repo.DeleteRole(ctx, id); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to delete role", http.StatusInternalServerError)
	}

	s.Invalidate(ctx)
	contextutil.GetLogger(ctx, s.logger).Info("role deleted", zap.String("role_id", id))
	return nil
}

// =========================================
// Permission management
// =========================================

func (s *service) ListPermissions(ctx context.Context) ([]PermissionResponse, error) {
	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to list permissions", http.StatusInternalServerError)
	}
	out := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, toPermissionResponse(p))
	}
	return out, nil
}

func (s *service) CreatePermission(ctx context.Context, req CreatePermissionRequest) (*PermissionResponse, error) {
	perm := NewPermission(req.Module, req.Action, req.Name, req.Description)

	if err := s.repo.CreatePermission(ctx, perm); err != nil {
		if isUniqueViolation(err) {
			return nil, rbacerrors.ErrPermissionTaken
		}
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to create permission", http.StatusInternalServerError)
	}

	s.Invalidate(ctx)
	contextutil.GetLogger(ctx, s.logger).Info("permission created",
		zap.String("permission_id", perm.ID.String()),
		zap.String("code", perm.Code),
	)

	resp := toPermissionResponse(*perm)
	return &resp, nil
}

func (s *service) UpdatePermission(ctx context.Context, id string, req UpdatePermissionRequest) (*PermissionResponse, error) {
	perm, err := s.repo.FindPermissionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rbacerrors.ErrPermissionNotFound
		}
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load permission", http.StatusInternalServerError)
	}

	// module/action (and thus code) are immutable; only the label toggles.
	perm.Name = req.Name
	perm.Description = req.Description
	if req.IsActive != nil {
		perm.IsActive = *req.IsActive
	}

	if err := s.repo.UpdatePermission(ctx, perm); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to update permission", http.StatusInternalServerError)
	}

	s.Invalidate(ctx)
	resp := toPermissionResponse(*perm)
	return &resp, nil
}

func (s *service) DeletePermission(ctx context.Context, id string) error {
	if _, err := s.repo.FindPermissionByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rbacerrors.ErrPermissionNotFound
		}
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to load permission", http.StatusInternalServerError)
	}

	if err := s.repo.DeletePermission(ctx, id); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to delete permission", http.StatusInternalServerError)
	}

	s.Invalidate(ctx)
	contextutil.GetLogger(ctx, s.logger).Info("permission deleted", zap.String("permission_id", id))
	return nil
}

// =========================================
// Grants
// =========================================

func (s *service) AssignPermissions(ctx context.Context, roleID string, req AssignPermissionsRequest) (*AssignPermissionsResponse, error) {
	role, err := s.repo.FindRoleByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rbacerrors.ErrRoleNotFound
		}
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load role", http.StatusInternalServerError)
	}

	perms, err := s.repo.FindPermissionsByIDs(ctx, req.PermissionIDs)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load permissions", http.StatusInternalServerError)
	}
	if len(perms) != len(uniqueStrings(req.PermissionIDs)) {
		return nil, rbacerrors.ErrUnknownPermissionIDs
	}

	resp := AssignPermissionsResponse{}
	for _, p := range perms {
		created, linkErr := s.repo.LinkRolePermission(ctx, role.ID, p.ID)
		if linkErr != nil {
			return nil, apperror.Wrap(linkErr, apperror.CodeInternalError, "failed to assign permission", http.StatusInternalServerError)
		}
		if created {
			resp.Created++
		} else {
			resp.Skipped++
		}
	}

	s.Invalidate(ctx)
	contextutil.GetLogger(ctx, s.logger).Info("permissions assigned",
		zap.String("role_id", roleID),
		zap.Int("created", resp.Created),
		zap.Int("skipped", resp.Skipped),
	)
	return &resp, nil
}

func (s *service) RemovePermissions(ctx context.Context, roleID string, req RemovePermissionsRequest) (*RemovePermissionsResponse, error) {
	role, err := s.repo.FindRoleByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rbacerrors.ErrRoleNotFound
		}
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load role", http.StatusInternalServerError)
	}

	deleted, err := s.repo.UnlinkRolePermissions(ctx, role.ID, req.PermissionIDs)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to remove permissions", http.StatusInternalServerError)
	}

	s.Invalidate(ctx)
	return &RemovePermissionsResponse{Deleted: deleted}, nil
}

func (s *service) ListUsers(ctx context.Context) ([]UserSummaryResponse, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to list users", http.StatusInternalServerError)
	}
	out := make([]UserSummaryResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserSummaryResponse(u))
	}
	return out, nil
}

func (s *service) GetUserRoles(ctx context.Context, userID string) (*UserRolesResponse, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rbacerrors.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load user", http.StatusInternalServerError)
	}

	roles, err := s.RolesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserRolesResponse{
		UserSummaryResponse: toUserSummaryResponse(*user),
		Roles:               roles,
	}, nil
}

func (s *service) AssignRoles(ctx context.Context, userID string, req AssignRolesRequest) (*AssignRolesResponse, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rbacerrors.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load user", http.StatusInternalServerError)
	}

	roles, err := s.repo.FindRolesByIDs(ctx, req.RoleIDs)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load roles", http.StatusInternalServerError)
	}
	if len(roles) != len(uniqueStrings(req.RoleIDs)) {
		return nil, rbacerrors.ErrUnknownRoleIDs
	}

	resp := AssignRolesResponse{}
	for _, r := range roles {
		created, linkErr := s.repo.LinkUserRole(ctx, user.ID, r.ID)
		if linkErr != nil {
			return nil, apperror.Wrap(linkErr, apperror.CodeInternalError, "failed to assign role", http.StatusInternalServerError)
		}
		if created {
			resp.Created++
		} else {
			resp.Skipped++
		}
	}

	s.Invalidate(ctx)
	contextutil.GetLogger(ctx, s.logger).Info("roles assigned",
		zap.String("subject_id", userID),
		zap.Int("created", resp.Created),
		zap.Int("skipped", resp.Skipped),
	)
	return &resp, nil
}

func (s *service) RemoveRoles(ctx context.Context, userID string, req RemoveRolesRequest) (*RemoveRolesResponse, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, rbacerrors.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to load user", http.StatusInternalServerError)
	}

	deleted, err := s.repo.UnlinkUserRoles(ctx, user.ID, req.RoleIDs)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to remove roles", http.StatusInternalServerError)
	}

	s.Invalidate(ctx)
	return &RemoveRolesResponse{Deleted: deleted}, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

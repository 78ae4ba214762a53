package rbac

import (
	"context"
	"encoding/json"
	"testing"

	rbacerrors "hris/internal/rbac/errors"
	"hris/internal/rbac/infra"
	"hris/internal/shared/apperror"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// =========================================
// Fake Repository
// =========================================

type fakeRepo struct {
	userIsActiveFn          func(ctx context.Context, userID string) (bool, error)
	activeUserRolesFn       func(ctx context.Context) ([]UserRoleRow, error)
	activeRolePermissionsFn func(ctx context.Context) ([]RolePermissionRow, error)
	findRoleByIDFn          func(ctx context.Context, id string) (*Role, error)
	findPermissionsByIDsFn  func(ctx context.Context, ids []string) ([]Permission, error)
	linkRolePermissionFn    func(ctx context.Context, roleID, permissionID uuid.UUID) (bool, error)
}

func (f *fakeRepo) UserIsActive(ctx context.Context, userID string) (bool, error) {
	if f.userIsActiveFn != nil {
		return f.userIsActiveFn(ctx, userID)
	}
	return true, nil
}

func (f *fakeRepo) ActiveUserRoles(ctx context.Context) ([]UserRoleRow, error) {
	if f.activeUserRolesFn != nil {
		return f.activeUserRolesFn(ctx)
	}
	return nil, nil
}

func (f *fakeRepo) ActiveRolePermissions(ctx context.Context) ([]RolePermissionRow, error) {
	if f.activeRolePermissionsFn != nil {
		return f.activeRolePermissionsFn(ctx)
	}
	return nil, nil
}

func (f *fakeRepo) ActiveRolesForUser(ctx context.Context, userID string) ([]Role, error) {
	return nil, nil
}

func (f *fakeRepo) ActivePermissionsForUser(ctx context.Context, userID string) ([]Permission, error) {
	return nil, nil
}

func (f *fakeRepo) PermissionsByRoleID(ctx context.Context, roleID string) ([]Permission, error) {
	return nil, nil
}

func (f *fakeRepo) ListRoles(ctx context.Context) ([]Role, error) { return nil, nil }

func (f *fakeRepo) FindRoleByID(ctx context.Context, id string) (*Role, error) {
	if f.findRoleByIDFn != nil {
		return f.findRoleByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindRoleByName(ctx context.Context, name string) (*Role, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindRolesByIDs(ctx context.Context, ids []string) ([]Role, error) {
	return nil, nil
}

func (f *fakeRepo) CreateRole(ctx context.Context, role *Role) error { return nil }
func (f *fakeRepo) UpdateRole(ctx context.Context, role *Role) error { return nil }
func (f *fakeRepo) DeleteRole(ctx context.Context, id string) error  { return nil }

func (f *fakeRepo) ListPermissions(ctx context.Context) ([]Permission, error) { return nil, nil }

func (f *fakeRepo) FindPermissionByID(ctx context.Context, id string) (*Permission, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindPermissionsByIDs(ctx context.Context, ids []string) ([]Permission, error) {
	if f.findPermissionsByIDsFn != nil {
		return f.findPermissionsByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (f *fakeRepo) CreatePermission(ctx context.Context, perm *Permission) error { return nil }
func (f *fakeRepo) UpdatePermission(ctx context.Context, perm *Permission) error { return nil }
func (f *fakeRepo) DeletePermission(ctx context.Context, id string) error        { return nil }

func (f *fakeRepo) LinkRolePermission(ctx context.Context, roleID, permissionID uuid.UUID) (bool, error) {
	if f.linkRolePermissionFn != nil {
		return f.linkRolePermissionFn(ctx, roleID, permissionID)
	}
	return true, nil
}

func (f *fakeRepo) UnlinkRolePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []string) (int64, error) {
	return 0, nil
}

func (f *fakeRepo) LinkUserRole(ctx context.Context, userID, roleID uuid.UUID) (bool, error) {
	return true, nil
}

func (f *fakeRepo) UnlinkUserRoles(ctx context.Context, userID uuid.UUID, roleIDs []string) (int64, error) {
	return 0, nil
}

func (f *fakeRepo) ListUsers(ctx context.Context) ([]UserRow, error) { return nil, nil }

func (f *fakeRepo) FindUserByID(ctx context.Context, userID string) (*UserRow, error) {
	return nil, gorm.ErrRecordNotFound
}

// =========================================
// Helpers
// =========================================

func newTestService(t *testing.T, repo Repository) (Service, redismock.ClientMock) {
	t.Helper()

	enforcer, err := infra.NewEnforcer()
	assert.NoError(t, err)

	redisClient, redisMock := redismock.NewClientMock()
	return NewService(repo, enforcer, redisClient), redisMock
}

func policyRepo() *fakeRepo {
	return &fakeRepo{
		activeUserRolesFn: func(ctx context.Context) ([]UserRoleRow, error) {
			return []UserRoleRow{
				{UserID: "user-1", RoleID: "role-hr"},
			}, nil
		},
		activeRolePermissionsFn: func(ctx context.Context) ([]RolePermissionRow, error) {
			return []RolePermissionRow{
				{RoleID: "role-hr", Module: "leave", Action: "approve"},
				{RoleID: "role-hr", Module: "attendance", Action: "view_all"},
			}, nil
		},
	}
}

func expectCacheMiss(redisMock redismock.ClientMock, userID string, codes []string) {
	raw, _ := json.Marshal(codes)
	redisMock.ExpectGet(cacheGenKey).RedisNil()
	redisMock.ExpectGet("rbac:perms:0:" + userID).RedisNil()
	redisMock.ExpectSet("rbac:perms:0:"+userID, raw, cacheTTL).SetVal("OK")
}

// =========================================
// Evaluation
// =========================================

func TestEffectivePermissions_ClosureFromActiveRows(t *testing.T) {
	service, redisMock := newTestService(t, policyRepo())

	expectCacheMiss(redisMock, "user-1", []string{"attendance.view_all", "leave.approve"})

	codes, err := service.EffectivePermissions(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.Equal(t, []string{"attendance.view_all", "leave.approve"}, codes)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestEffectivePermissions_CacheHitSkipsRebuild(t *testing.T) {
	repo := policyRepo()
	repo.activeUserRolesFn = func(ctx context.Context) ([]UserRoleRow, error) {
		t.Fatal("policy rebuild must not run on cache hit")
		return nil, nil
	}
	service, redisMock := newTestService(t, repo)

	raw, _ := json.Marshal([]string{"leave.approve"})
	redisMock.ExpectGet(cacheGenKey).SetVal("7")
	redisMock.ExpectGet("rbac:perms:7:user-1").SetVal(string(raw))

	codes, err := service.EffectivePermissions(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.Equal(t, []string{"leave.approve"}, codes)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestEffectivePermissions_NoGrants(t *testing.T) {
	service, redisMock := newTestService(t, policyRepo())

	expectCacheMiss(redisMock, "user-2", []string{})

	codes, err := service.EffectivePermissions(context.Background(), "user-2")

	assert.NoError(t, err)
	assert.Empty(t, codes)
}

func TestHasPermission(t *testing.T) {
	service, redisMock := newTestService(t, policyRepo())

	expectCacheMiss(redisMock, "user-1", []string{"attendance.view_all", "leave.approve"})
	raw, _ := json.Marshal([]string{"attendance.view_all", "leave.approve"})
	redisMock.ExpectGet(cacheGenKey).RedisNil()
	redisMock.ExpectGet("rbac:perms:0:user-1").SetVal(string(raw))

	ok, err := service.HasPermission(context.Background(), "user-1", "leave.approve")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.HasPermission(context.Background(), "user-1", "employees.manage")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthorize_MissingUserIsUnauthorized(t *testing.T) {
	service, _ := newTestService(t, policyRepo())

	err := service.Authorize(context.Background(), "", "leave.approve")

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestAuthorize_InactiveUserIsUnauthorized(t *testing.T) {
	repo := policyRepo()
	repo.userIsActiveFn = func(ctx context.Context, userID string) (bool, error) {
		return false, nil
	}
	service, _ := newTestService(t, repo)

	err := service.Authorize(context.Background(), "user-1", "leave.approve")

	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestAuthorize_EmptyRequirementOnlyNeedsActiveUser(t *testing.T) {
	service, _ := newTestService(t, policyRepo())

	err := service.Authorize(context.Background(), "user-1")

	assert.NoError(t, err)
}

func TestAuthorize_RequiresAllCodes(t *testing.T) {
	service, redisMock := newTestService(t, policyRepo())

	expectCacheMiss(redisMock, "user-1", []string{"attendance.view_all", "leave.approve"})

	err := service.Authorize(context.Background(), "user-1", "leave.approve", "employees.manage")

	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestInvalidate_BumpsGeneration(t *testing.T) {
	service, redisMock := newTestService(t, policyRepo())

	redisMock.ExpectIncr(cacheGenKey).SetVal(1)

	service.Invalidate(context.Background())

	assert.NoError(t, redisMock.ExpectationsWereMet())
}

// =========================================
// Grants
// =========================================

func TestAssignPermissions_ReportsCreatedAndSkipped(t *testing.T) {
	roleID := uuid.New()
	permA := uuid.New()
	permB := uuid.New()

	repo := policyRepo()
	repo.findRoleByIDFn = func(ctx context.Context, id string) (*Role, error) {
		return &Role{ID: roleID, Name: "HR", Code: "hr", IsActive: true}, nil
	}
	repo.findPermissionsByIDsFn = func(ctx context.Context, ids []string) ([]Permission, error) {
		return []Permission{
			{ID: permA, Module: "leave", Action: "approve", Code: "leave.approve"},
			{ID: permB, Module: "leave", Action: "view_all", Code: "leave.view_all"},
		}, nil
	}
	repo.linkRolePermissionFn = func(ctx context.Context, rID, pID uuid.UUID) (bool, error) {
		assert.Equal(t, roleID, rID)
		return pID == permA, nil // permB already linked
	}

	service, redisMock := newTestService(t, repo)
	redisMock.ExpectIncr(cacheGenKey).SetVal(1)

	resp, err := service.AssignPermissions(context.Background(), roleID.String(), AssignPermissionsRequest{
		PermissionIDs: []string{permA.String(), permB.String()},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 1, resp.Skipped)
}

func TestAssignPermissions_UnknownIDsRejected(t *testing.T) {
	repo := policyRepo()
	repo.findRoleByIDFn = func(ctx context.Context, id string) (*Role, error) {
		return &Role{ID: uuid.New(), Name: "HR", Code: "hr"}, nil
	}
	repo.findPermissionsByIDsFn = func(ctx context.Context, ids []string) ([]Permission, error) {
		return nil, nil // nothing resolves
	}

	service, _ := newTestService(t, repo)

	_, err := service.AssignPermissions(context.Background(), uuid.NewString(), AssignPermissionsRequest{
		PermissionIDs: []string{uuid.NewString()},
	})

	assert.ErrorIs(t, err, rbacerrors.ErrUnknownPermissionIDs)
}

func TestAssignPermissions_RoleNotFound(t *testing.T) {
	service, _ := newTestService(t, policyRepo())

	_, err := service.AssignPermissions(context.Background(), uuid.NewString(), AssignPermissionsRequest{
		PermissionIDs: []string{uuid.NewString()},
	})

	assert.ErrorIs(t, err, rbacerrors.ErrRoleNotFound)
}

// =========================================
// Entity derivation
// =========================================

func TestNewRole_DerivesSlugCode(t *testing.T) {
	role := NewRole("HR Manager", "", nil)
	assert.Equal(t, "hr-manager", role.Code)
	assert.True(t, role.IsActive)

	explicit := NewRole("HR Manager", "people-ops", nil)
	assert.Equal(t, "people-ops", explicit.Code)
}

func TestNewPermission_DerivesCode(t *testing.T) {
	perm := NewPermission("Leave", "Approve", "Approve leave", nil)
	assert.Equal(t, "leave.approve", perm.Code)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hr-manager", Slugify("  HR  Manager "))
	assert.Equal(t, "admin2", Slugify("Admin2"))
	assert.Equal(t, "a-b-c", Slugify("a_b/c"))
}

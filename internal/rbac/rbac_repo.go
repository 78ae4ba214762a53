package rbac

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRoleRow and RolePermissionRow feed the casbin policy rebuild.
type UserRoleRow struct {
	UserID string
	RoleID string
}

type RolePermissionRow struct {
	RoleID string
	Module string
	Action string
}

// UserRow is the minimal slice of the users table the role-assignment UI needs.
type UserRow struct {
	ID           uuid.UUID
	Email        string
	EmployeeCode *string
	FullName     string
	IsActive     bool
}

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	// Policy source: only active users/roles/permissions participate.
	UserIsActive(ctx context.Context, userID string) (bool, error)
	ActiveUserRoles(ctx context.Context) ([]UserRoleRow, error)
	ActiveRolePermissions(ctx context.Context) ([]RolePermissionRow, error)

	// Views for /me and role detail.
	ActiveRolesForUser(ctx context.Context, userID string) ([]Role, error)
	ActivePermissionsForUser(ctx context.Context, userID string) ([]Permission, error)
	PermissionsByRoleID(ctx context.Context, roleID string) ([]Permission, error)

	// Role management.
	ListRoles(ctx context.Context) ([]Role, error)
	FindRoleByID(ctx context.Context, id string) (*Role, error)
	FindRoleByName(ctx context.Context, name string) (*Role, error)
	FindRolesByIDs(ctx context.Context, ids []string) ([]Role, error)
	CreateRole(ctx context.Context, role *Role) error
	UpdateRole(ctx context.Context, role *Role) error
	DeleteRole(ctx context.Context, id string) error

	// Permission management.
	ListPermissions(ctx context.Context) ([]Permission, error)
	FindPermissionByID(ctx context.Context, id string) (*Permission, error)
	FindPermissionsByIDs(ctx context.Context, ids []string) ([]Permission, error)
	CreatePermission(ctx context.Context, perm *Permission) error
	UpdatePermission(ctx context.Context, perm *Permission) error
	DeletePermission(ctx context.Context, id string) error

	// Link management. Link* reports whether a new row was created,
	// Unlink* reports how many rows were removed.
	LinkRolePermission(ctx context.Context, roleID, permissionID uuid.UUID) (bool, error)
	UnlinkRolePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []string) (int64, error)
	LinkUserRole(ctx context.Context, userID, roleID uuid.UUID) (bool, error)
	UnlinkUserRoles(ctx context.Context, userID uuid.UUID, roleIDs []string) (int64, error)

	// User views for assignment endpoints.
	ListUsers(ctx context.Context) ([]UserRow, error)
	FindUserByID(ctx context.Context, userID string) (*UserRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) UserIsActive(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("users").
		Where("id = ?", userID).
		Where("is_active = ?", true).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ActiveUserRoles(ctx context.Context) ([]UserRoleRow, error) {
	var rows []UserRoleRow
	err := r.db.WithContext(ctx).
		Table("user_roles").
		Select("user_roles.user_id, user_roles.role_id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.is_active = ?", true).
		Scan(&rows).Error
	return rows, err
}

func (r *repository) ActiveRolePermissions(ctx context.Context) ([]RolePermissionRow, error) {
	var rows []RolePermissionRow
	err := r.db.WithContext(ctx).
		Table("role_permissions").
		Select("role_permissions.role_id, permissions.module, permissions.action").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("roles.is_active = ?", true).
		Where("permissions.is_active = ?", true).
		Scan(&rows).Error
	return rows, err
}

func (r *repository) ActiveRolesForUser(ctx context.Context, userID string) ([]Role, error) {
	var roles []Role
	err := r.db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Where("roles.is_active = ?", true).
		Order("roles.name").
		Find(&roles).Error
	return roles, err
}

func (r *repository) ActivePermissionsForUser(ctx context.Context, userID string) ([]Permission, error) {
	var perms []Permission
	err := r.db.WithContext(ctx).
		Distinct("permissions.*").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Where("roles.is_active = ?", true).
		Where("permissions.is_active = ?", true).
		Order("permissions.module, permissions.action").
		Find(&perms).Error
	return perms, err
}

func (r *repository) PermissionsByRoleID(ctx context.Context, roleID string) ([]Permission, error) {
	var perms []Permission
	err := r.db.WithContext(ctx).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Where("permissions.is_active = ?", true).
		Order("permissions.module, permissions.action").
		Find(&perms).Error
	return perms, err
}

func (r *repository) ListRoles(ctx context.Context) ([]Role, error) {
	var roles []Role
	err := r.db.WithContext(ctx).Order("name").Find(&roles).Error
	return roles, err
}

func (r *repository) FindRoleByID(ctx context.Context, id string) (*Role, error) {
	var role Role
	err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *repository) FindRoleByName(ctx context.Context, name string) (*Role, error) {
	var role Role
	err := r.db.WithContext(ctx).First(&role, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *repository) FindRolesByIDs(ctx context.Context, ids []string) ([]Role, error) {
	var roles []Role
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&roles).Error
	return roles, err
}

func (r *repository) CreateRole(ctx context.Context, role *Role) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *repository) UpdateRole(ctx context.Context, role *Role) error {
	return r.db.WithContext(ctx).Save(role).Error
}

func (r *repository) DeleteRole(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Role{}, "id = ?", id).Error
}

func (r *repository) ListPermissions(ctx context.Context) ([]Permission, error) {
	var perms []Permission
	err := r.db.WithContext(ctx).Order("module, action").Find(&perms).Error
	return perms, err
}

func (r *repository) FindPermissionByID(ctx context.Context, id string) (*Permission, error) {
	var perm Permission
	err := r.db.WithContext(ctx).First(&perm, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &perm, nil
}

func (r *repository) FindPermissionsByIDs(ctx context.Context, ids []string) ([]Permission, error) {
	var perms []Permission
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&perms).Error
	return perms, err
}

func (r *repository) CreatePermission(ctx context.Context, perm *Permission) error {
	return r.db.WithContext(ctx).Create(perm).Error
}

func (r *repository) UpdatePermission(ctx context.Context, perm *Permission) error {
	return r.db.WithContext(ctx).Save(perm).Error
}

func (r *repository) DeletePermission(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Permission{}, "id = ?", id).Error
}

func (r *repository) LinkRolePermission(ctx context.Context, roleID, permissionID uuid.UUID) (bool, error) {
	link := RolePermission{
		ID:           uuid.New(),
		RoleID:       roleID,
		PermissionID: permissionID,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role_id"}, {Name: "permission_id"}},
			DoNothing: true,
		}).
		Create(&link)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) UnlinkRolePermissions(ctx context.Context, roleID uuid.UUID, permissionIDs []string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("role_id = ?", roleID).
		Where("permission_id IN ?", permissionIDs).
		Delete(&RolePermission{})
	return res.RowsAffected, res.Error
}

func (r *repository) LinkUserRole(ctx context.Context, userID, roleID uuid.UUID) (bool, error) {
	link := UserRole{
		ID:     uuid.New(),
		UserID: userID,
		RoleID: roleID,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "role_id"}},
			DoNothing: true,
		}).
		Create(&link)
	return res.RowsAffected > 0, res.Error
}

func (r *repository) UnlinkUserRoles(ctx context.Context, userID uuid.UUID, roleIDs []string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("role_id IN ?", roleIDs).
		Delete(&UserRole{})
	return res.RowsAffected, res.Error
}

func (r *repository) ListUsers(ctx context.Context) ([]UserRow, error) {
	var rows []UserRow
	err := r.db.WithContext(ctx).
		Table("users").
		Select("id, email, employee_code, full_name, is_active").
		Where("deleted_at IS NULL").
		Order("full_name").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) FindUserByID(ctx context.Context, userID string) (*UserRow, error) {
	var row UserRow
	res := r.db.WithContext(ctx).
		Table("users").
		Select("id, email, employee_code, full_name, is_active").
		Where("id = ?", userID).
		Where("deleted_at IS NULL").
		Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}

package rbac

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"size:50;not null;uniqueIndex"`
	Code        string    `gorm:"size:60;not null;uniqueIndex"`
	Description *string   `gorm:"type:text"`
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewRole derives the slug code from the name when none is given.
// Derivation happens here, not in a persistence hook.
func NewRole(name, code string, description *string) *Role {
	if code == "" {
		code = Slugify(name)
	}
	return &Role{
		ID:          uuid.New(),
		Name:        name,
		Code:        code,
		Description: description,
		IsActive:    true,
	}
}

type Permission struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Module      string    `gorm:"size:50;not null;uniqueIndex:uq_permissions_module_action"`
	Action      string    `gorm:"size:50;not null;uniqueIndex:uq_permissions_module_action"`
	Name        string    `gorm:"size:100;not null"`
	Code        string    `gorm:"size:120;not null;uniqueIndex"`
	Description *string   `gorm:"type:text"`
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewPermission derives code = "module.action" (lowercased).
func NewPermission(module, action, name string, description *string) *Permission {
	return &Permission{
		ID:          uuid.New(),
		Module:      module,
		Action:      action,
		Name:        name,
		Code:        PermissionCode(module, action),
		Description: description,
		IsActive:    true,
	}
}

func PermissionCode(module, action string) string {
	return strings.ToLower(fmt.Sprintf("%s.%s", module, action))
}

type RolePermission struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RoleID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_role_permissions_pair"`
	PermissionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_role_permissions_pair"`
	CreatedAt    time.Time

	Role       *Role       `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
	Permission *Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE"`
}

type UserRole struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_user_roles_pair"`
	RoleID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_user_roles_pair"`
	CreatedAt time.Time

	Role *Role `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE"`
}

// Slugify turns "HR Manager" into "hr-manager".
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

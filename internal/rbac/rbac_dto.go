package rbac

import "time"

type CreateRoleRequest struct {
	Name        string  `json:"name" binding:"required,max=50"`
	Code        string  `json:"code" binding:"omitempty,max=60"`
	Description *string `json:"description"`
}

type UpdateRoleRequest struct {
	Name        string  `json:"name" binding:"required,max=50"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type RoleResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type RoleDetailResponse struct {
	RoleResponse
	Permissions []PermissionResponse `json:"permissions"`
}

type CreatePermissionRequest struct {
	Module      string  `json:"module" binding:"required,max=50"`
	Action      string  `json:"action" binding:"required,max=50"`
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description"`
}

type UpdatePermissionRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type PermissionResponse struct {
	ID          string  `json:"id"`
	Module      string  `json:"module"`
	Action      string  `json:"action"`
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"is_active"`
}

type AssignPermissionsRequest struct {
	PermissionIDs []string `json:"permission_ids" binding:"required,min=1,dive,uuid"`
}

type AssignPermissionsResponse struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

type RemovePermissionsRequest struct {
	PermissionIDs []string `json:"permission_ids" binding:"required,min=1,dive,uuid"`
}

type RemovePermissionsResponse struct {
	Deleted int64 `json:"deleted"`
}

type AssignRolesRequest struct {
	RoleIDs []string `json:"role_ids" binding:"required,min=1,dive,uuid"`
}

type AssignRolesResponse struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

type RemoveRolesRequest struct {
	RoleIDs []string `json:"role_ids" binding:"required,min=1,dive,uuid"`
}

type RemoveRolesResponse struct {
	Deleted int64 `json:"deleted"`
}

type UserSummaryResponse struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	EmployeeCode *string `json:"employee_code,omitempty"`
	FullName     string  `json:"full_name"`
	IsActive     bool    `json:"is_active"`
}

type UserRolesResponse struct {
	UserSummaryResponse
	Roles []RoleResponse `json:"roles"`
}

func toRoleResponse(r Role) RoleResponse {
	return RoleResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		Code:        r.Code,
		Description: r.Description,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
	}
}

func toPermissionResponse(p Permission) PermissionResponse {
	return PermissionResponse{
		ID:          p.ID.String(),
		Module:      p.Module,
		Action:      p.Action,
		Name:        p.Name,
		Code:        p.Code,
		Description: p.Description,
		IsActive:    p.IsActive,
	}
}

func toUserSummaryResponse(u UserRow) UserSummaryResponse {
	return UserSummaryResponse{
		ID:           u.ID.String(),
		Email:        u.Email,
		EmployeeCode: u.EmployeeCode,
		FullName:     u.FullName,
		IsActive:     u.IsActive,
	}
}

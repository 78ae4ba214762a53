package auth

import "hris/internal/rbac"

type LoginRequest struct {
	// Identifier is an email address or an employee number.
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type AuthResponse struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	EmployeeCode *string `json:"employee_code,omitempty"`
	FullName     string  `json:"full_name"`
	IsStaff      bool    `json:"is_staff"`
}

type MeResponse struct {
	AuthResponse
	Roles              []rbac.RoleResponse `json:"roles"`
	Permissions        []string            `json:"permissions"`
	PermissionsGrouped map[string][]string `json:"permissions_grouped"`
}

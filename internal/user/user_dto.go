package user

import "time"

type CreateUserRequest struct {
	Email        string  `json:"email" binding:"required,email"`
	EmployeeCode *string `json:"employee_code" binding:"omitempty,max=20"`
	FullName     string  `json:"full_name" binding:"required,max=255"`
	Phone        *string `json:"phone" binding:"omitempty,max=30"`
	Password     string  `json:"password" binding:"required,min=8"`
	IsStaff      bool    `json:"is_staff"`
}

type UpdateUserRequest struct {
	FullName string  `json:"full_name" binding:"required,max=255"`
	Phone    *string `json:"phone" binding:"omitempty,max=30"`
	IsActive *bool   `json:"is_active"`
	IsStaff  *bool   `json:"is_staff"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type UserResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	EmployeeCode *string   `json:"employee_code,omitempty"`
	FullName     string    `json:"full_name"`
	Phone        *string   `json:"phone,omitempty"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
}

func mapToResponse(u User) UserResponse {
	return UserResponse{
		ID:           u.ID.String(),
		Email:        u.Email,
		EmployeeCode: u.EmployeeCode,
		FullName:     u.FullName,
		Phone:        u.Phone,
		IsActive:     u.IsActive,
		IsStaff:      u.IsStaff,
		CreatedAt:    u.CreatedAt,
	}
}

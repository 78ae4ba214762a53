package usererrors

import (
	"net/http"

	"hris/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrEmailTaken = apperror.New(
		apperror.CodeConflict,
		"email is already registered",
		http.StatusConflict,
	)
	ErrEmployeeCodeTaken = apperror.New(
		apperror.CodeConflict,
		"employee code is already registered",
		http.StatusConflict,
	)
	ErrInvalidCurrentPassword = apperror.New(
		apperror.CodeInvalidInput,
		"current password is incorrect",
		http.StatusBadRequest,
	)
)

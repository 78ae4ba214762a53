package rbacerrors

import (
	"net/http"

	"hris/internal/shared/apperror"
)

var (
	ErrRoleNotFound = apperror.New(
		apperror.CodeNotFound,
		"role not found",
		http.StatusNotFound,
	)
	ErrRoleNameTaken = apperror.New(
		apperror.CodeConflict,
		"role name or code already exists",
		http.StatusConflict,
	)
	ErrPermissionNotFound = apperror.New(
		apperror.CodeNotFound,
		"permission not found",
		http.StatusNotFound,
	)
	ErrPermissionTaken = apperror.New(
		apperror.CodeConflict,
		"permission with this module and action already exists",
		http.StatusConflict,
	)
	ErrUnknownPermissionIDs = apperror.New(
		apperror.CodeInvalidInput,
		"one or more permission ids do not exist",
		http.StatusBadRequest,
	)
	ErrUnknownRoleIDs = apperror.New(
		apperror.CodeInvalidInput,
		"one or more role ids do not exist",
		http.StatusBadRequest,
	)
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
)

package leaveerrors

import (
	"net/http"

	"hris/internal/shared/apperror"
)

var (
	ErrEmployeeProfileNotFound = apperror.New(
		apperror.CodeNotFound,
		"no employee profile is linked to this account",
		http.StatusNotFound,
	)
	ErrLeaveTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave type not found",
		http.StatusNotFound,
	)
	ErrLeaveTypeCodeTaken = apperror.New(
		apperror.CodeConflict,
		"a leave type with this code already exists",
		http.StatusConflict,
	)
	ErrLeaveTypeInUse = apperror.New(
		apperror.CodeConflict,
		"leave type is still referenced by leave requests",
		http.StatusConflict,
	)
	ErrLeaveTypeInactive = apperror.New(
		apperror.CodeInvalidInput,
		"leave type is not active",
		http.StatusBadRequest,
	)
	ErrLeaveRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_date must be before or equal end_date",
		http.StatusBadRequest,
	)
	ErrAlreadyDecided = apperror.New(
		apperror.CodeInvalidState,
		"leave request has already been decided",
		http.StatusConflict,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"rejection reason is required",
		http.StatusBadRequest,
	)

	ErrAnnualTooLong = apperror.New(
		apperror.CodeInvalidInput,
		"annual leave cannot exceed 3 days per request",
		http.StatusBadRequest,
	)
	ErrAnnualQuotaExceeded = apperror.New(
		apperror.CodeInvalidInput,
		"annual leave quota of 12 days would be exceeded",
		http.StatusBadRequest,
	)
	ErrHalfDayMustBeSingleDay = apperror.New(
		apperror.CodeInvalidInput,
		"half-day leave must cover exactly one day",
		http.StatusBadRequest,
	)
	ErrHalfDayMonthlyLimit = apperror.New(
		apperror.CodeInvalidInput,
		"half-day leave is limited to 4 approved requests per month",
		http.StatusBadRequest,
	)
)

package leave

import (
	"context"

	leaveerrors "hris/internal/leave/errors"

	"github.com/google/uuid"
)

// Quota constants for the built-in leave policies.
const (
	annualMaxDaysPerRequest = 3
	annualMaxDaysPerYear    = 12
	halfDayMaxPerMonth      = 4
)

type ruleContext struct {
	EmployeeID  uuid.UUID
	LeaveTypeID uuid.UUID
	Request     *LeaveRequest
}

// ruleEvaluator checks one leave policy against a submission. Evaluators run
// inside the submitting transaction so quota reads and the insert agree.
type ruleEvaluator func(ctx context.Context, repo Repository, rc ruleContext) error

// ruleRegistry keys policies by leave type code. Types without an entry
// carry no extra rule beyond the shared date validation.
var ruleRegistry = map[string]ruleEvaluator{
	"ANNUAL":   annualLeaveRule,
	"HALF_DAY": halfDayLeaveRule,
}

func annualLeaveRule(ctx context.Context, repo Repository, rc ruleContext) error {
	if rc.Request.TotalDays > annualMaxDaysPerRequest {
		return leaveerrors.ErrAnnualTooLong
	}

	used, err := repo.ApprovedDaysInYear(ctx, rc.EmployeeID, rc.LeaveTypeID, rc.Request.StartDate.Year())
	if err != nil {
		return err
	}
	if used+rc.Request.TotalDays > annualMaxDaysPerYear {
		return leaveerrors.ErrAnnualQuotaExceeded
	}
	return nil
}

func halfDayLeaveRule(ctx context.Context, repo Repository, rc ruleContext) error {
	if rc.Request.TotalDays != 1 {
		return leaveerrors.ErrHalfDayMustBeSingleDay
	}

	start := rc.Request.StartDate
	count, err := repo.ApprovedCountInMonth(ctx, rc.EmployeeID, rc.LeaveTypeID, start.Year(), start.Month())
	if err != nil {
		return err
	}
	if count >= halfDayMaxPerMonth {
		return leaveerrors.ErrHalfDayMonthlyLimit
	}
	return nil
}

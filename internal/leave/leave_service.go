package leave

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"hris/internal/events"
	leaveerrors "hris/internal/leave/errors"
	"hris/internal/messaging/kafka"
	"hris/internal/shared/apperror"
	"hris/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PermissionChecker is the slice of the rbac service request visibility
// checks need.
type PermissionChecker interface {
	HasPermission(ctx context.Context, userID, code string) (bool, error)
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	CreateType(ctx context.Context, req LeaveTypeRequest) (LeaveTypeResponse, error)
	GetAllTypes(ctx context.Context) ([]LeaveTypeResponse, error)
	UpdateType(ctx context.Context, id string, req LeaveTypeRequest) (LeaveTypeResponse, error)
	DeleteType(ctx context.Context, id string) error

	Submit(ctx context.Context, userID string, req SubmitLeaveRequest) (LeaveRequestResponse, error)
	GetByID(ctx context.Context, userID, id string) (LeaveRequestResponse, error)
	ListMine(ctx context.Context, userID string) ([]LeaveRequestResponse, error)
	ListAll(ctx context.Context) ([]LeaveRequestResponse, error)

	Approve(ctx context.Context, actorUserID, id string) (LeaveRequestResponse, error)
	Reject(ctx context.Context, actorUserID, id, reason string) (LeaveRequestResponse, error)
	BulkApprove(ctx context.Context, actorUserID string, ids []string) (BulkDecisionResponse, error)
	BulkReject(ctx context.Context, actorUserID string, ids []string, reason string) (BulkDecisionResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	perms  PermissionChecker
	nowFn  func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, outbox kafka.OutboxRepository, perms PermissionChecker) Service {
	return &service{
		db:     db,
		repo:   repo,
		outbox: outbox,
		perms:  perms,
		nowFn:  time.Now,
		logger: zap.L().Named("leave.service"),
	}
}

func (s *service) CreateType(ctx context.Context, req LeaveTypeRequest) (LeaveTypeResponse, error) {
	t := &LeaveType{
		ID:          uuid.New(),
		Name:        req.Name,
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		Description: req.Description,
		IsActive:    true,
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}

	if err := s.repo.CreateType(ctx, t); err != nil {
		if isUniqueViolation(err) {
			return LeaveTypeResponse{}, leaveerrors.ErrLeaveTypeCodeTaken
		}
		return LeaveTypeResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to create leave type", http.StatusInternalServerError)
	}
	return toTypeResponse(*t), nil
}

func (s *service) GetAllTypes(ctx context.Context) ([]LeaveTypeResponse, error) {
	rows, err := s.repo.FindAllTypes(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to list leave types", http.StatusInternalServerError)
	}

	res := make([]LeaveTypeResponse, len(rows))
	for i, t := range rows {
		res[i] = toTypeResponse(t)
	}
	return res, nil
}

// UpdateType keeps the code immutable: it is the key rule evaluators are
// registered under.
func (s *service) UpdateType(ctx context.Context, id string, req LeaveTypeRequest) (LeaveTypeResponse, error) {
	t, err := s.repo.FindTypeByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveTypeResponse{}, leaveerrors.ErrLeaveTypeNotFound
		}
		return LeaveTypeResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load leave type", http.StatusInternalServerError)
	}

	t.Name = req.Name
	t.Description = req.Description
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateType(ctx, t); err != nil {
		return LeaveTypeResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to update leave type", http.StatusInternalServerError)
	}
	return toTypeResponse(*t), nil
}

func (s *service) DeleteType(ctx context.Context, id string) error {
	if _, err := s.repo.FindTypeByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaveerrors.ErrLeaveTypeNotFound
		}
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to load leave type", http.StatusInternalServerError)
	}

	count, err := s.repo.CountRequestsByType(ctx, id)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to check leave type usage", http.StatusInternalServerError)
	}
	if count > 0 {
		return leaveerrors.ErrLeaveTypeInUse
	}

	if err := s.repo.DeleteType(ctx, id); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to delete leave type", http.StatusInternalServerError)
	}
	return nil
}

// Submit validates the date range and the per-type policy, then stores the
// request as pending. Policy reads and the insert run in one transaction.
func (s *service) Submit(ctx context.Context, userID string, req SubmitLeaveRequest) (LeaveRequestResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)

	employeeID, err := s.repo.FindEmployeeIDByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaveerrors.ErrEmployeeProfileNotFound
		}
		return LeaveRequestResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to resolve employee", http.StatusInternalServerError)
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return LeaveRequestResponse{}, apperror.InvalidField("Start Date")
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return LeaveRequestResponse{}, apperror.InvalidField("End Date")
	}
	if startDate.After(endDate) {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidDateRange
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveRequestResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to start transaction", http.StatusInternalServerError)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	leaveType, err := qtx.FindTypeByID(ctx, req.LeaveTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaveerrors.ErrLeaveTypeNotFound
		}
		return LeaveRequestResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load leave type", http.StatusInternalServerError)
	}
	if !leaveType.IsActive {
		return LeaveRequestResponse{}, leaveerrors.ErrLeaveTypeInactive
	}

	l := &LeaveRequest{
		ID:          uuid.New(),
		EmployeeID:  employeeID,
		LeaveTypeID: leaveType.ID,
		StartDate:   startDate,
		EndDate:     endDate,
		TotalDays:   int(endDate.Sub(startDate).Hours()/24) + 1,
		Reason:      req.Reason,
		Status:      StatusPending,
	}

	if rule, ok := ruleRegistry[leaveType.Code]; ok {
		if err := rule(ctx, qtx, ruleContext{
			EmployeeID:  employeeID,
			LeaveTypeID: leaveType.ID,
			Request:     l,
		}); err != nil {
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				logger.Warn("leave submission rejected by policy",
					zap.String("leave_type", leaveType.Code),
					zap.String("employee_id", employeeID.String()),
					zap.String("reason", appErr.Message))
				return LeaveRequestResponse{}, err
			}
			return LeaveRequestResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to evaluate leave policy", http.StatusInternalServerError)
		}
	}

	if err := qtx.CreateRequest(ctx, l); err != nil {
		return LeaveRequestResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to create leave request", http.StatusInternalServerError)
	}
	if err := tx.Commit(); err != nil {
		return LeaveRequestResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to commit", http.StatusInternalServerError)
	}

	logger.Info("leave request submitted",
		zap.String("leave_request_id", l.ID.String()),
		zap.String("leave_type", leaveType.Code),
		zap.Int("total_days", l.TotalDays))

	l.LeaveType = leaveType
	return toRequestResponse(*l), nil
}

// GetByID returns a request to its owner. Any other caller needs
// leave.view_all and otherwise gets not-found, so request ids cannot be
// probed for existence.
func (s *service) GetByID(ctx context.Context, userID, id string) (LeaveRequestResponse, error) {
	l, err := s.repo.FindRequestByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaveerrors.ErrLeaveRequestNotFound
		}
		return LeaveRequestResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load leave request", http.StatusInternalServerError)
	}

	employeeID, err := s.repo.FindEmployeeIDByUserID(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return LeaveRequestResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to resolve employee", http.StatusInternalServerError)
	}
	if err == nil && employeeID == l.EmployeeID {
		return toRequestResponse(*l), nil
	}

	allowed, err := s.perms.HasPermission(ctx, userID, "leave.view_all")
	if err != nil {
		return LeaveRequestResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to check permissions", http.StatusInternalServerError)
	}
	if !allowed {
		return LeaveRequestResponse{}, leaveerrors.ErrLeaveRequestNotFound
	}
	return toRequestResponse(*l), nil
}

func (s *service) ListMine(ctx context.Context, userID string) ([]LeaveRequestResponse, error) {
	employeeID, err := s.repo.FindEmployeeIDByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leaveerrors.ErrEmployeeProfileNotFound
		}
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to resolve employee", http.StatusInternalServerError)
	}

	rows, err := s.repo.FindRequestsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to list leave requests", http.StatusInternalServerError)
	}
	return mapRequests(rows), nil
}

func (s *service) ListAll(ctx context.Context) ([]LeaveRequestResponse, error) {
	rows, err := s.repo.FindAllRequests(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to list leave requests", http.StatusInternalServerError)
	}
	return mapRequests(rows), nil
}

func (s *service) Approve(ctx context.Context, actorUserID, id string) (LeaveRequestResponse, error) {
	return s.decide(ctx, actorUserID, id, StatusApproved, "")
}

func (s *service) Reject(ctx context.Context, actorUserID, id, reason string) (LeaveRequestResponse, error) {
	if strings.TrimSpace(reason) == "" {
		return LeaveRequestResponse{}, leaveerrors.ErrRejectionReasonRequired
	}
	return s.decide(ctx, actorUserID, id, StatusRejected, reason)
}

// decide performs a single guarded pending-to-decided transition and queues
// the decision event in the same transaction.
func (s *service) decide(ctx context.Context, actorUserID, id, target, reason string) (LeaveRequestResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)

	actorID, err := uuid.Parse(actorUserID)
	if err != nil {
		return LeaveRequestResponse{}, apperror.ErrUnauthorized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveRequestResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to start transaction", http.StatusInternalServerError)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindRequestByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaveerrors.ErrLeaveRequestNotFound
		}
		return LeaveRequestResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load leave request", http.StatusInternalServerError)
	}
	if l.Status != StatusPending {
		return LeaveRequestResponse{}, leaveerrors.ErrAlreadyDecided
	}

	applyDecision(l, target, actorID, reason, s.nowFn())

	ok, err := qtx.TransitionFromPending(ctx, l)
	if err != nil {
		return LeaveRequestResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to update leave request", http.StatusInternalServerError)
	}
	if !ok {
		// Raced with another decision between the read and the write.
		return LeaveRequestResponse{}, leaveerrors.ErrAlreadyDecided
	}

	if err := s.queueDecisionEvent(ctx, tx, l, actorID); err != nil {
		return LeaveRequestResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to queue decision event", http.StatusInternalServerError)
	}

	if err := tx.Commit(); err != nil {
		return LeaveRequestResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to commit", http.StatusInternalServerError)
	}

	logger.Info("leave request decided",
		zap.String("leave_request_id", l.ID.String()),
		zap.String("status", l.Status),
		zap.String("decided_by", actorID.String()))
	return toRequestResponse(*l), nil
}

func (s *service) BulkApprove(ctx context.Context, actorUserID string, ids []string) (BulkDecisionResponse, error) {
	return s.bulkDecide(ctx, actorUserID, ids, StatusApproved, "")
}

func (s *service) BulkReject(ctx context.Context, actorUserID string, ids []string, reason string) (BulkDecisionResponse, error) {
	if strings.TrimSpace(reason) == "" {
		return BulkDecisionResponse{}, leaveerrors.ErrRejectionReasonRequired
	}
	return s.bulkDecide(ctx, actorUserID, ids, StatusRejected, reason)
}

// bulkDecide transitions every still-pending request in the batch and
// silently skips the rest, reporting how many actually moved.
func (s *service) bulkDecide(ctx context.Context, actorUserID string, ids []string, target, reason string) (BulkDecisionResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)

	actorID, err := uuid.Parse(actorUserID)
	if err != nil {
		return BulkDecisionResponse{}, apperror.ErrUnauthorized
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return BulkDecisionResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to start transaction", http.StatusInternalServerError)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	transitioned := 0
	for _, id := range ids {
		l, err := qtx.FindRequestByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return BulkDecisionResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load leave request", http.StatusInternalServerError)
		}
		if l.Status != StatusPending {
			continue
		}

		applyDecision(l, target, actorID, reason, s.nowFn())

		ok, err := qtx.TransitionFromPending(ctx, l)
		if err != nil {
			return BulkDecisionResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to update leave request", http.StatusInternalServerError)
		}
		if !ok {
			continue
		}
		if err := s.queueDecisionEvent(ctx, tx, l, actorID); err != nil {
			return BulkDecisionResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to queue decision event", http.StatusInternalServerError)
		}
		transitioned++
	}

	if err := tx.Commit(); err != nil {
		return BulkDecisionResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to commit", http.StatusInternalServerError)
	}

	logger.Info("bulk leave decision applied",
		zap.String("status", target),
		zap.Int("requested", len(ids)),
		zap.Int("transitioned", transitioned))
	return BulkDecisionResponse{Requested: len(ids), Transitioned: transitioned}, nil
}

// applyDecision sets the decision columns for target and clears the opposite
// outcome's columns.
func applyDecision(l *LeaveRequest, target string, actorID uuid.UUID, reason string, now time.Time) {
	l.Status = target
	switch target {
	case StatusApproved:
		l.ApprovedBy = &actorID
		l.ApprovedAt = &now
		l.RejectedBy = nil
		l.RejectedAt = nil
		l.RejectionReason = nil
	case StatusRejected:
		l.ApprovedBy = nil
		l.ApprovedAt = nil
		l.RejectedBy = &actorID
		l.RejectedAt = &now
		l.RejectionReason = &reason
	}
}

func (s *service) queueDecisionEvent(ctx context.Context, tx *sql.Tx, l *LeaveRequest, actorID uuid.UUID) error {
	typeCode := ""
	if l.LeaveType != nil {
		typeCode = l.LeaveType.Code
	}

	return kafka.StageEvent(ctx, s.outbox, tx, kafka.OutboxEvent{
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_request",
		AggregateID:   l.ID.String(),
		EventType:     "leave_request_decided",
		Topic:         events.LeaveRequestDecidedTopic,
	}, events.LeaveRequestDecidedEvent{
		EventType:      "leave_request_decided",
		RequestID:      contextutil.GetRequestID(ctx),
		LeaveRequestID: l.ID.String(),
		EmployeeID:     l.EmployeeID.String(),
		LeaveTypeCode:  typeCode,
		Status:         l.Status,
		DecidedBy:      actorID.String(),
		StartDate:      l.StartDate.Format(dateLayout),
		EndDate:        l.EndDate.Format(dateLayout),
		TotalDays:      l.TotalDays,
		OccurredAt:     s.nowFn().UTC(),
	})
}

func mapRequests(rows []LeaveRequest) []LeaveRequestResponse {
	res := make([]LeaveRequestResponse, len(rows))
	for i, l := range rows {
		res[i] = toRequestResponse(l)
	}
	return res
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"hris/internal/events"
	leaveerrors "hris/internal/leave/errors"
	"hris/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	findEmployeeIDFn  func(ctx context.Context, userID string) (uuid.UUID, error)
	findTypeByIDFn    func(ctx context.Context, id string) (*LeaveType, error)
	countByTypeFn     func(ctx context.Context, typeID string) (int64, error)
	createRequestFn   func(ctx context.Context, l *LeaveRequest) error
	findRequestByIDFn func(ctx context.Context, id string) (*LeaveRequest, error)
	approvedDaysFn    func(ctx context.Context, employeeID, typeID uuid.UUID, year int) (int, error)
	approvedCountFn   func(ctx context.Context, employeeID, typeID uuid.UUID, year int, month time.Month) (int64, error)
	transitionFn      func(ctx context.Context, l *LeaveRequest) (bool, error)
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }

func (f *fakeRepo) FindEmployeeIDByUserID(ctx context.Context, userID string) (uuid.UUID, error) {
	if f.findEmployeeIDFn != nil {
		return f.findEmployeeIDFn(ctx, userID)
	}
	return uuid.Nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreateType(ctx context.Context, t *LeaveType) error { return nil }

func (f *fakeRepo) FindAllTypes(ctx context.Context) ([]LeaveType, error) { return nil, nil }

func (f *fakeRepo) FindTypeByID(ctx context.Context, id string) (*LeaveType, error) {
	if f.findTypeByIDFn != nil {
		return f.findTypeByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) UpdateType(ctx context.Context, t *LeaveType) error { return nil }

func (f *fakeRepo) DeleteType(ctx context.Context, id string) error { return nil }

func (f *fakeRepo) CountRequestsByType(ctx context.Context, typeID string) (int64, error) {
	if f.countByTypeFn != nil {
		return f.countByTypeFn(ctx, typeID)
	}
	return 0, nil
}

func (f *fakeRepo) CreateRequest(ctx context.Context, l *LeaveRequest) error {
	if f.createRequestFn != nil {
		return f.createRequestFn(ctx, l)
	}
	return nil
}

func (f *fakeRepo) FindRequestByID(ctx context.Context, id string) (*LeaveRequest, error) {
	if f.findRequestByIDFn != nil {
		return f.findRequestByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindAllRequests(ctx context.Context) ([]LeaveRequest, error) { return nil, nil }

func (f *fakeRepo) FindRequestsByEmployee(ctx context.Context, employeeID uuid.UUID) ([]LeaveRequest, error) {
	return nil, nil
}

func (f *fakeRepo) ApprovedDaysInYear(ctx context.Context, employeeID, typeID uuid.UUID, year int) (int, error) {
	if f.approvedDaysFn != nil {
		return f.approvedDaysFn(ctx, employeeID, typeID, year)
	}
	return 0, nil
}

func (f *fakeRepo) ApprovedCountInMonth(ctx context.Context, employeeID, typeID uuid.UUID, year int, month time.Month) (int64, error) {
	if f.approvedCountFn != nil {
		return f.approvedCountFn(ctx, employeeID, typeID, year, month)
	}
	return 0, nil
}

func (f *fakeRepo) TransitionFromPending(ctx context.Context, l *LeaveRequest) (bool, error) {
	if f.transitionFn != nil {
		return f.transitionFn(ctx, l)
	}
	return true, nil
}

type fakePerms struct {
	allowed map[string]bool
}

func (f *fakePerms) HasPermission(ctx context.Context, userID, code string) (bool, error) {
	return f.allowed[code], nil
}

type fakeOutbox struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

func newTestService(t *testing.T, repo *fakeRepo) (Service, sqlmock.Sqlmock, *fakeOutbox) {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	outbox := &fakeOutbox{}
	svc := NewService(db, repo, outbox, &fakePerms{})
	svc.(*service).nowFn = func() time.Time {
		return time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)
	}
	return svc, dbMock, outbox
}

func activeEmployee(id uuid.UUID) func(ctx context.Context, userID string) (uuid.UUID, error) {
	return func(ctx context.Context, userID string) (uuid.UUID, error) {
		return id, nil
	}
}

func annualType(id uuid.UUID) func(ctx context.Context, typeID string) (*LeaveType, error) {
	return func(ctx context.Context, typeID string) (*LeaveType, error) {
		return &LeaveType{ID: id, Name: "Annual Leave", Code: "ANNUAL", IsActive: true}, nil
	}
}

func halfDayType(id uuid.UUID) func(ctx context.Context, typeID string) (*LeaveType, error) {
	return func(ctx context.Context, typeID string) (*LeaveType, error) {
		return &LeaveType{ID: id, Name: "Half Day", Code: "HALF_DAY", IsActive: true}, nil
	}
}

func submission(typeID uuid.UUID, start, end string) SubmitLeaveRequest {
	return SubmitLeaveRequest{
		LeaveTypeID: typeID.String(),
		StartDate:   start,
		EndDate:     end,
		Reason:      "family matters",
	}
}

func TestSubmit_TotalDaysIsInclusive(t *testing.T) {
	typeID := uuid.New()
	repo := &fakeRepo{
		findEmployeeIDFn: activeEmployee(uuid.New()),
		findTypeByIDFn:   annualType(typeID),
	}
	svc, dbMock, _ := newTestService(t, repo)
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	resp, err := svc.Submit(context.Background(), uuid.NewString(), submission(typeID, "2026-05-04", "2026-05-06"))

	assert.NoError(t, err)
	assert.Equal(t, 3, resp.TotalDays)
	assert.Equal(t, StatusPending, resp.Status)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestSubmit_AnnualOverPerRequestCapRejected(t *testing.T) {
	typeID := uuid.New()
	repo := &fakeRepo{
		findEmployeeIDFn: activeEmployee(uuid.New()),
		findTypeByIDFn:   annualType(typeID),
	}
	svc, dbMock, _ := newTestService(t, repo)
	dbMock.ExpectBegin()
	dbMock.ExpectRollback()

	_, err := svc.Submit(context.Background(), uuid.NewString(), submission(typeID, "2026-05-04", "2026-05-07"))

	assert.ErrorIs(t, err, leaveerrors.ErrAnnualTooLong)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestSubmit_AnnualQuotaBoundary(t *testing.T) {
	typeID := uuid.New()
	repo := &fakeRepo{
		findEmployeeIDFn: activeEmployee(uuid.New()),
		findTypeByIDFn:   annualType(typeID),
		approvedDaysFn: func(ctx context.Context, employeeID, tid uuid.UUID, year int) (int, error) {
			assert.Equal(t, 2026, year)
			return 10, nil
		},
	}

	// 10 approved plus 3 requested breaks the 12-day quota.
	svc, dbMock, _ := newTestService(t, repo)
	dbMock.ExpectBegin()
	dbMock.ExpectRollback()
	_, err := svc.Submit(context.Background(), uuid.NewString(), submission(typeID, "2026-05-04", "2026-05-06"))
	assert.ErrorIs(t, err, leaveerrors.ErrAnnualQuotaExceeded)
	assert.NoError(t, dbMock.ExpectationsWereMet())

	// 10 plus 2 lands exactly on the quota and passes.
	svc, dbMock, _ = newTestService(t, repo)
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()
	resp, err := svc.Submit(context.Background(), uuid.NewString(), submission(typeID, "2026-05-04", "2026-05-05"))
	assert.NoError(t, err)
	assert.Equal(t, 2, resp.TotalDays)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestSubmit_HalfDayMustCoverOneDay(t *testing.T) {
	typeID := uuid.New()
	repo := &fakeRepo{
		findEmployeeIDFn: activeEmployee(uuid.New()),
		findTypeByIDFn:   halfDayType(typeID),
	}
	svc, dbMock, _ := newTestService(t, repo)
	dbMock.ExpectBegin()
	dbMock.ExpectRollback()

	_, err := svc.Submit(context.Background(), uuid.NewString(), submission(typeID, "2026-05-04", "2026-05-05"))

	assert.ErrorIs(t, err, leaveerrors.ErrHalfDayMustBeSingleDay)
}

func TestSubmit_FifthHalfDayInMonthRejected(t *testing.T) {
	typeID := uuid.New()
	repo := &fakeRepo{
		findEmployeeIDFn: activeEmployee(uuid.New()),
		findTypeByIDFn:   halfDayType(typeID),
		approvedCountFn: func(ctx context.Context, employeeID, tid uuid.UUID, year int, month time.Month) (int64, error) {
			assert.Equal(t, 2026, year)
			assert.Equal(t, time.May, month)
			return 4, nil
		},
	}
	svc, dbMock, _ := newTestService(t, repo)
	dbMock.ExpectBegin()
	dbMock.ExpectRollback()

	_, err := svc.Submit(context.Background(), uuid.NewString(), submission(typeID, "2026-05-04", "2026-05-04"))

	assert.ErrorIs(t, err, leaveerrors.ErrHalfDayMonthlyLimit)
}

func TestSubmit_InactiveTypeRejected(t *testing.T) {
	typeID := uuid.New()
	repo := &fakeRepo{
		findEmployeeIDFn: activeEmployee(uuid.New()),
		findTypeByIDFn: func(ctx context.Context, id string) (*LeaveType, error) {
			return &LeaveType{ID: typeID, Code: "SICK", IsActive: false}, nil
		},
	}
	svc, dbMock, _ := newTestService(t, repo)
	dbMock.ExpectBegin()
	dbMock.ExpectRollback()

	_, err := svc.Submit(context.Background(), uuid.NewString(), submission(typeID, "2026-05-04", "2026-05-04"))

	assert.ErrorIs(t, err, leaveerrors.ErrLeaveTypeInactive)
}

func TestSubmit_ReversedRangeRejected(t *testing.T) {
	typeID := uuid.New()
	repo := &fakeRepo{findEmployeeIDFn: activeEmployee(uuid.New())}
	svc, _, _ := newTestService(t, repo)

	_, err := svc.Submit(context.Background(), uuid.NewString(), submission(typeID, "2026-05-06", "2026-05-04"))

	assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
}

func pendingRequest(id uuid.UUID) *LeaveRequest {
	return &LeaveRequest{
		ID:          id,
		EmployeeID:  uuid.New(),
		LeaveTypeID: uuid.New(),
		StartDate:   time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 5, 6, 0, 0, 0, 0, time.UTC),
		TotalDays:   3,
		Reason:      "family matters",
		Status:      StatusPending,
		LeaveType:   &LeaveType{Code: "ANNUAL", Name: "Annual Leave"},
	}
}

func TestGetByID_OwnerSeesOwnRequest(t *testing.T) {
	reqID := uuid.New()
	req := pendingRequest(reqID)
	repo := &fakeRepo{
		findEmployeeIDFn: activeEmployee(req.EmployeeID),
		findRequestByIDFn: func(ctx context.Context, id string) (*LeaveRequest, error) {
			return req, nil
		},
	}
	svc, _, _ := newTestService(t, repo)

	resp, err := svc.GetByID(context.Background(), uuid.NewString(), reqID.String())

	assert.NoError(t, err)
	assert.Equal(t, reqID.String(), resp.ID)
}

func TestGetByID_NonOwnerGetsNotFound(t *testing.T) {
	reqID := uuid.New()
	repo := &fakeRepo{
		findEmployeeIDFn: activeEmployee(uuid.New()),
		findRequestByIDFn: func(ctx context.Context, id string) (*LeaveRequest, error) {
			return pendingRequest(reqID), nil
		},
	}
	svc, _, _ := newTestService(t, repo)

	_, err := svc.GetByID(context.Background(), uuid.NewString(), reqID.String())

	assert.ErrorIs(t, err, leaveerrors.ErrLeaveRequestNotFound)
}

func TestGetByID_ViewAllSeesAnyRequest(t *testing.T) {
	reqID := uuid.New()
	repo := &fakeRepo{
		// Caller has no employee profile of their own.
		findRequestByIDFn: func(ctx context.Context, id string) (*LeaveRequest, error) {
			return pendingRequest(reqID), nil
		},
	}
	svc, _, _ := newTestService(t, repo)
	svc.(*service).perms = &fakePerms{allowed: map[string]bool{"leave.view_all": true}}

	resp, err := svc.GetByID(context.Background(), uuid.NewString(), reqID.String())

	assert.NoError(t, err)
	assert.Equal(t, reqID.String(), resp.ID)
}

func TestApprove_SetsApprovalFieldsAndQueuesEvent(t *testing.T) {
	reqID := uuid.New()
	repo := &fakeRepo{
		findRequestByIDFn: func(ctx context.Context, id string) (*LeaveRequest, error) {
			return pendingRequest(reqID), nil
		},
	}
	svc, dbMock, outbox := newTestService(t, repo)
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	actor := uuid.New()
	resp, err := svc.Approve(context.Background(), actor.String(), reqID.String())

	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, resp.Status)
	assert.Equal(t, actor.String(), *resp.ApprovedBy)
	assert.NotNil(t, resp.ApprovedAt)
	assert.Nil(t, resp.RejectedBy)
	assert.Nil(t, resp.RejectionReason)

	assert.Len(t, outbox.created, 1)
	assert.Equal(t, events.LeaveRequestDecidedTopic, outbox.created[0].Topic)
	var evt events.LeaveRequestDecidedEvent
	assert.NoError(t, json.Unmarshal(outbox.created[0].Payload, &evt))
	assert.Equal(t, StatusApproved, evt.Status)
	assert.Equal(t, "ANNUAL", evt.LeaveTypeCode)

	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestReject_SetsRejectionFieldsOnly(t *testing.T) {
	reqID := uuid.New()
	repo := &fakeRepo{
		findRequestByIDFn: func(ctx context.Context, id string) (*LeaveRequest, error) {
			return pendingRequest(reqID), nil
		},
	}
	svc, dbMock, _ := newTestService(t, repo)
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	resp, err := svc.Reject(context.Background(), uuid.NewString(), reqID.String(), "insufficient coverage")

	assert.NoError(t, err)
	assert.Equal(t, StatusRejected, resp.Status)
	assert.Nil(t, resp.ApprovedBy)
	assert.Nil(t, resp.ApprovedAt)
	assert.NotNil(t, resp.RejectedBy)
	assert.Equal(t, "insufficient coverage", *resp.RejectionReason)
}

func TestReject_RequiresReason(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeRepo{})

	_, err := svc.Reject(context.Background(), uuid.NewString(), uuid.NewString(), "  ")

	assert.ErrorIs(t, err, leaveerrors.ErrRejectionReasonRequired)
}

func TestApprove_AlreadyDecidedConflict(t *testing.T) {
	reqID := uuid.New()
	decided := pendingRequest(reqID)
	decided.Status = StatusApproved
	repo := &fakeRepo{
		findRequestByIDFn: func(ctx context.Context, id string) (*LeaveRequest, error) {
			return decided, nil
		},
	}
	svc, dbMock, _ := newTestService(t, repo)
	dbMock.ExpectBegin()
	dbMock.ExpectRollback()

	_, err := svc.Approve(context.Background(), uuid.NewString(), reqID.String())

	assert.ErrorIs(t, err, leaveerrors.ErrAlreadyDecided)
}

func TestApprove_GuardedWriteLosesRace(t *testing.T) {
	reqID := uuid.New()
	repo := &fakeRepo{
		findRequestByIDFn: func(ctx context.Context, id string) (*LeaveRequest, error) {
			return pendingRequest(reqID), nil
		},
		transitionFn: func(ctx context.Context, l *LeaveRequest) (bool, error) {
			return false, nil
		},
	}
	svc, dbMock, outbox := newTestService(t, repo)
	dbMock.ExpectBegin()
	dbMock.ExpectRollback()

	_, err := svc.Approve(context.Background(), uuid.NewString(), reqID.String())

	assert.ErrorIs(t, err, leaveerrors.ErrAlreadyDecided)
	assert.Empty(t, outbox.created)
}

func TestBulkApprove_SkipsNonPending(t *testing.T) {
	pendingA := pendingRequest(uuid.New())
	pendingB := pendingRequest(uuid.New())
	approved := pendingRequest(uuid.New())
	approved.Status = StatusApproved

	byID := map[string]*LeaveRequest{
		pendingA.ID.String(): pendingA,
		pendingB.ID.String(): pendingB,
		approved.ID.String(): approved,
	}
	repo := &fakeRepo{
		findRequestByIDFn: func(ctx context.Context, id string) (*LeaveRequest, error) {
			if l, ok := byID[id]; ok {
				return l, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc, dbMock, outbox := newTestService(t, repo)
	dbMock.ExpectBegin()
	dbMock.ExpectCommit()

	ids := []string{pendingA.ID.String(), approved.ID.String(), pendingB.ID.String(), uuid.NewString()}
	resp, err := svc.BulkApprove(context.Background(), uuid.NewString(), ids)

	assert.NoError(t, err)
	assert.Equal(t, 4, resp.Requested)
	assert.Equal(t, 2, resp.Transitioned)
	assert.Len(t, outbox.created, 2)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestDeleteType_BlockedWhileReferenced(t *testing.T) {
	typeID := uuid.New()
	repo := &fakeRepo{
		findTypeByIDFn: func(ctx context.Context, id string) (*LeaveType, error) {
			return &LeaveType{ID: typeID, Code: "ANNUAL"}, nil
		},
		countByTypeFn: func(ctx context.Context, id string) (int64, error) {
			return 7, nil
		},
	}
	svc, _, _ := newTestService(t, repo)

	err := svc.DeleteType(context.Background(), typeID.String())

	assert.ErrorIs(t, err, leaveerrors.ErrLeaveTypeInUse)
}

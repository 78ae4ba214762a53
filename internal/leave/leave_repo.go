package leave

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	FindEmployeeIDByUserID(ctx context.Context, userID string) (uuid.UUID, error)

	CreateType(ctx context.Context, t *LeaveType) error
	FindAllTypes(ctx context.Context) ([]LeaveType, error)
	FindTypeByID(ctx context.Context, id string) (*LeaveType, error)
	UpdateType(ctx context.Context, t *LeaveType) error
	DeleteType(ctx context.Context, id string) error
	CountRequestsByType(ctx context.Context, typeID string) (int64, error)

	CreateRequest(ctx context.Context, l *LeaveRequest) error
	FindRequestByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindAllRequests(ctx context.Context) ([]LeaveRequest, error)
	FindRequestsByEmployee(ctx context.Context, employeeID uuid.UUID) ([]LeaveRequest, error)

	// ApprovedDaysInYear sums total_days of approved requests whose start
	// date falls in year.
	ApprovedDaysInYear(ctx context.Context, employeeID, typeID uuid.UUID, year int) (int, error)
	// ApprovedCountInMonth counts approved requests whose start date falls
	// in (year, month).
	ApprovedCountInMonth(ctx context.Context, employeeID, typeID uuid.UUID, year int, month time.Month) (int64, error)

	// TransitionFromPending writes the decision columns guarded on
	// status = 'pending' and reports whether the row was still pending.
	TransitionFromPending(ctx context.Context, l *LeaveRequest) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	bound := r.db.Session(&gorm.Session{NewDB: true})
	bound.Statement.ConnPool = tx
	return &repository{db: bound}
}

func (r *repository) FindEmployeeIDByUserID(ctx context.Context, userID string) (uuid.UUID, error) {
	var id uuid.UUID
	res := r.db.WithContext(ctx).
		Table("employees").
		Select("id").
		Where("user_id = ?", userID).
		Where("is_active = ?", true).
		Scan(&id)
	if res.Error != nil {
		return uuid.Nil, res.Error
	}
	if res.RowsAffected == 0 {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return id, nil
}

func (r *repository) CreateType(ctx context.Context, t *LeaveType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) FindAllTypes(ctx context.Context) ([]LeaveType, error) {
	var rows []LeaveType
	err := r.db.WithContext(ctx).Order("name").Find(&rows).Error
	return rows, err
}

func (r *repository) FindTypeByID(ctx context.Context, id string) (*LeaveType, error) {
	var t LeaveType
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) UpdateType(ctx context.Context, t *LeaveType) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *repository) DeleteType(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&LeaveType{}, "id = ?", id).Error
}

func (r *repository) CountRequestsByType(ctx context.Context, typeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("leave_type_id = ?", typeID).
		Count(&count).Error
	return count, err
}

func (r *repository) CreateRequest(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error
}

func (r *repository) FindRequestByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Employee.User").
		Preload("LeaveType").
		First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindAllRequests(ctx context.Context) ([]LeaveRequest, error) {
	var rows []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Employee.User").
		Preload("LeaveType").
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindRequestsByEmployee(ctx context.Context, employeeID uuid.UUID) ([]LeaveRequest, error) {
	var rows []LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Employee.User").
		Preload("LeaveType").
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ApprovedDaysInYear(ctx context.Context, employeeID, typeID uuid.UUID, year int) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Select("COALESCE(SUM(total_days), 0)").
		Where("employee_id = ?", employeeID).
		Where("leave_type_id = ?", typeID).
		Where("status = ?", StatusApproved).
		Where("EXTRACT(YEAR FROM start_date) = ?", year).
		Scan(&total).Error
	return total, err
}

func (r *repository) ApprovedCountInMonth(ctx context.Context, employeeID, typeID uuid.UUID, year int, month time.Month) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("employee_id = ?", employeeID).
		Where("leave_type_id = ?", typeID).
		Where("status = ?", StatusApproved).
		Where("EXTRACT(YEAR FROM start_date) = ?", year).
		Where("EXTRACT(MONTH FROM start_date) = ?", int(month)).
		Count(&count).Error
	return count, err
}

func (r *repository) TransitionFromPending(ctx context.Context, l *LeaveRequest) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("id = ?", l.ID).
		Where("status = ?", StatusPending).
		Updates(map[string]any{
			"status":           l.Status,
			"approved_by":      l.ApprovedBy,
			"approved_at":      l.ApprovedAt,
			"rejected_by":      l.RejectedBy,
			"rejected_at":      l.RejectedAt,
			"rejection_reason": l.RejectionReason,
		})
	return res.RowsAffected > 0, res.Error
}

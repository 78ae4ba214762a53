package leave

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	// Declared for forward compatibility; no transition reaches it yet.
	StatusCancelled = "cancelled"
)

type LeaveType struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;type:varchar(100);not null"`
	Code        string    `gorm:"column:code;type:varchar(30);not null;uniqueIndex"`
	Description *string   `gorm:"column:description;type:text"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaveType) TableName() string { return "leave_types" }

type LeaveRequest struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	EmployeeID  uuid.UUID `gorm:"column:employee_id;type:uuid;not null;index:idx_leave_requests_employee_dates"`
	LeaveTypeID uuid.UUID `gorm:"column:leave_type_id;type:uuid;not null"`

	StartDate time.Time `gorm:"column:start_date;type:date;not null;index:idx_leave_requests_employee_dates"`
	EndDate   time.Time `gorm:"column:end_date;type:date;not null"`
	// TotalDays is derived from the inclusive date range, never accepted
	// from the client.
	TotalDays int    `gorm:"column:total_days;not null"`
	Reason    string `gorm:"column:reason;type:text;not null"`
	Status    string `gorm:"column:status;type:varchar(10);not null;default:'pending';index"`

	ApprovedBy      *uuid.UUID `gorm:"column:approved_by;type:uuid"`
	ApprovedAt      *time.Time `gorm:"column:approved_at;type:timestamptz"`
	RejectedBy      *uuid.UUID `gorm:"column:rejected_by;type:uuid"`
	RejectedAt      *time.Time `gorm:"column:rejected_at;type:timestamptz"`
	RejectionReason *string    `gorm:"column:rejection_reason;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Employee  *EmployeeRef `gorm:"foreignKey:EmployeeID;constraint:OnDelete:CASCADE"`
	LeaveType *LeaveType   `gorm:"foreignKey:LeaveTypeID;constraint:OnDelete:RESTRICT"`
}

func (LeaveRequest) TableName() string { return "leave_requests" }

type EmployeeRef struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid"`
	EmployeeNumber string    `gorm:"column:employee_number"`

	User *EmployeeUserRef `gorm:"foreignKey:UserID"`
}

func (EmployeeRef) TableName() string { return "employees" }

type EmployeeUserRef struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	FullName string    `gorm:"column:full_name"`
}

func (EmployeeUserRef) TableName() string { return "users" }

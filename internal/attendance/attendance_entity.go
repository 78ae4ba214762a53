package attendance

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusOnTime = "on_time"
	StatusLate   = "late"
)

type Attendance struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	EmployeeID uuid.UUID `gorm:"column:employee_id;type:uuid;not null;uniqueIndex:uq_attendances_employee_date"`
	Date       time.Time `gorm:"column:date;type:date;not null;uniqueIndex:uq_attendances_employee_date"`

	CheckInAt       time.Time `gorm:"column:check_in_at;type:timestamptz;not null"`
	CheckInLat      *float64  `gorm:"column:check_in_lat"`
	CheckInLng      *float64  `gorm:"column:check_in_lng"`
	CheckInLocation *string   `gorm:"column:check_in_location;type:varchar(255)"`

	CheckOutAt       *time.Time `gorm:"column:check_out_at;type:timestamptz"`
	CheckOutLat      *float64   `gorm:"column:check_out_lat"`
	CheckOutLng      *float64   `gorm:"column:check_out_lng"`
	CheckOutLocation *string    `gorm:"column:check_out_location;type:varchar(255)"`

	// Status is decided once at check-in and never recomputed.
	Status         string   `gorm:"column:status;type:varchar(10);not null"`
	Notes          *string  `gorm:"column:notes;type:text"`
	WorkingMinutes *int     `gorm:"column:working_minutes"`
	WorkingHours   *float64 `gorm:"column:working_hours"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Employee *EmployeeRef `gorm:"foreignKey:EmployeeID;constraint:OnDelete:CASCADE"`
}

func (Attendance) TableName() string { return "attendances" }

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

// AttendanceSetting holds the working-hours window used to classify
// check-ins. At most one row is active at a time.
type AttendanceSetting struct {
	ID                   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name                 string    `gorm:"column:name;type:varchar(100);not null;uniqueIndex"`
	WorkStart            string    `gorm:"column:work_start;type:varchar(5);not null"`
	WorkEnd              string    `gorm:"column:work_end;type:varchar(5);not null"`
	LateToleranceMinutes int       `gorm:"column:late_tolerance_minutes;not null;default:0"`
	IsActive             bool      `gorm:"column:is_active;default:false"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (AttendanceSetting) TableName() string { return "attendance_settings" }

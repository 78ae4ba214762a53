package employee

import (
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	UserID             uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	EmployeeNumber     string     `gorm:"column:employee_number;type:varchar(8);not null;uniqueIndex:uq_employees_employee_number"`
	NIK                *string    `gorm:"column:nik;type:varchar(32)"`
	Address            *string    `gorm:"column:address;type:text"`
	BirthDate          *time.Time `gorm:"column:birth_date;type:date"`
	Gender             *string    `gorm:"column:gender;type:varchar(1)"`
	JoinDate           time.Time  `gorm:"column:join_date;type:date;not null"`
	ResignDate         *time.Time `gorm:"column:resign_date;type:date"`
	DepartmentID       *uuid.UUID `gorm:"column:department_id;type:uuid"`
	PositionID         *uuid.UUID `gorm:"column:position_id;type:uuid"`
	GradeID            *uuid.UUID `gorm:"column:grade_id;type:uuid"`
	EmploymentStatusID *uuid.UUID `gorm:"column:employment_status_id;type:uuid"`
	ManagerID          *uuid.UUID `gorm:"column:manager_id;type:uuid"`
	IsActive           bool       `gorm:"column:is_active;default:true"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	User             *UserRef             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Department       *DepartmentRef       `gorm:"foreignKey:DepartmentID;constraint:OnDelete:RESTRICT"`
	Position         *PositionRef         `gorm:"foreignKey:PositionID;constraint:OnDelete:RESTRICT"`
	Grade            *GradeRef            `gorm:"foreignKey:GradeID;constraint:OnDelete:RESTRICT"`
	EmploymentStatus *EmploymentStatusRef `gorm:"foreignKey:EmploymentStatusID;constraint:OnDelete:RESTRICT"`
	Manager          *ManagerRef          `gorm:"foreignKey:ManagerID;constraint:OnDelete:SET NULL"`
}

// Read-only projections of neighbour tables, preloaded for listing and
// detail responses without pulling the full entities in.

type UserRef struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email    string    `gorm:"column:email"`
	FullName string    `gorm:"column:full_name"`
	Phone    *string   `gorm:"column:phone"`
	IsActive bool      `gorm:"column:is_active"`
}

func (UserRef) TableName() string { return "users" }

type DepartmentRef struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name string    `gorm:"column:name"`
}

func (DepartmentRef) TableName() string { return "departments" }

type PositionRef struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name string    `gorm:"column:name"`
}

func (PositionRef) TableName() string { return "positions" }

type GradeRef struct {
	ID    uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name  string    `gorm:"column:name"`
	Level int       `gorm:"column:level"`
}

func (GradeRef) TableName() string { return "grades" }

type EmploymentStatusRef struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name string    `gorm:"column:name"`
	Code string    `gorm:"column:code"`
}

func (EmploymentStatusRef) TableName() string { return "employment_statuses" }

type ManagerRef struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid"`
	EmployeeNumber string    `gorm:"column:employee_number"`

	User *UserRef `gorm:"foreignKey:UserID"`
}

func (ManagerRef) TableName() string { return "employees" }

// EmployeeOption is the flat shape served by the options endpoint for
// pickers and manager selection.
type EmployeeOption struct {
	ID             uuid.UUID `gorm:"column:id"`
	EmployeeNumber string    `gorm:"column:employee_number"`
	FullName       string    `gorm:"column:full_name"`
}

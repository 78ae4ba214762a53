package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	EmployeeCode *string        `gorm:"column:employee_code;type:varchar(20);uniqueIndex"`
	FullName     string         `gorm:"column:full_name;type:varchar(255);not null"`
	Phone        *string        `gorm:"column:phone;type:varchar(30)"`
	Password     string         `gorm:"column:password;type:text;not null"`
	IsActive     bool           `gorm:"column:is_active;default:true"`
	IsStaff      bool           `gorm:"column:is_staff;default:false"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

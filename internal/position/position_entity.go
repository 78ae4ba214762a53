package position

import (
	"time"

	"github.com/google/uuid"
)

// Position name is unique within a department (NULL department counts as its
// own scope).
type Position struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string     `gorm:"column:name;type:varchar(100);not null;uniqueIndex:uq_positions_dept_name"`
	DepartmentID *uuid.UUID `gorm:"column:department_id;type:uuid;uniqueIndex:uq_positions_dept_name"`
	Description  *string    `gorm:"column:description;type:text"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

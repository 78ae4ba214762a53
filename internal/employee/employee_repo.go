package employee

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, e *Employee) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByUserID(ctx context.Context, userID string) (*Employee, error)
	FindAll(ctx context.Context) ([]Employee, error)
	FindOptions(ctx context.Context) ([]EmployeeOption, error)
	Update(ctx context.Context, e *Employee) error
	Delete(ctx context.Context, id string) error
	AssignRole(ctx context.Context, userID, roleID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// WithTx binds the repository to a caller-owned transaction so the user row,
// the profile, the role link and the outbox record share one commit.
func (r *repository) WithTx(tx *sql.Tx) Repository {
	bound := r.db.Session(&gorm.Session{NewDB: true})
	bound.Statement.ConnPool = tx
	return &repository{db: bound}
}

func (r *repository) Create(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Department").
		Preload("Position").
		Preload("Grade").
		Preload("EmploymentStatus").
		Preload("Manager.User").
		First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) FindByUserID(ctx context.Context, userID string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Department").
		Preload("Position").
		Preload("Grade").
		Preload("EmploymentStatus").
		Preload("Manager.User").
		First(&e, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var list []Employee
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Department").
		Preload("Position").
		Preload("Grade").
		Preload("EmploymentStatus").
		Order("employee_number").
		Find(&list).Error
	return list, err
}

func (r *repository) FindOptions(ctx context.Context) ([]EmployeeOption, error) {
	var opts []EmployeeOption
	err := r.db.WithContext(ctx).
		Table("employees").
		Select("employees.id, employees.employee_number, users.full_name").
		Joins("JOIN users ON users.id = employees.user_id").
		Where("employees.is_active = ?", true).
		Where("users.deleted_at IS NULL").
		Order("employees.employee_number").
		Scan(&opts).Error
	return opts, err
}

func (r *repository) Update(ctx context.Context, e *Employee) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(e).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Employee{}, "id = ?", id).Error
}

// AssignRole links the freshly created user to a role inside the creation
// transaction. ON CONFLICT keeps it idempotent on retry.
func (r *repository) AssignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO user_roles (id, user_id, role_id, created_at, updated_at)
		VALUES (?, ?, ?, NOW(), NOW())
		ON CONFLICT (user_id, role_id) DO NOTHING
	`, uuid.New(), userID, roleID).Error
}

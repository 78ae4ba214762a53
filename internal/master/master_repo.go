package master

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=master_repo.go -destination=mock/master_repo_mock.go -package=mock
type Repository interface {
	CreateGrade(ctx context.Context, g *Grade) error
	FindAllGrades(ctx context.Context) ([]Grade, error)
	FindGradeByID(ctx context.Context, id string) (*Grade, error)
	UpdateGrade(ctx context.Context, g *Grade) error
	DeleteGrade(ctx context.Context, id string) error
	CountGradeEmployees(ctx context.Context, id string) (int64, error)

	CreateEmploymentStatus(ctx context.Context, e *EmploymentStatus) error
	FindAllEmploymentStatuses(ctx context.Context) ([]EmploymentStatus, error)
	FindEmploymentStatusByID(ctx context.Context, id string) (*EmploymentStatus, error)
	UpdateEmploymentStatus(ctx context.Context, e *EmploymentStatus) error
	DeleteEmploymentStatus(ctx context.Context, id string) error
	CountEmploymentStatusEmployees(ctx context.Context, id string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateGrade(ctx context.Context, g *Grade) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *repository) FindAllGrades(ctx context.Context) ([]Grade, error) {
	var grades []Grade
	err := r.db.WithContext(ctx).Order("level").Find(&grades).Error
	return grades, err
}

func (r *repository) FindGradeByID(ctx context.Context, id string) (*Grade, error) {
	var g Grade
	err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *repository) UpdateGrade(ctx context.Context, g *Grade) error {
	return r.db.WithContext(ctx).Save(g).Error
}

func (r *repository) DeleteGrade(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Grade{}, "id = ?", id).Error
}

func (r *repository) CountGradeEmployees(ctx context.Context, id string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("grade_id = ?", id).
		Count(&count).Error
	return count, err
}

func (r *repository) CreateEmploymentStatus(ctx context.Context, e *EmploymentStatus) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) FindAllEmploymentStatuses(ctx context.Context) ([]EmploymentStatus, error) {
	var statuses []EmploymentStatus
	err := r.db.WithContext(ctx).Order("name").Find(&statuses).Error
	return statuses, err
}

func (r *repository) FindEmploymentStatusByID(ctx context.Context, id string) (*EmploymentStatus, error) {
	var e EmploymentStatus
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) UpdateEmploymentStatus(ctx context.Context, e *EmploymentStatus) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *repository) DeleteEmploymentStatus(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&EmploymentStatus{}, "id = ?", id).Error
}

func (r *repository) CountEmploymentStatusEmployees(ctx context.Context, id string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("employment_status_id = ?", id).
		Count(&count).Error
	return count, err
}

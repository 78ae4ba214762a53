package attendance

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	FindEmployeeIDByUserID(ctx context.Context, userID string) (uuid.UUID, error)
	Create(ctx context.Context, a *Attendance) error
	FindByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, date time.Time) (*Attendance, error)
	// CompleteCheckOut writes the checkout columns guarded on
	// check_out_at IS NULL and reports whether the row was still open.
	CompleteCheckOut(ctx context.Context, a *Attendance) (bool, error)
	FindAllByEmployee(ctx context.Context, employeeID uuid.UUID) ([]Attendance, error)
	FindAll(ctx context.Context) ([]Attendance, error)

	CreateSetting(ctx context.Context, s *AttendanceSetting) error
	FindAllSettings(ctx context.Context) ([]AttendanceSetting, error)
	FindSettingByID(ctx context.Context, id string) (*AttendanceSetting, error)
	FindActiveSetting(ctx context.Context) (*AttendanceSetting, error)
	UpdateSetting(ctx context.Context, s *AttendanceSetting) error
	DeleteSetting(ctx context.Context, id string) error
	DeactivateAllSettings(ctx context.Context) error
	ActivateSetting(ctx context.Context, id string) (int64, error)
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

func (r *repository) Create(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, employeeID uuid.UUID, date time.Time) (*Attendance, error) {
	var a Attendance
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("date = ?", date.Format("2006-01-02")).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) CompleteCheckOut(ctx context.Context, a *Attendance) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Attendance{}).
		Where("id = ?", a.ID).
		Where("check_out_at IS NULL").
		Updates(map[string]any{
			"check_out_at":       a.CheckOutAt,
			"check_out_lat":      a.CheckOutLat,
			"check_out_lng":      a.CheckOutLng,
			"check_out_location": a.CheckOutLocation,
			"working_minutes":    a.WorkingMinutes,
			"working_hours":      a.WorkingHours,
			"notes":              a.Notes,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) FindAllByEmployee(ctx context.Context, employeeID uuid.UUID) ([]Attendance, error) {
	var rows []Attendance
	err := r.db.WithContext(ctx).
		Preload("Employee.User").
		Where("employee_id = ?", employeeID).
		Order("date DESC, check_in_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAll(ctx context.Context) ([]Attendance, error) {
	var rows []Attendance
	err := r.db.WithContext(ctx).
		Preload("Employee.User").
		Order("date DESC, check_in_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CreateSetting(ctx context.Context, s *AttendanceSetting) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) FindAllSettings(ctx context.Context) ([]AttendanceSetting, error) {
	var rows []AttendanceSetting
	err := r.db.WithContext(ctx).Order("created_at").Find(&rows).Error
	return rows, err
}

func (r *repository) FindSettingByID(ctx context.Context, id string) (*AttendanceSetting, error) {
	var s AttendanceSetting
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) FindActiveSetting(ctx context.Context) (*AttendanceSetting, error) {
	var s AttendanceSetting
	err := r.db.WithContext(ctx).First(&s, "is_active = ?", true).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) UpdateSetting(ctx context.Context, s *AttendanceSetting) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *repository) DeleteSetting(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&AttendanceSetting{}, "id = ?", id).Error
}

func (r *repository) DeactivateAllSettings(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&AttendanceSetting{}).
		Where("is_active = ?", true).
		Update("is_active", false).Error
}

func (r *repository) ActivateSetting(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&AttendanceSetting{}).
		Where("id = ?", id).
		Update("is_active", true)
	return res.RowsAffected, res.Error
}

package attendance

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"net/http"
	"time"

	"hris/internal/shared/apperror"
	"hris/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Defaults applied when no setting row is active.
const (
	defaultWorkStart        = "08:00"
	defaultToleranceMinutes = 10
)

var (
	ErrEmployeeProfileNotFound = apperror.New(
		apperror.CodeNotFound,
		"no employee profile is linked to this account",
		http.StatusNotFound,
	)
	ErrAlreadyCheckedIn = apperror.New(
		apperror.CodeConflict,
		"already checked in today",
		http.StatusConflict,
	)
	ErrNoCheckInToday = apperror.New(
		apperror.CodeInvalidState,
		"no check-in found for today",
		http.StatusConflict,
	)
	ErrAlreadyCheckedOut = apperror.New(
		apperror.CodeInvalidState,
		"already checked out today",
		http.StatusConflict,
	)
	ErrSettingNotFound = apperror.New(
		apperror.CodeNotFound,
		"attendance setting not found",
		http.StatusNotFound,
	)
	ErrSettingNameTaken = apperror.New(
		apperror.CodeConflict,
		"an attendance setting with this name already exists",
		http.StatusConflict,
	)
)

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	CheckIn(ctx context.Context, userID string, req CheckInRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context, userID string, req CheckOutRequest) (AttendanceResponse, error)
	ListMine(ctx context.Context, userID string) ([]AttendanceResponse, error)
	ListAll(ctx context.Context) ([]AttendanceResponse, error)

	CreateSetting(ctx context.Context, req SettingRequest) (SettingResponse, error)
	GetAllSettings(ctx context.Context) ([]SettingResponse, error)
	UpdateSetting(ctx context.Context, id string, req SettingRequest) (SettingResponse, error)
	DeleteSetting(ctx context.Context, id string) error
	ActivateSetting(ctx context.Context, id string) (SettingResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	nowFn  func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository) Service {
	return &service{
		db:     db,
		repo:   repo,
		nowFn:  time.Now,
		logger: zap.L().Named("attendance.service"),
	}
}

func (s *service) CheckIn(ctx context.Context, userID string, req CheckInRequest) (AttendanceResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)

	employeeID, err := s.repo.FindEmployeeIDByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, ErrEmployeeProfileNotFound
		}
		return AttendanceResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to resolve employee", http.StatusInternalServerError)
	}

	now := s.nowFn()
	today := dateOnly(now)

	if _, err := s.repo.FindByEmployeeAndDate(ctx, employeeID, today); err == nil {
		return AttendanceResponse{}, ErrAlreadyCheckedIn
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return AttendanceResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to check today's attendance", http.StatusInternalServerError)
	}

	workStart, tolerance := s.activeWindow(ctx)
	deadline := combineClock(today, workStart).Add(time.Duration(tolerance) * time.Minute)

	status := StatusOnTime
	if now.After(deadline) {
		status = StatusLate
	}

	row := &Attendance{
		ID:              uuid.New(),
		EmployeeID:      employeeID,
		Date:            today,
		CheckInAt:       now,
		CheckInLat:      req.Latitude,
		CheckInLng:      req.Longitude,
		CheckInLocation: req.Location,
		Status:          status,
		Notes:           req.Notes,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		// The unique (employee_id, date) index settles concurrent check-ins.
		if isUniqueViolation(err) {
			return AttendanceResponse{}, ErrAlreadyCheckedIn
		}
		return AttendanceResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to record check-in", http.StatusInternalServerError)
	}

	logger.Info("checked in",
		zap.String("employee_id", employeeID.String()),
		zap.String("status", status))
	return toAttendanceResponse(*row), nil
}

func (s *service) CheckOut(ctx context.Context, userID string, req CheckOutRequest) (AttendanceResponse, error) {
	logger := contextutil.GetLogger(ctx, s.logger)

	employeeID, err := s.repo.FindEmployeeIDByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, ErrEmployeeProfileNotFound
		}
		return AttendanceResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to resolve employee", http.StatusInternalServerError)
	}

	now := s.nowFn()
	today := dateOnly(now)

	row, err := s.repo.FindByEmployeeAndDate(ctx, employeeID, today)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, ErrNoCheckInToday
		}
		return AttendanceResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load today's attendance", http.StatusInternalServerError)
	}
	if row.CheckOutAt != nil {
		return AttendanceResponse{}, ErrAlreadyCheckedOut
	}

	minutes := int(now.Sub(row.CheckInAt).Minutes())
	if minutes < 0 {
		minutes = 0
	}
	hours := math.Round(float64(minutes)/60*100) / 100

	row.CheckOutAt = &now
	row.CheckOutLat = req.Latitude
	row.CheckOutLng = req.Longitude
	row.CheckOutLocation = req.Location
	row.WorkingMinutes = &minutes
	row.WorkingHours = &hours
	if req.Notes != nil {
		row.Notes = req.Notes
	}

	done, err := s.repo.CompleteCheckOut(ctx, row)
	if err != nil {
		return AttendanceResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to record check-out", http.StatusInternalServerError)
	}
	if !done {
		// Raced with another check-out on the same row.
		return AttendanceResponse{}, ErrAlreadyCheckedOut
	}

	logger.Info("checked out",
		zap.String("employee_id", employeeID.String()),
		zap.Int("working_minutes", minutes))
	return toAttendanceResponse(*row), nil
}

func (s *service) ListMine(ctx context.Context, userID string) ([]AttendanceResponse, error) {
	employeeID, err := s.repo.FindEmployeeIDByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeProfileNotFound
		}
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to resolve employee", http.StatusInternalServerError)
	}

	rows, err := s.repo.FindAllByEmployee(ctx, employeeID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to list attendance", http.StatusInternalServerError)
	}
	return mapAttendances(rows), nil
}

func (s *service) ListAll(ctx context.Context) ([]AttendanceResponse, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to list attendance", http.StatusInternalServerError)
	}
	return mapAttendances(rows), nil
}

func (s *service) CreateSetting(ctx context.Context, req SettingRequest) (SettingResponse, error) {
	row := &AttendanceSetting{
		ID:                   uuid.New(),
		Name:                 req.Name,
		WorkStart:            req.WorkStart,
		WorkEnd:              req.WorkEnd,
		LateToleranceMinutes: req.LateToleranceMinutes,
	}
	if err := s.repo.CreateSetting(ctx, row); err != nil {
		if isUniqueViolation(err) {
			return SettingResponse{}, ErrSettingNameTaken
		}
		return SettingResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to create setting", http.StatusInternalServerError)
	}
	return toSettingResponse(*row), nil
}

func (s *service) GetAllSettings(ctx context.Context) ([]SettingResponse, error) {
	rows, err := s.repo.FindAllSettings(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternalError, "failed to list settings", http.StatusInternalServerError)
	}

	res := make([]SettingResponse, len(rows))
	for i, r := range rows {
		res[i] = toSettingResponse(r)
	}
	return res, nil
}

func (s *service) UpdateSetting(ctx context.Context, id string, req SettingRequest) (SettingResponse, error) {
	row, err := s.repo.FindSettingByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SettingResponse{}, ErrSettingNotFound
		}
		return SettingResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load setting", http.StatusInternalServerError)
	}

	row.Name = req.Name
	row.WorkStart = req.WorkStart
	row.WorkEnd = req.WorkEnd
	row.LateToleranceMinutes = req.LateToleranceMinutes

	if err := s.repo.UpdateSetting(ctx, row); err != nil {
		if isUniqueViolation(err) {
			return SettingResponse{}, ErrSettingNameTaken
		}
		return SettingResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to update setting", http.StatusInternalServerError)
	}
	return toSettingResponse(*row), nil
}

func (s *service) DeleteSetting(ctx context.Context, id string) error {
	if _, err := s.repo.FindSettingByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSettingNotFound
		}
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to load setting", http.StatusInternalServerError)
	}
	if err := s.repo.DeleteSetting(ctx, id); err != nil {
		return apperror.Wrap(err, apperror.CodeInternalError, "failed to delete setting", http.StatusInternalServerError)
	}
	return nil
}

// ActivateSetting flips the chosen row active and every other row inactive
// in one transaction, keeping at most one active setting.
func (s *service) ActivateSetting(ctx context.Context, id string) (SettingResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SettingResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to start transaction", http.StatusInternalServerError)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.DeactivateAllSettings(ctx); err != nil {
		return SettingResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to deactivate settings", http.StatusInternalServerError)
	}
	affected, err := qtx.ActivateSetting(ctx, id)
	if err != nil {
		return SettingResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to activate setting", http.StatusInternalServerError)
	}
	if affected == 0 {
		return SettingResponse{}, ErrSettingNotFound
	}
	if err := tx.Commit(); err != nil {
		return SettingResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to commit", http.StatusInternalServerError)
	}

	row, err := s.repo.FindSettingByID(ctx, id)
	if err != nil {
		return SettingResponse{}, apperror.Wrap(err, apperror.CodeInternalError, "failed to load setting", http.StatusInternalServerError)
	}
	return toSettingResponse(*row), nil
}

// activeWindow returns the effective work start and tolerance, falling back
// to the defaults when no setting is active or the stored clock is broken.
func (s *service) activeWindow(ctx context.Context) (string, int) {
	setting, err := s.repo.FindActiveSetting(ctx)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			contextutil.GetLogger(ctx, s.logger).
				Warn("failed to load active setting, using defaults", zap.Error(err))
		}
		return defaultWorkStart, defaultToleranceMinutes
	}
	if _, err := time.Parse("15:04", setting.WorkStart); err != nil {
		return defaultWorkStart, defaultToleranceMinutes
	}
	return setting.WorkStart, setting.LateToleranceMinutes
}

func mapAttendances(rows []Attendance) []AttendanceResponse {
	res := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = toAttendanceResponse(r)
	}
	return res
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func combineClock(day time.Time, clock string) time.Time {
	parsed, _ := time.Parse("15:04", clock)
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, day.Location())
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

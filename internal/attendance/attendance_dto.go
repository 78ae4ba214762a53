package attendance

import "time"

type CheckInRequest struct {
	Latitude  *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" binding:"omitempty,longitude"`
	Location  *string  `json:"location" binding:"omitempty,max=255"`
	Notes     *string  `json:"notes"`
}

type CheckOutRequest struct {
	Latitude  *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude *float64 `json:"longitude" binding:"omitempty,longitude"`
	Location  *string  `json:"location" binding:"omitempty,max=255"`
	Notes     *string  `json:"notes"`
}

type AttendanceResponse struct {
	ID               string   `json:"id"`
	EmployeeID       string   `json:"employee_id"`
	EmployeeNumber   string   `json:"employee_number,omitempty"`
	EmployeeName     string   `json:"employee_name,omitempty"`
	Date             string   `json:"date"`
	CheckInAt        string   `json:"check_in_at"`
	CheckInLocation  *string  `json:"check_in_location,omitempty"`
	CheckOutAt       *string  `json:"check_out_at,omitempty"`
	CheckOutLocation *string  `json:"check_out_location,omitempty"`
	Status           string   `json:"status"`
	Notes            *string  `json:"notes,omitempty"`
	WorkingMinutes   *int     `json:"working_minutes,omitempty"`
	WorkingHours     *float64 `json:"working_hours,omitempty"`
}

type SettingRequest struct {
	Name                 string `json:"name" binding:"required"`
	WorkStart            string `json:"work_start" binding:"required,datetime=15:04"`
	WorkEnd              string `json:"work_end" binding:"required,datetime=15:04"`
	LateToleranceMinutes int    `json:"late_tolerance_minutes" binding:"gte=0,lte=240"`
}

type SettingResponse struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	WorkStart            string `json:"work_start"`
	WorkEnd              string `json:"work_end"`
	LateToleranceMinutes int    `json:"late_tolerance_minutes"`
	IsActive             bool   `json:"is_active"`
}

func toAttendanceResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:               a.ID.String(),
		EmployeeID:       a.EmployeeID.String(),
		Date:             a.Date.Format("2006-01-02"),
		CheckInAt:        a.CheckInAt.Format(time.RFC3339),
		CheckInLocation:  a.CheckInLocation,
		CheckOutLocation: a.CheckOutLocation,
		Status:           a.Status,
		Notes:            a.Notes,
		WorkingMinutes:   a.WorkingMinutes,
		WorkingHours:     a.WorkingHours,
	}
	if a.CheckOutAt != nil {
		v := a.CheckOutAt.Format(time.RFC3339)
		resp.CheckOutAt = &v
	}
	if a.Employee != nil {
		resp.EmployeeNumber = a.Employee.EmployeeNumber
		if a.Employee.User != nil {
			resp.EmployeeName = a.Employee.User.FullName
		}
	}
	return resp
}

func toSettingResponse(s AttendanceSetting) SettingResponse {
	return SettingResponse{
		ID:                   s.ID.String(),
		Name:                 s.Name,
		WorkStart:            s.WorkStart,
		WorkEnd:              s.WorkEnd,
		LateToleranceMinutes: s.LateToleranceMinutes,
		IsActive:             s.IsActive,
	}
}

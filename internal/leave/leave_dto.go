package leave

import "time"

type LeaveTypeRequest struct {
	Name        string  `json:"name" binding:"required"`
	Code        string  `json:"code" binding:"required,max=30"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type LeaveTypeResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"is_active"`
}

type SubmitLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id" binding:"required,uuid"`
	StartDate   string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" binding:"required,datetime=2006-01-02"`
	Reason      string `json:"reason" binding:"required"`
}

type RejectLeaveRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type BulkDecisionRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,uuid"`
	// Reason applies to every rejected request; ignored on approval.
	Reason string `json:"reason"`
}

type BulkDecisionResponse struct {
	Requested    int `json:"requested"`
	Transitioned int `json:"transitioned"`
}

type LeaveRequestResponse struct {
	ID             string `json:"id"`
	EmployeeID     string `json:"employee_id"`
	EmployeeNumber string `json:"employee_number,omitempty"`
	EmployeeName   string `json:"employee_name,omitempty"`
	LeaveTypeID    string `json:"leave_type_id"`
	LeaveTypeCode  string `json:"leave_type_code,omitempty"`
	LeaveTypeName  string `json:"leave_type_name,omitempty"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	TotalDays      int    `json:"total_days"`
	Reason         string `json:"reason"`
	Status         string `json:"status"`

	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	RejectedBy      *string `json:"rejected_by,omitempty"`
	RejectedAt      *string `json:"rejected_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

const dateLayout = "2006-01-02"

func toTypeResponse(t LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:          t.ID.String(),
		Name:        t.Name,
		Code:        t.Code,
		Description: t.Description,
		IsActive:    t.IsActive,
	}
}

func toRequestResponse(l LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:              l.ID.String(),
		EmployeeID:      l.EmployeeID.String(),
		LeaveTypeID:     l.LeaveTypeID.String(),
		StartDate:       l.StartDate.Format(dateLayout),
		EndDate:         l.EndDate.Format(dateLayout),
		TotalDays:       l.TotalDays,
		Reason:          l.Reason,
		Status:          l.Status,
		RejectionReason: l.RejectionReason,
	}
	if l.Employee != nil {
		resp.EmployeeNumber = l.Employee.EmployeeNumber
		if l.Employee.User != nil {
			resp.EmployeeName = l.Employee.User.FullName
		}
	}
	if l.LeaveType != nil {
		resp.LeaveTypeCode = l.LeaveType.Code
		resp.LeaveTypeName = l.LeaveType.Name
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	if l.RejectedBy != nil {
		v := l.RejectedBy.String()
		resp.RejectedBy = &v
	}
	if l.RejectedAt != nil {
		v := l.RejectedAt.Format(time.RFC3339)
		resp.RejectedAt = &v
	}
	return resp
}

package events

import "time"

const LeaveRequestDecidedTopic = "hr.leave.decision.v1"

type LeaveRequestDecidedEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	LeaveRequestID string    `json:"leave_request_id"`
	EmployeeID     string    `json:"employee_id"`
	LeaveTypeCode  string    `json:"leave_type_code"`
	Status         string    `json:"status"`
	DecidedBy      string    `json:"decided_by"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	TotalDays      int       `json:"total_days"`
	OccurredAt     time.Time `json:"occurred_at"`
}

package events

import "time"

const LeaveLifecycleTopic = "hr.leave.lifecycle.v1"

const (
	LeaveAggregateType = "leave_application"

	LeaveSubmitted = "leave_submitted"
	LeaveApproved  = "leave_approved"
	LeaveRejected  = "leave_rejected"
	LeaveCancelled = "leave_cancelled"
)

type LeaveLifecycleEvent struct {
	EventType     string    `json:"event_type"`
	LeaveID       int64     `json:"leave_id"`
	EmployeeID    int64     `json:"employee_id"`
	ActorID       int64     `json:"actor_id"`
	Status        string    `json:"status"`
	LeaveType     string    `json:"leave_type"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	Recipients    []int64   `json:"recipients,omitempty"`
	ReviewerNotes string    `json:"reviewer_comment,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

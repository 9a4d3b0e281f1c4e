package leave

import (
	"time"

	"go-hris-leave/internal/domain"
)

const dateLayout = "2006-01-02"

type SubmitLeaveRequest struct {
	EmployeeID int64  `json:"employee_id" binding:"required"`
	LeaveType  string `json:"leave_type" binding:"required,oneof=ANNUAL SICK CASUAL UNPAID"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date" binding:"required"`
	Reason     string `json:"reason" binding:"max=2000"`
}

type LeaveActionRequest struct {
	Action  string `json:"action" binding:"required"`
	Comment string `json:"comment"`
}

type CommentRequest struct {
	Comment string `json:"comment"`
}

type LeaveResponse struct {
	ID               int64   `json:"id"`
	EmployeeID       int64   `json:"employee_id"`
	ReviewerID       int64   `json:"reviewer_id"`
	CCTo             []int64 `json:"cc_to"`
	LeaveType        string  `json:"leave_type"`
	LeaveTypeDisplay string  `json:"leave_type_display"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	TotalDays        int     `json:"total_days"`
	Reason           string  `json:"reason"`
	Status           string  `json:"status"`
	ReviewerComment  string  `json:"reviewer_comment"`
	ReviewedOn       *string `json:"reviewed_on"`
	CreatedAt        string  `json:"created_at"`
}

type ActionResponse struct {
	Message string        `json:"message"`
	Leave   LeaveResponse `json:"leave"`
}

type MonthlyLeavesResponse struct {
	Month   string          `json:"month"`
	Count   int             `json:"count"`
	Results []LeaveResponse `json:"results"`
}

type MonthSummary struct {
	Month          string `json:"month"`
	TotalLeaves    int    `json:"total_leaves"`
	ApprovedLeaves int    `json:"approved_leaves"`
	PendingLeaves  int    `json:"pending_leaves"`
	RejectedLeaves int    `json:"rejected_leaves"`
	TotalDays      int    `json:"total_days"`
}

type SummaryResponse struct {
	Year    int            `json:"year"`
	Summary []MonthSummary `json:"summary"`
}

func mapToResponse(l LeaveApplication) LeaveResponse {
	cc := l.CC
	if cc == nil {
		cc = []int64{}
	}
	resp := LeaveResponse{
		ID:               l.ID,
		EmployeeID:       l.EmployeeID,
		ReviewerID:       l.ReviewerID,
		CCTo:             cc,
		LeaveType:        l.LeaveType,
		LeaveTypeDisplay: domain.LeaveTypeLabel(l.LeaveType),
		StartDate:        l.StartDate.Format(dateLayout),
		EndDate:          l.EndDate.Format(dateLayout),
		TotalDays:        domain.LeaveDays(l.StartDate, l.EndDate),
		Reason:           l.Reason,
		Status:           l.Status,
		ReviewerComment:  l.ReviewerComment,
		CreatedAt:        l.CreatedAt.UTC().Format(time.RFC3339),
	}
	if l.ReviewedOn != nil {
		v := l.ReviewedOn.UTC().Format(time.RFC3339)
		resp.ReviewedOn = &v
	}
	return resp
}

func mapToListResponse(leaves []LeaveApplication) []LeaveResponse {
	out := make([]LeaveResponse, 0, len(leaves))
	for _, l := range leaves {
		out = append(out, mapToResponse(l))
	}
	return out
}
